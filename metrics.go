package authcore

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricRegisterSuccess counts completed registrations.
	MetricRegisterSuccess MetricID = iota
	// MetricRegisterFailure counts rejected registrations (policy or
	// duplicate email).
	MetricRegisterFailure
	// MetricLoginSuccess counts logins that issued a session token.
	MetricLoginSuccess
	// MetricLoginFailure counts logins rejected with invalid credentials.
	MetricLoginFailure
	// MetricResetRequest counts reset requests, known and unknown email
	// alike.
	MetricResetRequest
	// MetricResetConfirmSuccess counts consumed reset secrets.
	MetricResetConfirmSuccess
	// MetricResetConfirmFailure counts rejected reset confirmations.
	MetricResetConfirmFailure
	// MetricTokenVerifyFailure counts session tokens that failed
	// verification.
	MetricTokenVerifyFailure

	metricCount
)

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	RegisterSuccess     uint64
	RegisterFailure     uint64
	LoginSuccess        uint64
	LoginFailure        uint64
	ResetRequest        uint64
	ResetConfirmSuccess uint64
	ResetConfirmFailure uint64
	TokenVerifyFailure  uint64
}

// Metrics holds lock-free counters for engine operations. All methods are
// safe for concurrent use; a disabled Metrics is a no-op.
type Metrics struct {
	enabled  bool
	counters [metricCount]atomic.Uint64
}

// NewMetrics returns a Metrics honoring cfg.Enabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot returns a consistent-enough copy of all counters. Individual
// loads are atomic; the snapshot as a whole is not a transaction.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		RegisterSuccess:     m.counters[MetricRegisterSuccess].Load(),
		RegisterFailure:     m.counters[MetricRegisterFailure].Load(),
		LoginSuccess:        m.counters[MetricLoginSuccess].Load(),
		LoginFailure:        m.counters[MetricLoginFailure].Load(),
		ResetRequest:        m.counters[MetricResetRequest].Load(),
		ResetConfirmSuccess: m.counters[MetricResetConfirmSuccess].Load(),
		ResetConfirmFailure: m.counters[MetricResetConfirmFailure].Load(),
		TokenVerifyFailure:  m.counters[MetricTokenVerifyFailure].Load(),
	}
}
