// Package authcore provides a credential and token lifecycle engine:
// password strength policy, peppered Argon2id password hashing, HS256
// session-token issuance and verification, and a single-use, time-limited
// password-reset flow.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// the [UserStore] and [ResetDelivery] integration interfaces, and value
// types (Identity, Credential, MetricsSnapshot). Hashing, signing, and
// policy evaluation live in leaf subpackages; reset-secret plumbing lives
// under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Own HTTP routing, rate limiting, or transport concerns — callers map
//     the error taxonomy to status codes at the boundary.
//   - Deliver reset secrets itself; delivery goes through the configured
//     [ResetDelivery] collaborator and the secret is never echoed back on
//     the requesting path.
//   - Let identity-enumeration-sensitive operations (Login, RequestReset)
//     reveal through errors or timing which sub-case occurred.
//
// # Failure model
//
// Every operation returns one of the sentinel errors in errors.go (or a
// [WeakPasswordError] carrying the structural report). Storage failures
// wrap [ErrStoreUnavailable]; the engine performs no internal retries.
package authcore
