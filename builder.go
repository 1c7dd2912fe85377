package authcore

import (
	"errors"

	"github.com/veldra/authcore/password"
	"github.com/veldra/authcore/token"
)

// Builder assembles an [Engine]. Construction is allocation-only until
// Build; no I/O happens before the first Engine method call.
type Builder struct {
	config   Config
	store    UserStore
	delivery ResetDelivery

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the credential store. Required.
func (b *Builder) WithStore(store UserStore) *Builder {
	b.store = store
	return b
}

// WithDelivery sets the out-of-band reset-secret delivery collaborator.
// Optional; without one, issued secrets are unreachable and the reset
// flow is effectively disabled for callers.
func (b *Builder) WithDelivery(delivery ResetDelivery) *Builder {
	b.delivery = delivery
	return b
}

// Build validates the configuration, constructs the hasher and signer, and
// returns the ready Engine. A Builder is single-use.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("user store required")
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
		Pepper:      cfg.Password.Pepper,
	})
	if err != nil {
		return nil, err
	}

	signer, err := token.NewSigner(token.Config{
		Secret: cfg.Token.Secret,
		TTL:    cfg.Token.TTL,
		Issuer: cfg.Token.Issuer,
		Leeway: cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	b.built = true

	return &Engine{
		config:   cfg,
		store:    b.store,
		delivery: b.delivery,
		hasher:   hasher,
		signer:   signer,
		metrics:  NewMetrics(cfg.Metrics),
	}, nil
}
