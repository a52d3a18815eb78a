package taskauth

import (
	"errors"
	"log/slog"

	"github.com/Alexandru2984/taskauth/email"
	"github.com/Alexandru2984/taskauth/internal/rate"
	"github.com/Alexandru2984/taskauth/password"
	"github.com/Alexandru2984/taskauth/session"
	"github.com/Alexandru2984/taskauth/surreal"
	"github.com/Alexandru2984/taskauth/validate"
)

// Builder defines a public type used by taskauth APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	users    UserStore
	sessions SessionStore
	mailer   Mailer

	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New describes the new operation and its observable behavior.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithUserStore overrides the backend-provided user store. Intended for
// tests and alternative persistence adapters.
func (b *Builder) WithUserStore(users UserStore) *Builder {
	b.users = users
	return b
}

// WithSessionStore overrides the backend-provided session store.
func (b *Builder) WithSessionStore(sessions SessionStore) *Builder {
	b.sessions = sessions
	return b
}

// WithMailer overrides the provider-backed mailer.
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build wires and validates the engine. Construction is allocation-only; no
// I/O happens until the first Engine method call (StartCleanup launches the
// background sweeper explicitly).
//
// Build may return an error when input validation, dependency calls, or security checks fail.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Params{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	}, b.config.Password.LegacySecret)
	if err != nil {
		return nil, err
	}

	users := b.users
	sessions := b.sessions
	if users == nil || sessions == nil {
		client, err := surreal.NewClient(surreal.Config{
			URL:       b.config.Backend.URL,
			Namespace: b.config.Backend.Namespace,
			Database:  b.config.Backend.Database,
			Username:  b.config.Backend.Username,
			Password:  b.config.Backend.Password,
			Timeout:   b.config.Backend.Timeout,
			Backoff:   b.config.Backend.Backoff,
		})
		if err != nil {
			return nil, err
		}
		if users == nil {
			users = surreal.NewUsers(client)
		}
		if sessions == nil {
			store, err := session.NewStore(client, b.config.Session.TTL)
			if err != nil {
				return nil, err
			}
			sessions = store
		}
	}

	mailer := b.mailer
	if mailer == nil {
		client, err := email.NewClient(email.Config{
			APIKey:      b.config.Email.APIKey,
			SenderName:  b.config.Email.SenderName,
			SenderEmail: b.config.Email.SenderEmail,
			BaseURL:     b.config.Email.BaseURL,
			Timeout:     b.config.Email.Timeout,
			Backoff:     b.config.Email.Backoff,
		})
		if err != nil {
			return nil, err
		}
		mailer = client
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:        b.config,
		hasher:        hasher,
		validator:     validate.New(),
		users:         users,
		sessions:      sessions,
		mailer:        mailer,
		loginLimiter:  rate.New(rate.Config(b.config.RateLimit.Login)),
		signupLimiter: rate.New(rate.Config(b.config.RateLimit.Signup)),
		resetLimiter:  rate.New(rate.Config(b.config.RateLimit.Reset)),
		audit:         newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:       NewMetrics(b.config.Metrics),
		logger:        logger,
	}
	engine.sweeper = newSweeper(engine, b.config.Cleanup.Interval)

	b.built = true
	return engine, nil
}
