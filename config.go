package taskauth

import (
	"errors"
	"time"
)

// Config defines a public type used by taskauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Password     PasswordConfig
	Session      SessionConfig
	Verification VerificationConfig
	Reset        ResetConfig
	RateLimit    RateLimitConfig
	Backend      BackendConfig
	Email        EmailConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
	Cleanup      CleanupConfig
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by taskauth APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// The argon2id cost parameters are part of the stored hash format contract:
// hashes verify with the parameters recorded in their encoding, so changing
// these only affects newly created credentials.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	// LegacySecret is the static secret mixed into the deprecated fast-hash
	// scheme. Treated as a credential: it arrives from configuration, never
	// from source.
	LegacySecret string
}

/*
====================================
SESSION / TOKEN LIFETIMES
====================================
*/

// SessionConfig defines a public type used by taskauth APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	TTL time.Duration
}

// VerificationConfig defines a public type used by taskauth APIs.
//
// VerificationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type VerificationConfig struct {
	TTL time.Duration
}

// ResetConfig defines a public type used by taskauth APIs.
//
// ResetConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ResetConfig struct {
	TTL time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RatePolicy defines a public type used by taskauth APIs.
//
// RatePolicy instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RatePolicy struct {
	MaxRequests int
	Window      time.Duration
}

// RateLimitConfig defines a public type used by taskauth APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// Each endpoint class gets its own limiter instance with its own policy.
type RateLimitConfig struct {
	Login  RatePolicy
	Signup RatePolicy
	Reset  RatePolicy
}

/*
====================================
OUTBOUND PEERS
====================================
*/

// BackendConfig defines a public type used by taskauth APIs.
//
// BackendConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BackendConfig struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	Timeout   time.Duration
	Backoff   []time.Duration
}

// EmailConfig defines a public type used by taskauth APIs.
//
// EmailConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EmailConfig struct {
	APIKey      string
	SenderName  string
	SenderEmail string
	BaseURL     string
	Timeout     time.Duration
	Backoff     []time.Duration
}

/*
====================================
AUDIT / METRICS / CLEANUP
====================================
*/

// AuditConfig defines a public type used by taskauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by taskauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// CleanupConfig defines a public type used by taskauth APIs.
//
// CleanupConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CleanupConfig struct {
	// Interval is the sweep cadence for limiter eviction and expired-session
	// deletion. The sweeper checks for shutdown every second regardless of
	// the interval, so stop latency stays bounded.
	Interval time.Duration
}

// DefaultConfig returns the configuration the engine ships with. The
// observed production values are the defaults; everything stays overridable.
func DefaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Session:      SessionConfig{TTL: 7 * 24 * time.Hour},
		Verification: VerificationConfig{TTL: 10 * time.Minute},
		Reset:        ResetConfig{TTL: time.Hour},
		RateLimit: RateLimitConfig{
			Login:  RatePolicy{MaxRequests: 5, Window: time.Minute},
			Signup: RatePolicy{MaxRequests: 3, Window: 10 * time.Minute},
			Reset:  RatePolicy{MaxRequests: 3, Window: 15 * time.Minute},
		},
		Backend: BackendConfig{
			Timeout: 10 * time.Second,
			Backoff: []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, time.Second},
		},
		Email: EmailConfig{
			Timeout: 15 * time.Second,
			Backoff: []time.Duration{time.Second, 2 * time.Second, 5 * time.Second},
		},
		Audit:   AuditConfig{Enabled: true, BufferSize: 256, DropIfFull: true},
		Metrics: MetricsConfig{Enabled: true},
		Cleanup: CleanupConfig{Interval: time.Minute},
	}
}

func validateConfig(cfg Config) error {
	if cfg.Password.LegacySecret == "" {
		return errors.New("config: password legacy secret is required")
	}
	if cfg.Session.TTL <= 0 {
		return errors.New("config: session TTL must be positive")
	}
	if cfg.Verification.TTL <= 0 || cfg.Reset.TTL <= 0 {
		return errors.New("config: verification and reset TTLs must be positive")
	}
	for _, p := range []RatePolicy{cfg.RateLimit.Login, cfg.RateLimit.Signup, cfg.RateLimit.Reset} {
		if p.MaxRequests <= 0 || p.Window <= 0 {
			return errors.New("config: rate policies need positive budget and window")
		}
	}
	if cfg.Cleanup.Interval <= 0 {
		return errors.New("config: cleanup interval must be positive")
	}

	return nil
}
