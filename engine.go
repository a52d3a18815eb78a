package taskauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Alexandru2984/taskauth/internal/rate"
	"github.com/Alexandru2984/taskauth/password"
	"github.com/Alexandru2984/taskauth/session"
	"github.com/Alexandru2984/taskauth/validate"
)

// Engine defines a public type used by taskauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config    Config
	hasher    *password.Hasher
	validator *validate.Validator
	users     UserStore
	sessions  SessionStore
	mailer    Mailer

	loginLimiter  *rate.Limiter
	signupLimiter *rate.Limiter
	resetLimiter  *rate.Limiter

	sweeper *sweeper
	audit   *auditDispatcher
	metrics *Metrics
	logger  *slog.Logger

	closed atomic.Bool
}

// Close stops the background sweeper and drains the audit dispatcher. Safe
// to call more than once; Engine methods called afterwards report
// [ErrEngineClosed].
func (e *Engine) Close() {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.sweeper.stop()
	e.audit.Close()
}

// ValidateSession resolves a session token to its user id.
//
// An absent or expired session reports [ErrSessionInvalid]; a backend
// outage reports [ErrBackendUnavailable] so the caller can fail closed
// without confusing the two.
func (e *Engine) ValidateSession(ctx context.Context, token string) (string, error) {
	if e.closed.Load() {
		return "", ErrEngineClosed
	}

	userID, err := e.sessions.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrBackendUnavailable) {
			e.metrics.Inc(MetricBackendUnavailable)
			return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		e.metrics.Inc(MetricSessionRejected)
		return "", ErrSessionInvalid
	}

	e.metrics.Inc(MetricSessionValidated)
	return userID, nil
}

// Logout revokes one session. Idempotent.
func (e *Engine) Logout(ctx context.Context, token string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	if err := e.sessions.Delete(ctx, token); err != nil {
		e.metrics.Inc(MetricBackendUnavailable)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	e.metrics.Inc(MetricLogout)
	e.emit(ctx, AuditEvent{EventType: auditEventLogout, Success: true})
	return nil
}

// LogoutAll revokes every session the user holds.
func (e *Engine) LogoutAll(ctx context.Context, userID string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	if err := e.sessions.DeleteUser(ctx, userID); err != nil {
		e.metrics.Inc(MetricBackendUnavailable)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	e.metrics.Inc(MetricLogoutAll)
	e.emit(ctx, AuditEvent{EventType: auditEventLogoutAll, UserID: userID, Success: true})
	return nil
}

// CleanupExpiredSessions bulk-deletes expired session rows. The sweeper
// calls this on its cadence; it is also exposed for operational tooling.
func (e *Engine) CleanupExpiredSessions(ctx context.Context) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	if err := e.sessions.CleanupExpired(ctx); err != nil {
		e.metrics.Inc(MetricBackendUnavailable)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// StartCleanup launches the background sweeper that evicts stale limiter
// entries and expired sessions. Pair with [Engine.StopCleanup]; the Engine
// does not start it implicitly.
func (e *Engine) StartCleanup() {
	if e.closed.Load() {
		return
	}
	e.sweeper.start()
}

// StopCleanup stops the sweeper and waits for the in-flight sweep to finish.
func (e *Engine) StopCleanup() {
	e.sweeper.stop()
}

// Hasher exposes credential hashing to the handler layer: Hash for profile
// password changes, Verify/IsLegacy for the migration signal.
func (e *Engine) Hasher() *password.Hasher {
	return e.hasher
}

// LimiterHandle defines a public type used by taskauth APIs.
//
// A handle is a read/admit view over one endpoint-class limiter; the
// limiter itself stays internal.
type LimiterHandle struct {
	l *rate.Limiter
}

// Allow records a request for key and reports whether it is admitted.
func (h LimiterHandle) Allow(key string) bool { return h.l.Allow(key) }

// Remaining reports the key's leftover budget without mutating state.
func (h LimiterHandle) Remaining(key string) int { return h.l.Remaining(key) }

// RetryAfter reports how long a blocked key waits for a fresh window; the
// handler layer turns it into a Retry-After hint.
func (h LimiterHandle) RetryAfter(key string) time.Duration { return h.l.RetryAfter(key) }

// LoginLimiter describes the loginlimiter operation and its observable behavior.
func (e *Engine) LoginLimiter() LimiterHandle { return LimiterHandle{l: e.loginLimiter} }

// SignupLimiter describes the signuplimiter operation and its observable behavior.
func (e *Engine) SignupLimiter() LimiterHandle { return LimiterHandle{l: e.signupLimiter} }

// ResetLimiter describes the resetlimiter operation and its observable behavior.
func (e *Engine) ResetLimiter() LimiterHandle { return LimiterHandle{l: e.resetLimiter} }

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) emit(ctx context.Context, event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	e.audit.Emit(ctx, event)
}
