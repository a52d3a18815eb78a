package taskauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alexandru2984/taskauth/password"
	"github.com/Alexandru2984/taskauth/surreal"
)

// Signup registers a new account and opens its first session.
//
// Order matters: the rate limiter runs before validation, validation before
// any backend call, and the verification email goes out best-effort — a
// failed send never fails the signup.
//
// Signup may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	if !e.signupLimiter.Allow(req.IP) {
		e.metrics.Inc(MetricSignupRateLimited)
		e.emit(ctx, AuditEvent{EventType: auditEventSignupRateLimited, IP: req.IP})
		return nil, ErrRateLimited
	}

	if err := e.validator.Email(req.Email); err != nil {
		return nil, err
	}
	if err := e.validator.Password(req.Password); err != nil {
		return nil, err
	}
	if err := e.validator.DisplayName(req.Name); err != nil {
		return nil, err
	}

	if _, err := e.users.GetByEmail(ctx, req.Email); err == nil {
		e.metrics.Inc(MetricSignupDuplicate)
		e.emit(ctx, AuditEvent{EventType: auditEventSignupDuplicate, Email: req.Email, IP: req.IP})
		return nil, ErrAccountExists
	} else if !errors.Is(err, surreal.ErrNotFound) {
		e.metrics.Inc(MetricBackendUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		// No degraded mode for credential creation.
		return nil, err
	}

	code, err := password.NewVerificationCode()
	if err != nil {
		return nil, err
	}

	user, err := e.users.Create(ctx, req.Email, req.Name, hash, code, time.Now().Add(e.config.Verification.TTL))
	if err != nil {
		if errors.Is(err, surreal.ErrQueryRejected) {
			// Lost a create race against the unique email index.
			e.metrics.Inc(MetricSignupDuplicate)
			return nil, ErrAccountExists
		}
		e.metrics.Inc(MetricBackendUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if err := e.mailer.SendVerificationCode(ctx, user.Email, user.Name, code); err != nil {
		e.metrics.Inc(MetricEmailSendFailed)
		e.logger.Warn("verification email failed", "user_id", user.ID, "error", err)
		e.emit(ctx, AuditEvent{EventType: auditEventEmailSendFailed, UserID: user.ID, Error: err.Error()})
	}

	token, err := e.sessions.Create(ctx, user.ID)
	if err != nil {
		e.metrics.Inc(MetricBackendUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	e.metrics.Inc(MetricSignupSuccess)
	e.metrics.Inc(MetricSessionCreated)
	e.emit(ctx, AuditEvent{EventType: auditEventSignup, UserID: user.ID, Email: user.Email, IP: req.IP, Success: true})

	return &SignupResult{UserID: user.ID, Token: token}, nil
}

// ResendVerification reissues the signup verification code, superseding any
// outstanding one, and mails it. An unknown or already-verified address
// returns nil so callers cannot probe for account existence.
func (e *Engine) ResendVerification(ctx context.Context, emailAddr, ip string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	if !e.signupLimiter.Allow(ip) {
		e.metrics.Inc(MetricSignupRateLimited)
		return ErrRateLimited
	}

	if err := e.validator.Email(emailAddr); err != nil {
		return err
	}

	user, err := e.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, surreal.ErrNotFound) {
			return nil
		}
		e.metrics.Inc(MetricBackendUnavailable)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if user.Verified {
		return nil
	}

	code, err := password.NewVerificationCode()
	if err != nil {
		return err
	}

	if err := e.users.SetVerification(ctx, user.ID, code, time.Now().Add(e.config.Verification.TTL)); err != nil {
		e.metrics.Inc(MetricBackendUnavailable)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if err := e.mailer.SendVerificationCode(ctx, user.Email, user.Name, code); err != nil {
		e.metrics.Inc(MetricEmailSendFailed)
		e.logger.Warn("verification email failed", "user_id", user.ID, "error", err)
		e.emit(ctx, AuditEvent{EventType: auditEventEmailSendFailed, UserID: user.ID, Error: err.Error()})
	}

	return nil
}
