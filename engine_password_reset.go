package taskauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alexandru2984/taskauth/password"
	"github.com/Alexandru2984/taskauth/surreal"
)

// RequestPasswordReset issues a reset token and mails it.
//
// Always returns nil for an unknown address — the response must not reveal
// whether an account exists. At most one token is live per user: a new
// request supersedes the previous token.
func (e *Engine) RequestPasswordReset(ctx context.Context, emailAddr, ip string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	if !e.resetLimiter.Allow(ip) {
		e.metrics.Inc(MetricResetRateLimited)
		e.emit(ctx, AuditEvent{EventType: auditEventResetRateLimited, Email: emailAddr, IP: ip})
		return ErrRateLimited
	}

	if err := e.validator.Email(emailAddr); err != nil {
		return err
	}

	user, err := e.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, surreal.ErrNotFound) {
			e.emit(ctx, AuditEvent{EventType: auditEventResetRequest, Email: emailAddr, IP: ip})
			return nil
		}
		e.metrics.Inc(MetricBackendUnavailable)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	token, err := password.NewToken()
	if err != nil {
		return err
	}

	if err := e.users.SetResetToken(ctx, user.ID, token, time.Now().Add(e.config.Reset.TTL)); err != nil {
		e.metrics.Inc(MetricBackendUnavailable)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if err := e.mailer.SendPasswordReset(ctx, user.Email, user.Name, token); err != nil {
		e.metrics.Inc(MetricEmailSendFailed)
		e.logger.Warn("reset email failed", "user_id", user.ID, "error", err)
		e.emit(ctx, AuditEvent{EventType: auditEventEmailSendFailed, UserID: user.ID, Error: err.Error()})
	}

	e.metrics.Inc(MetricResetRequest)
	e.emit(ctx, AuditEvent{EventType: auditEventResetRequest, UserID: user.ID, IP: ip, Success: true})
	return nil
}

// ResetPassword consumes a reset token: stores the new credential hash,
// clears the token, and revokes every session the user holds.
//
// ResetPassword may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) ResetPassword(ctx context.Context, token, newPassword string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	// Reject weak passwords before touching the backend.
	if err := e.validator.Password(newPassword); err != nil {
		return err
	}
	if token == "" {
		return ErrResetTokenInvalid
	}

	user, err := e.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, surreal.ErrNotFound) {
			e.metrics.Inc(MetricResetFailure)
			e.emit(ctx, AuditEvent{EventType: auditEventResetInvalid})
			return ErrResetTokenInvalid
		}
		e.metrics.Inc(MetricBackendUnavailable)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if user.ResetToken != token || !time.Now().Before(user.ResetExpires) {
		e.metrics.Inc(MetricResetFailure)
		e.emit(ctx, AuditEvent{EventType: auditEventResetInvalid, UserID: user.ID})
		return ErrResetTokenInvalid
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	// UpdatePasswordHash clears the reset token in the same statement, so
	// the token cannot be replayed against the new credential.
	if err := e.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		e.metrics.Inc(MetricBackendUnavailable)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	// A reset means the old credential may be compromised; every existing
	// session goes with it. Surfaced on failure so the caller retries.
	if err := e.sessions.DeleteUser(ctx, user.ID); err != nil {
		e.metrics.Inc(MetricBackendUnavailable)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	e.metrics.Inc(MetricResetSuccess)
	e.emit(ctx, AuditEvent{EventType: auditEventResetSuccess, UserID: user.ID, Success: true})
	return nil
}
