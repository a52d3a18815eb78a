package taskauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alexandru2984/taskauth/password"
	"github.com/Alexandru2984/taskauth/surreal"
)

// Login verifies credentials and opens a session.
//
// Unknown email and wrong password both surface as [ErrInvalidCredentials];
// the audit trail records which it was. A credential stored in the legacy
// format that verifies successfully is transparently re-hashed to the strong
// format before the session is issued.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	if !e.loginLimiter.Allow(req.IP) {
		e.metrics.Inc(MetricLoginRateLimited)
		e.emit(ctx, AuditEvent{EventType: auditEventLoginRateLimited, Email: req.Email, IP: req.IP})
		return nil, ErrRateLimited
	}

	if e.validator.Email(req.Email) != nil || req.Password == "" {
		// Malformed input cannot match an account; skip the backend hit but
		// keep the caller-facing answer generic.
		e.metrics.Inc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	user, err := e.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, surreal.ErrNotFound) {
			e.metrics.Inc(MetricLoginFailure)
			e.emit(ctx, AuditEvent{EventType: auditEventLoginUnknownEmail, Email: req.Email, IP: req.IP})
			return nil, ErrInvalidCredentials
		}
		e.metrics.Inc(MetricBackendUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if !e.hasher.Verify(user.PasswordHash, req.Password) {
		e.metrics.Inc(MetricLoginFailure)
		e.emit(ctx, AuditEvent{EventType: auditEventLoginWrongPassword, UserID: user.ID, IP: req.IP})
		return nil, ErrInvalidCredentials
	}

	if password.IsLegacy(user.PasswordHash) {
		e.rehashLegacy(ctx, user.ID, req.Password)
	}

	token, err := e.sessions.Create(ctx, user.ID)
	if err != nil {
		e.metrics.Inc(MetricBackendUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	e.metrics.Inc(MetricLoginSuccess)
	e.metrics.Inc(MetricSessionCreated)
	e.emit(ctx, AuditEvent{EventType: auditEventLoginSuccess, UserID: user.ID, IP: req.IP, Success: true})

	return &LoginResult{UserID: user.ID, Token: token, Verified: user.Verified}, nil
}

// rehashLegacy upgrades a verified legacy credential to the strong format.
// The login has already succeeded, so a failed upgrade is logged and the
// legacy hash stays in place until the next login.
func (e *Engine) rehashLegacy(ctx context.Context, userID, plaintext string) {
	hash, err := e.hasher.Hash(plaintext)
	if err != nil {
		e.logger.Warn("legacy re-hash failed", "user_id", userID, "error", err)
		return
	}
	if err := e.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		e.logger.Warn("legacy re-hash persist failed", "user_id", userID, "error", err)
		return
	}

	e.metrics.Inc(MetricLegacyRehash)
	e.emit(ctx, AuditEvent{EventType: auditEventLegacyRehash, UserID: userID, Success: true})
}
