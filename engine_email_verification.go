package taskauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/Alexandru2984/taskauth/surreal"
)

// VerifyEmail consumes a signup verification code for the given address.
//
// The code is single-use and bound to its 10-minute window; an unknown
// address, a stale code, and a wrong code all surface as the same
// [ErrVerificationInvalid]. Verifying an already-verified account is a
// no-op, not an error.
func (e *Engine) VerifyEmail(ctx context.Context, emailAddr, code string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	if err := e.validator.Email(emailAddr); err != nil {
		return err
	}

	user, err := e.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, surreal.ErrNotFound) {
			e.metrics.Inc(MetricVerifyFailure)
			e.emit(ctx, AuditEvent{EventType: auditEventVerifyInvalid, Email: emailAddr})
			return ErrVerificationInvalid
		}
		e.metrics.Inc(MetricBackendUnavailable)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if user.Verified {
		return nil
	}

	if user.VerificationCode == "" ||
		subtle.ConstantTimeCompare([]byte(user.VerificationCode), []byte(code)) != 1 ||
		!time.Now().Before(user.VerificationExpires) {
		e.metrics.Inc(MetricVerifyFailure)
		e.emit(ctx, AuditEvent{EventType: auditEventVerifyInvalid, UserID: user.ID})
		return ErrVerificationInvalid
	}

	if err := e.users.MarkVerified(ctx, user.ID); err != nil {
		e.metrics.Inc(MetricBackendUnavailable)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	e.metrics.Inc(MetricVerifySuccess)
	e.emit(ctx, AuditEvent{EventType: auditEventVerifySuccess, UserID: user.ID, Success: true})
	return nil
}
