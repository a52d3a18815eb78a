package taskauth

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Audit event types. External callers only ever see the generic sentinel
// errors; these keep the real reason for logging and metrics.
const (
	auditEventSignup             = "signup"
	auditEventSignupDuplicate    = "signup_duplicate"
	auditEventSignupRateLimited  = "signup_rate_limited"
	auditEventLoginSuccess       = "login_success"
	auditEventLoginUnknownEmail  = "login_unknown_email"
	auditEventLoginWrongPassword = "login_wrong_password"
	auditEventLoginRateLimited   = "login_rate_limited"
	auditEventLegacyRehash       = "legacy_hash_upgraded"
	auditEventLogout             = "logout"
	auditEventLogoutAll          = "logout_all"
	auditEventResetRequest       = "password_reset_request"
	auditEventResetRateLimited   = "password_reset_rate_limited"
	auditEventResetSuccess       = "password_reset_success"
	auditEventResetInvalid       = "password_reset_invalid"
	auditEventVerifySuccess      = "email_verification_success"
	auditEventVerifyInvalid      = "email_verification_invalid"
	auditEventEmailSendFailed    = "email_send_failed"
	auditEventSessionSweep       = "session_sweep"
)

// AuditEvent defines a public type used by taskauth APIs.
//
// AuditEvent instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Email     string            `json:"email,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives events from the engine's async dispatcher.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink defines a public type used by taskauth APIs.
type NoOpSink struct{}

// Emit describes the emit operation and its observable behavior.
func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink defines a public type used by taskauth APIs.
//
// ChannelSink instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ChannelSink struct {
	events chan AuditEvent
}

// NewChannelSink describes the newchannelsink operation and its observable behavior.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events describes the events operation and its observable behavior.
func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink defines a public type used by taskauth APIs.
//
// JSONWriterSink instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink describes the newjsonwritersink operation and its observable behavior.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
