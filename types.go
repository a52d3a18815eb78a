package taskauth

import (
	"context"
	"time"

	"github.com/Alexandru2984/taskauth/surreal"
)

// UserStore is the user-record contract the engine needs from the
// persistence backend. [surreal.Users] is the production implementation;
// tests substitute fakes.
type UserStore interface {
	Create(ctx context.Context, email, name, passwordHash, verificationCode string, verificationExpires time.Time) (*surreal.User, error)
	GetByEmail(ctx context.Context, email string) (*surreal.User, error)
	GetByID(ctx context.Context, id string) (*surreal.User, error)
	GetByResetToken(ctx context.Context, token string) (*surreal.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	SetVerification(ctx context.Context, id, code string, expires time.Time) error
	MarkVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
}

// SessionStore is the session-lifecycle contract from the session package,
// restated here so the engine can be wired against fakes.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Validate(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
	DeleteUser(ctx context.Context, userID string) error
	CleanupExpired(ctx context.Context) error
}

// Mailer sends the engine's transactional notifications. Failures are
// logged and swallowed at the call site; a signup succeeds even when the
// welcome email does not.
type Mailer interface {
	SendVerificationCode(ctx context.Context, toEmail, toName, code string) error
	SendPasswordReset(ctx context.Context, toEmail, toName, token string) error
}

// SignupRequest defines a public type used by taskauth APIs.
type SignupRequest struct {
	Email    string
	Password string
	Name     string
	IP       string
}

// SignupResult defines a public type used by taskauth APIs.
type SignupResult struct {
	UserID string
	Token  string
}

// LoginRequest defines a public type used by taskauth APIs.
type LoginRequest struct {
	Email    string
	Password string
	IP       string
}

// LoginResult defines a public type used by taskauth APIs.
type LoginResult struct {
	UserID   string
	Token    string
	Verified bool
}
