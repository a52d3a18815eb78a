package surreal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the persisted user record, as the backend stores it. Verification
// and reset state live on the row itself: at most one live code or token per
// user, superseded wholesale on reissue.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash"`
	Verified     bool   `json:"verified"`

	VerificationCode    string    `json:"verification_code,omitempty"`
	VerificationExpires time.Time `json:"verification_expires,omitempty"`
	ResetToken          string    `json:"reset_token,omitempty"`
	ResetExpires        time.Time `json:"reset_expires,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Statement templates are fixed; only bind variables vary per call.
const (
	stmtUserByEmail = `SELECT * FROM user WHERE email = $email;`
	stmtUserByID    = `SELECT * FROM user WHERE id = type::thing("user", $id);`
	stmtUserByReset = `SELECT * FROM user WHERE reset_token = $token;`

	stmtCreateUser = `CREATE type::thing("user", $id) CONTENT {
		email: $email,
		name: $name,
		password_hash: $password_hash,
		verified: false,
		verification_code: $verification_code,
		verification_expires: type::datetime($verification_expires),
		created_at: type::datetime($created_at)
	};`

	stmtUpdatePassword = `UPDATE type::thing("user", $id) SET
		password_hash = $password_hash,
		reset_token = NONE,
		reset_expires = NONE;`

	stmtSetVerification = `UPDATE type::thing("user", $id) SET
		verification_code = $code,
		verification_expires = type::datetime($expires);`

	stmtMarkVerified = `UPDATE type::thing("user", $id) SET
		verified = true,
		verification_code = NONE,
		verification_expires = NONE;`

	stmtSetResetToken = `UPDATE type::thing("user", $id) SET
		reset_token = $token,
		reset_expires = type::datetime($expires);`
)

// Users defines a public type used by taskauth APIs.
//
// Users issues the parameterized user-record queries the engine needs. It is
// stateless beyond the shared [Client].
type Users struct {
	client *Client
	now    func() time.Time
}

// NewUsers describes the newusers operation and its observable behavior.
func NewUsers(client *Client) *Users {
	return &Users{client: client, now: time.Now}
}

// Create persists a new user with a fresh id and the initial verification
// code. Write-path failures are hard errors, never swallowed.
func (u *Users) Create(ctx context.Context, email, name, passwordHash, verificationCode string, verificationExpires time.Time) (*User, error) {
	id := uuid.NewString()
	createdAt := u.now().UTC()

	rows, err := u.client.Execute(ctx, stmtCreateUser, map[string]string{
		"id":                   id,
		"email":                email,
		"name":                 name,
		"password_hash":        passwordHash,
		"verification_code":    verificationCode,
		"verification_expires": verificationExpires.UTC().Format(time.RFC3339),
		"created_at":           createdAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	created, err := decodeUsers(rows)
	if err != nil {
		// Write path: an undecodable response is a hard failure.
		return nil, fmt.Errorf("%w: undecodable create response: %v", ErrQueryRejected, err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("%w: create returned no row", ErrQueryRejected)
	}
	return &created[0], nil
}

// GetByEmail looks a user up by email. Returns [ErrNotFound] when no row
// matches; undecodable read responses also report not-found so callers fail
// closed.
func (u *Users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return u.lookup(ctx, stmtUserByEmail, map[string]string{"email": email})
}

// GetByID looks a user up by id.
func (u *Users) GetByID(ctx context.Context, id string) (*User, error) {
	return u.lookup(ctx, stmtUserByID, map[string]string{"id": id})
}

// GetByResetToken looks a user up by a live or expired reset token; expiry
// is the caller's check.
func (u *Users) GetByResetToken(ctx context.Context, token string) (*User, error) {
	return u.lookup(ctx, stmtUserByReset, map[string]string{"token": token})
}

// UpdatePasswordHash stores a new credential hash and clears any outstanding
// reset token in the same statement.
func (u *Users) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	_, err := u.client.Execute(ctx, stmtUpdatePassword, map[string]string{
		"id":            id,
		"password_hash": passwordHash,
	})
	return err
}

// SetVerification installs a fresh verification code, superseding any prior
// one for the user.
func (u *Users) SetVerification(ctx context.Context, id, code string, expires time.Time) error {
	_, err := u.client.Execute(ctx, stmtSetVerification, map[string]string{
		"id":      id,
		"code":    code,
		"expires": expires.UTC().Format(time.RFC3339),
	})
	return err
}

// MarkVerified flags the account verified and drops the pending code.
func (u *Users) MarkVerified(ctx context.Context, id string) error {
	_, err := u.client.Execute(ctx, stmtMarkVerified, map[string]string{"id": id})
	return err
}

// SetResetToken installs a fresh reset token, superseding any prior one.
func (u *Users) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	_, err := u.client.Execute(ctx, stmtSetResetToken, map[string]string{
		"id":      id,
		"token":   token,
		"expires": expires.UTC().Format(time.RFC3339),
	})
	return err
}

func (u *Users) lookup(ctx context.Context, statement string, vars map[string]string) (*User, error) {
	rows, err := u.client.Execute(ctx, statement, vars)
	if err != nil {
		return nil, err
	}

	users, err := decodeUsers(rows)
	if err != nil || len(users) == 0 {
		// Read path fails closed: an unparseable row is an absent row.
		return nil, ErrNotFound
	}
	return &users[0], nil
}

func decodeUsers(rows json.RawMessage) ([]User, error) {
	var users []User
	if err := json.Unmarshal(rows, &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].ID = normalizeID(users[i].ID)
	}
	return users, nil
}

// normalizeID strips the backend's record-id envelope (`user:⟨...⟩`) so the
// engine only ever sees the bare id it created.
func normalizeID(id string) string {
	id = strings.TrimPrefix(id, "user:")
	id = strings.TrimPrefix(id, "⟨")
	id = strings.TrimSuffix(id, "⟩")
	return id
}
