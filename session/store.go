package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Alexandru2984/taskauth/password"
)

// ErrSessionNotFound is returned when a token has no live session: the row
// is absent or already past its expiry.
var ErrSessionNotFound = errors.New("session not found")

// ErrBackendUnavailable is returned when the backend call itself failed.
// Deliberately distinct from [ErrSessionNotFound] so callers can fail closed
// instead of mistaking an outage for a miss.
var ErrBackendUnavailable = errors.New("session backend unavailable")

// DefaultTTL is the session lifetime applied when the config leaves it zero.
const DefaultTTL = 7 * 24 * time.Hour

// Executor runs one fixed statement with bind variables against the
// persistence backend and returns the raw result rows.
type Executor interface {
	Execute(ctx context.Context, statement string, vars map[string]string) (json.RawMessage, error)
}

// Statement templates are fixed; only bind variables vary per call.
const (
	stmtCreate = `CREATE session CONTENT {
		token: $token,
		user_id: $user_id,
		created_at: type::datetime($created_at),
		expires_at: type::datetime($expires_at)
	};`
	stmtLookup        = `SELECT * FROM session WHERE token = $token;`
	stmtDeleteToken   = `DELETE session WHERE token = $token;`
	stmtDeleteUser    = `DELETE session WHERE user_id = $user_id;`
	stmtDeleteExpired = `DELETE session WHERE expires_at < type::datetime($now);`
)

// Store defines a public type used by taskauth APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	exec     Executor
	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
}

// NewStore describes the newstore operation and its observable behavior.
//
// NewStore may return an error when input validation, dependency calls, or security checks fail.
func NewStore(exec Executor, ttl time.Duration) (*Store, error) {
	if exec == nil {
		return nil, errors.New("session executor must be configured")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Store{
		exec:     exec,
		ttl:      ttl,
		now:      time.Now,
		newToken: password.NewToken,
	}, nil
}

// Create issues a fresh session for the user and persists it with
// expires_at = now + TTL. Atomic from the caller's point of view: either the
// row exists under the returned token or an error comes back. Retrying after
// an ambiguous failure may leave a duplicate session for the user, which is
// permitted — users may hold several concurrent sessions.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	token, err := s.newToken()
	if err != nil {
		return "", fmt.Errorf("session token generation failed: %w", err)
	}

	now := s.now().UTC()
	_, err = s.exec.Execute(ctx, stmtCreate, map[string]string{
		"token":      token,
		"user_id":    userID,
		"created_at": now.Format(time.RFC3339),
		"expires_at": now.Add(s.ttl).Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return token, nil
}

// Validate resolves a token to its user id.
//
// The expiry comparison here is the gate for every authenticated request:
// a physically present but expired row reports [ErrSessionNotFound] exactly
// like an absent one. Backend failures report [ErrBackendUnavailable]
// instead, never a miss.
func (s *Store) Validate(ctx context.Context, token string) (string, error) {
	rows, err := s.exec.Execute(ctx, stmtLookup, map[string]string{"token": token})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	var sessions []Session
	if err := json.Unmarshal(rows, &sessions); err != nil {
		// Read path fails closed: an unparseable row cannot prove validity.
		return "", ErrSessionNotFound
	}
	if len(sessions) == 0 {
		return "", ErrSessionNotFound
	}

	sess := sessions[0]
	if !s.now().Before(sess.ExpiresAt) {
		return "", ErrSessionNotFound
	}

	return sess.UserID, nil
}

// Delete revokes one session. Idempotent: a token with no row is not an
// error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if _, err := s.exec.Execute(ctx, stmtDeleteToken, map[string]string{"token": token}); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// DeleteUser revokes every session the user holds ("logout all devices").
// Idempotent like [Store.Delete].
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.exec.Execute(ctx, stmtDeleteUser, map[string]string{"user_id": userID}); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// CleanupExpired bulk-deletes rows past their expiry. Runs on the sweeper
// cadence, never on the request path.
func (s *Store) CleanupExpired(ctx context.Context) error {
	vars := map[string]string{"now": s.now().UTC().Format(time.RFC3339)}
	if _, err := s.exec.Execute(ctx, stmtDeleteExpired, vars); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// TTL reports the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
