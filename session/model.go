package session

import "time"

// Session defines a public type used by taskauth APIs.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// The token is the row key: 32 bytes of entropy rendered as 64 lowercase
// hex characters, unique under the backend's index. Rows are read-only for
// their whole life; revocation is deletion.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
