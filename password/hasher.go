package password

import (
	"errors"
	"strings"
)

// Hasher defines a public type used by taskauth APIs.
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// A Hasher produces argon2id credential hashes and verifies both the strong
// format and the deprecated legacy digest, distinguished by prefix.
type Hasher struct {
	params       Params
	legacySecret string
}

// NewHasher describes the newhasher operation and its observable behavior.
//
// NewHasher may return an error when input validation, dependency calls, or security checks fail.
// NewHasher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHasher(params Params, legacySecret string) (*Hasher, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	if legacySecret == "" {
		return nil, errors.New("legacy hash secret must be configured")
	}

	return &Hasher{params: params, legacySecret: legacySecret}, nil
}

// Hash derives a fresh argon2id credential hash for the plaintext.
//
// Hash may return [ErrHashingFailed] when the KDF cannot run; callers treat
// that as fatal for the request.
func (h *Hasher) Hash(plaintext string) (string, error) {
	return hashArgon2(h.params, plaintext)
}

// Verify reports whether candidate matches the stored credential hash.
//
// Format is detected by prefix: strong hashes verify in constant time with
// the parameters recorded in their encoding, legacy digests are recomputed
// with the configured secret. Any internal failure (malformed encoding,
// unsupported parameters) verifies false rather than surfacing an error, so
// a failed verification and an absent match are indistinguishable to the
// caller.
func (h *Hasher) Verify(stored, candidate string) bool {
	if IsLegacy(stored) {
		return verifyLegacy(stored, candidate, h.legacySecret)
	}
	return verifyArgon2(stored, candidate)
}

// IsLegacy reports whether stored is a deprecated legacy digest. Callers use
// this after a successful verification to re-hash the credential into the
// strong format.
func IsLegacy(stored string) bool {
	return !strings.HasPrefix(stored, strongPrefix)
}
