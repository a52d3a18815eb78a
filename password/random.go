package password

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

const tokenRawSize = 32

// NewToken returns a fresh opaque token: 32 bytes from the secure RNG,
// rendered as 64 lowercase hex characters. Session tokens and password reset
// tokens share this scheme.
func NewToken() (string, error) {
	var raw [tokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}

// NewVerificationCode returns a 6-digit code uniform in [100000, 999999].
// The lower bound keeps the first digit nonzero, so the rendered string is
// always exactly six characters.
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return (n.Add(n, big.NewInt(100000))).String(), nil
}
