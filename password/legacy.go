package password

import (
	"encoding/hex"
	"hash/fnv"
)

// legacyDigest reproduces the deprecated fast-hash scheme: FNV-1a over the
// plaintext concatenated with a static secret, rendered as 16 hex chars.
// Only ever recomputed for verification; new credentials always get the
// argon2id encoding.
func legacyDigest(plaintext, secret string) string {
	h := fnv.New64a()
	h.Write([]byte(plaintext))
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}

// LegacyDigest computes the deprecated digest for a plaintext and secret.
// Exported for migration tooling and test fixtures; the engine never stores
// new credentials in this format.
func LegacyDigest(plaintext, secret string) string {
	return legacyDigest(plaintext, secret)
}

// verifyLegacy is not constant-time. Acceptable only because the scheme is
// deprecated and every successful verification triggers a re-hash to the
// strong format.
func verifyLegacy(stored, candidate, secret string) bool {
	return stored == legacyDigest(candidate, secret)
}
