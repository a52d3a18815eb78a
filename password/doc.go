// Package password implements credential hashing, verification, and secure
// token generation for the taskauth engine.
//
// # Output format
//
// New hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// A second, deprecated format coexists as a migration path: a bare 16-char
// hex FNV-1a digest mixed with a static secret. It is recognized by the
// absence of the argon2id prefix, accepted for verification only, and never
// produced. [IsLegacy] is the signal callers use to re-hash on the next
// successful login.
//
// # Architecture boundaries
//
// This package owns hashing, verification, and random token/code generation.
// Password policy (length, character classes) is enforced by the validate
// package; persistence of re-hashed credentials is the Engine's job.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other taskauth package.
//   - Log plaintext passwords or the legacy secret at runtime.
package password
