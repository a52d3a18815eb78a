// Package session provides the opaque-token session lifecycle backed by the
// persistence backend.
//
// # Contract
//
// A session is valid iff its row exists and now < expires_at. Rows are owned
// by the backend; this package holds no in-process cache — every validation
// re-checks the backend, so multiple server instances stay consistent.
// Expired rows may linger physically until [Store.CleanupExpired] sweeps
// them, but [Store.Validate] treats them as absent the moment they expire.
//
// # Architecture boundaries
//
// The [Store] is backend-agnostic: it issues fixed statement templates with
// bind variables through the [Executor] contract. The surreal package
// supplies the production Executor.
//
// # What this package must NOT do
//
//   - Conflate backend failure with an absent session — callers fail closed
//     on [ErrBackendUnavailable], they do not treat it as a miss.
//   - Cache validation results between calls.
//   - Import taskauth or surreal (no upward imports).
package session
