// Package surreal is the HTTP adapter for the persistence backend.
//
// All access goes through [Client.Execute]: a fixed statement template plus
// bind variables posted to the backend's /sql endpoint. Statements are
// package constants; request data only ever travels as variables, never
// spliced into the statement text.
//
// # Architecture boundaries
//
// This package owns the wire protocol (auth headers, namespace/database
// selection, typed response decoding) and the user record queries. Session
// statements live in the session package, which reaches the backend through
// the same [Client] via its Executor contract.
//
// # What this package must NOT do
//
//   - Interpolate caller-supplied values into statement text.
//   - Extract fields from response bodies by substring search — responses
//     decode into typed structures or the call fails.
//   - Import taskauth or the session package (no upward imports).
package surreal
