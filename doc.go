// Package taskauth is the identity and trust core of the TaskMaster task
// manager: password hashing and verification, opaque session tokens, per-IP
// abuse throttling, and the resilient HTTP plumbing to the persistence
// backend and the transactional email provider.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// taskauth is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (SignupResult, LoginResult, AuditEvent, MetricsSnapshot).
// The rate limiter core lives under internal/ and is reached through the
// per-endpoint [LimiterHandle] values the Engine owns; backend and email
// transports live in the surreal, session, email, and httpx packages.
//
// # What this package must NOT do
//
//   - Serve HTTP or render anything — task CRUD handlers, templates, and
//     static assets are the caller's territory.
//   - Cache session validity between requests; every validation re-checks
//     the backend.
//   - Embed credentials: backend auth, the email API key, and the legacy
//     hash secret all arrive through [Config].
package taskauth
