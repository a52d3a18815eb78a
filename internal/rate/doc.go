// Package rate provides the in-process sliding-window limiter used to
// throttle abusive callers per client IP.
//
// # Window semantics
//
// Each key carries {count, windowStart}. The window resets wholesale once
// its duration has fully elapsed (inclusive boundary); until then requests
// count against the same budget. Keys idle for more than twice the window
// are reclaimed by [Limiter.Cleanup], driven by the engine's sweeper.
//
// # What this package must NOT do
//
//   - Implement per-endpoint policy choices (those live in Config values the
//     Engine injects, one Limiter instance per endpoint class).
//   - Block or perform I/O while holding the limiter mutex.
//   - Be imported outside the taskauth module.
package rate
