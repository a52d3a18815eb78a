package rate

import (
	"sync"
	"time"
)

// Config holds the admission policy for one limiter instance.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

type window struct {
	count       int
	windowStart time.Time
}

// Limiter enforces a per-key sliding-window request budget. One instance
// guards one endpoint class; all state lives in-process behind a single
// mutex.
type Limiter struct {
	mu      sync.Mutex
	config  Config
	windows map[string]*window
	now     func() time.Time
}

// New creates a [Limiter] with the given policy.
func New(cfg Config) *Limiter {
	return &Limiter{
		config:  cfg,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow records a request for key and reports whether it is admitted.
//
// First sight of a key opens a fresh window. A window that has fully elapsed
// (elapsed >= Window, inclusive) resets wholesale. A clock that stepped
// backward leaves the window in place: that only makes the limiter stricter,
// never looser. An empty key is admitted without bookkeeping.
func (l *Limiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok {
		l.windows[key] = &window{count: 1, windowStart: now}
		return true
	}

	elapsed := now.Sub(w.windowStart)
	if elapsed >= l.config.Window {
		w.count = 1
		w.windowStart = now
		return true
	}

	if w.count >= l.config.MaxRequests {
		return false
	}

	w.count++
	return true
}

// Remaining reports how many requests key may still make in its current
// window without mutating any state. Unknown keys have the full budget.
func (l *Limiter) Remaining(key string) int {
	if key == "" {
		return l.config.MaxRequests
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		return l.config.MaxRequests
	}

	if l.now().Sub(w.windowStart) >= l.config.Window {
		return l.config.MaxRequests
	}

	remaining := l.config.MaxRequests - w.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RetryAfter reports how long key must wait before its window resets. Zero
// means the key is not currently blocked.
func (l *Limiter) RetryAfter(key string) time.Duration {
	if key == "" {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || w.count < l.config.MaxRequests {
		return 0
	}

	wait := l.config.Window - l.now().Sub(w.windowStart)
	if wait < 0 {
		return 0
	}
	return wait
}

// Cleanup removes entries idle for more than twice the window. Bounds memory
// growth from one-off or spoofed client IPs; driven on a fixed cadence by
// the engine's sweeper, never on the request path.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := 2 * l.config.Window
	now := l.now()
	for key, w := range l.windows {
		if now.Sub(w.windowStart) > cutoff {
			delete(l.windows, key)
		}
	}
}

// Len reports the number of tracked keys. Used by tests and the sweeper's
// debug logging.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
