package rate

import (
	"sync"
	"testing"
	"time"
)

func newClockedLimiter(cfg Config) (*Limiter, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(cfg)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowWithinWindow(t *testing.T) {
	l, now := newClockedLimiter(Config{MaxRequests: 3, Window: 60 * time.Second})

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("4th request within window should be denied")
	}

	*now = now.Add(60 * time.Second)
	if !l.Allow("1.2.3.4") {
		t.Fatal("request at the inclusive window boundary should reset and admit")
	}
	if got := l.Remaining("1.2.3.4"); got != 2 {
		t.Fatalf("Remaining after reset = %d, want 2", got)
	}
}

func TestKeysAreIsolated(t *testing.T) {
	l, _ := newClockedLimiter(Config{MaxRequests: 1, Window: time.Minute})

	if !l.Allow("a") {
		t.Fatal("first request for a should be admitted")
	}
	if l.Allow("a") {
		t.Fatal("second request for a should be denied")
	}
	if !l.Allow("b") {
		t.Fatal("b must not be affected by a's window")
	}
}

func TestRemainingDoesNotMutate(t *testing.T) {
	l, _ := newClockedLimiter(Config{MaxRequests: 3, Window: time.Minute})

	if got := l.Remaining("x"); got != 3 {
		t.Fatalf("Remaining for unknown key = %d, want 3", got)
	}

	l.Allow("x")
	for i := 0; i < 5; i++ {
		if got := l.Remaining("x"); got != 2 {
			t.Fatalf("Remaining = %d, want 2 (must not mutate)", got)
		}
	}
}

func TestClockStepBackwardStaysInWindow(t *testing.T) {
	l, now := newClockedLimiter(Config{MaxRequests: 2, Window: time.Minute})

	l.Allow("ip")
	l.Allow("ip")

	// NTP step: an earlier now must not reset the window.
	*now = now.Add(-30 * time.Second)
	if l.Allow("ip") {
		t.Fatal("backward clock step must not reset the window")
	}
}

func TestCleanupEvictsStaleEntries(t *testing.T) {
	l, now := newClockedLimiter(Config{MaxRequests: 3, Window: time.Minute})

	l.Allow("stale")
	*now = now.Add(121 * time.Second)
	l.Allow("fresh")

	l.Cleanup()

	if got := l.Len(); got != 1 {
		t.Fatalf("tracked keys after cleanup = %d, want 1", got)
	}
	if got := l.Remaining("fresh"); got != 2 {
		t.Fatalf("fresh entry lost by cleanup: Remaining = %d, want 2", got)
	}
}

func TestCleanupKeepsEntriesWithinThreshold(t *testing.T) {
	l, now := newClockedLimiter(Config{MaxRequests: 3, Window: time.Minute})

	l.Allow("recent")
	*now = now.Add(119 * time.Second)

	l.Cleanup()

	if got := l.Len(); got != 1 {
		t.Fatalf("entry newer than 2x window evicted; tracked keys = %d", got)
	}
}

func TestRetryAfter(t *testing.T) {
	l, now := newClockedLimiter(Config{MaxRequests: 1, Window: time.Minute})

	if got := l.RetryAfter("ip"); got != 0 {
		t.Fatalf("RetryAfter for unknown key = %v, want 0", got)
	}

	l.Allow("ip")
	*now = now.Add(20 * time.Second)
	if got := l.RetryAfter("ip"); got != 40*time.Second {
		t.Fatalf("RetryAfter = %v, want 40s", got)
	}
}

func TestAllowConcurrentAccess(t *testing.T) {
	l := New(Config{MaxRequests: 1000, Window: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Allow("shared")
				l.Remaining("shared")
			}
		}()
	}
	wg.Wait()

	if got := l.Remaining("shared"); got != 1000-800 {
		t.Fatalf("Remaining = %d, want 200", got)
	}
}
