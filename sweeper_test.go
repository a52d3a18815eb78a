package taskauth

import (
	"errors"
	"testing"
	"time"
)

func (f *fakeSessions) cleanups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleanupCalls
}

func TestSweeperRunsOnItsCadence(t *testing.T) {
	cfg := testEngineConfig()
	cfg.Cleanup.Interval = 10 * time.Millisecond
	env := newTestEngine(t, cfg)
	env.engine.sweeper.tick = 5 * time.Millisecond

	env.engine.StartCleanup()
	defer env.engine.StopCleanup()

	deadline := time.After(2 * time.Second)
	for env.sessions.cleanups() == 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSweeperStopWaitsForLoop(t *testing.T) {
	cfg := testEngineConfig()
	cfg.Cleanup.Interval = 10 * time.Millisecond
	env := newTestEngine(t, cfg)
	env.engine.sweeper.tick = 5 * time.Millisecond

	env.engine.StartCleanup()
	env.engine.StartCleanup() // repeat start is a no-op

	time.Sleep(30 * time.Millisecond)
	env.engine.StopCleanup()
	ran := env.sessions.cleanups()

	// No sweep after stop returned.
	time.Sleep(30 * time.Millisecond)
	if got := env.sessions.cleanups(); got != ran {
		t.Fatalf("sweep after stop: %d -> %d", ran, got)
	}

	env.engine.StopCleanup() // repeat stop is a no-op
}

func TestSweeperSurvivesBackendFailure(t *testing.T) {
	cfg := testEngineConfig()
	cfg.Cleanup.Interval = 10 * time.Millisecond
	env := newTestEngine(t, cfg)
	env.engine.sweeper.tick = 5 * time.Millisecond
	env.sessions.failWith = errors.New("backend down")

	env.engine.StartCleanup()
	defer env.engine.StopCleanup()

	// The loop keeps ticking through failures; nothing to assert beyond
	// not panicking and stopping cleanly.
	time.Sleep(40 * time.Millisecond)
}

func TestSweeperEvictsIdleLimiterEntries(t *testing.T) {
	cfg := testEngineConfig()
	cfg.RateLimit.Login = RatePolicy{MaxRequests: 5, Window: 10 * time.Millisecond}
	cfg.Cleanup.Interval = 10 * time.Millisecond
	env := newTestEngine(t, cfg)
	env.engine.sweeper.tick = 5 * time.Millisecond

	env.engine.LoginLimiter().Allow("203.0.113.1")

	env.engine.StartCleanup()
	defer env.engine.StopCleanup()

	deadline := time.After(2 * time.Second)
	for env.engine.loginLimiter.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("idle limiter entry never evicted")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
