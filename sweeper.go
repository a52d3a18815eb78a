package taskauth

import (
	"context"
	"sync"
	"time"
)

// sweeper drives periodic maintenance: limiter eviction and expired-session
// deletion. It wakes every second to check the done channel, so shutdown
// latency stays bounded well below the sweep interval.
type sweeper struct {
	engine   *Engine
	interval time.Duration
	tick     time.Duration

	mu      sync.Mutex
	done    chan struct{}
	wg      sync.WaitGroup
	running bool
}

const sweeperTick = time.Second

func newSweeper(engine *Engine, interval time.Duration) *sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &sweeper{engine: engine, interval: interval, tick: sweeperTick}
}

func (s *sweeper) start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})

	s.wg.Add(1)
	go s.run(s.done)
}

// stop signals the loop and waits for it to finish; the shared limiter maps
// must not be swept after the process starts tearing them down.
func (s *sweeper) stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *sweeper) run(done <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	var elapsed time.Duration
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			elapsed += s.tick
			if elapsed < s.interval {
				continue
			}
			elapsed = 0
			s.sweep()
		}
	}
}

func (s *sweeper) sweep() {
	e := s.engine

	e.loginLimiter.Cleanup()
	e.signupLimiter.Cleanup()
	e.resetLimiter.Cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.sessions.CleanupExpired(ctx); err != nil {
		e.logger.Warn("session sweep failed", "error", err)
		e.emit(ctx, AuditEvent{EventType: auditEventSessionSweep, Success: false, Error: err.Error()})
		return
	}
	e.emit(ctx, AuditEvent{EventType: auditEventSessionSweep, Success: true})
}
