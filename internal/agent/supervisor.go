// ABOUTME: Keeps one connection loop alive per bot identity, retrying failures forever.
// ABOUTME: Deduplicates identities through an atomic running set so no identity runs twice.

package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"github.com/2389/chatfleet/internal/dedupe"
)

// DefaultRetryDelay is the pause between failed connection attempts.
const DefaultRetryDelay = 5 * time.Second

// ErrSupervisorStopped is returned by EnsureRunning after shutdown has begun.
var ErrSupervisorStopped = errors.New("supervisor stopped")

// StartResult reports what EnsureRunning did.
type StartResult int

const (
	Started StartResult = iota
	AlreadyRunning
)

func (r StartResult) String() string {
	switch r {
	case Started:
		return "started"
	case AlreadyRunning:
		return "already_running"
	default:
		return "unknown"
	}
}

// SessionFunc runs one connection attempt for identity. Returning nil means
// the session ended cleanly and must not be retried; any error is retried.
type SessionFunc func(ctx context.Context, identity string) error

// SupervisorParams holds the parameters for creating a new Supervisor.
type SupervisorParams struct {
	Run           SessionFunc
	Running       *dedupe.Set // shared running set; a new one is created when nil
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration // > RetryDelay enables capped exponential backoff
	Logger        *slog.Logger
}

// Supervisor owns the per-identity supervision loops. Loops are independent
// peers: one identity failing or disconnecting never affects another.
type Supervisor struct {
	ctx      context.Context
	run      SessionFunc
	running  *dedupe.Set
	minDelay time.Duration
	maxDelay time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewSupervisor creates a Supervisor whose loops live until ctx is cancelled.
func NewSupervisor(ctx context.Context, p SupervisorParams) *Supervisor {
	running := p.Running
	if running == nil {
		running = dedupe.NewSet()
	}
	minDelay := p.RetryDelay
	if minDelay <= 0 {
		minDelay = DefaultRetryDelay
	}
	maxDelay := p.MaxRetryDelay
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Supervisor{
		ctx:      ctx,
		run:      p.Run,
		running:  running,
		minDelay: minDelay,
		maxDelay: maxDelay,
		logger:   logger.With("component", "supervisor"),
	}
}

// EnsureRunning starts a supervision loop for identity unless one is
// already alive. The check and insert are atomic, so concurrent calls for
// the same identity start exactly one loop.
func (s *Supervisor) EnsureRunning(identity string) (StartResult, error) {
	if s.ctx.Err() != nil {
		return 0, ErrSupervisorStopped
	}

	if s.running.CheckAndMark(identity) {
		s.logger.Info("bot already running", "identity", identity)
		return AlreadyRunning, nil
	}

	s.wg.Add(1)
	go s.supervise(identity)

	s.logger.Info("=== BOT STARTED ===",
		"identity", identity,
		"total_bots", s.running.Len(),
	)
	return Started, nil
}

// IsRunning reports whether identity has a live supervision loop.
func (s *Supervisor) IsRunning(identity string) bool {
	return s.running.Check(identity)
}

// Running returns the identities with live supervision loops, sorted.
func (s *Supervisor) Running() []string {
	return s.running.Keys()
}

// Wait blocks until every supervision loop has exited.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// supervise reconnects identity until a session ends cleanly or the
// supervisor shuts down. There is no retry limit.
func (s *Supervisor) supervise(identity string) {
	defer s.wg.Done()
	defer s.running.Remove(identity)

	logger := s.logger.With("identity", identity)
	delays := &backoff.Backoff{
		Min:    s.minDelay,
		Max:    s.maxDelay,
		Factor: 2,
	}

	for attempt := 1; ; attempt++ {
		startedAt := time.Now()
		err := s.runAttempt(identity)

		if s.ctx.Err() != nil {
			logger.Info("supervision stopped", "reason", s.ctx.Err())
			return
		}
		if err == nil {
			logger.Info("=== BOT EXITED ===", "attempts", attempt)
			return
		}

		// A session that stayed up for a while starts the backoff over
		if time.Since(startedAt) > s.maxDelay {
			delays.Reset()
		}
		delay := delays.Duration()

		logger.Error("bot session failed",
			"error", err,
			"attempt", attempt,
			"retry_in", delay,
		)

		timer := time.NewTimer(delay)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			logger.Info("supervision stopped", "reason", s.ctx.Err())
			return
		case <-timer.C:
		}
	}
}

// runAttempt runs one session, converting a panic into a retryable error so
// a bug in one bot's handling cannot take down the other bots.
func (s *Supervisor) runAttempt(identity string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session panicked: %v", r)
		}
	}()
	return s.run(s.ctx, identity)
}
