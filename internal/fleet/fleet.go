// ABOUTME: Fleet orchestrator: replays the slave registry at startup and spawns slaves on request.
// ABOUTME: Builds one Bot per connection attempt on top of the supervisor and dialer.

package fleet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/2389/chatfleet/internal/agent"
	"github.com/2389/chatfleet/internal/auth"
	"github.com/2389/chatfleet/internal/dedupe"
	"github.com/2389/chatfleet/internal/store"
	"github.com/2389/chatfleet/internal/transport"
)

// ErrNotStarted is returned by SpawnSlave before Start has been called.
var ErrNotStarted = errors.New("fleet not started")

// Params holds the parameters for creating a new Fleet.
type Params struct {
	MasterIdentity string
	AllowList      []string
	Credentials    *auth.Credentials
	Registry       store.Registry
	Dialer         transport.Dialer
	RetryDelay     time.Duration
	MaxRetryDelay  time.Duration
	Logger         *slog.Logger
}

// Fleet owns the master bot and every slave it has spawned.
type Fleet struct {
	masterIdentity string
	allowList      []string
	credentials    *auth.Credentials
	registry       store.Registry
	dialer         transport.Dialer
	retryDelay     time.Duration
	maxRetryDelay  time.Duration
	running        *dedupe.Set
	logger         *slog.Logger

	supervisor atomic.Pointer[agent.Supervisor]
}

// New creates a Fleet. Nothing connects until Start is called.
func New(p Params) (*Fleet, error) {
	if p.MasterIdentity == "" {
		return nil, errors.New("master identity is required")
	}
	if p.Credentials == nil {
		return nil, errors.New("credentials are required")
	}
	if p.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if p.Dialer == nil {
		return nil, errors.New("dialer is required")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Fleet{
		masterIdentity: p.MasterIdentity,
		allowList:      append([]string(nil), p.AllowList...),
		credentials:    p.Credentials,
		registry:       p.Registry,
		dialer:         p.Dialer,
		retryDelay:     p.RetryDelay,
		maxRetryDelay:  p.MaxRetryDelay,
		running:        dedupe.NewSet(),
		logger:         logger.With("component", "fleet"),
	}, nil
}

// Start replays the registry and starts the master. Every bot lives until
// ctx is cancelled. Start may only be called once.
func (f *Fleet) Start(ctx context.Context) error {
	sup := agent.NewSupervisor(ctx, agent.SupervisorParams{
		Run:           f.runSession,
		Running:       f.running,
		RetryDelay:    f.retryDelay,
		MaxRetryDelay: f.maxRetryDelay,
		Logger:        f.logger,
	})
	if !f.supervisor.CompareAndSwap(nil, sup) {
		return errors.New("fleet already started")
	}

	slaves, err := f.registry.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("loading registered slaves: %w", err)
	}
	f.logger.Info("restoring registered slaves", "count", len(slaves))

	for _, identity := range slaves {
		if _, err := sup.EnsureRunning(identity); err != nil {
			return fmt.Errorf("starting slave %s: %w", identity, err)
		}
	}

	if _, err := sup.EnsureRunning(f.masterIdentity); err != nil {
		return fmt.Errorf("starting master %s: %w", f.masterIdentity, err)
	}
	return nil
}

// Run starts the fleet and blocks until ctx is cancelled and every bot has stopped.
func (f *Fleet) Run(ctx context.Context) error {
	if err := f.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	f.Wait()
	f.logger.Info("fleet stopped")
	return nil
}

// SpawnSlave registers identity and makes sure its bot is running. The
// registry insert happens first so the slave survives a restart even if
// starting it fails.
func (f *Fleet) SpawnSlave(ctx context.Context, identity string) (agent.StartResult, error) {
	sup := f.supervisor.Load()
	if sup == nil {
		return 0, ErrNotStarted
	}

	if err := f.registry.InsertIfAbsent(ctx, identity); err != nil {
		return 0, fmt.Errorf("registering slave: %w", err)
	}

	result, err := sup.EnsureRunning(identity)
	if err != nil {
		return 0, fmt.Errorf("starting slave: %w", err)
	}
	return result, nil
}

// Running returns the identities whose bots are currently supervised.
func (f *Fleet) Running() []string {
	return f.running.Keys()
}

// Wait blocks until every bot loop has exited.
func (f *Fleet) Wait() {
	if sup := f.supervisor.Load(); sup != nil {
		sup.Wait()
	}
}

// runSession is one connection attempt for identity.
func (f *Fleet) runSession(ctx context.Context, identity string) error {
	logger := f.logger.With(
		"identity", identity,
		"session_id", uuid.New().String(),
	)

	sess, err := f.dialer.Dial(ctx, identity)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	logger.Info("connected")

	bot := agent.NewBot(agent.BotParams{
		Identity:       identity,
		Credential:     f.credentials.For(identity),
		MasterIdentity: f.masterIdentity,
		AllowList:      f.allowList,
		Session:        sess,
		Spawner:        f,
		Logger:         logger,
	})
	return bot.Run(ctx)
}

var _ agent.Spawner = (*Fleet)(nil)
