package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"go.uber.org/zap"
)

// RefreshFunc rebuilds whatever the ledger's readers cache
type RefreshFunc func(ctx context.Context) error

// RefreshConfig holds refresh scheduler configuration
type RefreshConfig struct {
	Debounce   time.Duration // quiet period after the last trigger before a run starts
	RunTimeout time.Duration // upper bound of one refresh run
}

// DefaultRefreshConfig returns default refresh configuration
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Debounce:   300 * time.Millisecond,
		RunTimeout: 30 * time.Second,
	}
}

// RefreshScheduler coalesces change notifications into refresh runs.
//
// Triggers restart a trailing-edge debounce timer. When the timer fires a single run starts; a
// timer firing while a run is in flight queues exactly one follow-up run instead of a second
// concurrent one.
type RefreshScheduler struct {
	config  RefreshConfig
	refresh RefreshFunc
	logger  *zap.Logger

	mu        sync.Mutex
	isRunning bool
	timer     *time.Timer
	busy      bool
	pending   bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	runs     atomic.Int64
	failures atomic.Int64
}

// NewRefreshScheduler creates a scheduler that calls refresh
func NewRefreshScheduler(config RefreshConfig, refresh RefreshFunc, logger *zap.Logger) (*RefreshScheduler, error) {
	if refresh == nil {
		return nil, fmt.Errorf("%w: refresh function is required", ErrInvalidConfig)
	}
	if config.Debounce < 0 {
		return nil, fmt.Errorf("%w: debounce cannot be negative", ErrInvalidConfig)
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = DefaultRefreshConfig().RunTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshScheduler{
		config:  config,
		refresh: refresh,
		logger:  logger.Named("refresh_scheduler"),
	}, nil
}

// Start starts accepting triggers
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.isRunning = true
	s.logger.Info("Refresh scheduler started", zap.Duration("debounce", s.config.Debounce))
	return nil
}

// Stop cancels any pending trigger and waits for an in-flight run to finish or ctx to expire
func (s *RefreshScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Refresh scheduler stopped", zap.Int64("runs", s.runs.Load()))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("refresh scheduler stop: %w", ctx.Err())
	}
}

// Trigger records a change. The refresh runs once the triggers have been quiet for the debounce.
func (s *RefreshScheduler) Trigger() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.config.Debounce, s.fire)
	return nil
}

// Runs returns the number of completed refresh runs
func (s *RefreshScheduler) Runs() int64 {
	return s.runs.Load()
}

// Failures returns the number of refresh runs that returned an error
func (s *RefreshScheduler) Failures() int64 {
	return s.failures.Load()
}

func (s *RefreshScheduler) fire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	s.timer = nil
	if s.busy {
		s.pending = true
		return
	}
	s.busy = true
	s.wg.Add(1)
	go s.loop(s.ctx)
}

// loop runs refreshes until no follow-up is pending
func (s *RefreshScheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	for {
		s.runOnce(ctx)

		s.mu.Lock()
		if s.pending && s.isRunning {
			s.pending = false
			s.mu.Unlock()
			continue
		}
		s.busy = false
		s.mu.Unlock()
		return
	}
}

func (s *RefreshScheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	started := time.Now()
	err := s.refresh(runCtx)
	s.runs.Add(1)
	if err != nil {
		s.failures.Add(1)
		s.logger.Error("Refresh run failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return
	}
	s.logger.Debug("Refresh run completed", zap.Duration("elapsed", time.Since(started)))
}

// Handle implements shared.EventHandler: every ledger change event is a trigger
func (s *RefreshScheduler) Handle(_ context.Context, event shared.DomainEvent) error {
	if err := s.Trigger(); err != nil {
		s.logger.Debug("Change event ignored", zap.String("event_type", event.EventType()), zap.Error(err))
	}
	return nil
}

// EventTypes returns the ledger events that change the debt report
func (s *RefreshScheduler) EventTypes() []string {
	return ledger.LedgerChangeEventTypes
}

var _ shared.EventHandler = (*RefreshScheduler)(nil)
