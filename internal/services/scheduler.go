package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wallet/internal/log"
)

// SchedulerConfig holds configuration for the subscription scheduler
type SchedulerConfig struct {
	// Interval between processing runs (default: 1h)
	Interval time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{Interval: time.Hour}
}

// Scheduler runs a SubscriptionProcessor on a fixed interval.
type Scheduler struct {
	processor *SubscriptionProcessor
	config    SchedulerConfig
	now       func() time.Time
	logger    *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduler(processor *SubscriptionProcessor, config SchedulerConfig, logger *log.Logger) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultSchedulerConfig().Interval
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Scheduler{
		processor: processor,
		config:    config,
		now:       time.Now,
		logger:    logger.WithComponent(log.ComponentSubscription),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	s.logger.InfoContext(ctx, "Subscription scheduler started", "interval", s.config.Interval)
	return nil
}

// Stop signals the loop and waits for the current run to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		s.logger.InfoContext(ctx, "Subscription scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Subscription scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Process immediately on startup
	s.runOnce(ctx)

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.processor.ProcessDue(ctx, s.now()); err != nil {
		s.logger.ErrorContext(ctx, "Subscription run failed", log.FieldError, err)
	}
}
