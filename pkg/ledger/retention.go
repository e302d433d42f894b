package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls how long runs are kept.
type RetentionConfig struct {
	// RetentionDays is the number of days to keep runs.
	// 0 means keep runs forever.
	RetentionDays int

	// MaxRuns is the maximum number of runs to keep. 0 means unlimited.
	MaxRuns int64

	// Schedule is a cron expression for automatic pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables the scheduler.
	Schedule string
}

// DefaultRetentionConfig returns the default retention configuration.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		RetentionDays: 30,
		Schedule:      "0 3 * * *",
	}
}

// Pruner enforces the retention policy on a store.
type Pruner struct {
	store  *Store
	config *RetentionConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewPruner creates a pruner for store.
func NewPruner(store *Store, config *RetentionConfig, logger *slog.Logger) *Pruner {
	if config == nil {
		config = DefaultRetentionConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		store:  store,
		config: config,
		logger: logger.With("component", "ledger.retention"),
		now:    time.Now,
	}
}

// Prune deletes runs older than the retention period, then trims the ledger
// to MaxRuns. It returns the number of deleted runs.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	startTime := p.now()
	var total int64

	if p.config.RetentionDays > 0 {
		cutoff := startTime.AddDate(0, 0, -p.config.RetentionDays)
		n, err := p.store.Prune(ctx, cutoff)
		if err != nil {
			return total, fmt.Errorf("age-based pruning failed: %w", err)
		}
		total += n
	}

	if p.config.MaxRuns > 0 {
		n, err := p.store.Trim(ctx, p.config.MaxRuns)
		if err != nil {
			return total, fmt.Errorf("count-based pruning failed: %w", err)
		}
		total += n
	}

	p.logger.Debug("pruning finished",
		"deleted_count", total,
		"retention_days", p.config.RetentionDays,
		"max_runs", p.config.MaxRuns,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	return total, nil
}

// Scheduler runs a pruner on a cron schedule.
type Scheduler struct {
	pruner  *Pruner
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a scheduler for pruner.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		cron:   cron.New(),
		logger: pruner.logger.With("component", "ledger.scheduler"),
	}
}

// Start schedules pruning with the configured cron expression and stops the
// scheduler when ctx is done. An empty schedule does nothing.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule := s.pruner.config.Schedule
	if schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"schedule", schedule,
		"retention_days", s.pruner.config.RetentionDays,
		"max_runs", s.pruner.config.MaxRuns,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce executes one pruning cycle and logs its result.
func (s *Scheduler) RunOnce(ctx context.Context) {
	deleted, err := s.pruner.Prune(ctx)
	if err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("scheduled pruning completed", "deleted_count", deleted)
	} else {
		s.logger.Debug("scheduled pruning completed, no runs deleted")
	}
}

// Stop stops the scheduler and waits for a running prune to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled pruning time, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
