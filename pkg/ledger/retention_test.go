package ledger

import (
	"context"
	"testing"
	"time"

	"fastrecycle-hq/salvage/pkg/aggregate"
	"fastrecycle-hq/salvage/pkg/recycle"
)

func TestPruner_Prune(t *testing.T) {
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		config      *RetentionConfig
		wantDeleted int64
		wantLeft    int64
	}{
		{name: "keep forever", config: &RetentionConfig{}, wantDeleted: 0, wantLeft: 3},
		{name: "by age", config: &RetentionConfig{RetentionDays: 7}, wantDeleted: 2, wantLeft: 1},
		{name: "by count", config: &RetentionConfig{MaxRuns: 2}, wantDeleted: 1, wantLeft: 2},
		{name: "age then count", config: &RetentionConfig{RetentionDays: 15, MaxRuns: 1}, wantDeleted: 2, wantLeft: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()
			for i, age := range []int{1, 10, 20} {
				r := report(string(rune('a'+i)), "barrel", recycle.OutcomeCompleted, now.AddDate(0, 0, -age), aggregate.YieldMap{"hide": 1})
				if err := s.RecordRun(ctx, r); err != nil {
					t.Fatal(err)
				}
			}

			p := NewPruner(s, tt.config, nil)
			p.now = func() time.Time { return now }

			deleted, err := p.Prune(ctx)
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("Prune() = %d, want %d", deleted, tt.wantDeleted)
			}
			if left, _ := s.Count(ctx); left != tt.wantLeft {
				t.Errorf("Count() = %d, want %d", left, tt.wantLeft)
			}
		})
	}
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{name: "valid daily schedule", schedule: "0 3 * * *", wantRunning: true},
		{name: "valid hourly schedule", schedule: "0 * * * *", wantRunning: true},
		{name: "empty schedule", schedule: "", wantRunning: false},
		{name: "invalid schedule", schedule: "invalid cron", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			scheduler := NewScheduler(NewPruner(s, &RetentionConfig{RetentionDays: 30, Schedule: tt.schedule}, nil))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := scheduler.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Fatalf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if scheduler.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", scheduler.IsRunning(), tt.wantRunning)
			}
			if tt.wantRunning {
				if next := scheduler.NextRun(); next == nil || next.IsZero() {
					t.Errorf("NextRun() = %v, want a scheduled time", next)
				}
			}
			scheduler.Stop()
			if scheduler.IsRunning() {
				t.Error("IsRunning() after Stop() = true")
			}
		})
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := newTestStore(t)
	scheduler := NewScheduler(NewPruner(s, &RetentionConfig{Schedule: "0 3 * * *"}, nil))

	ctx, cancel := context.WithCancel(context.Background())
	if err := scheduler.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for scheduler.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if scheduler.IsRunning() {
		t.Error("scheduler still running after context cancellation")
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	old := report("old", "barrel", recycle.OutcomeCompleted, time.Now().AddDate(0, 0, -60), nil)
	if err := s.RecordRun(ctx, old); err != nil {
		t.Fatal(err)
	}

	NewScheduler(NewPruner(s, &RetentionConfig{RetentionDays: 30}, nil)).RunOnce(ctx)

	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("Count() after RunOnce = %d, want 0", n)
	}
}
