package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"fastrecycle-hq/salvage/pkg/aggregate"
	"fastrecycle-hq/salvage/pkg/recycle"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func report(id, target string, outcome recycle.Outcome, started time.Time, yields aggregate.YieldMap) *recycle.Report {
	return &recycle.Report{
		RunID:        id,
		Target:       target,
		Outcome:      outcome,
		Message:      outcome.Message(),
		StartedAt:    started,
		Duration:     1500 * time.Millisecond,
		RulesVersion: "abc123",
		Documents:    []string{"mats_base.json"},
		Yields:       yields,
		Consumed:     []aggregate.Consumption{{ItemID: "Skyrim.esm|0x1", Name: "Boots", Quantity: 2}},
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "empty path", cfg: &Config{Driver: DriverPureGo}},
		{name: "unknown driver", cfg: &Config{Path: ":memory:", Driver: "postgres"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if s, err := Open(tt.cfg, nil); err == nil {
				s.Close()
				t.Error("Open() error = nil, want error")
			}
		})
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(&Config{Path: ":memory:", Driver: DriverPureGo}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	n, err := s.Count(context.Background())
	if err != nil || n != 0 {
		t.Errorf("Count() = %d, %v, want 0", n, err)
	}
}

func TestStore_RecordAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	in := report("run-1", "barrel", recycle.OutcomeCompleted, started, aggregate.YieldMap{"hide": 3, "ore": 1})
	if err := s.RecordRun(ctx, in); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	want := &Run{
		ID:           "run-1",
		Target:       "barrel",
		Outcome:      recycle.OutcomeCompleted,
		StartedAt:    started,
		Duration:     1500 * time.Millisecond,
		RulesVersion: "abc123",
		Documents:    []string{"mats_base.json"},
		Consumed:     in.Consumed,
		Yields:       aggregate.YieldMap{"hide": 3, "ore": 1},
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("GetRun() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_RecordRun_FailedRunKeepsError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := &recycle.Report{RunID: "run-f", Target: "barrel", Outcome: recycle.OutcomeFailed, Error: "bad document", StartedAt: time.Now()}
	if err := s.RecordRun(ctx, in); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	got, err := s.GetRun(ctx, "run-f")
	if err != nil {
		t.Fatal(err)
	}
	if got.Error != "bad document" || got.Outcome != recycle.OutcomeFailed || len(got.Yields) != 0 {
		t.Errorf("GetRun() = %+v", got)
	}
}

func TestStore_RecordRun_Invalid(t *testing.T) {
	s := newTestStore(t)
	if err := s.RecordRun(context.Background(), nil); err == nil {
		t.Error("RecordRun(nil) error = nil")
	}
	if err := s.RecordRun(context.Background(), &recycle.Report{}); err == nil {
		t.Error("RecordRun(no id) error = nil")
	}
}

func TestStore_GetRun_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetRun(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun() error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, r := range []*recycle.Report{
		report("a", "barrel", recycle.OutcomeCompleted, base, aggregate.YieldMap{"hide": 1}),
		report("b", "chest", recycle.OutcomeCompleted, base.Add(time.Hour), aggregate.YieldMap{"ore": 2}),
		report("c", "barrel", recycle.OutcomeEmpty, base.Add(2*time.Hour), nil),
	} {
		if err := s.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun(%d) error = %v", i, err)
		}
	}

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{name: "all newest first", want: []string{"c", "b", "a"}},
		{name: "by target", opts: ListOptions{Target: "barrel"}, want: []string{"c", "a"}},
		{name: "since", opts: ListOptions{Since: base.Add(30 * time.Minute)}, want: []string{"c", "b"}},
		{name: "limit", opts: ListOptions{Limit: 1}, want: []string{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := s.ListRuns(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListRuns() error = %v", err)
			}
			var ids []string
			for _, r := range runs {
				ids = append(ids, r.ID)
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("ListRuns() ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_Totals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	dry := report("dry", "barrel", recycle.OutcomeCompleted, base, aggregate.YieldMap{"hide": 100})
	dry.DryRun = true
	for _, r := range []*recycle.Report{
		report("a", "barrel", recycle.OutcomeCompleted, base, aggregate.YieldMap{"hide": 1, "ore": 5}),
		report("b", "chest", recycle.OutcomeCompleted, base, aggregate.YieldMap{"hide": 2}),
		dry,
	} {
		if err := s.RecordRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Totals(ctx, time.Time{})
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	want := []YieldTotal{
		{Target: "ore", Quantity: 5, Runs: 1},
		{Target: "hide", Quantity: 3, Runs: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Totals() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_PruneAndTrim(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d"} {
		r := report(id, "barrel", recycle.OutcomeCompleted, base.Add(time.Duration(i)*24*time.Hour), aggregate.YieldMap{"hide": 1})
		if err := s.RecordRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.Prune(ctx, base.Add(36*time.Hour))
	if err != nil || n != 2 {
		t.Fatalf("Prune() = %d, %v, want 2", n, err)
	}
	n, err = s.Trim(ctx, 1)
	if err != nil || n != 1 {
		t.Fatalf("Trim() = %d, %v, want 1", n, err)
	}

	runs, err := s.ListRuns(ctx, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != "d" {
		t.Errorf("remaining runs = %+v, want only d", runs)
	}

	totals, err := s.Totals(ctx, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 1 || totals[0].Quantity != 1 {
		t.Errorf("Totals() after pruning = %+v, want hide=1", totals)
	}
}

func TestStore_Ping(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v, want nil", err)
	}

	s.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() after Close = nil, want error")
	}
}
