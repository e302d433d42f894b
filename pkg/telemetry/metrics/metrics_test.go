package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"fastrecycle-hq/salvage/pkg/aggregate"
	"fastrecycle-hq/salvage/pkg/amount"
	"fastrecycle-hq/salvage/pkg/classify"
	"fastrecycle-hq/salvage/pkg/config"
	"fastrecycle-hq/salvage/pkg/recycle"
	"fastrecycle-hq/salvage/pkg/rules"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:   true,
		Namespace: "test",
		Subsystem: "salvage",
	}
}

var onlyKnown = rules.ResolverFunc(func(id string) (rules.Handle, bool) {
	if id == "missing" {
		return nil, false
	}
	return rules.Entity{ID: id}, true
})

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
	if NewCollector(&config.MetricsConfig{Enabled: true}, nil).Registry() == nil {
		t.Error("NewCollector(nil registry) did not create one")
	}
}

func TestCollector_RuleEvents(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	loader, err := rules.NewLoader(onlyKnown, collector, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = loader.Load([]*rules.RuleDocument{
		{
			Source: "/data/rules/mats_base.json",
			MatchRules: []rules.MatchRule{
				{Key: "leather", Rules: []rules.OutputRule{{Target: "hide", Ratio: amount.MustFloat(0.1)}}},
				{Key: "iron", Rules: []rules.OutputRule{{Target: "missing", Ratio: amount.MustFloat(0.5)}}},
			},
			ExcludedKeys: []string{"missing"},
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	rm := collector.ruleMetrics
	if got := testutil.ToFloat64(rm.documentsLoaded.WithLabelValues("mats_base.json")); got != 1 {
		t.Errorf("documents loaded = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.dropped.WithLabelValues("rule")); got != 1 {
		t.Errorf("dropped rules = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.dropped.WithLabelValues("exclusion")); got != 1 {
		t.Errorf("dropped exclusions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.built); got != 1 {
		t.Errorf("rule sets built = %v, want 1", got)
	}
}

func TestCollector_ItemEvents(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	item := classify.Item{ID: "boots", Quantity: 1}

	collector.ItemClassified(item, classify.Result{Outcome: classify.OutcomeMatched, Match: classify.Match{Strategy: classify.StrategyTag}})
	collector.ItemClassified(item, classify.Result{Outcome: classify.OutcomeMatched, Match: classify.Match{Strategy: classify.StrategyName}})
	collector.ItemClassified(item, classify.Result{Outcome: classify.OutcomeIneligible, Reason: classify.ReasonNotPlayable})
	collector.ItemSkipped(item, classify.Result{Outcome: classify.OutcomeIneligible, Reason: classify.ReasonNotPlayable})
	collector.ItemSkipped(item, classify.Result{Outcome: classify.OutcomeNoRule})

	im := collector.itemMetrics
	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"matched by tag", im.classified.WithLabelValues("matched", "tag"), 1},
		{"matched by name", im.classified.WithLabelValues("matched", "name"), 1},
		{"ineligible", im.classified.WithLabelValues("ineligible", "none"), 1},
		{"skipped not playable", im.skipped.WithLabelValues("not_playable"), 1},
		{"skipped no rule", im.skipped.WithLabelValues("no_rule"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.c); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollector_RecordRun(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	ctx := context.Background()

	completed := &recycle.Report{
		Outcome:  recycle.OutcomeCompleted,
		Duration: 20 * time.Millisecond,
		Yields:   aggregate.YieldMap{"hide": 3, "ore": 1},
		Consumed: []aggregate.Consumption{{ItemID: "boots", Quantity: 2}, {ItemID: "helmet", Quantity: 1}},
	}
	dry := &recycle.Report{
		Outcome: recycle.OutcomeCompleted,
		DryRun:  true,
		Yields:  aggregate.YieldMap{"hide": 100},
	}
	empty := &recycle.Report{Outcome: recycle.OutcomeEmpty}

	for _, r := range []*recycle.Report{completed, dry, empty, nil} {
		if err := collector.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	rm := collector.runMetrics
	if got := testutil.ToFloat64(rm.runsTotal.WithLabelValues("completed", "false")); got != 1 {
		t.Errorf("completed runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.runsTotal.WithLabelValues("completed", "true")); got != 1 {
		t.Errorf("dry runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.runsTotal.WithLabelValues("empty", "false")); got != 1 {
		t.Errorf("empty runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.yieldUnits.WithLabelValues("hide")); got != 3 {
		t.Errorf("hide units = %v, want 3 (dry runs excluded)", got)
	}
	if got := testutil.ToFloat64(rm.itemsConsumed); got != 3 {
		t.Errorf("items consumed = %v, want 3", got)
	}
	if got := testutil.CollectAndCount(rm.runDuration); got != 2 {
		t.Errorf("run duration series = %d, want 2", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.RuleSetBuilt(nil)
	collector.ItemSkipped(classify.Item{}, classify.Result{Outcome: classify.OutcomeNoRule})
	if err := collector.RecordRun(context.Background(), &recycle.Report{Outcome: recycle.OutcomeCompleted}); err != nil {
		t.Fatal(err)
	}

	if got := testutil.CollectAndCount(collector.runMetrics.runsTotal); got != 0 {
		t.Errorf("runs series = %d, want 0 when disabled", got)
	}
	if got := testutil.ToFloat64(collector.ruleMetrics.built); got != 0 {
		t.Errorf("rule sets built = %v, want 0 when disabled", got)
	}
}

func TestCollector_CardinalityLimit(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.cardinalityLimiter = NewCardinalityLimiter(1)

	report := &recycle.Report{
		Outcome: recycle.OutcomeCompleted,
		Yields:  aggregate.YieldMap{"a": 1, "b": 2, "c": 3},
	}
	if err := collector.RecordRun(context.Background(), report); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(collector.runMetrics.yieldUnits.WithLabelValues("a")); got != 1 {
		t.Errorf("a units = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.runMetrics.yieldUnits.WithLabelValues(overflowLabel)); got != 5 {
		t.Errorf("other units = %v, want 5", got)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	for _, set := range []string{"a", "b", "a"} {
		if !cl.Allow(set) {
			t.Errorf("Allow(%q) = false, want true", set)
		}
	}
	if cl.Allow("c") {
		t.Error("Allow(c) = true past the limit")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	if err := collector.RecordRun(context.Background(), &recycle.Report{Outcome: recycle.OutcomeNothingToProcess}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `test_salvage_runs_total{dry_run="false",outcome="nothing_to_process"} 1`) {
		t.Errorf("body does not contain the runs counter:\n%s", rec.Body.String())
	}
}
