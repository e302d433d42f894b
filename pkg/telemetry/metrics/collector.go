package metrics

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"fastrecycle-hq/salvage/pkg/classify"
	"fastrecycle-hq/salvage/pkg/config"
	"fastrecycle-hq/salvage/pkg/recycle"
	"fastrecycle-hq/salvage/pkg/rules"
)

// overflowLabel replaces label values once the cardinality limit is reached.
const overflowLabel = "other"

// Collector owns every salvage metric. It satisfies rules.Observer,
// aggregate.Observer and recycle.Recorder, so one value can be attached to
// the loader, the engine and the executor.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	ruleMetrics *RuleMetrics
	itemMetrics *ItemMetrics
	runMetrics  *RunMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering into registry, or into a fresh
// registry when nil.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "salvage"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		ruleMetrics:        NewRuleMetrics(cfg, registry),
		itemMetrics:        NewItemMetrics(cfg, registry),
		runMetrics:         NewRunMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}
}

// DocumentLoaded counts a decoded document by file name.
func (c *Collector) DocumentLoaded(doc *rules.RuleDocument) {
	if !c.config.Enabled {
		return
	}
	c.ruleMetrics.RecordDocument(c.limit("source", filepath.Base(doc.Source)))
}

// ReferenceDropped counts an unresolved reference.
func (c *Collector) ReferenceDropped(ref rules.DroppedReference) {
	if !c.config.Enabled {
		return
	}
	c.ruleMetrics.RecordDropped(string(ref.Kind))
}

// RuleSetBuilt records the merged key count.
func (c *Collector) RuleSetBuilt(rs *rules.RuleSet) {
	if !c.config.Enabled {
		return
	}
	c.ruleMetrics.RecordBuilt(rs.Len())
}

// ItemClassified counts one classification.
func (c *Collector) ItemClassified(_ classify.Item, res classify.Result) {
	if !c.config.Enabled {
		return
	}
	c.itemMetrics.RecordClassified(string(res.Outcome), string(res.Match.Strategy))
}

// ItemSkipped counts an untouched item by reason, or by outcome when it was
// eligible but had nothing to yield.
func (c *Collector) ItemSkipped(_ classify.Item, res classify.Result) {
	if !c.config.Enabled {
		return
	}
	reason := string(res.Reason)
	if reason == "" {
		reason = string(res.Outcome)
	}
	c.itemMetrics.RecordSkipped(reason)
}

// RecordRun implements recycle.Recorder. Yields and consumption count only
// for runs that changed a container.
func (c *Collector) RecordRun(_ context.Context, report *recycle.Report) error {
	if !c.config.Enabled || report == nil {
		return nil
	}

	c.runMetrics.RecordRun(string(report.Outcome), report.DryRun, report.Duration)
	if !report.Outcome.Mutated() || report.DryRun {
		return nil
	}

	for _, target := range report.Yields.Targets() {
		c.runMetrics.RecordYield(c.limit("target", target), report.Yields[target])
	}
	var consumed int64
	for _, item := range report.Consumed {
		consumed += item.Quantity
	}
	c.runMetrics.RecordConsumed(consumed)
	return nil
}

// limit folds label values into "other" once the cardinality limit is reached.
func (c *Collector) limit(label, value string) string {
	if !c.cardinalityLimiter.Allow(fmt.Sprintf("%s:%s", label, value)) {
		return overflowLabel
	}
	return value
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet may be used: it is already known or the
// limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
