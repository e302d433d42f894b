package logging

import (
	"context"
	"log/slog"

	"fastrecycle-hq/salvage/pkg/classify"
	"fastrecycle-hq/salvage/pkg/rules"
)

// Observer logs rule loading and item classification events. It satisfies
// both rules.Observer and aggregate.Observer.
type Observer struct {
	logger *slog.Logger
}

// NewObserver creates an observer writing to logger, or slog.Default() when nil.
func NewObserver(logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{logger: logger}
}

// DocumentLoaded logs one decoded document at debug level.
func (o *Observer) DocumentLoaded(doc *rules.RuleDocument) {
	o.logger.Debug("rule document loaded",
		"source", doc.Source,
		"keys", len(doc.MatchRules),
		"exclusions", len(doc.ExcludedKeys),
	)
}

// ReferenceDropped logs an identifier that did not resolve.
func (o *Observer) ReferenceDropped(ref rules.DroppedReference) {
	o.logger.Debug("reference dropped",
		"kind", string(ref.Kind),
		"source", ref.Source,
		"key", ref.Key,
		"identifier", ref.Identifier,
	)
}

// RuleSetBuilt logs a summary of the merged rule set, then every merged key at
// debug level.
func (o *Observer) RuleSetBuilt(rs *rules.RuleSet) {
	o.logger.Info("rule set merged",
		"documents", len(rs.Documents()),
		"keys", rs.Len(),
		"excluded", len(rs.ExcludedKeys()),
		"dropped", len(rs.Dropped()),
		"version", rs.Version(),
	)

	if !o.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i := 0; i < rs.Len(); i++ {
		e := rs.Entry(i)
		outputs := make([]string, 0, len(e.Rules()))
		for _, r := range e.Rules() {
			outputs = append(outputs, r.Target+"="+r.Ratio.String())
		}
		o.logger.Debug("merged rule", "key", e.Key(), "outputs", outputs)
	}
}

// ItemClassified logs the decision for one item at debug level.
func (o *Observer) ItemClassified(item classify.Item, res classify.Result) {
	o.logger.Debug("item classified",
		"item", item.ID,
		"name", item.Name,
		"quantity", item.Quantity,
		"outcome", string(res.Outcome),
		"key", res.Match.Key,
	)
}

// ItemSkipped logs an item left in the container. Eligible items without
// materials are logged at info level; ineligible ones at debug level.
func (o *Observer) ItemSkipped(item classify.Item, res classify.Result) {
	if res.Outcome == classify.OutcomeIneligible {
		o.logger.Debug("item skipped", "item", item.ID, "name", item.Name, "reason", string(res.Reason))
		return
	}
	o.logger.Info("item has no materials to get from recycling",
		"item", item.ID,
		"name", item.Name,
		"outcome", string(res.Outcome),
	)
}
