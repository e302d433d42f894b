package aggregate

import (
	"fmt"
	"log/slog"
	"time"

	"fastrecycle-hq/salvage/pkg/amount"
	"fastrecycle-hq/salvage/pkg/classify"
	"fastrecycle-hq/salvage/pkg/rules"
)

// Consumption is one item kind taken in full by a pass.
type Consumption struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name,omitempty"`
	Quantity int64  `json:"quantity"`
}

// ItemReport records what happened to one item kind.
type ItemReport struct {
	ItemID   string            `json:"item_id"`
	Name     string            `json:"name,omitempty"`
	Quantity int64             `json:"quantity"`
	Outcome  classify.Outcome  `json:"outcome"`
	Reason   classify.Reason   `json:"reason,omitempty"`
	Key      string            `json:"key,omitempty"`
	Strategy classify.Strategy `json:"strategy,omitempty"`
}

// Result is the outcome of one aggregation pass. Nothing in it has been applied.
type Result struct {
	// Yields is the rounded yield per output identifier.
	Yields YieldMap

	// Exact holds the totals before rounding.
	Exact map[string]amount.Amount

	// Consumed lists every converted item kind with its full quantity, once.
	Consumed []Consumption

	// Items reports every item kind in input order.
	Items []ItemReport
}

// Empty reports whether the pass neither consumed nor produced anything.
func (r *Result) Empty() bool {
	return len(r.Consumed) == 0 && len(r.Yields) == 0
}

// Count returns how many items ended with the given outcome.
func (r *Result) Count(outcome classify.Outcome) int {
	n := 0
	for _, it := range r.Items {
		if it.Outcome == outcome {
			n++
		}
	}
	return n
}

// Observer receives per-item events.
type Observer interface {
	// ItemClassified is called for every item kind, converted or not.
	ItemClassified(item classify.Item, res classify.Result)

	// ItemSkipped is called for item kinds left untouched.
	ItemSkipped(item classify.Item, res classify.Result)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) ItemClassified(classify.Item, classify.Result) {}
func (NopObserver) ItemSkipped(classify.Item, classify.Result) {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) ItemClassified(item classify.Item, res classify.Result) {
	for _, o := range m {
		o.ItemClassified(item, res)
	}
}

func (m MultiObserver) ItemSkipped(item classify.Item, res classify.Result) {
	for _, o := range m {
		o.ItemSkipped(item, res)
	}
}

// Engine folds a collection of items into one yield.
type Engine struct {
	classifier *classify.Classifier
	observer   Observer
	logger     *slog.Logger
}

// NewEngine creates an engine. A nil observer or logger is replaced by a no-op
// observer and slog.Default().
func NewEngine(classifier *classify.Classifier, observer Observer, logger *slog.Logger) (*Engine, error) {
	if classifier == nil {
		return nil, fmt.Errorf("classifier cannot be nil")
	}
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		classifier: classifier,
		observer:   observer,
		logger:     logger.With("component", "aggregate.engine"),
	}, nil
}

// Aggregate classifies every item kind and accumulates ratio * weight * quantity
// for each rule of the matched list. Rounding up happens once, after every item
// has been folded in, so the result does not depend on item order. Items are
// consumed all or nothing.
func (e *Engine) Aggregate(items []classify.Item, rs *rules.RuleSet) (*Result, error) {
	startTime := time.Now()
	acc := NewAccumulator()
	res := &Result{}

	for _, item := range Normalize(items) {
		cr := e.classifier.Classify(item, rs)
		e.observer.ItemClassified(item, cr)

		report := ItemReport{
			ItemID:   item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Outcome:  cr.Outcome,
			Reason:   cr.Reason,
			Key:      cr.Match.Key,
			Strategy: cr.Match.Strategy,
		}
		res.Items = append(res.Items, report)

		if cr.Outcome != classify.OutcomeMatched {
			e.observer.ItemSkipped(item, cr)
			continue
		}

		weight := item.UnitWeight.MulInt(item.Quantity)
		for _, rule := range cr.Match.Rules {
			acc.Add(rule.Target, rule.Ratio.Mul(weight))
		}
		res.Consumed = append(res.Consumed, Consumption{
			ItemID:   item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
		})
	}

	yields, err := acc.Finalize()
	if err != nil {
		return nil, err
	}
	res.Yields = yields
	res.Exact = acc.Snapshot()

	e.logger.Debug("aggregation finished",
		"items", len(res.Items),
		"consumed", len(res.Consumed),
		"outputs", len(res.Yields),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return res, nil
}

// Normalize folds entries that share an identity into one, summing quantities
// and keeping the first entry's attributes and position. Entries without an
// identity or with a non-positive quantity are dropped.
func Normalize(items []classify.Item) []classify.Item {
	out := make([]classify.Item, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		if item.ID == "" || item.Quantity <= 0 {
			continue
		}
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}
