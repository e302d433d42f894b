package aggregate

import (
	"fmt"
	"sort"

	"fastrecycle-hq/salvage/pkg/amount"
)

// Accumulator holds exact running totals per output identifier.
// Totals only ever grow.
type Accumulator struct {
	totals map[string]amount.Amount
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{totals: make(map[string]amount.Amount)}
}

// Add adds v to the total for target. A first touch starts from zero.
func (a *Accumulator) Add(target string, v amount.Amount) {
	a.totals[target] = a.totals[target].Add(v)
}

// Total returns the exact running total for target.
func (a *Accumulator) Total(target string) amount.Amount {
	return a.totals[target]
}

// Targets returns every touched identifier in sorted order.
func (a *Accumulator) Targets() []string {
	out := make([]string, 0, len(a.totals))
	for k := range a.totals {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Snapshot copies the exact totals.
func (a *Accumulator) Snapshot() map[string]amount.Amount {
	out := make(map[string]amount.Amount, len(a.totals))
	for k, v := range a.totals {
		out[k] = v
	}
	return out
}

// Finalize rounds every total up to an integer, once. Totals that are exactly
// zero are left out, so any strictly positive contribution yields at least one unit.
func (a *Accumulator) Finalize() (YieldMap, error) {
	out := make(YieldMap, len(a.totals))
	for target, total := range a.totals {
		n, err := total.Ceil()
		if err != nil {
			return nil, fmt.Errorf("yield for %q: %w", target, err)
		}
		if n > 0 {
			out[target] = n
		}
	}
	return out, nil
}

// YieldMap is the final integer yield per output identifier. It never holds
// zero amounts.
type YieldMap map[string]int64

// Targets returns the identifiers in sorted order.
func (y YieldMap) Targets() []string {
	out := make([]string, 0, len(y))
	for k := range y {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Total returns the sum of all amounts.
func (y YieldMap) Total() int64 {
	var n int64
	for _, v := range y {
		n += v
	}
	return n
}
