package classify

import (
	"strings"

	"fastrecycle-hq/salvage/pkg/rules"
)

// Options are the policy switches of a classifier.
type Options struct {
	// MatchByName enables the display-name fallback when no tag matches.
	MatchByName bool

	// ExcludeSpecialState makes enchanted/special items ineligible.
	ExcludeSpecialState bool
}

// Reason explains why an item is not eligible.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonNotPlayable  Reason = "not_playable"
	ReasonCategory     Reason = "category"
	ReasonExcludedTag  Reason = "excluded_tag"
	ReasonSpecialState Reason = "special_state"
)

// Outcome is the terminal classification of one item.
type Outcome string

const (
	// OutcomeIneligible items are left untouched without being matched.
	OutcomeIneligible Outcome = "ineligible"
	// OutcomeNoRule items are eligible but nothing in the rule set applies.
	OutcomeNoRule Outcome = "no_rule"
	// OutcomeMatchedEmpty items only matched keys whose rule lists are empty.
	OutcomeMatchedEmpty Outcome = "matched_empty"
	// OutcomeMatched items have a rule list and are converted.
	OutcomeMatched Outcome = "matched"
)

// Strategy says which text produced a match.
type Strategy string

const (
	StrategyTag  Strategy = "tag"
	StrategyName Strategy = "name"
)

// Match is the rule selected for an item.
type Match struct {
	// Key is the selected match-key.
	Key string

	// Strategy is how the key was found.
	Strategy Strategy

	// Candidates lists every non-empty key that matched, in encounter order.
	// Key is always the last one.
	Candidates []string

	// Rules is the output rule list bound to Key.
	Rules []rules.OutputRule
}

// Result is what Classify decides for one item.
type Result struct {
	Outcome Outcome
	Reason  Reason
	Match   Match
}

// Classifier decides eligibility and the matching rule for single items.
// It holds no per-call state and may be shared.
type Classifier struct {
	opts Options
}

// New creates a classifier with the given policy options.
func New(opts Options) *Classifier {
	return &Classifier{opts: opts}
}

// Options returns the classifier's policy options.
func (c *Classifier) Options() Options {
	return c.opts
}

// Eligible reports whether item may be converted at all.
func (c *Classifier) Eligible(item Item, rs *rules.RuleSet) bool {
	return c.ineligibility(item, rs) == ReasonNone
}

func (c *Classifier) ineligibility(item Item, rs *rules.RuleSet) Reason {
	if !item.Playable {
		return ReasonNotPlayable
	}
	if !item.Category.Convertible() {
		return ReasonCategory
	}
	for _, tag := range item.Tags {
		if rs.IsExcluded(tag.ID, tag.Text) {
			return ReasonExcludedTag
		}
	}
	if c.opts.ExcludeSpecialState && item.Special {
		return ReasonSpecialState
	}
	return ReasonNone
}

// Match resolves the rule list for item. Tags are tried first, in the item's
// own order; each tag is tested against every key in rule-set order and the
// last non-empty key encountered wins. The display name is tried only when
// tags give no non-empty match and MatchByName is set.
func (c *Classifier) Match(item Item, rs *rules.RuleSet) (Match, bool) {
	m, ok, _ := c.match(item, rs)
	return m, ok
}

// Classify combines Eligible and Match into one terminal outcome.
func (c *Classifier) Classify(item Item, rs *rules.RuleSet) Result {
	if reason := c.ineligibility(item, rs); reason != ReasonNone {
		return Result{Outcome: OutcomeIneligible, Reason: reason}
	}

	m, ok, sawEmpty := c.match(item, rs)
	switch {
	case ok:
		return Result{Outcome: OutcomeMatched, Match: m}
	case sawEmpty:
		return Result{Outcome: OutcomeMatchedEmpty}
	default:
		return Result{Outcome: OutcomeNoRule}
	}
}

func (c *Classifier) match(item Item, rs *rules.RuleSet) (Match, bool, bool) {
	texts := make([]string, 0, len(item.Tags))
	for _, tag := range item.Tags {
		texts = append(texts, tag.Text)
	}

	m, ok, sawEmpty := probe(texts, rs, StrategyTag)
	if ok || !c.opts.MatchByName || item.Name == "" {
		return m, ok, sawEmpty
	}

	m, ok, nameEmpty := probe([]string{item.Name}, rs, StrategyName)
	return m, ok, sawEmpty || nameEmpty
}

// probe collects the keys contained in any of texts, in encounter order, and
// selects the last one with a non-empty rule list. sawEmpty reports whether a
// key with an empty list matched.
func probe(texts []string, rs *rules.RuleSet, strategy Strategy) (m Match, ok bool, sawEmpty bool) {
	last := -1
	var candidates []string

	for _, text := range texts {
		if text == "" {
			continue
		}
		folded := rules.Fold(text)
		for i := 0; i < rs.Len(); i++ {
			e := rs.Entry(i)
			if !strings.Contains(folded, e.Folded()) {
				continue
			}
			if e.Empty() {
				sawEmpty = true
				continue
			}
			candidates = append(candidates, e.Key())
			last = i
		}
	}

	if last < 0 {
		return Match{}, false, sawEmpty
	}

	e := rs.Entry(last)
	return Match{
		Key:        e.Key(),
		Strategy:   strategy,
		Candidates: candidates,
		Rules:      e.Rules(),
	}, true, sawEmpty
}
