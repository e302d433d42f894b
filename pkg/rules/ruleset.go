package rules

// Entry is one merged match-key of a RuleSet.
type Entry struct {
	key    string
	folded string
	rules  []OutputRule
}

// Key returns the key as spelled by the document that defined it last.
func (e Entry) Key() string { return e.key }

// Folded returns the case-folded key used for matching.
func (e Entry) Folded() string { return e.folded }

// Empty reports whether the key matches but yields nothing.
func (e Entry) Empty() bool { return len(e.rules) == 0 }

// Rules returns a copy of the output rules.
func (e Entry) Rules() []OutputRule {
	out := make([]OutputRule, len(e.rules))
	copy(out, e.rules)
	return out
}

// DroppedKind distinguishes what an unresolved reference belonged to.
type DroppedKind string

const (
	// DroppedRule is an output rule whose target does not resolve.
	DroppedRule DroppedKind = "rule"
	// DroppedExclusion is an exclusion entry that does not resolve.
	DroppedExclusion DroppedKind = "exclusion"
)

// DroppedReference records one reference removed during loading.
type DroppedReference struct {
	Kind       DroppedKind `json:"kind"`
	Source     string      `json:"source"`
	Key        string      `json:"key,omitempty"`
	Identifier string      `json:"identifier"`
}

// RuleSet is the merged, environment-filtered result of Load. It is immutable.
type RuleSet struct {
	entries      []Entry
	index        map[string]int
	excluded     []string
	excludedIDs  map[string]struct{}
	excludedText map[string]struct{}
	dropped      []DroppedReference
	documents    []string
	version      string
}

// Len returns the number of match-keys.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.entries)
}

// Entry returns the i-th match-key in probe order.
func (rs *RuleSet) Entry(i int) Entry {
	return rs.entries[i]
}

// Keys returns all match-keys in probe order.
func (rs *RuleSet) Keys() []string {
	keys := make([]string, 0, rs.Len())
	for _, e := range rs.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Lookup returns the entry bound to key, compared case-insensitively.
func (rs *RuleSet) Lookup(key string) (Entry, bool) {
	if rs == nil {
		return Entry{}, false
	}
	i, ok := rs.index[Fold(key)]
	if !ok {
		return Entry{}, false
	}
	return rs.entries[i], true
}

// MatchRules returns the merged rules as plain values, in probe order.
func (rs *RuleSet) MatchRules() []MatchRule {
	out := make([]MatchRule, 0, rs.Len())
	for _, e := range rs.entries {
		out = append(out, MatchRule{Key: e.key, Rules: e.Rules()})
	}
	return out
}

// ExcludedKeys returns the deduplicated, resolved exclusion identifiers.
func (rs *RuleSet) ExcludedKeys() []string {
	out := make([]string, len(rs.excluded))
	copy(out, rs.excluded)
	return out
}

// IsExcluded reports whether a tag with the given identifier or text is excluded.
// Identifiers are compared canonically, text case-insensitively.
func (rs *RuleSet) IsExcluded(tagID, tagText string) bool {
	if rs == nil {
		return false
	}
	if tagID != "" {
		if _, ok := rs.excludedIDs[CanonicalID(tagID)]; ok {
			return true
		}
	}
	if tagText != "" {
		if _, ok := rs.excludedText[Fold(tagText)]; ok {
			return true
		}
	}
	return false
}

// Dropped returns the references removed because they did not resolve.
func (rs *RuleSet) Dropped() []DroppedReference {
	out := make([]DroppedReference, len(rs.dropped))
	copy(out, rs.dropped)
	return out
}

// Documents returns the sources merged into the set, in merge order.
func (rs *RuleSet) Documents() []string {
	out := make([]string, len(rs.documents))
	copy(out, rs.documents)
	return out
}

// Version is a content hash of the merged rules and exclusions.
func (rs *RuleSet) Version() string {
	if rs == nil {
		return ""
	}
	return rs.version
}
