package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Loader builds a RuleSet from an ordered list of documents.
// It drops every reference the Resolver cannot resolve and merges the
// remaining rules key by key, later documents replacing earlier ones.
type Loader struct {
	resolver Resolver
	observer Observer
	logger   *slog.Logger
}

// NewLoader creates a loader. A nil observer or logger is replaced by a no-op
// observer and slog.Default().
func NewLoader(resolver Resolver, observer Observer, logger *slog.Logger) (*Loader, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver cannot be nil")
	}
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		resolver: resolver,
		observer: observer,
		logger:   logger.With("component", "rules.loader"),
	}, nil
}

// Load filters and merges docs in the order given. Input documents are not
// modified. Unresolved references are dropped and reported, never returned as
// errors; the only errors are a nil document and an empty match-key.
func (l *Loader) Load(docs []*RuleDocument) (*RuleSet, error) {
	startTime := time.Now()
	cache := newResolveCache(l.resolver)

	rs := &RuleSet{
		index:        make(map[string]int),
		excludedIDs:  make(map[string]struct{}),
		excludedText: make(map[string]struct{}),
	}

	for i, doc := range docs {
		if doc == nil {
			return nil, &ValidationError{
				Source:  fmt.Sprintf("documents[%d]", i),
				Message: "document cannot be nil",
			}
		}
		l.observer.DocumentLoaded(doc)
		rs.documents = append(rs.documents, doc.Source)

		for _, mr := range doc.MatchRules {
			if strings.TrimSpace(mr.Key) == "" {
				return nil, &ValidationError{
					Source:  doc.Source,
					Message: "match-key cannot be empty",
				}
			}
			kept := l.filterRules(cache, doc.Source, mr, rs)
			rs.put(mr.Key, kept)
		}

		for _, key := range doc.ExcludedKeys {
			h, ok := cache.resolve(key)
			if !ok {
				rs.drop(l.observer, DroppedReference{
					Kind:       DroppedExclusion,
					Source:     doc.Source,
					Identifier: key,
				})
				continue
			}
			rs.exclude(key, h)
		}
	}

	rs.version = rs.computeVersion()
	l.observer.RuleSetBuilt(rs)

	l.logger.Debug("rule set built",
		"documents", len(docs),
		"keys", rs.Len(),
		"excluded", len(rs.excluded),
		"dropped", len(rs.dropped),
		"version", rs.version,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return rs, nil
}

// filterRules returns a fresh slice holding the rules whose target resolves,
// with targets rewritten to the resolver's canonical identifier.
func (l *Loader) filterRules(cache *resolveCache, source string, mr MatchRule, rs *RuleSet) []OutputRule {
	kept := make([]OutputRule, 0, len(mr.Rules))
	for _, rule := range mr.Rules {
		h, ok := cache.resolve(rule.Target)
		if !ok {
			rs.drop(l.observer, DroppedReference{
				Kind:       DroppedRule,
				Source:     source,
				Key:        mr.Key,
				Identifier: rule.Target,
			})
			continue
		}
		target := CanonicalID(h.EntityID())
		if target == "" {
			target = CanonicalID(rule.Target)
		}
		kept = append(kept, OutputRule{Target: target, Ratio: rule.Ratio})
	}
	return kept
}

// put replaces the whole rule list for key. An existing key keeps its position.
func (rs *RuleSet) put(key string, rules []OutputRule) {
	folded := Fold(key)
	e := Entry{key: key, folded: folded, rules: rules}
	if i, ok := rs.index[folded]; ok {
		rs.entries[i] = e
		return
	}
	rs.index[folded] = len(rs.entries)
	rs.entries = append(rs.entries, e)
}

func (rs *RuleSet) exclude(key string, h Handle) {
	id := CanonicalID(h.EntityID())
	if id == "" {
		id = CanonicalID(key)
	}
	if _, dup := rs.excludedIDs[id]; !dup {
		rs.excludedIDs[id] = struct{}{}
		rs.excluded = append(rs.excluded, id)
	}
	rs.excludedText[Fold(key)] = struct{}{}
	if name := h.DisplayName(); name != "" {
		rs.excludedText[Fold(name)] = struct{}{}
	}
}

func (rs *RuleSet) drop(o Observer, ref DroppedReference) {
	rs.dropped = append(rs.dropped, ref)
	o.ReferenceDropped(ref)
}

func (rs *RuleSet) computeVersion() string {
	h := sha256.New()
	for _, e := range rs.entries {
		fmt.Fprintf(h, "k:%s\n", e.folded)
		for _, r := range e.rules {
			fmt.Fprintf(h, "r:%s=%s\n", r.Target, r.Ratio)
		}
	}
	for _, id := range rs.excluded {
		fmt.Fprintf(h, "x:%s\n", id)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
