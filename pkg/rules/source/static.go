package source

import (
	"context"
	"sync"

	"fastrecycle-hq/salvage/pkg/rules"
)

// Static serves a fixed list of documents.
type Static struct {
	mu   sync.RWMutex
	docs []*rules.RuleDocument
}

// NewStatic creates a source serving docs in the given order.
func NewStatic(docs ...*rules.RuleDocument) *Static {
	return &Static{docs: docs}
}

// LoadDocuments returns a copy of the document list.
func (s *Static) LoadDocuments(ctx context.Context) ([]*rules.RuleDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*rules.RuleDocument, len(s.docs))
	copy(docs, s.docs)
	return docs, nil
}

// SetDocuments replaces the served documents.
func (s *Static) SetDocuments(docs ...*rules.RuleDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = docs
}
