package recycle

import (
	"context"

	"fastrecycle-hq/salvage/pkg/classify"
	"fastrecycle-hq/salvage/pkg/rules"
)

// Target is whatever a recycle run was pointed at.
type Target interface {
	Name() string
}

// Container is a Target that holds items. Enumerate takes a read-only snapshot;
// Remove and Add mutate the live container.
type Container interface {
	Target

	// Enumerate returns one entry per item kind currently held.
	Enumerate(ctx context.Context) ([]classify.Item, error)

	// Remove takes quantity units of the item kind with the given identity.
	Remove(ctx context.Context, itemID string, quantity int64) error

	// Add puts quantity units of the resolved entity into the container.
	Add(ctx context.Context, entity rules.Handle, quantity int64) error
}

// Committer is implemented by containers that buffer mutations until the run
// has applied every change.
type Committer interface {
	Commit(ctx context.Context) error
}

// DocumentSource supplies the ordered rule documents for one run.
type DocumentSource interface {
	LoadDocuments(ctx context.Context) ([]*rules.RuleDocument, error)
}

// DocumentSourceFunc adapts a function to DocumentSource.
type DocumentSourceFunc func(ctx context.Context) ([]*rules.RuleDocument, error)

// LoadDocuments calls f.
func (f DocumentSourceFunc) LoadDocuments(ctx context.Context) ([]*rules.RuleDocument, error) {
	return f(ctx)
}

// Recorder persists or observes finished runs.
type Recorder interface {
	RecordRun(ctx context.Context, report *Report) error
}

// MultiRecorder records to every recorder in order and returns the first error.
type MultiRecorder []Recorder

// RecordRun implements Recorder.
func (m MultiRecorder) RecordRun(ctx context.Context, report *Report) error {
	var first error
	for _, r := range m {
		if err := r.RecordRun(ctx, report); err != nil && first == nil {
			first = err
		}
	}
	return first
}
