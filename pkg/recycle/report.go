package recycle

import (
	"time"

	"fastrecycle-hq/salvage/pkg/aggregate"
	"fastrecycle-hq/salvage/pkg/rules"
)

// Outcome is the terminal state of one run.
type Outcome string

const (
	// OutcomeInvalidTarget means the target holds no items at all.
	OutcomeInvalidTarget Outcome = "invalid_target"
	// OutcomeEmpty means the container holds nothing playable.
	OutcomeEmpty Outcome = "empty"
	// OutcomeFailed means the run stopped on an error.
	OutcomeFailed Outcome = "failed"
	// OutcomeNothingToProcess means no item was convertible.
	OutcomeNothingToProcess Outcome = "nothing_to_process"
	// OutcomeCompleted means yields were computed and applied.
	OutcomeCompleted Outcome = "completed"
)

// Message returns the user-facing notice for the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeInvalidTarget:
		return "Can not recycle on this. Select another container."
	case OutcomeEmpty:
		return "This container is empty. Nothing to recycle."
	case OutcomeFailed:
		return "Recycling failed. Check the rule documents."
	case OutcomeNothingToProcess:
		return "Nothing to recycle in this container."
	case OutcomeCompleted:
		return "Recycling has finished"
	default:
		return string(o)
	}
}

// Mutated reports whether the outcome implies container changes.
func (o Outcome) Mutated() bool {
	return o == OutcomeCompleted
}

// Report describes one run.
type Report struct {
	RunID     string        `json:"run_id"`
	Target    string        `json:"target"`
	Outcome   Outcome       `json:"outcome"`
	Message   string        `json:"message"`
	DryRun    bool          `json:"dry_run,omitempty"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`

	RulesVersion string                   `json:"rules_version,omitempty"`
	Documents    []string                 `json:"documents,omitempty"`
	Dropped      []rules.DroppedReference `json:"dropped,omitempty"`

	Yields   aggregate.YieldMap      `json:"yields,omitempty"`
	Consumed []aggregate.Consumption `json:"consumed,omitempty"`
	Items    []aggregate.ItemReport  `json:"items,omitempty"`
}

func (r *Report) finish(outcome Outcome, err error) *Report {
	r.Outcome = outcome
	r.Message = outcome.Message()
	if err != nil {
		r.Error = err.Error()
	}
	r.Duration = time.Since(r.StartedAt)
	return r
}

func (r *Report) fill(rs *rules.RuleSet, res *aggregate.Result) {
	if rs != nil {
		r.RulesVersion = rs.Version()
		r.Documents = rs.Documents()
		r.Dropped = rs.Dropped()
	}
	if res != nil {
		r.Yields = res.Yields
		r.Consumed = res.Consumed
		r.Items = res.Items
	}
}
