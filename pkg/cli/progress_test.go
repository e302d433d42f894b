package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"fastrecycle-hq/salvage/pkg/recycle"
)

func TestLineProgress(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressReporter(&buf)

	progress.Start(12)
	progress.Done(&recycle.Report{Target: "Barrel", Outcome: recycle.OutcomeCompleted})
	progress.Done(&recycle.Report{Target: "Statue", Outcome: recycle.OutcomeInvalidTarget})
	progress.Finish()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output = %q, want 3 lines", buf.String())
	}
	if lines[0] != "[ 1/12] Barrel: completed" {
		t.Errorf("line 1 = %q", lines[0])
	}
	if lines[1] != "[ 2/12] Statue: invalid_target" {
		t.Errorf("line 2 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "1 of 12 containers converted in ") {
		t.Errorf("summary = %q", lines[2])
	}
}

func TestLineProgress_EmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressReporter(&buf)

	progress.Start(0)
	progress.Finish()

	if buf.Len() != 0 {
		t.Errorf("output = %q, want nothing for an empty batch", buf.String())
	}
}

func TestLineProgress_Error(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressReporter(&buf)

	progress.Start(3)
	progress.Done(&recycle.Report{Target: "Barrel", Outcome: recycle.OutcomeCompleted})
	progress.Error(errors.New("container locked"))

	if !strings.Contains(buf.String(), "stopped after 1 of 3 containers: container locked") {
		t.Errorf("output = %q", buf.String())
	}
}
