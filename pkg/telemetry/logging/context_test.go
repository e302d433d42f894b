package logging

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	ctx = WithRunID(ctx, "run-1")
	if got := GetRunID(ctx); got != "run-1" {
		t.Errorf("GetRunID() = %q, want %q", got, "run-1")
	}

	ctx = WithTarget(ctx, "Barrel")
	if got := GetTarget(ctx); got != "Barrel" {
		t.Errorf("GetTarget() = %q, want %q", got, "Barrel")
	}
}

func TestContextKeys_Empty(t *testing.T) {
	ctx := context.Background()
	if got := GetRunID(ctx); got != "" {
		t.Errorf("GetRunID() = %q, want empty", got)
	}
	if got := GetTarget(ctx); got != "" {
		t.Errorf("GetTarget() = %q, want empty", got)
	}
}

func TestExtractContextFields(t *testing.T) {
	ctx := WithTarget(WithRunID(context.Background(), "run-1"), "Barrel")
	want := []any{"run_id", "run-1", "target", "Barrel"}
	if diff := cmp.Diff(want, extractContextFields(ctx)); diff != "" {
		t.Errorf("extractContextFields() mismatch (-want +got):\n%s", diff)
	}
	if got := extractContextFields(context.Background()); len(got) != 0 {
		t.Errorf("extractContextFields(empty) = %v, want none", got)
	}
}
