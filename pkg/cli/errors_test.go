package cli

import (
	"errors"
	"fmt"
	"testing"

	"fastrecycle-hq/salvage/pkg/config"
	"fastrecycle-hq/salvage/pkg/rules"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Field:   "output",
		Message: "unknown format",
	}

	expected := "config error in output: unknown format"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("run", underlyingErr)

	expected := "command run failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "plain", err: errors.New("boom"), want: ExitFailure},
		{name: "flag", err: NewConfigError("output", "bad"), want: ExitConfigError},
		{name: "config file", err: fmt.Errorf("load: %w", config.ValidationError{}), want: ExitConfigError},
		{name: "rule documents", err: NewCommandError("run", &rules.LoadError{Source: "mats_a.json", Message: "missing"}), want: ExitConfigError},
		{name: "wrapped plain", err: NewCommandError("run", errors.New("disk full")), want: ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
