package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fastrecycle-hq/salvage/pkg/cli"
	"fastrecycle-hq/salvage/pkg/inventory"
	"fastrecycle-hq/salvage/pkg/recycle"
	"fastrecycle-hq/salvage/pkg/rules"
)

func setRunFlags(t *testing.T, dryRun bool, output string) {
	t.Helper()
	orig := runFlags
	runFlags.dryRun = dryRun
	runFlags.output = output
	runFlags.details = false
	t.Cleanup(func() { runFlags = orig })
}

func openBarrel(t *testing.T, ws *workspace) *inventory.File {
	t.Helper()
	catalog, err := inventory.LoadCatalog(filepath.Join(ws.dir, "catalog.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	target, err := inventory.Open(ws.barrel, catalog)
	if err != nil {
		t.Fatal(err)
	}
	f, ok := target.(*inventory.File)
	if !ok {
		t.Fatalf("Open() = %T, want *inventory.File", target)
	}
	return f
}

func TestRunRecycle_ConvertsAndSaves(t *testing.T) {
	ws := newWorkspace(t, true)
	setRunFlags(t, false, "text")
	cmd, out := testCommand()

	if err := runRecycle(cmd, []string{ws.barrel}); err != nil {
		t.Fatalf("runRecycle() error = %v", err)
	}

	text := out.String()
	for _, want := range []string{"Recycling has finished", "Leather Boots", "Leather", "Iron Ingot"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	barrel := openBarrel(t, ws)
	if n := barrel.Count(rules.CanonicalID("Skyrim.esm|0x13911")); n != 0 {
		t.Errorf("Leather Boots left = %d, want 0", n)
	}
	// 3 * 2 * 0.1 = 0.6 rounds up to 1.
	if n := barrel.Count(rules.CanonicalID("Skyrim.esm|0xDB5D2")); n != 1 {
		t.Errorf("Leather = %d, want 1", n)
	}
	// 1 * 5 * 0.05 = 0.25 rounds up to 1.
	if n := barrel.Count(rules.CanonicalID("Skyrim.esm|0x5ACE4")); n != 1 {
		t.Errorf("Iron Ingot = %d, want 1", n)
	}
	if n := barrel.Count(rules.CanonicalID("Skyrim.esm|0x64B3F")); n != 4 {
		t.Errorf("Red Apple = %d, want 4 (untouched)", n)
	}
}

func TestRunRecycle_DryRunLeavesFile(t *testing.T) {
	ws := newWorkspace(t, false)
	setRunFlags(t, true, "json")
	cmd, out := testCommand()

	before, err := os.ReadFile(ws.barrel)
	if err != nil {
		t.Fatal(err)
	}

	if err := runRecycle(cmd, []string{ws.barrel}); err != nil {
		t.Fatalf("runRecycle() error = %v", err)
	}

	var report recycle.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not a report: %v\n%s", err, out.String())
	}
	if report.Outcome != recycle.OutcomeCompleted || !report.DryRun {
		t.Errorf("report = %s dry_run=%v, want completed dry run", report.Outcome, report.DryRun)
	}
	if report.Yields[rules.CanonicalID("Skyrim.esm|0xDB5D2")] != 1 {
		t.Errorf("Yields = %v, want one Leather", report.Yields)
	}

	after, err := os.ReadFile(ws.barrel)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("dry run changed the container file")
	}
}

func TestRunRecycle_MultipleTargetsRenderArray(t *testing.T) {
	ws := newWorkspace(t, false)
	setRunFlags(t, true, "json")
	cmd, out := testCommand()

	if err := runRecycle(cmd, []string{ws.barrel, ws.statue}); err != nil {
		t.Fatalf("runRecycle() error = %v", err)
	}

	var reports []recycle.Report
	if err := json.Unmarshal(out.Bytes(), &reports); err != nil {
		t.Fatalf("output is not a report list: %v\n%s", err, out.String())
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[1].Outcome != recycle.OutcomeInvalidTarget {
		t.Errorf("statue outcome = %s, want invalid_target", reports[1].Outcome)
	}
}

func TestRunRecycle_MalformedRulesExitWithConfigError(t *testing.T) {
	ws := newWorkspace(t, false)
	setRunFlags(t, false, "text")
	cmd, out := testCommand()

	if err := os.WriteFile(filepath.Join(ws.rules, "mats_broken.json"), []byte(`{"Keywords": [`), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runRecycle(cmd, []string{ws.barrel})
	if err == nil {
		t.Fatal("runRecycle() error = nil, want error")
	}
	if !errors.Is(err, rules.ErrConfiguration) {
		t.Errorf("error = %v, want rules.ErrConfiguration", err)
	}
	if code := cli.ExitCode(err); code != cli.ExitConfigError {
		t.Errorf("ExitCode() = %d, want %d", code, cli.ExitConfigError)
	}
	if !strings.Contains(out.String(), "Recycling failed") {
		t.Errorf("output missing failure notice:\n%s", out.String())
	}

	barrel := openBarrel(t, ws)
	if n := barrel.Count(rules.CanonicalID("Skyrim.esm|0x13911")); n != 3 {
		t.Errorf("Leather Boots = %d, want 3 (untouched)", n)
	}
}

func TestRunRecycle_InvalidOutput(t *testing.T) {
	newWorkspace(t, false)

	for _, output := range []string{"csv", "yaml"} {
		setRunFlags(t, false, output)
		cmd, _ := testCommand()
		err := runRecycle(cmd, []string{"unused.yaml"})
		if code := cli.ExitCode(err); code != cli.ExitConfigError {
			t.Errorf("output %q: ExitCode() = %d, want %d (err = %v)", output, code, cli.ExitConfigError, err)
		}
	}
}

func TestRunRecycle_MissingTarget(t *testing.T) {
	ws := newWorkspace(t, false)
	setRunFlags(t, false, "text")
	cmd, _ := testCommand()

	err := runRecycle(cmd, []string{filepath.Join(ws.dir, "missing.yaml")})
	if err == nil {
		t.Fatal("runRecycle() error = nil, want error")
	}
	if code := cli.ExitCode(err); code != cli.ExitFailure {
		t.Errorf("ExitCode() = %d, want %d", code, cli.ExitFailure)
	}
}
