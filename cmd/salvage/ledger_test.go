package main

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"fastrecycle-hq/salvage/pkg/cli"
	"fastrecycle-hq/salvage/pkg/ledger"
)

func resetLedgerFlags(t *testing.T) {
	t.Helper()
	orig := ledgerFlags
	ledgerFlags.target = ""
	ledgerFlags.since = 0
	ledgerFlags.limit = 50
	ledgerFlags.output = "text"
	ledgerFlags.olderThan = 0
	ledgerFlags.keep = 0
	t.Cleanup(func() { ledgerFlags = orig })
}

// recordRuns performs one dry run and one real run against the barrel.
func recordRuns(t *testing.T, ws *workspace) {
	t.Helper()
	for _, dryRun := range []bool{true, false} {
		setRunFlags(t, dryRun, "text")
		cmd, _ := testCommand()
		if err := runRecycle(cmd, []string{ws.barrel}); err != nil {
			t.Fatalf("runRecycle(dryRun=%v) error = %v", dryRun, err)
		}
	}
}

func TestLedgerList(t *testing.T) {
	ws := newWorkspace(t, true)
	recordRuns(t, ws)
	resetLedgerFlags(t)

	ledgerFlags.output = "json"
	cmd, out := testCommand()
	if err := runLedgerList(cmd, nil); err != nil {
		t.Fatalf("runLedgerList() error = %v", err)
	}

	var runs []ledger.Run
	if err := json.Unmarshal(out.Bytes(), &runs); err != nil {
		t.Fatalf("output is not a run list: %v\n%s", err, out.String())
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	for _, r := range runs {
		if r.Target != "Barrel" {
			t.Errorf("Target = %q, want Barrel", r.Target)
		}
	}

	ledgerFlags.output = "csv"
	ledgerFlags.limit = 1
	cmd, out = testCommand()
	if err := runLedgerList(cmd, nil); err != nil {
		t.Fatalf("runLedgerList(csv) error = %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(out.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d CSV records, want header plus 1 row", len(records))
	}
}

func TestLedgerList_TargetFilter(t *testing.T) {
	ws := newWorkspace(t, true)
	recordRuns(t, ws)
	resetLedgerFlags(t)

	ledgerFlags.target = "Chest"
	cmd, out := testCommand()
	if err := runLedgerList(cmd, nil); err != nil {
		t.Fatalf("runLedgerList() error = %v", err)
	}
	if !strings.Contains(out.String(), "No runs recorded.") {
		t.Errorf("output = %q, want no runs", out.String())
	}
}

func TestLedgerShow(t *testing.T) {
	ws := newWorkspace(t, true)
	recordRuns(t, ws)
	resetLedgerFlags(t)

	ledgerFlags.output = "json"
	cmd, out := testCommand()
	if err := runLedgerList(cmd, nil); err != nil {
		t.Fatal(err)
	}
	var runs []ledger.Run
	if err := json.Unmarshal(out.Bytes(), &runs); err != nil {
		t.Fatal(err)
	}

	cmd, out = testCommand()
	if err := runLedgerShow(cmd, []string{runs[0].ID}); err != nil {
		t.Fatalf("runLedgerShow() error = %v", err)
	}
	var run ledger.Run
	if err := json.Unmarshal(out.Bytes(), &run); err != nil {
		t.Fatalf("output is not a run: %v", err)
	}
	if run.ID != runs[0].ID {
		t.Errorf("ID = %q, want %q", run.ID, runs[0].ID)
	}

	cmd, _ = testCommand()
	if err := runLedgerShow(cmd, []string{"no-such-run"}); err == nil {
		t.Error("runLedgerShow(unknown) error = nil, want error")
	}
}

func TestLedgerTotals_ExcludesDryRuns(t *testing.T) {
	ws := newWorkspace(t, true)
	recordRuns(t, ws)
	resetLedgerFlags(t)

	ledgerFlags.output = "json"
	cmd, out := testCommand()
	if err := runLedgerTotals(cmd, nil); err != nil {
		t.Fatalf("runLedgerTotals() error = %v", err)
	}

	var totals []ledger.YieldTotal
	if err := json.Unmarshal(out.Bytes(), &totals); err != nil {
		t.Fatalf("output is not a totals list: %v\n%s", err, out.String())
	}
	if len(totals) != 2 {
		t.Fatalf("got %d totals, want 2", len(totals))
	}
	for _, total := range totals {
		if total.Quantity != 1 || total.Runs != 1 {
			t.Errorf("total %s = %d over %d runs, want 1 over 1", total.Target, total.Quantity, total.Runs)
		}
	}
}

func TestLedgerPrune(t *testing.T) {
	ws := newWorkspace(t, true)
	recordRuns(t, ws)
	resetLedgerFlags(t)

	ledgerFlags.keep = 1
	cmd, out := testCommand()
	if err := runLedgerPrune(cmd, nil); err != nil {
		t.Fatalf("runLedgerPrune() error = %v", err)
	}
	if got := out.String(); got != "Deleted 1 runs, 1 remaining.\n" {
		t.Errorf("output = %q", got)
	}

	ledgerFlags.keep = 0
	ledgerFlags.olderThan = time.Nanosecond
	cmd, out = testCommand()
	if err := runLedgerPrune(cmd, nil); err != nil {
		t.Fatalf("runLedgerPrune() error = %v", err)
	}
	if got := out.String(); got != "Deleted 1 runs, 0 remaining.\n" {
		t.Errorf("output = %q", got)
	}
}

func TestLedgerPrune_ConfiguredRetentionKeepsRecentRuns(t *testing.T) {
	ws := newWorkspace(t, true)
	recordRuns(t, ws)
	resetLedgerFlags(t)

	cmd, out := testCommand()
	if err := runLedgerPrune(cmd, nil); err != nil {
		t.Fatalf("runLedgerPrune() error = %v", err)
	}
	if got := out.String(); got != "Deleted 0 runs, 2 remaining.\n" {
		t.Errorf("output = %q", got)
	}
}

func TestLedgerCommands_DisabledLedger(t *testing.T) {
	newWorkspace(t, false)
	resetLedgerFlags(t)

	for name, run := range map[string]func() error{
		"list":   func() error { c, _ := testCommand(); return runLedgerList(c, nil) },
		"totals": func() error { c, _ := testCommand(); return runLedgerTotals(c, nil) },
		"prune":  func() error { c, _ := testCommand(); return runLedgerPrune(c, nil) },
	} {
		err := run()
		if code := cli.ExitCode(err); code != cli.ExitConfigError {
			t.Errorf("%s: ExitCode() = %d, want %d (err = %v)", name, code, cli.ExitConfigError, err)
		}
	}
}
