package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"fastrecycle-hq/salvage/pkg/classify"
	"fastrecycle-hq/salvage/pkg/ledger"
	"fastrecycle-hq/salvage/pkg/recycle"
	"fastrecycle-hq/salvage/pkg/rules"
)

// ReportView renders one run report.
type ReportView struct {
	*recycle.Report

	// Names resolves output identifiers to display names. Optional.
	Names rules.Resolver `json:"-"`

	// Verbose lists every skipped item.
	Verbose bool `json:"-"`
}

// RenderText writes the outcome notice followed by what was consumed and produced.
func (v ReportView) RenderText(w io.Writer) error {
	r := v.Report
	fmt.Fprintln(w, r.Message)
	if r.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", r.Error)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  run:\t%s\n", r.RunID)
	fmt.Fprintf(tw, "  target:\t%s\n", r.Target)
	if r.RulesVersion != "" {
		fmt.Fprintf(tw, "  rules:\t%s (%d documents, %d dropped references)\n", r.RulesVersion, len(r.Documents), len(r.Dropped))
	}
	if r.DryRun {
		fmt.Fprintf(tw, "  dry run:\tyes, nothing was changed\n")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Consumed) > 0 {
		fmt.Fprintln(w, "\nConsumed:")
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, c := range r.Consumed {
			fmt.Fprintf(tw, "  %d\t%s\t%s\n", c.Quantity, c.Name, c.ItemID)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(r.Yields) > 0 {
		fmt.Fprintln(w, "\nProduced:")
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, target := range r.Yields.Targets() {
			fmt.Fprintf(tw, "  %d\t%s\t%s\n", r.Yields[target], v.name(target), target)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if v.Verbose {
		var skipped []string
		for _, it := range r.Items {
			if it.Outcome == classify.OutcomeMatched {
				continue
			}
			why := string(it.Outcome)
			if it.Reason != classify.ReasonNone {
				why += ": " + string(it.Reason)
			}
			skipped = append(skipped, fmt.Sprintf("  %s\t%s", it.Name, why))
		}
		if len(skipped) > 0 {
			fmt.Fprintln(w, "\nSkipped:")
			tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, strings.Join(skipped, "\n"))
			if err := tw.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v ReportView) name(id string) string {
	if v.Names == nil {
		return ""
	}
	if h, ok := v.Names.Resolve(id); ok {
		return h.DisplayName()
	}
	return ""
}

// RuleSetView renders a merged rule set for the validate command.
type RuleSetView struct {
	Version    string                   `json:"version"`
	Documents  []string                 `json:"documents"`
	MatchRules []rules.MatchRule        `json:"rules"`
	Excluded   []string                 `json:"excluded"`
	Dropped    []rules.DroppedReference `json:"dropped"`
}

// NewRuleSetView captures rs for output.
func NewRuleSetView(rs *rules.RuleSet) RuleSetView {
	return RuleSetView{
		Version:    rs.Version(),
		Documents:  rs.Documents(),
		MatchRules: rs.MatchRules(),
		Excluded:   rs.ExcludedKeys(),
		Dropped:    rs.Dropped(),
	}
}

// RenderText lists the documents, the merged rules and everything dropped.
func (v RuleSetView) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "Rule set %s\n", v.Version)

	fmt.Fprintln(w, "\nMaterial files:")
	for _, doc := range v.Documents {
		fmt.Fprintf(w, "  %s\n", doc)
	}

	fmt.Fprintln(w, "\nMerged data:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, mr := range v.MatchRules {
		if len(mr.Rules) == 0 {
			fmt.Fprintf(tw, "  %s\t(no output)\n", mr.Key)
			continue
		}
		outputs := make([]string, 0, len(mr.Rules))
		for _, r := range mr.Rules {
			outputs = append(outputs, fmt.Sprintf("%s x %s", r.Target, r.Ratio))
		}
		fmt.Fprintf(tw, "  %s\t%s\n", mr.Key, strings.Join(outputs, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(v.Excluded) > 0 {
		fmt.Fprintln(w, "\nIgnored keywords:")
		for _, id := range v.Excluded {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}

	if len(v.Dropped) > 0 {
		fmt.Fprintln(w, "\nDropped references:")
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, d := range v.Dropped {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", d.Kind, d.Source, d.Key, d.Identifier)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// RunsView renders ledger runs as a table.
type RunsView []*ledger.Run

// Header implements Tabular.
func (v RunsView) Header() []string {
	return []string{"started", "run", "target", "outcome", "dry_run", "consumed", "units", "duration_ms"}
}

// Rows implements Tabular.
func (v RunsView) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, r := range v {
		var consumed int64
		for _, c := range r.Consumed {
			consumed += c.Quantity
		}
		rows = append(rows, []string{
			r.StartedAt.Format(time.RFC3339),
			r.ID,
			r.Target,
			string(r.Outcome),
			strconv.FormatBool(r.DryRun),
			strconv.FormatInt(consumed, 10),
			strconv.FormatInt(r.Yields.Total(), 10),
			strconv.FormatInt(r.Duration.Milliseconds(), 10),
		})
	}
	return rows
}

// RenderText writes an aligned table.
func (v RunsView) RenderText(w io.Writer) error {
	if len(v) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	return renderTable(w, v)
}

// TotalsView renders yield totals as a table.
type TotalsView []ledger.YieldTotal

// Header implements Tabular.
func (v TotalsView) Header() []string {
	return []string{"target", "quantity", "runs"}
}

// Rows implements Tabular.
func (v TotalsView) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, t := range v {
		rows = append(rows, []string{t.Target, strconv.FormatInt(t.Quantity, 10), strconv.Itoa(t.Runs)})
	}
	return rows
}

// RenderText writes an aligned table.
func (v TotalsView) RenderText(w io.Writer) error {
	if len(v) == 0 {
		_, err := fmt.Fprintln(w, "Nothing produced yet.")
		return err
	}
	return renderTable(w, v)
}

func renderTable(w io.Writer, t Tabular) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(t.Header(), "\t")))
	for _, row := range t.Rows() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
