package report

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/signalnine/planbench/internal/result"
	"github.com/signalnine/planbench/internal/stats"
)

// Generate reads stored run results and writes a summary report.
func Generate(runDir, format string, w io.Writer) error {
	suiteStats, err := CollectStats(runDir)
	if err != nil {
		return err
	}
	return WriteStats(suiteStats, format, w)
}

// CollectStats rebuilds per-suite statistics from a stored run directory.
// Instance order follows the stored result order, which matches the
// registry order at collection time.
func CollectStats(runDir string) ([]stats.SuiteStats, error) {
	suites, err := result.ListSuites(runDir)
	if err != nil {
		return nil, err
	}
	if len(suites) == 0 {
		return nil, fmt.Errorf("no results found under %s", runDir)
	}
	var out []stats.SuiteStats
	for _, name := range suites {
		results, err := result.ReadSuiteResults(runDir, name)
		if err != nil {
			log.Printf("warning: skipping suite %s: %v", name, err)
			continue
		}
		out = append(out, stats.ForSuite(name, instanceOrder(results), results))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no readable results under %s", runDir)
	}
	return out, nil
}

func WriteStats(suiteStats []stats.SuiteStats, format string, w io.Writer) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(suiteStats)
	case "markdown":
		for _, st := range suiteStats {
			suiteTable(st, w).RenderMarkdown()
		}
		return nil
	default:
		for _, st := range suiteStats {
			suiteTable(st, w).Render()
		}
		return nil
	}
}

func suiteTable(st stats.SuiteStats, w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(st.Suite)
	t.AppendHeader(table.Row{"INSTANCE", "RUNS", "OK", "TIMEOUT", "FAIL", "MEAN (S)", "MEDIAN (S)"})
	for _, inst := range st.Instances {
		t.AppendRow(table.Row{
			inst.Instance, inst.Runs, inst.Successes, inst.Timeouts, inst.Failures,
			fmtSeconds(inst.MeanS), fmtSeconds(inst.MedianS),
		})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("total (%.0f%% ok)", st.SuccessRate()*100),
		st.Runs, st.Successes, st.Timeouts, st.Failures,
		fmtSeconds(st.MeanS), fmtSeconds(st.MedianS),
	})
	return t
}

// fmtSeconds renders the no-data sentinel explicitly instead of letting a
// nil mean turn into a zero that looks like a measurement.
func fmtSeconds(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *v)
}

func instanceOrder(results []result.RunResult) []string {
	var order []string
	seen := map[string]bool{}
	for _, r := range results {
		if !seen[r.Instance] {
			seen[r.Instance] = true
			order = append(order, r.Instance)
		}
	}
	return order
}
