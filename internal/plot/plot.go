// Package plot renders one figure per suite from aggregated statistics,
// the counterpart of the original harness's matplotlib summary.
package plot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/signalnine/planbench/internal/stats"
)

// Render writes a figure for one suite to outPath. The format follows the
// file extension (.pdf, .svg, .png, ...). Instances appear on the X axis
// in registry order; instances that never solved stay on the axis with an
// outcome annotation instead of being dropped, and a suite with zero
// successes still produces a valid placeholder figure.
func Render(st stats.SuiteStats, outPath string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %d/%d runs solved", st.Suite, st.Successes, st.Runs)
	p.X.Label.Text = "instance"
	p.Y.Label.Text = "mean solve time (s)"

	names := make([]string, len(st.Instances))
	values := make(plotter.Values, len(st.Instances))
	var annotations plotter.XYLabels
	for i, inst := range st.Instances {
		names[i] = inst.Instance
		if inst.MeanS != nil {
			values[i] = *inst.MeanS
			continue
		}
		// No successful run for this instance: keep it visible on the
		// axis, annotated with what happened instead. An instance with
		// no runs at all has nothing to annotate.
		values[i] = 0
		if outcome := inst.DominantOutcome(); outcome != "" {
			annotations.XYs = append(annotations.XYs, plotter.XY{X: float64(i), Y: 0})
			annotations.Labels = append(annotations.Labels, string(outcome))
		}
	}

	if st.Successes == 0 {
		p.Title.Text = fmt.Sprintf("%s: no successful runs", st.Suite)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("building bar chart: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)

	if len(annotations.Labels) > 0 {
		labels, err := plotter.NewLabels(annotations)
		if err != nil {
			return fmt.Errorf("building annotations: %w", err)
		}
		p.Add(labels)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return fmt.Errorf("saving figure %s: %w", outPath, err)
	}
	return nil
}
