package plot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/planbench/internal/plot"
	"github.com/signalnine/planbench/internal/stats"
)

func f(v float64) *float64 { return &v }

func TestRenderWritesFigure(t *testing.T) {
	st := stats.SuiteStats{
		Suite: "rover",
		Instances: []stats.InstanceStats{
			{Instance: "p01", Runs: 5, Successes: 5, MeanS: f(1.2), MedianS: f(1.1)},
			{Instance: "p02", Runs: 5, Successes: 3, Timeouts: 2, MeanS: f(4.5), MedianS: f(4.0)},
			{Instance: "p03", Runs: 5, Timeouts: 5},
		},
		Runs: 15, Successes: 8, Timeouts: 7,
		MeanS: f(2.4), MedianS: f(1.9),
	}
	out := filepath.Join(t.TempDir(), "rover-N5-T10.pdf")
	require.NoError(t, plot.Render(st, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderNoSuccessesPlaceholder(t *testing.T) {
	st := stats.SuiteStats{
		Suite: "rover",
		Instances: []stats.InstanceStats{
			{Instance: "p01", Runs: 3, Failures: 3},
			{Instance: "p02", Runs: 3, Failures: 3},
		},
		Runs: 6, Failures: 6,
	}
	out := filepath.Join(t.TempDir(), "rover.svg")
	require.NoError(t, plot.Render(st, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "no successful runs")
}

func TestRenderZeroRunInstanceNotAnnotated(t *testing.T) {
	st := stats.SuiteStats{
		Suite: "rover",
		Instances: []stats.InstanceStats{
			{Instance: "p01", Runs: 1, Successes: 1, MeanS: f(1.0), MedianS: f(1.0)},
			// Configured but never ran: must stay on the axis without a
			// bogus outcome label.
			{Instance: "p02"},
		},
		Runs: 1, Successes: 1, MeanS: f(1.0), MedianS: f(1.0),
	}
	out := filepath.Join(t.TempDir(), "rover.svg")
	require.NoError(t, plot.Render(st, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "timeout")
	assert.NotContains(t, string(data), "failure")
	assert.Contains(t, string(data), "p02")
}

func TestRenderUnknownExtension(t *testing.T) {
	st := stats.SuiteStats{
		Suite:     "rover",
		Instances: []stats.InstanceStats{{Instance: "p01", Runs: 1, Successes: 1, MeanS: f(1)}},
		Runs:      1, Successes: 1, MeanS: f(1),
	}
	err := plot.Render(st, filepath.Join(t.TempDir(), "rover.nope"))
	require.Error(t, err)
}

func TestRenderUnwritablePath(t *testing.T) {
	st := stats.SuiteStats{
		Suite:     "rover",
		Instances: []stats.InstanceStats{{Instance: "p01", Runs: 1, Successes: 1, MeanS: f(1)}},
		Runs:      1, Successes: 1, MeanS: f(1),
	}
	err := plot.Render(st, filepath.Join(t.TempDir(), "missing", "sub", "rover.pdf"))
	require.Error(t, err)
}
