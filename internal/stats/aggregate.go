package stats

import (
	"sort"

	"github.com/signalnine/planbench/internal/result"
)

// InstanceStats summarizes all repetitions of one problem instance. MeanS
// and MedianS cover the successful subset only; both are nil when no
// repetition succeeded, so a no-data scope can never leak a NaN into
// reporting or plotting.
type InstanceStats struct {
	Instance  string   `json:"instance"`
	Runs      int      `json:"runs"`
	Successes int      `json:"successes"`
	Timeouts  int      `json:"timeouts"`
	Failures  int      `json:"failures"`
	MeanS     *float64 `json:"mean_s"`
	MedianS   *float64 `json:"median_s"`
}

func (s InstanceStats) SuccessRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Runs)
}

// DominantOutcome is the most frequent non-success outcome, used to
// annotate instances that never solved. An instance with no runs at all
// has no outcome to report and yields the empty value.
func (s InstanceStats) DominantOutcome() result.Outcome {
	switch {
	case s.Runs == 0:
		return ""
	case s.Timeouts >= s.Failures:
		return result.OutcomeTimeout
	default:
		return result.OutcomeFailure
	}
}

// SuiteStats rolls instance stats up to one record per suite, preserving
// the registry's instance order.
type SuiteStats struct {
	Suite     string          `json:"suite"`
	Instances []InstanceStats `json:"instances"`
	Runs      int             `json:"runs"`
	Successes int             `json:"successes"`
	Timeouts  int             `json:"timeouts"`
	Failures  int             `json:"failures"`
	MeanS     *float64        `json:"mean_s"`
	MedianS   *float64        `json:"median_s"`
}

func (s SuiteStats) SuccessRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Runs)
}

// PerInstance reduces run results to one InstanceStats per instance, in
// the given order. Instances without results still appear, with zero runs.
func PerInstance(order []string, results []result.RunResult) []InstanceStats {
	byInstance := make(map[string][]result.RunResult, len(order))
	for _, r := range results {
		byInstance[r.Instance] = append(byInstance[r.Instance], r)
	}

	out := make([]InstanceStats, 0, len(order))
	for _, id := range order {
		st := InstanceStats{Instance: id}
		var elapsed []float64
		for _, r := range byInstance[id] {
			st.Runs++
			switch r.Outcome {
			case result.OutcomeSuccess:
				st.Successes++
				elapsed = append(elapsed, r.ElapsedS)
			case result.OutcomeTimeout:
				st.Timeouts++
			default:
				st.Failures++
			}
		}
		st.MeanS = mean(elapsed)
		st.MedianS = median(elapsed)
		out = append(out, st)
	}
	return out
}

// ForSuite aggregates a suite's results into per-instance stats plus one
// combined record. Counts partition the input exactly: every result lands
// in exactly one of successes/timeouts/failures.
func ForSuite(name string, order []string, results []result.RunResult) SuiteStats {
	st := SuiteStats{Suite: name, Instances: PerInstance(order, results)}
	var elapsed []float64
	for _, r := range results {
		st.Runs++
		switch r.Outcome {
		case result.OutcomeSuccess:
			st.Successes++
			elapsed = append(elapsed, r.ElapsedS)
		case result.OutcomeTimeout:
			st.Timeouts++
		default:
			st.Failures++
		}
	}
	st.MeanS = mean(elapsed)
	st.MedianS = median(elapsed)
	return st
}

func mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	m := sum / float64(len(xs))
	return &m
}

func median(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	var m float64
	if len(sorted)%2 == 1 {
		m = sorted[mid]
	} else {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}
