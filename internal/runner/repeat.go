package runner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/signalnine/planbench/internal/result"
	"github.com/signalnine/planbench/internal/suite"
)

type RepeatOpts struct {
	Executor Executor
	Suite    string
	Domain   string
	Instance suite.Instance
	Reps     int
	Timeout  time.Duration
	RunDir   string
}

// Repeat runs the planner Reps times against one instance and returns
// exactly one RunResult per repetition, in index order. Repetitions are
// independent: a timeout or failure at index k never stops index k+1.
// Only a SpawnError (the planner cannot be launched at all) aborts, since
// continuing could collect no data.
func Repeat(ctx context.Context, opts *RepeatOpts) ([]result.RunResult, error) {
	planDir := result.PlanDir(opts.RunDir, opts.Suite, opts.Instance.ID)
	if err := os.MkdirAll(planDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating plan dir: %w", err)
	}

	results := make([]result.RunResult, 0, opts.Reps)
	for rep := 0; rep < opts.Reps; rep++ {
		planOut := result.PlanPath(opts.RunDir, opts.Suite, opts.Instance.ID, rep)
		sol, err := opts.Executor.Solve(ctx, opts.Domain, opts.Instance.Problem, planOut, opts.Timeout)
		if err != nil {
			return results, err
		}
		r := result.RunResult{
			Suite:    opts.Suite,
			Instance: opts.Instance.ID,
			Rep:      rep,
			Outcome:  sol.Outcome,
			ElapsedS: sol.Elapsed.Seconds(),
			ExitCode: sol.ExitCode,
		}
		if sol.Outcome == result.OutcomeSuccess {
			r.PlanPath = planOut
		}
		results = append(results, r)
	}
	return results, nil
}
