package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalnine/planbench/internal/config"
	"github.com/signalnine/planbench/internal/plot"
	"github.com/signalnine/planbench/internal/report"
	"github.com/signalnine/planbench/internal/result"
	"github.com/signalnine/planbench/internal/runner"
	"github.com/signalnine/planbench/internal/stats"
	"github.com/signalnine/planbench/internal/suite"
)

var (
	flagReps      int
	flagTimeout   int
	flagSavefig   string
	flagParallel  int
	flagUseDocker bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <suite>...",
		Short: "Run benchmark suites against the planner",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSuites,
	}
	cmd.Flags().IntVarP(&flagReps, "reps", "N", 0, "repetitions per instance")
	cmd.Flags().IntVarP(&flagTimeout, "timeout", "T", 0, "timeout seconds per run")
	cmd.Flags().StringVar(&flagSavefig, "savefig", "", "output figure path")
	cmd.Flags().IntVar(&flagParallel, "parallel", 1, "max concurrent instances")
	cmd.Flags().BoolVar(&flagUseDocker, "use-docker", false, "run the planner image in a container")
	cmd.MarkFlagRequired("reps")
	cmd.MarkFlagRequired("timeout")
	cmd.MarkFlagRequired("savefig")
	return cmd
}

func runSuites(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if flagReps < 1 {
		return fmt.Errorf("repetition count must be at least 1")
	}
	if flagTimeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second")
	}
	timeout := time.Duration(flagTimeout) * time.Second

	reg, err := suite.Load(cfg)
	if err != nil {
		return err
	}

	// Resolve every requested suite before any run, so an unknown name
	// fails without spawning a single planner process.
	suites := make([]suite.Suite, 0, len(args))
	for _, name := range args {
		s, err := reg.Resolve(name)
		if err != nil {
			return err
		}
		suites = append(suites, s)
	}

	ex, err := buildExecutor(cfg)
	if err != nil {
		return err
	}

	runDir, err := result.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		return err
	}
	fmt.Printf("Run directory: %s\n", runDir)

	ctx := context.Background()

	for _, s := range suites {
		results, err := collectSuite(ctx, ex, s, timeout, runDir)
		if err != nil {
			return err
		}
		// Persist before aggregation and rendering: a plot failure must
		// not lose collected data.
		if err := result.WriteSuiteResults(runDir, s.Name, results); err != nil {
			return err
		}

		order := make([]string, len(s.Instances))
		for i, inst := range s.Instances {
			order[i] = inst.ID
		}
		st := stats.ForSuite(s.Name, order, results)
		if err := report.WriteStats([]stats.SuiteStats{st}, "table", os.Stdout); err != nil {
			return err
		}

		figPath := figurePath(flagSavefig, s.Name, len(suites) > 1)
		if err := plot.Render(st, figPath); err != nil {
			return err
		}
		fmt.Printf("Figure written to %s\n", figPath)
	}
	return nil
}

func collectSuite(ctx context.Context, ex runner.Executor, s suite.Suite, timeout time.Duration, runDir string) ([]result.RunResult, error) {
	perInstance := make([][]result.RunResult, len(s.Instances))

	if flagParallel > 1 {
		jobs := make([]runner.Job, len(s.Instances))
		for i, inst := range s.Instances {
			i, inst := i, inst
			jobs[i] = func() error {
				fmt.Printf("Running %s/%s (%d reps)...\n", s.Name, inst.ID, flagReps)
				res, err := runner.Repeat(ctx, &runner.RepeatOpts{
					Executor: ex,
					Suite:    s.Name,
					Domain:   s.Domain,
					Instance: inst,
					Reps:     flagReps,
					Timeout:  timeout,
					RunDir:   runDir,
				})
				perInstance[i] = res
				return err
			}
		}
		if errs := runner.RunPool(flagParallel, jobs); len(errs) > 0 {
			return nil, errs[0]
		}
	} else {
		for i, inst := range s.Instances {
			fmt.Printf("Running %s/%s (%d reps)...\n", s.Name, inst.ID, flagReps)
			res, err := runner.Repeat(ctx, &runner.RepeatOpts{
				Executor: ex,
				Suite:    s.Name,
				Domain:   s.Domain,
				Instance: inst,
				Reps:     flagReps,
				Timeout:  timeout,
				RunDir:   runDir,
			})
			if err != nil {
				return nil, err
			}
			perInstance[i] = res
		}
	}

	var results []result.RunResult
	for _, res := range perInstance {
		results = append(results, res...)
	}
	return results, nil
}

func buildExecutor(cfg *config.Config) (runner.Executor, error) {
	if flagUseDocker || cfg.Planner.Bin == "" {
		if cfg.Docker.Image == "" {
			return nil, fmt.Errorf("docker execution requested but no docker image configured")
		}
		return &runner.DockerExecutor{
			Image:      cfg.Docker.Image,
			Args:       cfg.Planner.Args,
			BenchRoot:  cfg.Benchmarks.Root,
			BenchMount: cfg.Docker.BenchMount,
		}, nil
	}
	return &runner.ProcessExecutor{Bin: cfg.Planner.Bin, Args: cfg.Planner.Args}, nil
}

// figurePath derives the per-suite figure path. A single-suite invocation
// writes exactly the requested path; with several suites the suite name is
// inserted before the extension so no figure overwrites another.
func figurePath(savefig, suiteName string, multi bool) string {
	if !multi {
		return savefig
	}
	ext := filepath.Ext(savefig)
	return strings.TrimSuffix(savefig, ext) + "-" + suiteName + ext
}
