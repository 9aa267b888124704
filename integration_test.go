package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/signalnine/planbench/cmd"
	"github.com/signalnine/planbench/internal/result"
)

// fixture builds a workspace with a benchmark tree, a stub planner and a
// config file, and returns the config path plus the workspace root.
func fixture(t *testing.T, plannerBody string) (cfgPath, root string) {
	t.Helper()
	root = t.TempDir()

	for _, p := range []string{
		"bench/HDDL-total/rover/domains/domain.hddl",
		"bench/HDDL-total/rover/problems/p01.hddl",
		"bench/HDDL-total/rover/problems/p02.hddl",
	} {
		path := filepath.Join(root, p)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("(define)"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	planner := filepath.Join(root, "planner.sh")
	if err := os.WriteFile(planner, []byte("#!/bin/sh\n"+plannerBody+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfgPath = filepath.Join(root, "planbench.yaml")
	cfgYAML := fmt.Sprintf(`planner:
  bin: %s
benchmarks:
  root: %s
suites:
  - name: rover
results:
  dir: %s
`, planner, filepath.Join(root, "bench"), filepath.Join(root, "results"))
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, root
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := cmd.NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func latestRun(t *testing.T, root string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(filepath.Join(root, "results", "latest"))
	if err != nil {
		t.Fatalf("resolving latest run: %v", err)
	}
	return resolved
}

func TestRunCollectsAllRepetitions(t *testing.T) {
	cfgPath, root := fixture(t, `echo "(plan)" > "$3"`)
	fig := filepath.Join(root, "rover-N5-T10.pdf")

	err := execute(t, "--config", cfgPath, "run", "rover", "-N", "5", "-T", "10", "--savefig", fig)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	results, err := result.ReadSuiteResults(latestRun(t, root), "rover")
	if err != nil {
		t.Fatalf("reading results: %v", err)
	}
	// 2 instances x 5 repetitions.
	if len(results) != 10 {
		t.Fatalf("got %d results, want 10", len(results))
	}
	for _, r := range results {
		if r.ElapsedS > 10 {
			t.Errorf("%s rep %d: elapsed %.3f exceeds timeout", r.Instance, r.Rep, r.ElapsedS)
		}
		if r.Outcome != result.OutcomeSuccess {
			t.Errorf("%s rep %d: got %q, want success", r.Instance, r.Rep, r.Outcome)
		}
	}
	if info, err := os.Stat(fig); err != nil || info.Size() == 0 {
		t.Errorf("figure not written: %v", err)
	}
}

func TestRunParallelPreservesOrderAndPlanPaths(t *testing.T) {
	cfgPath, root := fixture(t, `echo "(plan)" > "$3"`)
	fig := filepath.Join(root, "rover.pdf")

	err := execute(t, "--config", cfgPath, "run", "rover", "-N", "3", "-T", "10",
		"--parallel", "2", "--savefig", fig)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	results, err := result.ReadSuiteResults(latestRun(t, root), "rover")
	if err != nil {
		t.Fatalf("reading results: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("got %d results, want 6", len(results))
	}

	// Stored order must follow registry instance order with repetitions
	// in index order, independent of which instance finished first.
	want := []struct {
		instance string
		rep      int
	}{
		{"p01", 0}, {"p01", 1}, {"p01", 2},
		{"p02", 0}, {"p02", 1}, {"p02", 2},
	}
	planPaths := map[string]bool{}
	for i, r := range results {
		if r.Instance != want[i].instance || r.Rep != want[i].rep {
			t.Errorf("result %d: got %s/%d, want %s/%d", i, r.Instance, r.Rep, want[i].instance, want[i].rep)
		}
		if r.Outcome != result.OutcomeSuccess {
			t.Errorf("%s rep %d: got %q, want success", r.Instance, r.Rep, r.Outcome)
		}
		if r.PlanPath == "" || planPaths[r.PlanPath] {
			t.Errorf("%s rep %d: plan path %q missing or reused", r.Instance, r.Rep, r.PlanPath)
		}
		planPaths[r.PlanPath] = true
	}
}

func TestRunUnknownSuite(t *testing.T) {
	cfgPath, root := fixture(t, `echo plan > "$3"`)
	fig := filepath.Join(root, "out.pdf")

	err := execute(t, "--config", cfgPath, "run", "foo", "-N", "2", "-T", "5", "--savefig", fig)
	if err == nil {
		t.Fatal("expected error for unknown suite")
	}
	if _, statErr := os.Stat(fig); !os.IsNotExist(statErr) {
		t.Error("figure file created despite unknown suite")
	}
	if _, statErr := os.Stat(filepath.Join(root, "results")); !os.IsNotExist(statErr) {
		t.Error("results dir created despite unknown suite")
	}
}

func TestRunAllFailuresStillRenders(t *testing.T) {
	cfgPath, root := fixture(t, `exit 1`)
	fig := filepath.Join(root, "rover.svg")

	err := execute(t, "--config", cfgPath, "run", "rover", "-N", "3", "-T", "5", "--savefig", fig)
	if err != nil {
		t.Fatalf("run: %v (per-run failures must not fail the harness)", err)
	}

	results, err := result.ReadSuiteResults(latestRun(t, root), "rover")
	if err != nil {
		t.Fatalf("reading results: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("got %d results, want 6", len(results))
	}
	for _, r := range results {
		if r.Outcome != result.OutcomeFailure {
			t.Errorf("%s rep %d: got %q, want failure", r.Instance, r.Rep, r.Outcome)
		}
	}
	data, err := os.ReadFile(fig)
	if err != nil {
		t.Fatalf("figure not written: %v", err)
	}
	if !bytes.Contains(data, []byte("no successful runs")) {
		t.Error("figure missing the no-data placeholder")
	}
}

func TestRunTimeoutRecordedAsData(t *testing.T) {
	cfgPath, root := fixture(t, `sleep 30`)
	fig := filepath.Join(root, "rover.pdf")

	err := execute(t, "--config", cfgPath, "run", "rover", "-N", "1", "-T", "1", "--savefig", fig)
	if err != nil {
		t.Fatalf("run: %v (timeouts must not fail the harness)", err)
	}

	results, err := result.ReadSuiteResults(latestRun(t, root), "rover")
	if err != nil {
		t.Fatalf("reading results: %v", err)
	}
	for _, r := range results {
		if r.Outcome != result.OutcomeTimeout {
			t.Errorf("%s: got %q, want timeout", r.Instance, r.Outcome)
		}
		if r.ElapsedS > 1 {
			t.Errorf("%s: elapsed %.3f exceeds timeout", r.Instance, r.ElapsedS)
		}
	}
}

func TestRunDeterministicPlannerIsReproducible(t *testing.T) {
	// Succeeds on p01, fails on p02, deterministically.
	cfgPath, root := fixture(t, `case "$2" in *p02*) exit 1;; esac
echo plan > "$3"`)

	outcomes := func() []result.Outcome {
		fig := filepath.Join(root, "rover.pdf")
		if err := execute(t, "--config", cfgPath, "run", "rover", "-N", "2", "-T", "5", "--savefig", fig); err != nil {
			t.Fatalf("run: %v", err)
		}
		results, err := result.ReadSuiteResults(latestRun(t, root), "rover")
		if err != nil {
			t.Fatalf("reading results: %v", err)
		}
		var out []result.Outcome
		for _, r := range results {
			out = append(out, r.Outcome)
		}
		return out
	}

	first := outcomes()
	second := outcomes()
	if len(first) != len(second) {
		t.Fatalf("result counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("outcome %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestRunSpawnErrorIsFatal(t *testing.T) {
	cfgPath, root := fixture(t, `echo plan > "$3"`)
	// Point the planner at a binary that cannot be launched.
	cfgYAML := fmt.Sprintf(`planner:
  bin: %s
benchmarks:
  root: %s
suites:
  - name: rover
results:
  dir: %s
`, filepath.Join(root, "missing-planner"), filepath.Join(root, "bench"), filepath.Join(root, "results"))
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	err := execute(t, "--config", cfgPath, "run", "rover", "-N", "2", "-T", "5",
		"--savefig", filepath.Join(root, "out.pdf"))
	if err == nil {
		t.Fatal("expected spawn error to abort the invocation")
	}
}
