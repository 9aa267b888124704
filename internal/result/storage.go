package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CreateRunDir makes a fresh timestamped run directory and points the
// "latest" symlink at it. The stamp has one-second resolution, so on
// collision a numeric suffix is added: two invocations never share a run
// directory (or its plan files).
func CreateRunDir(baseDir string) (string, error) {
	runsDir, err := filepath.Abs(filepath.Join(baseDir, "runs"))
	if err != nil {
		return "", fmt.Errorf("resolving runs dir: %w", err)
	}
	if err := os.MkdirAll(runsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating runs dir: %w", err)
	}
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	var runDir string
	for i := 0; ; i++ {
		name := stamp
		if i > 0 {
			name = fmt.Sprintf("%s.%d", stamp, i)
		}
		runDir = filepath.Join(runsDir, name)
		err := os.Mkdir(runDir, 0o755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("creating run dir: %w", err)
		}
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// PlanDir is where repetition plan files for one instance land. Paths are
// distinct per (suite, instance, rep) so concurrent runs never collide.
func PlanDir(runDir, suite, instance string) string {
	return filepath.Join(runDir, "plans", suite, instance)
}

func PlanPath(runDir, suite, instance string, rep int) string {
	return filepath.Join(PlanDir(runDir, suite, instance), fmt.Sprintf("rep-%d.plan", rep))
}

func resultsPath(runDir, suite string) string {
	return filepath.Join(runDir, suite, "results.json")
}

// WriteSuiteResults persists all run results for one suite under the run
// directory, where the report command can find them again.
func WriteSuiteResults(runDir, suite string, results []RunResult) error {
	dir := filepath.Dir(resultsPath(runDir, suite))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating suite dir: %w", err)
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	return os.WriteFile(resultsPath(runDir, suite), data, 0o644)
}

func ReadSuiteResults(runDir, suite string) ([]RunResult, error) {
	data, err := os.ReadFile(resultsPath(runDir, suite))
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	var results []RunResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parsing results: %w", err)
	}
	return results, nil
}

// ListSuites returns the suites that have stored results in runDir, sorted
// by directory name.
func ListSuites(runDir string) ([]string, error) {
	entries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, fmt.Errorf("reading run dir: %w", err)
	}
	var suites []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(resultsPath(runDir, e.Name())); err == nil {
			suites = append(suites, e.Name())
		}
	}
	return suites, nil
}
