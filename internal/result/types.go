package result

// Outcome classifies a single planner run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeTimeout Outcome = "timeout"
	OutcomeFailure Outcome = "failure"
)

// RunResult records one planner invocation for one (instance, repetition)
// pair. It is created once by the executor and never mutated.
type RunResult struct {
	Suite    string  `json:"suite"`
	Instance string  `json:"instance"`
	Rep      int     `json:"rep"`
	Outcome  Outcome `json:"outcome"`
	ElapsedS float64 `json:"elapsed_s"`
	ExitCode int     `json:"exit_code"`
	PlanPath string  `json:"plan_path,omitempty"`
}
