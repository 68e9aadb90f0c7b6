package domain

import "time"

// Step names one stage of the bootstrap sequence.
type Step string

// Bootstrap steps in execution order.
const (
	StepCheckEnvironment    Step = "check-environment"
	StepCreateEnvironment   Step = "create-environment"
	StepInstallDependencies Step = "install-dependencies"
	StepInstallDriver       Step = "install-driver"
	StepActivateEnvironment Step = "activate-environment"
	StepRunScript           Step = "run-script"
)

// Steps returns the bootstrap steps in execution order.
func Steps() []Step {
	return []Step{
		StepCheckEnvironment,
		StepCreateEnvironment,
		StepInstallDependencies,
		StepInstallDriver,
		StepActivateEnvironment,
		StepRunScript,
	}
}

// String returns the string representation.
func (s Step) String() string {
	return string(s)
}

// StepStatus is the outcome of a single step.
type StepStatus string

// Step outcomes.
const (
	StepDone    StepStatus = "done"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// StepResult records what happened during one step.
type StepResult struct {
	Step       Step       `json:"step"`
	Status     StepStatus `json:"status"`
	Message    string     `json:"message,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}

// Duration returns how long the step took.
func (r StepResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunStatus summarises a whole run.
type RunStatus string

// Run outcomes.
const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one recorded pass through the bootstrap sequence.
type Run struct {
	ID         string       `json:"id"`
	Strategy   Strategy     `json:"strategy"`
	ProjectDir string       `json:"project_dir"`
	Status     RunStatus    `json:"status"`
	Steps      []StepResult `json:"steps"`
	ExitCode   int          `json:"exit_code"`
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// Record appends a step result to the run.
func (r *Run) Record(result StepResult) {
	r.Steps = append(r.Steps, result)
}

// Result returns the recorded result for a step.
func (r *Run) Result(step Step) (StepResult, bool) {
	for _, res := range r.Steps {
		if res.Step == step {
			return res, true
		}
	}
	return StepResult{}, false
}

// Finish marks the run complete. A nil err means the run succeeded.
func (r *Run) Finish(err error, at time.Time) {
	r.FinishedAt = at
	r.ExitCode = ExitCode(err)
	if err != nil {
		r.Status = RunFailed
		r.Error = err.Error()
		return
	}
	r.Status = RunSucceeded
	r.Error = ""
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
