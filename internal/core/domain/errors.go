package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent bootstrap failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown strategy, platform or component.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrToolNotFound indicates a required executable is not on PATH.
	ErrToolNotFound = errors.New("tool not found")

	// ErrEnvironmentMissing indicates the environment has not been created.
	ErrEnvironmentMissing = errors.New("environment missing")

	// ErrDependencyFileMissing indicates requirements.txt or conda-env.yml is absent.
	ErrDependencyFileMissing = errors.New("dependency file missing")

	// ErrDownloadFailed indicates a driver archive could not be fetched.
	ErrDownloadFailed = errors.New("download failed")

	// ErrArchiveInvalid indicates a driver archive is corrupt or unsafe.
	ErrArchiveInvalid = errors.New("archive invalid")
)

// StepError wraps the failure of a single bootstrap step.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// ExitError reports a child process that exited with a non-zero status.
type ExitError struct {
	Name string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

// ExitCode maps an error returned by a bootstrap run to a process exit code.
// A failure of the script itself passes its own status through; every other
// failure maps to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var stepErr *StepError
	var exitErr *ExitError
	if errors.As(err, &stepErr) && stepErr.Step == StepRunScript && errors.As(err, &exitErr) {
		if exitErr.Code > 0 {
			return exitErr.Code
		}
	}
	return 1
}
