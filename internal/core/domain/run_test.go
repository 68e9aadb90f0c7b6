package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSteps_Order(t *testing.T) {
	steps := Steps()
	require.Len(t, steps, 6)
	assert.Equal(t, StepCheckEnvironment, steps[0])
	assert.Equal(t, StepRunScript, steps[len(steps)-1])
}

func TestRun_RecordAndResult(t *testing.T) {
	run := &Run{ID: "r1"}
	run.Record(StepResult{Step: StepCheckEnvironment, Status: StepDone})
	run.Record(StepResult{Step: StepCreateEnvironment, Status: StepSkipped})

	res, ok := run.Result(StepCreateEnvironment)
	require.True(t, ok)
	assert.Equal(t, StepSkipped, res.Status)

	_, ok = run.Result(StepRunScript)
	assert.False(t, ok)
}

func TestRun_Finish(t *testing.T) {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		run := &Run{StartedAt: start, Status: RunRunning}
		run.Finish(nil, start.Add(2*time.Second))

		assert.Equal(t, RunSucceeded, run.Status)
		assert.Equal(t, 0, run.ExitCode)
		assert.Empty(t, run.Error)
		assert.Equal(t, 2*time.Second, run.Duration())
	})

	t.Run("script failure keeps exit code", func(t *testing.T) {
		run := &Run{StartedAt: start, Status: RunRunning}
		err := &StepError{Step: StepRunScript, Err: &ExitError{Name: "python", Code: 4}}
		run.Finish(err, start.Add(time.Second))

		assert.Equal(t, RunFailed, run.Status)
		assert.Equal(t, 4, run.ExitCode)
		assert.Contains(t, run.Error, "run-script")
	})

	t.Run("setup failure", func(t *testing.T) {
		run := &Run{StartedAt: start}
		run.Finish(errors.New("no python"), start)

		assert.Equal(t, RunFailed, run.Status)
		assert.Equal(t, 1, run.ExitCode)
	})
}

func TestRun_DurationUnfinished(t *testing.T) {
	run := &Run{StartedAt: time.Now()}
	assert.Zero(t, run.Duration())
	assert.Zero(t, StepResult{StartedAt: time.Now()}.Duration())
}

func TestCommand_String(t *testing.T) {
	cmd := Command{Name: "python", Args: []string{"-m", "pip", "install", "-r", "my reqs.txt", ""}}
	assert.Equal(t, `python -m pip install -r "my reqs.txt" ""`, cmd.String())
}
