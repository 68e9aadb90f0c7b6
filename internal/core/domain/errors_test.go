package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrToolNotFound", ErrToolNotFound},
		{"ErrEnvironmentMissing", ErrEnvironmentMissing},
		{"ErrDependencyFileMissing", ErrDependencyFileMissing},
		{"ErrDownloadFailed", ErrDownloadFailed},
		{"ErrArchiveInvalid", ErrArchiveInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestStepError(t *testing.T) {
	inner := fmt.Errorf("%w: python", ErrToolNotFound)
	err := &StepError{Step: StepCreateEnvironment, Err: inner}

	assert.Equal(t, "create-environment: tool not found: python", err.Error())
	assert.True(t, errors.Is(err, ErrToolNotFound))
	assert.Same(t, inner, errors.Unwrap(err))
}

func TestExitError(t *testing.T) {
	err := &ExitError{Name: "python", Code: 3}
	assert.Equal(t, "python exited with status 3", err.Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{
			"script exit passes through",
			&StepError{Step: StepRunScript, Err: &ExitError{Name: "python", Code: 7}},
			7,
		},
		{
			"wrapped script exit passes through",
			fmt.Errorf("run: %w", &StepError{Step: StepRunScript, Err: &ExitError{Name: "python", Code: 2}}),
			2,
		},
		{
			"setup command exit maps to 1",
			&StepError{Step: StepInstallDependencies, Err: &ExitError{Name: "pip", Code: 5}},
			1,
		},
		{
			"negative code maps to 1",
			&StepError{Step: StepRunScript, Err: &ExitError{Name: "python", Code: -1}},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
