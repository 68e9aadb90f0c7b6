package conda

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

// MockRunner is a mock implementation of driven.CommandRunner.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, cmd domain.Command) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

func (m *MockRunner) LookPath(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

func newTestManager(t *testing.T) (*Manager, *MockRunner, string) {
	t.Helper()

	dir := t.TempDir()
	writeEnvFile(t, dir, sampleEnv)

	settings := domain.DefaultSettings()
	settings.ProjectDir = dir
	settings.Strategy = domain.StrategyConda

	runner := &MockRunner{}
	return NewManager(settings, runner), runner, dir
}

// hasArgs matches a command by its arguments.
func hasArgs(want ...string) any {
	return mock.MatchedBy(func(cmd domain.Command) bool {
		return assert.ObjectsAreEqual(want, cmd.Args)
	})
}

// envListOutput makes the mocked conda print json to the command's stdout.
func envListOutput(json string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		cmd := args.Get(1).(domain.Command)
		_, _ = io.WriteString(cmd.Stdout, json)
	}
}

func TestManager_Basics(t *testing.T) {
	m, _, dir := newTestManager(t)

	assert.Equal(t, domain.StrategyConda, m.Strategy())
	assert.Equal(t, "bom-scrapper", m.Location())
	assert.Equal(t, filepath.Join(dir, domain.DefaultCondaFile), m.DependencyFile())
	assert.Equal(t, []string{"conda"}, m.RequiredTools())
	assert.NoError(t, m.Check(context.Background()))
}

func TestManager_Exists(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{
			name:   "present on unix",
			output: `{"envs": ["/opt/conda", "/opt/conda/envs/bom-scrapper"]}`,
			want:   true,
		},
		{
			name:   "present on windows",
			output: `{"envs": ["C:\\Users\\me\\miniconda3", "C:\\Users\\me\\miniconda3\\envs\\bom-scrapper"]}`,
			want:   true,
		},
		{
			name:   "absent",
			output: `{"envs": ["/opt/conda", "/opt/conda/envs/bom-scrapper-old"]}`,
			want:   false,
		},
		{
			name:   "no envs",
			output: `{"envs": []}`,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, runner, _ := newTestManager(t)
			runner.On("Run", mock.Anything, hasArgs("env", "list", "--json")).
				Run(envListOutput(tt.output)).
				Return(nil)

			got, err := m.Exists(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManager_Exists_BadJSON(t *testing.T) {
	m, runner, _ := newTestManager(t)
	runner.On("Run", mock.Anything, mock.Anything).Run(envListOutput("not json")).Return(nil)

	_, err := m.Exists(context.Background())
	assert.Error(t, err)
}

func TestManager_Exists_CondaMissing(t *testing.T) {
	m, runner, _ := newTestManager(t)
	runner.On("Run", mock.Anything, mock.Anything).Return(domain.ErrToolNotFound)

	_, err := m.Exists(context.Background())
	assert.ErrorIs(t, err, domain.ErrToolNotFound)
}

func TestManager_Create(t *testing.T) {
	m, runner, _ := newTestManager(t)
	runner.On("Run", mock.Anything, hasArgs("env", "create", "-f", m.DependencyFile())).Return(nil)

	require.NoError(t, m.Create(context.Background()))
	runner.AssertExpectations(t)
}

func TestManager_Install(t *testing.T) {
	t.Run("fresh environment is a no-op", func(t *testing.T) {
		m, runner, _ := newTestManager(t)

		require.NoError(t, m.Install(context.Background(), true))
		runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("existing environment is updated", func(t *testing.T) {
		m, runner, _ := newTestManager(t)
		runner.On("Run", mock.Anything, hasArgs("env", "update", "-f", m.DependencyFile(), "--prune")).Return(nil)

		require.NoError(t, m.Install(context.Background(), false))
		runner.AssertExpectations(t)
	})
}

func TestManager_Remove(t *testing.T) {
	m, runner, _ := newTestManager(t)
	runner.On("Run", mock.Anything, hasArgs("env", "remove", "-n", "bom-scrapper", "-y")).Return(nil)

	require.NoError(t, m.Remove(context.Background()))
	runner.AssertExpectations(t)
}

func TestManager_ScriptCommand(t *testing.T) {
	m, _, dir := newTestManager(t)

	cmd, err := m.ScriptCommand("bom_scrapper.py", []string{"-v"})
	require.NoError(t, err)

	assert.Equal(t, "conda", cmd.Name)
	assert.Equal(t, []string{
		"run", "-n", "bom-scrapper", "--no-capture-output", "python", "bom_scrapper.py", "-v",
	}, cmd.Args)
	assert.Equal(t, dir, cmd.Dir)
}

func TestManager_MissingFile(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.ProjectDir = t.TempDir()
	runner := &MockRunner{}
	m := NewManager(settings, runner)

	assert.ErrorIs(t, m.Check(context.Background()), domain.ErrDependencyFileMissing)
	assert.ErrorIs(t, m.Create(context.Background()), domain.ErrDependencyFileMissing)
	_, err := m.ScriptCommand("bom_scrapper.py", nil)
	assert.ErrorIs(t, err, domain.ErrDependencyFileMissing)
	assert.Equal(t, m.DependencyFile(), m.Location())
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "bom-scrapper", envName("/opt/conda/envs/bom-scrapper"))
	assert.Equal(t, "bom-scrapper", envName(`C:\miniconda3\envs\bom-scrapper\`))
	assert.Equal(t, "conda", envName("/opt/conda"))
}
