package driven

import (
	"context"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

// EnvironmentManager creates, inspects and activates one kind of Python
// environment. Each domain.Strategy has exactly one implementation.
type EnvironmentManager interface {
	// Strategy returns the strategy this manager implements.
	Strategy() domain.Strategy

	// Location describes where the environment lives: a directory for
	// venv, an environment name for conda.
	Location() string

	// DependencyFile returns the path of requirements.txt or conda-env.yml.
	DependencyFile() string

	// RequiredTools lists the executables that must resolve on PATH.
	RequiredTools() []string

	// Check validates preconditions before any process is started.
	// Returns domain.ErrDependencyFileMissing if the dependency file is absent.
	Check(ctx context.Context) error

	// Exists reports whether the environment has been created.
	Exists(ctx context.Context) (bool, error)

	// Create creates the environment.
	Create(ctx context.Context) error

	// Install installs the declared dependencies into the environment.
	// freshlyCreated is true right after Create; managers whose Create
	// already resolves dependencies may skip work in that case.
	Install(ctx context.Context, freshlyCreated bool) error

	// Remove deletes the environment.
	Remove(ctx context.Context) error

	// ScriptCommand returns the command that runs script inside the
	// activated environment.
	ScriptCommand(script string, args []string) (domain.Command, error)
}
