// Package conda manages conda environments described by conda-env.yml.
package conda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
)

// Ensure Manager implements the interface.
var _ driven.EnvironmentManager = (*Manager)(nil)

// Manager drives the conda CLI.
type Manager struct {
	runner     driven.CommandRunner
	conda      string
	file       string
	projectDir string
}

// NewManager creates a conda manager for the resolved settings.
func NewManager(settings domain.Settings, runner driven.CommandRunner) *Manager {
	return &Manager{
		runner:     runner,
		conda:      settings.Env.Conda,
		file:       settings.Path(settings.Env.CondaFile),
		projectDir: settings.ProjectDir,
	}
}

// Strategy returns domain.StrategyConda.
func (m *Manager) Strategy() domain.Strategy {
	return domain.StrategyConda
}

// Location returns the environment name, or the file path when the file
// cannot be read.
func (m *Manager) Location() string {
	f, err := ReadEnvFile(m.file)
	if err != nil {
		return m.file
	}
	return f.Name
}

// DependencyFile returns conda-env.yml.
func (m *Manager) DependencyFile() string {
	return m.file
}

// RequiredTools returns the conda executable.
func (m *Manager) RequiredTools() []string {
	return []string{m.conda}
}

// Check parses conda-env.yml.
func (m *Manager) Check(context.Context) error {
	_, err := ReadEnvFile(m.file)
	return err
}

// envList is the output of conda env list --json.
type envList struct {
	Envs []string `json:"envs"`
}

// Exists reports whether the named environment is known to conda.
func (m *Manager) Exists(ctx context.Context) (bool, error) {
	f, err := ReadEnvFile(m.file)
	if err != nil {
		return false, err
	}

	var out bytes.Buffer
	err = m.runner.Run(ctx, domain.Command{
		Name:   m.conda,
		Args:   []string{"env", "list", "--json"},
		Dir:    m.projectDir,
		Stdout: &out,
	})
	if err != nil {
		return false, err
	}

	var list envList
	if err := json.Unmarshal(out.Bytes(), &list); err != nil {
		return false, fmt.Errorf("parse conda env list: %w", err)
	}

	for _, prefix := range list.Envs {
		if envName(prefix) == f.Name {
			return true, nil
		}
	}
	return false, nil
}

// Create runs conda env create -f conda-env.yml.
func (m *Manager) Create(ctx context.Context) error {
	if err := m.Check(ctx); err != nil {
		return err
	}
	return m.runner.Run(ctx, domain.Command{
		Name: m.conda,
		Args: []string{"env", "create", "-f", m.file},
		Dir:  m.projectDir,
	})
}

// Install updates the environment from the file. conda env create already
// resolves every dependency, so a fresh environment needs nothing more.
func (m *Manager) Install(ctx context.Context, freshlyCreated bool) error {
	if freshlyCreated {
		return nil
	}
	if err := m.Check(ctx); err != nil {
		return err
	}
	return m.runner.Run(ctx, domain.Command{
		Name: m.conda,
		Args: []string{"env", "update", "-f", m.file, "--prune"},
		Dir:  m.projectDir,
	})
}

// Remove runs conda env remove.
func (m *Manager) Remove(ctx context.Context) error {
	f, err := ReadEnvFile(m.file)
	if err != nil {
		return err
	}
	return m.runner.Run(ctx, domain.Command{
		Name: m.conda,
		Args: []string{"env", "remove", "-n", f.Name, "-y"},
		Dir:  m.projectDir,
	})
}

// ScriptCommand runs script through conda run inside the named environment.
func (m *Manager) ScriptCommand(script string, args []string) (domain.Command, error) {
	if script == "" {
		return domain.Command{}, fmt.Errorf("%w: script name is empty", domain.ErrInvalidInput)
	}
	f, err := ReadEnvFile(m.file)
	if err != nil {
		return domain.Command{}, err
	}

	cmdArgs := []string{"run", "-n", f.Name, "--no-capture-output", "python", script}
	return domain.Command{
		Name: m.conda,
		Args: append(cmdArgs, args...),
		Dir:  m.projectDir,
	}, nil
}

// envName returns the environment name for a prefix path as conda prints
// it. Both separators are accepted since conda on Windows prints
// backslashes.
func envName(prefix string) string {
	prefix = strings.TrimRight(strings.ReplaceAll(prefix, `\`, "/"), "/")
	return path.Base(prefix)
}
