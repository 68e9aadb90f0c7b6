// Package venv manages lightweight Python virtual environments.
package venv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
)

// Ensure Manager implements the interface.
var _ driven.EnvironmentManager = (*Manager)(nil)

// Manager creates a venv and installs requirements.txt into it with pip.
type Manager struct {
	runner       driven.CommandRunner
	python       string
	dir          string
	requirements string
	projectDir   string
	goos         string
}

// NewManager creates a venv manager for the resolved settings.
func NewManager(settings domain.Settings, runner driven.CommandRunner) *Manager {
	return &Manager{
		runner:       runner,
		python:       settings.Env.Python,
		dir:          settings.Path(settings.Env.Dir),
		requirements: settings.Path(settings.Env.Requirements),
		projectDir:   settings.ProjectDir,
		goos:         runtime.GOOS,
	}
}

// Strategy returns domain.StrategyVenv.
func (m *Manager) Strategy() domain.Strategy {
	return domain.StrategyVenv
}

// Location returns the venv directory.
func (m *Manager) Location() string {
	return m.dir
}

// DependencyFile returns the requirements file.
func (m *Manager) DependencyFile() string {
	return m.requirements
}

// RequiredTools returns the base interpreter.
func (m *Manager) RequiredTools() []string {
	return []string{m.python}
}

// Check fails when requirements.txt is missing.
func (m *Manager) Check(context.Context) error {
	info, err := os.Stat(m.requirements)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrDependencyFileMissing, m.requirements)
	}
	return nil
}

// Exists reports whether the venv directory holds its interpreter.
func (m *Manager) Exists(context.Context) (bool, error) {
	info, err := os.Stat(m.Interpreter())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// Create runs python -m venv.
func (m *Manager) Create(ctx context.Context) error {
	return m.runner.Run(ctx, domain.Command{
		Name: m.python,
		Args: []string{"-m", "venv", m.dir},
		Dir:  m.projectDir,
	})
}

// Install runs pip install -r requirements.txt with the venv interpreter.
func (m *Manager) Install(ctx context.Context, _ bool) error {
	if err := m.Check(ctx); err != nil {
		return err
	}
	return m.runner.Run(ctx, domain.Command{
		Name: m.Interpreter(),
		Args: []string{"-m", "pip", "install", "-r", m.requirements},
		Dir:  m.projectDir,
		Env:  m.activation(),
	})
}

// Remove deletes the venv directory.
func (m *Manager) Remove(context.Context) error {
	return os.RemoveAll(m.dir)
}

// ScriptCommand runs script with the venv interpreter, as if activated.
func (m *Manager) ScriptCommand(script string, args []string) (domain.Command, error) {
	if script == "" {
		return domain.Command{}, fmt.Errorf("%w: script name is empty", domain.ErrInvalidInput)
	}
	return domain.Command{
		Name: m.Interpreter(),
		Args: append([]string{script}, args...),
		Dir:  m.projectDir,
		Env:  m.activation(),
	}, nil
}

// BinDir returns Scripts on Windows and bin elsewhere.
func (m *Manager) BinDir() string {
	if m.goos == "windows" {
		return filepath.Join(m.dir, "Scripts")
	}
	return filepath.Join(m.dir, "bin")
}

// Interpreter returns the python executable inside the venv.
func (m *Manager) Interpreter() string {
	if m.goos == "windows" {
		return filepath.Join(m.BinDir(), "python.exe")
	}
	return filepath.Join(m.BinDir(), "python")
}

// activation mirrors what the activate script exports.
func (m *Manager) activation() []string {
	path := m.BinDir()
	if cur := os.Getenv("PATH"); cur != "" {
		path += string(os.PathListSeparator) + cur
	}
	return []string{
		"VIRTUAL_ENV=" + m.dir,
		"PATH=" + path,
	}
}
