package domain

import (
	"fmt"
	"path/filepath"
)

// Default file and directory names used by the original setup scripts.
const (
	DefaultScript       = "bom_scrapper.py"
	DefaultVenvDir      = "venv"
	DefaultPython       = "python"
	DefaultRequirements = "requirements.txt"
	DefaultConda        = "conda"
	DefaultCondaFile    = "conda-env.yml"
	DefaultStateDir     = ".bom-scrapper"
	DefaultHistoryKeep  = 50
)

// Settings is the resolved configuration for one project directory.
type Settings struct {
	ProjectDir string
	Script     string
	Strategy   Strategy
	Env        EnvSettings
	Driver     DriverSettings
	History    HistorySettings
}

// EnvSettings configures both environment strategies.
type EnvSettings struct {
	// Dir is the venv directory, relative to ProjectDir.
	Dir string

	// Python is the interpreter used to create the venv.
	Python string

	// Requirements is the pip requirements file.
	Requirements string

	// Conda is the conda executable.
	Conda string

	// CondaFile is the conda environment description.
	CondaFile string
}

// DriverSettings configures the Chrome for Testing download.
type DriverSettings struct {
	Mode       DriverMode
	Version    string
	Platform   string
	BaseURL    string
	Dir        string
	Components []DriverComponent
}

// HistorySettings configures the run history.
type HistorySettings struct {
	Enabled bool
	Keep    int
}

// SettingsOverride adjusts settings after stored values are layered and
// before they are validated.
type SettingsOverride func(*Settings)

// WithStrategy overrides the strategy when s is set.
func WithStrategy(s Strategy) SettingsOverride {
	return func(st *Settings) {
		if s != "" {
			st.Strategy = s
		}
	}
}

// DefaultSettings returns settings matching the original scripts.
func DefaultSettings() Settings {
	return Settings{
		ProjectDir: ".",
		Script:     DefaultScript,
		Strategy:   StrategyVenv,
		Env: EnvSettings{
			Dir:          DefaultVenvDir,
			Python:       DefaultPython,
			Requirements: DefaultRequirements,
			Conda:        DefaultConda,
			CondaFile:    DefaultCondaFile,
		},
		Driver: DriverSettings{
			Mode:       DriverModeAuto,
			Version:    DefaultDriverVersion,
			Platform:   DefaultDriverPlatform,
			BaseURL:    DefaultDriverBaseURL,
			Dir:        DefaultDriverDir,
			Components: []DriverComponent{ComponentChromeDriver, ComponentChrome},
		},
		History: HistorySettings{
			Enabled: true,
			Keep:    DefaultHistoryKeep,
		},
	}
}

// Validate checks the settings are usable.
func (s Settings) Validate() error {
	if !s.Strategy.IsValid() {
		return fmt.Errorf("%w: strategy %q", ErrUnsupportedType, s.Strategy)
	}
	if s.Script == "" {
		return fmt.Errorf("%w: script name is empty", ErrInvalidInput)
	}
	if s.Strategy == StrategyVenv && s.Env.Dir == "" {
		return fmt.Errorf("%w: env.dir is empty", ErrInvalidInput)
	}
	if !s.Driver.Mode.IsValid() {
		return fmt.Errorf("%w: driver mode %q", ErrUnsupportedType, s.Driver.Mode)
	}
	if s.DriverEnabled() {
		if s.Driver.Version == "" {
			return fmt.Errorf("%w: driver.version is empty", ErrInvalidInput)
		}
		if !IsValidPlatform(s.Driver.Platform) {
			return fmt.Errorf("%w: driver platform %q", ErrUnsupportedType, s.Driver.Platform)
		}
		if len(s.Driver.Components) == 0 {
			return fmt.Errorf("%w: driver.components is empty", ErrInvalidInput)
		}
		for _, c := range s.Driver.Components {
			if !c.IsValid() {
				return fmt.Errorf("%w: driver component %q", ErrUnsupportedType, c)
			}
		}
	}
	if s.History.Keep < 0 {
		return fmt.Errorf("%w: history.keep must not be negative", ErrInvalidInput)
	}
	return nil
}

// DriverEnabled reports whether the driver step runs for the strategy.
func (s Settings) DriverEnabled() bool {
	return s.Driver.Mode.Enabled(s.Strategy)
}

// Path resolves p against ProjectDir unless it is already absolute.
func (s Settings) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.ProjectDir, p)
}

// StateDir returns the directory holding logs and the run history.
func (s Settings) StateDir() string {
	return s.Path(DefaultStateDir)
}

// Artifacts returns one artifact per configured driver component.
func (s Settings) Artifacts() []DriverArtifact {
	out := make([]DriverArtifact, 0, len(s.Driver.Components))
	for _, c := range s.Driver.Components {
		out = append(out, DriverArtifact{
			Component: c,
			Version:   s.Driver.Version,
			Platform:  s.Driver.Platform,
			BaseURL:   s.Driver.BaseURL,
			Root:      s.Path(s.Driver.Dir),
		})
	}
	return out
}
