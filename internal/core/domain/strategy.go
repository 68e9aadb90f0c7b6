package domain

// Strategy identifies how the Python environment is created and activated.
type Strategy string

// Available environment strategies.
const (
	// StrategyVenv uses `python -m venv` and requirements.txt.
	StrategyVenv Strategy = "venv"

	// StrategyConda uses a conda environment described by conda-env.yml.
	StrategyConda Strategy = "conda"
)

// IsValid returns true if the strategy is recognised.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyVenv, StrategyConda:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Strategy) String() string {
	return string(s)
}

// Description returns a human-readable description of the strategy.
func (s Strategy) Description() string {
	switch s {
	case StrategyVenv:
		return "Python virtual environment (requirements.txt)"
	case StrategyConda:
		return "Conda environment (conda-env.yml)"
	default:
		return "Unknown"
	}
}

// AllStrategies returns every supported strategy.
func AllStrategies() []Strategy {
	return []Strategy{StrategyVenv, StrategyConda}
}

// DriverMode controls whether the driver archives are installed.
type DriverMode string

// Available driver modes.
const (
	// DriverModeAuto installs the driver for the venv strategy only,
	// mirroring the original setup scripts.
	DriverModeAuto DriverMode = "auto"

	// DriverModeAlways installs the driver for every strategy.
	DriverModeAlways DriverMode = "always"

	// DriverModeNever skips the driver step.
	DriverModeNever DriverMode = "never"
)

// IsValid returns true if the driver mode is recognised.
func (m DriverMode) IsValid() bool {
	switch m {
	case DriverModeAuto, DriverModeAlways, DriverModeNever:
		return true
	default:
		return false
	}
}

// Enabled reports whether the driver step runs for the given strategy.
func (m DriverMode) Enabled(s Strategy) bool {
	switch m {
	case DriverModeAlways:
		return true
	case DriverModeNever:
		return false
	default:
		return s == StrategyVenv
	}
}
