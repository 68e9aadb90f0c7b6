package driving

import (
	"context"
	"time"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

// ProgressFunc receives per-component download progress. total is -1 when unknown.
type ProgressFunc func(component domain.DriverComponent, written, total int64)

// SetupOptions controls one pass through the bootstrap sequence.
type SetupOptions struct {
	// Reinstall installs dependencies even when the environment already exists.
	Reinstall bool

	// ForceDriver re-downloads driver components that are already present.
	ForceDriver bool

	// SkipDriver skips the driver step for this run.
	SkipDriver bool

	// RunScript invokes the script after setup.
	RunScript bool

	// ScriptArgs are passed to the script.
	ScriptArgs []string

	// Progress receives driver download progress. May be nil.
	Progress ProgressFunc
}

// CleanOptions selects what Clean removes.
type CleanOptions struct {
	Environment bool
	Driver      bool
}

// WatchOptions controls the dependency watch loop.
type WatchOptions struct {
	// Debounce coalesces bursts of file events. Zero uses the default.
	Debounce time.Duration

	// OnChange is called before each reinstall. May be nil.
	OnChange func(path string)

	// OnRun is called with each recorded reinstall run. May be nil.
	OnRun func(run *domain.Run)
}

// Bootstrapper prepares the environment and launches the scraper script.
type Bootstrapper interface {
	// Setup runs the bootstrap sequence. The returned run is non-nil
	// whenever the sequence started, including on failure.
	Setup(ctx context.Context, opts SetupOptions) (*domain.Run, error)

	// InstallDriver runs only the driver step.
	InstallDriver(ctx context.Context, force bool, progress ProgressFunc) ([]domain.DriverInstall, error)

	// Status inspects the project without changing it.
	Status(ctx context.Context) (*domain.Status, error)

	// Clean removes the environment and/or the driver directory.
	Clean(ctx context.Context, opts CleanOptions) error

	// Watch reinstalls dependencies whenever the dependency file changes.
	// Blocks until ctx is cancelled.
	Watch(ctx context.Context, opts WatchOptions) error

	// Settings returns the resolved settings in use.
	Settings() domain.Settings
}
