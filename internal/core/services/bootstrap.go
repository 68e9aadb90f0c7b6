package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driving"
	"github.com/Byrix/bom-scrapper/internal/logger"
)

// Ensure Bootstrapper implements the interface.
var _ driving.Bootstrapper = (*Bootstrapper)(nil)

// DefaultWatchDebounce coalesces editor save bursts into one reinstall.
const DefaultWatchDebounce = 500 * time.Millisecond

// Bootstrapper runs the environment bootstrap sequence.
type Bootstrapper struct {
	settings domain.Settings
	env      driven.EnvironmentManager
	driver   *DriverInstaller
	runner   driven.CommandRunner
	runs     driven.RunStore
	watcher  driven.FileWatcher

	now   func() time.Time
	newID func() string
}

// NewBootstrapper creates a new bootstrapper.
// runs and watcher are optional - if nil, history and watch are disabled.
func NewBootstrapper(
	settings domain.Settings,
	env driven.EnvironmentManager,
	driver *DriverInstaller,
	runner driven.CommandRunner,
	runs driven.RunStore,
	watcher driven.FileWatcher,
) *Bootstrapper {
	return &Bootstrapper{
		settings: settings,
		env:      env,
		driver:   driver,
		runner:   runner,
		runs:     runs,
		watcher:  watcher,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Settings returns the resolved settings in use.
func (b *Bootstrapper) Settings() domain.Settings {
	return b.settings
}

// Setup runs the bootstrap sequence and records the run.
// Execution stops at the first failing step.
func (b *Bootstrapper) Setup(ctx context.Context, opts driving.SetupOptions) (*domain.Run, error) {
	if b.env == nil {
		return nil, errors.New("environment manager not configured")
	}

	run := b.startRun()
	logger.Info("Starting %s bootstrap in %s (run %s)", b.settings.Strategy, b.settings.ProjectDir, run.ID)

	err := b.sequence(ctx, run, opts)

	run.Finish(err, b.now())
	b.record(ctx, run)

	if err != nil {
		logger.Warn("Bootstrap failed: %v", err)
		return run, err
	}
	logger.Info("Bootstrap complete in %s", run.Duration().Round(time.Millisecond))
	return run, nil
}

//nolint:gocyclo // Linear sequence of steps, each with a single skip condition
func (b *Bootstrapper) sequence(ctx context.Context, run *domain.Run, opts driving.SetupOptions) error {
	// 1. Check for an existing environment
	var exists bool
	err := b.step(ctx, run, domain.StepCheckEnvironment, func(ctx context.Context) (domain.StepStatus, string, error) {
		if err := b.env.Check(ctx); err != nil {
			return domain.StepFailed, "", err
		}
		var err error
		exists, err = b.env.Exists(ctx)
		if err != nil {
			return domain.StepFailed, "", err
		}
		if exists {
			return domain.StepDone, "found " + b.env.Location(), nil
		}
		return domain.StepDone, "not found " + b.env.Location(), nil
	})
	if err != nil {
		return err
	}

	// 2. Create one if absent
	created := false
	err = b.step(ctx, run, domain.StepCreateEnvironment, func(ctx context.Context) (domain.StepStatus, string, error) {
		if exists {
			return domain.StepSkipped, "environment already exists", nil
		}
		if err := b.env.Create(ctx); err != nil {
			return domain.StepFailed, "", err
		}
		created = true
		return domain.StepDone, "created " + b.env.Location(), nil
	})
	if err != nil {
		return err
	}

	// 3. Install dependencies into a fresh environment
	err = b.step(ctx, run, domain.StepInstallDependencies, func(ctx context.Context) (domain.StepStatus, string, error) {
		if !created && !opts.Reinstall {
			return domain.StepSkipped, "environment up to date", nil
		}
		if err := b.env.Install(ctx, created); err != nil {
			return domain.StepFailed, "", err
		}
		return domain.StepDone, "installed from " + b.env.DependencyFile(), nil
	})
	if err != nil {
		return err
	}

	// 4. Download and unzip the fixed-version driver
	err = b.step(ctx, run, domain.StepInstallDriver, func(ctx context.Context) (domain.StepStatus, string, error) {
		if opts.SkipDriver || !b.settings.DriverEnabled() || b.driver == nil {
			return domain.StepSkipped, "driver download disabled", nil
		}
		installs, err := b.driver.Ensure(ctx, opts.ForceDriver, opts.Progress)
		if err != nil {
			return domain.StepFailed, "", err
		}
		return summariseDriver(installs)
	})
	if err != nil {
		return err
	}

	// 5. Activate the environment
	var script domain.Command
	err = b.step(ctx, run, domain.StepActivateEnvironment, func(context.Context) (domain.StepStatus, string, error) {
		if opts.RunScript {
			if _, err := os.Stat(b.settings.Path(b.settings.Script)); err != nil {
				return domain.StepFailed, "", fmt.Errorf("%w: script %s", domain.ErrNotFound, b.settings.Script)
			}
		}
		cmd, err := b.env.ScriptCommand(b.settings.Script, opts.ScriptArgs)
		if err != nil {
			return domain.StepFailed, "", err
		}
		cmd.Dir = b.settings.ProjectDir
		script = cmd
		return domain.StepDone, cmd.String(), nil
	})
	if err != nil {
		return err
	}

	// 6. Invoke the script
	return b.step(ctx, run, domain.StepRunScript, func(ctx context.Context) (domain.StepStatus, string, error) {
		if !opts.RunScript {
			return domain.StepSkipped, "not requested", nil
		}
		if err := b.runner.Run(ctx, script); err != nil {
			return domain.StepFailed, "", err
		}
		return domain.StepDone, b.settings.Script + " exited with status 0", nil
	})
}

type stepFunc func(ctx context.Context) (domain.StepStatus, string, error)

// step runs fn as one recorded step. A failure is wrapped in *domain.StepError.
func (b *Bootstrapper) step(ctx context.Context, run *domain.Run, name domain.Step, fn stepFunc) error {
	logger.Section(name.String())

	result := domain.StepResult{Step: name, StartedAt: b.now()}

	var (
		status domain.StepStatus
		msg    string
		err    error
	)
	if err = ctx.Err(); err == nil {
		status, msg, err = fn(ctx)
	}

	result.FinishedAt = b.now()
	if err != nil {
		result.Status = domain.StepFailed
		result.Message = err.Error()
		run.Record(result)
		return &domain.StepError{Step: name, Err: err}
	}

	result.Status = status
	result.Message = msg
	run.Record(result)
	logger.Info("%s: %s", status, msg)
	return nil
}

// InstallDriver runs only the driver step, regardless of driver mode.
func (b *Bootstrapper) InstallDriver(
	ctx context.Context,
	force bool,
	progress driving.ProgressFunc,
) ([]domain.DriverInstall, error) {
	if b.driver == nil {
		return nil, errors.New("driver installer not configured")
	}

	run := b.startRun()
	var installs []domain.DriverInstall
	err := b.step(ctx, run, domain.StepInstallDriver, func(ctx context.Context) (domain.StepStatus, string, error) {
		var err error
		installs, err = b.driver.Ensure(ctx, force, progress)
		if err != nil {
			return domain.StepFailed, "", err
		}
		return summariseDriver(installs)
	})
	run.Finish(err, b.now())
	b.record(ctx, run)

	return installs, err
}

// Status inspects the project without changing it.
func (b *Bootstrapper) Status(ctx context.Context) (*domain.Status, error) {
	if b.env == nil {
		return nil, errors.New("environment manager not configured")
	}

	// A missing tool or dependency file means the environment cannot be
	// found yet; both are reported below rather than failing the status.
	exists, err := b.env.Exists(ctx)
	if err != nil && !errors.Is(err, domain.ErrToolNotFound) &&
		!errors.Is(err, domain.ErrDependencyFileMissing) && !errors.Is(err, domain.ErrInvalidInput) {
		return nil, fmt.Errorf("inspect environment: %w", err)
	}

	st := &domain.Status{
		Strategy:       b.settings.Strategy,
		ProjectDir:     b.settings.ProjectDir,
		Environment:    domain.PathStatus{Path: b.env.Location(), Exists: exists},
		DependencyFile: pathStatus(b.env.DependencyFile()),
		Script:         pathStatus(b.settings.Path(b.settings.Script)),
		DriverEnabled:  b.settings.DriverEnabled(),
	}

	for _, tool := range b.env.RequiredTools() {
		ts := domain.ToolStatus{Name: tool}
		if b.runner != nil {
			if p, err := b.runner.LookPath(tool); err == nil {
				ts.Path = p
				ts.Found = true
			}
		}
		st.Tools = append(st.Tools, ts)
	}

	if b.driver != nil {
		st.Driver = b.driver.Inspect()
	}
	return st, nil
}

// Clean removes the environment and/or the driver directory.
func (b *Bootstrapper) Clean(ctx context.Context, opts driving.CleanOptions) error {
	if opts.Environment {
		if b.env == nil {
			return errors.New("environment manager not configured")
		}
		logger.Info("Removing environment %s", b.env.Location())
		if err := b.env.Remove(ctx); err != nil {
			return fmt.Errorf("remove environment: %w", err)
		}
	}
	if opts.Driver && b.driver != nil {
		logger.Info("Removing driver from %s", b.settings.Path(b.settings.Driver.Dir))
		if err := b.driver.Remove(); err != nil {
			return fmt.Errorf("remove driver: %w", err)
		}
	}
	return nil
}

// Watch reinstalls dependencies whenever the dependency file changes.
// Each reinstall is recorded as its own run. Failures are reported through
// OnRun and do not stop the loop.
func (b *Bootstrapper) Watch(ctx context.Context, opts driving.WatchOptions) error {
	if b.watcher == nil {
		return errors.New("file watcher not configured")
	}
	if b.env == nil {
		return errors.New("environment manager not configured")
	}
	if err := b.env.Check(ctx); err != nil {
		return err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	events, errs, err := b.watcher.Watch(ctx, b.env.DependencyFile())
	if err != nil {
		return fmt.Errorf("watch %s: %w", b.env.DependencyFile(), err)
	}
	logger.Info("Watching %s", b.env.DependencyFile())

	var (
		fire    <-chan time.Time
		pending string
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case path, ok := <-events:
			if !ok {
				return nil
			}
			pending = path
			fire = time.After(debounce)

		case werr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher: %v", werr)

		case <-fire:
			fire = nil
			if opts.OnChange != nil {
				opts.OnChange(pending)
			}
			run := b.reinstall(ctx)
			if opts.OnRun != nil {
				opts.OnRun(run)
			}
		}
	}
}

// reinstall runs the install step against an existing environment.
func (b *Bootstrapper) reinstall(ctx context.Context) *domain.Run {
	run := b.startRun()
	err := b.step(ctx, run, domain.StepInstallDependencies, func(ctx context.Context) (domain.StepStatus, string, error) {
		exists, err := b.env.Exists(ctx)
		if err != nil {
			return domain.StepFailed, "", err
		}
		if !exists {
			return domain.StepFailed, "", fmt.Errorf("%w: %s", domain.ErrEnvironmentMissing, b.env.Location())
		}
		if err := b.env.Install(ctx, false); err != nil {
			return domain.StepFailed, "", err
		}
		return domain.StepDone, "reinstalled from " + b.env.DependencyFile(), nil
	})
	run.Finish(err, b.now())
	b.record(ctx, run)
	return run
}

func (b *Bootstrapper) startRun() *domain.Run {
	return &domain.Run{
		ID:         b.newID(),
		Strategy:   b.settings.Strategy,
		ProjectDir: b.settings.ProjectDir,
		Status:     domain.RunRunning,
		StartedAt:  b.now(),
	}
}

// record persists the run. History failures never fail the bootstrap.
func (b *Bootstrapper) record(ctx context.Context, run *domain.Run) {
	if b.runs == nil || !b.settings.History.Enabled {
		return
	}

	// The run must be recorded even when ctx was cancelled mid-step.
	ctx = context.WithoutCancel(ctx)

	if err := b.runs.Save(ctx, run); err != nil {
		logger.Warn("Failed to record run %s: %v", run.ID, err)
		return
	}
	if keep := b.settings.History.Keep; keep > 0 {
		if _, err := b.runs.Prune(ctx, keep); err != nil {
			logger.Warn("Failed to prune run history: %v", err)
		}
	}
}

func summariseDriver(installs []domain.DriverInstall) (domain.StepStatus, string, error) {
	var fetched, present []string
	for _, inst := range installs {
		if inst.Skipped {
			present = append(present, inst.Component.String())
		} else {
			fetched = append(fetched, inst.Component.String())
		}
	}
	if len(fetched) == 0 {
		return domain.StepSkipped, "already present: " + strings.Join(present, ", "), nil
	}
	msg := "installed " + strings.Join(fetched, ", ")
	if len(present) > 0 {
		msg += "; already present: " + strings.Join(present, ", ")
	}
	return domain.StepDone, msg, nil
}

func pathStatus(path string) domain.PathStatus {
	_, err := os.Stat(path)
	return domain.PathStatus{Path: path, Exists: err == nil}
}
