package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Byrix/bom-scrapper/internal/adapters/driven/archive"
	"github.com/Byrix/bom-scrapper/internal/adapters/driven/config/file"
	"github.com/Byrix/bom-scrapper/internal/adapters/driven/download"
	"github.com/Byrix/bom-scrapper/internal/adapters/driven/environment/conda"
	"github.com/Byrix/bom-scrapper/internal/adapters/driven/environment/venv"
	"github.com/Byrix/bom-scrapper/internal/adapters/driven/process"
	"github.com/Byrix/bom-scrapper/internal/adapters/driven/storage/memory"
	"github.com/Byrix/bom-scrapper/internal/adapters/driven/storage/sqlite"
	"github.com/Byrix/bom-scrapper/internal/adapters/driven/watch"
	"github.com/Byrix/bom-scrapper/internal/adapters/driving/cli"
	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
	"github.com/Byrix/bom-scrapper/internal/core/services"
	"github.com/Byrix/bom-scrapper/internal/logger"
)

// buildServices wires adapters into services for one invocation.
// When the configuration is invalid the settings service is still returned
// alongside the error, so config commands can repair it.
func buildServices(opts cli.Options) (*cli.Services, error) {
	projectDir, err := filepath.Abs(opts.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(projectDir, file.DefaultFileName)
	}
	configStore, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	settingsService := services.NewSettingsService(configStore)

	base := domain.DefaultSettings()
	base.ProjectDir = projectDir
	settings, err := settingsService.Resolve(base, domain.WithStrategy(opts.Strategy))
	if err != nil {
		return &cli.Services{Settings: settingsService}, fmt.Errorf("invalid configuration: %w", err)
	}

	closeLog, err := logger.Setup(filepath.Join(settings.StateDir(), "logs"), opts.Verbose)
	if err != nil {
		// Logging to file is best effort.
		logger.Warn("Log file disabled: %v", err)
		closeLog = nil
	}
	logger.Debug("Project %s, strategy %s, config %s", projectDir, settings.Strategy, configPath)

	runner := process.NewRunner(nil, nil)

	env, err := newEnvironment(settings, runner)
	if err != nil {
		if closeLog != nil {
			_ = closeLog()
		}
		return nil, err
	}

	driver := services.NewDriverInstaller(
		download.NewDownloader(download.Config{}),
		archive.NewZipExtractor(),
		settings.Artifacts(),
	)

	var (
		store *sqlite.Store
		runs  driven.RunStore
	)
	if settings.History.Enabled {
		store, err = sqlite.NewStore(settings.StateDir())
		if err != nil {
			// Keep this invocation's runs in memory so setup still reports them.
			logger.Warn("Run history not persisted: %v", err)
			runs = memory.NewRunStore()
		} else {
			runs = store.RunStore()
		}
	}

	bootstrapper := services.NewBootstrapper(settings, env, driver, runner, runs, watch.NewWatcher())

	var history *services.HistoryService
	if runs != nil {
		history = services.NewHistoryService(runs)
	}

	svc := &cli.Services{
		Bootstrapper: bootstrapper,
		Settings:     settingsService,
		Close: func() error {
			var errs []error
			if store != nil {
				errs = append(errs, store.Close())
			}
			if closeLog != nil {
				errs = append(errs, closeLog())
			}
			return errors.Join(errs...)
		},
	}
	// Keep the interface nil rather than holding a nil *HistoryService.
	if history != nil {
		svc.History = history
	}
	return svc, nil
}

func newEnvironment(settings domain.Settings, runner driven.CommandRunner) (driven.EnvironmentManager, error) {
	switch settings.Strategy {
	case domain.StrategyVenv:
		return venv.NewManager(settings, runner), nil
	case domain.StrategyConda:
		return conda.NewManager(settings, runner), nil
	default:
		return nil, fmt.Errorf("%w: strategy %q", domain.ErrUnsupportedType, settings.Strategy)
	}
}
