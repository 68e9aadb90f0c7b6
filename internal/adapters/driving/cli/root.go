// Package cli provides the cobra command tree for bom-scrapper.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driving"
	"github.com/Byrix/bom-scrapper/internal/logger"
)

var version = "dev"

// Options are the global flags a ServiceFactory builds services from.
type Options struct {
	ProjectDir string
	ConfigPath string
	Strategy   domain.Strategy
	Verbose    bool
}

// Services bundles the driving ports the commands use.
type Services struct {
	Bootstrapper driving.Bootstrapper
	History      driving.HistoryService
	Settings     driving.SettingsService

	// Close releases stores and log files. May be nil.
	Close func() error
}

// ServiceFactory builds services once flags are parsed.
type ServiceFactory func(opts Options) (*Services, error)

// Services set by the factory, or directly by tests.
var (
	bootstrapper    driving.Bootstrapper
	historyService  driving.HistoryService
	settingsService driving.SettingsService

	serviceFactory ServiceFactory
	closeServices  func() error
)

// Global flags.
var (
	flagProjectDir string
	flagConfig     string
	flagStrategy   string
	flagVerbose    bool
)

// Command annotations read by buildServices.
const (
	// skipServices marks commands that run without a project.
	skipServices = "skip-services"

	// tolerateConfig marks commands that must work with a broken config.
	tolerateConfig = "tolerate-config"
)

var rootCmd = &cobra.Command{
	Use:   "bom-scrapper",
	Short: "Bootstrap and run the BOM rainfall scraper",
	Long: `bom-scrapper prepares the Python environment for bom_scrapper.py and runs it.

The bootstrap sequence checks for an existing environment, creates one if
absent and installs its dependencies, downloads the fixed-version Chrome for
Testing driver, activates the environment and invokes the script. The
sequence stops at the first failing step.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: buildServices,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagProjectDir, "project-dir", "C", ".", "project directory holding "+domain.DefaultScript)
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default <project-dir>/bom-scrapper.toml)")
	rootCmd.PersistentFlags().StringVarP(&flagStrategy, "strategy", "s", "", "environment strategy: venv or conda")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServiceFactory registers how services are built for each invocation.
func SetServiceFactory(f ServiceFactory) {
	serviceFactory = f
}

// Execute runs the command tree and releases services afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if closeServices != nil {
			if err := closeServices(); err != nil {
				logger.Warn("cleanup: %v", err)
			}
			closeServices = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func buildServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	if cmd.Annotations[skipServices] == "true" || serviceFactory == nil || bootstrapper != nil {
		return nil
	}

	strategy := domain.Strategy(flagStrategy)
	if flagStrategy != "" && !strategy.IsValid() {
		return errors.New("unknown strategy " + flagStrategy + " (expected venv or conda)")
	}

	svc, err := serviceFactory(Options{
		ProjectDir: flagProjectDir,
		ConfigPath: flagConfig,
		Strategy:   strategy,
		Verbose:    flagVerbose,
	})
	if err != nil {
		if svc == nil || svc.Settings == nil || cmd.Annotations[tolerateConfig] != "true" {
			return err
		}
		logger.Warn("%v", err)
		settingsService = svc.Settings
		return nil
	}

	bootstrapper = svc.Bootstrapper
	historyService = svc.History
	settingsService = svc.Settings
	closeServices = svc.Close
	return nil
}

// commandContext returns the command's context, falling back to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func requireBootstrapper() error {
	if bootstrapper == nil {
		return errors.New("bootstrap service not configured")
	}
	return nil
}
