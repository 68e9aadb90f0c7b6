package cli

import (
	"github.com/spf13/cobra"

	"github.com/Byrix/bom-scrapper/internal/core/ports/driving"
	"github.com/Byrix/bom-scrapper/internal/logger"
)

var (
	runReinstall  bool
	runSkipDriver bool
)

var runCmd = &cobra.Command{
	Use:   "run [-- script args]",
	Short: "Bootstrap the environment and run the scraper",
	Long: `Runs the full bootstrap sequence and then invokes the scraper script
inside the activated environment. Arguments after -- are passed to the script.

The script's exit status becomes the exit status of this command.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runReinstall, "reinstall", false, "install dependencies even if the environment exists")
	runCmd.Flags().BoolVar(&runSkipDriver, "skip-driver", false, "skip the driver download")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := requireBootstrapper(); err != nil {
		return err
	}

	prog := newProgressPrinter(cmd.ErrOrStderr())
	run, err := bootstrapper.Setup(commandContext(cmd), driving.SetupOptions{
		Reinstall:  runReinstall,
		SkipDriver: runSkipDriver,
		RunScript:  true,
		ScriptArgs: args,
		Progress:   prog.Report,
	})

	// Script output owns stdout; the summary only matters when asked for.
	if run != nil && logger.IsVerbose() {
		printRun(cmd.ErrOrStderr(), run)
	}
	return err
}
