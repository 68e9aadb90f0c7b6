package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driving"
)

var (
	setupReinstall   bool
	setupForceDriver bool
	setupSkipDriver  bool
	setupRun         bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Prepare the environment and driver",
	Long: `Runs the bootstrap sequence without invoking the script:

  1. check-environment     look for an existing environment
  2. create-environment    create it when absent
  3. install-dependencies  install requirements.txt or conda-env.yml
  4. install-driver        download the fixed-version Chrome for Testing driver
  5. activate-environment  prepare the script command

Steps whose work is already done are skipped. Pass --run to also invoke the
script, or use the run command.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&setupReinstall, "reinstall", false, "install dependencies even if the environment exists")
	setupCmd.Flags().BoolVar(&setupForceDriver, "force-driver", false, "download the driver even if present")
	setupCmd.Flags().BoolVar(&setupSkipDriver, "skip-driver", false, "skip the driver download")
	setupCmd.Flags().BoolVar(&setupRun, "run", false, "invoke the script after setup")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	if err := requireBootstrapper(); err != nil {
		return err
	}

	prog := newProgressPrinter(cmd.ErrOrStderr())
	run, err := bootstrapper.Setup(commandContext(cmd), driving.SetupOptions{
		Reinstall:   setupReinstall,
		ForceDriver: setupForceDriver,
		SkipDriver:  setupSkipDriver,
		RunScript:   setupRun,
		ScriptArgs:  args,
		Progress:    prog.Report,
	})
	if run != nil {
		printRun(cmd.OutOrStdout(), run)
	}
	return err
}

// printRun writes a step-by-step summary of run.
func printRun(w io.Writer, run *domain.Run) {
	st := newStyles(w)

	fmt.Fprintf(w, "%s %s\n", st.Title.Render("Run"), st.Muted.Render(run.ID))
	for _, res := range run.Steps {
		fmt.Fprintf(w, "  %s %-8s %s %s\n",
			st.Label.Render(res.Step.String()),
			st.stepStatus(res.Status),
			res.Message,
			st.Muted.Render(res.Duration().Round(time.Millisecond).String()),
		)
	}
	fmt.Fprintf(w, "%s %s in %s\n",
		st.Label.Render("Result"),
		st.runStatus(run.Status),
		run.Duration().Round(time.Millisecond),
	)
}
