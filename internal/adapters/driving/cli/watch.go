package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driving"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reinstall dependencies when the dependency file changes",
	Long: `Watches requirements.txt (venv) or conda-env.yml (conda) and reinstalls
dependencies into the existing environment after each change. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "wait this long after the last change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := requireBootstrapper(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)
	fmt.Fprintln(out, "Watching for dependency changes. Press Ctrl-C to stop.")

	return bootstrapper.Watch(commandContext(cmd), driving.WatchOptions{
		Debounce: watchDebounce,
		OnChange: func(path string) {
			fmt.Fprintf(out, "%s changed, reinstalling...\n", path)
		},
		OnRun: func(run *domain.Run) {
			if run.Status == domain.RunSucceeded {
				fmt.Fprintf(out, "%s in %s\n", st.Success.Render("Reinstalled"), run.Duration().Round(time.Millisecond))
				return
			}
			fmt.Fprintf(out, "%s %s\n", st.Error.Render("Reinstall failed:"), run.Error)
		},
	})
}
