package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

var (
	historyLimit int
	historyKeep  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded bootstrap runs",
	Long:  `Every setup, run, driver and watch reinstall is recorded in .bom-scrapper/history.db.`,
	RunE:  runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the steps of one run",
	Long:  `Shows one run. A unique prefix of the run ID is enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list (0 for all)")
	historyPruneCmd.Flags().IntVar(&historyKeep, "keep", -1, "number of runs to keep (-1 uses history.keep)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	runs, err := historyService.List(commandContext(cmd), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)
	for _, run := range runs {
		fmt.Fprintf(out, "%s  %-9s %-6s %-12s %s\n",
			st.Muted.Render(shortID(run.ID)),
			st.runStatus(run.Status),
			run.Strategy,
			run.Duration().Round(time.Millisecond),
			humanize.Time(run.StartedAt),
		)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	run, err := historyService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	printRun(out, run)
	fmt.Fprintf(out, "Started    %s\n", run.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "Project    %s\n", run.ProjectDir)
	if run.Error != "" {
		fmt.Fprintf(out, "Error      %s\n", run.Error)
		fmt.Fprintf(out, "Exit code  %d\n", run.ExitCode)
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	keep := historyKeep
	if keep < 0 {
		keep = domain.DefaultHistoryKeep
		if bootstrapper != nil {
			keep = bootstrapper.Settings().History.Keep
		}
	}

	n, err := historyService.Prune(commandContext(cmd), keep)
	if err != nil {
		return fmt.Errorf("failed to prune runs: %w", err)
	}

	cmd.Printf("Removed %d run(s), kept the newest %d.\n", n, keep)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
