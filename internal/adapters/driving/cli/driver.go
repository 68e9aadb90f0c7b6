package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var driverForce bool

var driverCmd = &cobra.Command{
	Use:   "driver",
	Short: "Download the Chrome for Testing driver",
	Long: `Downloads and unzips the fixed-version chromedriver (and chrome) archives
into the driver directory. Components that are already present are skipped
unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runDriver,
}

func init() {
	driverCmd.Flags().BoolVarP(&driverForce, "force", "f", false, "download even if already present")
	rootCmd.AddCommand(driverCmd)
}

func runDriver(cmd *cobra.Command, _ []string) error {
	if err := requireBootstrapper(); err != nil {
		return err
	}

	prog := newProgressPrinter(cmd.ErrOrStderr())
	installs, err := bootstrapper.InstallDriver(commandContext(cmd), driverForce, prog.Report)
	if err != nil {
		return fmt.Errorf("driver install failed: %w", err)
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)
	for _, in := range installs {
		state := st.Success.Render("installed")
		detail := fmt.Sprintf("%d files, %s", in.Files, humanize.Bytes(uint64(in.Bytes)))
		if in.Skipped {
			state = st.Muted.Render("present")
			detail = "skipped"
		}
		fmt.Fprintf(out, "%s %s %s (%s)\n", st.Label.Render(in.Component.String()), state, in.Binary, detail)
	}
	return nil
}
