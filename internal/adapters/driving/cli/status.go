package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"doctor"},
	Short:   "Show the bootstrap state of the project",
	Long: `Reports which bootstrap steps are already satisfied without changing
anything: whether the environment exists, whether the driver is unpacked,
whether the required tools resolve on PATH and whether the dependency file
and script are present.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := requireBootstrapper(); err != nil {
		return err
	}

	st, err := bootstrapper.Status(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	out := cmd.OutOrStdout()
	if statusJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	s := newStyles(out)
	fmt.Fprintln(out, s.Title.Render("Project ")+st.ProjectDir)
	fmt.Fprintf(out, "  %s %s\n", s.Label.Render("Strategy"), st.Strategy.Description())
	fmt.Fprintf(out, "  %s %s %s\n", s.Label.Render("Environment"), s.check(st.Environment.Exists), st.Environment.Path)
	fmt.Fprintf(out, "  %s %s %s\n", s.Label.Render("Dependencies"), s.check(st.DependencyFile.Exists), st.DependencyFile.Path)
	fmt.Fprintf(out, "  %s %s %s\n", s.Label.Render("Script"), s.check(st.Script.Exists), st.Script.Path)
	fmt.Fprintln(out)

	fmt.Fprintln(out, s.Title.Render("Tools"))
	for _, tool := range st.Tools {
		where := s.Muted.Render("not on PATH")
		if tool.Found {
			where = tool.Path
		}
		fmt.Fprintf(out, "  %s %s %s\n", s.Label.Render(tool.Name), s.check(tool.Found), where)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, s.Title.Render("Driver"))
	if !st.DriverEnabled {
		fmt.Fprintf(out, "  %s\n", s.Muted.Render("download disabled for this strategy"))
	}
	for _, d := range st.Driver {
		fmt.Fprintf(out, "  %s %s %s %s\n",
			s.Label.Render(d.Component.String()), s.check(d.Installed), d.Version, s.Muted.Render(d.Path))
	}
	fmt.Fprintln(out)

	if st.Ready() {
		fmt.Fprintln(out, s.Success.Render("Ready: setup has nothing left to do."))
	} else {
		fmt.Fprintln(out, s.Warning.Render("Not ready: run 'bom-scrapper setup'."))
	}
	return nil
}
