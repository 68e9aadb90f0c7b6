package cli

import (
	"github.com/spf13/cobra"

	"github.com/Byrix/bom-scrapper/internal/core/ports/driving"
)

var (
	cleanEnv    bool
	cleanDriver bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the environment and/or the driver",
	Long: `Removes what setup created. With no flags both the environment and the
driver directory are removed.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanEnv, "env", false, "remove the environment")
	cleanCmd.Flags().BoolVar(&cleanDriver, "driver", false, "remove the driver directory")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, _ []string) error {
	if err := requireBootstrapper(); err != nil {
		return err
	}

	opts := driving.CleanOptions{Environment: cleanEnv, Driver: cleanDriver}
	if !opts.Environment && !opts.Driver {
		opts = driving.CleanOptions{Environment: true, Driver: true}
	}

	if err := bootstrapper.Clean(commandContext(cmd), opts); err != nil {
		return err
	}

	if opts.Environment {
		cmd.Println("Environment removed.")
	}
	if opts.Driver {
		cmd.Println("Driver removed.")
	}
	return nil
}
