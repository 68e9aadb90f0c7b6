package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage project configuration",
	Long: `View and change bom-scrapper.toml in the project directory.

Keys use dot notation, e.g. driver.version for [driver] version.`,
	Annotations: map[string]string{tolerateConfig: "true"},
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show stored values and the resolved settings",
	Annotations: map[string]string{tolerateConfig: "true"},
	Args:        cobra.NoArgs,
	RunE:        runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file path",
	Annotations: map[string]string{tolerateConfig: "true"},
	Args:        cobra.NoArgs,
	RunE:        runConfigPath,
}

var configSetCmd = &cobra.Command{
	Use:         "set [key] [value]",
	Short:       "Set a configuration value",
	Annotations: map[string]string{tolerateConfig: "true"},
	Args:        cobra.ExactArgs(2),
	RunE:        runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:         "unset [key]",
	Short:       "Remove a configuration value",
	Annotations: map[string]string{tolerateConfig: "true"},
	Args:        cobra.ExactArgs(1),
	RunE:        runConfigUnset,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)

	fmt.Fprintln(out, st.Title.Render("Config file ")+settingsService.Path())
	values := settingsService.Values()
	if len(values) == 0 {
		fmt.Fprintln(out, st.Muted.Render("  (no values set, defaults apply)"))
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s = %v\n", k, values[k])
	}

	if bootstrapper == nil {
		return nil
	}

	s := bootstrapper.Settings()
	fmt.Fprintln(out)
	fmt.Fprintln(out, st.Title.Render("Resolved"))
	fmt.Fprintf(out, "  %s %s\n", st.Label.Render("project"), s.ProjectDir)
	fmt.Fprintf(out, "  %s %s\n", st.Label.Render("script"), s.Script)
	fmt.Fprintf(out, "  %s %s\n", st.Label.Render("strategy"), s.Strategy)
	fmt.Fprintf(out, "  %s %s\n", st.Label.Render("env.dir"), s.Env.Dir)
	fmt.Fprintf(out, "  %s %s\n", st.Label.Render("driver.mode"), s.Driver.Mode)
	fmt.Fprintf(out, "  %s %s\n", st.Label.Render("driver.version"), s.Driver.Version)
	fmt.Fprintf(out, "  %s %s\n", st.Label.Render("driver.platform"), s.Driver.Platform)
	fmt.Fprintf(out, "  %s %v\n", st.Label.Render("driver.components"), s.Driver.Components)
	fmt.Fprintf(out, "  %s %t (keep %d)\n", st.Label.Render("history"), s.History.Enabled, s.History.Keep)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(settingsService.Path())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Unset(args[0]); err != nil {
		return err
	}
	cmd.Printf("Unset %s\n", args[0])
	return nil
}
