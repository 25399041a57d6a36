package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tplx/internal/config"
)

var (
	configOutput  = newOutputFormat("yaml", "yaml", "json")
	configDefault bool
)

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tplx configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the merged configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configDefault {
			_, err := cmd.OutOrStdout().Write(config.DefaultYAML())
			return err
		}
		return writeStructured(cmd.OutOrStdout(), appConfig, configOutput.String())
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := config.ResolvePath(configFile)
		if path == "" {
			path = "(built-in defaults)"
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runThemesList(cmd.OutOrStdout(), appConfig)
	},
}

//nolint:gochecknoinits // cobra wiring
func init() {
	configGetCmd.Flags().VarP(configOutput, "output", "o", "output format: yaml|json")
	configGetCmd.Flags().BoolVar(&configDefault, "default", false, "print the built-in default config, with comments")
	configCmd.AddCommand(configGetCmd, configPathCmd, configThemesCmd)
}

func runThemesList(w io.Writer, cfg config.Config) error {
	if _, err := fmt.Fprintf(w, "Available themes (current: %s):\n", cfg.Editor.Theme); err != nil {
		return err
	}
	for _, name := range cfg.ThemeNames() {
		if _, err := fmt.Fprintf(w, " - %s\n", name); err != nil {
			return err
		}
	}
	return nil
}
