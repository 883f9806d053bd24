// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/launchgate/launchgate/internal/config"
)

// newConfigCommand creates the `launchgate config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage launchgate configuration",
		Long: `Manage launchgate configuration.

Configuration is stored in:
  - Linux: ~/.config/launchgate/config.cue
  - macOS: ~/Library/Application Support/launchgate/config.cue
  - Windows: %APPDATA%\launchgate\config.cue

Every key can be overridden with a LAUNCHGATE_* environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			source := s.source
			if source == "" {
				source = "defaults"
			}
			fmt.Fprintf(w, "// source: %s\n// state root: %s\n", source, s.stateRoot)
			fmt.Fprint(w, config.GenerateCUE(s.cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig(app.ConfigDirPath)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", SuccessStyle.Render("created"), path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", WarningStyle.Render("exists"), path)
			}
			return nil
		},
	})

	return cfgCmd
}
