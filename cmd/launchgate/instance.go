// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/launchgate/launchgate/internal/issue"
	"github.com/launchgate/launchgate/pkg/instance"
)

func newInstanceCommand(app *App) *cobra.Command {
	var check bool

	instanceCmd := &cobra.Command{
		Use:   "instance",
		Short: "Manage instance manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <instance.cue>",
		Short: "Validate an instance source and store its manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importInstance(cmd, app, args[0], check)
		},
	}
	importCmd.Flags().BoolVar(&check, "check", false, "resolve the instance before storing it")
	instanceCmd.AddCommand(importCmd)

	return instanceCmd
}

func importInstance(cmd *cobra.Command, app *App, path string, check bool) error {
	s, err := app.session(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return issue.WrapWithContext(err, "read instance source", path)
	}
	m, err := instance.ParseSource(data, path)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("parse instance source").
			WithResource(path).
			WithSuggestion("Check the file against the #Instance schema").
			Wrap(err).
			BuildError()
	}

	if check {
		order, err := s.resolver.Resolve(m)
		s.metrics.ObserveResolution(len(order), err)
		s.flushMetrics()
		if err != nil {
			return fmt.Errorf("resolving %s: %w", m.InstanceID, err)
		}
	}

	if err := s.instances.Save(m); err != nil {
		return issue.WrapWithContext(err, "store instance", m.InstanceID)
	}

	hash := m.Hash()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", SuccessStyle.Render("imported"), CmdStyle.Render(m.InstanceID))
	fmt.Fprintln(out, hex.EncodeToString(hash[:]))
	return nil
}
