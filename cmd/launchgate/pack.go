// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/launchgate/launchgate/internal/issue"
	"github.com/launchgate/launchgate/pkg/pack"
)

func newPackCommand(app *App) *cobra.Command {
	packCmd := &cobra.Command{
		Use:   "pack",
		Short: "Manage pack artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	packCmd.AddCommand(&cobra.Command{
		Use:   "publish <pack.cue>",
		Short: "Validate a pack source and store it as an artifact",
		Long: `Validate a pack source and store it as an artifact.

The artifact is keyed by the pack's content hash. When the source has no
content_hash, the SHA-256 of the manifest encoding is used. The hash is
printed so it can be referenced from an instance.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return publishPack(cmd, app, args[0])
		},
	})
	return packCmd
}

func publishPack(cmd *cobra.Command, app *App, path string) error {
	s, err := app.session(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return issue.WrapWithContext(err, "read pack source", path)
	}
	m, err := pack.ParseSource(data, path)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("parse pack source").
			WithResource(path).
			WithSuggestion("Check the file against the #Pack schema").
			Wrap(err).
			BuildError()
	}

	hash := pack.SealContentHash(m)
	stored, err := s.artifacts.Put(s.stateRoot, hash, pack.Encode(m))
	if err != nil {
		return issue.WrapWithContext(err, "store pack artifact", m.PackID)
	}
	s.logger.Debug("pack published", "pack", m.PackID, "path", stored)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s %s\n", SuccessStyle.Render("published"), CmdStyle.Render(m.PackID), m.Version)
	fmt.Fprintln(out, hex.EncodeToString(hash))
	return nil
}
