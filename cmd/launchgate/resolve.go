// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/launchgate/launchgate/internal/issue"
	"github.com/launchgate/launchgate/pkg/pack"
)

// resolvedEntry is the printable form of one load order position.
type resolvedEntry struct {
	Position int      `json:"position" yaml:"position"`
	PackID   string   `json:"pack_id" yaml:"pack_id"`
	Version  string   `json:"version" yaml:"version"`
	Type     string   `json:"type" yaml:"type"`
	Phase    string   `json:"phase" yaml:"phase"`
	Order    int32    `json:"order" yaml:"order"`
	Hash     string   `json:"hash" yaml:"hash"`
	SimFlags []string `json:"sim_flags" yaml:"sim_flags"`
}

func newResolveCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "resolve <instance-id>",
		Short: "Print an instance's deterministic pack load order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			m, err := s.instances.Load(args[0])
			if err != nil {
				return loadInstanceError(args[0], err)
			}

			order, err := s.resolver.Resolve(m)
			s.metrics.ObserveResolution(len(order), err)
			s.flushMetrics()
			if err != nil {
				return fmt.Errorf("resolving %s: %w", m.InstanceID, err)
			}
			return writeLoadOrder(cmd.OutOrStdout(), format, toResolvedEntries(order))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or yaml")
	return cmd
}

func toResolvedEntries(order []pack.ResolvedPack) []resolvedEntry {
	out := make([]resolvedEntry, len(order))
	for i, p := range order {
		flags := p.SimAffectingFlags
		if flags == nil {
			flags = []string{}
		}
		out[i] = resolvedEntry{
			Position: i + 1,
			PackID:   p.PackID,
			Version:  p.Version,
			Type:     p.ContentType.String(),
			Phase:    p.Phase.String(),
			Order:    p.EffectiveOrder,
			Hash:     hex.EncodeToString(p.ArtifactHashBytes),
			SimFlags: flags,
		}
	}
	return out
}

func writeLoadOrder(w io.Writer, format string, entries []resolvedEntry) error {
	switch format {
	case formatJSON:
		return writeCanonicalJSON(w, entries)
	case formatYAML:
		return writeYAML(w, entries)
	}
	for _, e := range entries {
		flags := ""
		if len(e.SimFlags) > 0 {
			flags = "  " + WarningStyle.Render("sim: "+strings.Join(e.SimFlags, ","))
		}
		fmt.Fprintf(w, "%3d. %s %s  [%s/%s order=%d]%s\n",
			e.Position, CmdStyle.Render(e.PackID), e.Version, e.Type, e.Phase, e.Order, flags)
	}
	return nil
}

func loadInstanceError(id string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load instance").
		WithResource(id).
		WithSuggestion("Import it with 'launchgate instance import <instance.cue>'").
		WithSuggestion("Check --state-root").
		Wrap(err).
		BuildError()
}
