// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/launchgate/launchgate/internal/issue"
	"github.com/launchgate/launchgate/pkg/handshake"
)

func newExplainCommand(_ *App) *cobra.Command {
	var (
		style   string
		issueID int
	)

	cmd := &cobra.Command{
		Use:   "explain [refusal-code]",
		Short: "Explain a handshake refusal code",
		Long: `Explain a handshake refusal code.

The code may be given as a number (4) or a name (pack_hash_mismatch).
Without an argument, all refusal codes and guides are listed. A guide that is
not tied to a refusal code is shown with --issue <id>.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if issueID != 0 {
				guide := issue.Get(issue.Id(issueID))
				if guide == nil {
					return fmt.Errorf("unknown issue id %d", issueID)
				}
				return renderGuide(w, guide, style)
			}
			if len(args) == 0 {
				listGuides(w)
				return nil
			}

			code, err := handshake.ParseRefusalCode(args[0])
			if err != nil {
				return err
			}
			guide := issue.ForRefusal(code)
			if guide == nil {
				fmt.Fprintf(w, "%d %s: the handshake was accepted\n", code, code)
				return nil
			}
			return renderGuide(w, guide, style)
		},
	}
	cmd.Flags().StringVar(&style, "style", "dark", "glamour style: dark, light, notty or a style file")
	cmd.Flags().IntVar(&issueID, "issue", 0, "render the guide with this catalog id")
	return cmd
}

func listGuides(w io.Writer) {
	fmt.Fprintln(w, TitleStyle.Render("refusal codes"))
	for _, code := range handshake.RefusalCodes() {
		title := "accepted"
		if guide := issue.ForRefusal(code); guide != nil {
			title = guide.Title()
		}
		fmt.Fprintf(w, "%d  %-40s %s\n", code, code, SubtitleStyle.Render(title))
	}

	fmt.Fprintln(w, TitleStyle.Render("guides"))
	for _, guide := range issue.Values() {
		fmt.Fprintf(w, "%2d  %s\n", guide.Id(), guide.Title())
	}
}

func renderGuide(w io.Writer, guide *issue.Issue, style string) error {
	rendered, err := guide.Render(style)
	if err != nil {
		return fmt.Errorf("rendering guide: %w", err)
	}
	fmt.Fprint(w, rendered)
	return nil
}
