// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/launchgate/launchgate/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree bound to app.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "launchgate",
		Short: "Deterministic pack resolution and launch handshakes",
		Long: TitleStyle.Render("launchgate") + SubtitleStyle.Render(" - the launcher's trust boundary") + `

launchgate resolves an instance's packs into a deterministic load order,
builds the handshake the engine receives at launch and validates
handshakes against the instance they claim to describe.

` + SubtitleStyle.Render("Examples:") + `
  launchgate pack publish core/pack.cue      Store a pack artifact
  launchgate instance import instance.cue    Register an instance
  launchgate resolve coop                    Show the load order
  launchgate handshake build coop            Write a validated handshake
  launchgate explain 4                       Explain a refusal code`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	rootCmd.PersistentFlags().StringVar(&app.flags.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/launchgate/config.cue)")
	rootCmd.PersistentFlags().StringVar(&app.flags.stateRoot, "state-root", "", "directory holding instances and pack artifacts")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(
		newResolveCommand(app),
		newPackCommand(app),
		newInstanceCommand(app),
		newHandshakeCommand(app),
		newExplainCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the command's status.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := newRootCommand(app)

	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err == nil {
		return
	}

	renderIssueHint(app.stderr, err, app.flags.verbose)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	os.Exit(1)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssueHint points the user at the catalog guide for err. In verbose
// mode the guide itself is rendered.
func renderIssueHint(w io.Writer, err error, verboseMode bool) {
	id := classifyError(err)
	if id == 0 {
		return
	}
	guide := issue.Get(id)
	if !verboseMode {
		fmt.Fprintln(w, SubtitleStyle.Render("hint: "+guide.Title()+". Run with --verbose for a guide."))
		return
	}
	fmt.Fprintln(w, formatErrorForDisplay(err, true))
	if rendered, renderErr := guide.Render("dark"); renderErr == nil {
		fmt.Fprint(w, rendered)
	}
}
