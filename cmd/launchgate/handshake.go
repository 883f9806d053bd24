// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/launchgate/launchgate/internal/issue"
	"github.com/launchgate/launchgate/internal/prelaunch"
	"github.com/launchgate/launchgate/pkg/fspath"
	"github.com/launchgate/launchgate/pkg/handshake"
)

const runsDir = "runs"

type inspectView struct {
	Fingerprint string               `json:"fingerprint"`
	SimCaps     handshake.SimCaps    `json:"sim_caps"`
	PerfCaps    handshake.PerfCaps   `json:"perf_caps"`
	Handshake   *handshake.Handshake `json:"handshake"`
}

func newHandshakeCommand(app *App) *cobra.Command {
	handshakeCmd := &cobra.Command{
		Use:   "handshake",
		Short: "Build, validate and inspect launch handshakes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		out   string
		runID uint64
	)
	buildCmd := &cobra.Command{
		Use:   "build <instance-id>",
		Short: "Resolve an instance and write a validated handshake",
		Long: `Resolve an instance and write a validated handshake.

The handshake is encoded, decoded again and validated exactly as the engine
will see it. A refused handshake is never written; the command exits with
10 + the refusal code.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildHandshake(cmd, app, args[0], out, runID)
		},
	}
	buildCmd.Flags().StringVarP(&out, "out", "o", "", "output path (default <state-root>/runs/<run-id>.handshake)")
	buildCmd.Flags().Uint64Var(&runID, "run-id", 0, "run id (default derived from a random UUID)")

	validateCmd := &cobra.Command{
		Use:   "validate <instance-id> <handshake-file>",
		Short: "Validate a handshake against an instance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateHandshake(cmd, app, args[0], args[1])
		},
	}

	var asJSON bool
	inspectCmd := &cobra.Command{
		Use:   "inspect <handshake-file>",
		Short: "Decode and print a handshake",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectHandshake(cmd.OutOrStdout(), args[0], asJSON)
		},
	}
	inspectCmd.Flags().BoolVar(&asJSON, "json", false, "print canonical JSON")

	handshakeCmd.AddCommand(buildCmd, validateCmd, inspectCmd)
	return handshakeCmd
}

func buildHandshake(cmd *cobra.Command, app *App, instanceID, out string, runID uint64) error {
	s, err := app.session(cmd)
	if err != nil {
		return err
	}
	m, err := s.instances.Load(instanceID)
	if err != nil {
		return loadInstanceError(instanceID, err)
	}

	if runID == 0 {
		runID = newRunID()
	}
	ids := s.cfg.Identity(runID)
	now := app.Now()
	ids.TimestampWallUS = uint64(now.UnixMicro())
	ids.TimestampMonotonicUS = uint64(now.Sub(app.start).Microseconds())

	prepared, err := prelaunch.NewPipeline(s.resolver, s.metrics, s.logger).Prepare(m, s.cfg.Caps(), ids)
	s.flushMetrics()
	if err != nil {
		var refusal *handshake.RefusalError
		if errors.As(err, &refusal) {
			return refusalExit(refusal)
		}
		return err
	}

	if out == "" {
		out = filepath.Join(s.stateRoot, runsDir, fmt.Sprintf("%016x.handshake", runID))
	}
	if err := fspath.WriteAtomic(out, prepared.Encoded, 0o644); err != nil {
		return issue.WrapWithContext(err, "write handshake", out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("handshake written"), out)
	kv(w, "run id", prepared.Handshake.RunID)
	kv(w, "packs", len(prepared.Packs))
	kv(w, "fingerprint", fmt.Sprintf("%016x", prepared.Fingerprint))
	return nil
}

func validateHandshake(cmd *cobra.Command, app *App, instanceID, path string) error {
	s, err := app.session(cmd)
	if err != nil {
		return err
	}
	m, err := s.instances.Load(instanceID)
	if err != nil {
		return loadInstanceError(instanceID, err)
	}
	h, err := readHandshake(path)
	if err != nil {
		return err
	}

	res := prelaunch.NewValidator(s.resolver, s.logger).Validate(h, m)
	w := cmd.OutOrStdout()
	if res.OK() {
		fmt.Fprintf(w, "%s %016x\n", SuccessStyle.Render("accepted"), handshake.IdentityHash(h))
		return nil
	}

	s.metrics.ObserveRefusal(res.Code)
	s.flushMetrics()
	fmt.Fprintf(w, "%s %d %s\n", ErrorStyle.Render("refused"), res.Code, res.Code)
	var refusal *handshake.RefusalError
	errors.As(res.AsError(), &refusal)
	return refusalExit(refusal)
}

func inspectHandshake(w io.Writer, path string, asJSON bool) error {
	h, err := readHandshake(path)
	if err != nil {
		return err
	}
	sim, err := handshake.DecodeSimCaps(h.SimCaps)
	if err != nil {
		return err
	}
	perf, err := handshake.DecodePerfCaps(h.PerfCaps)
	if err != nil {
		return err
	}
	fingerprint := fmt.Sprintf("%016x", handshake.IdentityHash(h))

	if asJSON {
		return writeCanonicalJSON(w, inspectView{Fingerprint: fingerprint, SimCaps: sim, PerfCaps: perf, Handshake: h})
	}

	fmt.Fprintln(w, TitleStyle.Render("handshake "+filepath.Base(path)))
	kv(w, "fingerprint", fingerprint)
	kv(w, "run id", h.RunID)
	kv(w, "instance", h.InstanceID)
	kv(w, "manifest hash", hex.EncodeToString(h.InstanceManifestHash))
	kv(w, "launcher profile", h.LauncherProfileID)
	kv(w, "determinism profile", h.DeterminismProfileID)
	kv(w, "engine build", h.EngineBuildID)
	kv(w, "game build", h.GameBuildID)
	kv(w, "platform backends", strings.Join(h.PlatformBackends, ", "))
	kv(w, "renderer backends", strings.Join(h.RendererBackends, ", "))
	kv(w, "ui backend", h.UIBackend)
	kv(w, "sim caps", fmt.Sprintf("%d Hz, rng=%s, fixed_point=%v, max_entities=%d",
		sim.TickRateHz, sim.RNGAlgorithm, sim.FixedPoint, sim.MaxEntities))
	if h.FeatureEpoch != nil {
		kv(w, "feature epoch", *h.FeatureEpoch)
	}

	fmt.Fprintln(w, TitleStyle.Render("packs"))
	for i, p := range h.ResolvedPacks {
		state := ""
		if !p.Enabled {
			state = " (disabled)"
		}
		fmt.Fprintf(w, "%3d. %s %s %s%s\n", i+1, CmdStyle.Render(p.PackID), p.Version, hex.EncodeToString(p.HashBytes), state)
	}
	return nil
}

func readHandshake(path string) (*handshake.Handshake, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.WrapWithContext(err, "read handshake", path)
	}
	h, err := handshake.Decode(data)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("decode handshake").
			WithResource(path).
			WithSuggestion("Rebuild it with 'launchgate handshake build'").
			WithIssue(issue.InvalidHandshakeId).
			Wrap(err).
			BuildError()
	}
	return h, nil
}
