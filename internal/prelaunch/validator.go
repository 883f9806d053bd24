// SPDX-License-Identifier: MPL-2.0

// Package prelaunch decides whether a launch may proceed. The Validator checks
// a handshake against the instance manifest the launcher holds; the Pipeline
// resolves an instance, builds its handshake and validates it before anything
// is spawned.
package prelaunch

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/launchgate/launchgate/pkg/handshake"
	"github.com/launchgate/launchgate/pkg/instance"
	"github.com/launchgate/launchgate/pkg/pack"
)

type (
	// Resolver is the pack resolution the validator and pipeline depend on.
	// *resolver.Resolver satisfies it.
	Resolver interface {
		Resolve(m *instance.Manifest) ([]pack.ResolvedPack, error)
		ValidateSimulationSafety(m *instance.Manifest) ([]pack.ResolvedPack, error)
	}

	// Validator checks handshakes against instance manifests.
	Validator struct {
		Resolver Resolver
		// Logger receives debug output. Nil discards.
		Logger *slog.Logger
	}

	// Result is the outcome of Validate. Code is RefusalOK when accepted.
	Result struct {
		Code   handshake.RefusalCode
		PackID string
		Reason string
		Err    error
	}
)

// OK reports whether the handshake was accepted.
func (r Result) OK() bool {
	return r.Code == handshake.RefusalOK
}

// AsError returns a *handshake.RefusalError for a refusal and nil when OK.
func (r Result) AsError() error {
	if r.OK() {
		return nil
	}
	return &handshake.RefusalError{Code: r.Code, PackID: r.PackID, Reason: r.Reason, Err: r.Err}
}

// NewValidator returns a Validator using r.
func NewValidator(r Resolver, logger *slog.Logger) *Validator {
	return &Validator{Resolver: r, Logger: logger}
}

// Validate runs the checks in order and stops at the first failure:
//  1. required scalar fields are set
//  2. the manifest hash matches m
//  3. m resolves
//  4. every expected sim-affecting pack is declared
//  5. enabled declarations carry the expected content hash
//  6. declared sim-affecting flags equal the expected set
//
// Checks 4 to 6 run per expected pack in load order. A nil h fails check 1
// and a nil m fails check 2.
func (v *Validator) Validate(h *handshake.Handshake, m *instance.Manifest) Result {
	res := v.validate(h, m)
	if !res.OK() {
		var instanceID string
		if m != nil {
			instanceID = m.InstanceID
		}
		v.logger().Debug("handshake refused",
			"instance", instanceID, "code", res.Code.String(), "pack", res.PackID, "reason", res.Reason)
	}
	return res
}

func (v *Validator) validate(h *handshake.Handshake, m *instance.Manifest) Result {
	if h == nil {
		return Result{Code: handshake.RefusalMissingRequiredFields, Reason: "no handshake"}
	}
	if m == nil {
		return Result{Code: handshake.RefusalManifestHashMismatch, Reason: "no instance manifest to compare against"}
	}
	if missing := missingFields(h); len(missing) > 0 {
		return Result{
			Code:   handshake.RefusalMissingRequiredFields,
			Reason: "missing " + strings.Join(missing, ", "),
		}
	}

	want := m.Hash()
	if !bytes.Equal(h.InstanceManifestHash, want[:]) {
		return Result{
			Code:   handshake.RefusalManifestHashMismatch,
			Reason: fmt.Sprintf("handshake declares %x, manifest hashes to %x", h.InstanceManifestHash, want),
		}
	}

	expected, err := v.Resolver.Resolve(m)
	if err != nil {
		return Result{
			Code:   handshake.RefusalMissingSimAffectingPackDeclarations,
			Reason: "instance does not resolve",
			Err:    err,
		}
	}

	for _, exp := range expected {
		if !exp.AffectsSimulation() {
			continue
		}
		got, ok := h.Pack(exp.PackID)
		if !ok {
			return Result{
				Code:   handshake.RefusalMissingSimAffectingPackDeclarations,
				PackID: exp.PackID,
				Reason: "sim-affecting pack is not declared",
			}
		}
		if got.Enabled && !bytes.Equal(got.HashBytes, exp.ArtifactHashBytes) {
			return Result{
				Code:   handshake.RefusalPackHashMismatch,
				PackID: exp.PackID,
				Reason: fmt.Sprintf("declared hash %x, expected %x", got.HashBytes, exp.ArtifactHashBytes),
			}
		}
		if !slices.Equal(pack.NormalizeFlags(got.SimAffectingFlags), pack.NormalizeFlags(exp.SimAffectingFlags)) {
			return Result{
				Code:   handshake.RefusalMissingSimAffectingPackDeclarations,
				PackID: exp.PackID,
				Reason: fmt.Sprintf("declared sim flags [%s], expected [%s]",
					strings.Join(got.SimAffectingFlags, ", "), strings.Join(exp.SimAffectingFlags, ", ")),
			}
		}
	}
	return Result{Code: handshake.RefusalOK}
}

func missingFields(h *handshake.Handshake) []string {
	var missing []string
	if h.RunID == 0 {
		missing = append(missing, "run_id")
	}
	if h.InstanceID == "" {
		missing = append(missing, "instance_id")
	}
	if len(h.InstanceManifestHash) != handshake.ManifestHashLen {
		missing = append(missing, "instance_manifest_hash")
	}
	if h.LauncherProfileID == "" {
		missing = append(missing, "launcher_profile_id")
	}
	if h.DeterminismProfileID == "" {
		missing = append(missing, "determinism_profile_id")
	}
	if h.EngineBuildID == "" {
		missing = append(missing, "engine_build_id")
	}
	if h.GameBuildID == "" {
		missing = append(missing, "game_build_id")
	}
	return missing
}

func (v *Validator) logger() *slog.Logger {
	if v.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return v.Logger
}
