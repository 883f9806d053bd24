// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/launchgate/launchgate/pkg/version"
)

const (
	// TypeContent is a content pack.
	TypeContent Type = 1
	// TypeMod is a gameplay mod.
	TypeMod Type = 2
	// TypeRuntime is a runtime component.
	TypeRuntime Type = 3

	// PhaseEarly packs load before all others.
	PhaseEarly Phase = 1
	// PhaseNormal is the default load phase.
	PhaseNormal Phase = 2
	// PhaseLate packs load after all others.
	PhaseLate Phase = 3
)

var (
	// ErrInvalidType is returned for a Type outside the closed set.
	ErrInvalidType = errors.New("invalid pack type")
	// ErrInvalidManifest is the sentinel wrapped by InvalidManifestError.
	ErrInvalidManifest = errors.New("invalid pack manifest")
)

type (
	// Type is the closed set of pack kinds.
	Type uint32

	// Phase is the coarse load phase. Values outside the known set are kept
	// as-is and rank after PhaseLate.
	Phase uint32

	// Dependency names another pack and the inclusive version range it must satisfy.
	Dependency struct {
		PackID string
		Range  version.Range
	}

	// Manifest is the decoded manifest of one pack. It is read-only once loaded.
	Manifest struct {
		PackID        string
		Type          Type
		Version       string
		Phase         Phase
		ExplicitOrder int32
		Required      []Dependency
		Optional      []Dependency
		Conflicts     []Dependency
		// SimAffectingFlags is a set, kept sorted and free of duplicates.
		SimAffectingFlags []string
		ContentHash       []byte
	}

	// ResolvedPack is one entry of a resolved load order.
	ResolvedPack struct {
		PackID            string
		ContentType       Type
		Version           string
		ArtifactHashBytes []byte
		Phase             Phase
		EffectiveOrder    int32
		SimAffectingFlags []string
	}

	// InvalidManifestError reports a structurally invalid manifest.
	InvalidManifestError struct {
		PackID string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidManifestError) Error() string {
	if e.PackID == "" {
		return "invalid pack manifest: " + e.Reason
	}
	return fmt.Sprintf("invalid pack manifest %q: %s", e.PackID, e.Reason)
}

// Unwrap returns ErrInvalidManifest for errors.Is.
func (e *InvalidManifestError) Unwrap() error { return ErrInvalidManifest }

// String returns the lowercase type name used in pack sources.
func (t Type) String() string {
	switch t {
	case TypeContent:
		return "content"
	case TypeMod:
		return "mod"
	case TypeRuntime:
		return "runtime"
	default:
		return fmt.Sprintf("type(%d)", uint32(t))
	}
}

// Validate returns ErrInvalidType for unknown types.
func (t Type) Validate() error {
	switch t {
	case TypeContent, TypeMod, TypeRuntime:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidType, uint32(t))
	}
}

// ParseType maps a source name to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "content":
		return TypeContent, nil
	case "mod":
		return TypeMod, nil
	case "runtime":
		return TypeRuntime, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseEarly:
		return "early"
	case PhaseNormal:
		return "normal"
	case PhaseLate:
		return "late"
	default:
		return fmt.Sprintf("phase(%d)", uint32(p))
	}
}

// Rank orders phases: early=0, normal=1, late=2, anything else=3.
func (p Phase) Rank() int {
	switch p {
	case PhaseEarly:
		return 0
	case PhaseNormal:
		return 1
	case PhaseLate:
		return 2
	default:
		return 3
	}
}

// ParsePhase maps a source name to a Phase.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "early":
		return PhaseEarly, nil
	case "normal", "":
		return PhaseNormal, nil
	case "late":
		return PhaseLate, nil
	default:
		return 0, fmt.Errorf("unknown phase %q", s)
	}
}

// String renders "id[min, max]".
func (d Dependency) String() string {
	return d.PackID + d.Range.String()
}

// Validate checks the manifest's structural invariants.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.PackID) == "" {
		return &InvalidManifestError{Reason: "pack_id is empty"}
	}
	if m.Version == "" {
		return &InvalidManifestError{PackID: m.PackID, Reason: "version is empty"}
	}
	if err := m.Type.Validate(); err != nil {
		return &InvalidManifestError{PackID: m.PackID, Reason: err.Error()}
	}
	groups := []struct {
		name string
		deps []Dependency
	}{
		{"required", m.Required},
		{"optional", m.Optional},
		{"conflicts", m.Conflicts},
	}
	for _, g := range groups {
		for i, d := range g.deps {
			if d.PackID == "" {
				return &InvalidManifestError{PackID: m.PackID, Reason: fmt.Sprintf("%s[%d]: pack_id is empty", g.name, i)}
			}
		}
	}
	return nil
}

// Resolve builds the ResolvedPack for this manifest. A non-nil orderOverride
// replaces ExplicitOrder.
func (m *Manifest) Resolve(hash []byte, orderOverride *int32) ResolvedPack {
	order := m.ExplicitOrder
	if orderOverride != nil {
		order = *orderOverride
	}
	return ResolvedPack{
		PackID:            m.PackID,
		ContentType:       m.Type,
		Version:           m.Version,
		ArtifactHashBytes: slices.Clone(hash),
		Phase:             m.Phase,
		EffectiveOrder:    order,
		SimAffectingFlags: slices.Clone(m.SimAffectingFlags),
	}
}

// AffectsSimulation reports whether the pack declares any sim-affecting flag.
func (p ResolvedPack) AffectsSimulation() bool {
	return len(p.SimAffectingFlags) > 0
}

// NormalizeFlags returns a sorted copy of flags with duplicates removed.
func NormalizeFlags(flags []string) []string {
	if len(flags) == 0 {
		return nil
	}
	out := slices.Clone(flags)
	slices.Sort(out)
	return slices.Compact(out)
}
