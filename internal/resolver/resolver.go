// SPDX-License-Identifier: MPL-2.0

// Package resolver turns an instance manifest into a deterministic pack load
// order. It loads each enabled pack's manifest from the artifact store,
// enforces conflict, required and optional constraints, and sorts the packs
// so that dependencies come first.
package resolver

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/launchgate/launchgate/internal/artifact"
	"github.com/launchgate/launchgate/pkg/instance"
	"github.com/launchgate/launchgate/pkg/pack"
)

// Resolver resolves instance manifests against an artifact store. It holds no
// mutable state, so one Resolver may serve concurrent calls for different
// instances.
type Resolver struct {
	Store     artifact.Store
	StateRoot string
	// Logger receives debug output. Nil discards.
	Logger *slog.Logger
}

// New returns a Resolver reading from store under stateRoot.
func New(store artifact.Store, stateRoot string, logger *slog.Logger) *Resolver {
	return &Resolver{Store: store, StateRoot: stateRoot, Logger: logger}
}

// Resolve returns the enabled packs of m in load order.
func (r *Resolver) Resolve(m *instance.Manifest) ([]pack.ResolvedPack, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	entries := m.PackEntries()
	if err := checkDuplicates(entries); err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b instance.ContentEntry) int { return cmp.Compare(a.ID, b.ID) })

	packs := make([]loaded, 0, len(entries))
	for _, e := range entries {
		pm, err := LoadManifest(r.Store, r.StateRoot, e)
		if err != nil {
			return nil, err
		}
		packs = append(packs, loaded{entry: e, manifest: pm})
	}

	g, err := buildGraph(packs)
	if err != nil {
		return nil, err
	}
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(order))
	for i, p := range order {
		ids[i] = p.PackID
	}
	r.logger().Debug("resolved load order", "instance", m.InstanceID, "packs", ids)
	return order, nil
}

// ValidateSimulationSafety resolves m and refuses any sim-affecting pack that
// is not pinned by a content hash.
func (r *Resolver) ValidateSimulationSafety(m *instance.Manifest) ([]pack.ResolvedPack, error) {
	order, err := r.Resolve(m)
	if err != nil {
		return nil, err
	}
	if err := CheckPinned(order); err != nil {
		return nil, err
	}
	return order, nil
}

// CheckPinned returns UnpinnedSimPackError for the first sim-affecting pack
// without an artifact hash.
func CheckPinned(order []pack.ResolvedPack) error {
	for _, p := range order {
		if p.AffectsSimulation() && len(p.ArtifactHashBytes) == 0 {
			return &UnpinnedSimPackError{PackID: p.PackID, Flags: slices.Clone(p.SimAffectingFlags)}
		}
	}
	return nil
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
