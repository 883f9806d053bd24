// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"cmp"
	"slices"

	"github.com/launchgate/launchgate/internal/dag"
	"github.com/launchgate/launchgate/pkg/instance"
	"github.com/launchgate/launchgate/pkg/pack"
	"github.com/launchgate/launchgate/pkg/version"
)

// loaded pairs a content entry with its manifest.
type loaded struct {
	entry    instance.ContentEntry
	manifest *pack.Manifest
}

// checkDuplicates reports the smallest pack id that appears more than once.
func checkDuplicates(entries []instance.ContentEntry) error {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	slices.Sort(ids)
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			return &DuplicatePackError{PackID: ids[i]}
		}
	}
	return nil
}

// buildGraph adds one node per pack in ascending id order, evaluates every
// pack's constraints in that order and adds dependency -> dependent edges.
// packs must already be sorted by id and free of duplicates.
func buildGraph(packs []loaded) (*dag.Graph[pack.ResolvedPack], error) {
	g := dag.New(loadOrderLess, func(p pack.ResolvedPack) string { return p.PackID })
	ids := make(map[string]dag.NodeID, len(packs))
	byID := make(map[string]*pack.Manifest, len(packs))
	for _, p := range packs {
		ids[p.manifest.PackID] = g.AddNode(p.manifest.Resolve(p.entry.HashBytes, p.entry.ExplicitOrderOverride))
		byID[p.manifest.PackID] = p.manifest
	}

	for _, p := range packs {
		m := p.manifest
		for _, c := range m.Conflicts {
			if other, ok := byID[c.PackID]; ok && version.InRange(other.Version, c.Range) {
				return nil, &ConflictError{PackID: m.PackID, Conflict: c.PackID, Range: c.Range, Found: other.Version}
			}
		}
		for _, d := range m.Required {
			other, ok := byID[d.PackID]
			if !ok {
				return nil, &MissingRequiredPackError{PackID: m.PackID, Requires: d.PackID}
			}
			if !version.InRange(other.Version, d.Range) {
				return nil, &IncompatibleVersionError{PackID: m.PackID, Dependency: d.PackID, Kind: DependencyRequired, Range: d.Range, Found: other.Version}
			}
			if err := g.AddEdge(ids[d.PackID], ids[m.PackID]); err != nil {
				return nil, err
			}
		}
		for _, d := range m.Optional {
			other, ok := byID[d.PackID]
			if !ok {
				continue
			}
			if !version.InRange(other.Version, d.Range) {
				return nil, &IncompatibleVersionError{PackID: m.PackID, Dependency: d.PackID, Kind: DependencyOptional, Range: d.Range, Found: other.Version}
			}
			if err := g.AddEdge(ids[d.PackID], ids[m.PackID]); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// loadOrderLess orders ready packs by (phase rank, effective order, pack id).
func loadOrderLess(a, b pack.ResolvedPack) bool {
	return cmp.Or(
		cmp.Compare(a.Phase.Rank(), b.Phase.Rank()),
		cmp.Compare(a.EffectiveOrder, b.EffectiveOrder),
		cmp.Compare(a.PackID, b.PackID),
	) < 0
}
