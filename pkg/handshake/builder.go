// SPDX-License-Identifier: MPL-2.0

package handshake

import (
	"slices"

	"github.com/launchgate/launchgate/pkg/instance"
	"github.com/launchgate/launchgate/pkg/pack"
)

type (
	// Caps are the capability inputs to Build.
	Caps struct {
		Sim                  SimCaps
		Perf                 PerfCaps
		ProviderBindingsHash *uint64
		FeatureEpoch         *uint32
		CoredataSimHash      *uint64
	}

	// Identity carries the launcher-side identifiers and per-launch settings.
	// Timestamps are supplied by the caller; Build never reads a clock.
	Identity struct {
		RunID                uint64
		LauncherProfileID    string
		DeterminismProfileID string
		PlatformBackends     []string
		RendererBackends     []string
		UIBackend            string
		SafeModeFlags        []string
		OfflineMode          bool
		TimestampMonotonicUS uint64
		TimestampWallUS      uint64
	}
)

// Build assembles the handshake for packs, which must be m's resolved load
// order. Pack order is kept. Backend lists and per-pack flag lists are
// sorted. The manifest hash is always computed from m. Inputs are not modified.
func Build(packs []pack.ResolvedPack, m *instance.Manifest, caps Caps, ids Identity) *Handshake {
	hash := m.Hash()
	h := &Handshake{
		RunID:                ids.RunID,
		InstanceID:           m.InstanceID,
		InstanceManifestHash: hash[:],
		LauncherProfileID:    ids.LauncherProfileID,
		DeterminismProfileID: ids.DeterminismProfileID,
		PlatformBackends:     sorted(ids.PlatformBackends),
		RendererBackends:     sorted(ids.RendererBackends),
		UIBackend:            ids.UIBackend,
		EngineBuildID:        m.PinnedEngineBuildID,
		GameBuildID:          m.PinnedGameBuildID,
		SimCaps:              caps.Sim.Encode(),
		PerfCaps:             caps.Perf.Encode(),
		ProviderBindingsHash: clonePtr(caps.ProviderBindingsHash),
		FeatureEpoch:         clonePtr(caps.FeatureEpoch),
		CoredataSimHash:      clonePtr(caps.CoredataSimHash),
		TimestampMonotonicUS: ids.TimestampMonotonicUS,
		TimestampWallUS:      ids.TimestampWallUS,
	}
	safe := sorted(ids.SafeModeFlags)
	h.ResolvedPacks = make([]PackEntry, 0, len(packs))
	for _, p := range packs {
		h.ResolvedPacks = append(h.ResolvedPacks, PackEntry{
			PackID:            p.PackID,
			Version:           p.Version,
			HashBytes:         slices.Clone(p.ArtifactHashBytes),
			Enabled:           true,
			SimAffectingFlags: sorted(p.SimAffectingFlags),
			SafeModeFlags:     slices.Clone(safe),
			OfflineMode:       ids.OfflineMode,
		})
	}
	return h
}

func sorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}
