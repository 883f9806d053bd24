// SPDX-License-Identifier: MPL-2.0

// Package handshake defines the record a launcher hands to the engine it
// spawns: who is launching, which builds are pinned, which packs are active
// in which order, and the simulation and performance capabilities in force.
// The engine re-derives the same facts and refuses the launch on any
// disagreement.
package handshake

import (
	"slices"
)

// ManifestHashLen is the length of InstanceManifestHash (SHA-256).
const ManifestHashLen = 32

type (
	// Handshake is one launch attempt's identity record. It is built once and
	// not modified afterwards.
	Handshake struct {
		RunID                uint64      `json:"run_id,string"`
		InstanceID           string      `json:"instance_id"`
		InstanceManifestHash []byte      `json:"instance_manifest_hash"`
		LauncherProfileID    string      `json:"launcher_profile_id"`
		DeterminismProfileID string      `json:"determinism_profile_id"`
		PlatformBackends     []string    `json:"platform_backends"`
		RendererBackends     []string    `json:"renderer_backends"`
		UIBackend            string      `json:"ui_backend"`
		EngineBuildID        string      `json:"engine_build_id"`
		GameBuildID          string      `json:"game_build_id"`
		ResolvedPacks        []PackEntry `json:"resolved_packs"`
		SimCaps              []byte      `json:"sim_caps"`
		PerfCaps             []byte      `json:"perf_caps"`
		ProviderBindingsHash *uint64     `json:"provider_bindings_hash,omitempty,string"`
		FeatureEpoch         *uint32     `json:"feature_epoch,omitempty"`
		CoredataSimHash      *uint64     `json:"coredata_sim_hash,omitempty,string"`
		TimestampMonotonicUS uint64      `json:"timestamp_monotonic_us"`
		TimestampWallUS      uint64      `json:"timestamp_wall_us"`
	}

	// PackEntry is one resolved pack as declared in a handshake.
	PackEntry struct {
		PackID            string   `json:"pack_id"`
		Version           string   `json:"version"`
		HashBytes         []byte   `json:"hash"`
		Enabled           bool     `json:"enabled"`
		SimAffectingFlags []string `json:"sim_affecting_flags"`
		SafeModeFlags     []string `json:"safe_mode_flags"`
		OfflineMode       bool     `json:"offline_mode"`
	}
)

// Pack returns the first entry with id, if any.
func (h *Handshake) Pack(id string) (PackEntry, bool) {
	for _, p := range h.ResolvedPacks {
		if p.PackID == id {
			return p, true
		}
	}
	return PackEntry{}, false
}

// PackIndex returns the index of the first entry with id, or -1.
func (h *Handshake) PackIndex(id string) int {
	return slices.IndexFunc(h.ResolvedPacks, func(p PackEntry) bool { return p.PackID == id })
}

// Clone returns a deep copy of h.
func (h *Handshake) Clone() *Handshake {
	c := *h
	c.InstanceManifestHash = slices.Clone(h.InstanceManifestHash)
	c.PlatformBackends = slices.Clone(h.PlatformBackends)
	c.RendererBackends = slices.Clone(h.RendererBackends)
	c.SimCaps = slices.Clone(h.SimCaps)
	c.PerfCaps = slices.Clone(h.PerfCaps)
	c.ProviderBindingsHash = clonePtr(h.ProviderBindingsHash)
	c.FeatureEpoch = clonePtr(h.FeatureEpoch)
	c.CoredataSimHash = clonePtr(h.CoredataSimHash)
	if h.ResolvedPacks != nil {
		c.ResolvedPacks = make([]PackEntry, len(h.ResolvedPacks))
		for i, p := range h.ResolvedPacks {
			c.ResolvedPacks[i] = p.clone()
		}
	}
	return &c
}

func (p PackEntry) clone() PackEntry {
	p.HashBytes = slices.Clone(p.HashBytes)
	p.SimAffectingFlags = slices.Clone(p.SimAffectingFlags)
	p.SafeModeFlags = slices.Clone(p.SafeModeFlags)
	return p
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
