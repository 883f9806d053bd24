// SPDX-License-Identifier: MPL-2.0

package packtest

import (
	"github.com/launchgate/launchgate/internal/artifact"
	"github.com/launchgate/launchgate/pkg/instance"
	"github.com/launchgate/launchgate/pkg/pack"
	"github.com/launchgate/launchgate/pkg/version"
)

type (
	// PackOption configures a test pack manifest.
	PackOption func(*pack.Manifest)

	// EntryOption configures the content entry Instance.Add appends.
	EntryOption func(*instance.ContentEntry)

	// Instance is an instance manifest backed by an in-memory artifact store.
	Instance struct {
		Store    *artifact.MemStore
		Manifest *instance.Manifest
	}
)

// NewTestPack creates a mod pack at version 1.0.0 in the normal phase.
func NewTestPack(id string, opts ...PackOption) *pack.Manifest {
	m := &pack.Manifest{
		PackID:  id,
		Type:    pack.TypeMod,
		Version: "1.0.0",
		Phase:   pack.PhaseNormal,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// --- Pack Options ---

// WithVersion sets the pack version.
func WithVersion(v string) PackOption {
	return func(m *pack.Manifest) { m.Version = v }
}

// WithType sets the pack type.
func WithType(t pack.Type) PackOption {
	return func(m *pack.Manifest) { m.Type = t }
}

// WithPhase sets the load phase.
func WithPhase(p pack.Phase) PackOption {
	return func(m *pack.Manifest) { m.Phase = p }
}

// WithOrder sets the manifest's explicit order.
func WithOrder(n int32) PackOption {
	return func(m *pack.Manifest) { m.ExplicitOrder = n }
}

// WithSimFlags sets the sim-affecting flags.
func WithSimFlags(flags ...string) PackOption {
	return func(m *pack.Manifest) { m.SimAffectingFlags = pack.NormalizeFlags(flags) }
}

// Requires adds a required dependency.
func Requires(id string, r version.Range) PackOption {
	return func(m *pack.Manifest) { m.Required = append(m.Required, pack.Dependency{PackID: id, Range: r}) }
}

// Optional adds an optional dependency.
func Optional(id string, r version.Range) PackOption {
	return func(m *pack.Manifest) { m.Optional = append(m.Optional, pack.Dependency{PackID: id, Range: r}) }
}

// Conflicts adds a conflict declaration.
func Conflicts(id string, r version.Range) PackOption {
	return func(m *pack.Manifest) { m.Conflicts = append(m.Conflicts, pack.Dependency{PackID: id, Range: r}) }
}

// Any is the unbounded range.
func Any() version.Range {
	return version.Range{}
}

// Between returns an inclusive range; an empty bound is open.
func Between(minV, maxV string) version.Range {
	var r version.Range
	if minV != "" {
		r.Min = &minV
	}
	if maxV != "" {
		r.Max = &maxV
	}
	return r
}

// --- Instances ---

// NewInstance returns an instance with pinned builds and an engine entry.
func NewInstance(id string) *Instance {
	return &Instance{
		Store: artifact.NewMemStore(),
		Manifest: &instance.Manifest{
			InstanceID:          id,
			PinnedEngineBuildID: "engine-1",
			PinnedGameBuildID:   "game-1",
			ContentEntries: []instance.ContentEntry{
				{Type: instance.ContentEngine, ID: "engine", Version: "1", Enabled: true},
			},
		},
	}
}

// Add publishes m to the store and appends a matching enabled entry. It
// returns the content hash.
func (i *Instance) Add(m *pack.Manifest, opts ...EntryOption) []byte {
	hash := pack.SealContentHash(m)
	i.Store.Put(hash, pack.Encode(m))

	ct := instance.ContentMod
	switch m.Type {
	case pack.TypeContent:
		ct = instance.ContentPack
	case pack.TypeRuntime:
		ct = instance.ContentRuntime
	}
	e := instance.ContentEntry{
		Type:      ct,
		ID:        m.PackID,
		Version:   m.Version,
		HashBytes: hash,
		Enabled:   true,
	}
	for _, opt := range opts {
		opt(&e)
	}
	i.Manifest.ContentEntries = append(i.Manifest.ContentEntries, e)
	return hash
}

// Entry returns a pointer to the content entry with id, or nil.
func (i *Instance) Entry(id string) *instance.ContentEntry {
	for k := range i.Manifest.ContentEntries {
		if i.Manifest.ContentEntries[k].ID == id {
			return &i.Manifest.ContentEntries[k]
		}
	}
	return nil
}

// --- Entry Options ---

// Disabled adds the entry with enabled=false.
func Disabled() EntryOption {
	return func(e *instance.ContentEntry) { e.Enabled = false }
}

// WithOrderOverride sets the entry's explicit order override.
func WithOrderOverride(n int32) EntryOption {
	return func(e *instance.ContentEntry) { e.ExplicitOrderOverride = &n }
}
