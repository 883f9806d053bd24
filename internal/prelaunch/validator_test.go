// SPDX-License-Identifier: MPL-2.0

package prelaunch

import (
	"errors"
	"testing"

	"github.com/launchgate/launchgate/internal/resolver"
	"github.com/launchgate/launchgate/internal/testutil/packtest"
	"github.com/launchgate/launchgate/pkg/handshake"
	"github.com/launchgate/launchgate/pkg/pack"
)

func newFixture(t *testing.T) (*packtest.Instance, *resolver.Resolver) {
	t.Helper()
	inst := packtest.NewInstance("coop")
	inst.Add(packtest.NewTestPack("core", packtest.WithSimFlags("physics", "ai")))
	inst.Add(packtest.NewTestPack("maps", packtest.WithType(pack.TypeContent), packtest.Requires("core", packtest.Any())))
	inst.Add(packtest.NewTestPack("ui", packtest.WithPhase(pack.PhaseLate)))
	return inst, resolver.New(inst.Store, "", nil)
}

func testIdentity() handshake.Identity {
	return handshake.Identity{
		RunID:                7,
		LauncherProfileID:    "default",
		DeterminismProfileID: "lockstep",
		PlatformBackends:     []string{"sdl"},
		RendererBackends:     []string{"vulkan"},
		UIBackend:            "imgui",
	}
}

func buildHandshake(t *testing.T, inst *packtest.Instance, r *resolver.Resolver) *handshake.Handshake {
	t.Helper()
	packs, err := r.Resolve(inst.Manifest)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	return handshake.Build(packs, inst.Manifest, handshake.Caps{Sim: handshake.SimCaps{TickRateHz: 60}}, testIdentity())
}

func mustPack(t *testing.T, h *handshake.Handshake, id string) *handshake.PackEntry {
	t.Helper()
	i := h.PackIndex(id)
	if i < 0 {
		t.Fatalf("handshake has no pack %q", id)
	}
	return &h.ResolvedPacks[i]
}

func TestValidate_Accepts(t *testing.T) {
	t.Parallel()

	inst, r := newFixture(t)
	h := buildHandshake(t, inst, r)
	res := NewValidator(r, nil).Validate(h, inst.Manifest)
	if !res.OK() {
		t.Fatalf("Validate() = %+v, want OK", res)
	}
	if res.AsError() != nil {
		t.Error("AsError() should be nil when OK")
	}
}

func TestValidate_Refusals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(t *testing.T, h *handshake.Handshake)
		wantCode handshake.RefusalCode
		wantPack string
	}{
		{
			name:     "run id missing",
			mutate:   func(_ *testing.T, h *handshake.Handshake) { h.RunID = 0 },
			wantCode: handshake.RefusalMissingRequiredFields,
		},
		{
			name:     "short manifest hash",
			mutate:   func(_ *testing.T, h *handshake.Handshake) { h.InstanceManifestHash = h.InstanceManifestHash[:16] },
			wantCode: handshake.RefusalMissingRequiredFields,
		},
		{
			name:     "game build missing",
			mutate:   func(_ *testing.T, h *handshake.Handshake) { h.GameBuildID = "" },
			wantCode: handshake.RefusalMissingRequiredFields,
		},
		{
			name:     "manifest hash flipped",
			mutate:   func(_ *testing.T, h *handshake.Handshake) { h.InstanceManifestHash[5] ^= 0x01 },
			wantCode: handshake.RefusalManifestHashMismatch,
		},
		{
			name:     "sim flags omitted",
			mutate:   func(t *testing.T, h *handshake.Handshake) { mustPack(t, h, "core").SimAffectingFlags = nil },
			wantCode: handshake.RefusalMissingSimAffectingPackDeclarations,
			wantPack: "core",
		},
		{
			name:     "sim flag subset",
			mutate:   func(t *testing.T, h *handshake.Handshake) { mustPack(t, h, "core").SimAffectingFlags = []string{"ai"} },
			wantCode: handshake.RefusalMissingSimAffectingPackDeclarations,
			wantPack: "core",
		},
		{
			name: "sim pack dropped",
			mutate: func(t *testing.T, h *handshake.Handshake) {
				i := h.PackIndex("core")
				h.ResolvedPacks = append(h.ResolvedPacks[:i], h.ResolvedPacks[i+1:]...)
			},
			wantCode: handshake.RefusalMissingSimAffectingPackDeclarations,
			wantPack: "core",
		},
		{
			name:     "pack hash tampered",
			mutate:   func(t *testing.T, h *handshake.Handshake) { mustPack(t, h, "core").HashBytes[0] ^= 0x01 },
			wantCode: handshake.RefusalPackHashMismatch,
			wantPack: "core",
		},
		{
			name: "missing field wins over hash mismatch",
			mutate: func(_ *testing.T, h *handshake.Handshake) {
				h.LauncherProfileID = ""
				h.InstanceManifestHash[0] ^= 0x01
			},
			wantCode: handshake.RefusalMissingRequiredFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inst, r := newFixture(t)
			h := buildHandshake(t, inst, r)
			tt.mutate(t, h)

			res := NewValidator(r, nil).Validate(h, inst.Manifest)
			if res.Code != tt.wantCode || res.PackID != tt.wantPack {
				t.Fatalf("Validate() = %+v, want code %s pack %q", res, tt.wantCode, tt.wantPack)
			}
			var refusal *handshake.RefusalError
			if !errors.As(res.AsError(), &refusal) || refusal.Code != tt.wantCode {
				t.Errorf("AsError() = %v", res.AsError())
			}
		})
	}
}

func TestValidate_Tolerated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(t *testing.T, h *handshake.Handshake)
	}{
		{"flag order", func(t *testing.T, h *handshake.Handshake) {
			mustPack(t, h, "core").SimAffectingFlags = []string{"physics", "ai"}
		}},
		{"disabled entry hash", func(t *testing.T, h *handshake.Handshake) {
			p := mustPack(t, h, "core")
			p.Enabled = false
			p.HashBytes = nil
		}},
		{"cosmetic pack tampered", func(t *testing.T, h *handshake.Handshake) {
			mustPack(t, h, "ui").HashBytes[0] ^= 0x01
		}},
		{"cosmetic pack dropped", func(t *testing.T, h *handshake.Handshake) {
			i := h.PackIndex("maps")
			h.ResolvedPacks = append(h.ResolvedPacks[:i], h.ResolvedPacks[i+1:]...)
		}},
		{"pack order", func(_ *testing.T, h *handshake.Handshake) {
			h.ResolvedPacks[0], h.ResolvedPacks[2] = h.ResolvedPacks[2], h.ResolvedPacks[0]
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inst, r := newFixture(t)
			h := buildHandshake(t, inst, r)
			tt.mutate(t, h)
			if res := NewValidator(r, nil).Validate(h, inst.Manifest); !res.OK() {
				t.Errorf("Validate() = %+v, want OK", res)
			}
		})
	}
}

func TestValidate_ResolverFailure(t *testing.T) {
	t.Parallel()

	inst, r := newFixture(t)
	inst.Add(packtest.NewTestPack("needs-missing", packtest.Requires("missing", packtest.Any())))
	h := handshake.Build(nil, inst.Manifest, handshake.Caps{}, testIdentity())

	res := NewValidator(r, nil).Validate(h, inst.Manifest)
	if res.Code != handshake.RefusalMissingSimAffectingPackDeclarations {
		t.Fatalf("Validate() = %+v", res)
	}
	if !errors.Is(res.AsError(), resolver.ErrMissingRequiredPack) {
		t.Errorf("refusal should wrap the resolver error, got %v", res.AsError())
	}
}

func TestValidate_NilInputs(t *testing.T) {
	t.Parallel()

	inst, r := newFixture(t)
	v := NewValidator(r, nil)
	if res := v.Validate(nil, inst.Manifest); res.Code != handshake.RefusalMissingRequiredFields {
		t.Errorf("nil handshake: Code = %v", res.Code)
	}
	if res := v.Validate(buildHandshake(t, inst, r), nil); res.Code != handshake.RefusalManifestHashMismatch {
		t.Errorf("nil manifest: Code = %v", res.Code)
	}
}
