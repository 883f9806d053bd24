// SPDX-License-Identifier: MPL-2.0

package handshake

import (
	"bytes"
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/launchgate/launchgate/pkg/instance"
	"github.com/launchgate/launchgate/pkg/pack"
	"github.com/launchgate/launchgate/pkg/tlv"
)

func testManifest() *instance.Manifest {
	return &instance.Manifest{
		InstanceID:          "survival",
		PinnedEngineBuildID: "engine-7",
		PinnedGameBuildID:   "game-3",
		ContentEntries: []instance.ContentEntry{
			{Type: instance.ContentMod, ID: "core", Version: "1.0.0", HashBytes: []byte{1}, Enabled: true},
			{Type: instance.ContentPack, ID: "maps", Version: "2.0.0", HashBytes: []byte{2}, Enabled: true},
		},
	}
}

func testPacks() []pack.ResolvedPack {
	return []pack.ResolvedPack{
		{PackID: "maps", ContentType: pack.TypeContent, Version: "2.0.0", ArtifactHashBytes: []byte{2}, Phase: pack.PhaseEarly},
		{PackID: "core", ContentType: pack.TypeMod, Version: "1.0.0", ArtifactHashBytes: []byte{1}, Phase: pack.PhaseNormal,
			SimAffectingFlags: []string{"rng", "ai"}},
	}
}

func testHandshake() *Handshake {
	epoch := uint32(4)
	return Build(testPacks(), testManifest(), Caps{
		Sim:          SimCaps{TickRateHz: 60, RNGAlgorithm: "pcg32", FixedPoint: true, MaxEntities: 4096},
		Perf:         PerfCaps{WorkerThreads: 8, MemoryBudgetMB: 2048, Streaming: true},
		FeatureEpoch: &epoch,
	}, Identity{
		RunID:                42,
		LauncherProfileID:    "default",
		DeterminismProfileID: "strict",
		PlatformBackends:     []string{"x11", "wayland"},
		RendererBackends:     []string{"vulkan", "gl"},
		UIBackend:            "imgui",
		SafeModeFlags:        []string{"no-shaders", "audio-off"},
		TimestampMonotonicUS: 1000,
		TimestampWallUS:      1700000000000000,
	})
}

func TestBuild(t *testing.T) {
	t.Parallel()

	h := testHandshake()
	m := testManifest()
	want := m.Hash()
	if !bytes.Equal(h.InstanceManifestHash, want[:]) {
		t.Error("manifest hash not derived from manifest")
	}
	if h.EngineBuildID != "engine-7" || h.GameBuildID != "game-3" || h.InstanceID != "survival" {
		t.Errorf("identifiers not copied from manifest: %+v", h)
	}
	if !slices.Equal(h.PlatformBackends, []string{"wayland", "x11"}) || !slices.Equal(h.RendererBackends, []string{"gl", "vulkan"}) {
		t.Errorf("backends not sorted: %v %v", h.PlatformBackends, h.RendererBackends)
	}
	if h.ResolvedPacks[0].PackID != "maps" || h.ResolvedPacks[1].PackID != "core" {
		t.Errorf("pack order changed: %+v", h.ResolvedPacks)
	}
	core := h.ResolvedPacks[1]
	if !slices.Equal(core.SimAffectingFlags, []string{"ai", "rng"}) {
		t.Errorf("sim flags not sorted: %v", core.SimAffectingFlags)
	}
	if !slices.Equal(core.SafeModeFlags, []string{"audio-off", "no-shaders"}) || !core.Enabled {
		t.Errorf("unexpected entry %+v", core)
	}
}

func TestBuildDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	packs := testPacks()
	ids := Identity{PlatformBackends: []string{"b", "a"}}
	h := Build(packs, testManifest(), Caps{}, ids)
	if !slices.Equal(packs[1].SimAffectingFlags, []string{"rng", "ai"}) {
		t.Error("resolved pack flags were reordered in place")
	}
	if !slices.Equal(ids.PlatformBackends, []string{"b", "a"}) {
		t.Error("identity backends were reordered in place")
	}
	h.ResolvedPacks[0].HashBytes[0] = 0xff
	if packs[0].ArtifactHashBytes[0] != 2 {
		t.Error("handshake shares hash storage with resolved pack")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	h := testHandshake()
	data := Encode(h)
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !reflect.DeepEqual(got, h) {
		t.Errorf("decoded handshake differs:\n got %+v\nwant %+v", got, h)
	}
	if !bytes.Equal(Encode(got), data) {
		t.Error("encode(decode(bytes)) != bytes")
	}
}

func TestDecodeSkipsUnknownTrailingTag(t *testing.T) {
	t.Parallel()

	data := Encode(testHandshake())
	extra := tlv.Encode([]tlv.Field{tlv.NewField(900, tlv.Text("from the future"))})
	got, err := Decode(append(data, extra...))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.InstanceID != "survival" {
		t.Errorf("InstanceID = %q", got.InstanceID)
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	if _, err := Decode(nil); !errors.Is(err, tlv.ErrMissingSchemaVersion) {
		t.Errorf("expected ErrMissingSchemaVersion, got %v", err)
	}
	future := tlv.EncodeRecord(SchemaVersion+1, tlv.NewWriter())
	if _, err := Decode(future); !errors.Is(err, tlv.ErrUnsupportedSchemaVersion) {
		t.Errorf("expected ErrUnsupportedSchemaVersion, got %v", err)
	}
	wrongKind := tlv.EncodeRecord(SchemaVersion, tlv.NewWriter().Text(tagRunID, "42"))
	if _, err := Decode(wrongKind); !errors.Is(err, tlv.ErrKindMismatch) {
		t.Errorf("expected ErrKindMismatch, got %v", err)
	}
}

func TestOptionalZeroSurvivesRoundTrip(t *testing.T) {
	t.Parallel()

	zero := uint64(0)
	h := &Handshake{InstanceID: "i", ProviderBindingsHash: &zero}
	got, err := Decode(Encode(h))
	if err != nil {
		t.Fatal(err)
	}
	if got.ProviderBindingsHash == nil || got.FeatureEpoch != nil {
		t.Errorf("optional presence not preserved: %+v", got)
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	h := testHandshake()
	c := h.Clone()
	if !reflect.DeepEqual(h, c) {
		t.Fatal("clone differs")
	}
	c.ResolvedPacks[1].SimAffectingFlags[0] = "x"
	*c.FeatureEpoch = 99
	c.InstanceManifestHash[0] ^= 1
	if h.ResolvedPacks[1].SimAffectingFlags[0] != "ai" || *h.FeatureEpoch != 4 || reflect.DeepEqual(h, c) {
		t.Error("clone shares storage with original")
	}
}

func TestPackLookup(t *testing.T) {
	t.Parallel()

	h := testHandshake()
	if p, ok := h.Pack("core"); !ok || p.Version != "1.0.0" {
		t.Errorf("Pack(core) = %+v, %v", p, ok)
	}
	if h.PackIndex("absent") != -1 || h.PackIndex("maps") != 0 {
		t.Error("PackIndex mismatch")
	}
}

func TestCapsRoundTrip(t *testing.T) {
	t.Parallel()

	sim := SimCaps{TickRateHz: 30, RNGAlgorithm: "xoshiro", MaxEntities: 10}
	gotSim, err := DecodeSimCaps(sim.Encode())
	if err != nil || gotSim != sim {
		t.Errorf("DecodeSimCaps() = %+v, %v", gotSim, err)
	}
	perf := PerfCaps{WorkerThreads: 2, Streaming: true}
	gotPerf, err := DecodePerfCaps(perf.Encode())
	if err != nil || gotPerf != perf {
		t.Errorf("DecodePerfCaps() = %+v, %v", gotPerf, err)
	}
	if c, err := DecodeSimCaps(nil); err != nil || c != (SimCaps{}) {
		t.Errorf("empty blob = %+v, %v", c, err)
	}
}

func TestRefusalCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code RefusalCode
		num  uint32
		name string
	}{
		{RefusalOK, 0, "ok"},
		{RefusalMissingRequiredFields, 1, "missing_required_fields"},
		{RefusalManifestHashMismatch, 2, "manifest_hash_mismatch"},
		{RefusalMissingSimAffectingPackDeclarations, 3, "missing_sim_affecting_pack_declarations"},
		{RefusalPackHashMismatch, 4, "pack_hash_mismatch"},
		{RefusalPrelaunchValidationFailed, 5, "prelaunch_validation_failed"},
	}
	for _, tt := range tests {
		if uint32(tt.code) != tt.num || tt.code.String() != tt.name {
			t.Errorf("code %d: got %d %q", tt.num, uint32(tt.code), tt.code.String())
		}
		if c, err := ParseRefusalCode(tt.name); err != nil || c != tt.code {
			t.Errorf("ParseRefusalCode(%q) = %v, %v", tt.name, c, err)
		}
	}
	if len(RefusalCodes()) != len(tests) {
		t.Errorf("RefusalCodes() has %d codes", len(RefusalCodes()))
	}
	if c, err := ParseRefusalCode("4"); err != nil || c != RefusalPackHashMismatch {
		t.Errorf("ParseRefusalCode(4) = %v, %v", c, err)
	}
	if _, err := ParseRefusalCode("6"); err == nil {
		t.Error("expected error for undefined code")
	}
}

func TestRefusalError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := error(&RefusalError{Code: RefusalPackHashMismatch, PackID: "core", Reason: "hash differs", Err: cause})
	if !errors.Is(err, ErrRefused) || !errors.Is(err, cause) {
		t.Error("RefusalError should match ErrRefused and its cause")
	}
	want := `refused (4 pack_hash_mismatch) pack "core": hash differs`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
