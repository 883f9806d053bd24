// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/launchgate/launchgate/pkg/tlv"
	"github.com/launchgate/launchgate/pkg/version"
)

func strPtr(s string) *string { return &s }

func sampleManifest() *Manifest {
	return &Manifest{
		PackID:        "core.items",
		Type:          TypeMod,
		Version:       "1.2.0",
		Phase:         PhaseLate,
		ExplicitOrder: -3,
		Required:      []Dependency{{PackID: "base", Range: version.Range{Min: strPtr("1.0.0")}}},
		Optional:      []Dependency{{PackID: "extras", Range: version.Range{Max: strPtr("2")}}},
		Conflicts:     []Dependency{{PackID: "legacy.items"}},
		SimAffectingFlags: []string{
			"physics", "loot_tables",
		},
		ContentHash: []byte{0xde, 0xad, 0xbe, 0xef},
	}
}

func TestEncodeDecodeManifest(t *testing.T) {
	t.Parallel()

	in := sampleManifest()
	data := Encode(in)
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if out.PackID != in.PackID || out.Type != in.Type || out.Version != in.Version ||
		out.Phase != in.Phase || out.ExplicitOrder != in.ExplicitOrder {
		t.Errorf("scalar mismatch: %+v", out)
	}
	if !slices.Equal(out.SimAffectingFlags, []string{"loot_tables", "physics"}) {
		t.Errorf("flags = %v, want sorted set", out.SimAffectingFlags)
	}
	if len(out.Required) != 1 || *out.Required[0].Range.Min != "1.0.0" || out.Required[0].Range.Max != nil {
		t.Errorf("required = %+v", out.Required)
	}
	if len(out.Optional) != 1 || out.Optional[0].Range.Min != nil || *out.Optional[0].Range.Max != "2" {
		t.Errorf("optional = %+v", out.Optional)
	}
	if len(out.Conflicts) != 1 || !out.Conflicts[0].Range.Unbounded() {
		t.Errorf("conflicts = %+v", out.Conflicts)
	}
	if !bytes.Equal(out.ContentHash, in.ContentHash) {
		t.Errorf("content hash = %x", out.ContentHash)
	}

	if !bytes.Equal(Encode(out), data) {
		t.Error("re-encoding a decoded manifest changed its bytes")
	}
}

func TestDecodeSkipsUnknownTags(t *testing.T) {
	t.Parallel()

	data := Encode(sampleManifest())
	data = append(data, tlv.Encode([]tlv.Field{tlv.NewField(500, tlv.Text("future"))})...)
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if out.PackID != "core.items" {
		t.Errorf("PackID = %q", out.PackID)
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{
			name: "missing schema version",
			data: tlv.NewWriter().Text(tagPackID, "x").Encode(),
			want: tlv.ErrMissingSchemaVersion,
		},
		{
			name: "unsupported schema version",
			data: tlv.EncodeRecord(99, tlv.NewWriter().Text(tagPackID, "x")),
			want: tlv.ErrUnsupportedSchemaVersion,
		},
		{
			name: "wrong kind for known tag",
			data: tlv.EncodeRecord(SchemaVersion, tlv.NewWriter().U32(tagPackID, 1)),
			want: tlv.ErrKindMismatch,
		},
		{
			name: "missing pack id",
			data: tlv.EncodeRecord(SchemaVersion, tlv.NewWriter().Text(tagVersion, "1").U32(tagType, uint32(TypeMod))),
			want: ErrInvalidManifest,
		},
		{
			name: "unknown type",
			data: tlv.EncodeRecord(SchemaVersion, tlv.NewWriter().Text(tagPackID, "x").Text(tagVersion, "1").U32(tagType, 9)),
			want: ErrInvalidManifest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Decode(tt.data); !errors.Is(err, tt.want) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestManifestValidateAllowsSelfReference(t *testing.T) {
	t.Parallel()

	m := sampleManifest()
	m.Required = append(m.Required, Dependency{PackID: m.PackID})
	m.Conflicts = append(m.Conflicts, Dependency{PackID: m.PackID})
	if err := m.Validate(); err != nil {
		t.Fatalf("self references are left to the resolver, got %v", err)
	}
}

func TestPhaseRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase Phase
		want  int
	}{
		{PhaseEarly, 0},
		{PhaseNormal, 1},
		{PhaseLate, 2},
		{Phase(0), 3},
		{Phase(17), 3},
	}
	for _, tt := range tests {
		if got := tt.phase.Rank(); got != tt.want {
			t.Errorf("%s.Rank() = %d, want %d", tt.phase, got, tt.want)
		}
	}
}

func TestResolveUsesOverride(t *testing.T) {
	t.Parallel()

	m := sampleManifest()
	hash := []byte{1, 2, 3}
	override := int32(42)

	rp := m.Resolve(hash, &override)
	if rp.EffectiveOrder != 42 {
		t.Errorf("EffectiveOrder = %d, want 42", rp.EffectiveOrder)
	}
	if rp = m.Resolve(hash, nil); rp.EffectiveOrder != m.ExplicitOrder {
		t.Errorf("EffectiveOrder = %d, want %d", rp.EffectiveOrder, m.ExplicitOrder)
	}

	hash[0] = 9
	if rp.ArtifactHashBytes[0] != 1 {
		t.Error("ResolvedPack must not alias the caller's hash slice")
	}
}

func TestNormalizeFlags(t *testing.T) {
	t.Parallel()

	got := NormalizeFlags([]string{"b", "a", "b"})
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("NormalizeFlags() = %v", got)
	}
	if NormalizeFlags(nil) != nil {
		t.Error("NormalizeFlags(nil) should be nil")
	}
}
