// SPDX-License-Identifier: MPL-2.0

package instance

import (
	"bytes"
	"errors"
	"testing"

	"github.com/launchgate/launchgate/pkg/pack"
	"github.com/launchgate/launchgate/pkg/tlv"
)

func sampleManifest() *Manifest {
	order := int32(-1)
	return &Manifest{
		InstanceID:          "survival-01",
		PinnedEngineBuildID: "engine-2024.3",
		PinnedGameBuildID:   "game-77",
		ContentEntries: []ContentEntry{
			{Type: ContentEngine, ID: "engine", Version: "2024.3", Enabled: true},
			{Type: ContentMod, ID: "core.items", Version: "1.2.0", HashBytes: []byte{1, 2}, Enabled: true, ExplicitOrderOverride: &order},
			{Type: ContentPack, ID: "hd.textures", Version: "3", HashBytes: []byte{3}, Enabled: false},
		},
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
	if out.InstanceID != in.InstanceID || out.PinnedEngineBuildID != in.PinnedEngineBuildID || out.PinnedGameBuildID != in.PinnedGameBuildID {
		t.Errorf("scalar mismatch: %+v", out)
	}
	if len(out.ContentEntries) != 3 {
		t.Fatalf("entries = %d", len(out.ContentEntries))
	}
	mod := out.ContentEntries[1]
	if mod.Type != ContentMod || !mod.Enabled || mod.ExplicitOrderOverride == nil || *mod.ExplicitOrderOverride != -1 {
		t.Errorf("mod entry = %+v", mod)
	}
	if out.ContentEntries[0].ExplicitOrderOverride != nil {
		t.Error("absent override decoded as present")
	}
	if out.ContentEntries[2].Enabled {
		t.Error("disabled entry decoded as enabled")
	}
	if !bytes.Equal(Encode(out), data) {
		t.Error("re-encoding changed bytes")
	}
}

func TestOverrideZeroIsPreserved(t *testing.T) {
	t.Parallel()

	zero := int32(0)
	m := &Manifest{InstanceID: "i", ContentEntries: []ContentEntry{{Type: ContentMod, ID: "a", ExplicitOrderOverride: &zero}}}
	out, err := Decode(Encode(m))
	if err != nil {
		t.Fatal(err)
	}
	if out.ContentEntries[0].ExplicitOrderOverride == nil {
		t.Fatal("zero override must survive encoding")
	}
}

func TestHashIsStableAndSensitive(t *testing.T) {
	t.Parallel()

	a, b := sampleManifest(), sampleManifest()
	if a.Hash() != b.Hash() {
		t.Fatal("identical manifests hash differently")
	}
	b.ContentEntries[1].Version = "1.2.1"
	if a.Hash() == b.Hash() {
		t.Fatal("hash ignores entry version")
	}
	c := sampleManifest()
	c.ContentEntries[0], c.ContentEntries[1] = c.ContentEntries[1], c.ContentEntries[0]
	if a.Hash() == c.Hash() {
		t.Fatal("hash ignores entry order")
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	t.Parallel()

	noID := tlv.EncodeRecord(SchemaVersion, tlv.NewWriter().Text(tagEngineBuildID, "e"))
	if _, err := Decode(noID); !errors.Is(err, ErrInvalidManifest) {
		t.Errorf("expected ErrInvalidManifest, got %v", err)
	}

	badType := tlv.EncodeRecord(SchemaVersion, tlv.NewWriter().Text(tagInstanceID, "i").
		Record(tagContentEntry, tlv.NewWriter().U32(tagEntryType, 99).Text(tagEntryID, "x")))
	if _, err := Decode(badType); !errors.Is(err, ErrInvalidManifest) {
		t.Errorf("expected ErrInvalidManifest for unknown content type, got %v", err)
	}
}

func TestPackEntries(t *testing.T) {
	t.Parallel()

	got := sampleManifest().PackEntries()
	if len(got) != 1 || got[0].ID != "core.items" {
		t.Errorf("PackEntries() = %+v", got)
	}
}

func TestContentTypePackMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ct   ContentType
		want pack.Type
		ok   bool
	}{
		{ContentPack, pack.TypeContent, true},
		{ContentMod, pack.TypeMod, true},
		{ContentRuntime, pack.TypeRuntime, true},
		{ContentEngine, 0, false},
		{ContentGame, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.ct.PackType()
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s.PackType() = %v, %v", tt.ct, got, ok)
		}
	}
}

func TestParseContentType(t *testing.T) {
	t.Parallel()

	if ct, err := ParseContentType("runtime"); err != nil || ct != ContentRuntime {
		t.Errorf("ParseContentType(runtime) = %v, %v", ct, err)
	}
	if _, err := ParseContentType("plugin"); !errors.Is(err, ErrInvalidContentType) {
		t.Errorf("expected ErrInvalidContentType, got %v", err)
	}
}
