// SPDX-License-Identifier: MPL-2.0

package instance

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/launchgate/launchgate/pkg/pack"
)

const (
	// ContentEngine is the engine binary entry.
	ContentEngine ContentType = 1
	// ContentGame is the game data entry.
	ContentGame ContentType = 2
	// ContentPack is a content pack.
	ContentPack ContentType = 3
	// ContentMod is a mod pack.
	ContentMod ContentType = 4
	// ContentRuntime is a runtime pack.
	ContentRuntime ContentType = 5
)

var (
	// ErrInvalidContentType is returned for a ContentType outside the closed set.
	ErrInvalidContentType = errors.New("invalid content type")
	// ErrInvalidManifest is the sentinel wrapped by InvalidManifestError.
	ErrInvalidManifest = errors.New("invalid instance manifest")
)

type (
	// ContentType is the closed set of instance content kinds.
	ContentType uint32

	// ContentEntry is one item of an instance's content list. The resolver
	// reads entries but never mutates them.
	ContentEntry struct {
		Type                  ContentType
		ID                    string
		Version               string
		HashBytes             []byte
		Enabled               bool
		ExplicitOrderOverride *int32
	}

	// Manifest is an instance manifest as held by the launcher.
	Manifest struct {
		InstanceID          string
		PinnedEngineBuildID string
		PinnedGameBuildID   string
		ContentEntries      []ContentEntry
	}

	// InvalidManifestError reports a structurally invalid instance manifest.
	InvalidManifestError struct {
		InstanceID string
		Reason     string
	}
)

// Error implements the error interface.
func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid instance manifest %q: %s", e.InstanceID, e.Reason)
}

// Unwrap returns ErrInvalidManifest for errors.Is.
func (e *InvalidManifestError) Unwrap() error { return ErrInvalidManifest }

// String returns the lowercase name used in instance sources.
func (c ContentType) String() string {
	switch c {
	case ContentEngine:
		return "engine"
	case ContentGame:
		return "game"
	case ContentPack:
		return "pack"
	case ContentMod:
		return "mod"
	case ContentRuntime:
		return "runtime"
	default:
		return fmt.Sprintf("content(%d)", uint32(c))
	}
}

// ParseContentType maps a source name to a ContentType.
func ParseContentType(s string) (ContentType, error) {
	for _, c := range []ContentType{ContentEngine, ContentGame, ContentPack, ContentMod, ContentRuntime} {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidContentType, s)
}

// IsPackLike reports whether entries of this type are resolved as packs.
func (c ContentType) IsPackLike() bool {
	_, ok := c.PackType()
	return ok
}

// PackType maps a pack-like content type to its pack.Type.
func (c ContentType) PackType() (pack.Type, bool) {
	switch c {
	case ContentPack:
		return pack.TypeContent, true
	case ContentMod:
		return pack.TypeMod, true
	case ContentRuntime:
		return pack.TypeRuntime, true
	default:
		return 0, false
	}
}

// Validate checks the manifest's structural invariants.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.InstanceID) == "" {
		return &InvalidManifestError{Reason: "instance_id is empty"}
	}
	for i, e := range m.ContentEntries {
		if e.ID == "" {
			return &InvalidManifestError{InstanceID: m.InstanceID, Reason: fmt.Sprintf("content[%d]: id is empty", i)}
		}
		if e.Type < ContentEngine || e.Type > ContentRuntime {
			return &InvalidManifestError{InstanceID: m.InstanceID, Reason: fmt.Sprintf("content[%d]: %v", i, ErrInvalidContentType)}
		}
	}
	return nil
}

// Hash returns the SHA-256 of the canonical encoding.
func (m *Manifest) Hash() [32]byte {
	return sha256.Sum256(Encode(m))
}

// PackEntries returns the enabled pack-like entries in manifest order.
func (m *Manifest) PackEntries() []ContentEntry {
	var out []ContentEntry
	for _, e := range m.ContentEntries {
		if e.Enabled && e.Type.IsPackLike() {
			out = append(out, e)
		}
	}
	return out
}
