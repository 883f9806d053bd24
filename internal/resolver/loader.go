// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"bytes"
	"fmt"

	"github.com/launchgate/launchgate/internal/artifact"
	"github.com/launchgate/launchgate/pkg/instance"
	"github.com/launchgate/launchgate/pkg/pack"
)

// LoadManifest fetches the manifest for entry from store and binds it to the
// entry's identity. Any disagreement between the two is fatal.
func LoadManifest(store artifact.Store, stateRoot string, entry instance.ContentEntry) (*pack.Manifest, error) {
	wantType, ok := entry.Type.PackType()
	if !ok {
		return nil, &InvalidContentEntryError{PackID: entry.ID, Reason: fmt.Sprintf("type %s is not a pack", entry.Type)}
	}
	switch {
	case entry.ID == "":
		return nil, &InvalidContentEntryError{Reason: "id is empty"}
	case entry.Version == "":
		return nil, &InvalidContentEntryError{PackID: entry.ID, Reason: "version is empty"}
	case len(entry.HashBytes) == 0:
		return nil, &InvalidContentEntryError{PackID: entry.ID, Reason: "hash is empty"}
	}

	path, err := store.ResolvePath(stateRoot, entry.HashBytes)
	if err != nil {
		return nil, &ArtifactError{PackID: entry.ID, Hash: entry.HashBytes, Err: err}
	}
	data, err := store.Read(path)
	if err != nil {
		return nil, &ArtifactError{PackID: entry.ID, Hash: entry.HashBytes, Err: err}
	}

	m, err := pack.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("pack %q: %w", entry.ID, err)
	}

	if m.PackID != entry.ID {
		return nil, &ManifestMismatchError{PackID: entry.ID, Field: "pack_id", Expected: entry.ID, Found: m.PackID}
	}
	if m.Version != entry.Version {
		return nil, &ManifestMismatchError{PackID: entry.ID, Field: "version", Expected: entry.Version, Found: m.Version}
	}
	if m.Type != wantType {
		return nil, &ManifestMismatchError{PackID: entry.ID, Field: "pack_type", Expected: wantType.String(), Found: m.Type.String()}
	}
	if len(m.ContentHash) > 0 && !bytes.Equal(m.ContentHash, entry.HashBytes) {
		return nil, &ManifestMismatchError{
			PackID:   entry.ID,
			Field:    "content_hash",
			Expected: fmt.Sprintf("%x", entry.HashBytes),
			Found:    fmt.Sprintf("%x", m.ContentHash),
		}
	}
	return m, nil
}
