// SPDX-License-Identifier: MPL-2.0

package instance

import (
	"fmt"

	"github.com/launchgate/launchgate/pkg/tlv"
)

// SchemaVersion is the instance manifest record version written by Encode.
const SchemaVersion uint32 = 1

const (
	tagInstanceID     uint16 = 2
	tagEngineBuildID  uint16 = 3
	tagGameBuildID    uint16 = 4
	tagContentEntry   uint16 = 5
	tagEntryType      uint16 = 1
	tagEntryID        uint16 = 2
	tagEntryVersion   uint16 = 3
	tagEntryHash      uint16 = 4
	tagEntryEnabled   uint16 = 5
	tagEntryOrderOver uint16 = 6
)

// Encode returns the canonical encoding of m. Content entries keep manifest order.
func Encode(m *Manifest) []byte {
	w := tlv.NewWriter().
		Text(tagInstanceID, m.InstanceID).
		Text(tagEngineBuildID, m.PinnedEngineBuildID).
		Text(tagGameBuildID, m.PinnedGameBuildID)
	for _, e := range m.ContentEntries {
		w.Record(tagContentEntry, tlv.NewWriter().
			U32(tagEntryType, uint32(e.Type)).
			Text(tagEntryID, e.ID).
			Text(tagEntryVersion, e.Version).
			Bytes(tagEntryHash, e.HashBytes).
			Bool(tagEntryEnabled, e.Enabled).
			OptionalInt32(tagEntryOrderOver, e.ExplicitOrderOverride))
	}
	return tlv.EncodeRecord(SchemaVersion, w)
}

// Decode parses and validates an instance manifest.
func Decode(data []byte) (*Manifest, error) {
	ver, fields, err := tlv.DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("decode instance manifest: %w", err)
	}
	if ver != SchemaVersion {
		return nil, fmt.Errorf("decode instance manifest: %w: %d", tlv.ErrUnsupportedSchemaVersion, ver)
	}

	m := &Manifest{}
	for _, f := range fields {
		switch f.Tag {
		case tagInstanceID:
			m.InstanceID, err = f.Text()
		case tagEngineBuildID:
			m.PinnedEngineBuildID, err = f.Text()
		case tagGameBuildID:
			m.PinnedGameBuildID, err = f.Text()
		case tagContentEntry:
			var e ContentEntry
			e, err = decodeEntry(f)
			m.ContentEntries = append(m.ContentEntries, e)
		}
		if err != nil {
			return nil, fmt.Errorf("decode instance manifest: %w", err)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeEntry(f tlv.Field) (ContentEntry, error) {
	raw, err := f.Bytes()
	if err != nil {
		return ContentEntry{}, err
	}
	fields, err := tlv.Decode(raw)
	if err != nil {
		return ContentEntry{}, fmt.Errorf("content entry: %w", err)
	}

	var e ContentEntry
	for _, ef := range fields {
		switch ef.Tag {
		case tagEntryType:
			var v uint32
			v, err = ef.U32()
			e.Type = ContentType(v)
		case tagEntryID:
			e.ID, err = ef.Text()
		case tagEntryVersion:
			e.Version, err = ef.Text()
		case tagEntryHash:
			e.HashBytes, err = ef.Bytes()
		case tagEntryEnabled:
			e.Enabled, err = ef.Bool()
		case tagEntryOrderOver:
			var v int32
			v, err = ef.Int32()
			e.ExplicitOrderOverride = &v
		}
		if err != nil {
			return ContentEntry{}, fmt.Errorf("content entry: %w", err)
		}
	}
	return e, nil
}
