// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"fmt"

	"github.com/launchgate/launchgate/pkg/tlv"
)

// SchemaVersion is the pack manifest record version written by Encode.
const SchemaVersion uint32 = 1

const (
	tagPackID        uint16 = 2
	tagType          uint16 = 3
	tagVersion       uint16 = 4
	tagPhase         uint16 = 5
	tagExplicitOrder uint16 = 6
	tagRequired      uint16 = 7
	tagOptional      uint16 = 8
	tagConflict      uint16 = 9
	tagSimFlag       uint16 = 10
	tagContentHash   uint16 = 11

	tagDepPackID uint16 = 1
	tagDepMin    uint16 = 2
	tagDepMax    uint16 = 3
)

// Encode returns the canonical encoding of m.
func Encode(m *Manifest) []byte {
	w := tlv.NewWriter().
		Text(tagPackID, m.PackID).
		U32(tagType, uint32(m.Type)).
		Text(tagVersion, m.Version).
		U32(tagPhase, uint32(m.Phase)).
		Int32(tagExplicitOrder, m.ExplicitOrder).
		Texts(tagSimFlag, NormalizeFlags(m.SimAffectingFlags)).
		Bytes(tagContentHash, m.ContentHash)
	writeDeps(w, tagRequired, m.Required)
	writeDeps(w, tagOptional, m.Optional)
	writeDeps(w, tagConflict, m.Conflicts)
	return tlv.EncodeRecord(SchemaVersion, w)
}

func writeDeps(w *tlv.Writer, tag uint16, deps []Dependency) {
	for _, d := range deps {
		w.Record(tag, tlv.NewWriter().
			Text(tagDepPackID, d.PackID).
			OptionalText(tagDepMin, d.Range.Min).
			OptionalText(tagDepMax, d.Range.Max))
	}
}

// Decode parses and structurally validates a manifest.
func Decode(data []byte) (*Manifest, error) {
	ver, fields, err := tlv.DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("decode pack manifest: %w", err)
	}
	if ver != SchemaVersion {
		return nil, fmt.Errorf("decode pack manifest: %w: %d", tlv.ErrUnsupportedSchemaVersion, ver)
	}

	m := &Manifest{}
	var flags []string
	for _, f := range fields {
		switch f.Tag {
		case tagPackID:
			m.PackID, err = f.Text()
		case tagType:
			var v uint32
			v, err = f.U32()
			m.Type = Type(v)
		case tagVersion:
			m.Version, err = f.Text()
		case tagPhase:
			var v uint32
			v, err = f.U32()
			m.Phase = Phase(v)
		case tagExplicitOrder:
			m.ExplicitOrder, err = f.Int32()
		case tagRequired, tagOptional, tagConflict:
			var d Dependency
			d, err = decodeDependency(f)
			switch f.Tag {
			case tagRequired:
				m.Required = append(m.Required, d)
			case tagOptional:
				m.Optional = append(m.Optional, d)
			default:
				m.Conflicts = append(m.Conflicts, d)
			}
		case tagSimFlag:
			var s string
			s, err = f.Text()
			flags = append(flags, s)
		case tagContentHash:
			m.ContentHash, err = f.Bytes()
		}
		if err != nil {
			return nil, fmt.Errorf("decode pack manifest: %w", err)
		}
	}
	m.SimAffectingFlags = NormalizeFlags(flags)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeDependency(f tlv.Field) (Dependency, error) {
	raw, err := f.Bytes()
	if err != nil {
		return Dependency{}, err
	}
	fields, err := tlv.Decode(raw)
	if err != nil {
		return Dependency{}, fmt.Errorf("dependency: %w", err)
	}

	var d Dependency
	for _, df := range fields {
		switch df.Tag {
		case tagDepPackID:
			d.PackID, err = df.Text()
		case tagDepMin:
			var s string
			s, err = df.Text()
			d.Range.Min = &s
		case tagDepMax:
			var s string
			s, err = df.Text()
			d.Range.Max = &s
		}
		if err != nil {
			return Dependency{}, fmt.Errorf("dependency: %w", err)
		}
	}
	return d, nil
}
