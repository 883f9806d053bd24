// SPDX-License-Identifier: MPL-2.0

package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// HeaderLen is the size of a field header: tag (2) + kind (1) + length (4).
	HeaderLen = 7

	// SchemaVersionTag is the tag of the mandatory leading schema-version field.
	SchemaVersionTag uint16 = 1

	// KindU32 is a fixed-width little-endian uint32.
	KindU32 Kind = 1
	// KindU64 is a fixed-width little-endian uint64.
	KindU64 Kind = 2
	// KindBytes is an opaque byte string.
	KindBytes Kind = 3
	// KindText is a UTF-8 string.
	KindText Kind = 4
)

var (
	// ErrTruncated is returned when a field header or value runs past the input.
	ErrTruncated = errors.New("tlv: truncated field")
	// ErrKindMismatch is returned when a known tag carries an unexpected kind.
	ErrKindMismatch = errors.New("tlv: field kind mismatch")
	// ErrInvalidLength is returned when a fixed-width value has the wrong size.
	ErrInvalidLength = errors.New("tlv: invalid value length")
	// ErrUnknownKind is returned when a value of an unrecognized kind is inspected.
	ErrUnknownKind = errors.New("tlv: unknown value kind")
	// ErrInvalidText is returned when a text value is not valid UTF-8.
	ErrInvalidText = errors.New("tlv: text is not valid UTF-8")
	// ErrMissingSchemaVersion is returned when a record does not start with the schema-version field.
	ErrMissingSchemaVersion = errors.New("tlv: missing leading schema version")
	// ErrUnsupportedSchemaVersion is returned by record decoders for versions they cannot read.
	ErrUnsupportedSchemaVersion = errors.New("tlv: unsupported schema version")
)

type (
	// Kind identifies the variant of a Value on the wire.
	Kind uint8

	// Value is the closed set of encodable values: U32, U64, Bytes and Text.
	Value interface {
		Kind() Kind
		appendTo(dst []byte) []byte
	}

	// U32 is a 32-bit unsigned value.
	U32 uint32
	// U64 is a 64-bit unsigned value.
	U64 uint64
	// Bytes is an opaque byte string.
	Bytes []byte
	// Text is a UTF-8 string.
	Text string

	// Field is one encoded field. Raw holds the undecoded value bytes so that
	// fields with unknown tags or kinds can be skipped without interpretation.
	Field struct {
		Tag  uint16
		Kind Kind
		Raw  []byte
	}
)

// Kind implements Value.
func (U32) Kind() Kind { return KindU32 }

// Kind implements Value.
func (U64) Kind() Kind { return KindU64 }

// Kind implements Value.
func (Bytes) Kind() Kind { return KindBytes }

// Kind implements Value.
func (Text) Kind() Kind { return KindText }

func (v U32) appendTo(dst []byte) []byte   { return binary.LittleEndian.AppendUint32(dst, uint32(v)) }
func (v U64) appendTo(dst []byte) []byte   { return binary.LittleEndian.AppendUint64(dst, uint64(v)) }
func (v Bytes) appendTo(dst []byte) []byte { return append(dst, v...) }
func (v Text) appendTo(dst []byte) []byte  { return append(dst, v...) }

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// NewField encodes v under tag.
func NewField(tag uint16, v Value) Field {
	return Field{Tag: tag, Kind: v.Kind(), Raw: v.appendTo(nil)}
}

// Value decodes the field into its variant.
func (f Field) Value() (Value, error) {
	switch f.Kind {
	case KindU32:
		if len(f.Raw) != 4 {
			return nil, f.lengthErr(4)
		}
		return U32(binary.LittleEndian.Uint32(f.Raw)), nil
	case KindU64:
		if len(f.Raw) != 8 {
			return nil, f.lengthErr(8)
		}
		return U64(binary.LittleEndian.Uint64(f.Raw)), nil
	case KindBytes:
		return Bytes(append([]byte(nil), f.Raw...)), nil
	case KindText:
		if !utf8.Valid(f.Raw) {
			return nil, fmt.Errorf("field %d: %w", f.Tag, ErrInvalidText)
		}
		return Text(f.Raw), nil
	default:
		return nil, fmt.Errorf("field %d: %w: %d", f.Tag, ErrUnknownKind, uint8(f.Kind))
	}
}

// U32 returns the field as a uint32.
func (f Field) U32() (uint32, error) {
	v, err := f.expect(KindU32)
	if err != nil {
		return 0, err
	}
	return uint32(v.(U32)), nil
}

// Int32 returns the field as a two's-complement int32.
func (f Field) Int32() (int32, error) {
	v, err := f.U32()
	return int32(v), err
}

// Bool returns the field as a boolean; only 0 and 1 are accepted.
func (f Field) Bool() (bool, error) {
	v, err := f.U32()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("field %d: invalid bool value %d", f.Tag, v)
	}
}

// U64 returns the field as a uint64.
func (f Field) U64() (uint64, error) {
	v, err := f.expect(KindU64)
	if err != nil {
		return 0, err
	}
	return uint64(v.(U64)), nil
}

// Bytes returns a copy of the field's byte string.
func (f Field) Bytes() ([]byte, error) {
	v, err := f.expect(KindBytes)
	if err != nil {
		return nil, err
	}
	return []byte(v.(Bytes)), nil
}

// Text returns the field as a string.
func (f Field) Text() (string, error) {
	v, err := f.expect(KindText)
	if err != nil {
		return "", err
	}
	return string(v.(Text)), nil
}

func (f Field) expect(k Kind) (Value, error) {
	if f.Kind != k {
		return nil, fmt.Errorf("field %d: %w: got %s want %s", f.Tag, ErrKindMismatch, f.Kind, k)
	}
	return f.Value()
}

func (f Field) lengthErr(want int) error {
	return fmt.Errorf("field %d: %w: got %d want %d", f.Tag, ErrInvalidLength, len(f.Raw), want)
}

// Encode concatenates fields in the given order.
func Encode(fields []Field) []byte {
	size := 0
	for _, f := range fields {
		size += HeaderLen + len(f.Raw)
	}
	out := make([]byte, 0, size)
	for _, f := range fields {
		out = binary.LittleEndian.AppendUint16(out, f.Tag)
		out = append(out, byte(f.Kind))
		out = binary.LittleEndian.AppendUint32(out, uint32(len(f.Raw)))
		out = append(out, f.Raw...)
	}
	return out
}

// Decode splits payload into fields. Values are not interpreted, so unknown
// tags and kinds pass through untouched.
func Decode(payload []byte) ([]Field, error) {
	fields := make([]Field, 0, 8)
	for i := 0; i < len(payload); {
		if len(payload)-i < HeaderLen {
			return nil, fmt.Errorf("%w: header at offset %d", ErrTruncated, i)
		}
		tag := binary.LittleEndian.Uint16(payload[i : i+2])
		kind := Kind(payload[i+2])
		n := binary.LittleEndian.Uint32(payload[i+3 : i+7])
		i += HeaderLen
		if uint64(n) > uint64(len(payload)-i) {
			return nil, fmt.Errorf("%w: field %d wants %d bytes, %d remain", ErrTruncated, tag, n, len(payload)-i)
		}
		raw := make([]byte, n)
		copy(raw, payload[i:i+int(n)])
		i += int(n)
		fields = append(fields, Field{Tag: tag, Kind: kind, Raw: raw})
	}
	return fields, nil
}

// EncodeRecord encodes a versioned record: the schema-version field followed by
// the writer's fields in canonical order.
func EncodeRecord(schemaVersion uint32, w *Writer) []byte {
	fields := append([]Field{NewField(SchemaVersionTag, U32(schemaVersion))}, w.Fields()...)
	return Encode(fields)
}

// DecodeRecord decodes a versioned record and returns its schema version and
// the remaining fields.
func DecodeRecord(payload []byte) (uint32, []Field, error) {
	fields, err := Decode(payload)
	if err != nil {
		return 0, nil, err
	}
	if len(fields) == 0 || fields[0].Tag != SchemaVersionTag {
		return 0, nil, ErrMissingSchemaVersion
	}
	v, err := fields[0].U32()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrMissingSchemaVersion, err)
	}
	return v, fields[1:], nil
}
