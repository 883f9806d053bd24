// SPDX-License-Identifier: MPL-2.0

package tlv

import "slices"

// Writer accumulates fields for one record. Zero values are omitted so that a
// logical value has exactly one encoding; use the Optional* methods for
// fields whose presence is meaningful.
type Writer struct {
	fields []Field
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// U32 adds v unless it is zero.
func (w *Writer) U32(tag uint16, v uint32) *Writer {
	if v != 0 {
		w.fields = append(w.fields, NewField(tag, U32(v)))
	}
	return w
}

// Int32 adds v as two's-complement u32 unless it is zero.
func (w *Writer) Int32(tag uint16, v int32) *Writer {
	return w.U32(tag, uint32(v))
}

// Bool adds 1 when v is true.
func (w *Writer) Bool(tag uint16, v bool) *Writer {
	if v {
		w.fields = append(w.fields, NewField(tag, U32(1)))
	}
	return w
}

// U64 adds v unless it is zero.
func (w *Writer) U64(tag uint16, v uint64) *Writer {
	if v != 0 {
		w.fields = append(w.fields, NewField(tag, U64(v)))
	}
	return w
}

// Bytes adds b unless it is empty.
func (w *Writer) Bytes(tag uint16, b []byte) *Writer {
	if len(b) > 0 {
		w.fields = append(w.fields, NewField(tag, Bytes(b)))
	}
	return w
}

// Text adds s unless it is empty.
func (w *Writer) Text(tag uint16, s string) *Writer {
	if s != "" {
		w.fields = append(w.fields, NewField(tag, Text(s)))
	}
	return w
}

// Texts adds one field per element, preserving order.
func (w *Writer) Texts(tag uint16, ss []string) *Writer {
	for _, s := range ss {
		w.fields = append(w.fields, NewField(tag, Text(s)))
	}
	return w
}

// OptionalU32 adds *v when v is non-nil, including zero.
func (w *Writer) OptionalU32(tag uint16, v *uint32) *Writer {
	if v != nil {
		w.fields = append(w.fields, NewField(tag, U32(*v)))
	}
	return w
}

// OptionalInt32 adds *v when v is non-nil, including zero.
func (w *Writer) OptionalInt32(tag uint16, v *int32) *Writer {
	if v != nil {
		w.fields = append(w.fields, NewField(tag, U32(uint32(*v))))
	}
	return w
}

// OptionalU64 adds *v when v is non-nil, including zero.
func (w *Writer) OptionalU64(tag uint16, v *uint64) *Writer {
	if v != nil {
		w.fields = append(w.fields, NewField(tag, U64(*v)))
	}
	return w
}

// OptionalText adds *s when s is non-nil, including the empty string.
func (w *Writer) OptionalText(tag uint16, s *string) *Writer {
	if s != nil {
		w.fields = append(w.fields, NewField(tag, Text(*s)))
	}
	return w
}

// Record adds a nested record. Nested records carry no schema version and are
// always emitted, even when empty, because list membership is significant.
func (w *Writer) Record(tag uint16, nested *Writer) *Writer {
	w.fields = append(w.fields, NewField(tag, Bytes(nested.Encode())))
	return w
}

// Fields returns the fields in canonical order: ascending tag, with repeated
// tags keeping insertion order.
func (w *Writer) Fields() []Field {
	out := slices.Clone(w.fields)
	slices.SortStableFunc(out, func(a, b Field) int {
		return int(a.Tag) - int(b.Tag)
	})
	return out
}

// Encode returns the canonical encoding without a schema-version header.
func (w *Writer) Encode() []byte {
	return Encode(w.Fields())
}
