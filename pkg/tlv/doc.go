// SPDX-License-Identifier: MPL-2.0

// Package tlv implements the versioned tag-length-value encoding shared by
// pack manifests, instance manifests and handshakes.
//
// Each field is laid out as:
//
//	tag    uint16 little-endian
//	kind   uint8  (1=u32, 2=u64, 3=bytes, 4=text)
//	length uint32 little-endian
//	value  [length]byte
//
// A record starts with the schema-version field (tag 1, u32). Writers emit the
// remaining fields in ascending tag order and omit zero values, so identical
// logical content always produces identical bytes. Readers skip tags they do
// not know; a known tag with the wrong kind is an error.
package tlv
