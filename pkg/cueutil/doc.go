// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// Launcher configuration, pack sources and instance sources all follow the
// same flow: compile the schema, unify the user document with a root
// definition, validate, then decode into a Go struct. Errors carry the file
// name and a JSON-style path to the offending value.
//
//	//go:embed pack_schema.cue
//	var packSchema []byte
//
//	res, err := cueutil.ParseAndDecode[Source](packSchema, data, "#Pack",
//		cueutil.WithFilename("pack.cue"))
package cueutil
