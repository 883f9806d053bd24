// SPDX-License-Identifier: MPL-2.0

// Package pack defines pack manifests, their canonical wire encoding and the
// pack.cue authoring format.
//
// A pack is a unit of optional content, mod or runtime code. Its manifest
// declares identity (id, type, version), load placement (phase and explicit
// order), required/optional/conflicting dependencies with inclusive version
// ranges, and the set of flags that can change deterministic simulation output.
// Manifests are stored in the artifact store keyed by the pack's content hash.
package pack
