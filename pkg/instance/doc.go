// SPDX-License-Identifier: MPL-2.0

// Package instance defines the instance manifest consumed by the resolver and
// the handshake builder: the pinned engine and game builds plus the ordered
// list of content entries.
//
// The canonical TLV encoding of a manifest is what the handshake's
// instance_manifest_hash commits to, so Encode must stay byte-stable.
package instance
