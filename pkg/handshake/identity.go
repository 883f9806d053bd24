// SPDX-License-Identifier: MPL-2.0

package handshake

import (
	"hash/fnv"
	"slices"

	"github.com/launchgate/launchgate/pkg/tlv"
)

// identitySchemaVersion versions the fingerprint payload, not the handshake.
const identitySchemaVersion uint32 = 1

const (
	tagIdentitySimCaps          uint16 = 2
	tagIdentityProviderBindings uint16 = 3
	tagIdentityFeatureEpoch     uint16 = 4
	tagIdentityCoredataSim      uint16 = 5
	tagIdentityPack             uint16 = 6

	tagIdentityPackID      uint16 = 1
	tagIdentityPackVersion uint16 = 2
	tagIdentityPackHash    uint16 = 3
	tagIdentityPackFlag    uint16 = 4
)

// IdentityPayload returns the bytes IdentityHash fingerprints: the sim caps
// digest, the optional provider, epoch and coredata values (zero when unset),
// and each enabled pack's id, version, hash and sorted flags in handshake order.
// Profiles, backends, timestamps and the run id are not included.
func IdentityPayload(h *Handshake) []byte {
	w := tlv.NewWriter().
		U64(tagIdentitySimCaps, fnv64a(h.SimCaps)).
		U64(tagIdentityProviderBindings, deref(h.ProviderBindingsHash)).
		U32(tagIdentityFeatureEpoch, deref(h.FeatureEpoch)).
		U64(tagIdentityCoredataSim, deref(h.CoredataSimHash))
	for _, p := range h.ResolvedPacks {
		if !p.Enabled {
			continue
		}
		flags := slices.Clone(p.SimAffectingFlags)
		slices.Sort(flags)
		w.Record(tagIdentityPack, tlv.NewWriter().
			Text(tagIdentityPackID, p.PackID).
			Text(tagIdentityPackVersion, p.Version).
			Bytes(tagIdentityPackHash, p.HashBytes).
			Texts(tagIdentityPackFlag, flags))
	}
	return tlv.EncodeRecord(identitySchemaVersion, w)
}

// IdentityHash returns the FNV-1a 64 fingerprint of IdentityPayload. It is a
// diagnostic aid; acceptance is decided by field-by-field validation.
func IdentityHash(h *Handshake) uint64 {
	return fnv64a(IdentityPayload(h))
}

func fnv64a(b []byte) uint64 {
	f := fnv.New64a()
	_, _ = f.Write(b)
	return f.Sum64()
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
