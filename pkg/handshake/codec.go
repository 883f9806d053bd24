// SPDX-License-Identifier: MPL-2.0

package handshake

import (
	"fmt"

	"github.com/launchgate/launchgate/pkg/tlv"
)

// SchemaVersion is the handshake record version written by Encode.
const SchemaVersion uint32 = 1

const (
	tagRunID                uint16 = 2
	tagInstanceID           uint16 = 3
	tagManifestHash         uint16 = 4
	tagLauncherProfileID    uint16 = 5
	tagDeterminismProfileID uint16 = 6
	tagPlatformBackend      uint16 = 7
	tagRendererBackend      uint16 = 8
	tagUIBackend            uint16 = 9
	tagEngineBuildID        uint16 = 10
	tagGameBuildID          uint16 = 11
	tagResolvedPack         uint16 = 12
	tagSimCaps              uint16 = 13
	tagPerfCaps             uint16 = 14
	tagProviderBindingsHash uint16 = 15
	tagFeatureEpoch         uint16 = 16
	tagCoredataSimHash      uint16 = 17
	tagTimestampMonotonicUS uint16 = 18
	tagTimestampWallUS      uint16 = 19

	tagPackID       uint16 = 1
	tagPackVersion  uint16 = 2
	tagPackHash     uint16 = 3
	tagPackEnabled  uint16 = 4
	tagPackSimFlag  uint16 = 5
	tagPackSafeFlag uint16 = 6
	tagPackOffline  uint16 = 7
)

// Encode returns the canonical encoding of h. List fields are written in the
// order they appear in h.
func Encode(h *Handshake) []byte {
	w := tlv.NewWriter().
		U64(tagRunID, h.RunID).
		Text(tagInstanceID, h.InstanceID).
		Bytes(tagManifestHash, h.InstanceManifestHash).
		Text(tagLauncherProfileID, h.LauncherProfileID).
		Text(tagDeterminismProfileID, h.DeterminismProfileID).
		Texts(tagPlatformBackend, h.PlatformBackends).
		Texts(tagRendererBackend, h.RendererBackends).
		Text(tagUIBackend, h.UIBackend).
		Text(tagEngineBuildID, h.EngineBuildID).
		Text(tagGameBuildID, h.GameBuildID).
		Bytes(tagSimCaps, h.SimCaps).
		Bytes(tagPerfCaps, h.PerfCaps).
		OptionalU64(tagProviderBindingsHash, h.ProviderBindingsHash).
		OptionalU32(tagFeatureEpoch, h.FeatureEpoch).
		OptionalU64(tagCoredataSimHash, h.CoredataSimHash).
		U64(tagTimestampMonotonicUS, h.TimestampMonotonicUS).
		U64(tagTimestampWallUS, h.TimestampWallUS)
	for _, p := range h.ResolvedPacks {
		w.Record(tagResolvedPack, encodePack(p))
	}
	return tlv.EncodeRecord(SchemaVersion, w)
}

func encodePack(p PackEntry) *tlv.Writer {
	return tlv.NewWriter().
		Text(tagPackID, p.PackID).
		Text(tagPackVersion, p.Version).
		Bytes(tagPackHash, p.HashBytes).
		Bool(tagPackEnabled, p.Enabled).
		Texts(tagPackSimFlag, p.SimAffectingFlags).
		Texts(tagPackSafeFlag, p.SafeModeFlags).
		Bool(tagPackOffline, p.OfflineMode)
}

// Decode parses a handshake. Unknown tags are skipped. Decode checks the
// wire format only; use a validator for semantic checks.
func Decode(data []byte) (*Handshake, error) {
	ver, fields, err := tlv.DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("decode handshake: %w", err)
	}
	if ver != SchemaVersion {
		return nil, fmt.Errorf("decode handshake: %w: %d", tlv.ErrUnsupportedSchemaVersion, ver)
	}

	h := &Handshake{}
	for _, f := range fields {
		switch f.Tag {
		case tagRunID:
			h.RunID, err = f.U64()
		case tagInstanceID:
			h.InstanceID, err = f.Text()
		case tagManifestHash:
			h.InstanceManifestHash, err = f.Bytes()
		case tagLauncherProfileID:
			h.LauncherProfileID, err = f.Text()
		case tagDeterminismProfileID:
			h.DeterminismProfileID, err = f.Text()
		case tagPlatformBackend:
			h.PlatformBackends, err = appendText(h.PlatformBackends, f)
		case tagRendererBackend:
			h.RendererBackends, err = appendText(h.RendererBackends, f)
		case tagUIBackend:
			h.UIBackend, err = f.Text()
		case tagEngineBuildID:
			h.EngineBuildID, err = f.Text()
		case tagGameBuildID:
			h.GameBuildID, err = f.Text()
		case tagResolvedPack:
			var p PackEntry
			p, err = decodePack(f)
			h.ResolvedPacks = append(h.ResolvedPacks, p)
		case tagSimCaps:
			h.SimCaps, err = f.Bytes()
		case tagPerfCaps:
			h.PerfCaps, err = f.Bytes()
		case tagProviderBindingsHash:
			var v uint64
			v, err = f.U64()
			h.ProviderBindingsHash = &v
		case tagFeatureEpoch:
			var v uint32
			v, err = f.U32()
			h.FeatureEpoch = &v
		case tagCoredataSimHash:
			var v uint64
			v, err = f.U64()
			h.CoredataSimHash = &v
		case tagTimestampMonotonicUS:
			h.TimestampMonotonicUS, err = f.U64()
		case tagTimestampWallUS:
			h.TimestampWallUS, err = f.U64()
		}
		if err != nil {
			return nil, fmt.Errorf("decode handshake: %w", err)
		}
	}
	return h, nil
}

func decodePack(f tlv.Field) (PackEntry, error) {
	raw, err := f.Bytes()
	if err != nil {
		return PackEntry{}, err
	}
	fields, err := tlv.Decode(raw)
	if err != nil {
		return PackEntry{}, fmt.Errorf("resolved pack: %w", err)
	}

	var p PackEntry
	for _, pf := range fields {
		switch pf.Tag {
		case tagPackID:
			p.PackID, err = pf.Text()
		case tagPackVersion:
			p.Version, err = pf.Text()
		case tagPackHash:
			p.HashBytes, err = pf.Bytes()
		case tagPackEnabled:
			p.Enabled, err = pf.Bool()
		case tagPackSimFlag:
			p.SimAffectingFlags, err = appendText(p.SimAffectingFlags, pf)
		case tagPackSafeFlag:
			p.SafeModeFlags, err = appendText(p.SafeModeFlags, pf)
		case tagPackOffline:
			p.OfflineMode, err = pf.Bool()
		}
		if err != nil {
			return PackEntry{}, fmt.Errorf("resolved pack: %w", err)
		}
	}
	return p, nil
}

func appendText(list []string, f tlv.Field) ([]string, error) {
	s, err := f.Text()
	if err != nil {
		return list, err
	}
	return append(list, s), nil
}
