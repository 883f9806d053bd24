// SPDX-License-Identifier: MPL-2.0

package instance

import (
	_ "embed"
	"encoding/hex"
	"fmt"

	"github.com/launchgate/launchgate/pkg/cueutil"
)

//go:embed instance_schema.cue
var instanceSchema []byte

type (
	// Source is the instance.cue document.
	Source struct {
		ID          string          `json:"id"`
		EngineBuild string          `json:"engine_build"`
		GameBuild   string          `json:"game_build"`
		Content     []ContentSource `json:"content"`
	}

	// ContentSource is one content entry in instance.cue.
	ContentSource struct {
		Type    string `json:"type"`
		ID      string `json:"id"`
		Version string `json:"version"`
		Hash    string `json:"hash"`
		Enabled bool   `json:"enabled"`
		Order   *int32 `json:"order,omitempty"`
	}
)

// ParseSource reads an instance.cue document into a Manifest.
func ParseSource(data []byte, filename string) (*Manifest, error) {
	res, err := cueutil.ParseAndDecode[Source](instanceSchema, data, "#Instance", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return res.Value.Manifest()
}

// Manifest converts the source into a validated Manifest.
func (s *Source) Manifest() (*Manifest, error) {
	m := &Manifest{
		InstanceID:          s.ID,
		PinnedEngineBuildID: s.EngineBuild,
		PinnedGameBuildID:   s.GameBuild,
	}
	for i, c := range s.Content {
		typ, err := ParseContentType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("content[%d]: %w", i, err)
		}
		var hash []byte
		if c.Hash != "" {
			if hash, err = hex.DecodeString(c.Hash); err != nil {
				return nil, fmt.Errorf("content[%d].hash: %w", i, err)
			}
		}
		m.ContentEntries = append(m.ContentEntries, ContentEntry{
			Type:                  typ,
			ID:                    c.ID,
			Version:               c.Version,
			HashBytes:             hash,
			Enabled:               c.Enabled,
			ExplicitOrderOverride: c.Order,
		})
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
