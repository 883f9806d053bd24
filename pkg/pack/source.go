// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"

	"github.com/launchgate/launchgate/pkg/cueutil"
	"github.com/launchgate/launchgate/pkg/version"
)

//go:embed pack_schema.cue
var packSchema []byte

type (
	// Source is the pack.cue document.
	Source struct {
		ID          string             `json:"id"`
		Type        string             `json:"type"`
		Version     string             `json:"version"`
		Phase       string             `json:"phase"`
		Order       int32              `json:"order"`
		Requires    []DependencySource `json:"requires"`
		Optional    []DependencySource `json:"optional"`
		Conflicts   []DependencySource `json:"conflicts"`
		SimFlags    []string           `json:"sim_flags"`
		ContentHash string             `json:"content_hash,omitempty"`
	}

	// DependencySource is one dependency entry in pack.cue.
	DependencySource struct {
		ID  string  `json:"id"`
		Min *string `json:"min,omitempty"`
		Max *string `json:"max,omitempty"`
	}
)

// ParseSource reads a pack.cue document into a Manifest. When the source
// omits content_hash, the manifest's content hash is left empty; use
// SealContentHash to derive one.
func ParseSource(data []byte, filename string) (*Manifest, error) {
	res, err := cueutil.ParseAndDecode[Source](packSchema, data, "#Pack", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return res.Value.Manifest()
}

// Manifest converts the source into a validated Manifest.
func (s *Source) Manifest() (*Manifest, error) {
	typ, err := ParseType(s.Type)
	if err != nil {
		return nil, err
	}
	phase, err := ParsePhase(s.Phase)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		PackID:            s.ID,
		Type:              typ,
		Version:           s.Version,
		Phase:             phase,
		ExplicitOrder:     s.Order,
		Required:          convertDeps(s.Requires),
		Optional:          convertDeps(s.Optional),
		Conflicts:         convertDeps(s.Conflicts),
		SimAffectingFlags: NormalizeFlags(s.SimFlags),
	}
	if s.ContentHash != "" {
		m.ContentHash, err = hex.DecodeString(s.ContentHash)
		if err != nil {
			return nil, fmt.Errorf("content_hash: %w", err)
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func convertDeps(in []DependencySource) []Dependency {
	if len(in) == 0 {
		return nil
	}
	out := make([]Dependency, 0, len(in))
	for _, d := range in {
		out = append(out, Dependency{PackID: d.ID, Range: version.Range{Min: d.Min, Max: d.Max}})
	}
	return out
}

// SealContentHash sets ContentHash to the SHA-256 of the manifest encoded
// without a content hash, unless one is already present. It returns the hash.
func SealContentHash(m *Manifest) []byte {
	if len(m.ContentHash) == 0 {
		unsealed := *m
		unsealed.ContentHash = nil
		sum := sha256.Sum256(Encode(&unsealed))
		m.ContentHash = sum[:]
	}
	return m.ContentHash
}
