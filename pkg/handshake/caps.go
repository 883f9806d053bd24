// SPDX-License-Identifier: MPL-2.0

package handshake

import (
	"fmt"

	"github.com/launchgate/launchgate/pkg/tlv"
)

// CapsSchemaVersion is the record version of both capability blobs.
const CapsSchemaVersion uint32 = 1

const (
	tagSimTickRate    uint16 = 2
	tagSimRNG         uint16 = 3
	tagSimFixedPoint  uint16 = 4
	tagSimMaxEntities uint16 = 5

	tagPerfWorkers   uint16 = 2
	tagPerfMemoryMB  uint16 = 3
	tagPerfStreaming uint16 = 4
)

type (
	// SimCaps are the simulation capabilities the engine must honor. They
	// feed the identity fingerprint.
	SimCaps struct {
		TickRateHz   uint32 `json:"tick_rate_hz"`
		RNGAlgorithm string `json:"rng_algorithm"`
		FixedPoint   bool   `json:"fixed_point"`
		MaxEntities  uint32 `json:"max_entities"`
	}

	// PerfCaps are performance hints. They never affect the fingerprint.
	PerfCaps struct {
		WorkerThreads  uint32 `json:"worker_threads"`
		MemoryBudgetMB uint32 `json:"memory_budget_mb"`
		Streaming      bool   `json:"streaming"`
	}
)

// Encode returns the canonical blob.
func (c SimCaps) Encode() []byte {
	return tlv.EncodeRecord(CapsSchemaVersion, tlv.NewWriter().
		U32(tagSimTickRate, c.TickRateHz).
		Text(tagSimRNG, c.RNGAlgorithm).
		Bool(tagSimFixedPoint, c.FixedPoint).
		U32(tagSimMaxEntities, c.MaxEntities))
}

// DecodeSimCaps parses a sim caps blob. An empty blob is the zero value.
func DecodeSimCaps(data []byte) (SimCaps, error) {
	var c SimCaps
	if len(data) == 0 {
		return c, nil
	}
	fields, err := decodeCaps(data)
	if err != nil {
		return c, fmt.Errorf("decode sim caps: %w", err)
	}
	for _, f := range fields {
		switch f.Tag {
		case tagSimTickRate:
			c.TickRateHz, err = f.U32()
		case tagSimRNG:
			c.RNGAlgorithm, err = f.Text()
		case tagSimFixedPoint:
			c.FixedPoint, err = f.Bool()
		case tagSimMaxEntities:
			c.MaxEntities, err = f.U32()
		}
		if err != nil {
			return SimCaps{}, fmt.Errorf("decode sim caps: %w", err)
		}
	}
	return c, nil
}

// Encode returns the canonical blob.
func (c PerfCaps) Encode() []byte {
	return tlv.EncodeRecord(CapsSchemaVersion, tlv.NewWriter().
		U32(tagPerfWorkers, c.WorkerThreads).
		U32(tagPerfMemoryMB, c.MemoryBudgetMB).
		Bool(tagPerfStreaming, c.Streaming))
}

// DecodePerfCaps parses a perf caps blob. An empty blob is the zero value.
func DecodePerfCaps(data []byte) (PerfCaps, error) {
	var c PerfCaps
	if len(data) == 0 {
		return c, nil
	}
	fields, err := decodeCaps(data)
	if err != nil {
		return c, fmt.Errorf("decode perf caps: %w", err)
	}
	for _, f := range fields {
		switch f.Tag {
		case tagPerfWorkers:
			c.WorkerThreads, err = f.U32()
		case tagPerfMemoryMB:
			c.MemoryBudgetMB, err = f.U32()
		case tagPerfStreaming:
			c.Streaming, err = f.Bool()
		}
		if err != nil {
			return PerfCaps{}, fmt.Errorf("decode perf caps: %w", err)
		}
	}
	return c, nil
}

func decodeCaps(data []byte) ([]tlv.Field, error) {
	ver, fields, err := tlv.DecodeRecord(data)
	if err != nil {
		return nil, err
	}
	if ver != CapsSchemaVersion {
		return nil, fmt.Errorf("%w: %d", tlv.ErrUnsupportedSchemaVersion, ver)
	}
	return fields, nil
}
