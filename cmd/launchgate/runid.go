// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// newRunID derives a non-zero run id from the first eight bytes of a random
// UUID, read little-endian.
func newRunID() uint64 {
	for {
		id := uuid.New()
		if v := binary.LittleEndian.Uint64(id[:8]); v != 0 {
			return v
		}
	}
}
