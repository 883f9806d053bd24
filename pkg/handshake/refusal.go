// SPDX-License-Identifier: MPL-2.0

package handshake

import (
	"errors"
	"fmt"
	"strconv"
)

// Refusal codes are wire-stable. New codes are only ever appended.
const (
	RefusalOK RefusalCode = iota
	RefusalMissingRequiredFields
	RefusalManifestHashMismatch
	RefusalMissingSimAffectingPackDeclarations
	RefusalPackHashMismatch
	RefusalPrelaunchValidationFailed
)

// ErrRefused is the sentinel wrapped by RefusalError.
var ErrRefused = errors.New("handshake refused")

var refusalNames = [...]string{
	RefusalOK:                                  "ok",
	RefusalMissingRequiredFields:               "missing_required_fields",
	RefusalManifestHashMismatch:                "manifest_hash_mismatch",
	RefusalMissingSimAffectingPackDeclarations: "missing_sim_affecting_pack_declarations",
	RefusalPackHashMismatch:                    "pack_hash_mismatch",
	RefusalPrelaunchValidationFailed:           "prelaunch_validation_failed",
}

type (
	// RefusalCode is the outcome of handshake validation. RefusalOK means accepted.
	RefusalCode uint32

	// RefusalError carries a non-OK refusal code and the pack that caused it.
	RefusalError struct {
		Code   RefusalCode
		PackID string
		Reason string
		Err    error
	}
)

// RefusalCodes returns every defined code in wire order.
func RefusalCodes() []RefusalCode {
	out := make([]RefusalCode, len(refusalNames))
	for i := range refusalNames {
		out[i] = RefusalCode(i)
	}
	return out
}

// String returns the snake_case name of the code.
func (c RefusalCode) String() string {
	if int(c) < len(refusalNames) {
		return refusalNames[c]
	}
	return fmt.Sprintf("refusal(%d)", uint32(c))
}

// Valid reports whether c is a defined code.
func (c RefusalCode) Valid() bool {
	return int(c) < len(refusalNames)
}

// ParseRefusalCode accepts a code number or its snake_case name.
func ParseRefusalCode(s string) (RefusalCode, error) {
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		if c := RefusalCode(n); c.Valid() {
			return c, nil
		}
		return 0, fmt.Errorf("unknown refusal code %s", s)
	}
	for i, name := range refusalNames {
		if name == s {
			return RefusalCode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown refusal code %q", s)
}

func (e *RefusalError) Error() string {
	msg := fmt.Sprintf("refused (%d %s)", uint32(e.Code), e.Code)
	if e.PackID != "" {
		msg += fmt.Sprintf(" pack %q", e.PackID)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap exposes ErrRefused and the underlying cause, if any.
func (e *RefusalError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRefused}
	}
	return []error{ErrRefused, e.Err}
}
