// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/launchgate/launchgate/pkg/version"
)

const (
	// DependencyRequired marks a required dependency.
	DependencyRequired DependencyKind = "required"
	// DependencyOptional marks an optional dependency.
	DependencyOptional DependencyKind = "optional"
)

var (
	// ErrDuplicatePack is returned when two enabled entries share a pack id.
	ErrDuplicatePack = errors.New("duplicate pack")
	// ErrMissingRequiredPack is returned when a required dependency is not enabled.
	ErrMissingRequiredPack = errors.New("missing required pack")
	// ErrIncompatibleVersion is returned when a present dependency is outside its range.
	ErrIncompatibleVersion = errors.New("incompatible pack version")
	// ErrConflict is returned when a declared conflict is enabled within range.
	ErrConflict = errors.New("conflicting pack enabled")
	// ErrManifestMismatch is returned when a loaded manifest disagrees with its content entry.
	ErrManifestMismatch = errors.New("pack manifest does not match content entry")
	// ErrInvalidContentEntry is returned for entries that cannot be loaded as packs.
	ErrInvalidContentEntry = errors.New("invalid content entry")
	// ErrUnpinnedSimPack is returned when a sim-affecting pack has no content hash.
	ErrUnpinnedSimPack = errors.New("sim-affecting pack is not pinned by hash")
	// ErrArtifact is returned when the artifact store cannot supply a manifest.
	ErrArtifact = errors.New("artifact unavailable")
)

type (
	// DependencyKind distinguishes required from optional dependencies in errors.
	DependencyKind string

	// DuplicatePackError names the lexicographically smallest duplicated pack id.
	DuplicatePackError struct {
		PackID string
	}

	// MissingRequiredPackError is returned when a required dependency is absent.
	MissingRequiredPackError struct {
		PackID   string
		Requires string
	}

	// IncompatibleVersionError is returned when a dependency's version is out of range.
	IncompatibleVersionError struct {
		PackID     string
		Dependency string
		Kind       DependencyKind
		Range      version.Range
		Found      string
	}

	// ConflictError is returned when a declared conflict is enabled within range.
	ConflictError struct {
		PackID   string
		Conflict string
		Range    version.Range
		Found    string
	}

	// ManifestMismatchError is returned when a manifest field disagrees with the
	// content entry that referenced it.
	ManifestMismatchError struct {
		PackID   string
		Field    string
		Expected string
		Found    string
	}

	// InvalidContentEntryError is returned for entries that are not loadable packs.
	InvalidContentEntryError struct {
		PackID string
		Reason string
	}

	// UnpinnedSimPackError is returned by ValidateSimulationSafety.
	UnpinnedSimPackError struct {
		PackID string
		Flags  []string
	}

	// ArtifactError wraps a store failure for one pack.
	ArtifactError struct {
		PackID string
		Hash   []byte
		Err    error
	}
)

func (e *DuplicatePackError) Error() string {
	return fmt.Sprintf("pack %q is enabled more than once", e.PackID)
}

// Unwrap returns ErrDuplicatePack for errors.Is.
func (e *DuplicatePackError) Unwrap() error { return ErrDuplicatePack }

func (e *MissingRequiredPackError) Error() string {
	return fmt.Sprintf("pack %q requires %q, which is not enabled", e.PackID, e.Requires)
}

// Unwrap returns ErrMissingRequiredPack for errors.Is.
func (e *MissingRequiredPackError) Unwrap() error { return ErrMissingRequiredPack }

func (e *IncompatibleVersionError) Error() string {
	return fmt.Sprintf("pack %q: %s dependency %q needs version %s, found %q",
		e.PackID, e.Kind, e.Dependency, e.Range, e.Found)
}

// Unwrap returns ErrIncompatibleVersion for errors.Is.
func (e *IncompatibleVersionError) Unwrap() error { return ErrIncompatibleVersion }

func (e *ConflictError) Error() string {
	return fmt.Sprintf("pack %q conflicts with %q %s, which is enabled at %q",
		e.PackID, e.Conflict, e.Range, e.Found)
}

// Unwrap returns ErrConflict for errors.Is.
func (e *ConflictError) Unwrap() error { return ErrConflict }

func (e *ManifestMismatchError) Error() string {
	return fmt.Sprintf("pack %q: manifest %s is %q, content entry expects %q",
		e.PackID, e.Field, e.Found, e.Expected)
}

// Unwrap returns ErrManifestMismatch for errors.Is.
func (e *ManifestMismatchError) Unwrap() error { return ErrManifestMismatch }

func (e *InvalidContentEntryError) Error() string {
	return fmt.Sprintf("content entry %q: %s", e.PackID, e.Reason)
}

// Unwrap returns ErrInvalidContentEntry for errors.Is.
func (e *InvalidContentEntryError) Unwrap() error { return ErrInvalidContentEntry }

func (e *UnpinnedSimPackError) Error() string {
	return fmt.Sprintf("pack %q declares sim-affecting flags [%s] but has no content hash",
		e.PackID, strings.Join(e.Flags, ", "))
}

// Unwrap returns ErrUnpinnedSimPack for errors.Is.
func (e *UnpinnedSimPackError) Unwrap() error { return ErrUnpinnedSimPack }

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("pack %q (hash %x): %v", e.PackID, e.Hash, e.Err)
}

// Unwrap exposes both ErrArtifact and the underlying store error.
func (e *ArtifactError) Unwrap() []error { return []error{ErrArtifact, e.Err} }
