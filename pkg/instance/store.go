// SPDX-License-Identifier: MPL-2.0

package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/launchgate/launchgate/pkg/fspath"
)

const (
	instancesDir     = "instances"
	manifestFileName = "manifest.tlv"
)

// ErrInstanceNotFound is returned when no manifest exists for an instance id.
var ErrInstanceNotFound = errors.New("instance not found")

type (
	// Store loads and saves instance manifests.
	Store interface {
		Load(instanceID string) (*Manifest, error)
		Save(m *Manifest) error
	}

	// DirStore keeps manifests under <Root>/instances/<id>/manifest.tlv.
	DirStore struct {
		Root string
	}
)

// NewDirStore returns a DirStore rooted at stateRoot.
func NewDirStore(stateRoot string) *DirStore {
	return &DirStore{Root: stateRoot}
}

// Path returns the manifest path for instanceID.
func (s *DirStore) Path(instanceID string) (string, error) {
	if instanceID == "" || strings.ContainsAny(instanceID, `/\`) || instanceID == "." || instanceID == ".." {
		return "", fmt.Errorf("invalid instance id %q", instanceID)
	}
	return filepath.Join(s.Root, instancesDir, instanceID, manifestFileName), nil
}

// Load reads and decodes the manifest for instanceID.
func (s *DirStore) Load(instanceID string) (*Manifest, error) {
	path, err := s.Path(instanceID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if fspath.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
		}
		return nil, fmt.Errorf("reading instance manifest: %w", err)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.InstanceID != instanceID {
		return nil, &InvalidManifestError{InstanceID: instanceID, Reason: fmt.Sprintf("stored manifest names instance %q", m.InstanceID)}
	}
	return m, nil
}

// Save validates and atomically writes m.
func (s *DirStore) Save(m *Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}
	path, err := s.Path(m.InstanceID)
	if err != nil {
		return err
	}
	return fspath.WriteAtomic(path, Encode(m), 0o644)
}
