// SPDX-License-Identifier: MPL-2.0

// Package artifact is the content-addressed store the resolver reads pack
// manifests from. Payloads are keyed by their content hash.
package artifact

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/launchgate/launchgate/pkg/fspath"
)

const (
	artifactsDir    = "artifacts"
	payloadFileName = "pack.tlv"
)

var (
	// ErrArtifactNotFound is returned when no payload exists for a hash.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrEmptyHash is returned when a lookup is attempted with no hash.
	ErrEmptyHash = errors.New("artifact hash is empty")
)

type (
	// Store resolves a content hash to a payload location and reads it.
	Store interface {
		ResolvePath(stateRoot string, hash []byte) (string, error)
		Read(path string) ([]byte, error)
	}

	// FSStore lays payloads out as <stateRoot>/artifacts/<hex>/pack.tlv.
	FSStore struct{}

	// MemStore keeps payloads in memory. Paths it returns are synthetic and
	// only meaningful to the same MemStore.
	MemStore struct {
		mu       sync.RWMutex
		payloads map[string][]byte
	}
)

// PayloadPath returns where FSStore keeps the payload for hash.
func PayloadPath(stateRoot string, hash []byte) string {
	return filepath.Join(stateRoot, artifactsDir, hex.EncodeToString(hash), payloadFileName)
}

// ResolvePath returns the payload path for hash, or ErrArtifactNotFound.
func (FSStore) ResolvePath(stateRoot string, hash []byte) (string, error) {
	if len(hash) == 0 {
		return "", ErrEmptyHash
	}
	path := PayloadPath(stateRoot, hash)
	if !fspath.FileExists(path) {
		return "", fmt.Errorf("%w: %x", ErrArtifactNotFound, hash)
	}
	return path, nil
}

// Read returns the payload at path.
func (FSStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if fspath.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	return data, nil
}

// Put stores payload under hash. Existing payloads are replaced atomically.
func (FSStore) Put(stateRoot string, hash, payload []byte) (string, error) {
	if len(hash) == 0 {
		return "", ErrEmptyHash
	}
	path := PayloadPath(stateRoot, hash)
	if err := fspath.WriteAtomic(path, payload, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{payloads: make(map[string][]byte)}
}

// Put stores a copy of payload under hash.
func (s *MemStore) Put(hash, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[hex.EncodeToString(hash)] = append([]byte(nil), payload...)
}

// ResolvePath returns a synthetic path for hash. stateRoot is ignored.
func (s *MemStore) ResolvePath(_ string, hash []byte) (string, error) {
	if len(hash) == 0 {
		return "", ErrEmptyHash
	}
	key := hex.EncodeToString(hash)
	s.mu.RLock()
	_, ok := s.payloads[key]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrArtifactNotFound, key)
	}
	return "mem:" + key, nil
}

// Read returns a copy of the payload behind a path from ResolvePath.
func (s *MemStore) Read(path string) ([]byte, error) {
	key, ok := strings.CutPrefix(path, "mem:")
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.payloads[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, key)
	}
	return append([]byte(nil), data...), nil
}
