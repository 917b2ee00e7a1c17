// Package storage is the document store boundary. The workflow core only
// keeps typed references; file content lives behind this interface so the
// local-disk implementation can be swapped for an object store.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists document content addressed by its sha256 hash.
type Store interface {
	// Save writes content and returns its content-addressable handle.
	Save(content []byte) (hash string, err error)
	Load(hash string) ([]byte, error)
}

type diskStore struct {
	dir string
}

// NewDiskStore creates (if needed) the storage directory and returns a
// content-addressed file store.
func NewDiskStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

func (s *diskStore) Save(content []byte) (string, error) {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])
	path := filepath.Join(s.dir, hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil // identical content already stored
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return hash, nil
}

func (s *diskStore) Load(hash string) ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(s.dir, hash))
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", hash, err)
	}
	return content, nil
}
