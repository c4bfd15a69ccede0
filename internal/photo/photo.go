// Package photo stores item photos on disk under opaque keys. The catalog
// only ever records the key; nothing in the core reads image bytes.
package photo

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes processed photos into a directory, one file per key.
type Store struct {
	dir string
}

// NewStore creates the photo directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create photo dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save processes the uploaded image (format check, downscale, JPEG re-encode)
// and stores it under a fresh key, which it returns.
func (s *Store) Save(r io.Reader) (string, error) {
	res, err := Process(r)
	if err != nil {
		return "", err
	}

	key := uuid.New().String() + ".jpg"
	if err := os.WriteFile(filepath.Join(s.dir, key), res.Data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return key, nil
}

// Open returns the photo bytes and MIME type for a key.
func (s *Store) Open(key string) (io.ReadCloser, string, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, "", os.ErrNotExist
	}
	if err != nil {
		return nil, "", fmt.Errorf("open photo: %w", err)
	}
	return f, "image/jpeg", nil
}

// Delete removes the photo for a key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

// path validates the key before touching the filesystem so a crafted key can
// never escape the photo directory.
func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid photo key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}
