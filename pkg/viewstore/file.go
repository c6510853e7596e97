package viewstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one JSON file per view in a directory, for CLI usage.
// File names are hashes of the view name, so names are free-form; the
// original name is stored inside the entry for listing.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based store in the given directory.
// The directory is created if it does not exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// fileEntry wraps a view with its name for round-tripping through List.
type fileEntry struct {
	Name string `json:"name"`
	View View   `json:"view"`
}

// Save stores a view under a name.
func (s *FileStore) Save(ctx context.Context, name string, v View) error {
	data, err := json.MarshalIndent(fileEntry{Name: name, View: v}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(name), data, 0644)
}

// Load retrieves a view by name.
func (s *FileStore) Load(ctx context.Context, name string) (View, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return View{}, ErrNotFound
	}
	if err != nil {
		return View{}, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return View{}, fmt.Errorf("decode view %q: %w", name, err)
	}
	return entry.View, nil
}

// Delete removes a view. Deleting an absent view is not an error.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List returns the stored view names.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry fileEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		names = append(names, entry.Name)
	}
	return names, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(name string) string {
	hash := sha256.Sum256([]byte(name))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:16])+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
