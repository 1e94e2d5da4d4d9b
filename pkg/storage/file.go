package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileStore persists each document as a JSON file in a directory.
// The zero value is not usable - use [NewFileStore].
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed. An empty dir defaults to ~/.config/nest/maps.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".config", "nest", "maps")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating maps directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory documents are stored in.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load retrieves a document by name.
func (s *FileStore) Load(ctx context.Context, name string) (*Document, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading map %q: %w", name, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding map %q: %w", name, err)
	}
	return &doc, nil
}

// Save stores a document, overwriting any previous version.
func (s *FileStore) Save(ctx context.Context, doc *Document) error {
	if err := ValidateName(doc.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding map %q: %w", doc.Name, err)
	}
	if err := os.WriteFile(s.path(doc.Name), data, 0o600); err != nil {
		return fmt.Errorf("writing map %q: %w", doc.Name, err)
	}
	return nil
}

// Delete removes a document. Deleting an absent name is a no-op.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting map %q: %w", name, err)
	}
	return nil
}

// List returns summaries of all stored documents, sorted by name.
func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing maps directory: %w", err)
	}
	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok || entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue // raced with a delete
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			continue // stray file, not ours
		}
		infos = append(infos, Info{
			Name:      name,
			UpdatedAt: doc.UpdatedAt,
			Nodes:     len(doc.Map.Nodes),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Close is a no-op for file stores.
func (s *FileStore) Close() error {
	return nil
}
