package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore keeps documents in process memory. It is intended for tests
// and for serving without persistence.
//
// Documents are held in serialized form so callers never share state
// with the store.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string][]byte)}
}

// Load retrieves a document by name.
func (s *MemStore) Load(ctx context.Context, name string) (*Document, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.docs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding map %q: %w", name, err)
	}
	return &doc, nil
}

// Save stores a document, overwriting any previous version.
func (s *MemStore) Save(ctx context.Context, doc *Document) error {
	if err := ValidateName(doc.Name); err != nil {
		return err
	}
	doc.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding map %q: %w", doc.Name, err)
	}
	s.mu.Lock()
	s.docs[doc.Name] = data
	s.mu.Unlock()
	return nil
}

// Delete removes a document. Deleting an absent name is a no-op.
func (s *MemStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.docs, name)
	s.mu.Unlock()
	return nil
}

// List returns summaries of all stored documents, sorted by name.
func (s *MemStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]Info, 0, len(s.docs))
	for name, data := range s.docs {
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
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

// Close is a no-op for memory stores.
func (s *MemStore) Close() error {
	return nil
}
