// Package storage persists mind map documents across sessions.
//
// A document is a named, uuid-tagged envelope around a [mindmap.Snapshot].
// The package defines the [Store] interface and four backends:
//   - memory: in-process storage for tests and throwaway sessions
//   - file: one JSON file per document, for single-user CLI use
//   - redis: shared storage for multi-instance deployments
//   - mongo: durable storage with queryable documents
//
// # Usage
//
// Open a store from configuration and load a document:
//
//	store, err := storage.Open(ctx, storage.Config{Backend: "file"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	doc, err := store.Load(ctx, "default")
//	if errors.Is(err, storage.ErrNotFound) {
//	    doc = storage.NewDocument("default")
//	}
//
// Stores treat a document as an opaque blob keyed by name; they never
// inspect or repair the contained map.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/4TheSolutions/nest/pkg/mindmap"
)

var (
	// ErrNotFound is returned by [Store.Load] when no document with the
	// given name exists.
	ErrNotFound = errors.New("map not found")

	// ErrInvalidName is returned when a document name contains characters
	// outside [A-Za-z0-9._-] or is empty. Names double as file names and
	// key suffixes, so they are restricted uniformly across backends.
	ErrInvalidName = errors.New("invalid map name")
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName reports whether name is usable as a document name.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Document is the persisted envelope around one mind map.
type Document struct {
	ID        uuid.UUID        `json:"id" bson:"_id"`
	Name      string           `json:"name" bson:"name"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" bson:"updated_at"`
	Map       mindmap.Snapshot `json:"map" bson:"map"`
}

// NewDocument creates an empty document with a fresh id.
func NewDocument(name string) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Info summarizes a stored document for listings.
type Info struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Nodes     int       `json:"nodes"`
}

// Store is the interface for document storage backends.
// Implementations are safe for concurrent use.
type Store interface {
	// Load retrieves a document by name.
	// Returns ErrNotFound if no such document exists.
	Load(ctx context.Context, name string) (*Document, error)

	// Save stores a document under its name, overwriting any previous
	// version and refreshing UpdatedAt.
	Save(ctx context.Context, doc *Document) error

	// Delete removes a document. Deleting an absent name is a no-op.
	Delete(ctx context.Context, name string) error

	// List returns summaries of all stored documents, sorted by name.
	List(ctx context.Context) ([]Info, error)

	// Close releases backend resources.
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	// Backend is one of "memory", "file", "redis" or "mongo".
	// Empty defaults to "file".
	Backend string `toml:"backend" json:"backend"`

	// Path is the documents directory for the file backend.
	// Empty defaults to ~/.config/nest/maps.
	Path string `toml:"path" json:"path"`

	// Addr, Password and DB configure the redis backend.
	Addr     string `toml:"addr" json:"addr"`
	Password string `toml:"password" json:"password,omitempty"`
	DB       int    `toml:"db" json:"db"`

	// URI and Database configure the mongo backend.
	URI      string `toml:"uri" json:"uri"`
	Database string `toml:"database" json:"database"`
}

// Open creates the backend selected by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Path)
	case "memory":
		return NewMemStore(), nil
	case "redis":
		return NewRedisStore(ctx, cfg)
	case "mongo":
		return NewMongoStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
