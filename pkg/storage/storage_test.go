package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/4TheSolutions/nest/pkg/mindmap"
)

func testSnapshot(t *testing.T, label string) mindmap.Snapshot {
	t.Helper()
	m := mindmap.New()
	root := m.AddRoot(label)
	if _, err := m.AddChildTo(root, "child"); err != nil {
		t.Fatalf("AddChildTo: %v", err)
	}
	return m.Snapshot()
}

// backends lists the stores exercised by the shared tests. Redis and
// mongo implement the same interface but need live servers.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return map[string]Store{
		"file":   fs,
		"memory": NewMemStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			doc := NewDocument("alpha")
			doc.Map = testSnapshot(t, "hello")
			if err := store.Save(ctx, doc); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if doc.UpdatedAt.IsZero() {
				t.Error("Save did not refresh UpdatedAt")
			}

			got, err := store.Load(ctx, "alpha")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.ID != doc.ID {
				t.Errorf("ID = %s, want %s", got.ID, doc.ID)
			}
			if got.Name != "alpha" {
				t.Errorf("Name = %q, want %q", got.Name, "alpha")
			}
			if len(got.Map.Nodes) != 2 {
				t.Errorf("restored %d nodes, want 2", len(got.Map.Nodes))
			}
			if got.Map.Nodes[0].Label != "hello" {
				t.Errorf("root label = %q, want %q", got.Map.Nodes[0].Label, "hello")
			}
		})
	}
}

func TestStoreLoadMissing(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Load(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load(missing) = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			doc := NewDocument("beta")
			doc.Map = testSnapshot(t, "first")
			if err := store.Save(ctx, doc); err != nil {
				t.Fatalf("Save: %v", err)
			}
			doc.Map = testSnapshot(t, "second")
			if err := store.Save(ctx, doc); err != nil {
				t.Fatalf("Save again: %v", err)
			}

			got, err := store.Load(ctx, "beta")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Map.Nodes[0].Label != "second" {
				t.Errorf("root label = %q, want %q", got.Map.Nodes[0].Label, "second")
			}
		})
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			doc := NewDocument("gamma")
			if err := store.Save(ctx, doc); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if err := store.Delete(ctx, "gamma"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := store.Load(ctx, "gamma"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load(deleted) = %v, want ErrNotFound", err)
			}
			// Absent names delete without error.
			if err := store.Delete(ctx, "gamma"); err != nil {
				t.Errorf("Delete(absent) = %v, want nil", err)
			}
		})
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, docName := range []string{"zebra", "apple", "mango"} {
				doc := NewDocument(docName)
				doc.Map = testSnapshot(t, docName)
				if err := store.Save(ctx, doc); err != nil {
					t.Fatalf("Save(%s): %v", docName, err)
				}
			}

			infos, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(infos) != 3 {
				t.Fatalf("List returned %d entries, want 3", len(infos))
			}
			for i, want := range []string{"apple", "mango", "zebra"} {
				if infos[i].Name != want {
					t.Errorf("infos[%d].Name = %q, want %q", i, infos[i].Name, want)
				}
				if infos[i].Nodes != 2 {
					t.Errorf("infos[%d].Nodes = %d, want 2", i, infos[i].Nodes)
				}
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"default", true},
		{"my-map_2.bak", true},
		{"A1", true},
		{"", false},
		{".hidden", false},
		{"../escape", false},
		{"with space", false},
		{"sla/sh", false},
	}
	for _, tt := range tests {
		err := ValidateName(tt.name)
		if tt.valid && err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", tt.name, err)
		}
		if !tt.valid && !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateName(%q) = %v, want ErrInvalidName", tt.name, err)
		}
	}
}

func TestStoreRejectsInvalidNames(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			doc := NewDocument("../escape")
			if err := store.Save(ctx, doc); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Save = %v, want ErrInvalidName", err)
			}
			if _, err := store.Load(ctx, ""); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Load = %v, want ErrInvalidName", err)
			}
		})
	}
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if fs.Dir() != dir {
		t.Errorf("Dir = %q, want %q", fs.Dir(), dir)
	}

	ctx := context.Background()
	doc := NewDocument("plans")
	doc.Map = testSnapshot(t, "plans")
	if err := fs.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "plans.json")); err != nil {
		t.Errorf("expected plans.json on disk: %v", err)
	}
}

func TestFileStoreListSkipsStrayFiles(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	ctx := context.Background()
	doc := NewDocument("real")
	if err := fs.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	infos, err := fs.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "real" {
		t.Errorf("List = %+v, want just %q", infos, "real")
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Config{Backend: "memory"})
	if err != nil {
		t.Fatalf("Open(memory): %v", err)
	}
	if _, ok := store.(*MemStore); !ok {
		t.Errorf("Open(memory) = %T, want *MemStore", store)
	}

	store, err = Open(ctx, Config{Backend: "file", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(file): %v", err)
	}
	if _, ok := store.(*FileStore); !ok {
		t.Errorf("Open(file) = %T, want *FileStore", store)
	}

	if _, err := Open(ctx, Config{Backend: "postgres"}); err == nil {
		t.Error("Open(postgres) succeeded, want error")
	}
}
