package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newSQLite(t *testing.T) Storage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "ledger.db"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	return s
}

func TestStorageBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) Storage{
		"memory": func(t *testing.T) Storage { return NewMemoryStorage() },
		"file":   func(t *testing.T) Storage { return NewFileStorage(filepath.Join(t.TempDir(), "data")) },
		"sqlite": newSQLite,
	}
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			defer s.Close()

			if _, err := s.Load(ctx, Categories); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Load on empty store: err = %v, want ErrNotFound", err)
			}

			if err := s.Save(ctx, Categories, []byte(`[{"id":1,"name":"Food"}]`)); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if err := s.Save(ctx, Categories, []byte(`[{"id":2,"name":"Rent"}]`)); err != nil {
				t.Fatalf("Save overwrite: %v", err)
			}
			got, err := s.Load(ctx, Categories)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if string(got) != `[{"id":2,"name":"Rent"}]` {
				t.Errorf("Load = %s, want the last saved document", got)
			}

			if _, err := s.Load(ctx, Expenses); !errors.Is(err, ErrNotFound) {
				t.Errorf("documents are not independent: err = %v", err)
			}
		})
	}
}

func TestMemoryStorageCopiesBodies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	body := []byte(`[]`)
	if err := s.Save(ctx, Expenses, body); err != nil {
		t.Fatalf("Save: %v", err)
	}
	body[0] = 'x'
	got, _ := s.Load(ctx, Expenses)
	got[1] = 'y'
	again, _ := s.Load(ctx, Expenses)
	if string(again) != `[]` {
		t.Fatalf("stored document was mutated through a caller slice: %s", again)
	}
}

func TestFileStorageLayout(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStorage(dir)
	if err := s.Save(context.Background(), Expenses, []byte(`[]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "expenses.json")); err != nil {
		t.Fatalf("expected expenses.json in data dir: %v", err)
	}
}

func TestInit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	if err := s.Save(ctx, Categories, []byte(`[{"id":1,"name":"Food"}]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	created, err := Init(ctx, s, Categories, Expenses)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if len(created) != 1 || created[0] != Expenses {
		t.Fatalf("created = %v, want [expenses]", created)
	}
	cats, _ := s.Load(ctx, Categories)
	if string(cats) != `[{"id":1,"name":"Food"}]` {
		t.Errorf("Init overwrote an existing document: %s", cats)
	}
	exps, _ := s.Load(ctx, Expenses)
	if string(exps) != `[]` {
		t.Errorf("expenses = %s, want []", exps)
	}

	created, err = Init(ctx, s, Categories, Expenses)
	if err != nil || len(created) != 0 {
		t.Errorf("second Init created %v, err %v", created, err)
	}
}
