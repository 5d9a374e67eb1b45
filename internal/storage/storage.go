package storage

import (
	"context"
	"errors"
	"fmt"
)

// Collection names of the ledger documents.
const (
	Categories = "categories"
	Expenses   = "expenses"
)

// ErrNotFound is returned by Load when the document does not exist.
var ErrNotFound = errors.New("document not found")

// Storage keeps whole JSON documents by name. Every save replaces the
// previous document entirely.
type Storage interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, body []byte) error
	Close() error
}

// Init writes an empty JSON array for each named document that does not
// exist yet and returns the names it created.
func Init(ctx context.Context, s Storage, names ...string) ([]string, error) {
	var created []string
	for _, name := range names {
		_, err := s.Load(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return created, fmt.Errorf("load %s: %w", name, err)
		}
		if err := s.Save(ctx, name, []byte("[]")); err != nil {
			return created, fmt.Errorf("create %s: %w", name, err)
		}
		created = append(created, name)
	}
	return created, nil
}
