package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xaenox/wallet-assistant/internal/storage"
)

// loadCollection decodes a whole collection. ok is false when the document
// is absent or holds JSON null.
func loadCollection[T any](ctx context.Context, store storage.Storage, name string) (items []T, ok bool, err error) {
	body, err := store.Load(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false, nil
	}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}

func saveCollection[T any](ctx context.Context, store storage.Storage, name string, items []T) error {
	if items == nil {
		items = []T{}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return store.Save(ctx, name, body)
}

// EncodeJSON serializes a query result for the language model. Nil slices
// are written as [] so an absent collection reads as an empty result.
func EncodeJSON[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
