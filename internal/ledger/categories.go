package ledger

import (
	"context"

	"github.com/xaenox/wallet-assistant/internal/models"
	"github.com/xaenox/wallet-assistant/internal/storage"
	"go.uber.org/zap"
)

// CategoryRepository manages the categories document. Every mutation loads
// the whole collection and rewrites it.
type CategoryRepository struct {
	store  storage.Storage
	logger *zap.Logger
}

func NewCategoryRepository(store storage.Storage, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{store: store, logger: logger}
}

// Load returns the categories; ok is false when the collection is absent.
func (r *CategoryRepository) Load(ctx context.Context) (categories []models.Category, ok bool, err error) {
	return loadCollection[models.Category](ctx, r.store, storage.Categories)
}

// LoadAsJSON returns the categories as JSON, [] when the collection is absent.
func (r *CategoryRepository) LoadAsJSON(ctx context.Context) (string, error) {
	categories, _, err := r.Load(ctx)
	if err != nil {
		return "", err
	}
	return EncodeJSON(categories)
}

func (r *CategoryRepository) Save(ctx context.Context, categories []models.Category) error {
	return saveCollection(ctx, r.store, storage.Categories, categories)
}

// Add appends the category. It reports false when the collection is absent
// or the id is already taken.
func (r *CategoryRepository) Add(ctx context.Context, category models.Category) (bool, error) {
	categories, ok, err := r.Load(ctx)
	if err != nil || !ok {
		return false, err
	}
	for _, c := range categories {
		if c.ID == category.ID {
			r.logger.Info("Category id already in use", zap.Int("category_id", category.ID))
			return false, nil
		}
	}
	categories = append(categories, category)
	if err := r.Save(ctx, categories); err != nil {
		return false, err
	}
	return true, nil
}

// Update renames the category with the same id.
func (r *CategoryRepository) Update(ctx context.Context, category models.Category) (bool, error) {
	categories, ok, err := r.Load(ctx)
	if err != nil || !ok {
		return false, err
	}
	for i := range categories {
		if categories[i].ID == category.ID {
			categories[i].Name = category.Name
			if err := r.Save(ctx, categories); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int) (bool, error) {
	categories, ok, err := r.Load(ctx)
	if err != nil || !ok {
		return false, err
	}
	for i, c := range categories {
		if c.ID == id {
			categories = append(categories[:i], categories[i+1:]...)
			if err := r.Save(ctx, categories); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}
