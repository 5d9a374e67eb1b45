package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xaenox/wallet-assistant/internal/models"
	"github.com/xaenox/wallet-assistant/internal/storage"
	"go.uber.org/zap"
)

// ExpenseRepository manages the expenses document.
type ExpenseRepository struct {
	store  storage.Storage
	newID  func() string
	logger *zap.Logger
}

func NewExpenseRepository(store storage.Storage, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		store:  store,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// Load returns the expenses; ok is false when the collection is absent.
func (r *ExpenseRepository) Load(ctx context.Context) (expenses []models.Expense, ok bool, err error) {
	return loadCollection[models.Expense](ctx, r.store, storage.Expenses)
}

func (r *ExpenseRepository) Save(ctx context.Context, expenses []models.Expense) error {
	return saveCollection(ctx, r.store, storage.Expenses, expenses)
}

// Add stores the expense under a freshly generated id, ignoring any id the
// caller set. The stored expense is returned.
func (r *ExpenseRepository) Add(ctx context.Context, expense models.Expense) (models.Expense, bool, error) {
	expenses, ok, err := r.Load(ctx)
	if err != nil || !ok {
		return models.Expense{}, false, err
	}
	expense.ID = r.newID()
	expenses = append(expenses, expense)
	if err := r.Save(ctx, expenses); err != nil {
		return models.Expense{}, false, err
	}
	r.logger.Debug("Expense added",
		zap.String("expense_id", expense.ID),
		zap.Int("category_id", expense.CategoryID))
	return expense, true, nil
}

// Update replaces every field but the id of the matching expense.
func (r *ExpenseRepository) Update(ctx context.Context, expense models.Expense) (bool, error) {
	expenses, ok, err := r.Load(ctx)
	if err != nil || !ok {
		return false, err
	}
	for i := range expenses {
		if expenses[i].ID != expense.ID {
			continue
		}
		expenses[i].CategoryID = expense.CategoryID
		expenses[i].Amount = expense.Amount
		expenses[i].Date = expense.Date
		expenses[i].Description = expense.Description
		if err := r.Save(ctx, expenses); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id string) (bool, error) {
	expenses, ok, err := r.Load(ctx)
	if err != nil || !ok {
		return false, err
	}
	for i, e := range expenses {
		if e.ID == id {
			expenses = append(expenses[:i], expenses[i+1:]...)
			if err := r.Save(ctx, expenses); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// FilterByRange returns the expenses dated within rng, in stored order.
func (r *ExpenseRepository) FilterByRange(ctx context.Context, rng models.DateRange) ([]models.Expense, error) {
	expenses, _, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return filterByRange(expenses, rng), nil
}

// TotalsByCategory sums every expense per category.
func (r *ExpenseRepository) TotalsByCategory(ctx context.Context) ([]models.TotalExpensesByCategory, error) {
	expenses, _, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return totalsByCategory(expenses), nil
}

// TotalsByCategoryAndRange sums the expenses dated within rng per category.
func (r *ExpenseRepository) TotalsByCategoryAndRange(ctx context.Context, rng models.DateRange) ([]models.TotalExpensesByCategory, error) {
	expenses, _, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return totalsByCategory(filterByRange(expenses, rng)), nil
}

func filterByRange(expenses []models.Expense, rng models.DateRange) []models.Expense {
	result := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if rng.Contains(e.Date) {
			result = append(result, e)
		}
	}
	return result
}

// totalsByCategory groups in first-seen category order.
func totalsByCategory(expenses []models.Expense) []models.TotalExpensesByCategory {
	sums := make(map[int]decimal.Decimal)
	order := make([]int, 0)
	for _, e := range expenses {
		sum, seen := sums[e.CategoryID]
		if !seen {
			order = append(order, e.CategoryID)
		}
		sums[e.CategoryID] = sum.Add(decimal.NewFromFloat(e.Amount))
	}

	result := make([]models.TotalExpensesByCategory, 0, len(order))
	for _, id := range order {
		result = append(result, models.TotalExpensesByCategory{
			CategoryID:  id,
			TotalAmount: sums[id].InexactFloat64(),
		})
	}
	return result
}
