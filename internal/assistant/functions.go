package assistant

import (
	"context"

	"github.com/xaenox/wallet-assistant/internal/ledger"
	"github.com/xaenox/wallet-assistant/internal/models"
	"go.uber.org/zap"
)

// Function names offered to the model.
const (
	FnGetCategories                          = "GetCategories"
	FnAddCategory                            = "AddCategory"
	FnUpdateCategory                         = "UpdateCategory"
	FnDeleteCategory                         = "DeleteCategory"
	FnFilterExpenses                         = "FilterExpenses"
	FnGetTotalExpensesByCategory             = "GetTotalExpensesByCategory"
	FnGetTotalExpensesByCategoryAndDateRange = "GetTotalExpensesByCategoryAndDateRange"
	FnAddExpense                             = "AddExpense"
	FnUpdateExpense                          = "UpdateExpense"
	FnDeleteExpense                          = "DeleteExpense"
)

func outcome(ok bool, success, failure string) string {
	if ok {
		return success
	}
	return failure
}

// NewLedgerCatalog builds the catalog of ledger operations in the order they
// are presented to the model.
func NewLedgerCatalog(categories *ledger.CategoryRepository, expenses *ledger.ExpenseRepository, logger *zap.Logger) *Catalog {
	return NewCatalog(logger,
		newFunction(FnGetCategories,
			"Get all categories from data store",
			"Failed to get categories", logger,
			func(ctx context.Context, _ noArgs) (string, error) {
				return categories.LoadAsJSON(ctx)
			}),

		newFunction(FnAddCategory,
			"Add a new category to data store",
			"Failed to add category", logger,
			func(ctx context.Context, args categoryArgs) (string, error) {
				ok, err := categories.Add(ctx, models.Category{ID: args.ID, Name: args.Name})
				return outcome(ok, "Category added successfully", "Failed to add category"), err
			}),

		newFunction(FnUpdateCategory,
			"Update existing category to data store",
			"Failed to update category", logger,
			func(ctx context.Context, args categoryArgs) (string, error) {
				ok, err := categories.Update(ctx, models.Category{ID: args.ID, Name: args.Name})
				return outcome(ok, "Category updated successfully", "Failed to update category"), err
			}),

		newFunction(FnDeleteCategory,
			"Delete a category from data store",
			"Failed to delete category", logger,
			func(ctx context.Context, args categoryIDArgs) (string, error) {
				ok, err := categories.Delete(ctx, args.ID)
				return outcome(ok, "Category deleted successfully", "Failed to delete category"), err
			}),

		newFunction(FnFilterExpenses,
			"Get list of expenses in detail, include id, description, date, amount, filtered by date start and date end, date range cannot be more than 31 days",
			"Failed to filter expenses", logger,
			func(ctx context.Context, args dateRangeArgs) (string, error) {
				result, err := expenses.FilterByRange(ctx, args.toRange())
				if err != nil {
					return "", err
				}
				return ledger.EncodeJSON(result)
			}),

		newFunction(FnGetTotalExpensesByCategory,
			"Retrieves summary of the total expenses by category",
			"Failed to get total expenses by category", logger,
			func(ctx context.Context, _ noArgs) (string, error) {
				result, err := expenses.TotalsByCategory(ctx)
				if err != nil {
					return "", err
				}
				return ledger.EncodeJSON(result)
			}),

		newFunction(FnGetTotalExpensesByCategoryAndDateRange,
			"Retrieves summary of the total expenses by category and within a specified date range",
			"Failed to get total expenses by category and date range", logger,
			func(ctx context.Context, args dateRangeArgs) (string, error) {
				result, err := expenses.TotalsByCategoryAndRange(ctx, args.toRange())
				if err != nil {
					return "", err
				}
				return ledger.EncodeJSON(result)
			}),

		newFunction(FnAddExpense,
			"Add a new expense to data store",
			"Failed to add expense", logger,
			func(ctx context.Context, args expenseArgs) (string, error) {
				_, ok, err := expenses.Add(ctx, args.toExpense(""))
				return outcome(ok, "expense added successfully", "Failed to add expense"), err
			}),

		newFunction(FnUpdateExpense,
			"Update existing expense to data store",
			"Failed to update expense", logger,
			func(ctx context.Context, args updateExpenseArgs) (string, error) {
				expense := expenseArgs{
					CategoryID:  args.CategoryID,
					Amount:      args.Amount,
					Date:        args.Date,
					Description: args.Description,
				}.toExpense(args.ID)
				ok, err := expenses.Update(ctx, expense)
				return outcome(ok, "expense updated successfully", "Failed to update expense"), err
			}),

		newFunction(FnDeleteExpense,
			"Delete an expense from data store",
			"Failed to delete expense", logger,
			func(ctx context.Context, args expenseIDArgs) (string, error) {
				ok, err := expenses.Delete(ctx, args.ID)
				return outcome(ok, "expense deleted successfully", "Failed to delete expense"), err
			}),
	)
}
