package ledger

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/xaenox/wallet-assistant/internal/models"
	"github.com/xaenox/wallet-assistant/internal/storage"
	"go.uber.org/zap/zaptest"
)

func newStore(t *testing.T) *storage.MemoryStorage {
	t.Helper()
	s := storage.NewMemoryStorage()
	if _, err := storage.Init(context.Background(), s, storage.Categories, storage.Expenses); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

func categoryIDs(t *testing.T, r *CategoryRepository) []int {
	t.Helper()
	cats, _, err := r.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ids := make([]int, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	return ids
}

func assertUnique(t *testing.T, ids []int) {
	t.Helper()
	seen := make(map[int]bool)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate category id %d in %v", id, ids)
		}
		seen[id] = true
	}
}

func TestCategoryIDsStayUnique(t *testing.T) {
	ctx := context.Background()
	r := NewCategoryRepository(newStore(t), zaptest.NewLogger(t))
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		id := rng.Intn(8)
		var err error
		switch rng.Intn(3) {
		case 0:
			_, err = r.Add(ctx, models.Category{ID: id, Name: fmt.Sprintf("c%d", i)})
		case 1:
			_, err = r.Update(ctx, models.Category{ID: id, Name: fmt.Sprintf("u%d", i)})
		case 2:
			_, err = r.Delete(ctx, id)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		assertUnique(t, categoryIDs(t, r))
	}
}

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	r := NewCategoryRepository(newStore(t), zaptest.NewLogger(t))

	if ok, err := r.Add(ctx, models.Category{ID: 1, Name: "Food"}); !ok || err != nil {
		t.Fatalf("Add = %v, %v", ok, err)
	}
	if ok, _ := r.Add(ctx, models.Category{ID: 1, Name: "Other"}); ok {
		t.Fatalf("Add with a taken id succeeded")
	}
	if ok, err := r.Update(ctx, models.Category{ID: 1, Name: "Groceries"}); !ok || err != nil {
		t.Fatalf("Update = %v, %v", ok, err)
	}
	got, err := r.LoadAsJSON(ctx)
	if err != nil {
		t.Fatalf("LoadAsJSON: %v", err)
	}
	if got != `[{"id":1,"name":"Groceries"}]` {
		t.Errorf("LoadAsJSON = %s", got)
	}
	if ok, err := r.Delete(ctx, 1); !ok || err != nil {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	if got, _ := r.LoadAsJSON(ctx); got != `[]` {
		t.Errorf("after delete = %s, want []", got)
	}
}

func TestMissingKeyLeavesDocumentUnchanged(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	catDoc := []byte(`[ {"id": 1, "name": "Food"} ]`)
	expDoc := []byte(`[ {"id": "e1", "categoryId": 1, "amount": 3, "date": "2024-05-01T00:00:00", "description": "x"} ]`)
	store.Save(ctx, storage.Categories, catDoc)
	store.Save(ctx, storage.Expenses, expDoc)

	cats := NewCategoryRepository(store, zaptest.NewLogger(t))
	exps := NewExpenseRepository(store, zaptest.NewLogger(t))

	checks := []struct {
		name string
		run  func() (bool, error)
	}{
		{"update category", func() (bool, error) { return cats.Update(ctx, models.Category{ID: 9, Name: "n"}) }},
		{"delete category", func() (bool, error) { return cats.Delete(ctx, 9) }},
		{"update expense", func() (bool, error) { return exps.Update(ctx, models.Expense{ID: "nope", Amount: 1}) }},
		{"delete expense", func() (bool, error) { return exps.Delete(ctx, "nope") }},
	}
	for _, c := range checks {
		ok, err := c.run()
		if ok || err != nil {
			t.Errorf("%s = %v, %v; want false, nil", c.name, ok, err)
		}
	}

	gotCats, _ := store.Load(ctx, storage.Categories)
	gotExps, _ := store.Load(ctx, storage.Expenses)
	if string(gotCats) != string(catDoc) || string(gotExps) != string(expDoc) {
		t.Errorf("documents changed:\n%s\n%s", gotCats, gotExps)
	}
}

func TestAbsentCollection(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	cats := NewCategoryRepository(store, zaptest.NewLogger(t))
	exps := NewExpenseRepository(store, zaptest.NewLogger(t))

	if ok, err := cats.Add(ctx, models.Category{ID: 1, Name: "Food"}); ok || err != nil {
		t.Errorf("Add on absent categories = %v, %v", ok, err)
	}
	if ok, err := cats.Delete(ctx, 1); ok || err != nil {
		t.Errorf("Delete on absent categories = %v, %v", ok, err)
	}
	if _, ok, err := exps.Add(ctx, models.Expense{Amount: 1}); ok || err != nil {
		t.Errorf("Add on absent expenses = %v, %v", ok, err)
	}
	if ok, err := exps.Update(ctx, models.Expense{ID: "x"}); ok || err != nil {
		t.Errorf("Update on absent expenses = %v, %v", ok, err)
	}

	totals, err := exps.TotalsByCategory(ctx)
	if err != nil || len(totals) != 0 {
		t.Errorf("TotalsByCategory on absent = %v, %v", totals, err)
	}
	filtered, err := exps.FilterByRange(ctx, models.DateRange{StartDate: models.NewDate(2024, 1, 1), EndDate: models.NewDate(2024, 12, 31)})
	if err != nil || len(filtered) != 0 {
		t.Errorf("FilterByRange on absent = %v, %v", filtered, err)
	}
	if js, _ := EncodeJSON(totals); js != "[]" {
		t.Errorf("EncodeJSON(empty) = %s, want []", js)
	}

	store.Save(ctx, storage.Expenses, []byte("null"))
	if _, ok, _ := exps.Load(ctx); ok {
		t.Errorf("null document should read as absent")
	}
}

func TestAddExpenseAssignsFreshID(t *testing.T) {
	ctx := context.Background()
	r := NewExpenseRepository(newStore(t), zaptest.NewLogger(t))

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		stored, ok, err := r.Add(ctx, models.Expense{ID: "caller-id", CategoryID: 1, Amount: 1})
		if !ok || err != nil {
			t.Fatalf("Add = %v, %v", ok, err)
		}
		if stored.ID == "caller-id" || stored.ID == "" {
			t.Fatalf("Add kept caller id %q", stored.ID)
		}
		if seen[stored.ID] {
			t.Fatalf("Add reused id %q", stored.ID)
		}
		seen[stored.ID] = true
	}

	expenses, _, _ := r.Load(ctx)
	if len(expenses) != 20 {
		t.Fatalf("stored %d expenses, want 20", len(expenses))
	}
}

func TestUpdateExpenseKeepsID(t *testing.T) {
	ctx := context.Background()
	r := NewExpenseRepository(newStore(t), zaptest.NewLogger(t))
	stored, _, _ := r.Add(ctx, models.Expense{CategoryID: 1, Amount: 5, Date: models.NewDate(2024, 5, 1), Description: "coffee"})

	ok, err := r.Update(ctx, models.Expense{ID: stored.ID, CategoryID: 2, Amount: 7.5, Date: models.NewDate(2024, 5, 2), Description: "tea"})
	if !ok || err != nil {
		t.Fatalf("Update = %v, %v", ok, err)
	}
	expenses, _, _ := r.Load(ctx)
	want := models.Expense{ID: stored.ID, CategoryID: 2, Amount: 7.5, Date: models.NewDate(2024, 5, 2), Description: "tea"}
	if len(expenses) != 1 || expenses[0].ID != want.ID || expenses[0].CategoryID != want.CategoryID ||
		expenses[0].Amount != want.Amount || !expenses[0].Date.Equal(want.Date.Time) || expenses[0].Description != want.Description {
		t.Fatalf("after update = %+v, want %+v", expenses, want)
	}
}

func randomExpenses(rng *rand.Rand, n int) []models.Expense {
	expenses := make([]models.Expense, n)
	start := models.NewDate(2024, time.January, 1)
	for i := range expenses {
		expenses[i] = models.Expense{
			ID:          fmt.Sprintf("e%d", i),
			CategoryID:  rng.Intn(5),
			Amount:      float64(rng.Intn(100000)) / 100,
			Date:        models.Date{Time: start.AddDate(0, 0, rng.Intn(90))},
			Description: "d",
		}
	}
	return expenses
}

func TestFilterByRangeMatchesPredicate(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 30; round++ {
		store := storage.NewMemoryStorage()
		r := NewExpenseRepository(store, zaptest.NewLogger(t))
		expenses := randomExpenses(rng, rng.Intn(40))
		if err := r.Save(ctx, expenses); err != nil {
			t.Fatalf("Save: %v", err)
		}

		d0 := models.Date{Time: models.NewDate(2024, time.January, 1).AddDate(0, 0, rng.Intn(90))}
		d1 := models.Date{Time: d0.AddDate(0, 0, rng.Intn(30)-5)}
		got, err := r.FilterByRange(ctx, models.DateRange{StartDate: d0, EndDate: d1})
		if err != nil {
			t.Fatalf("FilterByRange: %v", err)
		}

		var want []string
		for _, e := range expenses {
			if !e.Date.Before(d0.Time) && !e.Date.After(d1.Time) {
				want = append(want, e.ID)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("round %d: got %d expenses, want %d", round, len(got), len(want))
		}
		for i := range got {
			if got[i].ID != want[i] {
				t.Fatalf("round %d: got[%d] = %s, want %s", round, i, got[i].ID, want[i])
			}
		}
	}
}

func TestFilterByRangeEmptyRange(t *testing.T) {
	ctx := context.Background()
	r := NewExpenseRepository(newStore(t), zaptest.NewLogger(t))
	r.Add(ctx, models.Expense{CategoryID: 1, Amount: 1, Date: models.NewDate(2024, 5, 10)})

	inverted := models.DateRange{StartDate: models.NewDate(2024, 5, 20), EndDate: models.NewDate(2024, 5, 1)}
	got, err := r.FilterByRange(ctx, inverted)
	if err != nil || len(got) != 0 {
		t.Fatalf("FilterByRange(inverted) = %v, %v", got, err)
	}
}

func TestTotalsMatchBruteForce(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(11))

	for round := 0; round < 30; round++ {
		store := storage.NewMemoryStorage()
		r := NewExpenseRepository(store, zaptest.NewLogger(t))
		expenses := randomExpenses(rng, rng.Intn(50))
		if err := r.Save(ctx, expenses); err != nil {
			t.Fatalf("Save: %v", err)
		}
		before, _ := store.Load(ctx, storage.Expenses)

		totals, err := r.TotalsByCategory(ctx)
		if err != nil {
			t.Fatalf("TotalsByCategory: %v", err)
		}
		want := make(map[int]float64)
		for _, e := range expenses {
			want[e.CategoryID] += e.Amount
		}
		if len(totals) != len(want) {
			t.Fatalf("round %d: %d groups, want %d", round, len(totals), len(want))
		}
		for _, total := range totals {
			if math.Abs(total.TotalAmount-want[total.CategoryID]) > 1e-6 {
				t.Errorf("category %d total = %v, want %v", total.CategoryID, total.TotalAmount, want[total.CategoryID])
			}
		}

		after, _ := store.Load(ctx, storage.Expenses)
		if string(before) != string(after) {
			t.Fatalf("aggregation rewrote the expenses document")
		}
	}
}

func TestTotalsByCategoryAndRange(t *testing.T) {
	ctx := context.Background()
	r := NewExpenseRepository(newStore(t), zaptest.NewLogger(t))
	for _, e := range []models.Expense{
		{CategoryID: 1, Amount: 0.1, Date: models.NewDate(2024, 5, 1)},
		{CategoryID: 1, Amount: 0.2, Date: models.NewDate(2024, 5, 31)},
		{CategoryID: 2, Amount: 10, Date: models.NewDate(2024, 5, 15)},
		{CategoryID: 2, Amount: 99, Date: models.NewDate(2024, 6, 1)},
	} {
		if _, _, err := r.Add(ctx, e); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	totals, err := r.TotalsByCategoryAndRange(ctx, models.DateRange{StartDate: models.NewDate(2024, 5, 1), EndDate: models.NewDate(2024, 5, 31)})
	if err != nil {
		t.Fatalf("TotalsByCategoryAndRange: %v", err)
	}
	js, _ := EncodeJSON(totals)
	if js != `[{"categoryId":1,"totalAmount":0.3},{"categoryId":2,"totalAmount":10}]` {
		t.Errorf("totals = %s", js)
	}
}
