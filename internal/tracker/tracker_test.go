package tracker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

var testNow = time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T, opts ...Option) *Tracker {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	trk, err := New(context.Background(), storage.NewMemoryStore(), opts...)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return trk
}

func cents(dollars float64) core.Money {
	return core.Money{Cents: int64(dollars * 100)}
}

func TestAddExpenseNormalizesCategory(t *testing.T) {
	ctx := context.Background()
	trk := newTestTracker(t)

	if _, err := trk.AddExpense(ctx, cents(10), "  dining OUT ", "2025-08-01", " coffee "); err != nil {
		t.Fatalf("add: %v", err)
	}
	summary, _ := trk.ExpenseSummary()
	if len(summary) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(summary))
	}
	e := summary[0].Expense
	if e.Category != "Dining out" {
		t.Fatalf("category = %q", e.Category)
	}
	if e.Tag != "coffee" {
		t.Fatalf("tag = %q", e.Tag)
	}
	if e.ID == "" {
		t.Fatalf("expected surrogate ID")
	}
}

func TestAddExpenseRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	trk := newTestTracker(t)

	if _, err := trk.AddExpense(ctx, cents(10), "Food", "not-a-date", ""); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := trk.AddExpense(ctx, core.Money{}, "Food", "2025-08-01", ""); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := trk.AddExpense(ctx, cents(10), "   ", "2025-08-01", ""); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestBudgetAlertOnOverspend(t *testing.T) {
	ctx := context.Background()
	trk := newTestTracker(t)

	if _, err := trk.SetBudget(ctx, "Food", cents(50)); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	msg, err := trk.AddExpense(ctx, cents(100), "food", "2025-08-01", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(msg, "BUDGET ALERT") {
		t.Fatalf("expected alert in %q", msg)
	}
	if !strings.Contains(msg, "by $50.00") {
		t.Fatalf("alert should report $50.00 overage, got %q", msg)
	}
}

func TestNoAlertWithinBudget(t *testing.T) {
	ctx := context.Background()
	trk := newTestTracker(t)

	if _, err := trk.SetBudget(ctx, "Food", cents(200)); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	msg, err := trk.AddExpense(ctx, cents(100), "Food", "2025-08-01", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if strings.Contains(msg, "BUDGET ALERT") {
		t.Fatalf("unexpected alert in %q", msg)
	}

	// Spending in another month must not count against this month's budget.
	msg, err = trk.AddExpense(ctx, cents(500), "Food", "2025-07-01", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if strings.Contains(msg, "BUDGET ALERT") {
		t.Fatalf("July spend alerted against August budget: %q", msg)
	}
}

func TestRemoveExpenseRestoresTotal(t *testing.T) {
	ctx := context.Background()
	trk := newTestTracker(t)

	if _, err := trk.AddExpense(ctx, cents(750), "Rent", "2025-08-01", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, before := trk.ExpenseSummary()

	if _, err := trk.AddExpense(ctx, cents(55.50), "Food", "2025-08-15", "Dining Out"); err != nil {
		t.Fatalf("add: %v", err)
	}

	summary, _ := trk.ExpenseSummary()
	var foodIndex = -1
	for _, ie := range summary {
		if ie.Expense.Category == "Food" {
			foodIndex = ie.Index
		}
	}
	if foodIndex == -1 {
		t.Fatalf("food expense not found in summary")
	}

	msg, err := trk.RemoveExpense(ctx, foodIndex)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.Contains(msg, "$55.50") || !strings.Contains(msg, "Food") {
		t.Fatalf("unexpected removal message %q", msg)
	}

	_, after := trk.ExpenseSummary()
	if after != before {
		t.Fatalf("total after remove = %v, want %v", after, before)
	}
}

func TestRemoveInvalidIndex(t *testing.T) {
	ctx := context.Background()
	trk := newTestTracker(t)

	if _, err := trk.RemoveExpense(ctx, 0); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}
	if _, err := trk.RemoveIncome(ctx, -1); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}
}

func TestRemoveByID(t *testing.T) {
	ctx := context.Background()
	trk := newTestTracker(t)

	if _, err := trk.AddExpense(ctx, cents(10), "Food", "2025-08-01", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	summary, _ := trk.ExpenseSummary()
	id := summary[0].Expense.ID

	if _, err := trk.RemoveExpenseByID(ctx, id); err != nil {
		t.Fatalf("remove by id: %v", err)
	}
	if _, err := trk.RemoveExpenseByID(ctx, id); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := trk.RemoveIncomeByID(ctx, "missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestDeleteBudget(t *testing.T) {
	ctx := context.Background()
	trk := newTestTracker(t)

	if _, err := trk.DeleteBudget(ctx, "Food"); !errors.Is(err, ErrBudgetNotFound) {
		t.Fatalf("expected ErrBudgetNotFound, got %v", err)
	}
	if _, err := trk.SetBudget(ctx, "food", cents(100)); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Lookup uses the same normalization as the write path.
	if _, err := trk.DeleteBudget(ctx, "  FOOD "); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()
	trk := newTestTracker(t)

	if _, err := trk.DeleteCategory(ctx, "Food"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}

	for _, date := range []string{"2025-07-01", "2025-08-01", "2025-08-10"} {
		if _, err := trk.AddExpense(ctx, cents(10), "Food", date, ""); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if _, err := trk.AddExpense(ctx, cents(750), "Rent", "2025-08-01", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := trk.SetBudget(ctx, "Food", cents(100)); err != nil {
		t.Fatalf("set budget: %v", err)
	}

	msg, err := trk.DeleteCategory(ctx, "food")
	if err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if !strings.Contains(msg, "3 expense(s)") || !strings.Contains(msg, "Budget limit also removed") {
		t.Fatalf("unexpected message %q", msg)
	}

	summary, total := trk.ExpenseSummary()
	if len(summary) != 1 || summary[0].Expense.Category != "Rent" {
		t.Fatalf("expected only Rent to remain, got %+v", summary)
	}
	if total != cents(750) {
		t.Fatalf("total = %v", total)
	}
	if _, err := trk.DeleteBudget(ctx, "Food"); !errors.Is(err, ErrBudgetNotFound) {
		t.Fatalf("budget should be gone, got %v", err)
	}
}

func TestPersistsOnEveryMutation(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	trk, err := New(ctx, store, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := trk.AddExpense(ctx, cents(10), "Food", "2025-08-01", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := trk.AddIncome(ctx, cents(3000), "Salary", "2025-08-01"); err != nil {
		t.Fatalf("add income: %v", err)
	}
	if _, err := trk.SetBudget(ctx, "Food", cents(50)); err != nil {
		t.Fatalf("set budget: %v", err)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Expenses) != 1 || len(snap.Incomes) != 1 || len(snap.Budgets) != 1 {
		t.Fatalf("snapshot not persisted: %+v", snap)
	}

	// A fresh tracker over the same store sees the same ledger.
	trk2, err := New(ctx, store, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	summary, total := trk2.ExpenseSummary()
	if len(summary) != 1 || total != cents(10) {
		t.Fatalf("reloaded summary wrong: %+v total %v", summary, total)
	}
}

type capturingPublisher struct {
	kinds []string
	ids   []string
	err   error
}

func (p *capturingPublisher) PublishLedgerEvent(_ context.Context, kind, id string) error {
	p.kinds = append(p.kinds, kind)
	p.ids = append(p.ids, id)
	return p.err
}

func TestPublishesLedgerEvents(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{}
	trk := newTestTracker(t, WithPublisher(pub))

	if _, err := trk.AddExpense(ctx, cents(10), "Food", "2025-08-01", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := trk.AddIncome(ctx, cents(3000), "Salary", "2025-08-01"); err != nil {
		t.Fatalf("add income: %v", err)
	}

	if len(pub.kinds) != 2 || pub.kinds[0] != EventExpenseAdded || pub.kinds[1] != EventIncomeAdded {
		t.Fatalf("unexpected events: %v", pub.kinds)
	}
}

func TestPublisherErrorDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{err: errors.New("broker down")}
	trk := newTestTracker(t, WithPublisher(pub))

	if _, err := trk.AddExpense(ctx, cents(10), "Food", "2025-08-01", ""); err != nil {
		t.Fatalf("mutation must not fail on publish error: %v", err)
	}
	summary, _ := trk.ExpenseSummary()
	if len(summary) != 1 {
		t.Fatalf("expense not recorded")
	}
}
