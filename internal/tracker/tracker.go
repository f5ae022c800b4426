// Package tracker implements the in-memory ledger: expense and income
// records in insertion order plus per-category monthly budget limits.
// Every mutation persists the whole snapshot through a storage.Store and
// publishes a best-effort ledger event.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Event kinds published after successful mutations.
const (
	EventExpenseAdded = "expense_added"
	EventIncomeAdded  = "income_added"
)

var (
	ErrInvalidIndex     = errors.New("invalid record index")
	ErrRecordNotFound   = errors.New("record not found")
	ErrBudgetNotFound   = errors.New("no budget found for category")
	ErrCategoryNotFound = errors.New("category not found in expenses or budgets")
)

// EventPublisher receives a notification after a record is added. A nil
// publisher is allowed; publish failures never fail the mutation.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, kind, recordID string) error
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock injects the reference clock used for "current month/year"
// filtering and budget alerts. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithPublisher attaches an event publisher for add mutations.
func WithPublisher(pub EventPublisher) Option {
	return func(t *Tracker) { t.events = pub }
}

// Tracker is the single-user ledger. A plain mutex serializes request
// handlers; persistence is last-write-wins whole-document overwrite.
type Tracker struct {
	mu     sync.Mutex
	store  storage.Store
	events EventPublisher
	now    func() time.Time

	expenses []core.Expense
	incomes  []core.Income
	budgets  map[string]core.Money
}

// New loads the persisted snapshot and returns a ready tracker.
func New(ctx context.Context, store storage.Store, opts ...Option) (*Tracker, error) {
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	t := &Tracker{
		store:    store,
		now:      time.Now,
		expenses: snap.Expenses,
		incomes:  snap.Incomes,
		budgets:  snap.Budgets,
	}
	for _, opt := range opts {
		opt(t)
	}

	// Records persisted before surrogate IDs existed get one on load.
	changed := false
	for i := range t.expenses {
		if t.expenses[i].ID == "" {
			t.expenses[i].ID = uuid.NewString()
			changed = true
		}
	}
	for i := range t.incomes {
		if t.incomes[i].ID == "" {
			t.incomes[i].ID = uuid.NewString()
			changed = true
		}
	}
	if changed {
		t.persist(ctx)
	}

	slog.InfoContext(ctx, "Ledger loaded",
		"expenses", len(t.expenses),
		"incomes", len(t.incomes),
		"budgets", len(t.budgets))
	return t, nil
}

// persist writes the current snapshot. Must be called with the mutex held.
// Save failures are logged and swallowed: every mutation stays local and
// recoverable, the next successful save writes the full state anyway.
func (t *Tracker) persist(ctx context.Context) {
	snap := storage.Snapshot{
		Expenses: append([]core.Expense(nil), t.expenses...),
		Incomes:  append([]core.Income(nil), t.incomes...),
		Budgets:  make(map[string]core.Money, len(t.budgets)),
	}
	for k, v := range t.budgets {
		snap.Budgets[k] = v
	}
	if err := t.store.Save(ctx, snap); err != nil {
		slog.ErrorContext(ctx, "Failed to persist ledger", "error", err)
	}
}

func (t *Tracker) publish(ctx context.Context, kind, id string) {
	if t.events == nil {
		return
	}
	if err := t.events.PublishLedgerEvent(ctx, kind, id); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger event",
			"kind", kind, "record_id", id, "error", err)
	}
}

// AddExpense normalizes the category and tag, appends the record and
// persists. The returned message carries a budget alert when month-to-date
// spending for the category, after this add, strictly exceeds a positive
// configured limit.
func (t *Tracker) AddExpense(ctx context.Context, amount core.Money, category, date, tag string) (string, error) {
	parsedDate, err := core.ParseDate(date)
	if err != nil {
		return "", err
	}

	exp := core.Expense{
		ID:       uuid.NewString(),
		Amount:   amount,
		Category: core.Normalize(category),
		Date:     parsedDate,
		Tag:      strings.TrimSpace(tag),
	}
	if err := exp.Validate(); err != nil {
		return "", err
	}

	t.mu.Lock()
	t.expenses = append(t.expenses, exp)
	alert := t.budgetAlertLocked(exp.Category)
	t.persist(ctx)
	t.mu.Unlock()

	t.publish(ctx, EventExpenseAdded, exp.ID)

	slog.InfoContext(ctx, "Expense added",
		"record_id", exp.ID,
		"category", exp.Category,
		"amount_cents", exp.Amount.Cents,
		"date", exp.Date.String())

	msg := "Expense added successfully."
	if alert != "" {
		msg += " " + alert
	}
	return msg, nil
}

// budgetAlertLocked checks current-month spending for a category against
// its configured limit. Must be called with the mutex held.
func (t *Tracker) budgetAlertLocked(category string) string {
	limit, ok := t.budgets[category]
	if !ok || limit.Cents <= 0 {
		return ""
	}
	spent := t.monthlySpendingByCategoryLocked(t.now())[category]
	if spent.Cents <= limit.Cents {
		return ""
	}
	over := core.Money{Cents: spent.Cents - limit.Cents}
	return fmt.Sprintf("BUDGET ALERT: spending in %s exceeds budget of %s by %s!",
		category, core.FormatUSD(limit), core.FormatUSD(over))
}

// AddIncome normalizes the source, appends the record and persists.
func (t *Tracker) AddIncome(ctx context.Context, amount core.Money, source, date string) (string, error) {
	parsedDate, err := core.ParseDate(date)
	if err != nil {
		return "", err
	}

	inc := core.Income{
		ID:     uuid.NewString(),
		Amount: amount,
		Source: core.Normalize(source),
		Date:   parsedDate,
	}
	if err := inc.Validate(); err != nil {
		return "", err
	}

	t.mu.Lock()
	t.incomes = append(t.incomes, inc)
	t.persist(ctx)
	t.mu.Unlock()

	t.publish(ctx, EventIncomeAdded, inc.ID)

	slog.InfoContext(ctx, "Income added",
		"record_id", inc.ID,
		"source", inc.Source,
		"amount_cents", inc.Amount.Cents,
		"date", inc.Date.String())

	return fmt.Sprintf("Income added successfully from %s.", inc.Source), nil
}

// SetBudget upserts the monthly limit for the normalized category.
func (t *Tracker) SetBudget(ctx context.Context, category string, limit core.Money) (string, error) {
	if limit.Cents < 0 {
		return "", core.ErrInvalidAmount
	}
	name := core.Normalize(category)
	if name == "" {
		return "", core.ErrEmptyCategory
	}

	t.mu.Lock()
	t.budgets[name] = limit
	t.persist(ctx)
	t.mu.Unlock()

	slog.InfoContext(ctx, "Budget set", "category", name, "limit_cents", limit.Cents)
	return fmt.Sprintf("Budget set: monthly limit for %s is now %s.", name, core.FormatUSD(limit)), nil
}

// RemoveExpense deletes the record at the given store index. The index is
// the position at lookup time: removing record i shifts every later index,
// so callers must refetch summaries after each mutation.
func (t *Tracker) RemoveExpense(ctx context.Context, index int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.expenses) {
		return "", ErrInvalidIndex
	}
	removed := t.expenses[index]
	t.expenses = append(t.expenses[:index], t.expenses[index+1:]...)
	t.persist(ctx)

	slog.InfoContext(ctx, "Expense removed", "record_id", removed.ID, "category", removed.Category)
	return fmt.Sprintf("Expense on %s for %s (%s) removed successfully.",
		removed.Date, core.FormatUSD(removed.Amount), removed.Category), nil
}

// RemoveExpenseByID deletes the record with the given surrogate ID.
func (t *Tracker) RemoveExpenseByID(ctx context.Context, id string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, e := range t.expenses {
		if e.ID == id {
			t.expenses = append(t.expenses[:i], t.expenses[i+1:]...)
			t.persist(ctx)
			slog.InfoContext(ctx, "Expense removed", "record_id", e.ID, "category", e.Category)
			return fmt.Sprintf("Expense on %s for %s (%s) removed successfully.",
				e.Date, core.FormatUSD(e.Amount), e.Category), nil
		}
	}
	return "", ErrRecordNotFound
}

// RemoveIncome deletes the income record at the given store index.
func (t *Tracker) RemoveIncome(ctx context.Context, index int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.incomes) {
		return "", ErrInvalidIndex
	}
	removed := t.incomes[index]
	t.incomes = append(t.incomes[:index], t.incomes[index+1:]...)
	t.persist(ctx)

	slog.InfoContext(ctx, "Income removed", "record_id", removed.ID, "source", removed.Source)
	return fmt.Sprintf("Income on %s from %s (%s) removed successfully.",
		removed.Date, removed.Source, core.FormatUSD(removed.Amount)), nil
}

// RemoveIncomeByID deletes the income record with the given surrogate ID.
func (t *Tracker) RemoveIncomeByID(ctx context.Context, id string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, in := range t.incomes {
		if in.ID == id {
			t.incomes = append(t.incomes[:i], t.incomes[i+1:]...)
			t.persist(ctx)
			slog.InfoContext(ctx, "Income removed", "record_id", in.ID, "source", in.Source)
			return fmt.Sprintf("Income on %s from %s (%s) removed successfully.",
				in.Date, in.Source, core.FormatUSD(in.Amount)), nil
		}
	}
	return "", ErrRecordNotFound
}

// DeleteBudget removes the limit for the normalized category.
func (t *Tracker) DeleteBudget(ctx context.Context, category string) (string, error) {
	name := core.Normalize(category)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.budgets[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrBudgetNotFound, name)
	}
	delete(t.budgets, name)
	t.persist(ctx)

	slog.InfoContext(ctx, "Budget deleted", "category", name)
	return fmt.Sprintf("Budget limit for %q removed successfully.", name), nil
}

// DeleteCategory removes every expense in the normalized category and its
// budget entry. It fails only when neither existed.
func (t *Tracker) DeleteCategory(ctx context.Context, category string) (string, error) {
	name := core.Normalize(category)

	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.expenses[:0]
	removedCount := 0
	for _, e := range t.expenses {
		if e.Category == name {
			removedCount++
			continue
		}
		kept = append(kept, e)
	}
	t.expenses = kept

	_, budgetExisted := t.budgets[name]
	delete(t.budgets, name)

	if removedCount == 0 && !budgetExisted {
		return "", fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	t.persist(ctx)

	slog.InfoContext(ctx, "Category deleted",
		"category", name,
		"expenses_removed", removedCount,
		"budget_removed", budgetExisted)

	msg := fmt.Sprintf("Category %q deleted. Removed %d expense(s).", name, removedCount)
	if budgetExisted {
		msg += " Budget limit also removed."
	}
	return msg, nil
}

// Expense returns the record with the given ID, if present.
func (t *Tracker) Expense(id string) (core.Expense, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.expenses {
		if e.ID == id {
			return e, true
		}
	}
	return core.Expense{}, false
}

// Income returns the record with the given ID, if present.
func (t *Tracker) Income(id string) (core.Income, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, in := range t.incomes {
		if in.ID == id {
			return in, true
		}
	}
	return core.Income{}, false
}
