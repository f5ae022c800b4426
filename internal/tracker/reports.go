package tracker

import (
	"sort"
	"time"

	"fintrack/internal/core"
)

// Period restricts report queries to a calendar window around the
// tracker's clock.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod maps a query value to a Period, defaulting to all.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodMonth:
		return PeriodMonth
	case PeriodYear:
		return PeriodYear
	default:
		return PeriodAll
	}
}

// Budget report statuses.
const (
	StatusOverBudget = "OVER BUDGET"
	StatusNoBudget   = "NO BUDGET SET"
	StatusOnTrack    = "On Track"
)

type (
	// IndexedExpense pairs a record with its current store index so a
	// rendered row can address the record for deletion.
	IndexedExpense struct {
		Index   int
		Expense core.Expense
	}

	IndexedIncome struct {
		Index  int
		Income core.Income
	}

	// LogEntry is one row of the combined transaction log.
	LogEntry struct {
		Date        core.Date
		Amount      core.Money
		Description string
		Kind        string // "Expense" or "Income"
		Negative    bool
	}

	// CategoryAmount is an aggregated total for one category.
	CategoryAmount struct {
		Category string
		Total    core.Money
	}

	// TrendPoint is one month's total in the spending trend.
	TrendPoint struct {
		Label string // e.g. "Aug 2025"
		Key   string // YYYY-MM, chronological sort key
		Total core.Money
	}

	// BudgetLine is one row of the budget report.
	BudgetLine struct {
		Category  string
		Limit     core.Money
		Spent     core.Money
		Remaining core.Money
		Status    string
	}

	// NetSavings is the current-month income/expense balance.
	NetSavings struct {
		Income  core.Money
		Expense core.Money
		Net     core.Money
	}
)

func inPeriod(d core.Date, p Period, ref time.Time) bool {
	switch p {
	case PeriodMonth:
		return d.SameMonth(ref)
	case PeriodYear:
		return d.SameYear(ref)
	default:
		return true
	}
}

// filterByPeriod keeps the records whose date falls in the period relative
// to the reference time.
func filterByPeriod[T any](items []T, when func(T) core.Date, p Period, ref time.Time) []T {
	if p == PeriodAll {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if inPeriod(when(item), p, ref) {
			out = append(out, item)
		}
	}
	return out
}

// ExpenseSummary lists all expenses newest-first, each paired with its
// store index, plus the total spend across all records.
func (t *Tracker) ExpenseSummary() ([]IndexedExpense, core.Money) {
	t.mu.Lock()
	defer t.mu.Unlock()

	indexed := make([]IndexedExpense, len(t.expenses))
	var total core.Money
	for i, e := range t.expenses {
		indexed[i] = IndexedExpense{Index: i, Expense: e}
		total.Cents += e.Amount.Cents
	}
	sort.SliceStable(indexed, func(a, b int) bool {
		return indexed[a].Expense.Date.After(indexed[b].Expense.Date.Time)
	})
	return indexed, total
}

// IncomeSummary lists all incomes newest-first with store indices and the
// total income.
func (t *Tracker) IncomeSummary() ([]IndexedIncome, core.Money) {
	t.mu.Lock()
	defer t.mu.Unlock()

	indexed := make([]IndexedIncome, len(t.incomes))
	var total core.Money
	for i, in := range t.incomes {
		indexed[i] = IndexedIncome{Index: i, Income: in}
		total.Cents += in.Amount.Cents
	}
	sort.SliceStable(indexed, func(a, b int) bool {
		return indexed[a].Income.Date.After(indexed[b].Income.Date.Time)
	})
	return indexed, total
}

// CombinedLog merges expenses and incomes into one newest-first view.
func (t *Tracker) CombinedLog() []LogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]LogEntry, 0, len(t.expenses)+len(t.incomes))
	for _, e := range t.expenses {
		entries = append(entries, LogEntry{
			Date:        e.Date,
			Amount:      e.Amount,
			Description: e.Description(),
			Kind:        "Expense",
			Negative:    true,
		})
	}
	for _, in := range t.incomes {
		entries = append(entries, LogEntry{
			Date:        in.Date,
			Amount:      in.Amount,
			Description: in.Source,
			Kind:        "Income",
		})
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Date.After(entries[b].Date.Time)
	})
	return entries
}

// CategoryBreakdown sums expense amounts grouped by category over the
// period, sorted by category name.
func (t *Tracker) CategoryBreakdown(p Period) []CategoryAmount {
	t.mu.Lock()
	defer t.mu.Unlock()

	filtered := filterByPeriod(t.expenses, func(e core.Expense) core.Date { return e.Date }, p, t.now())
	sums := map[string]int64{}
	for _, e := range filtered {
		sums[e.Category] += e.Amount.Cents
	}

	out := make([]CategoryAmount, 0, len(sums))
	for category, cents := range sums {
		out = append(out, CategoryAmount{Category: category, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Category < out[b].Category })
	return out
}

// MonthlyTrend sums expense amounts grouped by YYYY-MM over the period,
// returned chronologically.
func (t *Tracker) MonthlyTrend(p Period) []TrendPoint {
	t.mu.Lock()
	defer t.mu.Unlock()

	filtered := filterByPeriod(t.expenses, func(e core.Expense) core.Date { return e.Date }, p, t.now())
	sums := map[string]int64{}
	for _, e := range filtered {
		sums[e.Date.YearMonth()] += e.Amount.Cents
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]TrendPoint, 0, len(keys))
	for _, key := range keys {
		label := key
		if month, err := time.Parse("2006-01", key); err == nil {
			label = month.Format("Jan 2006")
		}
		out = append(out, TrendPoint{Label: label, Key: key, Total: core.Money{Cents: sums[key]}})
	}
	return out
}

// monthlySpendingByCategoryLocked sums current-month expense amounts per
// category. Must be called with the mutex held.
func (t *Tracker) monthlySpendingByCategoryLocked(ref time.Time) map[string]core.Money {
	sums := map[string]core.Money{}
	for _, e := range t.expenses {
		if e.Date.SameMonth(ref) {
			sums[e.Category] = core.Money{Cents: sums[e.Category].Cents + e.Amount.Cents}
		}
	}
	return sums
}

// CalculateNetSavings returns current-month income, expenses and their
// difference.
func (t *Tracker) CalculateNetSavings() NetSavings {
	t.mu.Lock()
	defer t.mu.Unlock()

	ref := t.now()
	var income, expense int64
	for _, in := range t.incomes {
		if in.Date.SameMonth(ref) {
			income += in.Amount.Cents
		}
	}
	for _, e := range t.expenses {
		if e.Date.SameMonth(ref) {
			expense += e.Amount.Cents
		}
	}
	return NetSavings{
		Income:  core.Money{Cents: income},
		Expense: core.Money{Cents: expense},
		Net:     core.Money{Cents: income - expense},
	}
}

// BudgetReport covers every category that has a configured limit or
// current-month spending, sorted by category name. A category is
// OVER BUDGET when spending strictly exceeds a positive limit, and
// NO BUDGET SET when the limit is exactly zero (i.e. absent).
func (t *Tracker) BudgetReport() []BudgetLine {
	t.mu.Lock()
	defer t.mu.Unlock()

	spending := t.monthlySpendingByCategoryLocked(t.now())

	categories := map[string]struct{}{}
	for c := range t.budgets {
		categories[c] = struct{}{}
	}
	for c := range spending {
		categories[c] = struct{}{}
	}

	names := make([]string, 0, len(categories))
	for c := range categories {
		names = append(names, c)
	}
	sort.Strings(names)

	out := make([]BudgetLine, 0, len(names))
	for _, name := range names {
		limit := t.budgets[name]
		spent := spending[name]

		status := StatusOnTrack
		switch {
		case spent.Cents > limit.Cents && limit.Cents > 0:
			status = StatusOverBudget
		case limit.Cents == 0:
			status = StatusNoBudget
		}

		out = append(out, BudgetLine{
			Category:  name,
			Limit:     limit,
			Spent:     spent,
			Remaining: core.Money{Cents: limit.Cents - spent.Cents},
			Status:    status,
		})
	}
	return out
}
