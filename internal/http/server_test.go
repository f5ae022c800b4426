package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/tracker"
)

func newTestServer(t *testing.T) (*Server, *tracker.Tracker) {
	t.Helper()
	trk, err := tracker.New(context.Background(), storage.NewMemoryStore())
	if err != nil {
		t.Fatalf("tracker.New: %v", err)
	}
	srv := NewServer(":0", trk)
	t.Cleanup(func() { srv.limiter.Stop() })
	return srv, trk
}

func postForm(t *testing.T, srv *Server, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

// redirectQuery follows the Location header of a 303 and returns its query.
func redirectQuery(t *testing.T, rec *httptest.ResponseRecorder) (string, url.Values) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d: %s", rec.Code, rec.Body.String())
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parsing Location: %v", err)
	}
	return loc.Path, loc.Query()
}

func TestAddExpenseRedirectsWithSuccess(t *testing.T) {
	srv, trk := newTestServer(t)

	rec := postForm(t, srv, "/records", url.Values{
		"record_type": {"expense"},
		"amount":      {"42.50"},
		"category":    {"  food "},
		"date":        {"2025-08-15"},
		"tag":         {"groceries"},
	})

	path, q := redirectQuery(t, rec)
	if path != "/" {
		t.Errorf("redirect path = %q, want /", path)
	}
	if q.Get("success") != "true" {
		t.Errorf("success = %q, want true (message: %q)", q.Get("success"), q.Get("message"))
	}

	expenses, total := trk.ExpenseSummary()
	if len(expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(expenses))
	}
	if got := expenses[0].Expense.Category; got != "Food" {
		t.Errorf("category = %q, want Food", got)
	}
	if total.Cents != 4250 {
		t.Errorf("total = %d cents, want 4250", total.Cents)
	}
}

func TestAddExpenseRejectsBadAmount(t *testing.T) {
	srv, trk := newTestServer(t)

	for _, amount := range []string{"", "abc", "-5", "0"} {
		rec := postForm(t, srv, "/records", url.Values{
			"record_type": {"expense"},
			"amount":      {amount},
			"category":    {"Food"},
		})
		_, q := redirectQuery(t, rec)
		if q.Get("success") != "false" {
			t.Errorf("amount %q: success = %q, want false", amount, q.Get("success"))
		}
		if got := q.Get("message"); got != "Amount must be a positive number." {
			t.Errorf("amount %q: message = %q", amount, got)
		}
	}

	if expenses, _ := trk.ExpenseSummary(); len(expenses) != 0 {
		t.Errorf("expected no expenses recorded, got %d", len(expenses))
	}
}

func TestAddIncomeDefaultsDateToToday(t *testing.T) {
	srv, trk := newTestServer(t)

	rec := postForm(t, srv, "/records", url.Values{
		"record_type": {"income"},
		"amount":      {"3000"},
		"source":      {"salary"},
	})

	path, q := redirectQuery(t, rec)
	if path != "/income" {
		t.Errorf("redirect path = %q, want /income", path)
	}
	if q.Get("success") != "true" {
		t.Fatalf("success = %q (message %q)", q.Get("success"), q.Get("message"))
	}

	incomes, _ := trk.IncomeSummary()
	if len(incomes) != 1 {
		t.Fatalf("expected 1 income, got %d", len(incomes))
	}
	if got := incomes[0].Income.Source; got != "Salary" {
		t.Errorf("source = %q, want Salary", got)
	}
	if incomes[0].Income.Date.IsZero() {
		t.Error("expected a default date, got zero value")
	}
}

func TestDeleteExpenseByID(t *testing.T) {
	srv, trk := newTestServer(t)

	_, err := trk.AddExpense(context.Background(), core.Money{Cents: 1000}, "Food", "2025-08-01", "")
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	expenses, _ := trk.ExpenseSummary()
	id := expenses[0].Expense.ID

	rec := postForm(t, srv, "/records/delete", url.Values{
		"record_type": {"expense"},
		"record_id":   {id},
	})

	_, q := redirectQuery(t, rec)
	if q.Get("success") != "true" {
		t.Fatalf("success = %q (message %q)", q.Get("success"), q.Get("message"))
	}
	if expenses, _ := trk.ExpenseSummary(); len(expenses) != 0 {
		t.Errorf("expected expense deleted, %d remain", len(expenses))
	}
}

func TestDeleteUnknownRecordFlashesError(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postForm(t, srv, "/records/delete", url.Values{
		"record_type": {"expense"},
		"record_id":   {"no-such-id"},
	})

	_, q := redirectQuery(t, rec)
	if q.Get("success") != "false" {
		t.Errorf("success = %q, want false", q.Get("success"))
	}
	if got := q.Get("message"); got != "Record not found." {
		t.Errorf("message = %q", got)
	}
}

func TestSetAndDeleteBudget(t *testing.T) {
	srv, trk := newTestServer(t)

	rec := postForm(t, srv, "/budgets", url.Values{
		"category": {"food"},
		"amount":   {"250"},
	})
	path, q := redirectQuery(t, rec)
	if path != "/budgets" {
		t.Errorf("redirect path = %q, want /budgets", path)
	}
	if q.Get("success") != "true" {
		t.Fatalf("set budget failed: %q", q.Get("message"))
	}

	lines := trk.BudgetReport()
	if len(lines) != 1 || lines[0].Category != "Food" || lines[0].Limit.Cents != 25000 {
		t.Fatalf("unexpected budget report: %+v", lines)
	}

	rec = postForm(t, srv, "/records/delete", url.Values{
		"record_type":   {"budget"},
		"category_name": {"Food"},
	})
	_, q = redirectQuery(t, rec)
	if q.Get("success") != "true" {
		t.Fatalf("delete budget failed: %q", q.Get("message"))
	}
	if lines := trk.BudgetReport(); len(lines) != 0 {
		t.Errorf("expected empty budget report, got %+v", lines)
	}
}

func TestSetBudgetRejectsNegativeAmount(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postForm(t, srv, "/budgets", url.Values{
		"category": {"Food"},
		"amount":   {"-10"},
	})
	_, q := redirectQuery(t, rec)
	if q.Get("success") != "false" {
		t.Errorf("success = %q, want false", q.Get("success"))
	}
	if got := q.Get("message"); got != "Budget amount must be a non-negative number." {
		t.Errorf("message = %q", got)
	}
}

func TestDeleteCategoryRemovesExpensesAndBudget(t *testing.T) {
	srv, trk := newTestServer(t)

	ctx := context.Background()
	if _, err := trk.AddExpense(ctx, core.Money{Cents: 500}, "Food", "2025-08-01", ""); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if _, err := trk.AddExpense(ctx, core.Money{Cents: 700}, "Food", "2025-08-02", ""); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if _, err := trk.SetBudget(ctx, "Food", core.Money{Cents: 10000}); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}

	rec := postForm(t, srv, "/records/delete", url.Values{
		"record_type":   {"category"},
		"category_name": {"food"},
	})
	_, q := redirectQuery(t, rec)
	if q.Get("success") != "true" {
		t.Fatalf("delete category failed: %q", q.Get("message"))
	}
	if !strings.Contains(q.Get("message"), "Removed 2 expense(s).") {
		t.Errorf("message = %q", q.Get("message"))
	}

	if expenses, _ := trk.ExpenseSummary(); len(expenses) != 0 {
		t.Errorf("expected all Food expenses removed, %d remain", len(expenses))
	}
	if lines := trk.BudgetReport(); len(lines) != 0 {
		t.Errorf("expected budget removed, got %+v", lines)
	}
}

func TestPagesRender(t *testing.T) {
	srv, trk := newTestServer(t)

	ctx := context.Background()
	if _, err := trk.AddExpense(ctx, core.Money{Cents: 4250}, "Food", "2025-08-15", "groceries"); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if _, err := trk.AddIncome(ctx, core.Money{Cents: 300000}, "Salary", "2025-08-01"); err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	if _, err := trk.SetBudget(ctx, "Food", core.Money{Cents: 25000}); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}

	cases := []struct {
		path string
		want string
	}{
		{"/", "Food"},
		{"/income", "Salary"},
		{"/transactions", "Food: groceries"},
		{"/reports", "Spending by Category"},
		{"/reports?filter=month", "This Month"},
		{"/savings", "Net Savings"},
		{"/budgets", "$250.00"},
	}
	for _, tc := range cases {
		rec := get(t, srv, tc.path)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status %d", tc.path, rec.Code)
			continue
		}
		if !strings.Contains(rec.Body.String(), tc.want) {
			t.Errorf("GET %s: body missing %q", tc.path, tc.want)
		}
	}
}

func TestFlashMessageRendered(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/?message=Expense+added+successfully.&success=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Expense added successfully.") {
		t.Error("flash message not rendered")
	}
	if !strings.Contains(body, "flash-success") {
		t.Error("flash success class not rendered")
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	if rec := get(t, srv, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMutationRoutesRejectGet(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/records", "/records/delete"} {
		if rec := get(t, srv, path); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s: status = %d, want 405", path, rec.Code)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := get(t, srv, path); rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, rec.Code)
		}
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/")
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestSanitizeInput(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  food  ", "food"},
		{"din\ner", "diner"},
		{"tab\there", "tabhere"},
		{strings.Repeat("a", 300), strings.Repeat("a", maxFieldLength)},
	}
	for _, tc := range cases {
		if got := sanitizeInput(tc.in); got != tc.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
