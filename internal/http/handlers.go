package http

import (
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/tracker"
)

// flash carries the message passed back through the redirect query string.
type flash struct {
	Message string
	Success bool
}

func flashFromRequest(r *http.Request) flash {
	q := r.URL.Query()
	return flash{
		Message: q.Get("message"),
		Success: q.Get("success") == "true",
	}
}

type indexPage struct {
	Flash    flash
	Expenses []tracker.IndexedExpense
	Total    core.Money
	Today    string
}

type incomePage struct {
	Flash   flash
	Incomes []tracker.IndexedIncome
	Total   core.Money
	Today   string
}

type transactionsPage struct {
	Flash   flash
	Entries []tracker.LogEntry
}

type reportsPage struct {
	Flash     flash
	Filter    tracker.Period
	Breakdown []tracker.CategoryAmount
	Trend     []tracker.TrendPoint
}

type savingsPage struct {
	Flash   flash
	Savings tracker.NetSavings
	Month   string
}

type budgetsPage struct {
	Flash flash
	Lines []tracker.BudgetLine
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	expenses, total := s.tracker.ExpenseSummary()
	s.render(w, r, "index", indexPage{
		Flash:    flashFromRequest(r),
		Expenses: expenses,
		Total:    total,
		Today:    time.Now().Format("2006-01-02"),
	})
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	incomes, total := s.tracker.IncomeSummary()
	s.render(w, r, "income", incomePage{
		Flash:   flashFromRequest(r),
		Incomes: incomes,
		Total:   total,
		Today:   time.Now().Format("2006-01-02"),
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.render(w, r, "transactions", transactionsPage{
		Flash:   flashFromRequest(r),
		Entries: s.tracker.CombinedLog(),
	})
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	period := tracker.ParsePeriod(r.URL.Query().Get("filter"))
	s.render(w, r, "reports", reportsPage{
		Flash:     flashFromRequest(r),
		Filter:    period,
		Breakdown: s.tracker.CategoryBreakdown(period),
		Trend:     s.tracker.MonthlyTrend(period),
	})
}

func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.render(w, r, "savings", savingsPage{
		Flash:   flashFromRequest(r),
		Savings: s.tracker.CalculateNetSavings(),
		Month:   time.Now().Format("January 2006"),
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	page, ok := s.pages[name]
	if !ok || page == nil {
		slog.Error("Template not loaded", "page", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.ExecuteTemplate(w, "layout.html", data); err != nil {
		slog.Error("Failed rendering page", "page", name, "error", err)
	}
}
