package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

// handleAddRecord accepts the add-expense and add-income forms. The record
// type picks which collection the entry lands in and which page the client
// is sent back to.
func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	recordType := formValue(r, "record_type")
	back := "/"
	if recordType == "income" {
		back = "/income"
	}

	cents, err := core.ParseDecimalToCents(formValue(r, "amount"))
	if err != nil {
		redirectFlash(w, r, back, "Amount must be a positive number.", false)
		return
	}
	amount := core.Money{Cents: cents}

	date := formValue(r, "date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	var msg string
	switch recordType {
	case "income":
		msg, err = s.tracker.AddIncome(r.Context(), amount, formValue(r, "source"), date)
	case "expense":
		msg, err = s.tracker.AddExpense(r.Context(), amount, formValue(r, "category"), date, formValue(r, "tag"))
	default:
		redirectFlash(w, r, "/", "Unknown record type.", false)
		return
	}
	if err != nil {
		redirectFlash(w, r, back, errorMessage(err), false)
		return
	}
	redirectFlash(w, r, back, msg, true)
}

// handleDeleteRecord accepts the delete forms rendered alongside each row.
// Records are addressed by surrogate ID; categories and budgets by name.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		msg  string
		err  error
		back string
	)
	switch formValue(r, "record_type") {
	case "expense":
		back = "/"
		msg, err = s.tracker.RemoveExpenseByID(r.Context(), formValue(r, "record_id"))
	case "income":
		back = "/income"
		msg, err = s.tracker.RemoveIncomeByID(r.Context(), formValue(r, "record_id"))
	case "category":
		back = "/"
		msg, err = s.tracker.DeleteCategory(r.Context(), formValue(r, "category_name"))
	case "budget":
		back = "/budgets"
		msg, err = s.tracker.DeleteBudget(r.Context(), formValue(r, "category_name"))
	default:
		redirectFlash(w, r, "/", "Unknown record type.", false)
		return
	}
	if err != nil {
		redirectFlash(w, r, back, errorMessage(err), false)
		return
	}
	redirectFlash(w, r, back, msg, true)
}

// handleBudgets renders the budget report on GET and upserts a limit on POST.
func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "budgets", budgetsPage{
			Flash: flashFromRequest(r),
			Lines: s.tracker.BudgetReport(),
		})
	case http.MethodPost:
		cents, err := core.ParseBudgetLimit(formValue(r, "amount"))
		if err != nil {
			redirectFlash(w, r, "/budgets", "Budget amount must be a non-negative number.", false)
			return
		}
		msg, err := s.tracker.SetBudget(r.Context(), formValue(r, "category"), core.Money{Cents: cents})
		if err != nil {
			redirectFlash(w, r, "/budgets", errorMessage(err), false)
			return
		}
		redirectFlash(w, r, "/budgets", msg, true)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
