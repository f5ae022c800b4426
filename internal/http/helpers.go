package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/tracker"
)

const maxFieldLength = 200

// formValue returns a trimmed, length-capped form field with control
// characters stripped.
func formValue(r *http.Request, key string) string {
	return sanitizeInput(r.FormValue(key))
}

func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if len(s) > maxFieldLength {
		s = s[:maxFieldLength]
	}
	return s
}

// redirectFlash sends the client back to path with the outcome encoded in
// the query string, where the next page render picks it up.
func redirectFlash(w http.ResponseWriter, r *http.Request, path, message string, success bool) {
	q := url.Values{}
	q.Set("message", message)
	if success {
		q.Set("success", "true")
	} else {
		q.Set("success", "false")
	}
	http.Redirect(w, r, path+"?"+q.Encode(), http.StatusSeeOther)
}

// errorMessage maps domain errors to the messages shown in the flash banner.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a positive number."
	case errors.Is(err, core.ErrInvalidDate):
		return "Date must be in YYYY-MM-DD format."
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category cannot be empty."
	case errors.Is(err, core.ErrEmptySource):
		return "Source cannot be empty."
	case errors.Is(err, tracker.ErrRecordNotFound), errors.Is(err, tracker.ErrInvalidIndex):
		return "Record not found."
	case errors.Is(err, tracker.ErrBudgetNotFound):
		return "No budget is set for that category."
	case errors.Is(err, tracker.ErrCategoryNotFound):
		return "Category not found."
	default:
		return "Something went wrong. Please try again."
	}
}
