package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const dateLayout = "2006-01-02"

type (
	// Date is a calendar day, serialized as YYYY-MM-DD text.
	Date struct {
		time.Time
	}

	// Money is an amount in integer cents.
	Money struct {
		Cents int64
	}

	// Expense is a single spending record. Category and Tag are stored
	// normalized; ID is a stable surrogate identifier assigned at creation.
	Expense struct {
		ID       string `json:"id,omitempty"`
		Amount   Money  `json:"amount"`
		Category string `json:"category"`
		Date     Date   `json:"date"`
		Tag      string `json:"tag,omitempty"`
	}

	// Income is a single earning record.
	Income struct {
		ID     string `json:"id,omitempty"`
		Amount Money  `json:"amount"`
		Source string `json:"source"`
		Date   Date   `json:"date"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptySource   = errors.New("empty source")
)

// Normalize trims whitespace, upper-cases the first rune and lower-cases
// the rest. It is idempotent and applied to every category and source on
// write so budget lookups match expense categories.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// YearMonth returns the YYYY-MM grouping key for the date.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

// SameMonth reports whether d falls in the same calendar month as ref.
func (d Date) SameMonth(ref time.Time) bool {
	return d.Year() == ref.Year() && d.Month() == ref.Month()
}

// SameYear reports whether d falls in the same calendar year as ref.
func (d Date) SameYear(ref time.Time) bool {
	return d.Year() == ref.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Description renders the category with its optional tag, e.g. "Food: Dining Out".
func (e Expense) Description() string {
	if e.Tag != "" {
		return e.Category + ": " + e.Tag
	}
	return e.Category
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	return nil
}
