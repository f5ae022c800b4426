// Package core defines the finance tracker's domain types: dates, money
// amounts, expense and income records, and name normalization.
//
// This file holds money parsing and formatting. Amounts are parsed from
// user input into integer cents and formatted back as dollar strings;
// all arithmetic stays in cents to avoid floating-point drift.
package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both dot (12.34) and comma (12,34)
// separators are accepted. Returns ErrInvalidAmount for malformed input
// and for zero or negative values.
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := parseCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseBudgetLimit is ParseDecimalToCents with zero allowed: a zero limit
// is how an absent budget is represented in reports.
func ParseBudgetLimit(s string) (int64, error) {
	return parseCents(s)
}

func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// Dollars returns the dollar value as a float64 for display purposes only.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

// FormatUSD renders cents as a dollar string with comma grouping,
// e.g. 123456 -> "$1,234.56". Negative amounts get a leading minus.
func FormatUSD(m Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	s := "$" + grouped.String() + "." + padCents(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func padCents(rem int64) string {
	if rem < 10 {
		return "0" + strconv.FormatInt(rem, 10)
	}
	return strconv.FormatInt(rem, 10)
}

// MarshalJSON writes the amount as a plain decimal number so the persisted
// document keeps the {amount: 12.34} shape.
func (m Money) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, m.Dollars(), 'f', -1, 64), nil
}

// UnmarshalJSON accepts any JSON number and rounds half-up to cents.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v json.Number
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f, err := v.Float64()
	if err != nil {
		return err
	}
	m.Cents = int64(math.Round(f * 100))
	return nil
}
