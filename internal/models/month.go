package models

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar month bucket.
type MonthKey struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month key %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// String renders the canonical YYYY-MM form.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

func (k MonthKey) IsZero() bool {
	return k.Year == 0 && k.Month == 0
}

func (k MonthKey) Next() MonthKey {
	return k.AddMonths(1)
}

func (k MonthKey) AddMonths(n int) MonthKey {
	m := k.Year*12 + int(k.Month) - 1 + n
	return MonthKey{Year: m / 12, Month: time.Month(m%12 + 1)}
}

func (k MonthKey) Compare(other MonthKey) int {
	a := k.Year*12 + int(k.Month)
	b := other.Year*12 + int(other.Month)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (k MonthKey) Before(other MonthKey) bool {
	return k.Compare(other) < 0
}

// MonthSpan counts the calendar months from first to last inclusive.
func MonthSpan(first, last MonthKey) int {
	if first.IsZero() || last.IsZero() || last.Before(first) {
		return 0
	}
	return (last.Year*12 + int(last.Month)) - (first.Year*12 + int(first.Month)) + 1
}
