package models

import (
	"testing"
	"time"
)

func TestMonthKey_String(t *testing.T) {
	tests := []struct {
		key  MonthKey
		want string
	}{
		{MonthKey{2023, time.January}, "2023-01"},
		{MonthKey{2023, time.December}, "2023-12"},
		{MonthKey{999, time.March}, "0999-03"},
	}

	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseMonthKey(t *testing.T) {
	key, err := ParseMonthKey("2023-07")
	if err != nil {
		t.Fatalf("ParseMonthKey() error: %v", err)
	}
	if key.Year != 2023 || key.Month != time.July {
		t.Errorf("ParseMonthKey() = %v, want 2023-07", key)
	}

	for _, bad := range []string{"", "2023", "2023-13", "2023-7", "07-2023"} {
		if _, err := ParseMonthKey(bad); err == nil {
			t.Errorf("ParseMonthKey(%q) should fail", bad)
		}
	}
}

func TestMonthKey_Next(t *testing.T) {
	tests := []struct {
		key  MonthKey
		want MonthKey
	}{
		{MonthKey{2023, time.January}, MonthKey{2023, time.February}},
		{MonthKey{2023, time.December}, MonthKey{2024, time.January}},
	}

	for _, tt := range tests {
		if got := tt.key.Next(); got != tt.want {
			t.Errorf("Next(%v) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestMonthKey_AddMonths(t *testing.T) {
	tests := []struct {
		key  MonthKey
		n    int
		want MonthKey
	}{
		{MonthKey{2023, time.March}, 0, MonthKey{2023, time.March}},
		{MonthKey{2023, time.March}, 10, MonthKey{2024, time.January}},
		{MonthKey{2023, time.March}, -3, MonthKey{2022, time.December}},
		{MonthKey{2023, time.March}, -11, MonthKey{2022, time.April}},
		{MonthKey{2023, time.January}, 24, MonthKey{2025, time.January}},
	}

	for _, tt := range tests {
		if got := tt.key.AddMonths(tt.n); got != tt.want {
			t.Errorf("AddMonths(%v, %d) = %v, want %v", tt.key, tt.n, got, tt.want)
		}
	}
}

func TestMonthKey_Compare(t *testing.T) {
	jan := MonthKey{2023, time.January}
	feb := MonthKey{2023, time.February}
	prevDec := MonthKey{2022, time.December}

	if jan.Compare(feb) != -1 || feb.Compare(jan) != 1 || jan.Compare(jan) != 0 {
		t.Error("Compare() should order months by calendar")
	}
	if !prevDec.Before(jan) || jan.Before(prevDec) {
		t.Error("Before() should order across year boundaries")
	}
}

func TestMonthSpan(t *testing.T) {
	tests := []struct {
		first, last MonthKey
		want        int
	}{
		{MonthKey{2023, time.January}, MonthKey{2023, time.January}, 1},
		{MonthKey{2023, time.January}, MonthKey{2023, time.March}, 3},
		{MonthKey{2022, time.November}, MonthKey{2023, time.February}, 4},
		{MonthKey{2023, time.March}, MonthKey{2023, time.January}, 0},
		{MonthKey{}, MonthKey{2023, time.January}, 0},
	}

	for _, tt := range tests {
		if got := MonthSpan(tt.first, tt.last); got != tt.want {
			t.Errorf("MonthSpan(%v, %v) = %d, want %d", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestMonthOf(t *testing.T) {
	d := time.Date(2023, 5, 17, 13, 45, 0, 0, time.UTC)
	if got := MonthOf(d); got != (MonthKey{2023, time.May}) {
		t.Errorf("MonthOf() = %v, want 2023-05", got)
	}
}
