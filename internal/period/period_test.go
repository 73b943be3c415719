package period

import (
	"errors"
	"testing"
	"time"

	"github.com/retailbooks/retailbooks/internal/shared"
	_ "github.com/retailbooks/retailbooks/testing"
)

func monthPtr(m time.Month) *time.Month { return &m }
func intPtr(v int) *int                 { return &v }

func TestResolveMonth(t *testing.T) {
	r, err := Resolve(Spec{PeriodType: TypeMonth, Year: 2024, Month: monthPtr(time.February)})
	if err != nil {
		t.Fatalf("resolve month: %v", err)
	}
	if got := r.Start.Format(time.DateOnly); got != "2024-02-01" {
		t.Fatalf("unexpected start %s", got)
	}
	if got := r.End.Format(time.DateOnly); got != "2024-02-29" {
		t.Fatalf("expected leap-year end, got %s", got)
	}
}

func TestResolveQuarter(t *testing.T) {
	r, err := Resolve(Spec{PeriodType: TypeQuarter, Year: 2024, Quarter: intPtr(4)})
	if err != nil {
		t.Fatalf("resolve quarter: %v", err)
	}
	if got := r.Start.Format(time.DateOnly); got != "2024-10-01" {
		t.Fatalf("unexpected start %s", got)
	}
	if got := r.End.Format(time.DateOnly); got != "2024-12-31" {
		t.Fatalf("unexpected end %s", got)
	}
}

func TestResolveYear(t *testing.T) {
	r, err := Resolve(Spec{PeriodType: TypeYear, Year: 2023})
	if err != nil {
		t.Fatalf("resolve year: %v", err)
	}
	if r.Start.Format(time.DateOnly) != "2023-01-01" || r.End.Format(time.DateOnly) != "2023-12-31" {
		t.Fatalf("unexpected range %v", r)
	}
}

func TestResolveExplicitRange(t *testing.T) {
	start := time.Date(2024, 1, 5, 13, 30, 0, 0, time.UTC)
	end := time.Date(2024, 1, 20, 2, 0, 0, 0, time.UTC)
	r, err := Resolve(Spec{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("resolve explicit: %v", err)
	}
	if r.Start.Hour() != 0 || r.End.Hour() != 0 {
		t.Fatalf("expected date truncation, got %v", r)
	}
}

func TestResolveMissingFields(t *testing.T) {
	cases := []Spec{
		{PeriodType: TypeMonth, Year: 2024},
		{PeriodType: TypeQuarter, Year: 2024},
		{PeriodType: TypeQuarter, Year: 2024, Quarter: intPtr(5)},
		{PeriodType: "week", Year: 2024},
		{PeriodType: TypeMonth, Month: monthPtr(time.May)},
	}
	for _, spec := range cases {
		if _, err := Resolve(spec); !errors.Is(err, shared.ErrInvalidPeriod) {
			t.Fatalf("spec %+v: expected ErrInvalidPeriod, got %v", spec, err)
		}
	}
}

func TestResolveReversedRange(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, err := Resolve(Spec{Start: &start, End: &end}); !errors.Is(err, shared.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestFinancialYearBoundary(t *testing.T) {
	cases := map[string]string{
		"2024-03-31": "2023-24",
		"2024-04-01": "2024-25",
		"2024-12-15": "2024-25",
		"2025-01-02": "2024-25",
	}
	for date, want := range cases {
		d, err := time.Parse(time.DateOnly, date)
		if err != nil {
			t.Fatal(err)
		}
		if got := FinancialYear(d); got != want {
			t.Fatalf("FinancialYear(%s) = %s, want %s", date, got, want)
		}
	}
}
