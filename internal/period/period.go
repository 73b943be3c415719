// Package period resolves user-supplied period descriptions into concrete
// date ranges and computes the financial year used for counter resets.
package period

import (
	"fmt"
	"time"

	"github.com/retailbooks/retailbooks/internal/shared"
)

// Type enumerates the supported period kinds.
type Type string

const (
	TypeMonth   Type = "month"
	TypeQuarter Type = "quarter"
	TypeYear    Type = "year"
)

// Spec describes a reporting period. Either Start/End are both set, or
// PeriodType plus the fields it requires.
type Spec struct {
	Start *time.Time
	End   *time.Time

	PeriodType Type
	Year       int
	Month      *time.Month
	Quarter    *int
}

// Range is a resolved, inclusive date range at day granularity.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the range, date-truncated.
func (r Range) Contains(d time.Time) bool {
	d = Truncate(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Truncate drops the time-of-day component. All ledger comparisons are
// date-only.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Resolve converts a Spec into a concrete inclusive range.
func Resolve(spec Spec) (Range, error) {
	if spec.Start != nil || spec.End != nil {
		if spec.Start == nil || spec.End == nil {
			return Range{}, fmt.Errorf("%w: explicit range requires both start and end", shared.ErrInvalidPeriod)
		}
		start, end := Truncate(*spec.Start), Truncate(*spec.End)
		if end.Before(start) {
			return Range{}, fmt.Errorf("%w: end %s before start %s", shared.ErrInvalidPeriod, end.Format(time.DateOnly), start.Format(time.DateOnly))
		}
		return Range{Start: start, End: end}, nil
	}

	if spec.Year == 0 {
		return Range{}, fmt.Errorf("%w: year required", shared.ErrInvalidPeriod)
	}

	switch spec.PeriodType {
	case TypeMonth:
		if spec.Month == nil {
			return Range{}, fmt.Errorf("%w: month period requires month", shared.ErrInvalidPeriod)
		}
		start := time.Date(spec.Year, *spec.Month, 1, 0, 0, 0, 0, time.UTC)
		return Range{Start: start, End: start.AddDate(0, 1, -1)}, nil
	case TypeQuarter:
		if spec.Quarter == nil {
			return Range{}, fmt.Errorf("%w: quarter period requires quarter", shared.ErrInvalidPeriod)
		}
		q := *spec.Quarter
		if q < 1 || q > 4 {
			return Range{}, fmt.Errorf("%w: quarter must be 1-4, got %d", shared.ErrInvalidPeriod, q)
		}
		start := time.Date(spec.Year, time.Month(3*(q-1)+1), 1, 0, 0, 0, 0, time.UTC)
		return Range{Start: start, End: start.AddDate(0, 3, -1)}, nil
	case TypeYear:
		start := time.Date(spec.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return Range{Start: start, End: start.AddDate(1, 0, -1)}, nil
	default:
		return Range{}, fmt.Errorf("%w: unknown period type %q", shared.ErrInvalidPeriod, spec.PeriodType)
	}
}

// FinancialYear returns the Apr-Mar financial year label for a date, e.g.
// "2024-25" for any date between 2024-04-01 and 2025-03-31.
func FinancialYear(d time.Time) string {
	year := d.Year()
	if d.Month() < time.April {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}
