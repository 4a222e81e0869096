package util

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid date format (use YYYY-MM-DD or RFC3339)")

// DateRange is a half-open [Start, End) window; either side may be absent.
type DateRange struct {
	Start    time.Time
	End      time.Time
	HasStart bool
	HasEnd   bool
}

func parseDateBound(s string) (t time.Time, ok bool, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false, nil
	}
	if tt, e := time.Parse(time.RFC3339, s); e == nil {
		return tt, true, false, nil
	}
	if tt, e := time.Parse("2006-01-02", s); e == nil {
		return tt, true, true, nil
	}
	return time.Time{}, false, false, ErrInvalidDate
}

// ParseDateRange accepts dates or RFC3339 timestamps. A date-only end includes the
// whole day. Reversed bounds are swapped.
func ParseDateRange(startStr, endStr *string) (DateRange, error) {
	var (
		r           DateRange
		endDateOnly bool
	)

	if startStr != nil {
		t, ok, _, err := parseDateBound(*startStr)
		if err != nil {
			return DateRange{}, err
		}
		r.Start, r.HasStart = t, ok
	}

	if endStr != nil {
		t, ok, dateOnly, err := parseDateBound(*endStr)
		if err != nil {
			return DateRange{}, err
		}
		r.End, r.HasEnd, endDateOnly = t, ok, dateOnly
	}

	if r.HasStart && r.HasEnd && r.End.Before(r.Start) {
		r.Start, r.End = r.End, r.Start
	}
	if r.HasEnd && endDateOnly {
		r.End = r.End.AddDate(0, 0, 1)
	}
	return r, nil
}
