package core

import (
	"strings"
	"time"
)

// Period selects the aggregation window for a spending summary.
type Period string

const (
	PeriodWeek  Period = "W"
	PeriodMonth Period = "M"
	PeriodYear  Period = "Y"
	PeriodAll   Period = "ALL"
)

// StartFunc resolves the lower date boundary of a window relative to
// now. A zero time means the window is unbounded.
type StartFunc func(now time.Time) time.Time

// periodResolvers maps each accepted token to its boundary resolver.
// Tokens outside this registry are rejected, never defaulted.
var periodResolvers = map[Period]StartFunc{
	PeriodWeek: func(now time.Time) time.Time {
		// Most recent Sunday at midnight local time (Sunday = 0).
		return time.Date(now.Year(), now.Month(), now.Day()-int(now.Weekday()), 0, 0, 0, 0, now.Location())
	},
	PeriodMonth: func(now time.Time) time.Time {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	},
	PeriodYear: func(now time.Time) time.Time {
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	},
	PeriodAll: func(time.Time) time.Time {
		return time.Time{}
	},
}

// ParsePeriod validates a period token. Tokens are case-insensitive.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := periodResolvers[p]; !ok {
		return "", ErrInvalidPeriod
	}
	return p, nil
}

// Start resolves the window's start boundary relative to now. For
// PeriodAll the returned time is zero and Bounded reports false.
func (p Period) Start(now time.Time) (time.Time, error) {
	resolve, ok := periodResolvers[p]
	if !ok {
		return time.Time{}, ErrInvalidPeriod
	}
	return resolve(now), nil
}

// Bounded reports whether the period imposes a lower date boundary.
func (p Period) Bounded() bool {
	return p != PeriodAll
}
