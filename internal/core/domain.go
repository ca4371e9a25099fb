package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrEmptyDescription = errors.New("empty description")

	// ErrNoBudget marks the expected empty state of a user with no
	// budget document yet. Callers surface it as a zeroed summary,
	// never as a failure.
	ErrNoBudget = errors.New("no budget")
)

type (
	// Date is a calendar date with no time precision. Transactions
	// carry dates only; comparisons truncate to midnight.
	Date struct {
		time.Time
	}

	// Transaction is an immutable spending record. Category is an
	// explicit field so aggregation never depends on where the record
	// was stored.
	Transaction struct {
		ID          string   `json:"id"`
		Category    Category `json:"category"`
		Amount      Money    `json:"amount"`
		Date        Date     `json:"date"`
		Description string   `json:"description"`
	}

	// Budget maps each category to its monthly limit. Keys are never
	// removed once created; resets zero the values instead.
	Budget map[Category]Money
)

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate builds a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// OnOrAfter reports whether d falls on or after the start boundary,
// ignoring any time-of-day component on either side.
func (d Date) OnOrAfter(start time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, start.Location())
	boundary := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	return !day.Before(boundary)
}

func (t Transaction) Validate() error {
	if !t.Category.Valid() {
		return ErrUnknownCategory
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Limit returns the monthly limit for cat, treating a missing key as
// zero.
func (b Budget) Limit(cat Category) Money {
	return b[cat]
}

// Total sums all category limits.
func (b Budget) Total() Money {
	var total int64
	for _, m := range b {
		total += m.Cents
	}
	return Money{Cents: total}
}

// DefaultBudget returns the fixed limits assigned at account setup.
// Every category gets a key so later resets keep the full key set.
func DefaultBudget() Budget {
	b := make(Budget, len(Categories))
	for _, c := range Categories {
		b[c] = Money{}
	}
	b[Bills] = Money{Cents: 50000}
	b[Food] = Money{Cents: 40000}
	b[Shopping] = Money{Cents: 20000}
	b[Health] = Money{Cents: 10000}
	return b
}
