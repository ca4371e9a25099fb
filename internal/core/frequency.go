package core

import "strings"

// Frequency qualifies a raw budget amount entered by the user. Limits
// are always stored as monthly equivalents.
type Frequency string

const (
	Daily   Frequency = "daily"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// ParseFrequency validates a frequency token. An empty token means
// monthly, the implicit default.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return Monthly, nil
	case Daily, Monthly, Yearly:
		return f, nil
	default:
		return "", ErrInvalidFrequency
	}
}

// NormalizeMonthly converts an amount to its monthly equivalent:
// daily amounts multiply by 30, yearly amounts divide by 12, monthly
// amounts pass through. The 30-day month is a deliberate approximation
// kept for behavioral compatibility, not calendar arithmetic.
func NormalizeMonthly(amount Money, f Frequency) Money {
	switch f {
	case Daily:
		return Money{Cents: amount.Cents * 30}
	case Yearly:
		return Money{Cents: amount.Cents / 12}
	default:
		return amount
	}
}
