package core

import "strings"

// Category is a named spending bucket. Identity is the lowercase name;
// every other representation (display name, color) is derived here so
// the aggregator, the API, the seeder and the exporter all share one
// enumeration.
type Category string

const (
	Bills          Category = "bills"
	Shopping       Category = "shopping"
	Food           Category = "food"
	Health         Category = "health"
	Entertainment  Category = "entertainment"
	Travel         Category = "travel"
	Dining         Category = "dining"
	Subscriptions  Category = "subscriptions"
	Transportation Category = "transportation"
	Recreational   Category = "recreational"
	Misc           Category = "misc"
)

// Categories lists every known category in aggregation order.
var Categories = []Category{
	Bills,
	Shopping,
	Food,
	Health,
	Entertainment,
	Travel,
	Dining,
	Subscriptions,
	Transportation,
	Recreational,
	Misc,
}

// categoryColors maps each category to the hex color clients use for
// charts and progress rings.
var categoryColors = map[Category]string{
	Bills:          "#4A90D9",
	Shopping:       "#E67E22",
	Food:           "#27AE60",
	Health:         "#E74C3C",
	Entertainment:  "#9B59B6",
	Travel:         "#16A085",
	Dining:         "#F39C12",
	Subscriptions:  "#2980B9",
	Transportation: "#7F8C8D",
	Recreational:   "#D35400",
	Misc:           "#95A5A6",
}

// ParseCategory normalizes s to lowercase and checks it against the
// known set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

// DisplayName returns the capitalized name shown to users.
func (c Category) DisplayName() string {
	s := string(c)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Color returns the display color for c, or the misc color when c is
// unknown.
func (c Category) Color() string {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return categoryColors[Misc]
}

func (c Category) String() string {
	return string(c)
}
