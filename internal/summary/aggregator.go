// Package summary implements period-based spending aggregation: for
// each category, filter a user's transactions by the period window,
// sum the amounts and pair the result with the budgeted limit.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"budgetd/internal/core"
	"budgetd/internal/store"
)

type (
	// CategorySummary is the per-category aggregation result for one
	// period. FetchErr is set when the store call for this category
	// failed; the category is then excluded from totals instead of
	// being silently counted as zero spending.
	CategorySummary struct {
		Category     core.Category      `json:"category"`
		Name         string             `json:"name"`
		Color        string             `json:"color"`
		Spent        core.Money         `json:"spent"`
		Budget       core.Money         `json:"budget"`
		Transactions []core.Transaction `json:"transactions"`
		FetchErr     error              `json:"-"`
	}

	// PeriodSummary folds the per-category results into totals. The
	// clamped Percentage feeds progress visualizations; callers that
	// need over-budget magnitude use Ratio.
	PeriodSummary struct {
		Period        core.Period       `json:"period"`
		Categories    []CategorySummary `json:"categories"`
		TotalSpent    core.Money        `json:"total_spent"`
		TotalBudget   core.Money        `json:"total_budget"`
		Percentage    int               `json:"percentage"`
		BudgetMissing bool              `json:"budget_missing"`
	}
)

// FetchError reports that the store call for one category failed.
// It is propagated distinctly so an outage never masquerades as zero
// spending.
type FetchError struct {
	Category core.Category
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch transactions for %s: %v", e.Category, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Ratio returns the unclamped spent/budget ratio, 0 when no budget is
// set.
func (s PeriodSummary) Ratio() float64 {
	if s.TotalBudget.Cents == 0 {
		return 0
	}
	return float64(s.TotalSpent.Cents) / float64(s.TotalBudget.Cents)
}

// Failed returns the categories whose fetch failed this run.
func (s PeriodSummary) Failed() []core.Category {
	var out []core.Category
	for _, c := range s.Categories {
		if c.FetchErr != nil {
			out = append(out, c.Category)
		}
	}
	return out
}

// Aggregator computes spending summaries from the store boundary. It
// holds no state between runs; a summary is a pure function of stored
// records and the period window.
type Aggregator struct {
	budgets store.BudgetReader
	txs     store.TransactionLister
	now     func() time.Time
}

func NewAggregator(budgets store.BudgetReader, txs store.TransactionLister) *Aggregator {
	return &Aggregator{budgets: budgets, txs: txs, now: time.Now}
}

// WithClock overrides the aggregator's notion of now. Tests use this
// to pin the period window.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Summarize aggregates one user's spending for the period.
//
// A user without a budget document gets a zeroed summary with
// BudgetMissing set and a nil error: absence of a budget is an
// expected state for new users, not a failure. A failed per-category
// transaction fetch is recorded on that category's summary and joined
// into the returned error; the remaining categories are unaffected
// and the partial summary stays usable.
func (a *Aggregator) Summarize(ctx context.Context, userID string, period core.Period) (PeriodSummary, error) {
	start, err := period.Start(a.now())
	if err != nil {
		return PeriodSummary{}, err
	}

	out := PeriodSummary{Period: period}

	budget, err := a.budgets.GetBudget(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNoBudget) {
			slog.DebugContext(ctx, "No budget document for user", "user_id", userID)
			out.BudgetMissing = true
			return out, nil
		}
		return PeriodSummary{}, fmt.Errorf("get budget: %w", err)
	}

	var fetchErrs []error
	for _, cat := range core.Categories {
		if err := ctx.Err(); err != nil {
			return PeriodSummary{}, err
		}

		cs := CategorySummary{
			Category: cat,
			Name:     cat.DisplayName(),
			Color:    cat.Color(),
			Budget:   budget.Limit(cat),
		}

		items, err := a.txs.ListTransactions(ctx, userID, cat)
		if err != nil {
			fe := &FetchError{Category: cat, Err: err}
			cs.FetchErr = fe
			fetchErrs = append(fetchErrs, fe)
			out.Categories = append(out.Categories, cs)
			continue
		}

		for _, tx := range items {
			if period.Bounded() && !tx.Date.OnOrAfter(start) {
				continue
			}
			cs.Transactions = append(cs.Transactions, tx)
			cs.Spent.Cents += tx.Amount.Cents
		}
		out.Categories = append(out.Categories, cs)
	}

	out.TotalSpent, out.TotalBudget, out.Percentage = reduce(out.Categories)
	return out, errors.Join(fetchErrs...)
}

// reduce folds category summaries into totals and a clamped
// percentage-of-budget figure. Categories whose fetch failed are
// skipped rather than counted as zero.
func reduce(cats []CategorySummary) (spent, budget core.Money, percentage int) {
	for _, c := range cats {
		if c.FetchErr != nil {
			continue
		}
		spent.Cents += c.Spent.Cents
		budget.Cents += c.Budget.Cents
	}
	if budget.Cents == 0 {
		return spent, budget, 0
	}
	percentage = int(math.Round(float64(spent.Cents) / float64(budget.Cents) * 100))
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	return spent, budget, percentage
}
