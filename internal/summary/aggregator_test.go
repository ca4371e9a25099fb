package summary

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"budgetd/internal/core"
	"budgetd/internal/store/memory"
)

// fixed "now": Wednesday March 12, 2025
var testNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	if err := s.SetBudget(ctx, "u1", core.Food, core.Money{Cents: 20000}); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}

	txs := []core.Transaction{
		{Category: core.Food, Amount: core.Money{Cents: 5000}, Date: core.NewDate(2025, 3, 1), Description: "groceries"},
		{Category: core.Food, Amount: core.Money{Cents: 3000}, Date: core.NewDate(2025, 3, 11), Description: "market"},
		{Category: core.Food, Amount: core.Money{Cents: 9900}, Date: core.NewDate(2025, 1, 20), Description: "january dinner"},
	}
	for _, tx := range txs {
		if _, err := s.AppendTransaction(ctx, "u1", tx); err != nil {
			t.Fatalf("AppendTransaction: %v", err)
		}
	}
	return s
}

func findCategory(t *testing.T, sum PeriodSummary, cat core.Category) CategorySummary {
	t.Helper()
	for _, c := range sum.Categories {
		if c.Category == cat {
			return c
		}
	}
	t.Fatalf("summary has no category %s", cat)
	return CategorySummary{}
}

func TestSummarizeMonthlyFoodScenario(t *testing.T) {
	s := seedStore(t)
	agg := NewAggregator(s, s).WithClock(fixedClock)

	sum, err := agg.Summarize(context.Background(), "u1", core.PeriodMonth)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	food := findCategory(t, sum, core.Food)
	if food.Name != "Food" {
		t.Errorf("Name = %q, want %q", food.Name, "Food")
	}
	if food.Spent.Cents != 8000 {
		t.Errorf("Spent = %d, want 8000", food.Spent.Cents)
	}
	if food.Budget.Cents != 20000 {
		t.Errorf("Budget = %d, want 20000", food.Budget.Cents)
	}
	if len(food.Transactions) != 2 {
		t.Errorf("Transactions = %d, want 2 (january entry filtered)", len(food.Transactions))
	}

	if sum.TotalSpent.Cents != 8000 || sum.TotalBudget.Cents != 20000 {
		t.Errorf("totals = %d/%d, want 8000/20000", sum.TotalSpent.Cents, sum.TotalBudget.Cents)
	}
	if sum.Percentage != 40 {
		t.Errorf("Percentage = %d, want 40", sum.Percentage)
	}
}

func TestSummarizeAllTimeIncludesEverything(t *testing.T) {
	s := seedStore(t)
	agg := NewAggregator(s, s).WithClock(fixedClock)

	sum, err := agg.Summarize(context.Background(), "u1", core.PeriodAll)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	food := findCategory(t, sum, core.Food)
	if food.Spent.Cents != 17900 {
		t.Errorf("Spent = %d, want 17900", food.Spent.Cents)
	}
	if len(food.Transactions) != 3 {
		t.Errorf("Transactions = %d, want 3", len(food.Transactions))
	}
}

func TestSummarizeYearWindow(t *testing.T) {
	s := seedStore(t)
	agg := NewAggregator(s, s).WithClock(fixedClock)

	sum, err := agg.Summarize(context.Background(), "u1", core.PeriodYear)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	// All three entries fall inside 2025.
	if got := findCategory(t, sum, core.Food).Spent.Cents; got != 17900 {
		t.Errorf("Spent = %d, want 17900", got)
	}
}

func TestSummarizeMissingBudget(t *testing.T) {
	s := memory.New()
	agg := NewAggregator(s, s).WithClock(fixedClock)

	sum, err := agg.Summarize(context.Background(), "nobody", core.PeriodMonth)
	if err != nil {
		t.Fatalf("Summarize() error = %v, want nil for missing budget", err)
	}
	if !sum.BudgetMissing {
		t.Error("BudgetMissing = false, want true")
	}
	if len(sum.Categories) != 0 {
		t.Errorf("Categories = %d, want 0", len(sum.Categories))
	}
	if sum.TotalSpent.Cents != 0 || sum.TotalBudget.Cents != 0 || sum.Percentage != 0 {
		t.Errorf("totals = %d/%d/%d, want all zero", sum.TotalSpent.Cents, sum.TotalBudget.Cents, sum.Percentage)
	}
}

func TestSummarizeOverBudgetClamps(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if err := s.SetBudget(ctx, "u1", core.Travel, core.Money{Cents: 10000}); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if _, err := s.AppendTransaction(ctx, "u1", core.Transaction{
		Category: core.Travel, Amount: core.Money{Cents: 15000}, Date: core.NewDate(2025, 3, 10), Description: "flight",
	}); err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}

	agg := NewAggregator(s, s).WithClock(fixedClock)
	sum, err := agg.Summarize(ctx, "u1", core.PeriodMonth)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if sum.Percentage != 100 {
		t.Errorf("Percentage = %d, want clamped 100", sum.Percentage)
	}
	if got := sum.Ratio(); got != 1.5 {
		t.Errorf("Ratio() = %v, want 1.5", got)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	s := seedStore(t)
	agg := NewAggregator(s, s).WithClock(fixedClock)

	first, err := agg.Summarize(context.Background(), "u1", core.PeriodMonth)
	if err != nil {
		t.Fatalf("first Summarize() error = %v", err)
	}
	second, err := agg.Summarize(context.Background(), "u1", core.PeriodMonth)
	if err != nil {
		t.Fatalf("second Summarize() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over unchanged state differ")
	}
}

func TestSummarizeInvalidPeriod(t *testing.T) {
	s := seedStore(t)
	agg := NewAggregator(s, s).WithClock(fixedClock)

	if _, err := agg.Summarize(context.Background(), "u1", core.Period("Q")); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("Summarize() error = %v, want ErrInvalidPeriod", err)
	}
}

// flakyLister fails the fetch for one category and delegates the rest.
type flakyLister struct {
	*memory.Store
	fail core.Category
	err  error
}

func (f *flakyLister) ListTransactions(ctx context.Context, userID string, cat core.Category) ([]core.Transaction, error) {
	if cat == f.fail {
		return nil, f.err
	}
	return f.Store.ListTransactions(ctx, userID, cat)
}

func TestSummarizeCategoryFetchFailure(t *testing.T) {
	s := seedStore(t)
	storeErr := errors.New("store unavailable")
	flaky := &flakyLister{Store: s, fail: core.Bills, err: storeErr}

	agg := NewAggregator(s, flaky).WithClock(fixedClock)
	sum, err := agg.Summarize(context.Background(), "u1", core.PeriodMonth)

	// The failure surfaces distinctly instead of reading as zero spend.
	if err == nil {
		t.Fatal("Summarize() error = nil, want fetch failure")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error %v is not a *FetchError", err)
	}
	if fe.Category != core.Bills {
		t.Errorf("FetchError.Category = %s, want bills", fe.Category)
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("error chain lost the store error: %v", err)
	}

	bills := findCategory(t, sum, core.Bills)
	if bills.FetchErr == nil {
		t.Error("bills summary missing FetchErr")
	}

	// Other categories are unaffected and totals skip the failed one.
	food := findCategory(t, sum, core.Food)
	if food.FetchErr != nil {
		t.Errorf("food summary has FetchErr = %v", food.FetchErr)
	}
	if food.Spent.Cents != 8000 {
		t.Errorf("food Spent = %d, want 8000", food.Spent.Cents)
	}
	if got := sum.Failed(); len(got) != 1 || got[0] != core.Bills {
		t.Errorf("Failed() = %v, want [bills]", got)
	}
}

func TestReducePercentage(t *testing.T) {
	tests := []struct {
		name   string
		spent  int64
		budget int64
		want   int
	}{
		{"zero budget is zero percent", 5000, 0, 0},
		{"forty percent", 8000, 20000, 40},
		{"rounds half up", 125, 1000, 13},
		{"clamps over budget", 15000, 10000, 100},
		{"exact budget", 10000, 10000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cats := []CategorySummary{{
				Category: core.Food,
				Spent:    core.Money{Cents: tt.spent},
				Budget:   core.Money{Cents: tt.budget},
			}}
			_, _, pct := reduce(cats)
			if pct != tt.want {
				t.Errorf("reduce() percentage = %d, want %d", pct, tt.want)
			}
		})
	}
}
