package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"budgetd/internal/core"
)

func TestGetBudgetMissing(t *testing.T) {
	st := New()

	_, err := st.GetBudget(context.Background(), "nobody")
	if !errors.Is(err, core.ErrNoBudget) {
		t.Errorf("GetBudget() error = %v, want ErrNoBudget", err)
	}
}

func TestSetAndGetBudget(t *testing.T) {
	st := New()
	ctx := context.Background()

	if err := st.SetBudget(ctx, "u1", core.Food, core.Money{Cents: 20000}); err != nil {
		t.Fatalf("SetBudget() error = %v", err)
	}

	budget, err := st.GetBudget(ctx, "u1")
	if err != nil {
		t.Fatalf("GetBudget() error = %v", err)
	}
	if budget.Limit(core.Food).Cents != 20000 {
		t.Errorf("limit = %d, want 20000", budget.Limit(core.Food).Cents)
	}

	// The returned budget is a copy; mutating it must not leak back.
	budget[core.Food] = core.Money{Cents: 1}
	again, _ := st.GetBudget(ctx, "u1")
	if again.Limit(core.Food).Cents != 20000 {
		t.Error("mutating the returned budget changed stored state")
	}
}

func TestResetBudgetKeepsKeys(t *testing.T) {
	st := New()
	ctx := context.Background()

	if err := st.SetBudget(ctx, "u1", core.Food, core.Money{Cents: 20000}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetBudget(ctx, "u1", core.Bills, core.Money{Cents: 50000}); err != nil {
		t.Fatal(err)
	}

	if err := st.ResetBudget(ctx, "u1", core.Food); err != nil {
		t.Fatalf("ResetBudget() error = %v", err)
	}

	budget, _ := st.GetBudget(ctx, "u1")
	if _, ok := budget[core.Food]; !ok {
		t.Error("reset removed the food key")
	}
	if budget.Limit(core.Food).Cents != 0 {
		t.Errorf("food limit = %d, want 0", budget.Limit(core.Food).Cents)
	}
	if budget.Limit(core.Bills).Cents != 50000 {
		t.Error("reset touched an unrelated category")
	}
}

func TestResetAllBudgets(t *testing.T) {
	st := New()
	ctx := context.Background()

	if err := st.SetBudget(ctx, "u1", core.Food, core.Money{Cents: 20000}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetBudget(ctx, "u1", core.Bills, core.Money{Cents: 50000}); err != nil {
		t.Fatal(err)
	}

	if err := st.ResetAllBudgets(ctx, "u1"); err != nil {
		t.Fatalf("ResetAllBudgets() error = %v", err)
	}

	budget, _ := st.GetBudget(ctx, "u1")
	want := core.Budget{core.Food: {}, core.Bills: {}}
	if !reflect.DeepEqual(budget, want) {
		t.Errorf("budget after reset = %+v, want zeroed keys", budget)
	}
}

func TestResetWithoutBudget(t *testing.T) {
	st := New()
	ctx := context.Background()

	if err := st.ResetBudget(ctx, "nobody", core.Food); !errors.Is(err, core.ErrNoBudget) {
		t.Errorf("ResetBudget() error = %v, want ErrNoBudget", err)
	}
	if err := st.ResetAllBudgets(ctx, "nobody"); !errors.Is(err, core.ErrNoBudget) {
		t.Errorf("ResetAllBudgets() error = %v, want ErrNoBudget", err)
	}
}

func TestAppendAndListTransactions(t *testing.T) {
	st := New()
	ctx := context.Background()

	id, err := st.AppendTransaction(ctx, "u1", core.Transaction{
		Category:    core.Food,
		Amount:      core.Money{Cents: 1200},
		Date:        core.NewDate(2025, 3, 5),
		Description: "groceries",
	})
	if err != nil {
		t.Fatalf("AppendTransaction() error = %v", err)
	}
	if id == "" {
		t.Fatal("AppendTransaction() returned empty id")
	}

	items, err := st.ListTransactions(ctx, "u1", core.Food)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != id {
		t.Fatalf("items = %+v, want one entry with id %s", items, id)
	}

	// Other categories and users stay empty.
	if items, _ := st.ListTransactions(ctx, "u1", core.Bills); len(items) != 0 {
		t.Error("unrelated category has entries")
	}
	if items, _ := st.ListTransactions(ctx, "u2", core.Food); len(items) != 0 {
		t.Error("unrelated user has entries")
	}
}

func TestAppendTransactionValidates(t *testing.T) {
	st := New()

	_, err := st.AppendTransaction(context.Background(), "u1", core.Transaction{
		Category:    core.Food,
		Amount:      core.Money{Cents: 0},
		Date:        core.NewDate(2025, 3, 5),
		Description: "zero",
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("AppendTransaction() error = %v, want ErrInvalidAmount", err)
	}
}

func TestDeleteTransactionIdempotent(t *testing.T) {
	st := New()
	ctx := context.Background()

	id, err := st.AppendTransaction(ctx, "u1", core.Transaction{
		Category:    core.Food,
		Amount:      core.Money{Cents: 100},
		Date:        core.NewDate(2025, 3, 5),
		Description: "x",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := st.DeleteTransaction(ctx, "u1", core.Food, id); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	// Deleting again, or deleting unknown ids, is not an error.
	if err := st.DeleteTransaction(ctx, "u1", core.Food, id); err != nil {
		t.Errorf("second delete error = %v, want nil", err)
	}
	if err := st.DeleteTransaction(ctx, "u1", core.Food, "mem:999"); err != nil {
		t.Errorf("unknown id delete error = %v, want nil", err)
	}
}

func TestListUsers(t *testing.T) {
	st := New()
	ctx := context.Background()

	if err := st.SetBudget(ctx, "bob", core.Food, core.Money{Cents: 100}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AppendTransaction(ctx, "alice", core.Transaction{
		Category:    core.Food,
		Amount:      core.Money{Cents: 100},
		Date:        core.NewDate(2025, 3, 5),
		Description: "x",
	}); err != nil {
		t.Fatal(err)
	}

	users, err := st.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if !reflect.DeepEqual(users, []string{"alice", "bob"}) {
		t.Errorf("ListUsers() = %v, want [alice bob]", users)
	}
}
