package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgetd/internal/core"
	"budgetd/internal/store/memory"
)

// recordingNotifier captures published change events.
type recordingNotifier struct {
	budgetEvents      int
	transactionEvents int
	fail              bool
}

func (n *recordingNotifier) PublishBudgetChange(context.Context, string, core.Category) error {
	n.budgetEvents++
	if n.fail {
		return errors.New("broker down")
	}
	return nil
}

func (n *recordingNotifier) PublishTransactionChange(context.Context, string, core.Category) error {
	n.transactionEvents++
	if n.fail {
		return errors.New("broker down")
	}
	return nil
}

func TestTransactionServiceAddAndDelete(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	notifier := &recordingNotifier{}
	svc := NewTransactionService(st, notifier)

	id, err := svc.Add(ctx, "u1", core.Transaction{
		Category:    core.Dining,
		Amount:      core.Money{Cents: 4500},
		Date:        core.NewDate(2025, 3, 10),
		Description: "lunch",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if id == "" {
		t.Fatal("Add() returned empty id")
	}
	if notifier.transactionEvents != 1 {
		t.Errorf("transaction events = %d, want 1", notifier.transactionEvents)
	}

	items, err := st.ListTransactions(ctx, "u1", core.Dining)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != id {
		t.Fatalf("stored items = %+v, want one with id %s", items, id)
	}

	if err := svc.Delete(ctx, "u1", "dining", id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	items, _ = st.ListTransactions(ctx, "u1", core.Dining)
	if len(items) != 0 {
		t.Errorf("items after delete = %d, want 0", len(items))
	}
	if notifier.transactionEvents != 2 {
		t.Errorf("transaction events = %d, want 2", notifier.transactionEvents)
	}
}

func TestTransactionServiceAddRejectsInvalid(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil)

	_, err := svc.Add(context.Background(), "u1", core.Transaction{
		Category:    core.Dining,
		Amount:      core.Money{Cents: -100},
		Date:        core.NewDate(2025, 3, 10),
		Description: "bad",
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("Add() error = %v, want ErrInvalidAmount", err)
	}
}

func TestTransactionServiceNotifierFailureDoesNotFailWrite(t *testing.T) {
	st := memory.New()
	svc := NewTransactionService(st, &recordingNotifier{fail: true})

	if _, err := svc.Add(context.Background(), "u1", core.Transaction{
		Category:    core.Food,
		Amount:      core.Money{Cents: 100},
		Date:        core.NewDate(2025, 3, 1),
		Description: "apples",
	}); err != nil {
		t.Errorf("Add() error = %v, want nil when only the notifier fails", err)
	}
}

func TestTransactionServiceListFiltersByPeriod(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewTransactionService(st, nil)

	prev := nowFunc
	nowFunc = func() time.Time { return time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = prev }()

	for _, tx := range []core.Transaction{
		{Category: core.Food, Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 3, 5), Description: "march"},
		{Category: core.Food, Amount: core.Money{Cents: 200}, Date: core.NewDate(2025, 1, 5), Description: "january"},
	} {
		if _, err := svc.Add(ctx, "u1", tx); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	monthly, err := svc.List(ctx, "u1", "food", "M")
	if err != nil {
		t.Fatalf("List(M) error = %v", err)
	}
	if len(monthly) != 1 || monthly[0].Description != "march" {
		t.Errorf("List(M) = %+v, want only the march entry", monthly)
	}

	all, err := svc.List(ctx, "u1", "food", "ALL")
	if err != nil {
		t.Fatalf("List(ALL) error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List(ALL) = %d items, want 2", len(all))
	}

	if _, err := svc.List(ctx, "u1", "food", "Q"); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("List(Q) error = %v, want ErrInvalidPeriod", err)
	}
}
