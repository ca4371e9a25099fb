// Package store defines the document-store boundary the aggregation
// core depends on. Backends (memory, sqlite, mongo) implement these
// ports; the core never sees which one is wired.
package store

import (
	"context"

	"budgetd/internal/core"
)

type (
	// BudgetReader loads a user's budget document. A user without a
	// budget yields core.ErrNoBudget, which callers treat as a clean
	// empty state.
	BudgetReader interface {
		GetBudget(ctx context.Context, userID string) (core.Budget, error)
	}

	// BudgetWriter mutates budget limits. SetBudget stores an already
	// normalized monthly amount. Resets zero values without removing
	// keys.
	BudgetWriter interface {
		SetBudget(ctx context.Context, userID string, cat core.Category, limit core.Money) error
		ResetBudget(ctx context.Context, userID string, cat core.Category) error
		ResetAllBudgets(ctx context.Context, userID string) error
	}

	// TransactionLister returns every transaction a user recorded for
	// one category, in no particular order. Date filtering happens in
	// the aggregator, not here.
	TransactionLister interface {
		ListTransactions(ctx context.Context, userID string, cat core.Category) ([]core.Transaction, error)
	}

	// TransactionWriter records and removes spending entries.
	// Transactions are never updated in place.
	TransactionWriter interface {
		AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (id string, err error)
		DeleteTransaction(ctx context.Context, userID string, cat core.Category, id string) error
	}

	// UserLister enumerates users with any stored data. The report
	// exporter uses it to find whose summaries to export.
	UserLister interface {
		ListUsers(ctx context.Context) ([]string, error)
	}

	// Store is the full boundary a backend provides.
	Store interface {
		BudgetReader
		BudgetWriter
		TransactionLister
		TransactionWriter
		UserLister
	}
)
