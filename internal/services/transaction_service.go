package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgetd/internal/core"
	"budgetd/internal/log"
	"budgetd/internal/store"
)

// nowFunc is swapped in tests to pin period windows.
var nowFunc = time.Now

// TransactionService records and removes spending entries and
// publishes change events for the refresh pipeline.
type TransactionService struct {
	store    store.Store
	notifier ChangeNotifier
}

func NewTransactionService(st store.Store, notifier ChangeNotifier) *TransactionService {
	return &TransactionService{store: st, notifier: notifier}
}

// Add validates and appends a spending entry, returning the stored ID.
func (s *TransactionService) Add(ctx context.Context, userID string, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	id, err := s.store.AppendTransaction(ctx, userID, tx)
	if err != nil {
		return "", fmt.Errorf("append transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		log.FieldUserID, userID,
		"id", id,
		log.FieldCategory, tx.Category,
		log.FieldAmountCents, tx.Amount.Cents,
		"date", tx.Date.String())

	s.notifyTransaction(ctx, userID, tx.Category)
	return id, nil
}

// Delete removes a single entry. Transactions are never mutated in
// place; deletion is the only write after creation.
func (s *TransactionService) Delete(ctx context.Context, userID, rawCategory, id string) error {
	cat, err := core.ParseCategory(rawCategory)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, userID, cat, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", log.FieldUserID, userID, "id", id, log.FieldCategory, cat)
	s.notifyTransaction(ctx, userID, cat)
	return nil
}

// List returns a user's transactions for one category, optionally
// narrowed to a period window.
func (s *TransactionService) List(ctx context.Context, userID, rawCategory, rawPeriod string) ([]core.Transaction, error) {
	cat, err := core.ParseCategory(rawCategory)
	if err != nil {
		return nil, err
	}

	period := core.PeriodAll
	if rawPeriod != "" {
		period, err = core.ParsePeriod(rawPeriod)
		if err != nil {
			return nil, err
		}
	}

	items, err := s.store.ListTransactions(ctx, userID, cat)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if !period.Bounded() {
		return items, nil
	}

	start, err := period.Start(nowFunc())
	if err != nil {
		return nil, err
	}
	filtered := items[:0]
	for _, tx := range items {
		if tx.Date.OnOrAfter(start) {
			filtered = append(filtered, tx)
		}
	}
	return filtered, nil
}

func (s *TransactionService) notifyTransaction(ctx context.Context, userID string, cat core.Category) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishTransactionChange(ctx, userID, cat); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction change",
			log.FieldUserID, userID, log.FieldCategory, cat, log.FieldError, err)
	}
}
