// Package services provides business logic and orchestration between
// the store boundary and the change-event broker.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetd/internal/core"
	"budgetd/internal/log"
	"budgetd/internal/store"
)

// ChangeNotifier publishes change events after successful writes.
// Implementations may drop events when the broker is unavailable; the
// write itself never fails because of a notification.
type ChangeNotifier interface {
	PublishBudgetChange(ctx context.Context, userID string, cat core.Category) error
	PublishTransactionChange(ctx context.Context, userID string, cat core.Category) error
}

// BudgetService handles budget mutations: normalization, validation
// and persistence, plus change notifications.
type BudgetService struct {
	store    store.Store
	notifier ChangeNotifier
}

func NewBudgetService(st store.Store, notifier ChangeNotifier) *BudgetService {
	return &BudgetService{store: st, notifier: notifier}
}

// Set normalizes a raw amount to its monthly equivalent and stores it
// under the category. The amount is rejected before any write when it
// is non-numeric or not positive.
func (s *BudgetService) Set(ctx context.Context, userID string, rawCategory, rawAmount, rawFrequency string) (core.Money, error) {
	cat, err := core.ParseCategory(rawCategory)
	if err != nil {
		return core.Money{}, err
	}
	freq, err := core.ParseFrequency(rawFrequency)
	if err != nil {
		return core.Money{}, err
	}
	cents, err := core.ParseDecimalToCents(rawAmount)
	if err != nil {
		return core.Money{}, err
	}

	monthly := core.NormalizeMonthly(core.Money{Cents: cents}, freq)
	if err := s.store.SetBudget(ctx, userID, cat, monthly); err != nil {
		return core.Money{}, fmt.Errorf("set budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget limit updated",
		log.FieldUserID, userID,
		log.FieldCategory, cat,
		"frequency", freq,
		log.FieldAmountCents, monthly.Cents)

	s.notifyBudget(ctx, userID, cat)
	return monthly, nil
}

// Reset zeroes one category's limit, or every limit when rawCategory
// is "all". Keys survive the reset.
func (s *BudgetService) Reset(ctx context.Context, userID, rawCategory string) error {
	if rawCategory == "all" {
		if err := s.store.ResetAllBudgets(ctx, userID); err != nil {
			return fmt.Errorf("reset all budgets: %w", err)
		}
		slog.InfoContext(ctx, "All budget limits reset", log.FieldUserID, userID)
		s.notifyBudget(ctx, userID, "")
		return nil
	}

	cat, err := core.ParseCategory(rawCategory)
	if err != nil {
		return err
	}
	if err := s.store.ResetBudget(ctx, userID, cat); err != nil {
		return fmt.Errorf("reset budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget limit reset", log.FieldUserID, userID, log.FieldCategory, cat)
	s.notifyBudget(ctx, userID, cat)
	return nil
}

// EnsureDefault creates the fixed default budget for a user that has
// none yet. Existing budgets are left untouched.
func (s *BudgetService) EnsureDefault(ctx context.Context, userID string) error {
	_, err := s.store.GetBudget(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrNoBudget) {
		return fmt.Errorf("get budget: %w", err)
	}

	for cat, limit := range core.DefaultBudget() {
		if err := s.store.SetBudget(ctx, userID, cat, limit); err != nil {
			return fmt.Errorf("seed default budget: %w", err)
		}
	}
	slog.InfoContext(ctx, "Default budget created", log.FieldUserID, userID)
	return nil
}

func (s *BudgetService) notifyBudget(ctx context.Context, userID string, cat core.Category) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishBudgetChange(ctx, userID, cat); err != nil {
		// The write succeeded; a lost event only delays a refresh.
		slog.ErrorContext(ctx, "Failed to publish budget change",
			log.FieldUserID, userID, log.FieldCategory, cat, log.FieldError, err)
	}
}
