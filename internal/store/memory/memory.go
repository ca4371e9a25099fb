// Package memory provides an in-process store used for development
// runs and tests.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"budgetd/internal/core"
)

type userData struct {
	budget       core.Budget
	transactions map[core.Category][]core.Transaction
}

// Store keeps budgets and transactions in mutex-guarded maps.
type Store struct {
	mu     sync.Mutex
	users  map[string]*userData
	nextID int64
}

func New() *Store {
	return &Store{users: make(map[string]*userData)}
}

func (s *Store) user(id string) *userData {
	u, ok := s.users[id]
	if !ok {
		u = &userData{transactions: make(map[core.Category][]core.Transaction)}
		s.users[id] = u
	}
	return u
}

// GetBudget returns a copy of the user's budget, or core.ErrNoBudget
// when none was ever created.
func (s *Store) GetBudget(_ context.Context, userID string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.budget == nil {
		return nil, core.ErrNoBudget
	}
	out := make(core.Budget, len(u.budget))
	for k, v := range u.budget {
		out[k] = v
	}
	return out, nil
}

func (s *Store) SetBudget(_ context.Context, userID string, cat core.Category, limit core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	if u.budget == nil {
		u.budget = make(core.Budget)
	}
	u.budget[cat] = limit
	return nil
}

// ResetBudget zeroes one category's limit, keeping the key.
func (s *Store) ResetBudget(_ context.Context, userID string, cat core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.budget == nil {
		return core.ErrNoBudget
	}
	u.budget[cat] = core.Money{}
	return nil
}

// ResetAllBudgets zeroes every limit, keeping all keys.
func (s *Store) ResetAllBudgets(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.budget == nil {
		return core.ErrNoBudget
	}
	for k := range u.budget {
		u.budget[k] = core.Money{}
	}
	return nil
}

func (s *Store) ListTransactions(_ context.Context, userID string, cat core.Category) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	items := u.transactions[cat]
	out := make([]core.Transaction, len(items))
	copy(out, items)
	return out, nil
}

func (s *Store) AppendTransaction(_ context.Context, userID string, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	tx.ID = "mem:" + strconv.FormatInt(s.nextID, 10)
	u := s.user(userID)
	u.transactions[tx.Category] = append(u.transactions[tx.Category], tx)
	return tx.ID, nil
}

func (s *Store) ListUsers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.users))
	for id := range s.users {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID string, cat core.Category, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	items := u.transactions[cat]
	for i, tx := range items {
		if tx.ID == id {
			u.transactions[cat] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}
