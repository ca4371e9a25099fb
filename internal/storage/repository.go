// Package storage holds the SQLite-backed store and its migrations.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"budgetd/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetBudget implements store.BudgetReader
func (r *SQLiteRepository) GetBudget(ctx context.Context, userID string) (core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, amount_cents FROM budgets WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	budget := core.Budget{}
	for rows.Next() {
		var category string
		var cents int64
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan budget row: %w", err)
		}
		budget[core.Category(category)] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget rows: %w", err)
	}

	if len(budget) == 0 {
		return nil, core.ErrNoBudget
	}
	return budget, nil
}

// SetBudget implements store.BudgetWriter
func (r *SQLiteRepository) SetBudget(ctx context.Context, userID string, category core.Category, amount core.Money) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category, amount_cents, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, category)
		 DO UPDATE SET amount_cents = excluded.amount_cents, updated_at = CURRENT_TIMESTAMP`,
		userID, string(category), amount.Cents)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite",
		"user_id", userID,
		"category", string(category),
		"amount_cents", amount.Cents)

	return nil
}

// ResetBudget zeroes one category, keeping its row
func (r *SQLiteRepository) ResetBudget(ctx context.Context, userID string, category core.Category) error {
	if err := r.requireBudget(ctx, userID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category, amount_cents, updated_at)
		 VALUES (?, ?, 0, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, category)
		 DO UPDATE SET amount_cents = 0, updated_at = CURRENT_TIMESTAMP`,
		userID, string(category))
	if err != nil {
		return fmt.Errorf("reset budget: %w", err)
	}
	return nil
}

// ResetAllBudgets zeroes every category row for the user
func (r *SQLiteRepository) ResetAllBudgets(ctx context.Context, userID string) error {
	if err := r.requireBudget(ctx, userID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET amount_cents = 0, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?`,
		userID)
	if err != nil {
		return fmt.Errorf("reset all budgets: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) requireBudget(ctx context.Context, userID string) error {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM budgets WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return fmt.Errorf("count budgets: %w", err)
	}
	if count == 0 {
		return core.ErrNoBudget
	}
	return nil
}

// AppendTransaction implements store.TransactionWriter
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category, amount_cents, tx_date, description)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, string(tx.Category), tx.Amount.Cents, tx.Date.String(), tx.Description)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"user_id", userID,
		"category", string(tx.Category),
		"amount_cents", tx.Amount.Cents)

	return strconv.FormatInt(id, 10), nil
}

// DeleteTransaction removes a transaction, missing rows are not an error
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID string, category core.Category, id string) error {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		// IDs from other backends never match a SQLite row.
		return nil
	}

	_, err = r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ? AND category = ?`,
		numID, userID, string(category))
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// ListTransactions implements store.TransactionLister
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, category core.Category) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, amount_cents, tx_date, description
		 FROM transactions
		 WHERE user_id = ? AND category = ?
		 ORDER BY tx_date, id`,
		userID, string(category))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var items []core.Transaction
	for rows.Next() {
		var (
			id       int64
			cat      string
			cents    int64
			dateText string
			desc     string
		)
		if err := rows.Scan(&id, &cat, &cents, &dateText, &desc); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}

		date, err := core.ParseDate(dateText)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", dateText, err)
		}

		items = append(items, core.Transaction{
			ID:          strconv.FormatInt(id, 10),
			Category:    core.Category(cat),
			Amount:      core.Money{Cents: cents},
			Date:        date,
			Description: desc,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return items, nil
}

// ListUsers returns every user with a budget or transaction row
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM budgets
		 UNION
		 SELECT user_id FROM transactions
		 ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

// HealthCheck pings the database for readiness probes
func (r *SQLiteRepository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite unavailable: %w", err)
	}
	return nil
}
