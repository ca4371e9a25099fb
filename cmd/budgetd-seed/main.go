// budgetd-seed fills the configured backend with generated users,
// budgets and spending entries for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/joho/godotenv"

	"budgetd/internal/backend"
	"budgetd/internal/config"
	"budgetd/internal/core"
	"budgetd/internal/log"
	"budgetd/internal/services"
)

func main() {
	users := flag.Int("users", 3, "number of users to create")
	perUser := flag.Int("transactions", 40, "transactions per user")
	days := flag.Int("days", 90, "spread transactions over the last N days")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentSeed})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Backend configuration invalid", log.FieldError, err)
		os.Exit(1)
	}

	ctx := context.Background()
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = result.Cleanup(cleanupCtx)
		}()
	}

	rng := rand.New(rand.NewSource(*seed))
	budgetSvc := services.NewBudgetService(result.Store, nil)
	txSvc := services.NewTransactionService(result.Store, nil)

	for i := 0; i < *users; i++ {
		userID := fmt.Sprintf("user-%02d", i+1)
		if err := seedUser(ctx, rng, budgetSvc, txSvc, userID, *perUser, *days); err != nil {
			logger.Error("Seeding user failed", log.FieldUserID, userID, log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Seeded user", log.FieldUserID, userID, "transactions", *perUser)
	}

	logger.Info("Seeding complete",
		"users", *users,
		"transactions", (*users)*(*perUser),
		log.FieldBackend, cfg.DataBackend)
}

func seedUser(ctx context.Context, rng *rand.Rand, budgets *services.BudgetService, txs *services.TransactionService, userID string, count, days int) error {
	if err := budgets.EnsureDefault(ctx, userID); err != nil {
		return fmt.Errorf("ensure default budget: %w", err)
	}

	// Give a few random categories an explicit limit on top of the
	// defaults so summaries show variety.
	for i := 0; i < 3; i++ {
		cat := core.Categories[rng.Intn(len(core.Categories))]
		amount := fmt.Sprintf("%d.%02d", 50+rng.Intn(400), rng.Intn(100))
		if _, err := budgets.Set(ctx, userID, string(cat), amount, ""); err != nil {
			return fmt.Errorf("set budget for %s: %w", cat, err)
		}
	}

	now := time.Now()
	for i := 0; i < count; i++ {
		cat := core.Categories[rng.Intn(len(core.Categories))]
		when := now.AddDate(0, 0, -rng.Intn(days))

		tx := core.Transaction{
			Category:    cat,
			Amount:      core.Money{Cents: int64(100 + rng.Intn(15000))},
			Date:        core.NewDate(when.Year(), int(when.Month()), when.Day()),
			Description: fakeDescription(),
		}
		if _, err := txs.Add(ctx, userID, tx); err != nil {
			return fmt.Errorf("add transaction: %w", err)
		}
	}
	return nil
}

func fakeDescription() string {
	desc := strings.TrimSuffix(faker.Sentence(), ".")
	if len(desc) > 200 {
		desc = desc[:200]
	}
	return desc
}
