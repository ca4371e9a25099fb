// The worker consumes change events from the broker, debounces them
// into summary refreshes, and runs the scheduled report export.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"budgetd/internal/amqp"
	"budgetd/internal/backend"
	"budgetd/internal/config"
	"budgetd/internal/core"
	"budgetd/internal/export/sheets"
	"budgetd/internal/log"
	"budgetd/internal/refresh"
	"budgetd/internal/store"
	"budgetd/internal/summary"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting budgetd-worker")

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cleanupCancel()
			if err := result.Cleanup(cleanupCtx); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err)
			}
		}()
	}
	st := result.Store

	agg := summary.NewAggregator(st, st)

	// Refresh recomputes the monthly summary after a quiet window so a
	// burst of writes costs one aggregation, not one per write.
	refresher := refresh.New(func(ctx context.Context, userID string) error {
		result, err := agg.Summarize(ctx, userID, core.PeriodMonth)
		if err != nil {
			return err
		}
		logger.Info("Summary refreshed",
			log.FieldUserID, userID,
			"total_spent_cents", result.TotalSpent.Cents,
			"total_budget_cents", result.TotalBudget.Cents,
			"percentage", result.Percentage)
		return nil
	}, cfg.RefreshDebounce, logger)
	refresher.Start(ctx)
	defer refresher.Stop()

	// Consume change events, feeding the debouncer.
	go func() {
		err := amqp.ConsumeChangesWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, func(msg *amqp.ChangeMessage) error {
			refresher.Notify(msg.UserID)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
			cancel()
		}
	}()

	// Scheduled report export (optional).
	var scheduler *cron.Cron
	if cfg.ExportEnabled() {
		exporter, err := sheets.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize sheets exporter", log.FieldError, err)
			os.Exit(1)
		}

		scheduler = cron.New()
		_, err = scheduler.AddFunc(cfg.ReportSchedule, func() {
			runCtx, runCancel := context.WithTimeout(ctx, 5*time.Minute)
			defer runCancel()
			if err := exportReports(runCtx, st, exporter, logger); err != nil {
				logger.Error("Report export failed", log.FieldError, err)
			}
		})
		if err != nil {
			logger.Error("Invalid report schedule", log.FieldError, err, "schedule", cfg.ReportSchedule)
			os.Exit(1)
		}
		scheduler.Start()
		logger.Info("Report export scheduled", "schedule", cfg.ReportSchedule)
	} else {
		logger.Info("Report export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	logger.Info("Worker shutdown complete")
}

// exportReports writes last month's summary for every known user.
func exportReports(ctx context.Context, st store.Store, exporter *sheets.Exporter, logger *log.Logger) error {
	users, err := st.ListUsers(ctx)
	if err != nil {
		return err
	}

	// The schedule fires just after month rollover; aggregate against
	// yesterday so the window covers the month being reported.
	asOf := time.Now().AddDate(0, 0, -1)
	agg := summary.NewAggregator(st, st).WithClock(func() time.Time { return asOf })

	var failures int
	for _, userID := range users {
		result, err := agg.Summarize(ctx, userID, core.PeriodMonth)
		if err != nil {
			logger.Error("Skipping export for user", log.FieldUserID, userID, log.FieldError, err)
			failures++
			continue
		}
		if err := exporter.ExportSummary(ctx, userID, asOf, result); err != nil {
			logger.Error("Export failed for user", log.FieldUserID, userID, log.FieldError, err)
			failures++
		}
	}

	logger.Info("Report export finished", "users", len(users), "failures", failures)
	if failures > 0 {
		return errors.New("some exports failed")
	}
	return nil
}
