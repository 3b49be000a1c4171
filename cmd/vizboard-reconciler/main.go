// vizboard-reconciler audits billed seat quantities against actual team
// membership on a cron schedule. It is read-only: drift is reported through
// logs and the seat drift gauge, never corrected automatically.
package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/vizboard/vizboard/pkg/billing"
	"github.com/vizboard/vizboard/pkg/config"
	"github.com/vizboard/vizboard/pkg/observability"
	"github.com/vizboard/vizboard/pkg/plans"
	"github.com/vizboard/vizboard/pkg/secrets"
	"github.com/vizboard/vizboard/pkg/teams"
)

func main() {
	var (
		schedule = flag.String("schedule", "", "cron expression; overrides VIZBOARD_RECONCILE_SCHEDULE")
		runOnce  = flag.Bool("run-once", false, "run a single reconciliation pass and exit")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *schedule == "" {
		*schedule = cfg.Reconciler.Schedule
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("starting vizboard-reconciler")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.WithError(err).Error("failed to open database")
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		logger.WithError(err).Error("failed to ping database")
		os.Exit(1)
	}

	cipher, err := secrets.NewAESCipher(cfg.Secrets.Secret, cfg.Secrets.Salt)
	if err != nil {
		logger.WithError(err).Error("failed to initialize cipher")
		os.Exit(1)
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	stripeOpts := []billing.StripeOption{
		billing.WithHTTPClient(&http.Client{Timeout: cfg.Billing.Timeout}),
	}
	if cfg.Billing.BaseURL != "" {
		stripeOpts = append(stripeOpts, billing.WithBaseURL(cfg.Billing.BaseURL))
	}
	var gateway billing.Gateway = billing.NewStripeGateway(cfg.Billing.StripeAPIKey, stripeOpts...)
	if metrics != nil {
		gateway = billing.NewInstrumentedGateway(gateway, metrics)
	}

	service := teams.NewPostgresService(db, gateway, cipher, plans.DefaultCatalog(), logger, metrics)

	if *runOnce {
		if err := reconcile(ctx, service, logger); err != nil {
			os.Exit(1)
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*schedule, func() {
		runCtx, runCancel := context.WithTimeout(ctx, 10*time.Minute)
		defer runCancel()
		reconcile(runCtx, service, logger) //nolint:errcheck
	}); err != nil {
		logger.WithError(err).Errorf("invalid schedule %q", *schedule)
		os.Exit(1)
	}
	c.Start()
	logger.Infof("reconciler scheduled with %q", *schedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down reconciler")
	stopCtx := c.Stop()
	<-stopCtx.Done()
}

func reconcile(ctx context.Context, service *teams.PostgresService, logger *observability.Logger) error {
	start := time.Now()
	drifts, err := service.ReconcileSeats(ctx)
	if err != nil {
		logger.WithError(err).Error("reconciliation pass failed")
		return err
	}
	logger.WithFields(map[string]interface{}{
		"teams_drifting": len(drifts),
		"duration":       time.Since(start).String(),
	}).Info("reconciliation pass complete")
	return nil
}
