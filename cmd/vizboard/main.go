package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vizboard/vizboard/pkg/access"
	"github.com/vizboard/vizboard/pkg/api"
	"github.com/vizboard/vizboard/pkg/billing"
	"github.com/vizboard/vizboard/pkg/config"
	"github.com/vizboard/vizboard/pkg/httputil"
	"github.com/vizboard/vizboard/pkg/middleware"
	"github.com/vizboard/vizboard/pkg/observability"
	"github.com/vizboard/vizboard/pkg/plans"
	"github.com/vizboard/vizboard/pkg/secrets"
	"github.com/vizboard/vizboard/pkg/teams"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("starting vizboard")

	ctx := context.Background()

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("failed to initialize OpenTelemetry")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.WithError(err).Error("failed to open database")
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		logger.WithError(err).Error("failed to ping database")
		os.Exit(1)
	}
	logger.Info("connected to postgres")

	if err := teams.RunMigrations(ctx, db); err != nil {
		logger.WithError(err).Error("failed to run migrations")
		os.Exit(1)
	}
	logger.Info("migrations applied")

	cipher, err := secrets.NewAESCipher(cfg.Secrets.Secret, cfg.Secrets.Salt)
	if err != nil {
		logger.WithError(err).Error("failed to initialize cipher")
		os.Exit(1)
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	var gateway billing.Gateway
	stripeOpts := []billing.StripeOption{}
	if cfg.Billing.BaseURL != "" {
		stripeOpts = append(stripeOpts, billing.WithBaseURL(cfg.Billing.BaseURL))
	}
	stripeOpts = append(stripeOpts, billing.WithHTTPClient(&http.Client{Timeout: cfg.Billing.Timeout}))
	gateway = billing.NewStripeGateway(cfg.Billing.StripeAPIKey, stripeOpts...)
	if metrics != nil {
		gateway = billing.NewInstrumentedGateway(gateway, metrics)
	}

	service := teams.NewPostgresService(db, gateway, cipher, plans.DefaultCatalog(), logger, metrics)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.WithError(err).Error("invalid redis URL")
			os.Exit(1)
		}
		if cfg.Redis.Password != "" {
			opts.Password = cfg.Redis.Password
		}
		opts.DB = cfg.Redis.DB
		opts.PoolSize = cfg.Redis.PoolSize
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable at startup, rate limiting will fail open")
		} else {
			logger.Info("connected to redis")
		}
	}

	router := mux.NewRouter()
	router.Use(httputil.RecoveryMiddleware(logger))
	router.Use(httputil.LoggingMiddleware(logger))
	router.Use(httputil.CORSMiddleware([]string{"*"}))
	if metrics != nil {
		router.Use(metrics.Middleware)
	}

	authMiddleware := middleware.NewAuthMiddleware(service, false)
	router.Use(authMiddleware.Handler)

	if redisClient != nil {
		router.Use(middleware.NewDistributedRateLimitMiddleware(redisClient).Handler)
	} else {
		rateLimiter := middleware.NewRateLimitMiddleware()
		router.Use(rateLimiter.Handler)
	}

	server := api.NewServer(service, access.NewChecker(), logger)
	server.RegisterRoutes(router)

	var handler http.Handler = router
	if cfg.Observability.OTelEnabled {
		handler = otelhttp.NewHandler(router, "vizboard")
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Separate health/metrics server so probes stay off the public port
	healthChecker := observability.NewHealthChecker(db, redisClient)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/livez", healthChecker.Liveness)
	healthMux.HandleFunc("/readyz", healthChecker.Readiness)
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	if metrics != nil {
		go collectDBStats(ctx, metrics, db)
	}

	go func() {
		logger.Infof("health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("health server failed")
		}
	}()

	go func() {
		logger.Infof("api server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("api server failed")
			os.Exit(1)
		}
	}()

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.Register(func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	if redisClient != nil {
		shutdown.Register(func(ctx context.Context) error {
			return redisClient.Close()
		})
	}
	shutdown.Register(func(ctx context.Context) error {
		return db.Close()
	})
	shutdown.Register(providers.Shutdown)

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown finished with errors")
		os.Exit(1)
	}
}

// collectDBStats periodically copies pool stats into the gauges
func collectDBStats(ctx context.Context, metrics *observability.Metrics, db *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.CollectDBStats(db)
		case <-ctx.Done():
			return
		}
	}
}
