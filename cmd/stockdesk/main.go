package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockdesk/stockdesk/cmd/stockdesk/cli"
	"github.com/stockdesk/stockdesk/internal/analytics"
	analytichttp "github.com/stockdesk/stockdesk/internal/analytics/http"
	"github.com/stockdesk/stockdesk/internal/app"
	"github.com/stockdesk/stockdesk/internal/auth"
	"github.com/stockdesk/stockdesk/internal/dashboard"
	"github.com/stockdesk/stockdesk/internal/masterdata/products"
	"github.com/stockdesk/stockdesk/internal/masterdata/suppliers"
	"github.com/stockdesk/stockdesk/internal/observability"
	"github.com/stockdesk/stockdesk/internal/platform/cache"
	"github.com/stockdesk/stockdesk/internal/platform/db"
	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/sales"
	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/users"
	"github.com/stockdesk/stockdesk/internal/view"
	"github.com/stockdesk/stockdesk/jobs"
)

const sessionCookie = "stockdesk_session"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "migrate":
		err = migrate(ctx, cfg, logger)
	case "jobs":
		jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
		code := jobsCLI.Run(ctx, args, cli.JobsOptions{})
		if err := jobsCLI.Close(); err != nil {
			logger.Warn("jobs cli close", slog.Any("error", err))
		}
		os.Exit(code)
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command %q (want serve, migrate or jobs)\n", cmd)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(cmd+" failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func migrate(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	return db.Migrate(ctx, pool, logger)
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, sessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	templates, err := view.NewEngine()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	metrics := observability.NewMetrics()

	userService := users.NewService(users.NewRepository(pool))
	rbacMiddleware := rbac.Middleware{Users: userService, Logger: logger}

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)
	usersHandler := users.NewHandler(logger, userService, templates, csrfManager, rbacMiddleware)

	supplierService := suppliers.NewService(suppliers.NewRepository(pool))
	supplierHandler := suppliers.NewHandler(logger, supplierService, templates, csrfManager, rbacMiddleware)
	productService := products.NewService(products.NewRepository(pool), supplierService)
	productHandler := products.NewHandler(logger, productService, supplierService, templates, csrfManager, rbacMiddleware)

	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL, logger)
	analyticsService := analytics.NewService(analytics.NewRepository(pool), analyticsCache, logger)
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService, templates, csrfManager, rbacMiddleware, cfg.ChartsPerMinute)

	processor := sales.NewProcessor(sales.NewRepository(pool), logger, sales.ProcessorConfig{
		Outcomes: metrics,
		Observers: []sales.Observer{
			sales.ObserverFunc(func(ctx context.Context, _ sales.Sale) error {
				return analyticsCache.Bump(ctx)
			}),
		},
	})
	salesHandler := sales.NewHandler(logger, processor, templates, csrfManager, rbacMiddleware)
	dashboardHandler := dashboard.NewHandler(logger, productService, supplierService, processor, templates, csrfManager, rbacMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		RBACMiddleware:   rbacMiddleware,
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		ProductHandler:   productHandler,
		SupplierHandler:  supplierHandler,
		SalesHandler:     salesHandler,
		UsersHandler:     usersHandler,
		AnalyticsHandler: analyticsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
