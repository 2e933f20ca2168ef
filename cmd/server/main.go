package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ricirt/aqi-bulletin/internal/api"
	"github.com/ricirt/aqi-bulletin/internal/api/handler"
	"github.com/ricirt/aqi-bulletin/internal/config"
	"github.com/ricirt/aqi-bulletin/internal/db"
	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/metrics"
	"github.com/ricirt/aqi-bulletin/internal/provider"
	"github.com/ricirt/aqi-bulletin/internal/queue"
	"github.com/ricirt/aqi-bulletin/internal/ratelimiter"
	"github.com/ricirt/aqi-bulletin/internal/repository"
	"github.com/ricirt/aqi-bulletin/internal/service"
	"github.com/ricirt/aqi-bulletin/internal/worker"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "aqi-bulletin",
	Short: "Air-quality bulletin server with live toast notifications",
	// Default to serve when no subcommand is given
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations, start the workers and serve the HTTP API",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("aqi-bulletin", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, watchCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadEnv reads .env when present. A missing file is not an error.
func loadEnv(logger *zap.Logger) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to read .env", zap.Error(err))
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	loadEnv(logger)

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	toasts := queue.New(cfg.ToastDuration, logger.With(zap.String("component", "toasts")),
		queue.WithHooks(m.QueueHooks()),
	)
	// Cancels every pending expiry and closes live streams.
	defer toasts.Close()

	repo := repository.NewPgBulletinRepository(pool)

	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	// ---- print dispatch (optional) ----
	var (
		dispatcher *worker.Dispatcher
		dispatch   service.Dispatcher
		pending    handler.Counter
	)
	if cfg.PrintWebhookURL != "" {
		onDelivered, onFailed := m.DispatchHooks()
		dispatcher = worker.NewDispatcher(cfg,
			provider.NewWebhookSurface(cfg.PrintWebhookURL, cfg.PrintTimeout),
			ratelimiter.New[string](cfg.PrintRateLimit),
			toasts,
			logger.With(zap.String("component", "dispatch")),
			worker.MetricHooks{OnDelivered: onDelivered, OnFailed: onFailed},
		)
		dispatcher.Start(workerCtx)
		dispatch = dispatcher
		pending = dispatcher.Pending
	} else {
		logger.Info("PRINT_WEBHOOK_URL not set, print dispatch disabled")
	}

	svc := service.NewBulletinService(repo, domain.StaticAdvisor{}, toasts, dispatch, m.OnStored, logger)

	alerts := worker.NewAlertWorker(svc, toasts, cfg.AlertThreshold, cfg.AlertInterval, m.OnAlert,
		logger.With(zap.String("component", "alerts")),
	)
	go alerts.Run(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(api.Deps{
		Bulletins:       svc,
		Toasts:          toasts,
		ToastLimiter:    ratelimiter.New[domain.Variant](cfg.ToastRateLimit),
		PendingDispatch: pending,
		DB:              pool,
		Registry:        reg,
		Logger:          logger,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Tear down the toast queue so streams end and no timer fires late.
	toasts.Close()

	// 3. Stop the workers and wait for in-flight deliveries.
	cancelWorkers()
	if dispatcher != nil {
		dispatcher.Wait()
	}

	logger.Info("server stopped cleanly")
	return nil
}
