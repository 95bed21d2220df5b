package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	database "github.com/ervipinsingh/spice-drama-admin/app/db"
	appLogger "github.com/ervipinsingh/spice-drama-admin/app/logger"
	appmetrics "github.com/ervipinsingh/spice-drama-admin/app/observability/metrics"
	"github.com/ervipinsingh/spice-drama-admin/app/tracer"
	"github.com/ervipinsingh/spice-drama-admin/config"
	"github.com/ervipinsingh/spice-drama-admin/internal/api/account"
	"github.com/ervipinsingh/spice-drama-admin/internal/api/auth"
	"github.com/ervipinsingh/spice-drama-admin/internal/ratelimit"
	approuter "github.com/ervipinsingh/spice-drama-admin/internal/router"
	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Metrics ---
	metricsHandler, err := tracer.InitMetrics()
	if err != nil {
		logger.Error("Failed to initialize metrics exporter", slog.Any("error", err))
		os.Exit(1)
	}
	appmetrics.InitAppMetrics()

	// --- Database ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}
	if err = database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Rate limiter store ---
	var counterStore ratelimit.CounterStore
	switch cfg.RateLimit.Store {
	case config.RateLimitStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Repositories.Redis.Addr,
			Password: cfg.Repositories.Redis.Password,
			DB:       cfg.Repositories.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("Redis not reachable", slog.Any("error", err))
			os.Exit(1)
		}
		counterStore = ratelimit.NewRedisStore(rdb)
		logger.Info("Rate limiting via shared Redis store",
			slog.String("addr", cfg.Repositories.Redis.Addr))
	default:
		counterStore = ratelimit.NewMemoryStore(cfg.RateLimit.Window)
		logger.Warn("Rate limiting via in-memory store; counters are per-instance, " +
			"configure the redis store when running more than one replica")
	}
	limiter := ratelimit.NewLoginLimiter(counterStore, cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window, logger)

	// --- Credential issuer (one strategy per deployment) ---
	var issuer auth.CredentialIssuer
	switch cfg.Auth.Strategy {
	case config.AuthStrategySession:
		issuer = auth.NewSessionIssuer(pool, cfg.Auth, cfg.IsProduction(), logger)
		logger.Info("Using stateful session credentials",
			slog.Duration("ttl", cfg.Auth.SessionTTL))
	default:
		issuer, err = auth.NewTokenIssuer(cfg.Auth.JWT)
		if err != nil {
			logger.Error("Failed to initialize token issuer", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Using stateless token credentials",
			slog.Duration("ttl", cfg.Auth.JWT.TokenTTL))
	}

	// --- Dependency Injection ---
	accountRepo := account.NewPostgresAccountRepo(pool, logger)
	accountService := account.NewAccountService(accountRepo, logger)
	accountHandler := account.NewAccountHandler(accountService, logger)

	authService := auth.NewAuthService(accountRepo, issuer, logger)
	authHandler := auth.NewAuthHandler(authService, issuer, limiter, logger)

	routerConfig := &approuter.Config{
		AuthHandler:    authHandler,
		AccountHandler: accountHandler,
		Gate: func(required types.RoleSet) func(next http.Handler) http.Handler {
			return auth.Gate(issuer, accountRepo, required, logger)
		},
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}
	mainRouter := approuter.SetupRouter(routerConfig)

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metricsHandler)
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server graceful shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger(cfg config.Config) *slog.Logger {
	var logger *slog.Logger

	if !cfg.IsProduction() {
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
