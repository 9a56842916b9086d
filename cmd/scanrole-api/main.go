// scanrole-api is the job-market role explorer service.
//
// Serves period-over-period metrics (counts, salary, remote share,
// seniority mix) per normalized job role, broken down by country/state.
// Requests are rate limited per client and gated on bearer-token
// introspection against the external identity service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexFilippov-it/scanrole-api/internal/auth"
	"github.com/AlexFilippov-it/scanrole-api/internal/config"
	"github.com/AlexFilippov-it/scanrole-api/internal/db"
	"github.com/AlexFilippov-it/scanrole-api/internal/explorer"
	"github.com/AlexFilippov-it/scanrole-api/internal/httpapi"
	"github.com/AlexFilippov-it/scanrole-api/internal/metrics"
	"github.com/AlexFilippov-it/scanrole-api/internal/ratelimit"
	"github.com/AlexFilippov-it/scanrole-api/internal/scheduler"
)

const rateLimitWindow = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)
	logger := log.With().Str("component", "scanrole-api").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()
	logger.Info().Msg("postgres connected")

	var store ratelimit.Store
	var memStore *ratelimit.MemoryStore
	switch cfg.RateLimitBackend {
	case "redis":
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		store = ratelimit.NewRedisStore(rdb)
		logger.Info().Msg("rate limiting backed by redis")
	default:
		memStore = ratelimit.NewMemoryStore()
		store = memStore
	}

	limiter := ratelimit.NewLimiter(store, cfg.RateLimitPerMinute, rateLimitWindow, cfg.TrustProxy, logger)
	gate := auth.NewGate(cfg.IntrospectURL, cfg.IntrospectSecret, logger)

	service := explorer.NewService(pool, cfg.RoleTable)
	handler := explorer.NewHandler(service, logger)

	root := mux.NewRouter()
	root.Use(httpapi.RequestLogger(logger))

	api := root.PathPrefix("/api/v1").Subrouter()
	handler.RegisterPublic(api)

	protected := api.NewRoute().Subrouter()
	protected.Use(limiter.Middleware)
	protected.Use(gate.RequireScope(auth.ScopeRoleExplorer))
	handler.Register(protected)

	if memStore != nil {
		janitor := scheduler.NewJanitor(memStore, "@every 10m", logger)
		if err := janitor.Start(); err != nil {
			logger.Fatal().Err(err).Msg("janitor start failed")
		}
		defer janitor.Stop()
	}

	go startMetricsServer(ctx, cfg.MetricsPort, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	logger.Info().Msg("stopped")
}

func startMetricsServer(ctx context.Context, port string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("port", port).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
