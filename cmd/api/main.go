package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/marquee/marquee-go/internal/cache"
	"github.com/marquee/marquee-go/internal/config"
	"github.com/marquee/marquee-go/internal/handler"
	"github.com/marquee/marquee-go/internal/logging"
	"github.com/marquee/marquee-go/internal/repository"
	"github.com/marquee/marquee-go/internal/service"
	"github.com/marquee/marquee-go/internal/tmdb"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger, logCloser := logging.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(logger)

	db, err := repository.NewDB(cfg.Database)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// TMDB responses are cached when Redis is reachable.
	tmdbCache, err := cache.New(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, tmdb responses will not be cached", "error", err)
	} else {
		defer tmdbCache.Close()
	}
	client := tmdb.New(cfg.TMDB, tmdbCache)

	var providers []service.OAuthProvider
	if cfg.Auth.GitHub.Enabled() {
		providers = append(providers, service.NewGitHubProvider(cfg.Auth.GitHub, cfg.BaseURL))
	}
	if cfg.Auth.Google.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		google, err := service.NewGoogleProvider(ctx, cfg.Auth.Google, cfg.BaseURL)
		cancel()
		if err != nil {
			slog.Warn("google sign-in disabled", "error", err)
		} else {
			providers = append(providers, google)
		}
	}

	users := repository.NewUserRepository(db)
	authService := service.NewAuthService(
		users,
		repository.NewSessionRepository(db),
		repository.NewAccountRepository(db),
		repository.NewPasskeyRepository(db),
		cfg.Auth.Secret,
		cfg.Auth.SessionTTL,
		providers...,
	)
	prefService := service.NewPreferenceService(users, repository.NewPreferenceRepository(db))

	if n, err := authService.PurgeExpiredSessions(context.Background()); err != nil {
		slog.Warn("expired session purge failed", "error", err)
	} else if n > 0 {
		slog.Info("purged expired sessions", "count", n)
	}

	r := handler.NewRouter(handler.Services{
		Auth:      authService,
		Watchlist: service.NewWatchlistService(repository.NewWatchlistRepository(db), client),
		Lists:     service.NewListService(repository.NewListRepository(db), client),
		Prefs:     prefService,
		Catalog:   service.NewCatalogService(client, prefService),
		Cache:     tmdbCache,
	}, logger, cfg.IsProduction())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "oauth_providers", authService.Providers())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
