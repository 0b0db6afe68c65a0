package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"filmrate/internal/cache"
	"filmrate/internal/config"
	"filmrate/internal/httpapi"
	"filmrate/internal/service"
	"filmrate/internal/store/memory"
	"filmrate/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	var (
		usersStore       service.UsersStore
		friendshipsStore service.FriendshipsStore
		filmsStore       service.FilmsStore
		referenceStore   service.ReferenceStore
		dbPing           func(context.Context) error
	)

	if cfg.DBDSN != "" {
		pgPool, err := postgres.Open(context.Background(), cfg.DBDSN, cfg.DBMaxConns)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		usersStore = postgres.NewUsersStore(pgPool)
		friendshipsStore = postgres.NewFriendshipsStore(pgPool)
		filmsStore = postgres.NewFilmsStore(pgPool)
		referenceStore = postgres.NewReferenceStore(pgPool)
		dbPing = pgPool.Ping
		logger.Info("using postgres storage")
	} else {
		mem := memory.NewUsersStore()
		usersStore = mem
		friendshipsStore = mem
		filmsStore = memory.NewFilmsStore()
		referenceStore = memory.NewReferenceStore()
		logger.Warn("APP_DB_DSN not set, using in-memory storage")
	}

	usersSvc := &service.UsersService{
		Users:       usersStore,
		Friendships: friendshipsStore,
	}
	filmsSvc := &service.FilmsService{
		Films:     filmsStore,
		Users:     usersStore,
		Reference: referenceStore,
	}
	referenceSvc := &service.ReferenceService{Store: referenceStore}

	if cfg.Redis.Addr != "" {
		client, err := cache.Open(context.Background(), cfg.Redis)
		if err != nil {
			logger.Error("redis open failed", "err", err)
			os.Exit(1)
		}
		defer func() { _ = client.Close() }()

		filmsSvc.Cache = cache.NewPopular(client, cfg.PopularCacheTTL, logger)
		logger.Info("popular films cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.PopularCacheTTL)
	}

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:    logger,
		IsProd:    cfg.IsProd(),
		DBPing:    dbPing,
		Films:     filmsSvc,
		Users:     usersSvc,
		Reference: referenceSvc,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
