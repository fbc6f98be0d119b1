// Package app wires configuration, storage, services and the HTTP edge
// together, and owns the process lifecycle including graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dkarklis/gatehouse/internal/config"
	"github.com/dkarklis/gatehouse/internal/logging"
	"github.com/dkarklis/gatehouse/internal/password"
	"github.com/dkarklis/gatehouse/internal/ratelimit"
	"github.com/dkarklis/gatehouse/internal/repositories/repomanager"
	"github.com/dkarklis/gatehouse/internal/services"
	"github.com/dkarklis/gatehouse/internal/web"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	handler http.Handler
}

func New(cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	if cfg.SecretKey == "" {
		return nil, errors.New("SECRET_KEY must not be empty")
	}

	ctx := context.Background()

	rm, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	hasher := password.NewHasher(password.DefaultParams())
	creds, err := services.NewCredentialService(rm, hasher)
	if err != nil {
		return nil, fmt.Errorf("credential service init error: %w", err)
	}
	tokens := services.NewTokenService(rm, cfg.RememberTTL)

	if err := tokens.PurgeExpired(ctx); err != nil {
		logger.Warn(ctx, "purging expired remember tokens failed", "error", err)
	}

	sessions := services.NewSessionManager(creds, tokens, newLimiter(cfg),
		[]byte(cfg.SecretKey), cfg.SessionTTL, cfg.RememberTTL)

	handlers := web.NewHandlers(creds, sessions, logger, cfg.CookieSecure)
	router := web.NewRouter(handlers, logger.With("module", "http_server"))

	return &App{config: cfg, logger: logger, repos: rm, handler: router}, nil
}

// newLimiter picks Redis when an address is configured, so multiple
// instances share one attempt budget; otherwise the per-process fallback.
func newLimiter(cfg *config.Config) ratelimit.Limiter {
	if cfg.RedisAddr == "" {
		return ratelimit.NewMemoryLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return ratelimit.NewRedisLimiter(client, cfg.LoginRateLimit, cfg.LoginRateWindow, "gatehouse:")
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "closing storage failed", "error", err)
	}
}
