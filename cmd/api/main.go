package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/global-church/church-search-api/internal/apikeys"
	"github.com/global-church/church-search-api/internal/churches"
	apphttp "github.com/global-church/church-search-api/internal/http"
	"github.com/global-church/church-search-api/internal/http/router"
	"github.com/global-church/church-search-api/internal/ratelimit"
	"github.com/global-church/church-search-api/platform/config"
	"github.com/global-church/church-search-api/platform/db"
	"github.com/global-church/church-search-api/platform/logger"
	"github.com/global-church/church-search-api/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const migrationsDir = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrationsDir)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	limiter := newRateLimitStore(cfg, log)
	val := validator.New()

	modules := []apphttp.Module{
		churches.NewModule(pool, log),
		apikeys.NewModule(pool, val),
	}

	engine := router.New(cfg, log, limiter, modules)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// newRateLimitStore prefers the Redis store when configured so limits hold
// across instances, falling back to the in-process store otherwise.
func newRateLimitStore(cfg *config.Config, log *logger.Logger) ratelimit.Store {
	if cfg.IsRedisEnabled() {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		log.Info("rate limiting via redis", "addr", cfg.RedisAddr)
		return ratelimit.NewRedisStore(client, cfg.RateLimitPerWindow, cfg.RateLimitWindow)
	}
	log.Info("rate limiting in memory")
	return ratelimit.NewMemoryStore(cfg.RateLimitPerWindow, cfg.RateLimitWindow)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		log.Warn("retrying", "operation", name, "attempt", attempt, "error", err.Error())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
