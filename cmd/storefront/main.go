package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/service"
	"storefront/internal/session"
	"storefront/internal/storage"
	"storefront/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	kv, closeKV, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open session storage", zap.String("backend", cfg.SessionBackend), zap.Error(err))
	}
	defer closeKV()

	var opts []session.Option
	if cfg.SessionExpiryCheck {
		opts = append(opts, session.WithExpiryCheck(time.Now))
	}
	store := session.NewStore(kv, logger, opts...)
	authCtx := auth.NewContext(ctx, store, logger)

	client := api.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, logger)

	app := view.New(os.Stdin, os.Stdout, view.Options{
		Logger:   logger,
		Auth:     authCtx,
		Account:  service.NewAccountService(logger, client, authCtx),
		Catalog:  service.NewCatalogService(logger, client),
		Cart:     service.NewCartService(logger, client, authCtx),
		AssetURL: client.AssetURL,
	})

	logger.Info("storefront started",
		zap.String("api", client.BaseURL()),
		zap.String("session_backend", cfg.SessionBackend),
		zap.String("state", authCtx.State().String()),
	)
	if err := app.Run(ctx); err != nil {
		logger.Error("storefront stopped", zap.Error(err))
	}
}

// newLogger escribe a stderr para no mezclar los logs con la interfaz.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.KV, func(), error) {
	noop := func() {}
	switch cfg.SessionBackend {
	case config.BackendMemory:
		logger.Warn("session storage is in memory; the session ends with the process")
		return storage.NewMemoryKV(), noop, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(ctxPing).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		return storage.NewRedisKV(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("db connect: %w", err)
		}
		if err := db.Ping(ctx, pool); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("db ping: %w", err)
		}
		kv := storage.NewPostgresKV(pool, cfg.StorageNamespace)
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("ensure schema: %w", err)
		}
		return kv, pool.Close, nil

	default:
		kv, err := storage.NewFileKV(cfg.SessionDir)
		if err != nil {
			return nil, noop, err
		}
		logger.Debug("session file", zap.String("path", kv.Path()))
		return kv, noop, nil
	}
}
