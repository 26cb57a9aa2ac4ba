// Command devapi sirve la API falsa de internal/apitest para desarrollo local.
// Es solo un fixture de desarrollo: el cliente real habla con la API remota.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront/internal/apitest"
	"storefront/internal/config"
)

var seedCategories = []string{"Electronics", "Clothing", "Home"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	gin.SetMode(gin.ReleaseMode)
	if cfg.DevAPIJWTSecret == "" {
		logger.Warn("jwt secret not configured, using development default")
	}
	srv := apitest.New(apitest.Options{
		Secret:   cfg.DevAPIJWTSecret,
		TokenTTL: 24 * time.Hour,
		Logger:   logger,
	})
	for _, name := range seedCategories {
		srv.AddCategory(name)
	}

	server := &http.Server{
		Addr:              ":" + cfg.DevAPIPort,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting dev api", zap.String("port", cfg.DevAPIPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
