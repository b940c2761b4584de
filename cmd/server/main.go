package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/calibre88/pos-transfer/internal/adapter/handler"
	"github.com/calibre88/pos-transfer/internal/adapter/shopify"
	"github.com/calibre88/pos-transfer/internal/adapter/storage"
	"github.com/calibre88/pos-transfer/internal/auth"
	"github.com/calibre88/pos-transfer/internal/config"
	"github.com/calibre88/pos-transfer/internal/core/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL (session store + transfer audit log)
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("failed to connect mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	// Initialize Redis (transfer idempotency keys)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	logger.Info("connected to redis")

	// Initialize adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)
	adminClient := shopify.NewClient(cfg.APIVersion, logger)

	// Initialize services
	catalogService := service.NewCatalogService(adminClient, logger)
	transferService := service.NewTransferService(adminClient, redisAdapter, mysqlAdapter, logger)

	verifier := auth.NewTokenVerifier(cfg.APISecret, cfg.APIKey)
	httpHandler := handler.NewHTTPHandler(catalogService, transferService, mysqlAdapter, verifier, cfg.AllowedOrigin, logger)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpHandler.Routes(),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}
