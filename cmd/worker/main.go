// Package main runs the background job worker (check-in confirmation
// message generation).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/swiftcheck/backend/config"
	"github.com/swiftcheck/backend/internal/confirmation"
	"github.com/swiftcheck/backend/internal/realtime"
	"github.com/swiftcheck/backend/internal/worker"
	"github.com/swiftcheck/backend/pkg/queue"
	"github.com/swiftcheck/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	generator := confirmation.NewGenerator(confirmation.Config{
		Endpoint: cfg.Confirmation.Endpoint,
		APIKey:   cfg.Confirmation.APIKey,
		Model:    cfg.Confirmation.Model,
		Timeout:  time.Duration(cfg.Confirmation.TimeoutSec) * time.Second,
	}, logger)

	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewConfirmationProcessor(generator, redisPubSub, jobQueue, cfg.Event.Name, logger)

	runCtx, cancel := context.WithCancel(ctx)
	go processor.Run(runCtx)
	logger.Info("confirmation worker started", zap.String("event", cfg.Event.Name))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
