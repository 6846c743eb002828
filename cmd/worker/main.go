// Package main runs the notification delivery worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/olimp-shop/backend/config"
	"github.com/olimp-shop/backend/internal/telegram"
	"github.com/olimp-shop/backend/internal/worker"
	"github.com/olimp-shop/backend/pkg/queue"
	"github.com/olimp-shop/backend/pkg/redis"
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

	if err := telegram.BaseURLValid(cfg.Telegram.APIBaseURL); err != nil {
		logger.Fatal("telegram", zap.Error(err))
	}
	tg := telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken, logger)
	if !tg.Enabled() {
		logger.Warn("no bot token configured, messages will be dropped")
	}

	outbound := queue.NewQueue(rdb.Client, logger)
	deliverer := worker.NewDeliverer(outbound, tg, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go deliverer.Run(workerCtx)
	logger.Info("delivery worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("delivery worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
