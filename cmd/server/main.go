// Package main runs the shop core HTTP API with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/olimp-shop/backend/config"
	"github.com/olimp-shop/backend/internal/auth"
	"github.com/olimp-shop/backend/internal/enrollment"
	"github.com/olimp-shop/backend/internal/middleware"
	"github.com/olimp-shop/backend/internal/notify"
	"github.com/olimp-shop/backend/internal/orders"
	"github.com/olimp-shop/backend/internal/referrals"
	"github.com/olimp-shop/backend/internal/store"
	"github.com/olimp-shop/backend/internal/store/memory"
	"github.com/olimp-shop/backend/internal/store/postgres"
	"github.com/olimp-shop/backend/internal/telegram"
	"github.com/olimp-shop/backend/pkg/database"
	"github.com/olimp-shop/backend/pkg/keymutex"
	"github.com/olimp-shop/backend/pkg/queue"
	"github.com/olimp-shop/backend/pkg/redis"
	"github.com/olimp-shop/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	var st store.Store
	if cfg.Store.Driver == "memory" {
		logger.Warn("using in-memory store, data will not survive restarts")
		st = memory.New()
	} else {
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		st = postgres.New(pool)
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	if err := telegram.BaseURLValid(cfg.Telegram.APIBaseURL); err != nil {
		logger.Fatal("telegram", zap.Error(err))
	}
	tg := telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken, logger)
	membership := telegram.NewChannelChecker(tg, cfg.Telegram.ChannelID)

	outbound := queue.NewQueue(rdb.Client, logger)
	dispatcher := notify.NewDispatcher(outbound, cfg.Telegram.ManagerChatID, logger)

	// One lock set for all user-scoped events, so an enrollment can never
	// race an order submission for the same user.
	locks := keymutex.New()

	enrollService := enrollment.NewService(st, membership, locks, logger)
	enrollHandler := enrollment.NewHandler(enrollService, st)

	orderService := orders.NewService(st, dispatcher, locks, logger)
	orderHandler := orders.NewHandler(orderService, st)

	referralHandler := referrals.NewHandler(st)

	jwtService := auth.NewJWTService(cfg.Auth.Secret, cfg.Auth.ExpireHours)
	authHandler := auth.NewHandler(jwtService, cfg.Auth.RouterKey, cfg.Auth.ManagerKey, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.POST("/auth/token", authHandler.Token)

	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.POST("/events/enroll", middleware.RequireRole(auth.RoleRouter), enrollHandler.Enroll)
		api.POST("/events/orders", middleware.RequireRole(auth.RoleRouter), orderHandler.Submit)

		api.GET("/users/:id", middleware.RequireRole(auth.RoleRouter, auth.RoleManager), enrollHandler.GetUser)
		api.GET("/users/:id/discount", middleware.RequireRole(auth.RoleRouter), referralHandler.GetDiscount)
		api.GET("/referrals/top", middleware.RequireRole(auth.RoleRouter, auth.RoleManager), referralHandler.TopInviters)

		api.POST("/orders/:id/action", middleware.RequireRole(auth.RoleManager), orderHandler.Action)
		api.GET("/orders/:id", middleware.RequireRole(auth.RoleRouter, auth.RoleManager), orderHandler.Get)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
