package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"ai-dietician/internal/api"
	"ai-dietician/internal/app"
	"ai-dietician/internal/config"
	"ai-dietician/internal/telegram"
)

func main() {
	// 1. Load Configuration
	envErr := godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zc := zap.NewProductionConfig()
	if cfg.LogLevel == "debug" {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logger, err := zc.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	if envErr != nil {
		logger.Info("No .env file loaded, using process environment", zap.Error(envErr))
	}

	ctx := context.Background()

	// 2. Database, catalog, planner and advisor
	rt, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize runtime", zap.Error(err))
	}
	defer rt.Close()

	// 3. HTTP API
	router := api.NewRouter(rt.App, cfg.APISecret, logger)
	if cfg.APISecret == "" {
		logger.Warn("API_SECRET not set, /api is unauthenticated")
	}

	// 4. Telegram Bot (optional)
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg, rt.App, rt.Metrics, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram Bot", zap.Error(err))
		}
		router.POST("/webhook", gin.WrapF(bot.HandleWebhook))
	}

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Dietician server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
	logger.Info("Server exiting")
}
