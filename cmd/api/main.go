package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/harshit91796/unseen-Price/cmd/api/router/v1"
	cacheAdapter "github.com/harshit91796/unseen-Price/internal/infrastructure/cache/adapter"
	"github.com/harshit91796/unseen-Price/internal/infrastructure/config"
	"github.com/harshit91796/unseen-Price/internal/infrastructure/database"
	"github.com/harshit91796/unseen-Price/internal/infrastructure/logging"
	queueAdapter "github.com/harshit91796/unseen-Price/internal/infrastructure/queue/adapter"
	"github.com/harshit91796/unseen-Price/internal/infrastructure/realtime"
	storageAdapter "github.com/harshit91796/unseen-Price/internal/infrastructure/storage/adapter"
	"github.com/harshit91796/unseen-Price/internal/pkg/chat/application/task"
	repoAdapter "github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/adapter"
	httpHandler "github.com/harshit91796/unseen-Price/internal/pkg/chat/presentation/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := database.Connect(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	cache, err := cacheAdapter.NewRedisAdapter(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = cache.Close() }()

	queueClient, err := queueAdapter.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to build queue client", zap.Error(err))
	}
	defer func() { _ = queueClient.Close() }()

	queueServer, err := queueAdapter.NewAsynqServer(cfg.RedisURL, 0, logger)
	if err != nil {
		logger.Fatal("failed to build queue server", zap.Error(err))
	}

	repo := repoAdapter.NewPgChatRepository(pool)
	task.RegisterConversationPreviewTask(queueServer, repo)

	go func() {
		if err := queueServer.Run(ctx); err != nil {
			logger.Error("queue server stopped", zap.Error(err))
		}
	}()

	store, err := storageAdapter.NewS3Store(startupCtx, cfg.MediaBucket, cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey)
	if err != nil {
		logger.Fatal("failed to build media store", zap.Error(err))
	}

	rtRouter := realtime.NewRouter()
	defer rtRouter.Close()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, httpHandler.Deps{
		Pool:           pool,
		Cache:          cache,
		Queue:          queueClient,
		Router:         rtRouter,
		Store:          store,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logger.Info("listening", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	_ = queueServer.Stop(shutdownCtx)
}
