package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"talentflow/internal/api"
	"talentflow/internal/app"
	"talentflow/internal/config"
	"talentflow/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := app.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeDB, err := app.OpenService(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer func() {
		if err := closeDB(); err != nil {
			logger.Error("close database failed", slog.Any("error", err))
		}
	}()
	logger.Info("database ready", slog.String("driver", cfg.Database.Driver))

	seeded, err := svc.Initialize(ctx)
	if err != nil {
		log.Fatalf("initialize data: %v", err)
	}
	if counts, err := svc.Counts(ctx); err == nil {
		logger.Info("data initialized", slog.Bool("seeded", seeded), slog.Any("counts", counts))
	}

	injector, err := app.NewInjector(cfg.Gateway)
	if err != nil {
		log.Fatalf("init chaos injector: %v", err)
	}

	deps := api.Deps{
		Config:   cfg,
		Service:  svc,
		Injector: injector,
		Logger:   logger,
	}

	if cfg.Snapshot.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("ping redis: %v", err)
		}

		asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
		defer asynqClient.Close()

		storageClient, err := storage.NewClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("init storage client: %v", err)
		}

		deps.Redis = redisClient
		deps.Enqueuer = asynqClient
		deps.Snapshots = storageClient
		logger.Info("snapshots enabled",
			slog.String("redis_addr", cfg.Redis.Addr()),
			slog.String("bucket", cfg.MinIO.Bucket),
		)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown api server failed", slog.Any("error", err))
		}
	}()

	logger.Info("api listening", slog.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to start api server: %v", err)
	}
}
