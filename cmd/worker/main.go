package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"talentflow/internal/app"
	"talentflow/internal/config"
	"talentflow/internal/metrics"
	"talentflow/internal/storage"
	"talentflow/internal/tasks"
	"talentflow/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := app.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	svc, closeDB, err := app.OpenService(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeDB()
	log.Println("database connection ready for worker")

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	log.Printf("storage client ready, bucket=%s", cfg.MinIO.Bucket)

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
	})

	snapshotHandler := worker.NewSnapshotTaskHandler(svc, storageClient, worker.NewRedisNotifier(redisClient), logger)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeSnapshotExport, snapshotHandler)

	logger.Info("worker service started", slog.String("redis_addr", redisAddr))
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
