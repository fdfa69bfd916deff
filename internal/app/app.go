// Package app 汇总 cmd/* 共用的启动步骤：日志、数据库、数据门面与注入器。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"talentflow/internal/chaos"
	"talentflow/internal/config"
	"talentflow/internal/database"
	"talentflow/internal/persistence"
	"talentflow/internal/seed"
	"talentflow/internal/store"
)

// NewLogger 按 log.level 与 log.format 构建 slog.Logger。
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewGenerator returns the seed generator configured by cfg, or nil when
// seeding is disabled.
func NewGenerator(cfg config.SeedConfig) persistence.DatasetGenerator {
	if !cfg.Enabled {
		return nil
	}
	opts := []seed.Option{
		seed.WithCounts(seed.Counts{
			Jobs:        cfg.Jobs,
			Candidates:  cfg.Candidates,
			Assessments: cfg.Assessments,
		}),
	}
	if cfg.RandomSeed != 0 {
		opts = append(opts, seed.WithSeed(cfg.RandomSeed))
	}
	return seed.New(opts...)
}

// NewInjector 按网关配置构建延迟与失败注入器。
func NewInjector(cfg config.GatewayConfig) (*chaos.Injector, error) {
	return chaos.NewInjector(chaos.Config{
		MinDelay:  cfg.LatencyMin(),
		MaxDelay:  cfg.LatencyMax(),
		ErrorRate: cfg.ErrorRate,
	})
}

// OpenService 打开数据库、迁移六张表并构建数据门面。返回的 close 用于释放连接。
func OpenService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*persistence.Service, func() error, error) {
	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	closeDB := func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	engine := store.New(db)
	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := engine.Migrate(migrateCtx, database.AllCollections()...); err != nil {
		_ = closeDB()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	svc := persistence.NewService(engine, NewGenerator(cfg.Seed), persistence.WithLogger(logger))
	return svc, closeDB, nil
}
