package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"portfolio_backend/internal/app/di"
	"portfolio_backend/internal/platform/config"
	"portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/platform/logger"
	infraredis "portfolio_backend/internal/platform/redis"
)

// app is the wired container plus the connections it must release.
type app struct {
	*di.Container
	log zerolog.Logger
	db  *gorm.DB
	rdb *redisv9.Client
}

// openApp loads config and connects. Logs go to stderr so stdout stays JSON.
func openApp(ctx context.Context, stderr io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty}, stderr)

	gdb, err := db.OpenDB(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	a := &app{log: log, db: gdb}

	if cfg.DB.RunMigrations {
		if err := di.Migrate(gdb); err != nil {
			a.close()
			return nil, err
		}
	}
	if cfg.Redis.Enabled() {
		if rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis, log); err != nil {
			log.Warn().Msg("redis unavailable, running without cache")
		} else {
			a.rdb = rdb
		}
	}

	c, err := di.Build(cfg, gdb, a.rdb, log)
	if err != nil {
		a.close()
		return nil, err
	}
	a.Container = c
	return a, nil
}

func (a *app) close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error().Err(err).Msg("failed to close redis client")
		}
	}
	if err := db.Close(a.db); err != nil {
		a.log.Error().Err(err).Msg("failed to close database")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
