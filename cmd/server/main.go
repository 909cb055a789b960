package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"portfolio_backend/internal/app/di"
	"portfolio_backend/internal/app/router"
	"portfolio_backend/internal/platform/config"
	"portfolio_backend/internal/platform/cron"
	"portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/platform/logger"
	infraredis "portfolio_backend/internal/platform/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	// os.Exit は defer を実行しないので、後始末は run の中で済ませる
	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := db.OpenDB(cfg.DB, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()
	if cfg.DB.RunMigrations {
		if err := di.Migrate(gdb); err != nil {
			return err
		}
	}

	// Redis（任意）
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis, log); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr()).Msg("redis unavailable, running without cache")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close redis client")
				}
			}()
		}
	}

	c, err := di.Build(cfg, gdb, rdb, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	// 日次バリュエーション
	loc, _ := cfg.Valuation.Location()
	sched := cron.New(ctx, loc, log)
	if err := sched.AddJob(cfg.Valuation.Cron, c.DailyJob); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	var startup sync.WaitGroup
	if cfg.Valuation.RunOnStart {
		startup.Add(1)
		go func() {
			defer startup.Done()
			_ = sched.RunNow(c.DailyJob)
		}()
	}
	defer startup.Wait()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(c.Handlers, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	default:
		return nil
	}
}
