// Package db opens the gorm connection used by every repository.
package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"portfolio_backend/internal/platform/config"
)

// retryInterval は接続リトライの間隔です。
var retryInterval = 3 * time.Second

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN は PostgreSQL 用の接続文字列を生成します。
func BuildDSN(cfg config.DBConfig) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// ConnectWithRetry は timeout に達するまで opener を繰り返し呼び出します。
// DB コンテナの起動待ちを想定しています。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		lastErr = err
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, lastErr)
		}
		time.Sleep(retryInterval)
	}
}

// OpenDB は設定されたドライバで DB に接続します。
// postgres は接続をリトライし、sqlite はファイルを直接開きます。
func OpenDB(cfg config.DBConfig, log zerolog.Logger) (*gorm.DB, error) {
	log = log.With().Str("component", "db").Str("driver", cfg.Driver).Logger()
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn), TranslateError: true}

	switch cfg.Driver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %q: %w", cfg.SQLitePath, err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("database opened")
		return db, nil
	case "postgres", "":
		opener := func(dsn string) (*gorm.DB, error) {
			db, err := gorm.Open(postgres.Open(dsn), gcfg)
			if err != nil {
				log.Warn().Err(err).Msg("db connect failed, retrying")
			}
			return db, err
		}
		timeout := cfg.ConnectTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		db, err := ConnectWithRetry(BuildDSN(cfg), timeout, opener)
		if err != nil {
			return nil, err
		}
		log.Info().Str("host", cfg.Host).Str("name", cfg.Name).Msg("database connected")
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// Close closes the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
