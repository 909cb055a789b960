// Package redis は Redis クライアントの生成を提供します。
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"portfolio_backend/internal/platform/config"
)

// NewRedisClient は Redis に接続し、Ping で疎通を確認したクライアントを返します。
// 呼び出し側が Close の責任を持ちます。
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*redis.Client, error) {
	addr := cfg.Addr()
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          0,
		DialTimeout: 5 * time.Second,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		log.Error().Err(err).Str("address", addr).Msg("redis connection failed")
		return nil, err
	}

	log.Info().Str("address", addr).Msg("redis connection successful")
	return rdb, nil
}
