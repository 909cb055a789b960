package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_backend/internal/platform/config"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func findLog(lines []map[string]any, msg string) map[string]any {
	for _, l := range lines {
		if l["message"] == msg {
			return l
		}
	}
	return nil
}

// 待ち受けに失敗しても終了処理を済ませてからエラーを返す
func TestRun_ListenFailureReturnsAfterCleanup(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(zerolog.SyncWriter(&buf))

	cfg := &config.Config{
		Env:  "test",
		Port: "-1",
		DB: config.DBConfig{
			Driver:        "sqlite",
			SQLitePath:    filepath.Join(t.TempDir(), "server.db"),
			RunMigrations: true,
		},
		Redis: config.RedisConfig{Host: "127.0.0.1", Port: "1"},
		Valuation: config.ValuationConfig{
			ReferenceTimezone: "UTC",
			Cron:              "0 1 * * *",
			CacheRefreshHour:  8,
			RunOnStart:        true,
		},
		Providers: config.ProvidersConfig{Timeout: time.Second},
	}

	err := run(cfg, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serve:")

	lines := logLines(t, &buf)

	warn := findLog(lines, "redis unavailable, running without cache")
	require.NotNil(t, warn)
	assert.Equal(t, "warn", warn["level"])
	assert.NotEmpty(t, warn["error"], "the cause is logged")

	assert.NotNil(t, findLog(lines, "running job immediately"), "daily job runs at startup")
	assert.NotNil(t, findLog(lines, "scheduler stopped"), "deferred cleanup ran")
}

func TestRun_OpenDatabaseError(t *testing.T) {
	cfg := &config.Config{DB: config.DBConfig{Driver: "oracle"}}

	err := run(cfg, zerolog.Nop())
	assert.EqualError(t, err, `open database: unsupported db driver "oracle"`)
}
