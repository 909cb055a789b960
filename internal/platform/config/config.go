// Package config loads application configuration from an optional .env file
// and the process environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env       string
	Port      string
	LogLevel  string
	LogPretty bool
	DB        DBConfig
	Redis     RedisConfig
	Valuation ValuationConfig
	Providers ProvidersConfig
}

// DBConfig selects and addresses the relational store.
type DBConfig struct {
	Driver         string // postgres | sqlite
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	SQLitePath     string
	RunMigrations  bool
	ConnectTimeout time.Duration
}

// RedisConfig addresses the optional read-through cache. Empty Host disables it.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool { return r.Host != "" }

// Addr returns host:port.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type ValuationConfig struct {
	ReferenceTimezone string // day boundaries for provider requests
	Cron              string // daily run schedule, evaluated in ReferenceTimezone
	CacheRefreshHour  int    // Redis entries expire at this local hour
	RunOnStart        bool   // run the daily job once when the server starts
}

// Location loads ReferenceTimezone.
func (v ValuationConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(v.ReferenceTimezone)
	if err != nil {
		return nil, fmt.Errorf("load reference timezone %q: %w", v.ReferenceTimezone, err)
	}
	return loc, nil
}

// ProvidersConfig carries credentials and endpoints for price providers.
type ProvidersConfig struct {
	Timeout            time.Duration
	RateLimitPerMinute int

	KoreaEximAPIKey      string
	KoreaEximBaseURL     string
	CryptoCompareAPIKey  string
	CryptoCompareBaseURL string
	YFAPIKey             string
	YFBaseURL            string
	TwelveDataAPIKey     string
	TwelveDataBaseURL    string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		Env:       v.GetString("APP_ENV"),
		Port:      v.GetString("PORT"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogPretty: v.GetBool("LOG_PRETTY"),
		DB: DBConfig{
			Driver:         strings.ToLower(v.GetString("DB_DRIVER")),
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			Name:           v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			SQLitePath:     v.GetString("SQLITE_PATH"),
			RunMigrations:  v.GetBool("RUN_MIGRATIONS"),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		Valuation: ValuationConfig{
			ReferenceTimezone: v.GetString("REFERENCE_TIMEZONE"),
			Cron:              v.GetString("VALUATION_CRON"),
			CacheRefreshHour:  v.GetInt("PRICE_CACHE_REFRESH_HOUR"),
			RunOnStart:        v.GetBool("VALUATION_RUN_ON_START"),
		},
		Providers: ProvidersConfig{
			Timeout:              v.GetDuration("PROVIDER_TIMEOUT"),
			RateLimitPerMinute:   v.GetInt("PROVIDER_RATE_LIMIT_PER_MINUTE"),
			KoreaEximAPIKey:      v.GetString("KOREAEXIM_API_KEY"),
			KoreaEximBaseURL:     v.GetString("KOREAEXIM_BASE_URL"),
			CryptoCompareAPIKey:  v.GetString("CRYPTOCOMPARE_API_KEY"),
			CryptoCompareBaseURL: v.GetString("CRYPTOCOMPARE_BASE_URL"),
			YFAPIKey:             v.GetString("YF_X_API_KEY"),
			YFBaseURL:            v.GetString("YF_BASE_URL"),
			TwelveDataAPIKey:     v.GetString("TWELVE_DATA_API_KEY"),
			TwelveDataBaseURL:    v.GetString("TWELVE_DATA_BASE_URL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "portfolio.db")
	v.SetDefault("DB_CONNECT_TIMEOUT", "60s")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REFERENCE_TIMEZONE", "Asia/Seoul")
	v.SetDefault("VALUATION_CRON", "0 1 * * *")
	v.SetDefault("VALUATION_RUN_ON_START", false)
	v.SetDefault("PRICE_CACHE_REFRESH_HOUR", 8)
	v.SetDefault("PROVIDER_TIMEOUT", "10s")
	v.SetDefault("PROVIDER_RATE_LIMIT_PER_MINUTE", 8)
	v.SetDefault("KOREAEXIM_BASE_URL", "https://www.koreaexim.go.kr/site/program/financial/exchangeJSON")
	v.SetDefault("CRYPTOCOMPARE_BASE_URL", "https://min-api.cryptocompare.com")
	v.SetDefault("YF_BASE_URL", "https://yfapi.net")
	v.SetDefault("TWELVE_DATA_BASE_URL", "https://api.twelvedata.com")
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if _, err := c.Valuation.Location(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if h := c.Valuation.CacheRefreshHour; h < 0 || h > 23 {
		return fmt.Errorf("config: PRICE_CACHE_REFRESH_HOUR out of range: %d", h)
	}
	return nil
}
