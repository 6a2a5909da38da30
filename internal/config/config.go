package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresUser   string `toml:"postgres_user"`
	PostgresDBName string `toml:"postgres_db_name"`
	MigrationsPath string `toml:"migrations_path"`

	// embedded store, used by the CLI and the stdio MCP server
	SQLitePath string `toml:"sqlite_path"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// suggestion cache: "", "local" or "redis"
	CacheBackend    string `toml:"cache_backend"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	CacheSizeMB     int    `toml:"cache_size_mb"`

	RateLimitAllowedPerMin int `toml:"rate_limit_allowed_per_min"`

	// progression defaults
	PerformanceLookbackWeeks int `toml:"performance_lookback_weeks"`
	PlateauLookbackWeeks     int `toml:"plateau_lookback_weeks"`
	WeeklyWorkoutTarget      int `toml:"weekly_workout_target"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return t.Get(env)
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.MigrationsPath == "" {
		c.MigrationsPath = "./migrations"
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = 300
	}
	if c.CacheSizeMB <= 0 {
		c.CacheSizeMB = 16
	}
	if c.PerformanceLookbackWeeks <= 0 {
		c.PerformanceLookbackWeeks = 2
	}
	if c.PlateauLookbackWeeks <= 0 {
		c.PlateauLookbackWeeks = 4
	}
	if c.WeeklyWorkoutTarget <= 0 {
		c.WeeklyWorkoutTarget = 3
	}
}
