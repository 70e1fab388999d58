package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the settings every command reads from the environment.
type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	ServiceName        string        `mapstructure:"SERVICE_NAME"`
	ProjectName        string        `mapstructure:"PROJECT_NAME"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32         `mapstructure:"DB_MIN_CONNS"`
	DBSchema           string        `mapstructure:"DB_SCHEMA"`
	MigrationsDir      string        `mapstructure:"MIGRATIONS_DIR"`
	SecretKey          string        `mapstructure:"SECRET_KEY"`
	TokenExpireMinutes int           `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	ImportBatchSize    int           `mapstructure:"IMPORT_BATCH_SIZE"`
	BodyLimit          string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	AuthRateLimit      float64       `mapstructure:"AUTH_RATE_LIMIT"`
	AuthRateBurst      int           `mapstructure:"AUTH_RATE_BURST"`
}

var keys = []string{
	"PORT", "ENV", "SERVICE_NAME", "PROJECT_NAME", "LOG_LEVEL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_SCHEMA", "MIGRATIONS_DIR",
	"SECRET_KEY", "ACCESS_TOKEN_EXPIRE_MINUTES", "CORS_ORIGINS", "REDIS_URL",
	"IMPORT_BATCH_SIZE", "BODY_LIMIT", "REQUEST_TIMEOUT",
	"AUTH_RATE_LIMIT", "AUTH_RATE_BURST",
}

// Load reads .env when present, then the environment. DATABASE_URL is required.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVICE_NAME", "records")
	v.SetDefault("PROJECT_NAME", "Clinical Records")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 720)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("IMPORT_BATCH_SIZE", 100)
	v.SetDefault("BODY_LIMIT", "1MiB")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("AUTH_RATE_LIMIT", 1)
	v.SetDefault("AUTH_RATE_BURST", 10)

	// Unmarshal only sees env vars that are bound explicitly.
	for _, k := range keys {
		v.BindEnv(k)
	}

	// A missing .env file is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks the settings needed to serve traffic. Outside development
// a SECRET_KEY must be configured so tokens cannot be forged with an empty key.
func (c *Config) Validate() error {
	if !c.IsDev() && c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required when ENV=%q", c.Env)
	}
	if c.TokenExpireMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.TokenExpireMinutes)
	}
	if c.ImportBatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive, got %d", c.ImportBatchSize)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

// SigningKey returns the HMAC key for access tokens. Development falls back
// to a fixed key so a fresh checkout can log in without extra setup.
func (c *Config) SigningKey() []byte {
	if c.SecretKey == "" && c.IsDev() {
		return []byte("development-only-signing-key")
	}
	return []byte(c.SecretKey)
}
