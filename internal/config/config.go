package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix      = "PB_"
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type Config struct {
	Environment string          `koanf:"environment"`
	Server      ServerConfig    `koanf:"server"`
	Database    DatabaseConfig  `koanf:"database"`
	JWT         JWTConfig       `koanf:"jwt"`
	Log         LogConfig       `koanf:"log"`
	RateLimit   RateLimitConfig `koanf:"ratelimit"`
	Webhook     WebhookConfig   `koanf:"webhook"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"`
	AllowedOrigins  string        `koanf:"allowed_origins"`
	CookieDomain    string        `koanf:"cookie_domain"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN      string `koanf:"dsn"`
	LogLevel string `koanf:"log_level"`
}

type JWTConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type RateLimitConfig struct {
	AuthPerMinute int `koanf:"auth_per_minute"`
}

type WebhookConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func defaultConfig() Config {
	return Config{
		Environment: EnvDevelopment,
		Server: ServerConfig{
			Port:            "3000",
			AllowedOrigins:  "http://localhost:3000,http://localhost:5173",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			LogLevel: "silent",
		},
		JWT: JWTConfig{
			TTL: 168 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			AuthPerMinute: 20,
		},
		Webhook: WebhookConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// LoadDotEnvs loads .env files following the dotenv convention. Files that
// come first win, so .env.<env>.local overrides everything below it.
func LoadDotEnvs() {
	environment := os.Getenv(EnvPrefix + "ENVIRONMENT")
	if environment == "" {
		environment = EnvDevelopment
	}

	_ = godotenv.Load(".env." + environment + ".local")
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env." + environment)
	_ = godotenv.Load(".env")
}

// Load builds the configuration from defaults overridden by PB_* environment
// variables. PB_JWT_SECRET maps to jwt.secret, PB_SERVER_ALLOWED_ORIGINS to
// server.allowed_origins.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envToKey maps PB_SECTION_SOME_FIELD to section.some_field. Only the first
// underscore separates the section.
func envToKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if section, field, ok := strings.Cut(key, "_"); ok && section != "environment" {
		return section + "." + field
	}
	return key
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn (PB_DATABASE_DSN) is not set")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret (PB_JWT_SECRET) is not set")
	}

	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Origins returns the configured CORS origins with blanks removed.
func (c *Config) Origins() []string {
	var origins []string

	for _, origin := range strings.Split(c.Server.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
