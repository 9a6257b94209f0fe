// Package config loads server configuration from defaults, an optional YAML
// file and environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment is the deployment environment the server runs in.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minJWTLength = 32

	// devJWTSecret is only accepted in development.
	devJWTSecret = "splitledger-development-secret-change-me"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           int         `mapstructure:"PORT" yaml:"port"`
	StaticPath     string      `mapstructure:"STATIC_PATH" yaml:"static_path"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"PATH" yaml:"path"`
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"JWT_SECRET" yaml:"jwt_secret"`
	TokenDuration time.Duration `mapstructure:"TOKEN_DURATION" yaml:"token_duration"`
}

// RedisConfig holds the balance cache connection. When Enabled is false the
// server runs without a cache.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"ENABLED" yaml:"enabled"`
	Address  string        `mapstructure:"ADDRESS" yaml:"address"`
	Password string        `mapstructure:"PASSWORD" yaml:"password"`
	DB       int           `mapstructure:"DB" yaml:"db"`
	TTL      time.Duration `mapstructure:"TTL" yaml:"ttl"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"LEVEL" yaml:"level"`
}

// Config aggregates all configuration sections.
type Config struct {
	Server   ServerConfig   `mapstructure:"SERVER" yaml:"server"`
	Database DatabaseConfig `mapstructure:"DATABASE" yaml:"database"`
	Auth     AuthConfig     `mapstructure:"AUTH" yaml:"auth"`
	Redis    RedisConfig    `mapstructure:"REDIS" yaml:"redis"`
	Log      LogConfig      `mapstructure:"LOG" yaml:"log"`
}

// IsDevelopment reports whether the server runs in development.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// bindEnvVars binds config keys to environment variables.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// Load reads the configuration. Values come from, in increasing priority:
// defaults, the YAML file named by CONFIG_FILE, and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", 8080)
	v.SetDefault("SERVER.STATIC_PATH", "../frontend/static")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DATABASE.PATH", "./data/splitledger.db")
	v.SetDefault("AUTH.JWT_SECRET", "")
	v.SetDefault("AUTH.TOKEN_DURATION", "24h")
	v.SetDefault("REDIS.ENABLED", false)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.TTL", "10m")
	v.SetDefault("LOG.LEVEL", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.ENVIRONMENT", "ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.STATIC_PATH", "STATIC_PATH"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"DATABASE.PATH", "DB_PATH"},
		{"AUTH.JWT_SECRET", "JWT_SECRET"},
		{"AUTH.TOKEN_DURATION", "JWT_TOKEN_DURATION"},
		{"REDIS.ENABLED", "REDIS_ENABLED"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.TTL", "REDIS_TTL"},
		{"LOG.LEVEL", "LOG_LEVEL"},
	}
	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if cfg.Auth.JWTSecret == "" && cfg.IsDevelopment() {
		slog.Warn("JWT_SECRET not set, using development secret")
		cfg.Auth.JWTSecret = devJWTSecret
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	slog.Info("Configuration loaded",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"database", cfg.Database.Path,
		"redis_enabled", cfg.Redis.Enabled,
	)
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Server.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", cfg.Server.Environment)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if len(cfg.Auth.JWTSecret) < minJWTLength {
		return fmt.Errorf("JWT secret must be at least %d characters long", minJWTLength)
	}
	if cfg.Auth.TokenDuration <= 0 {
		return fmt.Errorf("token duration must be positive")
	}
	if cfg.Redis.Enabled {
		if cfg.Redis.Address == "" {
			return fmt.Errorf("redis address is required when redis is enabled")
		}
		if cfg.Redis.TTL <= 0 {
			return fmt.Errorf("redis ttl must be positive")
		}
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}
