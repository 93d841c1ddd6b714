// Package config loads the server configuration.
//
// Values are layered: built-in defaults, then an optional YAML file named by
// CONFIG_FILE, then environment variables (a .env file in the working
// directory is loaded into the environment first, if present).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	API    APIConfig    `yaml:"api"`
	Cache  CacheConfig  `yaml:"cache"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int           `yaml:"port"`
	Env            string        `yaml:"env"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	SessionIdle    time.Duration `yaml:"session_idle"`
}

// APIConfig points at the guild bot's HTTP API.
type APIConfig struct {
	BaseURL       string  `yaml:"base_url"`
	SessionCookie string  `yaml:"session_cookie"`
	SessionToken  string  `yaml:"session_token"`
	RateLimit     float64 `yaml:"rate_limit"`
	RateBurst     int     `yaml:"rate_burst"`
	MaxIdleConns  int     `yaml:"max_idle_conns"`
}

// CacheConfig selects and configures the resource cache backend.
type CacheConfig struct {
	Backend      string        `yaml:"backend"`
	TTL          time.Duration `yaml:"ttl"`
	ClearOnStart bool          `yaml:"clear_on_start"`
	SQLitePath   string        `yaml:"sqlite_path"`
	SQLiteScope  string        `yaml:"sqlite_scope"`
	Redis        RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// AuthConfig holds JWT signing settings
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenDuration time.Duration `yaml:"token_duration"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			Env:            "development",
			AllowedOrigins: []string{"http://localhost:3000"},
			SessionIdle:    2 * time.Hour,
		},
		API: APIConfig{
			BaseURL:       "http://localhost:3001/grippendor/api",
			SessionCookie: "grippendor_session",
			RateLimit:     10,
			RateBurst:     4,
			MaxIdleConns:  8,
		},
		Cache: CacheConfig{
			Backend:     BackendSQLite,
			TTL:         5 * time.Minute,
			SQLitePath:  "./data/cache.db",
			SQLiteScope: "default",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "grippendor:",
			},
		},
		Auth: AuthConfig{
			TokenDuration: 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the layered sources. It does not validate.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getIntEnv("SERVER_PORT", c.Server.Port)
	c.Server.Env = getEnv("SERVER_ENV", c.Server.Env)
	c.Server.AllowedOrigins = getSliceEnv("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.SessionIdle = getDurationEnv("SESSION_IDLE", c.Server.SessionIdle)

	c.API.BaseURL = getEnv("GUILD_API_URL", c.API.BaseURL)
	c.API.SessionCookie = getEnv("GUILD_API_SESSION_COOKIE", c.API.SessionCookie)
	c.API.SessionToken = getEnv("GUILD_API_SESSION_TOKEN", c.API.SessionToken)
	c.API.RateLimit = getFloatEnv("GUILD_API_RATE_LIMIT", c.API.RateLimit)
	c.API.RateBurst = getIntEnv("GUILD_API_RATE_BURST", c.API.RateBurst)
	c.API.MaxIdleConns = getIntEnv("GUILD_API_MAX_IDLE_CONNS", c.API.MaxIdleConns)

	c.Cache.Backend = getEnv("CACHE_BACKEND", c.Cache.Backend)
	c.Cache.TTL = getDurationEnv("CACHE_TTL", c.Cache.TTL)
	c.Cache.ClearOnStart = getBoolEnv("CACHE_CLEAR_ON_START", c.Cache.ClearOnStart)
	c.Cache.SQLitePath = getEnv("CACHE_SQLITE_PATH", c.Cache.SQLitePath)
	c.Cache.SQLiteScope = getEnv("CACHE_SQLITE_SCOPE", c.Cache.SQLiteScope)
	c.Cache.Redis.Addr = getEnv("REDIS_ADDR", c.Cache.Redis.Addr)
	c.Cache.Redis.Password = getEnv("REDIS_PASSWORD", c.Cache.Redis.Password)
	c.Cache.Redis.DB = getIntEnv("REDIS_DB", c.Cache.Redis.DB)
	c.Cache.Redis.Prefix = getEnv("REDIS_PREFIX", c.Cache.Redis.Prefix)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenDuration = getDurationEnv("JWT_TOKEN_DURATION", c.Auth.TokenDuration)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}
	if c.Server.SessionIdle <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE must be positive"))
	}

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("GUILD_API_URL must be an absolute URL, got '%s'", c.API.BaseURL))
	}
	if c.API.SessionToken != "" && c.API.SessionCookie == "" {
		errs = append(errs, errors.New("GUILD_API_SESSION_COOKIE is required when GUILD_API_SESSION_TOKEN is set"))
	}
	if c.API.RateLimit <= 0 {
		errs = append(errs, errors.New("GUILD_API_RATE_LIMIT must be positive"))
	}
	if c.API.RateBurst <= 0 {
		errs = append(errs, errors.New("GUILD_API_RATE_BURST must be positive"))
	}
	if c.API.MaxIdleConns < 0 {
		errs = append(errs, errors.New("GUILD_API_MAX_IDLE_CONNS must not be negative"))
	}

	switch c.Cache.Backend {
	case BackendSQLite:
		if c.Cache.SQLitePath == "" {
			errs = append(errs, errors.New("CACHE_SQLITE_PATH is required for the sqlite backend"))
		}
		if c.Cache.SQLiteScope == "" {
			errs = append(errs, errors.New("CACHE_SQLITE_SCOPE must not be empty for the sqlite backend"))
		}
	case BackendRedis:
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be 'sqlite', 'redis', or 'memory', got '%s'", c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("CACHE_TTL must not be negative"))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters in production"))
	}
	if c.Auth.TokenDuration <= 0 {
		errs = append(errs, errors.New("JWT_TOKEN_DURATION must be positive"))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be 'text' or 'json', got '%s'", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
