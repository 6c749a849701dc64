package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Session storage drivers
const (
	SessionDriverBolt   = "bolt"
	SessionDriverMemory = "memory"
	SessionDriverSQL    = "sql"
)

// Config holds all configuration for the client and the sandbox
type Config struct {
	AppMode string        `yaml:"app_mode"`
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Sandbox SandboxConfig `yaml:"sandbox"`
	JWT     JWTConfig     `yaml:"jwt"`
}

// APIConfig holds backend addresses
type APIConfig struct {
	DirectURL  string        `yaml:"direct_url"`
	GatewayURL string        `yaml:"gateway_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// SessionConfig holds client-side session storage configuration
type SessionConfig struct {
	Driver   string         `yaml:"driver"`
	Path     string         `yaml:"path"`
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds database configuration for the sql session driver
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
}

// SandboxConfig holds sandbox backend configuration
type SandboxConfig struct {
	DirectPort  string        `yaml:"direct_port"`
	GatewayPort string        `yaml:"gateway_port"`
	PendingTTL  time.Duration `yaml:"pending_ttl"`
	Seed        bool          `yaml:"seed"`

	// AllowedOrigins is a comma separated CORS allow list used in prod mode
	AllowedOrigins string `yaml:"allowed_origins"`
}

// JWTConfig holds token signing configuration for the sandbox
type JWTConfig struct {
	Secret          string `yaml:"secret"`
	AccessTokenMins int    `yaml:"access_token_minutes"`
}

// Load reads configuration from the .env file, the optional YAML file named by
// CINEFUND_CONFIG, and environment variables, in increasing precedence
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return LoadFile(os.Getenv("CINEFUND_CONFIG"))
}

// LoadFile is Load without the .env step; path may be empty
func LoadFile(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// trim spaces for Windows compatibility
	cfg.AppMode = strings.TrimSpace(cfg.AppMode)
	if cfg.AppMode != "dev" && cfg.AppMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", cfg.AppMode)
	}

	switch cfg.Session.Driver {
	case SessionDriverBolt, SessionDriverMemory, SessionDriverSQL:
	default:
		return nil, fmt.Errorf("invalid SESSION_DRIVER: '%s' (must be 'bolt', 'memory' or 'sql')", cfg.Session.Driver)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		AppMode: "dev",
		API: APIConfig{
			DirectURL:  "http://localhost:8084",
			GatewayURL: "http://localhost:8090",
		},
		Session: SessionConfig{
			Driver: SessionDriverBolt,
			Path:   "cinefund-session.db",
			Database: DatabaseConfig{
				Host:   "localhost",
				Port:   "3306",
				User:   "root",
				DBName: "cinefund",
			},
		},
		Sandbox: SandboxConfig{
			DirectPort:  "8084",
			GatewayPort: "8090",
			PendingTTL:  30 * time.Minute,
			Seed:        true,

			AllowedOrigins: "http://localhost:3000",
		},
		JWT: JWTConfig{
			Secret:          "default_secret",
			AccessTokenMins: 60,
		},
	}
}

// applyEnv overrides cfg with any set environment variables
func applyEnv(cfg *Config) error {
	cfg.AppMode = getEnv("APP_MODE", cfg.AppMode)

	cfg.API.DirectURL = strings.TrimRight(getEnv("USER_SERVICE_URL", cfg.API.DirectURL), "/")
	cfg.API.GatewayURL = strings.TrimRight(getEnv("API_GATEWAY_URL", cfg.API.GatewayURL), "/")

	cfg.Session.Driver = getEnv("SESSION_DRIVER", cfg.Session.Driver)
	cfg.Session.Path = getEnv("SESSION_PATH", cfg.Session.Path)
	cfg.Session.Database.Host = getEnv("SESSION_DB_HOST", cfg.Session.Database.Host)
	cfg.Session.Database.Port = getEnv("SESSION_DB_PORT", cfg.Session.Database.Port)
	cfg.Session.Database.User = getEnv("SESSION_DB_USER", cfg.Session.Database.User)
	cfg.Session.Database.Password = getEnv("SESSION_DB_PASS", cfg.Session.Database.Password)
	cfg.Session.Database.DBName = getEnv("SESSION_DB_NAME", cfg.Session.Database.DBName)

	cfg.Sandbox.DirectPort = getEnv("SANDBOX_DIRECT_PORT", cfg.Sandbox.DirectPort)
	cfg.Sandbox.GatewayPort = getEnv("SANDBOX_GATEWAY_PORT", cfg.Sandbox.GatewayPort)
	cfg.Sandbox.AllowedOrigins = getEnv("ALLOWED_ORIGINS", cfg.Sandbox.AllowedOrigins)

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)

	var err error
	if cfg.API.Timeout, err = getDuration("HTTP_TIMEOUT", cfg.API.Timeout); err != nil {
		return err
	}
	if cfg.Sandbox.PendingTTL, err = getDuration("PENDING_TTL", cfg.Sandbox.PendingTTL); err != nil {
		return err
	}
	if v := os.Getenv("SANDBOX_SEED"); v != "" {
		if cfg.Sandbox.Seed, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("invalid SANDBOX_SEED: %w", err)
		}
	}
	if v := os.Getenv("ACCESS_TOKEN_MINUTES"); v != "" {
		if cfg.JWT.AccessTokenMins, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid ACCESS_TOKEN_MINUTES: %w", err)
		}
	}
	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}
