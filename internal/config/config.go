package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreSQLite = "sqlite"
)

// devSecret is only used by LoadWithDefaults.
const devSecret = "dev-secret-change-me"

// Config holds all application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" env:"DB_PATH"` // SQLite database file path
}

// HTTPConfig contains REST server settings.
type HTTPConfig struct {
	Address  string `mapstructure:"address" env:"HTTP_ADDRESS"`
	BasePath string `mapstructure:"base_path" env:"HTTP_BASE_PATH"` // prefix for every route, empty by default
}

// GRPCConfig contains the health server settings. An empty address disables it.
type GRPCConfig struct {
	Address string `mapstructure:"address" env:"GRPC_ADDRESS"`
}

// AuthConfig contains session settings.
type AuthConfig struct {
	SessionSecret string        `mapstructure:"session_secret" env:"SESSION_SECRET"` // HS256 key for cookie tokens
	SessionTTL    time.Duration `mapstructure:"session_ttl" env:"SESSION_TTL"`
	CookieName    string        `mapstructure:"cookie_name" env:"COOKIE_NAME"`
	CookieSecure  bool          `mapstructure:"cookie_secure" env:"COOKIE_SECURE"`
	SessionStore  string        `mapstructure:"session_store" env:"SESSION_STORE"` // memory | sqlite
	BcryptCost    int           `mapstructure:"bcrypt_cost" env:"BCRYPT_COST"`
}

// TelemetryConfig enables OTLP trace export when Endpoint is set.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint" env:"OTEL_ENDPOINT"`
	ServiceName  string `mapstructure:"service_name" env:"OTEL_SERVICE_NAME"`
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "app.db"},
		HTTP:     HTTPConfig{Address: ":8080"},
		GRPC:     GRPCConfig{Address: ":50051"},
		Auth: AuthConfig{
			SessionTTL:   24 * time.Hour,
			CookieName:   "session",
			SessionStore: SessionStoreMemory,
			BcryptCost:   10,
		},
		Telemetry: TelemetryConfig{ServiceName: "task-management-api"},
	}
}

// Load reads defaults, then the file named by CONFIG_FILE (if any), then
// environment overrides. A session secret is required.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a fixed session secret when none is set.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.SessionSecret == "" {
		cfg.Auth.SessionSecret = devSecret
	}
	return cfg, nil
}

func load() (*Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFile overlays the YAML/TOML/JSON file at path onto cfg. The format is
// picked from the extension.
func readFile(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.Auth.SessionStore {
	case SessionStoreMemory, SessionStoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("auth.session_store must be %q or %q, got %q", SessionStoreMemory, SessionStoreSQLite, c.Auth.SessionStore))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.session_ttl must be positive, got %s", c.Auth.SessionTTL))
	}
	if c.Auth.CookieName == "" {
		errs = append(errs, errors.New("auth.cookie_name must not be empty"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost))
	}
	if c.HTTP.Address == "" {
		errs = append(errs, errors.New("http.address must not be empty"))
	}
	return errors.Join(errs...)
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s%s, gRPC: %s, Sessions: %s/%s, Auth: *** (masked) ***}",
		c.Database.Path, c.HTTP.Address, c.HTTP.BasePath, c.GRPC.Address, c.Auth.SessionStore, c.Auth.SessionTTL)
}
