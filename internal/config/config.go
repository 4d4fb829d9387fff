package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Env        string           `json:"env" yaml:"env"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Database   DatabaseConfig   `json:"database" yaml:"database"`
	Auth       AuthConfig       `json:"auth" yaml:"auth"`
	Projection ProjectionConfig `json:"projection" yaml:"projection"`
}

// ServerConfig contains listener addresses
type ServerConfig struct {
	GRPCAddr string `json:"grpc_addr" yaml:"grpc_addr"`
	HTTPAddr string `json:"http_addr" yaml:"http_addr"` // empty disables the HTTP API
}

// DatabaseConfig selects and configures the persistence backend
type DatabaseConfig struct {
	Driver     string `json:"driver" yaml:"driver"` // "postgres" or "sqlite"
	ConnString string `json:"conn_string,omitempty" yaml:"conn_string,omitempty"`
	Host       string `json:"host" yaml:"host"`
	Port       int    `json:"port" yaml:"port"`
	User       string `json:"user" yaml:"user"`
	Password   string `json:"password" yaml:"password"`
	Name       string `json:"name" yaml:"name"`
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
}

// AuthConfig contains the shared secret for HS256 bearer tokens
type AuthConfig struct {
	JWTSecret string `json:"jwt_secret" yaml:"jwt_secret"`
}

// ProjectionConfig holds the defaults used by the main-screen projection
type ProjectionConfig struct {
	DefaultRatePercent float64 `json:"default_rate_percent" yaml:"default_rate_percent"`
	DefaultYears       int     `json:"default_years" yaml:"default_years"`
}

// DefaultRate returns the default rate as a decimal
func (p ProjectionConfig) DefaultRate() decimal.Decimal {
	return decimal.NewFromFloat(p.DefaultRatePercent)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			GRPCAddr: ":8080",
			HTTPAddr: ":8081",
		},
		Database: DatabaseConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       5432,
			User:       "postgres",
			Password:   "postgres",
			Name:       "assetflow",
			SQLitePath: "assetflow.db",
		},
		Auth: AuthConfig{
			JWTSecret: "dev-secret",
		},
		Projection: ProjectionConfig{
			DefaultRatePercent: 5,
			DefaultYears:       10,
		},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file on top of Default
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	return cfg, nil
}

// Load reads path (if non-empty), applies environment overrides and validates the result
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = LoadFromFile(path)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("APP_ENV", &c.Env)
	str("GRPC_ADDR", &c.Server.GRPCAddr)
	if v, ok := lookup("HTTP_ADDR"); ok {
		c.Server.HTTPAddr = v
	}
	str("DB_DRIVER", &c.Database.Driver)
	str("DB_CONN_STR", &c.Database.ConnString)
	str("DB_HOST", &c.Database.Host)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)
	str("SQLITE_PATH", &c.Database.SQLitePath)
	str("JWT_SECRET", &c.Auth.JWTSecret)

	if v, ok := lookup("DB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_PORT: %w", err)
		}
		c.Database.Port = port
	}
	return nil
}

// PostgresConnString returns ConnString, or builds one from the individual fields
func (d DatabaseConfig) PostgresConnString() string {
	if d.ConnString != "" {
		return d.ConnString
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.GRPCAddr == "" {
		return fmt.Errorf("server.grpc_addr is required")
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.ConnString == "" && (c.Database.Host == "" || c.Database.Name == "") {
			return fmt.Errorf("database host and name required for postgres driver")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("database sqlite_path required for sqlite driver")
		}
	default:
		return fmt.Errorf("database.driver must be 'postgres' or 'sqlite'")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Projection.DefaultRatePercent < 0 || c.Projection.DefaultRatePercent > 100 {
		return fmt.Errorf("projection.default_rate_percent must be between 0 and 100")
	}
	if c.Projection.DefaultYears < 0 || c.Projection.DefaultYears > domain.MaxYears {
		return fmt.Errorf("projection.default_years must be between 0 and %d", domain.MaxYears)
	}
	return nil
}
