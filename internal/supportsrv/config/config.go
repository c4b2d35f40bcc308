// Package config loads the service configuration from a TOML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Version is the supported configuration file format version.
const Version = "0.1.0"

// EnvPrefix prefixes every environment override, e.g. SUPPORT_DB_HOST.
const EnvPrefix = "SUPPORT_"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host               string   `toml:"host" mapstructure:"host"`
	Port               string   `toml:"port" mapstructure:"port"`
	HandleCORS         bool     `toml:"handle_cors" mapstructure:"handle_cors"`
	AllowedOrigins     []string `toml:"allowed_origins" mapstructure:"allowed_origins"`
	RequestTimeout     string   `toml:"request_timeout" mapstructure:"request_timeout"`
	MaxRequestBodySize int64    `toml:"max_request_body_size" mapstructure:"max_request_body_size"`
}

// GetRequestTimeout returns the request timeout as time.Duration
func (s *ServerConfig) GetRequestTimeout() (time.Duration, error) {
	return ParseDuration(s.RequestTimeout)
}

// DBConfig holds database and pool configuration
type DBConfig struct {
	Host             string `toml:"host" mapstructure:"host"`
	Port             int    `toml:"port" mapstructure:"port"`
	DBName           string `toml:"dbname" mapstructure:"dbname"`
	User             string `toml:"user" mapstructure:"user"`
	Password         string `toml:"password" mapstructure:"password"`
	SSLMode          string `toml:"sslmode" mapstructure:"sslmode"`
	MaxOpenConns     int    `toml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns     int    `toml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime  string `toml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	StatementTimeout string `toml:"statement_timeout" mapstructure:"statement_timeout"`
	LockTimeout      string `toml:"lock_timeout" mapstructure:"lock_timeout"`
	ConnectRetries   uint   `toml:"connect_retries" mapstructure:"connect_retries"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `toml:"level" mapstructure:"level"`
}

// ConfigParam holds all configuration parameters for the support case service
type ConfigParam struct {
	FormatVersion string       `toml:"format_version" mapstructure:"format_version"`
	Server        ServerConfig `toml:"server" mapstructure:"server"`
	DB            DBConfig     `toml:"db" mapstructure:"db"`
	Log           LogConfig    `toml:"log" mapstructure:"log"`
}

// DSN returns the keyword/value connection string. Values are single quoted
// and unset keys are left out so libpq defaults apply.
func (c *ConfigParam) DSN() string {
	params := []struct{ key, value string }{
		{"host", c.DB.Host},
		{"port", strconv.Itoa(c.DB.Port)},
		{"user", c.DB.User},
		{"password", c.DB.Password},
		{"dbname", c.DB.DBName},
		{"sslmode", c.DB.SSLMode},
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.value == "" {
			continue
		}
		parts = append(parts, p.key+"='"+dsnEscaper.Replace(p.value)+"'")
	}
	return strings.Join(parts, " ")
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// ListenAddr returns host:port for the HTTP server.
func (c *ConfigParam) ListenAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// ParseDuration accepts Go duration strings ("30s", "1h30m") as well as a
// whole number of days ("7d").
func ParseDuration(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.HasSuffix(input, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(input, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid number: %s", err)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(input)
}

func defaults() *ConfigParam {
	return &ConfigParam{
		FormatVersion: Version,
		Server: ServerConfig{
			Port:               "8000",
			HandleCORS:         true,
			AllowedOrigins:     []string{"*"},
			RequestTimeout:     "30s",
			MaxRequestBodySize: 1 << 20,
		},
		DB: DBConfig{
			Host:             "localhost",
			Port:             5432,
			SSLMode:          "disable",
			MaxOpenConns:     10,
			MaxIdleConns:     1,
			ConnMaxLifetime:  "30m",
			StatementTimeout: "15s",
			LockTimeout:      "5s",
			ConnectRetries:   5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ValidateConfig checks if all required configuration values are present and valid
func ValidateConfig(cfg *ConfigParam) error {
	if err := validateConfigFormatVersion(cfg); err != nil {
		return err
	}
	if err := validateServerConfig(cfg); err != nil {
		return err
	}
	if err := validateDBConfig(cfg); err != nil {
		return err
	}
	return nil
}

func validateConfigFormatVersion(cfg *ConfigParam) error {
	if cfg.FormatVersion != Version {
		return fmt.Errorf("unsupported config file format version: %s", cfg.FormatVersion)
	}
	return nil
}

func validateServerConfig(cfg *ConfigParam) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if p, err := strconv.Atoi(cfg.Server.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("server.port must be a valid port number")
	}
	if cfg.Server.RequestTimeout != "" {
		if _, err := ParseDuration(cfg.Server.RequestTimeout); err != nil {
			return fmt.Errorf("invalid server.request_timeout: %v", err)
		}
	}
	if cfg.Server.MaxRequestBodySize < 0 {
		return fmt.Errorf("server.max_request_body_size must not be negative")
	}
	return nil
}

func validateDBConfig(cfg *ConfigParam) error {
	if cfg.DB.Host == "" {
		return fmt.Errorf("db.host is required")
	}
	if cfg.DB.Port <= 0 {
		return fmt.Errorf("db.port must be positive")
	}
	if cfg.DB.DBName == "" {
		return fmt.Errorf("db.dbname is required")
	}
	if cfg.DB.User == "" {
		return fmt.Errorf("db.user is required")
	}
	if cfg.DB.SSLMode == "" {
		return fmt.Errorf("db.sslmode is required")
	}
	if cfg.DB.MaxOpenConns <= 0 {
		return fmt.Errorf("db.max_open_conns must be positive")
	}
	if cfg.DB.MaxIdleConns < 0 || cfg.DB.MaxIdleConns > cfg.DB.MaxOpenConns {
		return fmt.Errorf("db.max_idle_conns must be between 0 and db.max_open_conns")
	}
	for name, v := range map[string]string{
		"db.conn_max_lifetime": cfg.DB.ConnMaxLifetime,
		"db.statement_timeout": cfg.DB.StatementTimeout,
		"db.lock_timeout":      cfg.DB.LockTimeout,
	} {
		if v == "" {
			continue
		}
		if _, err := ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %v", name, err)
		}
	}
	return nil
}

// LoadConfig reads the TOML file, loads a .env file sitting next to it (if
// any), overlays SUPPORT_* environment variables and validates the result.
func LoadConfig(filename string) (*ConfigParam, error) {
	if filename == "" {
		return nil, fmt.Errorf("config filename is required")
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	c := defaults()
	if _, err := toml.Decode(string(content), c); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// no error if .env doesn't exist
	_ = godotenv.Load(filepath.Join(filepath.Dir(filename), ".env"))

	if err := applyEnv(c, os.Environ()); err != nil {
		return nil, fmt.Errorf("error applying environment overrides: %v", err)
	}

	if err := ValidateConfig(c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	return c, nil
}
