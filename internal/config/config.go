// Package config loads server configuration from defaults, an optional file,
// GOPHBLOG_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables, e.g. GOPHBLOG_JWT_SECRET
const EnvPrefix = "GOPHBLOG"

// MinSecretLen is the minimal accepted length of jwt.secret in bytes
const MinSecretLen = 32

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// Config is the server configuration
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Server    ServerConfig    `mapstructure:"server"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig selects the storage backend
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

// LogConfig holds slog settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds the CORS allow-list
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig limits credential endpoints per client IP
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// flagKeys maps command line flag names to configuration keys
var flagKeys = map[string]string{
	"address":        "server.address",
	"storage-driver": "storage.driver",
	"storage-dsn":    "storage.dsn",
	"jwt-secret":     "jwt.secret",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.dsn", "gophblog.db")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "gophblog")
	v.SetDefault("jwt.access_ttl", 30*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 14*24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("ratelimit.requests", 20)
	v.SetDefault("ratelimit.window", time.Minute)
}

// RegisterFlags adds configuration flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.String("address", "", "HTTP listen address")
	fs.String("storage-driver", "", "storage driver: sqlite, postgres or bolt")
	fs.String("storage-dsn", "", "sqlite/bolt file path or postgres DSN")
	fs.String("jwt-secret", "", "HMAC secret for JWT signing (at least 32 bytes)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-format", "", "log format: text or json")
}

// Load builds the configuration. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for flag, key := range flagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
				}
			}
		}

		if path, err := fs.GetString("config"); err == nil && path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

// ValidateStorage checks only the storage section.
// Maintenance commands need nothing else.
func (c *Config) ValidateStorage() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres, DriverBolt:
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	if c.Storage.DSN == "" {
		errs = append(errs, errors.New("storage dsn is required"))
	}

	return errors.Join(errs...)
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	if err := c.ValidateStorage(); err != nil {
		errs = append(errs, err)
	}

	if len(c.JWT.Secret) < MinSecretLen {
		errs = append(errs, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLen))
	}

	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, errors.New("jwt access_ttl must be positive"))
	}

	if c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("jwt refresh_ttl must be positive"))
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("ratelimit requests and window must be positive"))
	}

	return errors.Join(errs...)
}
