// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"redirector/internal/botdetect"
)

// DefaultFallbackURL is where unknown paths are sent when nothing else is configured.
const DefaultFallbackURL = "https://www.bilibili.com/video/BV1MX4y1N75X"

// Config captures all service configuration loaded via Viper.
type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Redirect RedirectConfig `mapstructure:"redirect"`
	Hits     HitsConfig     `mapstructure:"hits"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig controls where the HTTP server listens.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Socket          string        `mapstructure:"socket"` // unix socket path, takes precedence over host/port
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects and tunes the mapping store.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"` // postgres URL or memory://
	MaxConns int32  `mapstructure:"max_conns"`
	Migrate  bool   `mapstructure:"migrate"`
}

// AdminConfig holds the static admin API token.
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// RedirectConfig tunes the redirect engine.
type RedirectConfig struct {
	FallbackURL       string   `mapstructure:"fallback_url"`
	CrawlerSignatures []string `mapstructure:"crawler_signatures"`
}

// HitsConfig sizes the background hit counter.
type HitsConfig struct {
	Workers   int           `mapstructure:"workers"`
	QueueSize int           `mapstructure:"queue_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// MetricsConfig controls the Prometheus listener. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// SeedConfig points at an optional YAML file of mappings inserted at startup.
type SeedConfig struct {
	File string `mapstructure:"file"`
}

// flagKeys maps command line flag names to config keys.
var flagKeys = map[string]string{
	"host":        "server.host",
	"port":        "server.port",
	"socket":      "server.socket",
	"db-url":      "database.url",
	"admin-token": "admin.token",
	"seed":        "seed.file",
}

// Load builds a Config from the optional file at path, the environment
// (REDIRECTOR_ prefix) and any changed flags, in increasing precedence.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REDIRECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.socket", "")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.url", "postgres://localhost:5432/redirector?sslmode=disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.migrate", true)
	v.SetDefault("admin.token", "")
	v.SetDefault("redirect.fallback_url", DefaultFallbackURL)
	v.SetDefault("redirect.crawler_signatures", []string{botdetect.LarkSignature})
	v.SetDefault("hits.workers", 4)
	v.SetDefault("hits.queue_size", 1024)
	v.SetDefault("hits.timeout", 5*time.Second)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("logging.development", false)
	v.SetDefault("seed.file", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Admin.Token == "" {
		return errors.New("admin.token must be set")
	}
	if c.Database.URL == "" {
		return errors.New("database.url must be set")
	}
	if c.Server.Socket == "" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	u, err := url.Parse(c.Redirect.FallbackURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("redirect.fallback_url must be an absolute URL, got %q", c.Redirect.FallbackURL)
	}
	if c.Hits.Workers <= 0 {
		return errors.New("hits.workers must be > 0")
	}
	if c.Hits.QueueSize <= 0 {
		return errors.New("hits.queue_size must be > 0")
	}
	if c.Hits.Timeout <= 0 {
		return errors.New("hits.timeout must be > 0")
	}
	return nil
}

// Addr returns the TCP listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IsDev returns true if the environment is set to development.
func (c Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
