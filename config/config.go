// Package config loads server settings from defaults, an optional YAML
// file, EMPOWER_* environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	API    APIConfig    `mapstructure:"api"`
	DevAPI DevAPIConfig `mapstructure:"devapi"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// APIConfig points the front end at the library API.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type DevAPIConfig struct {
	Addr           string        `mapstructure:"addr"`
	Driver         string        `mapstructure:"driver"`
	DSN            string        `mapstructure:"dsn"`
	Secret         string        `mapstructure:"secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	Seed           bool          `mapstructure:"seed"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("devapi.addr", ":8080")
	v.SetDefault("devapi.driver", "memory")
	v.SetDefault("devapi.dsn", "")
	v.SetDefault("devapi.secret", "empower-dev-secret-change-me")
	v.SetDefault("devapi.token_ttl", 30*time.Minute)
	v.SetDefault("devapi.allowed_origins", []string{"*"})
	v.SetDefault("devapi.seed", true)
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "console")
}

// AddFlags declares the command-line flags that override configuration.
func AddFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Path to a YAML configuration file")
	fs.String("server.addr", ":8000", "Address the front end is served on")
	fs.String("api.base-url", "http://localhost:8080", "Base URL of the library API")
	fs.String("devapi.addr", ":8080", "Address the development API listens on")
	fs.String("devapi.driver", "memory", "Development API store (memory|mysql|postgres)")
	fs.String("devapi.dsn", "", "Database DSN for the mysql and postgres stores")
	fs.String("log.level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	fs.String("log.format", "console", "Log format (json|console)")
}

var flagKeys = map[string]string{
	"server.addr":   "server.addr",
	"api.base-url":  "api.base_url",
	"devapi.addr":   "devapi.addr",
	"devapi.driver": "devapi.driver",
	"devapi.dsn":    "devapi.dsn",
	"log.level":     "log.level",
	"log.format":    "log.format",
}

// Load builds the configuration. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EMPOWER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for flag, key := range flagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", flag, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", f.Value.String(), err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	switch c.DevAPI.Driver {
	case "memory":
	case "mysql", "postgres":
		if c.DevAPI.DSN == "" {
			return fmt.Errorf("config: devapi.dsn is required for the %s store", c.DevAPI.Driver)
		}
	default:
		return fmt.Errorf("config: unknown devapi.driver %q", c.DevAPI.Driver)
	}
	if c.DevAPI.Secret == "" {
		return fmt.Errorf("config: devapi.secret is required")
	}
	return nil
}
