package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the process needs: where to listen, where the
// data file lives, and the token signing parameters. The signing secret
// has no default and must be supplied via config file or environment
// (JOBDESK_AUTH_SECRET).
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Backup BackupConfig `mapstructure:"backup"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	Secret     string        `mapstructure:"secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type BackupConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
	Dir      string `mapstructure:"dir"`
}

// Load reads jobdesk.yaml (if present, from the working directory or
// /etc/jobdesk) merged with JOBDESK_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":4000")
	v.SetDefault("store.path", "data/data.json")
	// Registered with an empty default so AutomaticEnv can fill it;
	// Validate rejects the empty value.
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.schedule", "@hourly")
	v.SetDefault("backup.dir", "data/backups")

	v.SetConfigName("jobdesk")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/jobdesk")

	v.SetEnvPrefix("JOBDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// No config file is fine; env and defaults carry it.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the process cannot safely run with.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("config: auth.secret is required (set JOBDESK_AUTH_SECRET)")
	}
	if c.Store.Path == "" {
		return errors.New("config: store.path must not be empty")
	}
	if c.Backup.Enabled && c.Backup.Schedule == "" {
		return errors.New("config: backup.schedule must be set when backups are enabled")
	}
	return nil
}
