package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables (prefix JOBSCOUT_, dots replaced by
// underscores, e.g. JOBSCOUT_POLLER_INTERVAL) take precedence over values
// from the config file, which take precedence over defaults.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("companion")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/jobscout")

	v.SetEnvPrefix("JOBSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults carry it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults matching the reference deployment: the
// scoring service on localhost:8000, a 15s reconciliation period with 5
// concurrent fetches, and the 3s/120s regeneration retry loop.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8600)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")

	v.SetDefault("remote.base_url", "http://127.0.0.1:8000")
	v.SetDefault("remote.timeout", 10*time.Second)

	v.SetDefault("poller.interval", 15*time.Second)
	v.SetDefault("poller.concurrency", 5)

	v.SetDefault("regen.poll_interval", 3*time.Second)
	v.SetDefault("regen.timeout", 120*time.Second)

	v.SetDefault("backfill.days_back", 30)
	v.SetDefault("backfill.limit", 300)
}
