package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Remote   RemoteConfig   `mapstructure:"remote"   validate:"required"`
	Poller   PollerConfig   `mapstructure:"poller"   validate:"required"`
	Regen    RegenConfig    `mapstructure:"regen"    validate:"required"`
	Backfill BackfillConfig `mapstructure:"backfill" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RemoteConfig locates the scoring service the companion reconciles
// against.
type RemoteConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"required"`
}

// PollerConfig tunes the ambient reconciliation loop.
type PollerConfig struct {
	Interval    time.Duration `mapstructure:"interval"    validate:"required"`
	Concurrency int           `mapstructure:"concurrency" validate:"required,gt=0"`
}

// RegenConfig tunes the on-demand regeneration retry loop.
type RegenConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required"`
	Timeout      time.Duration `mapstructure:"timeout"       validate:"required"`
}

// BackfillConfig bounds the recent-jobs listing used by the one-shot
// applied-flag backfill.
type BackfillConfig struct {
	DaysBack int `mapstructure:"days_back" validate:"required,gt=0"`
	Limit    int `mapstructure:"limit"     validate:"required,gt=0"`
}
