// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	API     APIConfig     `mapstructure:"api"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig points the client at the activities server.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// RequestTimeout returns the per-request timeout.
func (c APIConfig) RequestTimeout() time.Duration {
	return GetDuration(c.Timeout)
}

type UIConfig struct {
	StatusHideDelay int `mapstructure:"status_hide_delay"` // milliseconds
}

// HideDelay returns how long a status message stays visible.
func (c UIConfig) HideDelay() time.Duration {
	return GetDuration(c.StatusHideDelay)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// String renders a short description for startup logs.
func (c *Config) String() string {
	return fmt.Sprintf("app=%s env=%s api=%s timeout=%dms hide_delay=%dms",
		c.App.Name, c.App.Environment, c.API.BaseURL, c.API.Timeout, c.UI.StatusHideDelay)
}
