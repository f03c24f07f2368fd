package api

import (
	"fmt"
	"strings"
	"time"

	"mergington-portal/internal/common/config"
)

type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:8000",
		Timeout: 10 * time.Second,
	}
}

// ConfigFromAppConfig maps the api section of the application config.
func ConfigFromAppConfig(appConfig *config.Config) *Config {
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}
	if appConfig.API.BaseURL != "" {
		cfg.BaseURL = appConfig.API.BaseURL
	}
	if appConfig.API.Timeout > 0 {
		cfg.Timeout = appConfig.API.RequestTimeout()
	}
	return cfg
}

func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
