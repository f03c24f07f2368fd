package controller

import (
	"fmt"
	"time"

	"mergington-portal/internal/common/config"
)

type Config struct {
	HideDelay      time.Duration `mapstructure:"status_hide_delay"`
	RequestTimeout time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		HideDelay:      5 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.HideDelay <= 0 {
		return fmt.Errorf("status_hide_delay must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}
	if appConfig.UI.StatusHideDelay > 0 {
		cfg.HideDelay = appConfig.UI.HideDelay()
	}
	if appConfig.API.Timeout > 0 {
		cfg.RequestTimeout = appConfig.API.RequestTimeout()
	}
	return cfg
}
