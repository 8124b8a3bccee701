// Package config loads and validates the fxsentry configuration file.
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"fxsentry/internal/scheduler"
)

// Load reads a YAML config file and returns a validated Config with
// defaults applied.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TickInterval returns the parsed dispatch interval.
func (c *Config) TickInterval() time.Duration {
	d, _ := scheduler.ParseInterval(c.Dispatch.Interval)
	return d
}

// Retention returns the notification record retention window; zero means
// records never expire.
func (c *Config) Retention() time.Duration {
	if c.Dispatch.Retention == "none" {
		return 0
	}
	d, _ := scheduler.ParseInterval(c.Dispatch.Retention)
	return d
}

// CallTimeout bounds every external call made during a tick.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Dispatch.CallTimeoutSeconds) * time.Second
}
