package config

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = ":8080"
	}
	if c.Source.TimeoutSeconds <= 0 {
		c.Source.TimeoutSeconds = 15
	}
	if c.Price.Provider == "" {
		c.Price.Provider = "binance"
	}
	if c.Price.TimeoutSeconds <= 0 {
		c.Price.TimeoutSeconds = 10
	}
	if c.Dispatch.Interval == "" {
		c.Dispatch.Interval = "15m"
	}
	if c.Dispatch.Retention == "" {
		c.Dispatch.Retention = "24h"
	}
	if c.Dispatch.CallTimeoutSeconds <= 0 {
		c.Dispatch.CallTimeoutSeconds = 15
	}
	if c.Dispatch.MaxConcurrency <= 0 {
		c.Dispatch.MaxConcurrency = 4
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/signals.db"
	}
	if c.Report.Hour == 0 {
		c.Report.Hour = 21
	}
}
