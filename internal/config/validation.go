package config

import (
	"fmt"
	"strings"

	"fxsentry/internal/scheduler"
	"fxsentry/internal/session"
)

func validate(c *Config) error {
	if err := c.Source.validate(); err != nil {
		return err
	}
	if err := c.Price.validate(); err != nil {
		return err
	}
	if err := c.Session.validate(); err != nil {
		return err
	}
	if err := c.Dispatch.validate(); err != nil {
		return err
	}
	if c.Report.Enabled && (c.Report.Hour < 0 || c.Report.Hour > 23) {
		return fmt.Errorf("report.hour must be 0-23")
	}
	return nil
}

func (s *SourceConfig) validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("source.url is required")
	}
	return nil
}

func (p *PriceConfig) validate() error {
	switch p.Provider {
	case "binance":
		return nil
	case "http":
		if strings.TrimSpace(p.URLTemplate) == "" {
			return fmt.Errorf("price.url_template is required for the http provider")
		}
		if strings.TrimSpace(p.QuotePath) == "" {
			return fmt.Errorf("price.quote_path is required for the http provider")
		}
		return nil
	default:
		return fmt.Errorf("price.provider must be binance or http, got %q", p.Provider)
	}
}

func (s *SessionConfig) validate() error {
	if strings.TrimSpace(s.File) != "" {
		return nil // file contents are validated when loaded
	}
	if len(s.Windows) == 0 {
		return fmt.Errorf("session requires a windows file or inline windows")
	}
	if _, err := session.ParseConfig(s.Windows, s.ExcludedWeekdays); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

func (d *DispatchConfig) validate() error {
	if _, ok := scheduler.ParseInterval(d.Interval); !ok {
		return fmt.Errorf("dispatch.interval %q is not a valid interval", d.Interval)
	}
	if d.Retention != "none" {
		if _, ok := scheduler.ParseInterval(d.Retention); !ok {
			return fmt.Errorf("dispatch.retention %q is not a valid duration (or \"none\")", d.Retention)
		}
	}
	if d.OffsetSeconds < 0 {
		return fmt.Errorf("dispatch.offset_seconds must be >= 0")
	}
	return nil
}
