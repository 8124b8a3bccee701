// Package session decides whether a moment falls inside the configured
// trading windows.
package session

import (
	"fmt"
	"strings"
	"time"
)

// Window is an inclusive time-of-day range in UTC, minute granularity.
// Start > End means the window wraps past midnight (e.g. 23:00-06:00).
type Window struct {
	Start int `mapstructure:"start" yaml:"start"` // minutes since midnight
	End   int `mapstructure:"end" yaml:"end"`
}

// Contains reports whether the minute-of-day m falls inside the window.
func (w Window) Contains(m int) bool {
	if w.Start <= w.End {
		return m >= w.Start && m <= w.End
	}
	return m >= w.Start || m <= w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// ParseWindow parses "HH:MM-HH:MM". "07:00-10:00" covers 07:00 through
// 10:00 inclusive.
func ParseWindow(s string) (Window, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("window %q: want HH:MM-HH:MM", s)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return Window{}, fmt.Errorf("window %q: %w", s, err)
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return Window{}, fmt.Errorf("window %q: %w", s, err)
	}
	return Window{Start: start, End: end}, nil
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("bad clock value %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return h*60 + m, nil
}

// Config is the full gate configuration: a union of windows plus a set of
// excluded weekdays. An empty window list means always closed.
type Config struct {
	Windows          []Window
	ExcludedWeekdays []time.Weekday
}

// Gate answers whether dispatch is permitted at a given moment.
type Gate struct {
	cfg Config
}

func NewGate(cfg Config) *Gate {
	return &Gate{cfg: cfg}
}

// Active reports whether t (converted to UTC) is inside an active session.
// Excluded weekdays short-circuit; windows are a union, evaluated
// independently, wrap and overlap allowed.
func (g *Gate) Active(t time.Time) bool {
	t = t.UTC()
	for _, wd := range g.cfg.ExcludedWeekdays {
		if t.Weekday() == wd {
			return false
		}
	}
	minute := t.Hour()*60 + t.Minute()
	for _, w := range g.cfg.Windows {
		if w.Contains(minute) {
			return true
		}
	}
	return false
}
