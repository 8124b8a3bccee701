package session

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"fxsentry/internal/logger"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// sessionsFile is the on-disk shape of the windows file.
type sessionsFile struct {
	Windows          []string `yaml:"windows"`
	ExcludedWeekdays []string `yaml:"excluded_weekdays"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// ParseConfig turns the string forms ("07:00-10:00", "saturday") into a
// compiled Config.
func ParseConfig(windows []string, excluded []string) (Config, error) {
	var cfg Config
	for _, raw := range windows {
		w, err := ParseWindow(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Windows = append(cfg.Windows, w)
	}
	for _, raw := range excluded {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(raw))]
		if !ok {
			return Config{}, fmt.Errorf("unknown weekday %q", raw)
		}
		cfg.ExcludedWeekdays = append(cfg.ExcludedWeekdays, wd)
	}
	return cfg, nil
}

// Registry serves the current Gate and recompiles it when the windows file
// changes on disk, so session tuning does not require a restart.
type Registry struct {
	path string

	mu   sync.RWMutex
	gate *Gate
}

// NewRegistry loads the windows file once; Watch picks up later edits.
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("session registry requires a windows file path")
	}
	r := &Registry{path: path}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewStaticRegistry wraps a fixed config, for inline (non-file) setups.
func NewStaticRegistry(cfg Config) *Registry {
	return &Registry{gate: NewGate(cfg)}
}

// Active implements the gate contract against the current snapshot.
func (r *Registry) Active(t time.Time) bool {
	r.mu.RLock()
	g := r.gate
	r.mu.RUnlock()
	if g == nil {
		return false
	}
	return g.Active(t)
}

func (r *Registry) reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("reading sessions file failed: %w", err)
	}
	var file sessionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing sessions file failed (%s): %w", r.path, err)
	}
	cfg, err := ParseConfig(file.Windows, file.ExcludedWeekdays)
	if err != nil {
		return fmt.Errorf("compiling sessions failed (%s): %w", r.path, err)
	}
	r.mu.Lock()
	r.gate = NewGate(cfg)
	r.mu.Unlock()
	return nil
}

// Watch blocks until ctx-style done is closed, reloading on write events.
// A failed reload keeps the previous snapshot.
func (r *Registry) Watch(done <-chan struct{}) error {
	if r.path == "" {
		<-done
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("session watcher init failed: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(r.path); err != nil {
		return fmt.Errorf("watching %s failed: %w", r.path, err)
	}
	for {
		select {
		case <-done:
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := r.reload(); err != nil {
				logger.Warnf("session registry: reload failed, keeping previous windows: %v", err)
				continue
			}
			logger.Infof("session registry: windows reloaded from %s", r.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("session registry: watch error: %v", err)
		}
	}
}
