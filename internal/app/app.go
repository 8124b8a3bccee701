// Package app wires the engine together and runs it.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fxsentry/internal/config"
	"fxsentry/internal/dispatch"
	"fxsentry/internal/logger"
	"fxsentry/internal/notifier"
	"fxsentry/internal/price"
	"fxsentry/internal/report"
	"fxsentry/internal/server"
	"fxsentry/internal/session"
	"fxsentry/internal/source"
	"fxsentry/internal/store"

	"golang.org/x/sync/errgroup"
)

// App holds the wired components. Construction never starts anything.
type App struct {
	cfg      *config.Config
	store    *store.Store
	sessions *session.Registry
	loop     *dispatch.Loop
	server   *server.Server
	daily    *report.Daily
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	sessions, err := buildSessions(cfg.Session)
	if err != nil {
		return nil, err
	}

	src := source.NewClient(cfg.Source.URL, time.Duration(cfg.Source.TimeoutSeconds)*time.Second)
	prices, err := buildPrices(cfg.Price)
	if err != nil {
		return nil, err
	}
	notify := buildNotifier(cfg.Notify)

	ledger := dispatch.NewLedger(cfg.Retention(), cfg.Dispatch.LedgerCapacity)
	loop := dispatch.New(src, prices, sessions, notify, st, ledger, dispatch.Options{
		Interval:       cfg.TickInterval(),
		Offset:         time.Duration(cfg.Dispatch.OffsetSeconds) * time.Second,
		CallTimeout:    cfg.CallTimeout(),
		MaxConcurrency: cfg.Dispatch.MaxConcurrency,
		RunImmediately: cfg.Dispatch.RunImmediately,
	})
	if disabled, reason := loop.Disabled(); disabled {
		logger.Errorf("app: dispatch loop DISABLED: %s", reason)
	}

	a := &App{
		cfg:      cfg,
		store:    st,
		sessions: sessions,
		loop:     loop,
		server:   server.New(cfg.App.HTTPAddr, st, loop),
	}
	if cfg.Report.Enabled && notify != nil {
		a.daily = report.NewDaily(st, notify, cfg.Report.Hour)
	}
	return a, nil
}

func buildSessions(cfg config.SessionConfig) (*session.Registry, error) {
	if strings.TrimSpace(cfg.File) != "" {
		return session.NewRegistry(cfg.File)
	}
	parsed, err := session.ParseConfig(cfg.Windows, cfg.ExcludedWeekdays)
	if err != nil {
		return nil, err
	}
	return session.NewStaticRegistry(parsed), nil
}

func buildPrices(cfg config.PriceConfig) (price.Provider, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	switch cfg.Provider {
	case "binance":
		return price.NewBinance(cfg.BaseURL, timeout), nil
	case "http":
		return price.NewHTTPQuote(cfg.URLTemplate, cfg.QuotePath, timeout), nil
	default:
		return nil, fmt.Errorf("unknown price provider %q", cfg.Provider)
	}
}

// buildNotifier returns nil when no channel has usable credentials, which
// puts the dispatch loop into its disabled state.
func buildNotifier(cfg config.NotifyConfig) notifier.TextNotifier {
	var channels []notifier.TextNotifier
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		channels = append(channels, notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	}
	if cfg.Email.Enabled && cfg.Email.Host != "" && len(cfg.Email.To) > 0 {
		channels = append(channels, &notifier.Email{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			To:       cfg.Email.To,
			Subject:  cfg.Email.Subject,
		})
	}
	if len(channels) == 0 {
		return nil
	}
	return notifier.NewMulti(channels...)
}

// Run starts the HTTP surface, the dispatch loop, the session watcher and
// the daily report, then blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.store.Close()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		return a.loop.Run(ctx)
	})
	group.Go(func() error {
		return a.sessions.Watch(ctx.Done())
	})
	if a.daily != nil {
		group.Go(func() error {
			return a.daily.Run(ctx)
		})
	}
	return group.Wait()
}
