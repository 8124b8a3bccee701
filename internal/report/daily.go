// Package report sends the end-of-day digest of entry-ready signals.
package report

import (
	"context"
	"time"

	"fxsentry/internal/logger"
	"fxsentry/internal/notifier"
	"fxsentry/internal/store"
)

// HistoryReader is the slice of the store the report needs.
type HistoryReader interface {
	Query(ctx context.Context, from, to time.Time) ([]store.SignalRow, error)
}

// Daily runs once per day at a fixed UTC hour and pushes a summary of the
// day's entry-ready signals. Failures are logged and retried the next day.
type Daily struct {
	History  HistoryReader
	Notifier notifier.TextNotifier
	Hour     int // UTC hour of day to fire, 0-23

	nowFn func() time.Time
}

func NewDaily(history HistoryReader, n notifier.TextNotifier, hour int) *Daily {
	if hour < 0 || hour > 23 {
		hour = 21
	}
	return &Daily{History: history, Notifier: n, Hour: hour, nowFn: time.Now}
}

// Run blocks until ctx is cancelled, firing at the configured hour.
func (d *Daily) Run(ctx context.Context) error {
	for {
		now := d.nowFn().UTC()
		next := time.Date(now.Year(), now.Month(), now.Day(), d.Hour, 0, 0, 0, time.UTC)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if err := d.RunOnce(ctx, d.nowFn().UTC()); err != nil {
			logger.Warnf("report: daily summary failed: %v", err)
		}
	}
}

// RunOnce summarizes the UTC day containing now and sends it.
func (d *Daily) RunOnce(ctx context.Context, now time.Time) error {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := d.History.Query(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		return err
	}
	summary := make([]notifier.SummaryRow, 0, len(rows))
	for _, r := range rows {
		if !r.EntryReady {
			continue
		}
		summary = append(summary, notifier.SummaryRow{
			Pair:       r.Pair,
			Action:     r.Action,
			EntryPrice: r.EntryPrice,
			LivePrice:  r.LivePrice,
		})
	}
	if err := d.Notifier.SendText(notifier.RenderSummary(day, summary)); err != nil {
		return err
	}
	logger.Infof("report: daily summary sent signals=%d", len(summary))
	return nil
}
