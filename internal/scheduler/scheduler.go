// Package scheduler runs tasks on interval-aligned wall-clock boundaries.
package scheduler

import (
	"context"
	"time"

	"fxsentry/internal/logger"
)

// Aligned fires a task once per interval, aligned to UTC interval
// boundaries plus an optional offset. The loop is a single goroutine and
// computes the next wake time after the task returns, so a slow task never
// stacks runs: late ticks are dropped, one pass in flight at a time.
type Aligned struct {
	Interval       time.Duration
	Offset         time.Duration
	RunImmediately bool

	ctx   context.Context
	nowFn func() time.Time
}

func NewAligned(ctx context.Context, interval, offset time.Duration) *Aligned {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Aligned{
		Interval: interval,
		Offset:   offset,
		ctx:      ctx,
		nowFn:    time.Now,
	}
}

// Start blocks, invoking task until the context is cancelled.
func (s *Aligned) Start(task func(ctx context.Context)) {
	if s == nil || task == nil {
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("scheduler: invalid interval=%s, exit", s.Interval)
		return
	}
	if s.Offset < 0 {
		s.Offset = 0
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}

	startAt := s.nowFn().UTC()
	logger.Infof("scheduler: started interval=%s offset=%s run_immediately=%v at=%s",
		s.Interval, s.Offset, s.RunImmediately, startAt.Format(time.RFC3339))

	if s.RunImmediately {
		task(s.ctx)
	}

	for {
		now := s.nowFn().UTC()
		wakeAt, wait := s.nextWake(now)
		logger.Debugf("scheduler: next run at=%s (in %s)", wakeAt.Format(time.RFC3339), wait.Truncate(time.Second))

		if wait <= 0 {
			task(s.ctx)
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			logger.Infof("scheduler: context done, exit")
			return
		case <-timer.C:
		}
		task(s.ctx)
	}
}

func (s *Aligned) nextWake(now time.Time) (time.Time, time.Duration) {
	now = now.UTC()
	next := now.Truncate(s.Interval).Add(s.Interval).Add(s.Offset)
	return next, next.Sub(now)
}
