// Package dispatch orchestrates the evaluate-and-alert pass: session gate,
// signal fetch, concurrent pricing, evaluation, dedup, notify, persist.
package dispatch

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"fxsentry/internal/logger"
	"fxsentry/internal/notifier"
	"fxsentry/internal/price"
	"fxsentry/internal/scheduler"
	"fxsentry/internal/signal"
	"fxsentry/internal/store"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// State labels the phase of the current pass, exposed for observability.
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching_signals"
	StatePricing     State = "pricing"
	StateEvaluating  State = "evaluating"
	StateDispatching State = "dispatching"
	StateDisabled    State = "disabled"
)

// Stats is the externally observable outcome of one tick.
type Stats struct {
	TraceID    string
	Fetched    int
	Priced     int
	EntryReady int
	Notified   int
	Skipped    int
}

// SignalSource is the external candidate generator.
type SignalSource interface {
	Fetch(ctx context.Context) ([]signal.Candidate, error)
}

// SessionGate answers whether dispatch is permitted right now.
type SessionGate interface {
	Active(t time.Time) bool
}

// HistoryStore receives entry-ready rows; write failures never undo a
// notification that already went out.
type HistoryStore interface {
	Append(ctx context.Context, row *store.SignalRow) error
}

// Options bound the loop's timing and concurrency.
type Options struct {
	Interval       time.Duration // tick period
	Offset         time.Duration // delay past the aligned boundary
	CallTimeout    time.Duration // per external call
	MaxConcurrency int           // simultaneous price lookups
	BatchTTL       time.Duration // how long a fetched batch may be reused
	RunImmediately bool
}

func (o *Options) withDefaults() {
	if o.Interval <= 0 {
		o.Interval = 15 * time.Minute
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 15 * time.Second
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = 4
	}
	if o.BatchTTL <= 0 {
		o.BatchTTL = time.Hour
	}
}

// Loop is the dispatch scheduler. One tick in flight at a time; the
// aligned scheduler drops late ticks instead of queueing them.
type Loop struct {
	source   SignalSource
	prices   price.Provider
	gate     SessionGate
	notify   notifier.TextNotifier
	history  HistoryStore
	ledger  *Ledger
	opts    Options

	disabled       bool
	disabledReason string

	state atomic.Value // State

	// last good batch, reused when a fetch fails inside the TTL
	lastBatch   []signal.Candidate
	lastBatchAt time.Time

	nowFn func() time.Time
}

// New wires a loop. Missing prerequisites do not fail construction; the
// loop enters the disabled state and every tick is a no-op, which the
// caller is expected to surface loudly at startup via DisabledReason.
func New(src SignalSource, prices price.Provider, gate SessionGate, notify notifier.TextNotifier, history HistoryStore, ledger *Ledger, opts Options) *Loop {
	opts.withDefaults()
	if ledger == nil {
		ledger = NewLedger(24*time.Hour, 0)
	}
	l := &Loop{
		source:  src,
		prices:  prices,
		gate:    gate,
		notify:  notify,
		history: history,
		ledger:  ledger,
		opts:    opts,
		nowFn:   time.Now,
	}
	l.state.Store(StateIdle)

	var missing []string
	if src == nil {
		missing = append(missing, "signal source")
	}
	if prices == nil {
		missing = append(missing, "price provider")
	}
	if notify == nil {
		missing = append(missing, "notifier")
	}
	if gate == nil {
		missing = append(missing, "session gate")
	}
	if len(missing) > 0 {
		l.disabled = true
		l.disabledReason = "missing configuration: " + strings.Join(missing, ", ")
		l.state.Store(StateDisabled)
	}
	return l
}

// Disabled reports whether the loop was built without its prerequisites.
func (l *Loop) Disabled() (bool, string) { return l.disabled, l.disabledReason }

// State returns the phase of the in-flight pass.
func (l *Loop) State() State { return l.state.Load().(State) }

// Run blocks, ticking on the aligned schedule until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if l.disabled {
		logger.Errorf("dispatch: loop disabled, ticks are no-ops: %s", l.disabledReason)
		<-ctx.Done()
		return ctx.Err()
	}
	sched := scheduler.NewAligned(ctx, l.opts.Interval, l.opts.Offset)
	sched.RunImmediately = l.opts.RunImmediately
	sched.Start(func(tctx context.Context) {
		l.Tick(tctx)
	})
	return ctx.Err()
}

// Tick executes one evaluate-and-dispatch pass. Every error inside the
// pass is isolated: logged, counted, never propagated.
func (l *Loop) Tick(ctx context.Context) Stats {
	var stats Stats
	if l.disabled {
		logger.Warnf("dispatch: tick skipped: %s", l.disabledReason)
		return stats
	}
	defer l.state.Store(StateIdle)

	now := l.nowFn().UTC()
	if !l.gate.Active(now) {
		logger.Infof("dispatch: outside trading session at %s, skipping tick", now.Format(time.RFC3339))
		return stats
	}

	stats.TraceID = uuid.NewString()
	cands, ok := l.fetchBatch(ctx, now)
	if !ok {
		return stats
	}
	stats.Fetched = len(cands)
	if len(cands) == 0 {
		logger.Infof("dispatch: empty batch trace=%s", stats.TraceID)
		return stats
	}

	ready := l.evaluateBatch(ctx, cands, now, &stats)
	l.dispatchReady(ctx, ready, now, &stats)

	logger.Infof("dispatch: tick done trace=%s fetched=%d priced=%d entry_ready=%d notified=%d skipped=%d",
		stats.TraceID, stats.Fetched, stats.Priced, stats.EntryReady, stats.Notified, stats.Skipped)
	return stats
}

func (l *Loop) fetchBatch(ctx context.Context, now time.Time) ([]signal.Candidate, bool) {
	l.state.Store(StateFetching)
	fctx, cancel := context.WithTimeout(ctx, l.opts.CallTimeout)
	defer cancel()
	cands, err := l.source.Fetch(fctx)
	if err == nil {
		l.lastBatch = cands
		l.lastBatchAt = now
		return cands, true
	}
	if len(l.lastBatch) > 0 && now.Sub(l.lastBatchAt) < l.opts.BatchTTL {
		logger.Warnf("dispatch: fetch failed, reusing batch from %s: %v",
			l.lastBatchAt.Format(time.RFC3339), err)
		return l.lastBatch, true
	}
	logger.Warnf("dispatch: fetch failed, ending tick: %v", err)
	return nil, false
}

// evaluateBatch prices candidates concurrently then evaluates them.
// Per-candidate failures are isolated; one pair's bad quote never aborts
// the batch.
func (l *Loop) evaluateBatch(ctx context.Context, cands []signal.Candidate, now time.Time, stats *Stats) []signal.Evaluated {
	l.state.Store(StatePricing)
	type quoted struct {
		live float64
		err  error
	}
	quotes := make([]quoted, len(cands))
	group := &errgroup.Group{}
	group.SetLimit(l.opts.MaxConcurrency)
	for i, c := range cands {
		i, c := i, c
		group.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, l.opts.CallTimeout)
			defer cancel()
			v, err := l.prices.GetPrice(pctx, c.Pair)
			quotes[i] = quoted{live: v, err: err}
			return nil
		})
	}
	group.Wait()

	l.state.Store(StateEvaluating)
	var ready []signal.Evaluated
	for i, c := range cands {
		if quotes[i].err != nil {
			stats.Skipped++
			logger.Warnf("dispatch: price unavailable pair=%s: %v", c.Pair, quotes[i].err)
			continue
		}
		ev, err := signal.Evaluate(c, quotes[i].live, now)
		if err != nil {
			stats.Skipped++
			logger.Warnf("dispatch: candidate rejected pair=%s: %v", c.Pair, err)
			continue
		}
		stats.Priced++
		if ev.EntryReady {
			ev.TraceID = stats.TraceID
			ready = append(ready, ev)
		}
	}
	return ready
}

// dispatchReady runs the dedup check-and-set and delivery as one serial
// pass, guaranteeing at most one notification per key per tick even when
// the batch repeats a pair.
func (l *Loop) dispatchReady(ctx context.Context, ready []signal.Evaluated, now time.Time, stats *Stats) {
	l.state.Store(StateDispatching)
	for _, ev := range ready {
		stats.EntryReady++
		key := ev.Key()
		if l.ledger.AlreadyNotified(key, now) {
			stats.Skipped++
			logger.Debugf("dispatch: already notified key=%s", key)
			continue
		}
		if err := l.notify.SendText(notifier.RenderSignal(ev)); err != nil {
			stats.Skipped++
			logger.Warnf("dispatch: notify failed key=%s: %v", key, err)
			continue
		}
		stats.Notified++
		l.ledger.Mark(key, now)
		if l.history != nil {
			sctx, cancel := context.WithTimeout(ctx, l.opts.CallTimeout)
			if err := l.history.Append(sctx, store.NewSignalRow(ev)); err != nil {
				// best-effort persistence: the alert already went out
				logger.Errorf("dispatch: history append failed key=%s: %v", key, err)
			}
			cancel()
		}
	}
}
