package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fxsentry/internal/signal"
	"fxsentry/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

type fakeSource struct {
	mu      sync.Mutex
	batches [][]signal.Candidate
	err     error
	calls   int
}

func (f *fakeSource) Fetch(ctx context.Context) ([]signal.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	if len(f.batches) > 1 {
		f.batches = f.batches[1:]
	}
	return batch, nil
}

type fakePrices struct {
	mu     sync.Mutex
	prices map[string]float64
	calls  int
}

func (f *fakePrices) GetPrice(ctx context.Context, pair string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	v, ok := f.prices[pair]
	if !ok {
		return 0, errors.New("no quote")
	}
	return v, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeNotifier) SendText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

type fakeHistory struct {
	mu   sync.Mutex
	rows []*store.SignalRow
	err  error
}

func (f *fakeHistory) Append(ctx context.Context, row *store.SignalRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, row)
	return nil
}

type openGate struct{ active bool }

func (g openGate) Active(time.Time) bool { return g.active }

func eurusd() signal.Candidate {
	return signal.Candidate{
		Pair:       "EURUSD",
		Direction:  signal.DirectionUp,
		Confidence: 80,
		EntryPrice: 1.2000,
		TakeProfit: fp(1.2150),
		StopLoss:   fp(1.1950),
	}
}

func newTestLoop(src *fakeSource, prices *fakePrices, nf *fakeNotifier, hist *fakeHistory) *Loop {
	return New(src, prices, openGate{active: true}, nf, hist, NewLedger(24*time.Hour, 0), Options{
		Interval:    15 * time.Minute,
		CallTimeout: time.Second,
	})
}

func TestTickEndToEnd(t *testing.T) {
	src := &fakeSource{batches: [][]signal.Candidate{{eurusd()}}}
	prices := &fakePrices{prices: map[string]float64{"EURUSD": 1.2005}}
	nf := &fakeNotifier{}
	hist := &fakeHistory{}
	loop := newTestLoop(src, prices, nf, hist)

	stats := loop.Tick(context.Background())
	assert.Equal(t, 1, stats.Fetched)
	assert.Equal(t, 1, stats.Priced)
	assert.Equal(t, 1, stats.EntryReady)
	assert.Equal(t, 1, stats.Notified)
	assert.Equal(t, 0, stats.Skipped)

	require.Len(t, nf.sent, 1)
	assert.Contains(t, nf.sent[0], "EURUSD")
	assert.Contains(t, nf.sent[0], "BUY")

	require.Len(t, hist.rows, 1)
	row := hist.rows[0]
	assert.Equal(t, "EURUSD", row.Pair)
	assert.Equal(t, 0.0005, row.DistanceToEntry)
	require.NotNil(t, row.RiskReward)
	assert.Equal(t, 3.00, *row.RiskReward)
	assert.Equal(t, stats.TraceID, row.TraceID)

	// second tick, identical key: dedup suppresses the alert
	stats = loop.Tick(context.Background())
	assert.Equal(t, 1, stats.EntryReady)
	assert.Equal(t, 0, stats.Notified)
	assert.Equal(t, 1, stats.Skipped)
	assert.Len(t, nf.sent, 1)
	assert.Len(t, hist.rows, 1)
}

func TestTickGateClosedContactsNothing(t *testing.T) {
	src := &fakeSource{batches: [][]signal.Candidate{{eurusd()}}}
	prices := &fakePrices{prices: map[string]float64{"EURUSD": 1.2005}}
	nf := &fakeNotifier{}
	loop := New(src, prices, openGate{active: false}, nf, &fakeHistory{}, NewLedger(time.Hour, 0), Options{})

	stats := loop.Tick(context.Background())
	assert.Zero(t, stats.Fetched)
	assert.Zero(t, src.calls, "closed gate must not spend source quota")
	assert.Zero(t, prices.calls)
	assert.Empty(t, nf.sent)
}

func TestTickMissingPriceSkips(t *testing.T) {
	src := &fakeSource{batches: [][]signal.Candidate{{eurusd()}}}
	prices := &fakePrices{prices: map[string]float64{}} // EURUSD unavailable
	nf := &fakeNotifier{}
	hist := &fakeHistory{}
	loop := newTestLoop(src, prices, nf, hist)

	stats := loop.Tick(context.Background())
	assert.Equal(t, 1, stats.Fetched)
	assert.Equal(t, 0, stats.Priced)
	assert.Equal(t, 0, stats.Notified)
	assert.Equal(t, 1, stats.Skipped)
	assert.Empty(t, nf.sent)
	assert.Empty(t, hist.rows)
}

func TestTickPriceFailureIsolatedPerPair(t *testing.T) {
	gbp := signal.Candidate{Pair: "GBPUSD", Direction: signal.DirectionDown, Confidence: 85, EntryPrice: 1.3100}
	src := &fakeSource{batches: [][]signal.Candidate{{eurusd(), gbp}}}
	prices := &fakePrices{prices: map[string]float64{"GBPUSD": 1.3100}} // EURUSD missing
	nf := &fakeNotifier{}
	loop := newTestLoop(src, prices, nf, &fakeHistory{})

	stats := loop.Tick(context.Background())
	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 1, stats.Priced)
	assert.Equal(t, 1, stats.Notified, "GBPUSD at entry is sell-ready")
	assert.Equal(t, 1, stats.Skipped)
}

func TestTickFetchFailureEndsCleanly(t *testing.T) {
	src := &fakeSource{err: errors.New("upstream down")}
	nf := &fakeNotifier{}
	loop := newTestLoop(src, &fakePrices{}, nf, &fakeHistory{})

	stats := loop.Tick(context.Background())
	assert.Zero(t, stats.Fetched)
	assert.Empty(t, nf.sent)
}

func TestTickReusesLastBatchOnFetchFailure(t *testing.T) {
	src := &fakeSource{batches: [][]signal.Candidate{{eurusd()}}}
	prices := &fakePrices{prices: map[string]float64{"EURUSD": 1.1990}} // not ready
	nf := &fakeNotifier{}
	loop := newTestLoop(src, prices, nf, &fakeHistory{})

	stats := loop.Tick(context.Background())
	assert.Equal(t, 1, stats.Fetched)

	src.mu.Lock()
	src.err = errors.New("upstream down")
	src.mu.Unlock()
	prices.mu.Lock()
	prices.prices["EURUSD"] = 1.2005 // now crosses entry
	prices.mu.Unlock()

	stats = loop.Tick(context.Background())
	assert.Equal(t, 1, stats.Fetched, "previous batch reused")
	assert.Equal(t, 1, stats.Notified)
}

func TestTickNotifyFailureNothingPersisted(t *testing.T) {
	src := &fakeSource{batches: [][]signal.Candidate{{eurusd()}}}
	prices := &fakePrices{prices: map[string]float64{"EURUSD": 1.2005}}
	nf := &fakeNotifier{err: errors.New("telegram down")}
	hist := &fakeHistory{}
	loop := newTestLoop(src, prices, nf, hist)

	stats := loop.Tick(context.Background())
	assert.Equal(t, 0, stats.Notified)
	assert.Equal(t, 1, stats.Skipped)
	assert.Empty(t, hist.rows, "no history row without a delivered alert")

	// delivery failure leaves no ledger record: next tick retries
	nf.mu.Lock()
	nf.err = nil
	nf.mu.Unlock()
	stats = loop.Tick(context.Background())
	assert.Equal(t, 1, stats.Notified)
}

func TestTickStoreFailureDoesNotBlockNotification(t *testing.T) {
	src := &fakeSource{batches: [][]signal.Candidate{{eurusd()}}}
	prices := &fakePrices{prices: map[string]float64{"EURUSD": 1.2005}}
	nf := &fakeNotifier{}
	hist := &fakeHistory{err: errors.New("disk full")}
	loop := newTestLoop(src, prices, nf, hist)

	stats := loop.Tick(context.Background())
	assert.Equal(t, 1, stats.Notified, "alert delivery wins over persistence")
	assert.Len(t, nf.sent, 1)

	// and the ledger still dedups the next tick
	stats = loop.Tick(context.Background())
	assert.Equal(t, 0, stats.Notified)
}

func TestTickDuplicateKeysInOneBatch(t *testing.T) {
	src := &fakeSource{batches: [][]signal.Candidate{{eurusd(), eurusd()}}}
	prices := &fakePrices{prices: map[string]float64{"EURUSD": 1.2005}}
	nf := &fakeNotifier{}
	loop := newTestLoop(src, prices, nf, &fakeHistory{})

	stats := loop.Tick(context.Background())
	assert.Equal(t, 2, stats.EntryReady)
	assert.Equal(t, 1, stats.Notified, "same key alerts once per tick")
	assert.Len(t, nf.sent, 1)
}

func TestTickRejectedCandidateCounted(t *testing.T) {
	bad := signal.Candidate{Pair: "EURUSD", Direction: "sideways", EntryPrice: 1.2}
	src := &fakeSource{batches: [][]signal.Candidate{{bad}}}
	prices := &fakePrices{prices: map[string]float64{"EURUSD": 1.2005}}
	loop := newTestLoop(src, prices, &fakeNotifier{}, &fakeHistory{})

	stats := loop.Tick(context.Background())
	assert.Equal(t, 0, stats.Priced)
	assert.Equal(t, 1, stats.Skipped)
}

func TestLoopDisabledWithoutPrerequisites(t *testing.T) {
	loop := New(nil, nil, nil, nil, nil, nil, Options{})
	disabled, reason := loop.Disabled()
	assert.True(t, disabled)
	assert.Contains(t, reason, "signal source")
	assert.Equal(t, StateDisabled, loop.State())

	stats := loop.Tick(context.Background())
	assert.Zero(t, stats.Fetched)
}

func TestRetentionExpiryAllowsReAlert(t *testing.T) {
	src := &fakeSource{batches: [][]signal.Candidate{{eurusd()}}}
	prices := &fakePrices{prices: map[string]float64{"EURUSD": 1.2005}}
	nf := &fakeNotifier{}
	loop := New(src, prices, openGate{active: true}, nf, &fakeHistory{}, NewLedger(time.Hour, 0), Options{CallTimeout: time.Second})

	now := time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)
	loop.nowFn = func() time.Time { return now }
	loop.Tick(context.Background())
	assert.Len(t, nf.sent, 1)

	// inside the retention window: suppressed
	now = now.Add(30 * time.Minute)
	loop.Tick(context.Background())
	assert.Len(t, nf.sent, 1)

	// past it: the same level alerts again
	now = now.Add(31 * time.Minute)
	loop.Tick(context.Background())
	assert.Len(t, nf.sent, 2)
}
