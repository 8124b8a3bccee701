package notifier

import (
	"fmt"
	"strings"
	"time"

	"fxsentry/internal/signal"
)

// RenderSignal formats an evaluated signal for delivery. Field set follows
// the alert contract: pair, action, trend, confidence, entry/live price,
// distance, take profit, stop loss and readiness.
func RenderSignal(ev signal.Evaluated) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 *%s Signal Alert*\n\n", ev.Pair)
	fmt.Fprintf(&b, "*Action:* %s\n", ev.Action)
	fmt.Fprintf(&b, "*Trend:* %s\n", titleCase(string(ev.Direction)))
	fmt.Fprintf(&b, "*Confidence:* %.0f%%\n", ev.Confidence)
	fmt.Fprintf(&b, "*Entry Price:* %.5f\n", ev.EntryPrice)
	fmt.Fprintf(&b, "*Live Price:* %.5f\n", ev.LivePrice)
	fmt.Fprintf(&b, "*Distance to Entry:* %.5f\n", ev.DistanceToEntry)
	if ev.TakeProfit != nil {
		fmt.Fprintf(&b, "*Take Profit:* %.5f\n", *ev.TakeProfit)
	}
	if ev.StopLoss != nil {
		fmt.Fprintf(&b, "*Stop Loss:* %.5f\n", *ev.StopLoss)
	}
	if ev.RiskReward != nil {
		fmt.Fprintf(&b, "*Risk/Reward:* %.2f\n", *ev.RiskReward)
	}
	if ev.EntryReady {
		b.WriteString("🟢 *Entry Ready:* ✅ YES\n")
	} else {
		b.WriteString("*Entry Ready:* ❌ NO\n")
	}
	if ev.Reason != "" {
		fmt.Fprintf(&b, "\n_Reason:_ %s", ev.Reason)
	}
	return strings.TrimSpace(b.String())
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// SummaryRow is the slice of an evaluated signal the daily report needs.
type SummaryRow struct {
	Pair       string
	Action     string
	EntryPrice float64
	LivePrice  float64
}

// RenderSummary builds the end-of-day digest of entry-ready signals.
func RenderSummary(day time.Time, rows []SummaryRow) string {
	if len(rows) == 0 {
		return "📭 *No entry-ready signals were triggered today.*"
	}
	lines := []string{fmt.Sprintf("📊 *Daily Signal Summary for %s*", day.UTC().Format("2006-01-02"))}
	for _, r := range rows {
		delta := r.LivePrice - r.EntryPrice
		lines = append(lines, fmt.Sprintf("\n*%s* - %s | 🎯 Entry: %.5f | 💰 Live: %.5f | Δ %.5f",
			r.Pair, r.Action, r.EntryPrice, r.LivePrice, delta))
	}
	return strings.Join(lines, "\n")
}
