package store

import (
	"time"

	"gorm.io/datatypes"

	"fxsentry/internal/signal"
)

// SignalRow is one entry-ready evaluated signal, append-only. Rows are
// never updated or deleted by the engine.
type SignalRow struct {
	ID              int64          `gorm:"column:id;primaryKey"`
	Pair            string         `gorm:"column:pair;index"`
	Direction       string         `gorm:"column:direction"`
	Action          string         `gorm:"column:action"`
	Confidence      float64        `gorm:"column:confidence"`
	Reason          string         `gorm:"column:reason"`
	EntryPrice      float64        `gorm:"column:entry_price"`
	TakeProfit      *float64       `gorm:"column:take_profit"`
	StopLoss        *float64       `gorm:"column:stop_loss"`
	LivePrice       float64        `gorm:"column:live_price"`
	DistanceToEntry float64        `gorm:"column:distance_to_entry"`
	EntryReady      bool           `gorm:"column:entry_ready"`
	RiskReward      *float64       `gorm:"column:risk_reward"`
	TraceID         string         `gorm:"column:trace_id"`
	Raw             datatypes.JSON `gorm:"column:raw;type:TEXT"`
	Timestamp       time.Time      `gorm:"column:timestamp;index"`
}

func (SignalRow) TableName() string { return "signals" }

// NewSignalRow flattens an evaluated signal for persistence.
func NewSignalRow(ev signal.Evaluated) *SignalRow {
	return &SignalRow{
		Pair:            ev.Pair,
		Direction:       string(ev.Direction),
		Action:          string(ev.Action),
		Confidence:      ev.Confidence,
		Reason:          ev.Reason,
		EntryPrice:      ev.EntryPrice,
		TakeProfit:      ev.TakeProfit,
		StopLoss:        ev.StopLoss,
		LivePrice:       ev.LivePrice,
		DistanceToEntry: ev.DistanceToEntry,
		EntryReady:      ev.EntryReady,
		RiskReward:      ev.RiskReward,
		TraceID:         ev.TraceID,
		Raw:             datatypes.JSON(ev.Raw),
		Timestamp:       ev.Timestamp.UTC(),
	}
}
