// Package signal holds the candidate/evaluated signal model and the pure
// evaluation that turns one into the other.
package signal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidCandidate marks malformed input from the signal source.
	ErrInvalidCandidate = errors.New("invalid candidate")
	// ErrMissingPrice marks a candidate whose live price could not be resolved.
	ErrMissingPrice = errors.New("live price unavailable")
)

// Direction is the trend call made by the signal source.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection matches case-insensitively and fails closed: anything
// other than up/down is rejected instead of defaulting to a side.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirectionUp, nil
	case "down":
		return DirectionDown, nil
	default:
		return "", fmt.Errorf("%w: unrecognized direction %q", ErrInvalidCandidate, s)
	}
}

// Action is derived from Direction, never the other way around.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Action maps up→BUY, down→SELL.
func (d Direction) Action() Action {
	if d == DirectionUp {
		return ActionBuy
	}
	return ActionSell
}

// Candidate is an unpriced trade idea from the external generator.
type Candidate struct {
	Pair       string
	Direction  Direction
	Confidence float64
	Reason     string
	EntryPrice float64
	TakeProfit *float64
	StopLoss   *float64

	// Raw keeps the source payload for persistence / debugging.
	Raw json.RawMessage
}

// Validate enforces the candidate invariants: non-empty pair, a positive
// entry price and a recognized direction.
func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Pair) == "" {
		return fmt.Errorf("%w: empty pair", ErrInvalidCandidate)
	}
	if c.EntryPrice <= 0 {
		return fmt.Errorf("%w: pair %s has no entry price", ErrInvalidCandidate, c.Pair)
	}
	if _, err := ParseDirection(string(c.Direction)); err != nil {
		return err
	}
	if c.Confidence < 0 || c.Confidence > 100 {
		return fmt.Errorf("%w: pair %s confidence %.1f out of range", ErrInvalidCandidate, c.Pair, c.Confidence)
	}
	return nil
}

// Evaluated is a Candidate enriched with the live price and derived fields.
// Once built it is never mutated; re-evaluation produces a new value.
type Evaluated struct {
	Candidate

	Action          Action
	LivePrice       float64
	DistanceToEntry float64
	EntryReady      bool
	RiskReward      *float64
	Timestamp       time.Time
	TraceID         string
}

// Key identifies the actionable condition for dedup purposes.
func (e Evaluated) Key() string {
	return fmt.Sprintf("%s|%.5f|%s", e.Pair, e.EntryPrice, e.Direction)
}
