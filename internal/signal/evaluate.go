package signal

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	distancePlaces   = 5
	riskRewardPlaces = 2
)

// Evaluate derives action, distance-to-entry, entry readiness and the
// risk/reward ratio for a candidate at the given live price. It is pure:
// identical inputs always produce identical outputs.
//
// live <= 0 means the provider could not quote the pair; the candidate is
// rejected with ErrMissingPrice so the caller can count it as skipped.
func Evaluate(c Candidate, live float64, now time.Time) (Evaluated, error) {
	if err := c.Validate(); err != nil {
		return Evaluated{}, err
	}
	if live <= 0 {
		return Evaluated{}, ErrMissingPrice
	}

	action := c.Direction.Action()
	liveDec := decimal.NewFromFloat(live)
	entryDec := decimal.NewFromFloat(c.EntryPrice)

	// decimal.Round is half-away-from-zero, matching the source behavior.
	distance, _ := liveDec.Sub(entryDec).Abs().Round(distancePlaces).Float64()

	ready := false
	switch action {
	case ActionBuy:
		ready = liveDec.GreaterThanOrEqual(entryDec)
	case ActionSell:
		ready = liveDec.LessThanOrEqual(entryDec)
	}

	return Evaluated{
		Candidate:       c,
		Action:          action,
		LivePrice:       live,
		DistanceToEntry: distance,
		EntryReady:      ready,
		RiskReward:      riskReward(c),
		Timestamp:       now.UTC(),
	}, nil
}

// riskReward is |tp-entry| / |entry-sl| to 2 places. Undefined (nil) when
// either level is absent or the stop sits on the entry.
func riskReward(c Candidate) *float64 {
	if c.TakeProfit == nil || c.StopLoss == nil {
		return nil
	}
	entry := decimal.NewFromFloat(c.EntryPrice)
	reward := decimal.NewFromFloat(*c.TakeProfit).Sub(entry).Abs()
	risk := entry.Sub(decimal.NewFromFloat(*c.StopLoss)).Abs()
	if risk.IsZero() {
		return nil
	}
	rr, _ := reward.Div(risk).Round(riskRewardPlaces).Float64()
	return &rr
}
