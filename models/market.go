package models

import "time"

// MarketPrices is a point-in-time best bid/ask observation. Split is
// the midpoint. Two instances live in the context: the raw poll and a
// rate-limited smoothed copy.
type MarketPrices struct {
	Bid     float64
	Ask     float64
	Split   float64
	Updated time.Time
}

// Spread is the bid/ask gap in USD.
func (m MarketPrices) Spread() float64 {
	return m.Ask - m.Bid
}
