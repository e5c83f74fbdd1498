package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSpreadTiers(t *testing.T) {
	tiers := parseSpreadTiers("Low:500:0.003,Mid:500:0.0045,High:200:0.006")
	assert.Len(t, tiers, 3)
	assert.Equal(t, SpreadTier{Name: "Low", Usd: 500, Spread: 0.003}, tiers[0])
	assert.Equal(t, SpreadTier{Name: "Mid", Usd: 500, Spread: 0.0045}, tiers[1])
	assert.Equal(t, SpreadTier{Name: "High", Usd: 200, Spread: 0.006}, tiers[2])
}

func TestParseTrendWindows(t *testing.T) {
	windows := parseTrendWindows("acute:1m:20,extended:3h:800")
	assert.Len(t, windows, 2)
	assert.Equal(t, TrendWindow{Name: "acute", Lookback: time.Minute, MinDelta: 20}, windows[0])
	assert.Equal(t, TrendWindow{Name: "extended", Lookback: 3 * time.Hour, MinDelta: 800}, windows[1])
}

func TestParseAllocations(t *testing.T) {
	allocations := parseAllocations("HODL:1.0,Spread:0.9,AllIn:0.005")
	assert.Equal(t, 1.0, allocations["HODL"])
	assert.Equal(t, 0.9, allocations["Spread"])
	assert.Equal(t, 0.005, allocations["AllIn"])
}

func TestLoadDefaults(t *testing.T) {
	s := Load()
	assert.Equal(t, "BTC-USD", s.Product)
	assert.Equal(t, 0.001, s.MaxChangePerMinute)
	assert.Equal(t, 1.0, s.MinBidAskSpread)
	assert.Equal(t, 20.0, s.MakerBufferUsd)
	assert.Equal(t, 2*time.Minute, s.StaleAfter)
	assert.Equal(t, 100.0, s.StaleDriftUsd)
	assert.Len(t, s.TrendWindows, 5)
	assert.Len(t, s.SpreadTiers, 3)
	assert.Equal(t, 3*time.Hour, s.LargestWindow())
}

func TestWindowLookup(t *testing.T) {
	s := &Settings{TrendWindows: parseTrendWindows("acute:1m:20,short:5m:30")}

	window, ok := s.Window("short")
	assert.True(t, ok)
	assert.Equal(t, 5*time.Minute, window.Lookback)

	_, ok = s.Window("nope")
	assert.False(t, ok)
}
