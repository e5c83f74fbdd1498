package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrendSnapshotOf(t *testing.T) {
	snapshot := TrendSnapshot{"acute": TrendWaxing}
	assert.Equal(t, TrendWaxing, snapshot.Of("acute"))
	assert.Equal(t, TrendUnknown, snapshot.Of("extended"))

	var nilSnapshot TrendSnapshot
	assert.Equal(t, TrendUnknown, nilSnapshot.Of("acute"))
}

func TestTrendSnapshotCloneIsIndependent(t *testing.T) {
	snapshot := TrendSnapshot{"acute": TrendWaxing}
	clone := snapshot.Clone()
	clone["acute"] = TrendWaning

	assert.Equal(t, TrendWaxing, snapshot.Of("acute"))
	assert.Equal(t, TrendWaning, clone.Of("acute"))
}

func TestMarketPricesSpread(t *testing.T) {
	market := MarketPrices{Bid: 49990, Ask: 50010}
	assert.Equal(t, 20.0, market.Spread())
}
