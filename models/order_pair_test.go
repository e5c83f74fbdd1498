package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDerivePairStatusMirrorsBuyUntilComplete(t *testing.T) {
	assert.Equal(t, PairOnHold, DerivePairStatus(OrderOnHold, OrderPending, true, false))
	assert.Equal(t, PairPending, DerivePairStatus(OrderPending, OrderPending, true, false))
	assert.Equal(t, PairActive, DerivePairStatus(OrderActive, OrderPending, true, false))
	assert.Equal(t, PairCanceled, DerivePairStatus(OrderCanceled, OrderPending, true, false))
}

func TestDerivePairStatusSellProgression(t *testing.T) {
	assert.Equal(t, PairOnHoldSell, DerivePairStatus(OrderComplete, OrderOnHold, true, false))
	assert.Equal(t, PairPendingSell, DerivePairStatus(OrderComplete, OrderPending, true, false))
	assert.Equal(t, PairActiveSell, DerivePairStatus(OrderComplete, OrderActive, true, false))
	assert.Equal(t, PairComplete, DerivePairStatus(OrderComplete, OrderComplete, true, false))
	assert.Equal(t, PairCanceled, DerivePairStatus(OrderComplete, OrderCanceled, true, false))
}

func TestDerivePairStatusBuyOnly(t *testing.T) {
	// A buy-only wager is done as soon as the buy fills
	assert.Equal(t, PairComplete, DerivePairStatus(OrderComplete, "", false, true))
	// A completed buy with no sell leg yet is holding the sale, not done
	assert.Equal(t, PairOnHoldSell, DerivePairStatus(OrderComplete, "", false, false))
}

func TestDerivePairStatusIsPure(t *testing.T) {
	buyStatuses := []OrderStatus{OrderOnHold, OrderPending, OrderActive, OrderComplete, OrderCanceled}
	sellStatuses := []OrderStatus{OrderOnHold, OrderPending, OrderActive, OrderComplete, OrderCanceled}

	for _, buy := range buyStatuses {
		for _, sell := range sellStatuses {
			for _, buyOnly := range []bool{false, true} {
				first := DerivePairStatus(buy, sell, true, buyOnly)
				second := DerivePairStatus(buy, sell, true, buyOnly)
				assert.Equal(t, first, second, "buy=%s sell=%s buyOnly=%v", buy, sell, buyOnly)
			}
		}
	}
}

func TestRefreshStatusIdempotent(t *testing.T) {
	buy := NewOrder(SideBuy, 0.01, 500)
	sell := NewOrder(SideSell, 0.01, 505)
	pair := NewOrderPair("Spread-Low", buy, sell)

	buy.Status = OrderComplete
	pair.RefreshStatus()
	assert.Equal(t, PairPendingSell, pair.Status)
	pair.RefreshStatus()
	assert.Equal(t, PairPendingSell, pair.Status)
}

func TestOrderPairRoundTrip(t *testing.T) {
	buy := NewOrder(SideBuy, 0.01, 499.25)
	buy.Status = OrderComplete
	buy.Info = NewOrderInfo("abc-123", "client-1", NewTimestamp(time.Date(2024, 3, 1, 12, 30, 45, 0, time.Local)), 49925)
	buy.Info.FinalMarket = 49920.5
	buy.Info.FinalFees = 1.25
	buy.Info.FinalUsd = 499.2
	buy.Info.FinalTime = NewTimestamp(time.Date(2024, 3, 1, 12, 35, 0, 0, time.Local))

	sell := NewOrder(SideSell, 0.01, 500.75)
	pair := NewOrderPair("Spread-Low", buy, sell)
	pair.EventPrice = 50000

	data, err := json.Marshal(pair)
	assert.NoError(t, err)

	var decoded OrderPair
	assert.NoError(t, json.Unmarshal(data, &decoded))
	decoded.RefreshStatus()

	assert.Equal(t, pair.Algorithm, decoded.Algorithm)
	assert.Equal(t, pair.Status, decoded.Status)
	assert.Equal(t, pair.EventPrice, decoded.EventPrice)
	assert.Equal(t, pair.BuyOnly, decoded.BuyOnly)
	assert.Equal(t, buy.Btc, decoded.Buy.Btc)
	assert.Equal(t, buy.Usd, decoded.Buy.Usd)
	assert.Equal(t, buy.Info.OrderID, decoded.Buy.Info.OrderID)
	assert.Equal(t, buy.Info.ClientOrderID, decoded.Buy.Info.ClientOrderID)
	assert.Equal(t, buy.Info.FinalMarket, decoded.Buy.Info.FinalMarket)
	assert.Equal(t, buy.Info.FinalFees, decoded.Buy.Info.FinalFees)
	assert.Equal(t, buy.Info.FinalUsd, decoded.Buy.Info.FinalUsd)
	assert.True(t, buy.Info.OrderTime.Equal(decoded.Buy.Info.OrderTime.Time))
	assert.True(t, buy.Info.FinalTime.Equal(decoded.Buy.Info.FinalTime.Time))
	assert.True(t, decoded.Buy.Info.CancelTime.IsZero())
	assert.Equal(t, sell.Usd, decoded.Sell.Usd)

	// Timestamps survive to whole-second precision
	assert.True(t, pair.EventTime.Truncate(time.Second).Equal(decoded.EventTime.Time))
}
