package strategies

import (
	"path/filepath"
	"testing"
	"time"

	"gitlab.com/ghwlabs/gotradebot/config"
	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/models"
)

// mockBroker only needs to answer cancels for strategy tests; order
// submission is the processor's job.
type mockBroker struct {
	cancelOk bool
	canceled []string
}

func newMockBroker() *mockBroker {
	return &mockBroker{cancelOk: true}
}

func (mb *mockBroker) GetBestBidAsk(product string) (float64, float64, error) {
	return 0, 0, nil
}

func (mb *mockBroker) GetOrder(orderID string) (*models.BrokerOrder, error) {
	return &models.BrokerOrder{OrderID: orderID, Status: models.BrokerStatusOpen}, nil
}

func (mb *mockBroker) LimitOrderGtcBuy(clientOrderID string, product string, baseSize string, limitPrice string) (string, error) {
	return "order-" + clientOrderID, nil
}

func (mb *mockBroker) LimitOrderGtcSell(clientOrderID string, product string, baseSize string, limitPrice string) (string, error) {
	return "order-" + clientOrderID, nil
}

func (mb *mockBroker) CancelOrders(orderIDs []string) ([]bool, error) {
	results := make([]bool, len(orderIDs))
	for i, id := range orderIDs {
		mb.canceled = append(mb.canceled, id)
		results[i] = mb.cancelOk
	}
	return results, nil
}

func (mb *mockBroker) GetAccounts() (*models.Wallet, error) {
	return &models.Wallet{UsdAvailable: 1000000}, nil
}

func testSettings(t *testing.T) *config.Settings {
	dir := t.TempDir()
	return &config.Settings{
		Product:       "BTC-USD",
		DataDir:       dir,
		OrderBookFile: filepath.Join(dir, "orderbook.json"),
		HistoryFile:   filepath.Join(dir, "history.json"),
		TrendFile:     filepath.Join(dir, "trend.json"),
		MarketLogFile: filepath.Join(dir, "market.csv"),

		StrategyInterval: time.Second,
		TrendInterval:    time.Second,

		TrendWindows: []config.TrendWindow{
			{Name: "acute", Lookback: time.Minute, MinDelta: 20},
			{Name: "short", Lookback: 5 * time.Minute, MinDelta: 30},
			{Name: "mid", Lookback: 10 * time.Minute, MinDelta: 50},
			{Name: "long", Lookback: 30 * time.Minute, MinDelta: 100},
			{Name: "extended", Lookback: 3 * time.Hour, MinDelta: 800},
		},

		Allocations: map[string]float64{"HODL": 1.0, "Spread": 0.9, "AllIn": 0.005},
		SpreadTiers: []config.SpreadTier{
			{Name: "Low", Usd: 500, Spread: 0.003},
		},

		MoodConfirmTicks:     3,
		MoodDwell:            90 * time.Second,
		BadPositionLeewayUsd: 200.0,
		BadPositionDecay:     time.Minute,
		ReleaseBandUsd:       50.0,
		SellRequeueGrace:     2 * time.Minute,

		HodlFrequency: 4 * time.Hour,
		HodlBtc:       0.00002,

		AllInWagerUsd:        100.0,
		AllInMarkupPct:       0.0014,
		AllInArmPct:          0.001,
		AllInBetGap:          2 * time.Minute,
		AllInGrace:           20 * time.Minute,
		AllInRequeueEvery:    15 * time.Second,
		AllInRetraceFraction: 0.85,
		AllInUnderwaterUsd:   50.0,

		NotificationCap: 100,
	}
}

func newTestContext(t *testing.T, broker *mockBroker) *core.Context {
	return core.NewContext(testSettings(t), broker)
}

func setSmooth(ctx *core.Context, bid float64, ask float64) {
	market := models.MarketPrices{
		Bid:     bid,
		Ask:     ask,
		Split:   (bid + ask) / 2,
		Updated: time.Now(),
	}
	ctx.SetMarkets(market, market)
}
