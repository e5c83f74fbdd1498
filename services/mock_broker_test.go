package services

import (
	"path/filepath"
	"testing"
	"time"

	"gitlab.com/ghwlabs/gotradebot/config"
	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/models"
)

type placedOrder struct {
	side          models.Side
	clientOrderID string
	product       string
	baseSize      string
	limitPrice    string
}

// mockBroker is a scriptable Broker for tests.
type mockBroker struct {
	bid       float64
	ask       float64
	marketErr error

	orders      map[string]*models.BrokerOrder
	getOrderErr error

	placed    []placedOrder
	placeErr  error
	cancelErr error
	cancelOk  bool
	canceled  []string
	wallet    models.Wallet
	walletErr error
}

func newMockBroker() *mockBroker {
	return &mockBroker{
		orders:   map[string]*models.BrokerOrder{},
		cancelOk: true,
		wallet:   models.Wallet{UsdAvailable: 1000000},
	}
}

func (mb *mockBroker) GetBestBidAsk(product string) (float64, float64, error) {
	return mb.bid, mb.ask, mb.marketErr
}

func (mb *mockBroker) GetOrder(orderID string) (*models.BrokerOrder, error) {
	if mb.getOrderErr != nil {
		return nil, mb.getOrderErr
	}
	if order, ok := mb.orders[orderID]; ok {
		return order, nil
	}
	return &models.BrokerOrder{OrderID: orderID, Status: models.BrokerStatusOpen}, nil
}

func (mb *mockBroker) place(side models.Side, clientOrderID, product, baseSize, limitPrice string) (string, error) {
	if mb.placeErr != nil {
		return "", mb.placeErr
	}
	mb.placed = append(mb.placed, placedOrder{
		side:          side,
		clientOrderID: clientOrderID,
		product:       product,
		baseSize:      baseSize,
		limitPrice:    limitPrice,
	})
	return "order-" + clientOrderID, nil
}

func (mb *mockBroker) LimitOrderGtcBuy(clientOrderID string, product string, baseSize string, limitPrice string) (string, error) {
	return mb.place(models.SideBuy, clientOrderID, product, baseSize, limitPrice)
}

func (mb *mockBroker) LimitOrderGtcSell(clientOrderID string, product string, baseSize string, limitPrice string) (string, error) {
	return mb.place(models.SideSell, clientOrderID, product, baseSize, limitPrice)
}

func (mb *mockBroker) CancelOrders(orderIDs []string) ([]bool, error) {
	if mb.cancelErr != nil {
		return nil, mb.cancelErr
	}
	results := make([]bool, len(orderIDs))
	for i, id := range orderIDs {
		mb.canceled = append(mb.canceled, id)
		results[i] = mb.cancelOk
	}
	return results, nil
}

func (mb *mockBroker) GetAccounts() (*models.Wallet, error) {
	if mb.walletErr != nil {
		return nil, mb.walletErr
	}
	wallet := mb.wallet
	return &wallet, nil
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

		MarketInterval:    200 * time.Millisecond,
		ProcessorInterval: 200 * time.Millisecond,
		TrendInterval:     time.Second,
		StrategyInterval:  time.Second,
		NotifyInterval:    time.Second,
		MarketLogEvery:    time.Minute,

		MaxChangePerMinute: 0.001,

		TrendWindows: []config.TrendWindow{
			{Name: "acute", Lookback: time.Minute, MinDelta: 20},
			{Name: "short", Lookback: 5 * time.Minute, MinDelta: 30},
			{Name: "mid", Lookback: 10 * time.Minute, MinDelta: 50},
			{Name: "long", Lookback: 30 * time.Minute, MinDelta: 100},
			{Name: "extended", Lookback: 3 * time.Hour, MinDelta: 800},
		},

		MinBidAskSpread: 1.0,
		MakerBufferUsd:  20.0,
		StaleAfter:      2 * time.Minute,
		StaleDriftUsd:   100.0,

		Allocations: map[string]float64{"HODL": 1.0, "Spread": 0.9, "AllIn": 0.005},
		SpreadTiers: []config.SpreadTier{
			{Name: "Low", Usd: 500, Spread: 0.003},
			{Name: "Mid", Usd: 500, Spread: 0.0045},
			{Name: "High", Usd: 200, Spread: 0.006},
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
