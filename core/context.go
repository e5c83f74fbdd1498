package core

import (
	"sync"
	"sync/atomic"

	"gitlab.com/ghwlabs/gotradebot/config"
	"gitlab.com/ghwlabs/gotradebot/interfaces"
	"gitlab.com/ghwlabs/gotradebot/models"
)

// Context is the shared state every component receives at
// construction. There is no process-wide singleton; the bot owns one
// instance and injects it.
type Context struct {
	Settings  *config.Settings
	Broker    interfaces.Broker
	OrderBook *models.OrderBook
	History   *models.OrderHistory
	Notify    *models.NotificationQueue

	mtx           sync.RWMutex
	currentMarket models.MarketPrices
	smoothMarket  models.MarketPrices
	trend         models.TrendSnapshot

	running atomic.Bool
}

func NewContext(settings *config.Settings, broker interfaces.Broker) *Context {
	return &Context{
		Settings:  settings,
		Broker:    broker,
		OrderBook: models.NewOrderBook(settings.OrderBookFile),
		History:   models.NewOrderHistory(settings.HistoryFile),
		Notify:    models.NewNotificationQueue(settings.NotificationCap),
		trend:     models.TrendSnapshot{},
	}
}

// CurrentMarket is the latest raw broker poll.
func (ctx *Context) CurrentMarket() models.MarketPrices {
	ctx.mtx.RLock()
	defer ctx.mtx.RUnlock()
	return ctx.currentMarket
}

// SmoothMarket is the rate-limited price used for classification.
func (ctx *Context) SmoothMarket() models.MarketPrices {
	ctx.mtx.RLock()
	defer ctx.mtx.RUnlock()
	return ctx.smoothMarket
}

func (ctx *Context) SetMarkets(current models.MarketPrices, smooth models.MarketPrices) {
	ctx.mtx.Lock()
	ctx.currentMarket = current
	ctx.smoothMarket = smooth
	ctx.mtx.Unlock()
}

func (ctx *Context) Trend() models.TrendSnapshot {
	ctx.mtx.RLock()
	defer ctx.mtx.RUnlock()
	return ctx.trend.Clone()
}

func (ctx *Context) SetTrend(snapshot models.TrendSnapshot) {
	ctx.mtx.Lock()
	ctx.trend = snapshot.Clone()
	ctx.mtx.Unlock()
}

// Running is checked by every loop between ticks.
func (ctx *Context) Running() bool {
	return ctx.running.Load()
}

func (ctx *Context) SetRunning(running bool) {
	ctx.running.Store(running)
}
