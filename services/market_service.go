package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/helpers"
	"gitlab.com/ghwlabs/gotradebot/metrics"
	"gitlab.com/ghwlabs/gotradebot/models"
)

// MarketService keeps the current and smoothed market prices updated.
// The smoothed copy is rate-limited so a single wild print cannot move
// classification more than maxChangePerMinute allows.
type MarketService struct {
	ctx *core.Context

	smooth    models.MarketPrices
	nextWrite time.Time
}

func NewMarketService(ctx *core.Context) *MarketService {
	return &MarketService{ctx: ctx}
}

func (ms *MarketService) Name() string {
	return "market"
}

func (ms *MarketService) Interval() time.Duration {
	return ms.ctx.Settings.MarketInterval
}

// Init blocks until a first price sample is obtained. Other loops rely
// on prices being present, so an unreachable broker here is fatal.
func (ms *MarketService) Init() error {
	for attempt := 0; attempt < 30; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Second)
			if !ms.ctx.Running() {
				return fmt.Errorf("shutdown requested before a market sample was obtained")
			}
		}
		market, err := ms.retrieve()
		if err == nil {
			ms.smooth = market
			ms.ctx.SetMarkets(market, market)
			helpers.Logger.Infoln("Current market initialized.")
			ms.nextWrite = time.Now()
			return nil
		}
		helpers.Logger.Errorln(fmt.Sprintf("Failed to get market price: %v", err))
	}
	return fmt.Errorf("no initial market sample obtainable")
}

func (ms *MarketService) Tick() {
	market, err := ms.retrieve()
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to get market price: %v", err))
		return
	}

	newBid := ms.blend(ms.smooth.Bid, market.Bid)
	newAsk := ms.blend(ms.smooth.Ask, market.Ask)

	// Normalize bid/ask relation
	if newAsk < newBid {
		newAsk = newBid
	}

	ms.smooth.Bid = newBid
	ms.smooth.Ask = newAsk
	ms.smooth.Split = helpers.FloorUsd((newBid + newAsk) / 2)
	ms.smooth.Updated = market.Updated

	ms.ctx.SetMarkets(market, ms.smooth)

	metrics.MarketPrice.WithLabelValues("bid").Set(market.Bid)
	metrics.MarketPrice.WithLabelValues("ask").Set(market.Ask)
	metrics.MarketPrice.WithLabelValues("smooth_bid").Set(ms.smooth.Bid)
	metrics.MarketPrice.WithLabelValues("smooth_ask").Set(ms.smooth.Ask)

	if !ms.nextWrite.After(time.Now()) {
		ms.nextWrite = time.Now().Add(ms.ctx.Settings.MarketLogEvery)
		helpers.Logger.Traceln(fmt.Sprintf("Market: [ %.2f | %.2f ] -> Smooth: [ %.2f | %.2f ]",
			market.Bid, market.Ask, ms.smooth.Bid, ms.smooth.Ask))
		ms.appendMarketLog(market)
	}
}

func (ms *MarketService) retrieve() (models.MarketPrices, error) {
	bid, ask, err := ms.ctx.Broker.GetBestBidAsk(ms.ctx.Settings.Product)
	if err != nil {
		return models.MarketPrices{}, err
	}
	return models.MarketPrices{
		Bid:     bid,
		Ask:     ask,
		Split:   helpers.FloorUsd((bid + ask) / 2),
		Updated: time.Now(),
	}, nil
}

// blend moves the smoothed price toward the new sample, clamped to
// maxChangePerMinute scaled by the elapsed time.
func (ms *MarketService) blend(current float64, new float64) float64 {
	if current == 0 {
		return new
	}

	positive := 1.0
	if new < current {
		positive = -1.0
	}
	delta := (new - current) / current * positive

	elapsed := time.Since(ms.smooth.Updated).Seconds()
	maxDelta := ms.ctx.Settings.MaxChangePerMinute * (elapsed / 60)
	if delta > maxDelta {
		delta = maxDelta
	}

	return current + (current * delta * positive)
}

func (ms *MarketService) appendMarketLog(market models.MarketPrices) {
	file := ms.ctx.Settings.MarketLogFile
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to write market log: %v", err))
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s,%f,%f,%f,%f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		market.Bid, market.Ask, ms.smooth.Bid, ms.smooth.Ask)
}
