package strategies

import (
	"fmt"
	"time"

	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/helpers"
	"gitlab.com/ghwlabs/gotradebot/models"
)

const HodlAlgorithm = "HODL"

// DiamondHands periodically buys a small fixed amount and never sells,
// regardless of trend. The slow dollar-cost-average leg.
type DiamondHands struct {
	ctx *core.Context

	lastBuy time.Time
	nextBuy time.Time
}

func NewDiamondHands(ctx *core.Context) *DiamondHands {
	return &DiamondHands{
		ctx:     ctx,
		nextBuy: time.Now(),
	}
}

func (dh *DiamondHands) Name() string {
	return "hodl"
}

func (dh *DiamondHands) Interval() time.Duration {
	return dh.ctx.Settings.StrategyInterval
}

// Init resumes the buy schedule from the most recent recorded buy so a
// restart does not trigger an extra purchase.
func (dh *DiamondHands) Init() error {
	for _, pair := range dh.ctx.History.Snapshot() {
		if pair.Algorithm != HodlAlgorithm || pair.Status != models.PairComplete {
			continue
		}
		if pair.EventTime.After(dh.lastBuy) {
			dh.lastBuy = pair.EventTime.Time
		}
	}
	for _, pair := range dh.ctx.OrderBook.Snapshot() {
		if pair.Algorithm != HodlAlgorithm || pair.Status == models.PairCanceled {
			continue
		}
		if pair.EventTime.After(dh.lastBuy) {
			dh.lastBuy = pair.EventTime.Time
		}
	}

	if !dh.lastBuy.IsZero() {
		dh.nextBuy = dh.lastBuy.Add(dh.ctx.Settings.HodlFrequency)
	}
	return nil
}

func (dh *DiamondHands) Tick() {
	if time.Now().Before(dh.nextBuy) {
		return
	}

	smooth := dh.ctx.SmoothMarket()
	if smooth.Split == 0 {
		return
	}

	helpers.Logger.Infoln("Creating new HODL order.")
	btc := dh.ctx.Settings.HodlBtc
	usd := smooth.Split * btc
	buy := models.NewOrder(models.SideBuy, btc, usd)
	pair := models.NewOrderPair(HodlAlgorithm, buy, nil)
	pair.BuyOnly = true
	pair.EventPrice = smooth.Split
	pair.RefreshStatus()

	dh.ctx.OrderBook.Append(pair)
	dh.nextBuy = time.Now().Add(dh.ctx.Settings.HodlFrequency)
	helpers.Logger.Debugln(fmt.Sprintf("Next HODL buy at %s.", dh.nextBuy.Format("2006-01-02 15:04:05")))
}
