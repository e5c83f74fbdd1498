package strategies

import (
	"fmt"
	"time"

	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/helpers"
	"gitlab.com/ghwlabs/gotradebot/models"
	"gitlab.com/ghwlabs/gotradebot/services"
)

const AllInAlgorithm = "AllIn"

// How far under a recent top counts as "fell down a bit" for entry.
const topFallRatio = 0.98

// How far above a pending buy the market may run before we abandon it.
const buyChaseUsd = 200.0

// AllInTrader manages one large wager at a time with a trailing-stop
// style exit: it tracks the running market high since entry and exits
// once price gives back too much of the run-up.
type AllInTrader struct {
	ctx *core.Context

	activePair  *models.OrderPair
	marketTop   float64
	recentTop   float64
	readyToSell bool
	lastRequeue time.Time
}

func NewAllInTrader(ctx *core.Context) *AllInTrader {
	return &AllInTrader{
		ctx:         ctx,
		lastRequeue: time.Now(),
	}
}

func (at *AllInTrader) Name() string {
	return "allin"
}

func (at *AllInTrader) Interval() time.Duration {
	return at.ctx.Settings.StrategyInterval
}

func (at *AllInTrader) Init() error {
	for _, pair := range at.ctx.OrderBook.Snapshot() {
		if pair.Algorithm == AllInAlgorithm {
			helpers.Logger.Infoln("Found active AllIn order pair.")
			at.activePair = pair
			break
		}
	}
	return nil
}

func (at *AllInTrader) Tick() {
	smooth := at.ctx.SmoothMarket()
	if smooth.Split > at.recentTop {
		at.recentTop = smooth.Split
	}

	if at.activePair == nil {
		at.checkBet()
		return
	}

	// checkPosition may clear the slot; keep unlocking the same pair.
	pair := at.activePair
	pair.Mtx.Lock()
	at.checkPosition()
	pair.Mtx.Unlock()
}

func (at *AllInTrader) checkBet() {
	// Breathe between wagers
	if time.Since(at.lastRequeue) < at.ctx.Settings.AllInBetGap {
		return
	}
	if !at.marketLow() {
		return
	}

	market := at.ctx.CurrentMarket().Bid
	if market == 0 {
		return
	}
	at.marketTop = market
	at.readyToSell = false
	at.lastRequeue = time.Now()
	helpers.Logger.Infoln(fmt.Sprintf("AllIn new wager at $%.2f.", market))

	buyUsd := at.ctx.Settings.AllInWagerUsd
	sellMarket := market * (1 + at.ctx.Settings.AllInMarkupPct)
	btc := helpers.FloorBtc(buyUsd / market)
	sellUsd := sellMarket * btc

	buy := models.NewOrder(models.SideBuy, btc, buyUsd)
	sell := models.NewOrder(models.SideSell, btc, sellUsd)
	sell.Status = models.OrderOnHold

	pair := models.NewOrderPair(AllInAlgorithm, buy, sell)
	pair.EventPrice = market

	at.activePair = pair
	at.ctx.OrderBook.Append(pair)
}

// marketLow guesses whether this is a decent entry: either a small
// pullback that has flattened out, or confirmed upward movement.
func (at *AllInTrader) marketLow() bool {
	trend := at.ctx.Trend()

	// Going down
	if trend.Of("short") == models.TrendWaning && trend.Of("acute") == models.TrendWaning {
		return false
	}
	if trend.Of("mid") == models.TrendWaning {
		return false
	}
	if trend.Of("long") == models.TrendWaning {
		return false
	}

	// Fell down a bit and flattened
	smooth := at.ctx.SmoothMarket()
	if smooth.Split < at.recentTop*topFallRatio && trend.Of("short") == models.TrendPlateau {
		return true
	}

	// Going up
	if trend.Of("short") == models.TrendWaxing && trend.Of("acute") == models.TrendWaxing {
		return true
	}

	return false
}

func (at *AllInTrader) checkPosition() {
	pair := at.activePair

	switch pair.Status {
	case models.PairComplete:
		helpers.Logger.Infoln("AllIn trade has been completed.")
		at.ctx.Notify.Queue("AllIn trade has been completed.")
		at.activePair = nil
		at.lastRequeue = time.Now()

	case models.PairCanceled:
		helpers.Logger.Infoln("AllIn trade has been canceled.")
		at.ctx.Notify.Queue("AllIn trade has been canceled.")
		at.activePair = nil

	case models.PairPending, models.PairActive:
		at.checkBuyPosition()

	case models.PairOnHoldSell, models.PairPendingSell, models.PairActiveSell:
		at.checkSellPosition()

	default:
		helpers.Logger.Infoln("AllIn trade invalid state.")
		if services.CancelOrder(at.ctx, AllInAlgorithm, pair.Buy, "invalid state") {
			pair.RefreshStatus()
		}
		if pair.Sell != nil && services.CancelOrder(at.ctx, AllInAlgorithm, pair.Sell, "invalid state") {
			pair.RefreshStatus()
		}
	}
}

func (at *AllInTrader) checkBuyPosition() {
	pair := at.activePair

	// Don't touch fresh bets
	if time.Since(pair.EventTime.Time) < at.ctx.Settings.AllInGrace {
		return
	}

	// The market ran away upward; this bet is never filling
	if at.ctx.SmoothMarket().Split-buyChaseUsd > pair.Buy.LimitPrice() {
		helpers.Logger.Infoln("AllIn buy too cheap.")
		if services.CancelOrder(at.ctx, AllInAlgorithm, pair.Buy, "market went up") {
			pair.RefreshStatus()
		}
	}
}

func (at *AllInTrader) checkSellPosition() {
	pair := at.activePair
	sell := pair.Sell
	info := pair.Buy.Info
	if sell == nil || info == nil {
		helpers.Logger.Errorln("AllIn position missing sell leg or fill info.")
		return
	}

	smooth := at.ctx.SmoothMarket()

	// Track the top of the market for this trade
	if at.marketTop < info.FinalMarket {
		at.marketTop = info.FinalMarket
	}
	if at.marketTop < smooth.Bid {
		at.marketTop = smooth.Bid
	}

	if time.Since(info.FinalTime.Time) < at.ctx.Settings.AllInGrace {
		return
	}
	if time.Since(at.lastRequeue) < at.ctx.Settings.AllInRequeueEvery {
		return
	}

	// Underwater: get out near market instead of waiting for a price
	// that may never come back
	if smooth.Bid < info.FinalMarket-at.ctx.Settings.AllInUnderwaterUsd {
		at.lastRequeue = time.Now()
		helpers.Logger.Infoln("AllIn fell below purchase price.")
		if services.CancelOrder(at.ctx, AllInAlgorithm, sell, "in the red") {
			market := at.ctx.CurrentMarket().Bid
			sell.Status = models.OrderPending
			sell.Usd = market * pair.Buy.Btc
			sell.Info = models.NewOrderInfo("", "", models.Now(), market)
			pair.RefreshStatus()
		}
		return
	}

	// Arm the exit once we're meaningfully in profit
	if !at.readyToSell {
		delta := smooth.Bid - info.FinalMarket
		if delta/info.FinalMarket >= at.ctx.Settings.AllInArmPct {
			helpers.Logger.Infoln("AllIn is ready to consider selling.")
			at.readyToSell = true
		}
	}

	trend := at.ctx.Trend()
	goingUp := trend.Of("short") == models.TrendWaxing && trend.Of("acute") == models.TrendWaxing

	// Trying to sell but the market turned back up: hold instead
	if (sell.Status == models.OrderPending || sell.Status == models.OrderActive) && goingUp {
		helpers.Logger.Infoln("AllIn stop sell, we're going back up.")
		if services.CancelOrder(at.ctx, AllInAlgorithm, sell, "market going up") {
			sell.Status = models.OrderOnHold
			pair.RefreshStatus()
		}
		return
	}

	// Exit once price has given back too much of the run-up
	if sell.Status == models.OrderOnHold && at.readyToSell && !goingUp {
		runHeight := at.marketTop - info.FinalMarket
		if runHeight <= 0 {
			return
		}
		curHeight := smooth.Bid - info.FinalMarket
		if curHeight/runHeight < at.ctx.Settings.AllInRetraceFraction {
			at.lastRequeue = time.Now()
			helpers.Logger.Infoln("AllIn wants to exit position.")
			sell.Status = models.OrderPending
			pair.RefreshStatus()
		}
	}
}
