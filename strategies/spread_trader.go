package strategies

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/ghwlabs/gotradebot/config"
	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/helpers"
	"gitlab.com/ghwlabs/gotradebot/models"
	"gitlab.com/ghwlabs/gotradebot/services"
)

const SpreadAlgorithm = "Spread"

// SpreadTrader maintains a book of paired buy/sell wagers above and
// below the current market, one set per configured tier. Wager density
// is self-limiting through the minimum-spacing rule.
type SpreadTrader struct {
	ctx        *core.Context
	timeSeries *services.TimeSeriesService
	mood       *MoodTracker

	currentSpreads map[string][]*models.OrderPair
}

func NewSpreadTrader(ctx *core.Context, timeSeries *services.TimeSeriesService) *SpreadTrader {
	return &SpreadTrader{
		ctx:            ctx,
		timeSeries:     timeSeries,
		mood:           NewMoodTracker(ctx.Settings.MoodConfirmTicks, ctx.Settings.MoodDwell),
		currentSpreads: map[string][]*models.OrderPair{},
	}
}

func (st *SpreadTrader) Name() string {
	return "spread"
}

func (st *SpreadTrader) Interval() time.Duration {
	return st.ctx.Settings.StrategyInterval
}

// Init indexes the surviving spread wagers from the persisted book.
func (st *SpreadTrader) Init() error {
	for _, tier := range st.ctx.Settings.SpreadTiers {
		st.currentSpreads[tier.Name] = nil
	}

	for _, pair := range st.ctx.OrderBook.Snapshot() {
		if !strings.HasPrefix(pair.Algorithm, SpreadAlgorithm+"-") {
			continue
		}
		tierName := strings.TrimPrefix(pair.Algorithm, SpreadAlgorithm+"-")
		st.currentSpreads[tierName] = append(st.currentSpreads[tierName], pair)
	}

	for _, tier := range st.ctx.Settings.SpreadTiers {
		helpers.Logger.Infoln(fmt.Sprintf("Found %d active %s spreads.",
			len(st.currentSpreads[tier.Name]), tier.Name))
	}
	return nil
}

func (st *SpreadTrader) Tick() {
	trend := st.ctx.Trend()
	mood := st.mood.Observe(classifyMood(trend), time.Now())

	for _, tier := range st.ctx.Settings.SpreadTiers {
		st.handleSpread(tier, mood, trend)
	}
}

func (st *SpreadTrader) handleSpread(tier config.SpreadTier, mood Mood, trend models.TrendSnapshot) {
	// Broad confirmed decline: stop buying. Resting sells ride it out;
	// inventory already held is never force-liquidated here.
	if mood == MoodWaning && trend.Of("extended") == models.TrendWaning {
		st.cancelTierBuys(tier)
		st.cleanupSpread(tier)
		return
	}

	// Take the loss on wagers we're unlikely to recover
	st.endBadPositions(tier)

	// Lay a new wager when nothing rests near the current price
	st.handleNewSpread(tier, mood, trend)

	// New buys start OnHold so we buy on the way up, not the way down
	st.waitForWaxing(tier, trend)

	// Drop finished wagers and cancel ones the market walked away from
	st.cleanupSpread(tier)
}

// endBadPositions cancels buy legs whose price the market has fallen
// away from. The leeway shrinks linearly to zero, so fresh fills get
// room to breathe and old ones do not.
func (st *SpreadTrader) endBadPositions(tier config.SpreadTier) {
	smooth := st.ctx.SmoothMarket()
	now := time.Now()

	for _, pair := range st.currentSpreads[tier.Name] {
		pair.Mtx.Lock()

		reference := pair.Buy.LimitPrice()
		since := pair.EventTime.Time
		if pair.Buy.Status == models.OrderComplete && pair.Buy.Info != nil {
			reference = pair.Buy.Info.FinalMarket
			if !pair.Buy.Info.FinalTime.IsZero() {
				since = pair.Buy.Info.FinalTime.Time
			}
		}

		if reference <= smooth.Split+st.leeway(now.Sub(since)) {
			pair.Mtx.Unlock()
			continue
		}

		switch pair.Status {
		case models.PairPending, models.PairActive:
			if services.CancelOrder(st.ctx, pair.Algorithm, pair.Buy, "below spread range") {
				pair.RefreshStatus()
				st.mood.Force(MoodCautious, now)
			}

		case models.PairOnHoldSell, models.PairPendingSell, models.PairActiveSell:
			// Requeue a cheaper sell, unless it was queued moments ago
			sell := pair.Sell
			if sell == nil {
				break
			}
			if sell.Info != nil && now.Before(sell.Info.OrderTime.Add(st.ctx.Settings.SellRequeueGrace)) {
				break
			}
			if services.CancelOrder(st.ctx, pair.Algorithm, sell, "below spread range") {
				sell.Status = models.OrderPending
				sell.Usd = smooth.Bid * sell.Btc
				sell.Info = models.NewOrderInfo("", "", models.Now(), smooth.Bid)
				pair.RefreshStatus()
				st.mood.Force(MoodCautious, now)
			}
		}
		pair.Mtx.Unlock()
	}
}

func (st *SpreadTrader) leeway(elapsed time.Duration) float64 {
	decay := st.ctx.Settings.BadPositionDecay
	if elapsed >= decay {
		return 0
	}
	remaining := 1 - elapsed.Seconds()/decay.Seconds()
	return st.ctx.Settings.BadPositionLeewayUsd * remaining
}

// handleNewSpread lays a buy/sell pair around the current price when
// the nearest existing wager is farther away than the mood-scaled
// minimum spacing.
func (st *SpreadTrader) handleNewSpread(tier config.SpreadTier, mood Mood, trend models.TrendSnapshot) {
	// Market in an extended decline: no new wagers
	if trend.Of("extended") == models.TrendWaning {
		return
	}

	smooth := st.ctx.SmoothMarket()
	if smooth.Split == 0 {
		return
	}

	// Distance to the nearest resting leg, relative to price
	minDelta := tier.Spread * 10
	for _, pair := range st.currentSpreads[tier.Name] {
		pair.Mtx.Lock()
		buyDelta := abs(pair.Buy.LimitPrice()-smooth.Split) / smooth.Split
		if buyDelta < minDelta {
			minDelta = buyDelta
		}
		if pair.Sell != nil {
			sellDelta := abs(pair.Sell.LimitPrice()-smooth.Split) / smooth.Split
			if sellDelta < minDelta {
				minDelta = sellDelta
			}
		}
		pair.Mtx.Unlock()
	}

	if minDelta < (tier.Spread/2)*spacingScale(mood) {
		return
	}

	helpers.Logger.Infoln(fmt.Sprintf("Market price %.2f triggering new %s spread ($%.2f USD).",
		smooth.Split, tier.Name, tier.Usd))

	upConfirmed := trend.Of("acute") == models.TrendWaxing && st.timeSeries.UpwardConfirmed()
	downConfirmed := trend.Of("acute") == models.TrendWaning

	spreadUsd := smooth.Split * tier.Spread
	center := smooth.Split
	if upConfirmed {
		center += spreadUsd * 0.1
	} else if downConfirmed {
		center -= spreadUsd * 0.1
	}

	buyMarket := helpers.FloorUsd(center - spreadUsd/2)
	sellMarket := helpers.FloorUsd(center + spreadUsd/2)
	btc := helpers.FloorBtc(tier.Usd / buyMarket)
	buyUsd := buyMarket * btc
	sellUsd := sellMarket * btc

	helpers.Logger.Debugln(fmt.Sprintf("Spread: %.2f, BTC: %.8f, Buy: $%.2f, Sell: $%.2f",
		spreadUsd, btc, buyUsd, sellUsd))

	buy := models.NewOrder(models.SideBuy, btc, buyUsd)
	if !upConfirmed {
		buy.Status = models.OrderOnHold
	}
	sell := models.NewOrder(models.SideSell, btc, sellUsd)

	pair := models.NewOrderPair(SpreadAlgorithm+"-"+tier.Name, buy, sell)
	pair.EventPrice = smooth.Split

	st.ctx.OrderBook.Append(pair)
	st.currentSpreads[tier.Name] = append(st.currentSpreads[tier.Name], pair)
}

// waitForWaxing releases an OnHold buy to Pending once the most recent
// movement is upward and the market sits near the intended buy price.
func (st *SpreadTrader) waitForWaxing(tier config.SpreadTier, trend models.TrendSnapshot) {
	if trend.Of("extended") == models.TrendWaning {
		return
	}
	if trend.Of("acute") != models.TrendWaxing {
		return
	}

	smooth := st.ctx.SmoothMarket()
	for _, pair := range st.currentSpreads[tier.Name] {
		pair.Mtx.Lock()
		if pair.Status != models.PairOnHold {
			pair.Mtx.Unlock()
			continue
		}
		// Still waiting for price to come back within reach of intent
		if pair.Buy.LimitPrice() < smooth.Bid-st.ctx.Settings.ReleaseBandUsd {
			pair.Mtx.Unlock()
			continue
		}
		pair.Buy.Status = models.OrderPending
		pair.RefreshStatus()
		delta := pair.Buy.LimitPrice() - smooth.Bid
		pair.Mtx.Unlock()
		helpers.Logger.Debugln(fmt.Sprintf("Spread %s buy is ready. %.2f USD away.", tier.Name, delta))
	}
}

// cleanupSpread cancels un-bought wagers the market has drifted too
// far from and drops settled pairs from the tier index.
func (st *SpreadTrader) cleanupSpread(tier config.SpreadTier) {
	smooth := st.ctx.SmoothMarket()
	maxDelta := tier.Spread * 3 * smooth.Split
	minBuy := smooth.Split - maxDelta
	maxBuy := smooth.Split + maxDelta

	for _, pair := range st.currentSpreads[tier.Name] {
		pair.Mtx.Lock()
		unbought := pair.Status == models.PairOnHold ||
			pair.Status == models.PairPending ||
			pair.Status == models.PairActive
		if unbought {
			limitPrice := pair.Buy.LimitPrice()
			if limitPrice > maxBuy || limitPrice < minBuy {
				if services.CancelOrder(st.ctx, pair.Algorithm, pair.Buy, "spread too far") {
					pair.RefreshStatus()
				}
			}
		}
		pair.Mtx.Unlock()
	}

	kept := st.currentSpreads[tier.Name][:0]
	for _, pair := range st.currentSpreads[tier.Name] {
		pair.Mtx.Lock()
		settled := pair.Settled()
		pair.Mtx.Unlock()
		if !settled {
			kept = append(kept, pair)
		}
	}
	st.currentSpreads[tier.Name] = kept
}

// cancelTierBuys abandons every not-yet-bought wager in the tier.
func (st *SpreadTrader) cancelTierBuys(tier config.SpreadTier) {
	for _, pair := range st.currentSpreads[tier.Name] {
		pair.Mtx.Lock()
		if pair.Status == models.PairOnHold ||
			pair.Status == models.PairPending ||
			pair.Status == models.PairActive {
			if services.CancelOrder(st.ctx, pair.Algorithm, pair.Buy, "market waning") {
				pair.RefreshStatus()
			}
		}
		pair.Mtx.Unlock()
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
