package services

import (
	"sync"
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"

	"gitlab.com/ghwlabs/gotradebot/core"
)

const (
	candlePeriod = time.Minute
	maxCandles   = 240
	rsiWindow    = 14
	fastEma      = 5
	slowEma      = 15
)

// TimeSeriesService aggregates raw market polls into one-minute
// candles and answers whether short-term momentum confirms an upward
// move. Strategies use it as a second opinion next to the trend
// windows when deciding to skew a new wager.
type TimeSeriesService struct {
	ctx *core.Context

	mtx    sync.Mutex
	series *techan.TimeSeries
}

func NewTimeSeriesService(ctx *core.Context) *TimeSeriesService {
	return &TimeSeriesService{
		ctx:    ctx,
		series: techan.NewTimeSeries(),
	}
}

func (tss *TimeSeriesService) Name() string {
	return "timeseries"
}

func (tss *TimeSeriesService) Interval() time.Duration {
	return tss.ctx.Settings.TrendInterval
}

func (tss *TimeSeriesService) Init() error {
	return nil
}

func (tss *TimeSeriesService) Tick() {
	market := tss.ctx.CurrentMarket()
	if market.Updated.IsZero() {
		return
	}

	tss.mtx.Lock()
	defer tss.mtx.Unlock()

	price := big.NewDecimal(market.Split)
	bucket := market.Updated.Truncate(candlePeriod)
	last := tss.series.LastCandle()
	if last != nil && last.Period.Start.Equal(bucket) {
		last.ClosePrice = price
		if price.GT(last.MaxPrice) {
			last.MaxPrice = price
		}
		if price.LT(last.MinPrice) {
			last.MinPrice = price
		}
		return
	}

	period := techan.NewTimePeriod(bucket, candlePeriod)
	candle := techan.NewCandle(period)
	candle.OpenPrice = price
	candle.ClosePrice = price
	candle.MaxPrice = price
	candle.MinPrice = price
	tss.series.AddCandle(candle)

	// Bounded retention; indicators never need more than this.
	if len(tss.series.Candles) > maxCandles {
		trimmed := techan.NewTimeSeries()
		for _, c := range tss.series.Candles[len(tss.series.Candles)-maxCandles:] {
			trimmed.AddCandle(c)
		}
		tss.series = trimmed
	}
}

// UpwardConfirmed reports whether RSI and the fast/slow EMA pair both
// read bullish over the recent candles.
func (tss *TimeSeriesService) UpwardConfirmed() bool {
	tss.mtx.Lock()
	defer tss.mtx.Unlock()

	last := tss.series.LastIndex()
	if last < slowEma {
		return false
	}

	closes := techan.NewClosePriceIndicator(tss.series)
	rsi := techan.NewRelativeStrengthIndexIndicator(closes, rsiWindow)
	if rsi.Calculate(last).Float() <= 50 {
		return false
	}

	fast := techan.NewEMAIndicator(closes, fastEma)
	slow := techan.NewEMAIndicator(closes, slowEma)
	return fast.Calculate(last).GT(slow.Calculate(last))
}
