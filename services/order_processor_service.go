package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/helpers"
	"gitlab.com/ghwlabs/gotradebot/metrics"
	"gitlab.com/ghwlabs/gotradebot/models"
)

// TradeRecorder receives settled wagers for out-of-band persistence.
type TradeRecorder interface {
	AddTrade(pair *models.OrderPair)
}

// OrderProcessorService drives every tracked wager's legs against the
// broker: polls active orders, requeues stale ones, submits pending
// ones, and retires settled pairs into history.
type OrderProcessorService struct {
	ctx        *core.Context
	allocation *AllocationService
	recorder   TradeRecorder
}

func NewOrderProcessorService(ctx *core.Context, allocation *AllocationService, recorder TradeRecorder) *OrderProcessorService {
	return &OrderProcessorService{
		ctx:        ctx,
		allocation: allocation,
		recorder:   recorder,
	}
}

func (op *OrderProcessorService) Name() string {
	return "orders"
}

func (op *OrderProcessorService) Interval() time.Duration {
	return op.ctx.Settings.ProcessorInterval
}

func (op *OrderProcessorService) Init() error {
	return nil
}

func (op *OrderProcessorService) Tick() {
	for _, pair := range op.ctx.OrderBook.Snapshot() {
		pair.Mtx.Lock()
		op.process(pair)
		pair.RefreshStatus()
		pair.Mtx.Unlock()
	}

	retired := op.ctx.OrderBook.Cleanup(op.ctx.History)
	if op.recorder != nil {
		for _, pair := range retired {
			op.recorder.AddTrade(pair)
		}
	}

	op.ctx.OrderBook.WriteFs()
	metrics.PairsOpen.Set(float64(op.ctx.OrderBook.Len()))
}

func (op *OrderProcessorService) process(pair *models.OrderPair) {
	// Check on the active leg, if any
	var active *models.Order
	if pair.Buy.Status == models.OrderActive {
		active = pair.Buy
	} else if pair.Sell != nil && pair.Sell.Status == models.OrderActive {
		active = pair.Sell
	}
	if active != nil {
		if err := op.checkActive(pair, active); err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("Failed to check %s order status for %s: %v",
				active.Side, pair.Algorithm, err))
		}
	}

	// A sell leg only becomes submittable once the buy is done
	var pending *models.Order
	if pair.Buy.Status == models.OrderPending {
		pending = pair.Buy
	} else if pair.Sell != nil && pair.Sell.Status == models.OrderPending && pair.Buy.Status == models.OrderComplete {
		pending = pair.Sell
	}
	if pending != nil {
		if err := op.queuePending(pair, pending); err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("Failed to queue pending %s order for %s: %v",
				pending.Side, pair.Algorithm, err))
		}
	}
}

// checkActive polls the broker for a resting order and maps its status
// onto the leg. OPEN orders resting too long at a drifted price are
// canceled and reset to Pending for resubmission at a fresh price.
func (op *OrderProcessorService) checkActive(pair *models.OrderPair, order *models.Order) error {
	if order.Info == nil {
		// Should be impossible; skip the leg rather than crash.
		return fmt.Errorf("active order has no submission info")
	}

	brokerOrder, err := op.ctx.Broker.GetOrder(order.Info.OrderID)
	if err != nil {
		return err
	}

	switch {
	case brokerOrder.Status == models.BrokerStatusFilled:
		order.Status = models.OrderComplete
		order.Info.FinalMarket = brokerOrder.AverageFilledPrice
		order.Info.FinalFees = brokerOrder.TotalFees
		order.Info.FinalUsd = brokerOrder.FilledValue
		if !brokerOrder.LastFillTime.IsZero() {
			order.Info.FinalTime = models.NewTimestamp(brokerOrder.LastFillTime)
		} else {
			order.Info.FinalTime = models.Now()
		}
		metrics.OrdersFilled.WithLabelValues(string(order.Side), pair.Algorithm).Inc()
		helpers.Logger.Infoln(fmt.Sprintf("%s order for %s filled.", order.Side, pair.Algorithm))
		op.ctx.Notify.Queue(fmt.Sprintf("%s %s filled: $%.2f @ $%.2f",
			pair.Algorithm, order.Side, order.Info.FinalUsd, order.Info.FinalMarket))

	case brokerOrder.Status != models.BrokerStatusOpen:
		order.Status = models.OrderCanceled
		order.Info.CancelTime = models.Now()
		order.Info.CancelReason = "broker " + brokerOrder.Status
		helpers.Logger.Infoln(fmt.Sprintf("%s order for %s canceled.", order.Side, pair.Algorithm))

	case time.Since(order.Info.OrderTime.Time) > op.ctx.Settings.StaleAfter:
		market := op.ctx.CurrentMarket()
		reference := market.Bid
		if order.Side == models.SideSell {
			reference = market.Ask
		}
		drift := order.Info.OrderMarket - reference
		if drift < 0 {
			drift = -drift
		}
		if drift > op.ctx.Settings.StaleDriftUsd {
			helpers.Logger.Infoln(fmt.Sprintf("Stale %s for %s.", order.Side, pair.Algorithm))
			if CancelOrder(op.ctx, pair.Algorithm, order, "stale") {
				order.Status = models.OrderPending
				order.ClearInsufficientFunds()
			}
		}
	}
	return nil
}

// queuePending submits a limit order resting a fixed maker buffer off
// the current bid/ask, provided market conditions and (for buys) the
// strategy's capital pool allow it.
func (op *OrderProcessorService) queuePending(pair *models.OrderPair, order *models.Order) error {
	market := op.ctx.CurrentMarket()

	// Need at least a minimum bid/ask spread for maker conditions
	if market.Spread() < op.ctx.Settings.MinBidAskSpread {
		return nil
	}

	limitPrice := order.LimitPrice()

	var finalPrice float64
	if order.Side == models.SideBuy {
		finalPrice = helpers.FloorUsd(market.Ask - op.ctx.Settings.MakerBufferUsd)
		if finalPrice < limitPrice {
			return nil
		}
		if !op.allocation.CheckAllocation(pair.Algorithm, order.Usd, pair) {
			return nil
		}
	} else {
		finalPrice = helpers.FloorUsd(market.Bid + op.ctx.Settings.MakerBufferUsd)
		if finalPrice > limitPrice {
			return nil
		}
	}

	clientOrderID := uuid.NewString()
	baseSize := helpers.FormatBtc(order.Btc)
	limit := helpers.FormatUsd(finalPrice)

	var orderID string
	var err error
	if order.Side == models.SideBuy {
		orderID, err = op.ctx.Broker.LimitOrderGtcBuy(clientOrderID, op.ctx.Settings.Product, baseSize, limit)
	} else {
		orderID, err = op.ctx.Broker.LimitOrderGtcSell(clientOrderID, op.ctx.Settings.Product, baseSize, limit)
	}

	if err != nil {
		if models.IsInsufficientFunds(err) && order.FlagInsufficientFunds() {
			// Already reported; stay Pending until conditions change.
			return nil
		}
		helpers.Logger.Errorln(fmt.Sprintf("Failed to create %s order for %s ($%.2f USD @ $%.2f): %v",
			order.Side, pair.Algorithm, order.Usd, finalPrice, err))
		return nil
	}

	order.Info = models.NewOrderInfo(orderID, clientOrderID, models.Now(), finalPrice)
	order.Status = models.OrderActive
	order.ClearInsufficientFunds()
	metrics.OrdersPlaced.WithLabelValues(string(order.Side), pair.Algorithm).Inc()
	helpers.Logger.Infoln(fmt.Sprintf("Created %s order for %s ($%.2f USD @ $%.2f).",
		order.Side, pair.Algorithm, order.Usd, finalPrice))
	return nil
}
