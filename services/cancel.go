package services

import (
	"fmt"

	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/helpers"
	"gitlab.com/ghwlabs/gotradebot/metrics"
	"gitlab.com/ghwlabs/gotradebot/models"
)

// CancelOrder cancels a single leg. Legs not yet registered with the
// broker are canceled locally. Returns true when the leg ends up
// canceled. Caller must hold the pair lock.
func CancelOrder(ctx *core.Context, algorithm string, order *models.Order, reason string) bool {
	if order.Status == models.OrderComplete {
		return false
	}
	if order.Status == models.OrderCanceled {
		return true
	}
	if order.Status == models.OrderPending || order.Status == models.OrderOnHold {
		order.Status = models.OrderCanceled
		if order.Info != nil {
			order.Info.CancelTime = models.Now()
			order.Info.CancelReason = reason
		}
		metrics.OrdersCanceled.WithLabelValues(reason).Inc()
		return true
	}

	if order.Info == nil {
		// Active without submission info is a programming error; treat
		// the leg as dead rather than crash the engine.
		helpers.Logger.Errorln(fmt.Sprintf("Active %s for %s has no order info.", order.Side, algorithm))
		order.Status = models.OrderCanceled
		return true
	}

	results, err := ctx.Broker.CancelOrders([]string{order.Info.OrderID})
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to cancel $%.2f %s for %s (%s): %v",
			order.Usd, order.Side, algorithm, reason, err))
		return false
	}
	if len(results) == 0 || !results[0] {
		return false
	}

	order.Status = models.OrderCanceled
	order.Info.FinalTime = models.Now()
	order.Info.CancelTime = models.Now()
	order.Info.CancelReason = reason
	metrics.OrdersCanceled.WithLabelValues(reason).Inc()
	helpers.Logger.Infoln(fmt.Sprintf("Canceled $%.2f %s for %s: %s",
		order.Usd, order.Side, algorithm, reason))
	return true
}
