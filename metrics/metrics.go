// Package metrics exposes the engine's Prometheus metrics, served at
// /metrics when a listen address is configured.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/ghwlabs/gotradebot/helpers"
)

var (
	OrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_placed_total",
			Help: "Limit orders submitted to the broker",
		},
		[]string{"side", "algorithm"},
	)

	OrdersFilled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_filled_total",
			Help: "Fills observed",
		},
		[]string{"side", "algorithm"},
	)

	OrdersCanceled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_canceled_total",
			Help: "Cancels by reason",
		},
		[]string{"reason"},
	)

	PairsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_pairs_open",
			Help: "Wagers currently tracked in the order book",
		},
	)

	MarketPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bot_market_usd",
			Help: "Raw and smoothed market prices",
		},
		[]string{"series"},
	)

	MoodChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_mood_changes_total",
			Help: "Committed spread-trader mood transitions",
		},
		[]string{"mood"},
	)
)

func init() {
	prometheus.MustRegister(
		OrdersPlaced,
		OrdersFilled,
		OrdersCanceled,
		PairsOpen,
		MarketPrice,
		MoodChanges,
	)
}

// Serve starts the metrics endpoint. Failures are logged, never fatal.
func Serve(addr string) {
	if addr == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			helpers.Logger.Errorln("Metrics server stopped: " + err.Error())
		}
	}()
}
