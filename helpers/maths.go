package helpers

import (
	"github.com/shopspring/decimal"
)

// FloorUsd truncates a dollar amount to whole cents.
func FloorUsd(value float64) float64 {
	f, _ := decimal.NewFromFloat(value).RoundFloor(2).Float64()
	return f
}

// CeilUsd rounds a dollar amount up to whole cents.
func CeilUsd(value float64) float64 {
	f, _ := decimal.NewFromFloat(value).RoundCeil(2).Float64()
	return f
}

// FloorBtc truncates a BTC amount to 8 decimals, the smallest
// increment the broker accepts.
func FloorBtc(value float64) float64 {
	f, _ := decimal.NewFromFloat(value).RoundFloor(8).Float64()
	return f
}

// FormatUsd renders a limit price the way the order endpoints want it.
func FormatUsd(value float64) string {
	return decimal.NewFromFloat(value).RoundFloor(2).StringFixed(2)
}

// FormatBtc renders a base size with the full 8 decimals.
func FormatBtc(value float64) string {
	return decimal.NewFromFloat(value).RoundFloor(8).StringFixed(8)
}
