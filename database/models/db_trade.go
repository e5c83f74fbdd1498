package database

import "gorm.io/gorm"

// Trade is one settled wager as recorded for later analysis.
type Trade struct {
	gorm.Model
	Algorithm  string
	Status     string
	EventTime  int64
	EventPrice float64
	BuyOnly    bool
	Orders     []TradeOrder `gorm:"foreignKey:TradeID"`
}

// TradeOrder is one leg of a recorded trade.
type TradeOrder struct {
	gorm.Model
	TradeID       uint
	Side          string
	Status        string
	Btc           float64
	Usd           float64
	OrderID       string
	ClientOrderID string
	FinalMarket   float64
	FinalFees     float64
	FinalUsd      float64
	CancelReason  string
}
