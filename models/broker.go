package models

import (
	"errors"
	"fmt"
	"time"
)

// Broker-side order statuses this engine cares about.
const (
	BrokerStatusOpen   = "OPEN"
	BrokerStatusFilled = "FILLED"
)

// BrokerOrder is the broker's view of a submitted order.
type BrokerOrder struct {
	OrderID            string
	Status             string
	AverageFilledPrice float64
	TotalFees          float64
	FilledValue        float64
	LastFillTime       time.Time
}

// BrokerError is a rejection the broker reported. Transport failures
// stay plain errors; rejections carry the broker's error code so
// callers can tell "retry next tick" from "won't succeed until
// conditions change".
type BrokerError struct {
	Code    string
	Message string
}

func (e *BrokerError) Error() string {
	return fmt.Sprintf("broker rejected request: %s (%s)", e.Code, e.Message)
}

const BrokerCodeInsufficientFund = "INSUFFICIENT_FUND"

// IsInsufficientFunds reports whether an error is the broker turning
// down an order for lack of funds.
func IsInsufficientFunds(err error) bool {
	var be *BrokerError
	return errors.As(err, &be) && be.Code == BrokerCodeInsufficientFund
}
