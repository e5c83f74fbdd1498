package models

// Side defines which leg of a wager an order is.
type Side string

// OrderStatus is the lifecycle state of a single order leg.
type OrderStatus string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"

	// Waiting for a strategy trigger before it may be submitted.
	OrderOnHold OrderStatus = "OnHold"
	// Eligible for submission to the broker.
	OrderPending OrderStatus = "Pending"
	// Resting on the broker's book.
	OrderActive OrderStatus = "Active"
	OrderComplete OrderStatus = "Complete"
	OrderCanceled OrderStatus = "Canceled"
)

// OrderInfo exists once an order has been submitted. Final* fields are
// filled in when the order completes or is canceled.
type OrderInfo struct {
	OrderID       string    `json:"order_id"`
	ClientOrderID string    `json:"client_order_id"`
	OrderTime     Timestamp `json:"order_time"`
	// Limit price the order was submitted at.
	OrderMarket  float64   `json:"order_market"`
	FinalTime    Timestamp `json:"final_time"`
	FinalMarket  float64   `json:"final_market"`
	FinalFees    float64   `json:"final_fees"`
	FinalUsd     float64   `json:"final_usd"`
	CancelTime   Timestamp `json:"cancel_time"`
	CancelReason string    `json:"cancel_reason"`
}

func NewOrderInfo(orderID string, clientOrderID string, orderTime Timestamp, orderMarket float64) *OrderInfo {
	return &OrderInfo{
		OrderID:       orderID,
		ClientOrderID: clientOrderID,
		OrderTime:     orderTime,
		OrderMarket:   orderMarket,
	}
}

// Order is one leg of an OrderPair. Usd/Btc is the intended unit
// price; Info.FinalMarket is the actual fill price once Complete.
type Order struct {
	Side   Side        `json:"type"`
	Status OrderStatus `json:"status"`
	Btc    float64     `json:"btc"`
	Usd    float64     `json:"usd"`
	Info   *OrderInfo  `json:"info"`

	// Suppresses repeated rejection logging until state changes.
	insufficientFunds bool
}

func NewOrder(side Side, btc float64, usd float64) *Order {
	return &Order{
		Side:   side,
		Status: OrderPending,
		Btc:    btc,
		Usd:    usd,
	}
}

// LimitPrice is the intended unit price of the order.
func (o *Order) LimitPrice() float64 {
	if o.Btc == 0 {
		return 0
	}
	return o.Usd / o.Btc
}

// Terminal reports whether the order can no longer change state.
func (o *Order) Terminal() bool {
	return o.Status == OrderComplete || o.Status == OrderCanceled
}

// FlagInsufficientFunds marks the rejection and reports whether it was
// already flagged.
func (o *Order) FlagInsufficientFunds() bool {
	was := o.insufficientFunds
	o.insufficientFunds = true
	return was
}

func (o *Order) ClearInsufficientFunds() {
	o.insufficientFunds = false
}
