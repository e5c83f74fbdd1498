package models

import "sync"

// PairStatus is the derived lifecycle state of a paired wager.
type PairStatus string

const (
	// Buy waiting for a trigger.
	PairOnHold PairStatus = "OnHold"
	// Buy not filed with the broker yet.
	PairPending PairStatus = "Pending"
	// Buy order open.
	PairActive PairStatus = "Active"
	// Bought, sale waiting for a trigger.
	PairOnHoldSell PairStatus = "OnHoldSell"
	// Bought, sale not filed with the broker yet.
	PairPendingSell PairStatus = "PendingSell"
	// Bought, sale open.
	PairActiveSell PairStatus = "ActiveSell"
	// All transactions complete.
	PairComplete PairStatus = "Complete"
	// At least one leg was canceled.
	PairCanceled PairStatus = "Canceled"
)

// OrderPair is a buy leg and its eventual matching sell leg, tracked
// as one wager. Status is never set directly after construction; it is
// recomputed from the legs via RefreshStatus. Mutating a leg requires
// holding Mtx first.
type OrderPair struct {
	Mtx sync.Mutex `json:"-"`

	Status     PairStatus `json:"status"`
	Algorithm  string     `json:"algorithm"`
	EventTime  Timestamp  `json:"event_time"`
	EventPrice float64    `json:"event_price"`
	BuyOnly    bool       `json:"buy_only"`
	Buy        *Order     `json:"buy"`
	Sell       *Order     `json:"sell"`
}

func NewOrderPair(algorithm string, buy *Order, sell *Order) *OrderPair {
	p := &OrderPair{
		Algorithm: algorithm,
		EventTime: Now(),
		Buy:       buy,
		Sell:      sell,
	}
	p.RefreshStatus()
	return p
}

// DerivePairStatus is the pure mapping from leg states to pair state.
// While the buy is not complete the pair mirrors the buy; afterwards
// it mirrors the sell in the *Sell progression. A completed buy with
// no sell leg holds the sale phase unless the pair is buy-only.
func DerivePairStatus(buy OrderStatus, sell OrderStatus, hasSell bool, buyOnly bool) PairStatus {
	switch buy {
	case OrderOnHold:
		return PairOnHold
	case OrderPending:
		return PairPending
	case OrderActive:
		return PairActive
	case OrderCanceled:
		return PairCanceled
	case OrderComplete:
		if buyOnly {
			return PairComplete
		}
		if !hasSell {
			return PairOnHoldSell
		}
		switch sell {
		case OrderOnHold:
			return PairOnHoldSell
		case OrderPending:
			return PairPendingSell
		case OrderActive:
			return PairActiveSell
		case OrderComplete:
			return PairComplete
		case OrderCanceled:
			return PairCanceled
		}
	}
	return PairPending
}

// RefreshStatus recomputes the derived status. Callers mutating legs
// must call this before releasing the pair lock.
func (p *OrderPair) RefreshStatus() {
	var sell OrderStatus
	if p.Sell != nil {
		sell = p.Sell.Status
	}
	p.Status = DerivePairStatus(p.Buy.Status, sell, p.Sell != nil, p.BuyOnly)
}

// Settled reports whether the pair has reached a terminal state.
func (p *OrderPair) Settled() bool {
	return p.Status == PairComplete || p.Status == PairCanceled
}

// Bought reports whether the wager currently holds inventory.
func (p *OrderPair) Bought() bool {
	return p.Status == PairOnHoldSell || p.Status == PairPendingSell || p.Status == PairActiveSell
}
