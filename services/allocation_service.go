package services

import (
	"fmt"
	"strings"
	"sync"

	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/helpers"
	"gitlab.com/ghwlabs/gotradebot/models"
)

// AllocationService enforces per-strategy capital pools at buy
// admission time. Already-open positions are never closed
// retroactively when a pool shrinks.
type AllocationService struct {
	ctx    *core.Context
	wallet *WalletService

	// Serializes concurrent approval requests so two buys cannot both
	// pass against the same remaining headroom.
	mtx sync.Mutex
}

func NewAllocationService(ctx *core.Context, wallet *WalletService) *AllocationService {
	return &AllocationService{ctx: ctx, wallet: wallet}
}

// CheckAllocation reports whether a strategy may commit another usd
// dollars. The algorithm tag may carry a sub-tag suffix ("Spread-Low")
// which shares the parent pool. When the request is for a pair already
// in the book, the caller holds that pair's lock and passes it as
// requesting; it is counted from the request itself rather than
// re-locked.
func (as *AllocationService) CheckAllocation(algorithm string, usd float64, requesting *models.OrderPair) bool {
	as.mtx.Lock()
	defer as.mtx.Unlock()

	tag := strings.SplitN(algorithm, "-", 2)[0]
	fraction, ok := as.ctx.Settings.Allocations[tag]
	if !ok {
		helpers.Logger.Warnln(fmt.Sprintf("No allocation configured for %s.", tag))
		return false
	}

	wallet, err := as.wallet.Get()
	if err != nil {
		return false
	}

	committedAll, committedTag := as.committed(tag, requesting)
	if requesting != nil {
		if tag != "HODL" {
			committedAll += usd
		}
		committedTag += usd
	}

	// Total capital: immediately available USD plus USD already
	// committed to open non-HODL positions.
	total := wallet.UsdAvailable + committedAll

	if fraction*total-committedTag < usd {
		return false
	}
	if wallet.UsdAvailable < usd {
		return false
	}
	return true
}

// committed sums buy-leg USD of open positions, for all strategies
// (HODL excluded from the capital base) and for the requesting tag.
// skip is never locked; its lock belongs to the caller.
func (as *AllocationService) committed(tag string, skip *models.OrderPair) (float64, float64) {
	var committedAll, committedTag float64
	for _, pair := range as.ctx.OrderBook.Snapshot() {
		if pair == skip {
			continue
		}
		pair.Mtx.Lock()
		settled := pair.Settled()
		usd := pair.Buy.Usd
		algorithm := pair.Algorithm
		pair.Mtx.Unlock()

		if settled {
			continue
		}
		pairTag := strings.SplitN(algorithm, "-", 2)[0]
		if pairTag != "HODL" {
			committedAll += usd
		}
		if pairTag == tag {
			committedTag += usd
		}
	}
	return committedAll, committedTag
}
