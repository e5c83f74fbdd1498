package services

import (
	"fmt"

	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/helpers"
	"gitlab.com/ghwlabs/gotradebot/models"
)

// WalletService fetches balance snapshots. Snapshots are never cached;
// every decision pass sees the broker's current view.
type WalletService struct {
	ctx *core.Context
}

func NewWalletService(ctx *core.Context) *WalletService {
	return &WalletService{ctx: ctx}
}

func (ws *WalletService) Get() (*models.Wallet, error) {
	wallet, err := ws.ctx.Broker.GetAccounts()
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to get wallet: %v", err))
		return nil, err
	}
	return wallet, nil
}
