package interfaces

import (
	"gitlab.com/ghwlabs/gotradebot/models"
)

// Broker is the order API surface the engine drives. Implementations
// return *models.BrokerError for explicit rejections and plain errors
// for transport failures.
type Broker interface {
	GetBestBidAsk(product string) (bid float64, ask float64, err error)
	GetOrder(orderID string) (*models.BrokerOrder, error)
	LimitOrderGtcBuy(clientOrderID string, product string, baseSize string, limitPrice string) (orderID string, err error)
	LimitOrderGtcSell(clientOrderID string, product string, baseSize string, limitPrice string) (orderID string, err error)
	CancelOrders(orderIDs []string) ([]bool, error)
	GetAccounts() (*models.Wallet, error)
}
