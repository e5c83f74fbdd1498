// Package coinbase implements the broker surface against the Coinbase
// Advanced Trade REST API.
package coinbase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"gitlab.com/ghwlabs/gotradebot/models"
)

type CoinbaseService struct {
	baseUrl string
	apiKey  string
	client  *http.Client
}

func NewCoinbaseService(baseUrl string, apiKey string) *CoinbaseService {
	return &CoinbaseService{
		baseUrl: baseUrl,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (cs *CoinbaseService) GetBestBidAsk(product string) (float64, float64, error) {
	body, err := cs.do(http.MethodGet, "/best_bid_ask?product_ids="+product, nil)
	if err != nil {
		return 0, 0, err
	}

	book := gjson.GetBytes(body, "pricebooks.0")
	if !book.Exists() {
		return 0, 0, fmt.Errorf("no pricebook for %s", product)
	}
	bid := book.Get("bids.0.price").Float()
	ask := book.Get("asks.0.price").Float()
	if bid <= 0 || ask <= 0 {
		return 0, 0, fmt.Errorf("empty book for %s", product)
	}
	return bid, ask, nil
}

func (cs *CoinbaseService) GetOrder(orderID string) (*models.BrokerOrder, error) {
	body, err := cs.do(http.MethodGet, "/orders/historical/"+orderID, nil)
	if err != nil {
		return nil, err
	}

	order := gjson.GetBytes(body, "order")
	if !order.Exists() {
		return nil, fmt.Errorf("order %s not found", orderID)
	}

	ret := &models.BrokerOrder{
		OrderID:            order.Get("order_id").String(),
		Status:             order.Get("status").String(),
		AverageFilledPrice: order.Get("average_filled_price").Float(),
		TotalFees:          order.Get("total_fees").Float(),
		FilledValue:        order.Get("filled_value").Float(),
	}
	if fillTime := order.Get("last_fill_time").String(); fillTime != "" {
		if t, err := time.Parse(time.RFC3339, fillTime); err == nil {
			ret.LastFillTime = t
		}
	}
	return ret, nil
}

func (cs *CoinbaseService) LimitOrderGtcBuy(clientOrderID string, product string, baseSize string, limitPrice string) (string, error) {
	return cs.limitOrderGtc("BUY", clientOrderID, product, baseSize, limitPrice)
}

func (cs *CoinbaseService) LimitOrderGtcSell(clientOrderID string, product string, baseSize string, limitPrice string) (string, error) {
	return cs.limitOrderGtc("SELL", clientOrderID, product, baseSize, limitPrice)
}

func (cs *CoinbaseService) limitOrderGtc(side string, clientOrderID string, product string, baseSize string, limitPrice string) (string, error) {
	request := map[string]interface{}{
		"client_order_id": clientOrderID,
		"product_id":      product,
		"side":            side,
		"order_configuration": map[string]interface{}{
			"limit_limit_gtc": map[string]string{
				"base_size":   baseSize,
				"limit_price": limitPrice,
			},
		},
	}

	body, err := cs.do(http.MethodPost, "/orders", request)
	if err != nil {
		return "", err
	}

	result := gjson.ParseBytes(body)
	if !result.Get("success").Bool() {
		return "", &models.BrokerError{
			Code:    result.Get("error_response.error").String(),
			Message: result.Get("error_response.message").String(),
		}
	}
	return result.Get("success_response.order_id").String(), nil
}

func (cs *CoinbaseService) CancelOrders(orderIDs []string) ([]bool, error) {
	request := map[string]interface{}{"order_ids": orderIDs}
	body, err := cs.do(http.MethodPost, "/orders/batch_cancel", request)
	if err != nil {
		return nil, err
	}

	results := gjson.GetBytes(body, "results").Array()
	ok := make([]bool, len(results))
	for i, result := range results {
		ok[i] = result.Get("success").Bool()
	}
	return ok, nil
}

func (cs *CoinbaseService) GetAccounts() (*models.Wallet, error) {
	body, err := cs.do(http.MethodGet, "/accounts", nil)
	if err != nil {
		return nil, err
	}

	wallet := &models.Wallet{}
	for _, account := range gjson.GetBytes(body, "accounts").Array() {
		switch account.Get("currency").String() {
		case "BTC":
			wallet.BtcHold += account.Get("hold.value").Float()
			wallet.BtcAvailable += account.Get("available_balance.value").Float()
		case "USD":
			wallet.UsdHold += account.Get("hold.value").Float()
			wallet.UsdAvailable += account.Get("available_balance.value").Float()
		}
	}
	return wallet, nil
}

func (cs *CoinbaseService) do(method string, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, cs.baseUrl+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if cs.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+cs.apiKey)
	}

	resp, err := cs.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	return body, nil
}
