package coinbase

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"gitlab.com/ghwlabs/gotradebot/models"
)

func TestGetBestBidAsk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/best_bid_ask", r.URL.Path)
		assert.Equal(t, "BTC-USD", r.URL.Query().Get("product_ids"))
		w.Write([]byte(`{"pricebooks":[{"product_id":"BTC-USD","bids":[{"price":"49990.12","size":"0.5"}],"asks":[{"price":"50010.34","size":"0.4"}]}]}`))
	}))
	defer server.Close()

	cs := NewCoinbaseService(server.URL, "test-key")
	bid, ask, err := cs.GetBestBidAsk("BTC-USD")
	assert.NoError(t, err)
	assert.Equal(t, 49990.12, bid)
	assert.Equal(t, 50010.34, ask)
}

func TestGetBestBidAskEmptyBook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pricebooks":[{"product_id":"BTC-USD","bids":[],"asks":[]}]}`))
	}))
	defer server.Close()

	cs := NewCoinbaseService(server.URL, "test-key")
	_, _, err := cs.GetBestBidAsk("BTC-USD")
	assert.Error(t, err)
}

func TestGetOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/historical/order-1", r.URL.Path)
		w.Write([]byte(`{"order":{"order_id":"order-1","status":"FILLED","average_filled_price":"49980.50","total_fees":"1.25","filled_value":"499.81","last_fill_time":"2024-03-01T12:35:00Z"}}`))
	}))
	defer server.Close()

	cs := NewCoinbaseService(server.URL, "test-key")
	order, err := cs.GetOrder("order-1")
	assert.NoError(t, err)
	assert.Equal(t, models.BrokerStatusFilled, order.Status)
	assert.Equal(t, 49980.5, order.AverageFilledPrice)
	assert.Equal(t, 1.25, order.TotalFees)
	assert.Equal(t, 499.81, order.FilledValue)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 35, 0, 0, time.UTC), order.LastFillTime)
}

func TestLimitOrderGtcBuy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var request map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		raw, _ := json.Marshal(request)
		assert.Equal(t, "client-1", gjson.GetBytes(raw, "client_order_id").String())
		assert.Equal(t, "BUY", gjson.GetBytes(raw, "side").String())
		assert.Equal(t, "0.01000000", gjson.GetBytes(raw, "order_configuration.limit_limit_gtc.base_size").String())
		assert.Equal(t, "49980.00", gjson.GetBytes(raw, "order_configuration.limit_limit_gtc.limit_price").String())

		w.Write([]byte(`{"success":true,"success_response":{"order_id":"order-1"}}`))
	}))
	defer server.Close()

	cs := NewCoinbaseService(server.URL, "test-key")
	orderID, err := cs.LimitOrderGtcBuy("client-1", "BTC-USD", "0.01000000", "49980.00")
	assert.NoError(t, err)
	assert.Equal(t, "order-1", orderID)
}

func TestLimitOrderRejectionIsBrokerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error_response":{"error":"INSUFFICIENT_FUND","message":"Insufficient balance in source account"}}`))
	}))
	defer server.Close()

	cs := NewCoinbaseService(server.URL, "test-key")
	_, err := cs.LimitOrderGtcSell("client-1", "BTC-USD", "0.01000000", "50020.00")
	assert.Error(t, err)
	assert.True(t, models.IsInsufficientFunds(err))
}

func TestServerErrorIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cs := NewCoinbaseService(server.URL, "test-key")
	_, err := cs.LimitOrderGtcBuy("client-1", "BTC-USD", "0.01000000", "49980.00")
	assert.Error(t, err)
	assert.False(t, models.IsInsufficientFunds(err))
}

func TestCancelOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/batch_cancel", r.URL.Path)
		w.Write([]byte(`{"results":[{"success":true,"order_id":"order-1"},{"success":false,"order_id":"order-2"}]}`))
	}))
	defer server.Close()

	cs := NewCoinbaseService(server.URL, "test-key")
	results, err := cs.CancelOrders([]string{"order-1", "order-2"})
	assert.NoError(t, err)
	assert.Equal(t, []bool{true, false}, results)
}

func TestGetAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts", r.URL.Path)
		w.Write([]byte(`{"accounts":[
			{"currency":"USD","hold":{"value":"100.50"},"available_balance":{"value":"899.50"}},
			{"currency":"BTC","hold":{"value":"0.01"},"available_balance":{"value":"0.25"}},
			{"currency":"ETH","hold":{"value":"5"},"available_balance":{"value":"5"}}
		]}`))
	}))
	defer server.Close()

	cs := NewCoinbaseService(server.URL, "test-key")
	wallet, err := cs.GetAccounts()
	assert.NoError(t, err)
	assert.Equal(t, 100.5, wallet.UsdHold)
	assert.Equal(t, 899.5, wallet.UsdAvailable)
	assert.Equal(t, 0.01, wallet.BtcHold)
	assert.Equal(t, 0.25, wallet.BtcAvailable)
}
