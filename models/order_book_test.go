package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testPair(algorithm string, buyStatus OrderStatus) *OrderPair {
	buy := NewOrder(SideBuy, 0.01, 499.25)
	buy.Status = buyStatus
	sell := NewOrder(SideSell, 0.01, 500.75)
	return NewOrderPair(algorithm, buy, sell)
}

func TestOrderBookPersistence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "orderbook.json")

	book := NewOrderBook(file)
	assert.NoError(t, book.ReadFs())
	assert.Equal(t, 0, book.Len())

	book.Append(testPair("Spread-Low", OrderActive))
	book.Append(testPair("HODL", OrderPending))

	reloaded := NewOrderBook(file)
	assert.NoError(t, reloaded.ReadFs())
	assert.Equal(t, 2, reloaded.Len())

	pairs := reloaded.Snapshot()
	assert.Equal(t, "Spread-Low", pairs[0].Algorithm)
	assert.Equal(t, PairActive, pairs[0].Status)
	assert.Equal(t, "HODL", pairs[1].Algorithm)
	assert.Equal(t, PairPending, pairs[1].Status)
}

func TestOrderBookSkipsBadRecords(t *testing.T) {
	file := filepath.Join(t.TempDir(), "orderbook.json")
	raw := `[{"status":"Pending","algorithm":"Spread-Low","buy":{"type":"Buy","status":"Pending","btc":0.01,"usd":499.25},"sell":{"type":"Sell","status":"Pending","btc":0.01,"usd":500.75}},{"algorithm":"broken"}]`
	assert.NoError(t, os.WriteFile(file, []byte(raw), 0644))

	book := NewOrderBook(file)
	assert.NoError(t, book.ReadFs())
	assert.Equal(t, 1, book.Len())
	assert.Equal(t, "Spread-Low", book.Snapshot()[0].Algorithm)
}

func TestOrderBookCleanupRetiresSettledPairs(t *testing.T) {
	dir := t.TempDir()
	book := NewOrderBook(filepath.Join(dir, "orderbook.json"))
	history := NewOrderHistory(filepath.Join(dir, "history.json"))

	open := testPair("Spread-Low", OrderActive)
	done := testPair("Spread-Mid", OrderComplete)
	done.Sell.Status = OrderComplete
	done.RefreshStatus()
	canceled := testPair("AllIn", OrderCanceled)

	book.Append(open)
	book.Append(done)
	book.Append(canceled)

	retired := book.Cleanup(history)
	assert.Len(t, retired, 2)
	assert.Equal(t, 1, book.Len())
	assert.Equal(t, "Spread-Low", book.Snapshot()[0].Algorithm)
	assert.Len(t, history.Snapshot(), 2)
}

func TestOrderHistoryPruneBefore(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history.json")
	history := NewOrderHistory(file)

	old := testPair("Spread-Low", OrderComplete)
	old.EventTime = NewTimestamp(time.Now().AddDate(0, -2, 0))
	recent := testPair("Spread-Mid", OrderComplete)
	history.Append(old, recent)

	cutoff := time.Now().AddDate(0, -1, 0)
	assert.Equal(t, 1, history.PruneBefore(cutoff))
	assert.Len(t, history.Snapshot(), 1)
	assert.Equal(t, "Spread-Mid", history.Snapshot()[0].Algorithm)

	// Already pruned, nothing more to remove
	assert.Equal(t, 0, history.PruneBefore(cutoff))

	reloaded := NewOrderHistory(file)
	assert.NoError(t, reloaded.ReadFs())
	assert.Len(t, reloaded.Snapshot(), 1)
}
