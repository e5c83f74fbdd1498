package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gitlab.com/ghwlabs/gotradebot/helpers"
)

// OrderBook is the authoritative in-memory collection of open wagers,
// persisted as a JSON array. The collection mutex guards structural
// operations only; leg mutation is guarded by each pair's own lock.
type OrderBook struct {
	file string

	mtx   sync.RWMutex
	pairs []*OrderPair
}

func NewOrderBook(file string) *OrderBook {
	return &OrderBook{file: file}
}

// ReadFs loads persisted pairs. Records that fail to deserialize are
// skipped so one bad entry cannot take the whole book down.
func (ob *OrderBook) ReadFs() error {
	ob.mtx.Lock()
	defer ob.mtx.Unlock()

	raw, err := os.ReadFile(ob.file)
	if os.IsNotExist(err) {
		helpers.Logger.Infoln("No orderbook data.")
		return nil
	}
	if err != nil {
		return err
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return err
	}

	for _, record := range records {
		var pair OrderPair
		if err := json.Unmarshal(record, &pair); err != nil || pair.Buy == nil {
			helpers.Logger.Errorln(fmt.Sprintf("Skipping bad orderbook record: %v", err))
			continue
		}
		pair.RefreshStatus()
		ob.pairs = append(ob.pairs, &pair)
	}

	helpers.Logger.Infoln(fmt.Sprintf("Read %d orderbook pairs.", len(ob.pairs)))
	return nil
}

// WriteFs rewrites the book in full. Each pair is serialized under its
// own lock so the snapshot on disk is internally consistent.
func (ob *OrderBook) WriteFs() {
	ob.mtx.RLock()
	pairs := make([]*OrderPair, len(ob.pairs))
	copy(pairs, ob.pairs)
	ob.mtx.RUnlock()

	records := make([]json.RawMessage, 0, len(pairs))
	for _, pair := range pairs {
		pair.Mtx.Lock()
		record, err := json.Marshal(pair)
		pair.Mtx.Unlock()
		if err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("Failed to serialize %s pair: %v", pair.Algorithm, err))
			continue
		}
		records = append(records, record)
	}

	data, err := json.Marshal(records)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to serialize orderbook: %v", err))
		return
	}

	if err := os.MkdirAll(filepath.Dir(ob.file), 0755); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to create data dir: %v", err))
		return
	}
	if err := os.WriteFile(ob.file, data, 0644); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to write orderbook: %v", err))
	}
}

// Append adds a new wager and persists the book.
func (ob *OrderBook) Append(pair *OrderPair) {
	ob.mtx.Lock()
	ob.pairs = append(ob.pairs, pair)
	ob.mtx.Unlock()
	ob.WriteFs()
}

// Snapshot returns the current pair references. Callers must take each
// pair's lock before touching its legs.
func (ob *OrderBook) Snapshot() []*OrderPair {
	ob.mtx.RLock()
	defer ob.mtx.RUnlock()
	pairs := make([]*OrderPair, len(ob.pairs))
	copy(pairs, ob.pairs)
	return pairs
}

// Len returns the number of tracked wagers.
func (ob *OrderBook) Len() int {
	ob.mtx.RLock()
	defer ob.mtx.RUnlock()
	return len(ob.pairs)
}

// Cleanup moves Complete/Canceled pairs into history and persists both
// files. Returns the pairs that were retired.
func (ob *OrderBook) Cleanup(history *OrderHistory) []*OrderPair {
	var retired []*OrderPair

	ob.mtx.Lock()
	kept := ob.pairs[:0]
	for _, pair := range ob.pairs {
		pair.Mtx.Lock()
		settled := pair.Settled()
		status := pair.Status
		pair.Mtx.Unlock()
		if settled {
			helpers.Logger.Infoln(fmt.Sprintf("Clearing %s order pair for %s.", status, pair.Algorithm))
			retired = append(retired, pair)
		} else {
			kept = append(kept, pair)
		}
	}
	ob.pairs = kept
	ob.mtx.Unlock()

	if len(retired) > 0 {
		history.Append(retired...)
		ob.WriteFs()
	}
	return retired
}
