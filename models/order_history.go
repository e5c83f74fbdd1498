package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gitlab.com/ghwlabs/gotradebot/helpers"
)

// OrderHistory is the append-only record of settled wagers, same
// schema as the order book file.
type OrderHistory struct {
	file string

	mtx   sync.RWMutex
	pairs []*OrderPair
}

func NewOrderHistory(file string) *OrderHistory {
	return &OrderHistory{file: file}
}

func (h *OrderHistory) ReadFs() error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	raw, err := os.ReadFile(h.file)
	if os.IsNotExist(err) {
		helpers.Logger.Infoln("No historical data.")
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
			helpers.Logger.Errorln(fmt.Sprintf("Skipping bad history record: %v", err))
			continue
		}
		h.pairs = append(h.pairs, &pair)
	}

	helpers.Logger.Infoln(fmt.Sprintf("Read %d historical pairs.", len(h.pairs)))
	return nil
}

func (h *OrderHistory) WriteFs() {
	h.mtx.RLock()
	defer h.mtx.RUnlock()

	data, err := json.Marshal(h.pairs)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to serialize history: %v", err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(h.file), 0755); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to create data dir: %v", err))
		return
	}
	if err := os.WriteFile(h.file, data, 0644); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to write history: %v", err))
	}
}

func (h *OrderHistory) Append(pairs ...*OrderPair) {
	h.mtx.Lock()
	h.pairs = append(h.pairs, pairs...)
	h.mtx.Unlock()
	h.WriteFs()
}

// Snapshot returns the recorded pairs, oldest first.
func (h *OrderHistory) Snapshot() []*OrderPair {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	pairs := make([]*OrderPair, len(h.pairs))
	copy(pairs, h.pairs)
	return pairs
}

// PruneBefore drops records older than the cutoff and persists the
// file. Returns how many were removed.
func (h *OrderHistory) PruneBefore(cutoff time.Time) int {
	h.mtx.Lock()
	kept := h.pairs[:0]
	removed := 0
	for _, pair := range h.pairs {
		if pair.EventTime.Before(cutoff) {
			removed++
		} else {
			kept = append(kept, pair)
		}
	}
	h.pairs = kept
	h.mtx.Unlock()

	if removed > 0 {
		h.WriteFs()
	}
	return removed
}
