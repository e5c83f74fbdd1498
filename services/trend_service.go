package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/helpers"
	"gitlab.com/ghwlabs/gotradebot/models"
)

// TrendService classifies price direction over every configured
// lookback window from one retained, time-trimmed sequence of
// smoothed-price samples.
type TrendService struct {
	ctx *core.Context

	samples []models.TrendSample
}

func NewTrendService(ctx *core.Context) *TrendService {
	return &TrendService{ctx: ctx}
}

func (ts *TrendService) Name() string {
	return "trend"
}

func (ts *TrendService) Interval() time.Duration {
	return ts.ctx.Settings.TrendInterval
}

func (ts *TrendService) Init() error {
	raw, err := os.ReadFile(ts.ctx.Settings.TrendFile)
	if os.IsNotExist(err) {
		helpers.Logger.Infoln("No trend data.")
		return nil
	}
	if err != nil {
		return err
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to read trend data: %v", err))
		return nil
	}
	for _, record := range records {
		var sample models.TrendSample
		if err := json.Unmarshal(record, &sample); err != nil || sample.Timestamp.IsZero() {
			continue
		}
		ts.samples = append(ts.samples, sample)
	}
	ts.trim(time.Now())

	helpers.Logger.Infoln(fmt.Sprintf("Read %d trend samples.", len(ts.samples)))
	return nil
}

func (ts *TrendService) Tick() {
	smooth := ts.ctx.SmoothMarket()
	if smooth.Updated.IsZero() {
		return
	}
	// No new smoothed sample since last tick
	if len(ts.samples) > 0 && !ts.samples[len(ts.samples)-1].Timestamp.Before(smooth.Updated) {
		return
	}

	now := time.Now()
	ts.samples = append(ts.samples, models.TrendSample{
		Timestamp: models.NewTimestamp(smooth.Updated),
		Price:     smooth.Split,
	})
	ts.trim(now)
	ts.writeFs()

	if len(ts.samples) < 2 {
		return
	}

	snapshot := models.TrendSnapshot{}
	for _, window := range ts.ctx.Settings.TrendWindows {
		snapshot[window.Name] = ts.classify(window.Lookback, window.MinDelta, now)
	}
	ts.ctx.SetTrend(snapshot)

	var labels []string
	for _, window := range ts.ctx.Settings.TrendWindows {
		labels = append(labels, string(snapshot[window.Name]))
	}
	helpers.Logger.Traceln(fmt.Sprintf("Trend: [ %s ]", strings.Join(labels, " | ")))
}

// classify compares the newest sample with the oldest retained sample
// at least lookback old. Unknown until the history reaches that far.
func (ts *TrendService) classify(lookback time.Duration, minDelta float64, now time.Time) models.Trend {
	boundary := now.Add(-lookback)

	index := -1
	for i, sample := range ts.samples {
		if sample.Timestamp.Before(boundary) {
			index = i
		} else {
			break
		}
	}
	if index < 0 {
		return models.TrendUnknown
	}

	before := ts.samples[index].Price
	after := ts.samples[len(ts.samples)-1].Price
	switch {
	case after-before < minDelta && before-after < minDelta:
		return models.TrendPlateau
	case after > before:
		return models.TrendWaxing
	case after < before:
		return models.TrendWaning
	}
	return models.TrendUnknown
}

// trim drops samples older than the largest configured window.
func (ts *TrendService) trim(now time.Time) {
	boundary := now.Add(-ts.ctx.Settings.LargestWindow())
	cut := 0
	for cut < len(ts.samples)-1 && ts.samples[cut+1].Timestamp.Before(boundary) {
		cut++
	}
	if cut > 0 {
		ts.samples = append([]models.TrendSample(nil), ts.samples[cut:]...)
	}
}

func (ts *TrendService) writeFs() {
	data, err := json.Marshal(ts.samples)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to serialize trend samples: %v", err))
		return
	}
	file := ts.ctx.Settings.TrendFile
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return
	}
	if err := os.WriteFile(file, data, 0644); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to write trend samples: %v", err))
	}
}
