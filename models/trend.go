package models

// Trend labels the price direction over one lookback window.
type Trend string

const (
	TrendUnknown Trend = "Unknown"
	TrendWaxing  Trend = "Waxing"
	TrendWaning  Trend = "Waning"
	TrendPlateau Trend = "Plateau"
)

// TrendSnapshot holds one label per configured window, keyed by
// window name. Windows are classified independently and may disagree.
type TrendSnapshot map[string]Trend

// Of returns the label for a window, Unknown when absent.
func (s TrendSnapshot) Of(window string) Trend {
	if s == nil {
		return TrendUnknown
	}
	if t, ok := s[window]; ok {
		return t
	}
	return TrendUnknown
}

// Clone returns an independent copy safe to hand across goroutines.
func (s TrendSnapshot) Clone() TrendSnapshot {
	out := make(TrendSnapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// TrendSample is one retained (timestamp, smoothed price) observation.
type TrendSample struct {
	Timestamp Timestamp `json:"timestamp"`
	Price     float64   `json:"price"`
}
