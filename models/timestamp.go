package models

import (
	"encoding/json"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// Timestamp marshals to the whole-second layout the data files have
// always used, and to null when unset.
type Timestamp struct {
	time.Time
}

func Now() Timestamp {
	return Timestamp{time.Now()}
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(timestampLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || *raw == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(timestampLayout, *raw, time.Local)
	if err != nil {
		// Tolerate unparseable times the same way a missing one is.
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}
