package models

import (
	"encoding/json"
	"fmt"
)

// Timeframe is a named granularity of time-series data. It doubles as the
// cache partition key in the bars store.
type Timeframe string

const (
	TimeframeMonthly Timeframe = "monthly"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeDaily   Timeframe = "daily"
)

// Valid reports whether tf is one of the known timeframes.
func (tf Timeframe) Valid() bool {
	switch tf {
	case TimeframeMonthly, TimeframeWeekly, TimeframeDaily:
		return true
	}
	return false
}

// Bar is a single OHLC tuple. On the wire it is the positional array
// [t, o, h, l, c]; t is a date string for daily bars and a numeric month
// key (e.g. 202401) for monthly bars, so it is normalized to a string.
type Bar struct {
	Time  string
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// UnmarshalJSON decodes the positional [t, o, h, l, c] form.
func (b *Bar) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("bar is not an array: %w", err)
	}
	if len(raw) < 5 {
		return fmt.Errorf("bar has %d elements, want 5", len(raw))
	}

	t, err := decodeTimeKey(raw[0])
	if err != nil {
		return err
	}
	b.Time = t

	vals := [4]float64{}
	for i := range vals {
		if err := json.Unmarshal(raw[i+1], &vals[i]); err != nil {
			return fmt.Errorf("bar element %d: %w", i+1, err)
		}
	}
	b.Open, b.High, b.Low, b.Close = vals[0], vals[1], vals[2], vals[3]
	return nil
}

// MarshalJSON re-encodes the positional form with the time key as a string.
func (b Bar) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{b.Time, b.Open, b.High, b.Low, b.Close})
}

// MAPoint is one moving-average sample: [t, value]. Value is nil where the
// backend has no average for that period (leading window).
type MAPoint struct {
	Time  string
	Value *float64
}

// UnmarshalJSON decodes the positional [t, value|null] form.
func (p *MAPoint) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ma point is not an array: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("ma point has %d elements, want 2", len(raw))
	}
	t, err := decodeTimeKey(raw[0])
	if err != nil {
		return err
	}
	p.Time = t
	return json.Unmarshal(raw[1], &p.Value)
}

// MarshalJSON re-encodes the positional form.
func (p MAPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Time, p.Value})
}

// MovingAverages holds the backend-computed MA series for one ticker.
type MovingAverages struct {
	MA7  []MAPoint `json:"ma7"`
	MA20 []MAPoint `json:"ma20"`
	MA60 []MAPoint `json:"ma60"`
}

// Box is a consolidation range detected on monthly bars.
type Box struct {
	StartIndex int     `json:"startIndex"`
	EndIndex   int     `json:"endIndex"`
	StartTime  int64   `json:"startTime"`
	EndTime    int64   `json:"endTime"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Breakout   *string `json:"breakout"` // "up", "down", or nil while inside the box
}

// BarPayload is the full per-ticker chart payload returned by a batch fetch.
// Entries replace each other wholesale on refetch; they are never merged.
type BarPayload struct {
	Bars  []Bar          `json:"bars"`
	MA    MovingAverages `json:"ma"`
	Boxes []Box          `json:"boxes"`
}

// decodeTimeKey accepts either a JSON string or a JSON number and returns
// the normalized string form.
func decodeTimeKey(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("time key %s is neither string nor number", string(raw))
}
