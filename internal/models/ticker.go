package models

import (
	"encoding/json"
	"fmt"
)

// TickerEntry is one row of the screener universe. The list endpoint returns
// positional rows [code, name, stage|null, score|null, ...]; trailing
// elements beyond the fourth are ignored.
type TickerEntry struct {
	Code  string
	Name  string
	Stage string
	Score *float64
}

// UnmarshalJSON decodes the positional row form.
func (e *TickerEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ticker row is not an array: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("ticker row has %d elements, want at least 2", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Code); err != nil {
		return fmt.Errorf("ticker code: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Name); err != nil {
		return fmt.Errorf("ticker name: %w", err)
	}
	e.Stage = ""
	if len(raw) > 2 {
		var stage *string
		if err := json.Unmarshal(raw[2], &stage); err != nil {
			return fmt.Errorf("ticker stage: %w", err)
		}
		if stage != nil {
			e.Stage = *stage
		}
	}
	e.Score = nil
	if len(raw) > 3 {
		if err := json.Unmarshal(raw[3], &e.Score); err != nil {
			return fmt.Errorf("ticker score: %w", err)
		}
	}
	return nil
}

// MarshalJSON emits the object form consumed by the views.
func (e TickerEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"code":  e.Code,
		"name":  e.Name,
		"stage": e.Stage,
		"score": e.Score,
	})
}

// Favorite is one entry of the user's favorites list.
type Favorite struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// HealthReport is the body of the backend health endpoint. Every field is
// optional; when Ready is absent readiness is inferred from the HTTP status.
type HealthReport struct {
	Ready   *bool    `json:"ready"`
	Phase   string   `json:"phase"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}
