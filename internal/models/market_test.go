package models

import (
	"encoding/json"
	"testing"
)

func TestTimeframeValid(t *testing.T) {
	for _, tf := range []Timeframe{TimeframeMonthly, TimeframeWeekly, TimeframeDaily} {
		if !tf.Valid() {
			t.Errorf("%q should be valid", tf)
		}
	}
	for _, tf := range []Timeframe{"", "hourly", "Monthly", "yearly"} {
		if tf.Valid() {
			t.Errorf("%q should be invalid", tf)
		}
	}
}

func TestBarUnmarshalStringTime(t *testing.T) {
	var b Bar
	if err := json.Unmarshal([]byte(`["2024-01-15", 100, 110.5, 95, 105]`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.Time != "2024-01-15" {
		t.Errorf("time = %q", b.Time)
	}
	if b.Open != 100 || b.High != 110.5 || b.Low != 95 || b.Close != 105 {
		t.Errorf("ohlc = %+v", b)
	}
}

func TestBarUnmarshalNumericTime(t *testing.T) {
	// Monthly bars carry a numeric month key; it must normalize to a string
	// without float mangling.
	var b Bar
	if err := json.Unmarshal([]byte(`[202401, 100, 110, 95, 105]`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.Time != "202401" {
		t.Errorf("time = %q, want %q", b.Time, "202401")
	}

	if err := json.Unmarshal([]byte(`[1706745600, 1, 2, 3, 4]`), &b); err != nil {
		t.Fatalf("unmarshal epoch: %v", err)
	}
	if b.Time != "1706745600" {
		t.Errorf("epoch time = %q, want %q", b.Time, "1706745600")
	}
}

func TestBarUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"object form", `{"t":"2024-01"}`},
		{"too short", `["2024-01", 100, 110]`},
		{"non-numeric price", `["2024-01", "x", 110, 95, 105]`},
		{"boolean time", `[true, 100, 110, 95, 105]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Bar
			if err := json.Unmarshal([]byte(tt.data), &b); err == nil {
				t.Errorf("expected error for %s", tt.data)
			}
		})
	}
}

func TestBarMarshalRoundTrip(t *testing.T) {
	b := Bar{Time: "2024-01", Open: 1, High: 2, Low: 0.5, Close: 1.5}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["2024-01",1,2,0.5,1.5]` {
		t.Errorf("marshal = %s", data)
	}
}

func TestMAPointUnmarshal(t *testing.T) {
	var p MAPoint
	if err := json.Unmarshal([]byte(`["2024-01", 102.5]`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Time != "2024-01" || p.Value == nil || *p.Value != 102.5 {
		t.Errorf("point = %+v", p)
	}

	// Leading-window samples are null.
	if err := json.Unmarshal([]byte(`[202401, null]`), &p); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if p.Time != "202401" || p.Value != nil {
		t.Errorf("null point = %+v", p)
	}
}

func TestBarPayloadUnmarshal(t *testing.T) {
	data := []byte(`{
		"bars": [["2024-01", 100, 110, 95, 105]],
		"ma": {"ma7": [["2024-01", 101]], "ma20": [], "ma60": null},
		"boxes": [{"startIndex":0,"endIndex":3,"startTime":1704067200,"endTime":1711843200,"lower":95,"upper":110,"breakout":"up"}]
	}`)

	var payload BarPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(payload.Bars) != 1 || len(payload.MA.MA7) != 1 || len(payload.Boxes) != 1 {
		t.Fatalf("payload = %+v", payload)
	}
	box := payload.Boxes[0]
	if box.Lower != 95 || box.Upper != 110 {
		t.Errorf("box range = %+v", box)
	}
	if box.Breakout == nil || *box.Breakout != "up" {
		t.Errorf("breakout = %v", box.Breakout)
	}
}
