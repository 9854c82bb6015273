package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthReportsBackendGate(t *testing.T) {
	h := NewHealthHandler(testLogger(), stalledProbe())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status  string `json:"status"`
		Backend struct {
			Ready  bool   `json:"ready"`
			Phase  string `json:"phase"`
			Failed bool   `json:"failed"`
		} `json:"backend"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, the portal answers so it is ok", body.Status)
	}
	if body.Backend.Ready {
		t.Error("backend ready = true, want false for a stalled backend")
	}
}

func TestHealthReadyBackend(t *testing.T) {
	h := NewHealthHandler(testLogger(), readyProbe(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

	var body struct {
		Backend struct {
			Ready bool   `json:"ready"`
			Phase string `json:"phase"`
		} `json:"backend"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Backend.Ready || body.Backend.Phase != "ready" {
		t.Errorf("backend = %+v", body.Backend)
	}
}

func TestHealthRejectsPost(t *testing.T) {
	h := NewHealthHandler(testLogger(), stalledProbe())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/health", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
