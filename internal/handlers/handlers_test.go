package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/toshiwd/moomoo-like-sub001/internal/common"
	"github.com/toshiwd/moomoo-like-sub001/internal/models"
	"github.com/toshiwd/moomoo-like-sub001/internal/readiness"
	"github.com/toshiwd/moomoo-like-sub001/internal/store"
)

// stubBackend is a minimal store.Backend for handler tests.
type stubBackend struct {
	mu         sync.Mutex
	listItems  []models.TickerEntry
	listErr    error
	favItems   []models.Favorite
	addErr     error
	removeErr  error
	batchCalls int
}

func (f *stubBackend) List(ctx context.Context) ([]models.TickerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listItems, f.listErr
}

func (f *stubBackend) BatchBars(ctx context.Context, tf models.Timeframe, codes []string) (map[string]models.BarPayload, error) {
	f.mu.Lock()
	f.batchCalls++
	f.mu.Unlock()
	out := make(map[string]models.BarPayload, len(codes))
	for _, code := range codes {
		out[code] = models.BarPayload{
			Bars: []models.Bar{{Time: "2024-01", Open: 1, High: 2, Low: 0.5, Close: 1.5}},
		}
	}
	return out, nil
}

func (f *stubBackend) Favorites(ctx context.Context) ([]models.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.favItems, nil
}

func (f *stubBackend) AddFavorite(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addErr
}

func (f *stubBackend) RemoveFavorite(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removeErr
}

// readyProbe builds a probe that observes a ready backend and waits for it.
func readyProbe(t *testing.T) *readiness.Probe {
	t.Helper()
	ready := true
	p := readiness.New(func(ctx context.Context) (models.HealthReport, int, error) {
		return models.HealthReport{Ready: &ready}, 200, nil
	}, nil, readiness.Options{
		Delays:        []time.Duration{time.Millisecond},
		ElapsedTick:   time.Hour,
		OverlayLinger: time.Millisecond,
	})
	p.Start()

	deadline := time.Now().Add(2 * time.Second)
	for !p.Ready() {
		if time.Now().After(deadline) {
			t.Fatal("probe never became ready")
		}
		time.Sleep(time.Millisecond)
	}
	return p
}

// stalledProbe builds a probe whose backend never answers healthily.
func stalledProbe() *readiness.Probe {
	p := readiness.New(func(ctx context.Context) (models.HealthReport, int, error) {
		return models.HealthReport{}, 0, errors.New("connection refused")
	}, nil, readiness.Options{
		Delays:      []time.Duration{time.Hour},
		ElapsedTick: time.Hour,
		GracePeriod: time.Hour,
	})
	p.Start()
	return p
}

func testStore(backend store.Backend) *store.Store {
	return store.New(backend, nil)
}

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}
