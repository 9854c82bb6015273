package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/toshiwd/moomoo-like-sub001/internal/models"
)

const (
	testWait = 2 * time.Second
	testTick = 5 * time.Millisecond
)

// fakeBackend records calls and replays configured outcomes. Block channels
// let tests hold a request open to exercise the in-flight paths.
type fakeBackend struct {
	mu sync.Mutex

	listItems []models.TickerEntry
	listErr   error
	listCalls int
	listBlock chan struct{}

	batchCalls []batchCall
	batchErr   func(call int, codes []string) error
	batchBlock chan struct{}

	favItems    []models.Favorite
	favErr      error
	favCalls    int
	addErr      error
	removeErr   error
	addCalls    []string
	removeCalls []string
}

type batchCall struct {
	tf    models.Timeframe
	codes []string
}

func payloadFor(code string) models.BarPayload {
	return models.BarPayload{
		Bars: []models.Bar{{Time: "2024-01", Open: 1, High: 2, Low: 0.5, Close: 1.5}},
	}
}

func (f *fakeBackend) List(ctx context.Context) ([]models.TickerEntry, error) {
	f.mu.Lock()
	f.listCalls++
	block := f.listBlock
	items, err := f.listItems, f.listErr
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return items, err
}

func (f *fakeBackend) BatchBars(ctx context.Context, tf models.Timeframe, codes []string) (map[string]models.BarPayload, error) {
	f.mu.Lock()
	call := len(f.batchCalls)
	f.batchCalls = append(f.batchCalls, batchCall{tf: tf, codes: append([]string(nil), codes...)})
	errFn := f.batchErr
	block := f.batchBlock
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if errFn != nil {
		if err := errFn(call, codes); err != nil {
			return nil, err
		}
	}
	out := make(map[string]models.BarPayload, len(codes))
	for _, code := range codes {
		out[code] = payloadFor(code)
	}
	return out, nil
}

func (f *fakeBackend) Favorites(ctx context.Context) ([]models.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.favCalls++
	return f.favItems, f.favErr
}

func (f *fakeBackend) AddFavorite(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls = append(f.addCalls, code)
	return f.addErr
}

func (f *fakeBackend) RemoveFavorite(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls = append(f.removeCalls, code)
	return f.removeErr
}

func (f *fakeBackend) recordedBatches() []batchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]batchCall, len(f.batchCalls))
	copy(out, f.batchCalls)
	return out
}

func codesRange(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%04d.T", i)
	}
	return out
}
