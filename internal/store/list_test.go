package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toshiwd/moomoo-like-sub001/internal/models"
)

func sampleList() []models.TickerEntry {
	score := 82.5
	return []models.TickerEntry{
		{Code: "7203.T", Name: "Toyota Motor", Stage: "2", Score: &score},
		{Code: "6758.T", Name: "Sony Group"},
		{Code: "9984.T", Name: "SoftBank Group", Stage: "4"},
	}
}

func TestLoadListLoadsOnce(t *testing.T) {
	backend := &fakeBackend{listItems: sampleList()}
	s := New(backend, nil)

	require.False(t, s.ListLoaded())
	require.NoError(t, s.LoadList(context.Background()))

	assert.True(t, s.ListLoaded())
	assert.Equal(t, sampleList(), s.Tickers(), "backend order is preserved")

	// Loaded: further calls are no-ops.
	require.NoError(t, s.LoadList(context.Background()))
	require.NoError(t, s.LoadList(context.Background()))

	backend.mu.Lock()
	calls := backend.listCalls
	backend.mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestLoadListConcurrentCallsDoNotWait(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{listItems: sampleList(), listBlock: release}
	s := New(backend, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.LoadList(context.Background())
	}()

	require.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return backend.listCalls == 1
	}, testWait, testTick)

	// A second call while the first is in flight returns immediately; it
	// neither waits for the winner nor issues its own request.
	require.NoError(t, s.LoadList(context.Background()))
	assert.False(t, s.ListLoaded(), "the loser must not observe a completed load")

	close(release)
	wg.Wait()

	assert.True(t, s.ListLoaded())
	backend.mu.Lock()
	calls := backend.listCalls
	backend.mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestLoadListFailureIsRetryable(t *testing.T) {
	backend := &fakeBackend{listErr: errors.New("backend down")}
	s := New(backend, nil)

	require.Error(t, s.LoadList(context.Background()))
	assert.False(t, s.ListLoaded())

	backend.mu.Lock()
	backend.listErr = nil
	backend.listItems = sampleList()
	backend.mu.Unlock()

	require.NoError(t, s.LoadList(context.Background()))
	assert.True(t, s.ListLoaded())
	assert.Len(t, s.Tickers(), 3)
}

func TestName(t *testing.T) {
	backend := &fakeBackend{listItems: sampleList()}
	s := New(backend, nil)
	require.NoError(t, s.LoadList(context.Background()))

	assert.Equal(t, "Toyota Motor", s.Name("7203.T"))
	assert.Equal(t, "0000.T", s.Name("0000.T"), "unknown codes fall back to the code")
}

func TestTickersReturnsCopy(t *testing.T) {
	backend := &fakeBackend{listItems: sampleList()}
	s := New(backend, nil)
	require.NoError(t, s.LoadList(context.Background()))

	got := s.Tickers()
	got[0].Name = "mutated"
	assert.Equal(t, "Toyota Motor", s.Tickers()[0].Name)
}
