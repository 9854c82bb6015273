package store

import (
	"context"

	"github.com/toshiwd/moomoo-like-sub001/internal/models"
)

// LoadList fetches the ticker universe once per session. A call while a
// load is already in flight, or after one has succeeded, is a no-op: the
// caller does not wait for the winner. A failed load leaves the store
// eligible for another attempt.
func (s *Store) LoadList(ctx context.Context) error {
	s.mu.Lock()
	if s.listLoaded || s.listLoading {
		s.mu.Unlock()
		return nil
	}
	s.listLoading = true
	s.mu.Unlock()

	items, err := s.backend.List(ctx)

	s.mu.Lock()
	s.listLoading = false
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn().Str("error", err.Error()).Msg("ticker list load failed")
		return err
	}

	// Wholesale replacement; there is no incremental refresh.
	s.list = items
	s.names = make(map[string]string, len(items))
	for _, item := range items {
		s.names[item.Code] = item.Name
	}
	s.listLoaded = true
	s.mu.Unlock()

	s.logger.Info().Int("tickers", len(items)).Msg("ticker list loaded")
	s.notify()
	return nil
}

// ListLoaded reports whether the ticker universe has been fetched.
func (s *Store) ListLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLoaded
}

// Tickers returns a copy of the ticker universe in backend order.
func (s *Store) Tickers() []models.TickerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TickerEntry, len(s.list))
	copy(out, s.list)
	return out
}

// Name resolves a ticker code to its display name; the code itself is the
// fallback for unknown codes.
func (s *Store) Name(code string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name, ok := s.names[code]; ok && name != "" {
		return name
	}
	return code
}
