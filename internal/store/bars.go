package store

import (
	"context"
	"fmt"

	"github.com/toshiwd/moomoo-like-sub001/internal/models"
)

// DefaultBatchSize bounds how many codes a single batched fetch may carry.
const DefaultBatchSize = 48

// EnsureBars makes sure chart payloads exist for the codes currently on
// screen. It is idempotent: codes already cached or already being fetched
// (by this or any concurrent call) cost nothing. The miss set is fetched in
// order-preserving chunks of at most batchSize codes, one batch at a time,
// to bound concurrent backend load.
//
// A failed batch leaves the cache untouched for its codes and clears their
// loading flags in one update; the caller re-requests by calling EnsureBars
// again. Remaining batches are still attempted and the first error is
// returned.
func (s *Store) EnsureBars(ctx context.Context, tf models.Timeframe, codes []string, batchSize int) error {
	if !tf.Valid() {
		return fmt.Errorf("unknown timeframe %q", tf)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	// Claim the miss set: absent from the cache and not already in flight.
	// Marking codes loading under the same lock that inspects them is what
	// guarantees a (timeframe, code) pair is never submitted twice
	// concurrently.
	s.mu.Lock()
	missing := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		if _, cached := s.bars[tf][code]; cached {
			continue
		}
		if s.states[tf][code] == LoadLoading {
			continue
		}
		s.states[tf][code] = LoadLoading
		missing = append(missing, code)
	}
	s.mu.Unlock()

	if len(missing) == 0 {
		return nil
	}
	s.notify()

	var firstErr error
	for start := 0; start < len(missing); start += batchSize {
		end := start + batchSize
		if end > len(missing) {
			end = len(missing)
		}
		chunk := missing[start:end]

		payloads, err := s.backend.BatchBars(ctx, tf, chunk)

		s.mu.Lock()
		if err != nil {
			// No partial state: the whole batch settles as not-fetched.
			for _, code := range chunk {
				s.states[tf][code] = LoadError
			}
			s.mu.Unlock()
			s.logger.Warn().
				Str("timeframe", string(tf)).
				Int("codes", len(chunk)).
				Str("error", err.Error()).
				Msg("batch bars fetch failed")
			if firstErr == nil {
				firstErr = err
			}
			s.notify()
			continue
		}
		for _, code := range chunk {
			payload, ok := payloads[code]
			if !ok {
				s.states[tf][code] = LoadIdle
				continue
			}
			s.bars[tf][code] = payload
			s.states[tf][code] = LoadLoaded
		}
		s.mu.Unlock()
		s.notify()
	}

	return firstErr
}

// BarsFor returns the cached payloads for the requested codes. Codes without
// data are simply absent from the result.
func (s *Store) BarsFor(tf models.Timeframe, codes []string) map[string]models.BarPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.BarPayload, len(codes))
	for _, code := range codes {
		if payload, ok := s.bars[tf][code]; ok {
			out[code] = payload
		}
	}
	return out
}

// StatesFor returns the load state for each requested code. Codes the store
// has never seen report LoadIdle.
func (s *Store) StatesFor(tf models.Timeframe, codes []string) map[string]LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]LoadState, len(codes))
	for _, code := range codes {
		st, ok := s.states[tf][code]
		if !ok {
			st = LoadIdle
		}
		out[code] = st
	}
	return out
}
