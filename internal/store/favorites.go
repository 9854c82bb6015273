package store

import (
	"context"
	"sort"

	"github.com/toshiwd/moomoo-like-sub001/internal/models"
)

// LoadFavorites fetches the favorites set once per session, with the same
// single-flight semantics as LoadList.
func (s *Store) LoadFavorites(ctx context.Context) error {
	s.mu.Lock()
	if s.favLoaded || s.favLoading {
		s.mu.Unlock()
		return nil
	}
	s.favLoading = true
	s.mu.Unlock()

	items, err := s.backend.Favorites(ctx)

	s.mu.Lock()
	s.favLoading = false
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn().Str("error", err.Error()).Msg("favorites load failed")
		return err
	}
	s.favorites = make(map[string]models.Favorite, len(items))
	for _, item := range items {
		s.favorites[item.Code] = item
	}
	s.favLoaded = true
	s.mu.Unlock()

	s.notify()
	return nil
}

// Favorites returns the favorites sorted by code.
func (s *Store) Favorites() []models.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Favorite, 0, len(s.favorites))
	for _, f := range s.favorites {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// IsFavorite reports membership in the favorites set.
func (s *Store) IsFavorite(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favorites[code]
	return ok
}

// AddFavorite optimistically adds a code to the favorites set, then
// reconciles with the backend. On failure the set is restored and one
// notice is queued. Concurrent toggles on the same code are not coalesced;
// the last settled response wins.
func (s *Store) AddFavorite(ctx context.Context, code string) error {
	var prev *models.Favorite
	var existed bool
	apply := func() {
		if f, ok := s.favorites[code]; ok {
			prev, existed = &f, true
		}
		s.favorites[code] = models.Favorite{Code: code, Name: s.names[code]}
	}
	revert := func() {
		if existed {
			s.favorites[code] = *prev
		} else {
			delete(s.favorites, code)
		}
	}
	notice := Notice{Text: "Could not add " + code + " to favorites", Code: code}
	return s.applyOptimistic(apply, revert, notice, func() error {
		return s.backend.AddFavorite(ctx, code)
	})
}

// RemoveFavorite optimistically removes a code from the favorites set, then
// reconciles with the backend, restoring the entry on failure.
func (s *Store) RemoveFavorite(ctx context.Context, code string) error {
	var prev *models.Favorite
	apply := func() {
		if f, ok := s.favorites[code]; ok {
			prev = &f
			delete(s.favorites, code)
		}
	}
	revert := func() {
		if prev != nil {
			s.favorites[code] = *prev
		}
	}
	notice := Notice{Text: "Could not remove " + code + " from favorites", Code: code}
	return s.applyOptimistic(apply, revert, notice, func() error {
		return s.backend.RemoveFavorite(ctx, code)
	})
}

// Keep adds a code to the session keep list. The keep list has no backend
// endpoint; it lives for the session only, but flows through the same
// optimistic helper as favorites with a nil reconciler.
func (s *Store) Keep(code string) {
	_ = s.applyOptimistic(func() {
		s.keep[code] = struct{}{}
	}, nil, Notice{}, nil)
}

// Unkeep removes a code from the session keep list.
func (s *Store) Unkeep(code string) {
	_ = s.applyOptimistic(func() {
		delete(s.keep, code)
	}, nil, Notice{}, nil)
}

// IsKept reports membership in the keep list.
func (s *Store) IsKept(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keep[code]
	return ok
}
