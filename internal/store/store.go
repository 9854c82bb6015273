// Package store holds the portal's synchronized session state: the
// per-timeframe bars cache, the ticker universe, and the favorites and
// keep lists. All mutation goes through the Store mutex; readers get
// copies, never live references.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/toshiwd/moomoo-like-sub001/internal/common"
	"github.com/toshiwd/moomoo-like-sub001/internal/models"
)

// LoadState tracks the fetch status of one (timeframe, code) pair, mirrored
// to the views for per-card feedback.
type LoadState string

const (
	LoadIdle    LoadState = "idle"
	LoadLoading LoadState = "loading"
	LoadLoaded  LoadState = "loaded"
	LoadError   LoadState = "error"
)

// Notice is a transient user-visible message raised by a failed optimistic
// mutation. Views drain and toast them.
type Notice struct {
	Text string `json:"text"`
	Code string `json:"code,omitempty"`
}

// Backend is the slice of the screener client the store depends on.
type Backend interface {
	List(ctx context.Context) ([]models.TickerEntry, error)
	BatchBars(ctx context.Context, tf models.Timeframe, codes []string) (map[string]models.BarPayload, error)
	Favorites(ctx context.Context) ([]models.Favorite, error)
	AddFavorite(ctx context.Context, code string) error
	RemoveFavorite(ctx context.Context, code string) error
}

// Snapshot is the immutable state summary emitted to subscribers. Bars
// themselves are pulled on demand via BarsFor; the snapshot carries only
// what the views need to decide whether to re-render.
type Snapshot struct {
	ListLoaded bool                     `json:"listLoaded"`
	ListCount  int                      `json:"listCount"`
	Favorites  []string                 `json:"favorites"`
	Keep       []string                 `json:"keep"`
	Cached     map[models.Timeframe]int `json:"cached"`
	Loading    map[models.Timeframe]int `json:"loading"`
}

// Store is the session state container. One instance per process.
//
// The bars cache has no eviction: it is bounded by the ticker universe
// (a few thousand codes per timeframe), not by a capacity policy.
type Store struct {
	backend Backend
	logger  *common.Logger

	mu          sync.Mutex
	bars        map[models.Timeframe]map[string]models.BarPayload
	states      map[models.Timeframe]map[string]LoadState
	list        []models.TickerEntry
	names       map[string]string
	listLoaded  bool
	listLoading bool
	favLoaded   bool
	favLoading  bool
	favorites   map[string]models.Favorite
	keep        map[string]struct{}
	notices     []Notice

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// New creates an empty store backed by the given client.
func New(backend Backend, logger *common.Logger) *Store {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	s := &Store{
		backend:   backend,
		logger:    logger,
		bars:      make(map[models.Timeframe]map[string]models.BarPayload),
		states:    make(map[models.Timeframe]map[string]LoadState),
		names:     make(map[string]string),
		favorites: make(map[string]models.Favorite),
		keep:      make(map[string]struct{}),
		subs:      make(map[int]func(Snapshot)),
	}
	for _, tf := range []models.Timeframe{models.TimeframeMonthly, models.TimeframeWeekly, models.TimeframeDaily} {
		s.bars[tf] = make(map[string]models.BarPayload)
		s.states[tf] = make(map[string]LoadState)
	}
	return s
}

// Subscribe registers a listener invoked with a snapshot after every
// committed mutation. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Snapshot returns the current state summary.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		ListLoaded: s.listLoaded,
		ListCount:  len(s.list),
		Favorites:  make([]string, 0, len(s.favorites)),
		Keep:       make([]string, 0, len(s.keep)),
		Cached:     make(map[models.Timeframe]int, len(s.bars)),
		Loading:    make(map[models.Timeframe]int, len(s.states)),
	}
	for code := range s.favorites {
		snap.Favorites = append(snap.Favorites, code)
	}
	for code := range s.keep {
		snap.Keep = append(snap.Keep, code)
	}
	sort.Strings(snap.Favorites)
	sort.Strings(snap.Keep)
	for tf, byCode := range s.bars {
		snap.Cached[tf] = len(byCode)
	}
	for tf, byCode := range s.states {
		n := 0
		for _, st := range byCode {
			if st == LoadLoading {
				n++
			}
		}
		snap.Loading[tf] = n
	}
	return snap
}

func (s *Store) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// DrainNotices returns queued notices and clears the queue.
func (s *Store) DrainNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// applyOptimistic runs the optimistic-mutation pattern: apply locally,
// reconcile with the backend, revert and queue exactly one notice on
// failure. apply and revert run under the store mutex; reconcile does not.
// A nil reconcile commits the local mutation unconditionally.
func (s *Store) applyOptimistic(apply, revert func(), notice Notice, reconcile func() error) error {
	s.mu.Lock()
	apply()
	s.mu.Unlock()
	s.notify()

	if reconcile == nil {
		return nil
	}
	err := reconcile()
	if err == nil {
		return nil
	}

	s.mu.Lock()
	revert()
	s.notices = append(s.notices, notice)
	s.mu.Unlock()
	s.notify()
	return err
}
