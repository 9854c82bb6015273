// Package readiness gates the portal behind a backend health poll.
//
// The probe walks Starting -> (Waiting <-> Probing) -> Ready, with an
// absorbing Failed state that only Retry leaves. Probes are strictly
// sequential: the next one is scheduled only after the previous settles, so
// at most one health request is ever outstanding.
package readiness

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/toshiwd/moomoo-like-sub001/internal/common"
	"github.com/toshiwd/moomoo-like-sub001/internal/models"
)

// Phase is the backend startup phase as reported (or inferred).
type Phase string

const (
	PhaseStarting  Phase = "starting"
	PhaseIngesting Phase = "ingesting"
	PhaseReady     Phase = "ready"
)

// failedMessage is the fixed user-facing message for the terminal error
// state. Details carry the specifics.
const failedMessage = "Backend failed to start. Retry, or check the server logs."

// Snapshot is an immutable view of the probe state handed to subscribers
// and serialized for the views.
type Snapshot struct {
	Ready        bool   `json:"ready"`
	Phase        Phase  `json:"phase"`
	Message      string `json:"message"`
	Error        string `json:"error,omitempty"`
	ErrorDetails string `json:"errorDetails,omitempty"`
	Failed       bool   `json:"failed"`
	Attempts     int    `json:"attempts"`
	ElapsedMs    int64  `json:"elapsedMs"`
	// Overlay mirrors the startup gate shown by the views. It trails Ready
	// by a short linger so exit transitions can play; control decisions must
	// use Ready, never Overlay.
	Overlay bool `json:"overlay"`
}

// HealthFunc issues one health request. It must accept any HTTP status
// (returning it for inspection) and only error on transport failure.
type HealthFunc func(ctx context.Context) (models.HealthReport, int, error)

// Options tune the probe. The zero value of each field selects the default.
type Options struct {
	Delays           []time.Duration
	FailureThreshold int           // consecutive failures before escalation (default 5)
	GracePeriod      time.Duration // minimum elapsed time before escalation (default 60s)
	ElapsedTick      time.Duration // display readout cadence (default 500ms)
	OverlayLinger    time.Duration // overlay hide delay after ready (default 200ms)
	Now              func() time.Time
}

func (o Options) withDefaults() Options {
	if len(o.Delays) == 0 {
		o.Delays = DefaultDelays
	}
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = 5
	}
	if o.GracePeriod <= 0 {
		o.GracePeriod = 60 * time.Second
	}
	if o.ElapsedTick <= 0 {
		o.ElapsedTick = 500 * time.Millisecond
	}
	if o.OverlayLinger <= 0 {
		o.OverlayLinger = 200 * time.Millisecond
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Probe is the readiness state machine. One instance lives for the process.
type Probe struct {
	health HealthFunc
	logger *common.Logger
	opts   Options

	mu       sync.Mutex
	snap     Snapshot
	fails    int // consecutive failures; reset by a healthy-but-not-ready response
	started  time.Time
	probing  bool
	gen      int // bumped by Retry so stale timers and lingers are discarded
	timer    *time.Timer
	tickStop chan struct{}

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// New creates a probe. Call Start to begin polling.
func New(health HealthFunc, logger *common.Logger, opts Options) *Probe {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Probe{
		health: health,
		logger: logger,
		opts:   opts.withDefaults(),
		snap: Snapshot{
			Phase:   PhaseStarting,
			Message: defaultMessage(PhaseStarting),
			Overlay: true,
		},
		subs: make(map[int]func(Snapshot)),
	}
}

// Start begins the probe loop. Calling it more than once is a no-op.
func (p *Probe) Start() {
	p.mu.Lock()
	if !p.started.IsZero() {
		p.mu.Unlock()
		return
	}
	p.started = p.opts.Now()
	p.tickStop = make(chan struct{})
	go p.runTicker(p.tickStop)
	p.mu.Unlock()

	go p.probe()
}

// Snapshot returns the current state.
func (p *Probe) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Ready reports whether the backend has been observed ready.
func (p *Probe) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap.Ready
}

// Subscribe registers a listener invoked with a snapshot after every state
// change. The returned function unsubscribes.
func (p *Probe) Subscribe(fn func(Snapshot)) func() {
	p.subMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.subMu.Unlock()
	return func() {
		p.subMu.Lock()
		delete(p.subs, id)
		p.subMu.Unlock()
	}
}

// Retry resets the state machine and immediately triggers a new probe. It is
// the only way out of the Failed state and is safe to call in any state.
func (p *Probe) Retry() {
	p.mu.Lock()
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.tickStop != nil {
		close(p.tickStop)
	}
	// An in-flight request belongs to the old generation now; its result
	// will be discarded, so the new loop must not wait on it.
	p.probing = false
	p.fails = 0
	p.started = p.opts.Now()
	p.snap = Snapshot{
		Phase:   PhaseStarting,
		Message: defaultMessage(PhaseStarting),
		Overlay: true,
	}
	p.tickStop = make(chan struct{})
	go p.runTicker(p.tickStop)
	p.mu.Unlock()

	p.logger.Info().Msg("readiness probe reset, retrying")
	p.notify()
	go p.probe()
}

// probe issues a single health request and applies the outcome. It is a
// no-op when the machine is terminal or a request is already in flight.
func (p *Probe) probe() {
	p.mu.Lock()
	if p.snap.Ready || p.snap.Failed || p.probing {
		p.mu.Unlock()
		return
	}
	p.probing = true
	p.snap.Attempts++
	attempt := p.snap.Attempts
	gen := p.gen
	p.mu.Unlock()
	p.notify()

	report, status, err := p.health(context.Background())

	p.mu.Lock()
	if gen != p.gen {
		// Retry happened while the request was in flight; the result
		// belongs to the previous incarnation.
		p.mu.Unlock()
		return
	}
	p.probing = false

	now := p.opts.Now()
	elapsed := now.Sub(p.started)
	p.snap.ElapsedMs = elapsed.Milliseconds()

	switch {
	case err == nil && isReady(report, status):
		p.becomeReady(gen)
	case err == nil && status >= 200 && status < 300:
		// Healthy but not ready yet: this is ordinary startup, not failure.
		p.fails = 0
		p.applyReport(report)
		p.schedule(attempt)
	default:
		p.fails++
		if p.fails >= p.opts.FailureThreshold && elapsed >= p.opts.GracePeriod {
			p.becomeFailed(report, status, err)
		} else {
			p.applyReport(report)
			p.schedule(attempt)
		}
	}
	p.mu.Unlock()
	p.notify()
}

// becomeReady transitions to the terminal Ready state. Caller holds mu.
func (p *Probe) becomeReady(gen int) {
	p.snap.Ready = true
	p.snap.Failed = false
	p.snap.Phase = PhaseReady
	p.snap.Message = defaultMessage(PhaseReady)
	p.snap.Error = ""
	p.snap.ErrorDetails = ""
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.tickStop != nil {
		close(p.tickStop)
		p.tickStop = nil
	}
	p.logger.Info().Int("attempts", p.snap.Attempts).Msg("backend ready")

	// Cosmetic only: the overlay lingers briefly so the exit transition can
	// play. Ready is already true; nothing waits on this.
	time.AfterFunc(p.opts.OverlayLinger, func() {
		p.mu.Lock()
		if gen != p.gen || !p.snap.Ready {
			p.mu.Unlock()
			return
		}
		p.snap.Overlay = false
		p.mu.Unlock()
		p.notify()
	})
}

// becomeFailed transitions to the absorbing error state. Caller holds mu.
func (p *Probe) becomeFailed(report models.HealthReport, status int, err error) {
	p.snap.Failed = true
	p.snap.Ready = false
	p.snap.Error = failedMessage
	p.snap.ErrorDetails = failureDetails(report, status, err)
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.tickStop != nil {
		close(p.tickStop)
		p.tickStop = nil
	}
	p.logger.Error().
		Int("failures", p.fails).
		Int64("elapsed_ms", p.snap.ElapsedMs).
		Str("details", p.snap.ErrorDetails).
		Msg("backend startup failed")
}

// applyReport folds optional health fields into the snapshot. Caller holds mu.
func (p *Probe) applyReport(report models.HealthReport) {
	if report.Phase != "" {
		p.snap.Phase = Phase(report.Phase)
	} else if p.snap.Phase == "" {
		p.snap.Phase = PhaseStarting
	}
	if report.Message != "" {
		p.snap.Message = report.Message
	} else {
		p.snap.Message = defaultMessage(p.snap.Phase)
	}
}

// schedule arms the timer for the next probe. Caller holds mu.
func (p *Probe) schedule(attempt int) {
	delay := DelayForAttempt(attempt, p.opts.Delays)
	gen := p.gen
	p.timer = time.AfterFunc(delay, func() {
		p.mu.Lock()
		stale := gen != p.gen
		p.mu.Unlock()
		if !stale {
			p.probe()
		}
	})
}

func (p *Probe) notify() {
	p.mu.Lock()
	snap := p.snap
	p.mu.Unlock()

	p.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// runTicker refreshes the elapsed readout at a fixed cadence while the
// machine is not terminal. Display only: decisions read the clock directly.
func (p *Probe) runTicker(stop chan struct{}) {
	ticker := time.NewTicker(p.opts.ElapsedTick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.snap.Ready || p.snap.Failed {
				p.mu.Unlock()
				continue
			}
			p.snap.ElapsedMs = p.opts.Now().Sub(p.started).Milliseconds()
			p.mu.Unlock()
			p.notify()
		}
	}
}

// isReady applies the readiness determination: an explicit ready field wins;
// otherwise a 2xx status is taken as ready.
func isReady(report models.HealthReport, status int) bool {
	if report.Ready != nil {
		return *report.Ready
	}
	return status >= 200 && status < 300
}

// failureDetails builds the details string for the terminal error state:
// joined server-reported errors, else the transport error, else the status.
func failureDetails(report models.HealthReport, status int, err error) string {
	if len(report.Errors) > 0 {
		return strings.Join(report.Errors, "; ")
	}
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("health endpoint returned HTTP %d", status)
}

// defaultMessage is the phase-derived fallback when the backend reports none.
func defaultMessage(phase Phase) string {
	switch phase {
	case PhaseIngesting:
		return "Backend is ingesting data..."
	case PhaseReady:
		return "Ready"
	default:
		return "Waiting for backend to start..."
	}
}
