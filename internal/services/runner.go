package services

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/models"
)

// RunnerState is the lifecycle state of a draw session
type RunnerState string

const (
	StateIdle      RunnerState = "idle"
	StateRunning   RunnerState = "running"
	StatePaused    RunnerState = "paused"
	StateCompleted RunnerState = "completed"
)

// Pacing controls how long the animated parts of a draw take
type Pacing struct {
	Steps               int
	RollDuration        time.Duration
	JackpotRollDuration time.Duration
	RevealDelays        bool
}

// DefaultPacing is the ceremony timing: 20 rolling ticks over 3s, 6s for the jackpot
func DefaultPacing() Pacing {
	return Pacing{
		Steps:               20,
		RollDuration:        3 * time.Second,
		JackpotRollDuration: 6 * time.Second,
		RevealDelays:        true,
	}
}

// DrawObserver receives every event of a draw sequence.
// Callbacks run on the draw goroutine and must not call Wait.
type DrawObserver interface {
	OnDrawEvent(event models.DrawEvent)
}

// DrawObserverFunc adapts a function to DrawObserver
type DrawObserverFunc func(event models.DrawEvent)

func (f DrawObserverFunc) OnDrawEvent(event models.DrawEvent) {
	f(event)
}

// SessionSaver persists finished sessions
type SessionSaver interface {
	SaveSession(ctx context.Context, session models.LotterySession) error
}

// RunnerSnapshot is a consistent view of the runner at one instant
type RunnerSnapshot struct {
	State         RunnerState            `json:"state"`
	SessionID     string                 `json:"session_id,omitempty"`
	CurrentPrize  *models.Prize          `json:"current_prize,omitempty"`
	CurrentIndex  int                    `json:"current_index"`
	Progress      float64                `json:"progress"`
	Results       []models.DrawResult    `json:"results"`
	Remaining     []models.Prize         `json:"remaining"`
	Session       *models.LotterySession `json:"session,omitempty"`
	LastError     string                 `json:"last_error,omitempty"`
	WithAnimation bool                   `json:"with_animation"`
	StartedAt     *time.Time             `json:"started_at,omitempty"`
}

// SessionRunner drives a single draw session through the prize catalog.
//
// Every Start, Resume, Pause and Reset bumps a generation counter. The draw
// goroutine carries the generation it was launched with and re-checks it
// under the lock before recording a result or dispatching an event, so a
// paused or reset sequence can never leak state or events.
type SessionRunner struct {
	log     logger.Logger
	catalog *Catalog
	gen     NumberGenerator
	store   SessionSaver
	pacing  Pacing
	now     func() time.Time
	newID   func() string

	mu            sync.Mutex
	generation    uint64
	state         RunnerState
	sessionID     string
	startedAt     time.Time
	results       map[string]models.DrawResult
	currentIndex  int
	currentPrize  *models.Prize
	progress      float64
	withAnimation bool
	session       *models.LotterySession
	lastErr       error
	cancel        context.CancelFunc
	observers     []DrawObserver

	// dispatchMu serializes observer callbacks across loop generations
	dispatchMu sync.Mutex
	wg         sync.WaitGroup
}

// NewSessionRunner creates an idle runner
func NewSessionRunner(log logger.Logger, catalog *Catalog, gen NumberGenerator, store SessionSaver, pacing Pacing) *SessionRunner {
	if pacing.Steps < 1 {
		pacing.Steps = 1
	}
	return &SessionRunner{
		log:     log,
		catalog: catalog,
		gen:     gen,
		store:   store,
		pacing:  pacing,
		now:     time.Now,
		newID:   uuid.NewString,
		state:   StateIdle,
		results: make(map[string]models.DrawResult),
	}
}

// AddObserver registers o for all future events
func (r *SessionRunner) AddObserver(o DrawObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Catalog returns the catalog the runner draws from
func (r *SessionRunner) Catalog() *Catalog {
	return r.catalog
}

// Start begins a new session. A completed session is discarded first;
// a running or paused one makes Start fail with ErrSessionInProgress.
func (r *SessionRunner) Start(withAnimation bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRunning || r.state == StatePaused {
		return ErrSessionInProgress
	}

	r.stopLocked()
	r.sessionID = r.newID()
	r.startedAt = r.now()
	r.results = make(map[string]models.DrawResult)
	r.currentIndex = 0
	r.currentPrize = nil
	r.progress = 0
	r.session = nil
	r.lastErr = nil
	r.withAnimation = withAnimation
	r.state = StateRunning
	r.launchLocked()

	r.log.Info("Draw session started", "session_id", r.sessionID, "animation", withAnimation)
	return nil
}

// QuickStart begins a new session without animation
func (r *SessionRunner) QuickStart() error {
	return r.Start(false)
}

// Pause stops the draw after the current step. Recorded results are kept.
func (r *SessionRunner) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRunning {
		return ErrNotRunning
	}

	r.stopLocked()
	r.state = StatePaused
	r.currentIndex = r.catalog.FirstMissing(r.results)
	r.currentPrize = nil
	if r.currentIndex < r.catalog.Len() {
		p := r.catalog.At(r.currentIndex)
		r.currentPrize = &p
	}
	r.progress = 0

	r.log.Info("Draw session paused", "session_id", r.sessionID, "next_prize", r.currentIndex)
	return nil
}

// Resume continues a paused session at the first prize that has no result
func (r *SessionRunner) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePaused {
		return ErrNotPaused
	}

	r.stopLocked()
	r.state = StateRunning
	r.launchLocked()

	r.log.Info("Draw session resumed", "session_id", r.sessionID, "next_prize", r.catalog.FirstMissing(r.results))
	return nil
}

// Reset abandons whatever is in progress and returns to idle. It is valid in any state.
func (r *SessionRunner) Reset() {
	r.mu.Lock()
	r.stopLocked()
	prev := r.state
	r.state = StateIdle
	r.sessionID = ""
	r.startedAt = time.Time{}
	r.results = make(map[string]models.DrawResult)
	r.currentIndex = 0
	r.currentPrize = nil
	r.progress = 0
	r.session = nil
	r.lastErr = nil
	r.withAnimation = false
	observers := slices.Clone(r.observers)
	r.mu.Unlock()

	r.log.Info("Draw session reset", "previous_state", prev)
	for _, o := range observers {
		o.OnDrawEvent(models.DrawEvent{Type: models.EventReset})
	}
}

// Wait blocks until no draw goroutine is running
func (r *SessionRunner) Wait() {
	r.wg.Wait()
}

// Close cancels any running sequence and waits for it to exit
func (r *SessionRunner) Close() {
	r.mu.Lock()
	r.stopLocked()
	r.mu.Unlock()
	r.wg.Wait()
}

// Snapshot returns the current state
func (r *SessionRunner) Snapshot() RunnerSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := RunnerSnapshot{
		State:         r.state,
		SessionID:     r.sessionID,
		CurrentIndex:  r.currentIndex,
		Progress:      r.progress,
		Results:       r.catalog.Ordered(r.results),
		Remaining:     r.catalog.Remaining(r.results),
		WithAnimation: r.withAnimation,
	}
	if r.currentPrize != nil {
		p := *r.currentPrize
		snap.CurrentPrize = &p
	}
	if r.session != nil {
		s := *r.session
		snap.Session = &s
	}
	if r.lastErr != nil {
		snap.LastError = r.lastErr.Error()
	}
	if !r.startedAt.IsZero() {
		t := r.startedAt
		snap.StartedAt = &t
	}
	return snap
}

// State returns the current lifecycle state
func (r *SessionRunner) State() RunnerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// stopLocked invalidates the running loop, if any. Caller holds r.mu.
func (r *SessionRunner) stopLocked() {
	r.generation++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// launchLocked starts a draw goroutine for the current generation. Caller holds r.mu.
func (r *SessionRunner) launchLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	gen := r.generation
	animate := r.withAnimation

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		r.run(ctx, gen, animate)
	}()
}

func (r *SessionRunner) run(ctx context.Context, gen uint64, animate bool) {
	for {
		r.mu.Lock()
		if r.generation != gen {
			r.mu.Unlock()
			return
		}
		idx := r.catalog.FirstMissing(r.results)
		r.mu.Unlock()

		if idx >= r.catalog.Len() {
			break
		}
		if !r.drawPrize(ctx, gen, idx, r.catalog.At(idx), animate) {
			return
		}
	}
	r.finish(gen)
}

// drawPrize runs one prize through starting, rolling and completed.
// It returns false once the sequence has been cancelled.
func (r *SessionRunner) drawPrize(ctx context.Context, gen uint64, idx int, prize models.Prize, animate bool) bool {
	starting := models.DrawEvent{Type: models.EventStarting, Prize: &prize}
	if !r.emit(gen, starting, func() {
		r.currentIndex = idx
		r.currentPrize = &prize
		r.progress = 0
	}) {
		return false
	}
	if ctx.Err() != nil {
		return false
	}

	if animate {
		duration := r.pacing.RollDuration
		if r.catalog.IsJackpot(prize) {
			duration = r.pacing.JackpotRollDuration
		}
		tick := duration / time.Duration(r.pacing.Steps)
		for k := 0; k < r.pacing.Steps; k++ {
			if !sleep(ctx, tick) {
				return false
			}
			progress := float64(k+1) / float64(r.pacing.Steps)
			rolling := models.DrawEvent{Type: models.EventRolling, Prize: &prize, Progress: progress}
			if !r.emit(gen, rolling, func() { r.progress = progress }) {
				return false
			}
		}
	}

	// Generating, recording and the completed event share one generation check
	var result models.DrawResult
	completed := models.DrawEvent{Type: models.EventCompleted, Prize: &prize, Result: &result}
	if !r.emit(gen, completed, func() {
		result = models.DrawResult{
			Prize:     prize,
			Numbers:   r.gen.Generate(prize),
			CreatedAt: r.now(),
		}
		r.results[prize.ID] = result
		r.currentIndex = idx + 1
		r.progress = 1
	}) {
		return false
	}
	r.log.Debug("Prize drawn", "prize", prize.ID, "numbers", result.Numbers)

	if animate && r.pacing.RevealDelays {
		if !sleep(ctx, prize.RevealDelay) {
			return false
		}
	}
	return ctx.Err() == nil
}

func (r *SessionRunner) finish(gen uint64) {
	r.mu.Lock()
	if r.generation != gen {
		r.mu.Unlock()
		return
	}
	end := r.now()
	session := models.LotterySession{
		ID:        r.sessionID,
		Results:   make(map[string]models.DrawResult, len(r.results)),
		StartedAt: r.startedAt,
		EndedAt:   &end,
		Completed: true,
	}
	for k, v := range r.results {
		session.Results[k] = v
	}
	r.state = StateCompleted
	r.session = &session
	r.currentPrize = nil
	r.currentIndex = r.catalog.Len()
	r.cancel = nil
	r.mu.Unlock()

	r.log.Info("Draw session completed", "session_id", session.ID, "numbers", session.NumberCount())

	// The session is finished even if the save fails; it is not retried.
	err := r.store.SaveSession(context.Background(), session)
	if err != nil {
		r.log.Error("Failed to save session", "session_id", session.ID, "error", err)
		r.mu.Lock()
		if r.generation == gen {
			r.lastErr = err
		}
		r.mu.Unlock()
	}

	if !r.emit(gen, models.DrawEvent{Type: models.EventSessionCompleted, Session: &session}, nil) {
		return
	}
	if err != nil {
		r.emit(gen, models.DrawEvent{Type: models.EventSaveFailed, Session: &session, Error: err.Error()}, nil)
	}
}

// emit applies update and dispatches event, but only while gen is still current
func (r *SessionRunner) emit(gen uint64, event models.DrawEvent, update func()) bool {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()

	r.mu.Lock()
	if r.generation != gen {
		r.mu.Unlock()
		return false
	}
	if update != nil {
		update()
	}
	observers := slices.Clone(r.observers)
	r.mu.Unlock()

	for _, o := range observers {
		o.OnDrawEvent(event)
	}
	return true
}

// sleep waits for d or until ctx is done, reporting whether the full wait elapsed
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
