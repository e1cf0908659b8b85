// Package discovery drives a viewer's card stack: loading filtered candidates,
// tracking the drag on the top card and resolving committed swipes one at a
// time.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/rs/zerolog"
)

type State int

const (
	StateLoading State = iota
	StatePopulated
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type CandidateSource interface {
	Candidates(ctx context.Context, viewerID string, cfg domain.FilterConfig) ([]*domain.Profile, error)
}

type Resolver interface {
	Resolve(ctx context.Context, actorID string, target *domain.Profile, direction domain.Direction) (*domain.Resolution, error)
}

type Config struct {
	WindowSize        int
	PendingEmptyDelay time.Duration
	MatchEmptyDelay   time.Duration
	Gesture           GestureConfig
}

func DefaultConfig() Config {
	return Config{
		WindowSize:        3,
		PendingEmptyDelay: 300 * time.Millisecond,
		MatchEmptyDelay:   3 * time.Second,
		Gesture:           DefaultGestureConfig(),
	}
}

// Outcome reports what happened to one committed card.
type Outcome struct {
	TargetID   string             `json:"target_id"`
	Direction  domain.Direction   `json:"direction"`
	Resolution *domain.Resolution `json:"resolution,omitempty"`
	Err        error              `json:"-"`
}

type Snapshot struct {
	State     State               `json:"state"`
	Filter    domain.FilterConfig `json:"filter"`
	Window    []*domain.Profile   `json:"window"`
	Cursor    int                 `json:"cursor"`
	Total     int                 `json:"total"`
	Gesture   GestureState        `json:"gesture"`
	Transform Transform           `json:"transform"`
	Resolving bool                `json:"resolving"`
	LastError string              `json:"last_error,omitempty"`
}

// Session is the card stack controller of one viewer. Run must be running
// for committed swipes to be resolved.
type Session struct {
	viewerID string
	source   CandidateSource
	resolver Resolver
	cfg      Config
	log      zerolog.Logger

	mu         sync.Mutex
	state      State
	filter     domain.FilterConfig
	stack      *CardStack
	gesture    *Gesture
	gen        uint64
	loadSeq    uint64
	emptyTimer *time.Timer
	lastErr    error

	resolving atomic.Bool
	changed   chan struct{}
	outcomes  chan Outcome
}

func NewSession(viewerID string, source CandidateSource, resolver Resolver, cfg Config, log zerolog.Logger) *Session {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultConfig().WindowSize
	}
	return &Session{
		viewerID: viewerID,
		source:   source,
		resolver: resolver,
		cfg:      cfg,
		log:      log.With().Str("component", "discovery").Str("viewer_id", viewerID).Logger(),
		state:    StateLoading,
		filter:   domain.DefaultFilterConfig(),
		changed:  make(chan struct{}, 1),
		outcomes: make(chan Outcome, 1),
	}
}

func (s *Session) ViewerID() string { return s.viewerID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Filter() domain.FilterConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Load fetches and filters a fresh candidate pool. On failure the previous
// stack stays in place and the error wraps domain.ErrUnableToLoad.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	cfg := s.filter
	s.state = StateLoading
	s.mu.Unlock()

	cards, err := s.source.Candidates(ctx, s.viewerID, cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loadSeq {
		// a newer load owns the stack
		return nil
	}
	if err != nil {
		if !errors.Is(err, domain.ErrUnableToLoad) {
			err = fmt.Errorf("%w: %w", domain.ErrUnableToLoad, err)
		}
		s.lastErr = err
		// the kept stack decides the state; an overlapped load may have
		// left Loading behind
		s.state = StatePopulated
		if s.stack == nil || s.stack.Exhausted() {
			s.state = StateEmpty
		}
		s.log.Warn().Err(err).Msg("failed to load candidates")
		return err
	}

	s.gen++
	s.stopEmptyTimerLocked()
	s.lastErr = nil
	s.stack = NewCardStack(cards)
	s.resetTopLocked()
	if s.stack.Exhausted() {
		s.state = StateEmpty
	} else {
		s.state = StatePopulated
	}
	s.log.Debug().Int("candidates", len(cards)).Msg("candidates loaded")
	return nil
}

func (s *Session) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// SetFilter replaces the filter as a whole and reloads.
func (s *Session) SetFilter(ctx context.Context, cfg domain.FilterConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.filter = cfg
	s.mu.Unlock()
	return s.Load(ctx)
}

func (s *Session) ResetFilter(ctx context.Context) error {
	return s.SetFilter(ctx, domain.DefaultFilterConfig())
}

// Window returns the cards currently rendered; only the first is
// interactive.
func (s *Session) Window() []*domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stack == nil {
		return nil
	}
	return s.stack.Window(s.cfg.WindowSize)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:     s.state,
		Filter:    s.filter,
		Resolving: s.resolving.Load(),
	}
	if s.stack != nil {
		snap.Window = s.stack.Window(s.cfg.WindowSize)
		snap.Cursor = s.stack.Cursor()
		snap.Total = s.stack.Len()
	}
	if s.gesture != nil {
		snap.Gesture = s.gesture.State()
		snap.Transform = s.gesture.Transform()
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

func (s *Session) topGesture() (*Gesture, error) {
	s.mu.Lock()
	g := s.gesture
	s.mu.Unlock()
	if g == nil {
		return nil, ErrNoCard
	}
	if g.State() == GestureCommitting {
		return nil, domain.ErrSwipeInFlight
	}
	return g, nil
}

// Drag moves the top card to (dx, dy) from where the drag started, starting
// the drag if needed.
func (s *Session) Drag(dx, dy float64) error {
	g, err := s.topGesture()
	if err != nil {
		return err
	}
	if g.State() == GestureIdle {
		if err := g.Begin(); err != nil {
			return err
		}
	}
	return g.Move(dx, dy)
}

// Release ends the drag on the top card.
func (s *Session) Release() (GestureState, error) {
	g, err := s.topGesture()
	if err != nil {
		return GestureIdle, err
	}
	return g.Release()
}

// Swipe commits the top card in direction and waits for its outcome.
func (s *Session) Swipe(ctx context.Context, direction domain.Direction) (Outcome, error) {
	if !direction.Valid() {
		return Outcome{}, fmt.Errorf("%w: %q", domain.ErrInvalidDirection, direction)
	}
	g, err := s.topGesture()
	if err != nil {
		return Outcome{}, err
	}

	reply := make(chan Outcome, 1)
	if err := g.commit(direction, reply); err != nil {
		if errors.Is(err, ErrGestureBusy) && g.State() == GestureCommitting {
			return Outcome{}, domain.ErrSwipeInFlight
		}
		return Outcome{}, err
	}

	select {
	case o := <-reply:
		return o, o.Err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Outcomes delivers the latest outcome; older undelivered ones are dropped.
func (s *Session) Outcomes() <-chan Outcome {
	return s.outcomes
}

// Run consumes the gesture commands of the top card until ctx is done.
// Resolutions already started are allowed to finish.
func (s *Session) Run(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.stopEmptyTimerLocked()
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		g := s.gesture
		s.mu.Unlock()

		var commands <-chan Command
		if g != nil {
			commands = g.Commands()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.changed:
		case cmd := <-commands:
			s.handle(ctx, g, cmd)
		}
	}
}

func (s *Session) handle(ctx context.Context, g *Gesture, cmd Command) {
	if cmd.Kind == CommandReset {
		g.Settle()
		return
	}

	s.mu.Lock()
	if g != s.gesture || s.stack == nil || s.stack.Top() == nil {
		s.mu.Unlock()
		cmd.respond(Outcome{Direction: cmd.Direction, Err: ErrStaleCard})
		return
	}
	target := s.stack.Top()
	gen := s.gen
	s.mu.Unlock()

	s.resolving.Store(true)
	res, err := s.resolver.Resolve(context.WithoutCancel(ctx), s.viewerID, target, cmd.Direction)
	s.resolving.Store(false)

	out := Outcome{TargetID: target.ID, Direction: cmd.Direction, Resolution: res, Err: err}

	s.mu.Lock()
	s.lastErr = err
	switch {
	case res.Recorded():
		if gen == s.gen {
			s.advanceLocked(res.Status)
		}
	case errors.Is(err, domain.ErrDecisionExists):
		// already decided earlier; never offer it again
		if gen == s.gen {
			s.advanceLocked(domain.StatusRejected)
		}
	default:
		g.Rearm()
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Str("target_id", target.ID).Msg("swipe resolution failed")
	}
	s.publish(out)
	cmd.respond(out)
}

// advanceLocked moves past the resolved card and schedules the empty state
// when it was the last one.
func (s *Session) advanceLocked(status domain.ResolutionStatus) {
	s.stack.Advance()
	s.resetTopLocked()
	if !s.stack.Exhausted() {
		return
	}

	switch status {
	case domain.StatusMatched:
		s.scheduleEmptyLocked(s.cfg.MatchEmptyDelay)
	case domain.StatusPending:
		s.scheduleEmptyLocked(s.cfg.PendingEmptyDelay)
	default:
		s.state = StateEmpty
	}
}

func (s *Session) scheduleEmptyLocked(delay time.Duration) {
	if delay <= 0 {
		s.state = StateEmpty
		return
	}
	gen := s.gen
	s.stopEmptyTimerLocked()
	s.emptyTimer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen == s.gen && s.stack.Exhausted() {
			s.state = StateEmpty
		}
	})
}

func (s *Session) stopEmptyTimerLocked() {
	if s.emptyTimer != nil {
		s.emptyTimer.Stop()
		s.emptyTimer = nil
	}
}

// resetTopLocked gives the new top card a fresh gesture and wakes Run so it
// listens to it.
func (s *Session) resetTopLocked() {
	s.gesture = nil
	if s.stack.Top() != nil {
		s.gesture = NewGesture(s.cfg.Gesture)
	}
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *Session) publish(o Outcome) {
	for {
		select {
		case s.outcomes <- o:
			return
		default:
		}
		select {
		case <-s.outcomes:
		default:
		}
	}
}
