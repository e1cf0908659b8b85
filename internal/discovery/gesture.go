package discovery

import (
	"math"
	"sync"

	"github.com/gdugdh24/partnerfinder/internal/domain"
)

type GestureState int

const (
	GestureIdle GestureState = iota
	GestureDragging
	GestureCommitting
	GestureResetting
)

func (s GestureState) String() string {
	switch s {
	case GestureIdle:
		return "idle"
	case GestureDragging:
		return "dragging"
	case GestureCommitting:
		return "committing"
	case GestureResetting:
		return "resetting"
	default:
		return "unknown"
	}
}

func (s GestureState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Transform is the visual offset of a card relative to its resting place.
type Transform struct {
	TranslateX  float64 `json:"translate_x"`
	TranslateY  float64 `json:"translate_y"`
	RotationDeg float64 `json:"rotation_deg"`
}

type GestureConfig struct {
	ScreenWidth float64 `json:"screen_width"`
	// CommitFraction of ScreenWidth a horizontal drag must exceed to commit.
	CommitFraction  float64 `json:"commit_fraction"`
	RotationDivisor float64 `json:"rotation_divisor"`
	VerticalDamping float64 `json:"vertical_damping"`
}

func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		ScreenWidth:     390,
		CommitFraction:  0.15,
		RotationDivisor: 15,
		VerticalDamping: 0.3,
	}
}

func (c GestureConfig) CommitThreshold() float64 {
	return c.ScreenWidth * c.CommitFraction
}

type CommandKind int

const (
	CommandReset CommandKind = iota
	CommandCommit
)

// Command is the terminal event of one gesture, handed to the logic task.
type Command struct {
	Kind      CommandKind
	Direction domain.Direction

	reply chan Outcome
}

// Gesture tracks the drag of a single card. Input methods are cheap and
// never block; the terminal decision is posted once to Commands.
type Gesture struct {
	mu        sync.Mutex
	cfg       GestureConfig
	state     GestureState
	direction domain.Direction
	transform Transform
	commands  chan Command
}

func NewGesture(cfg GestureConfig) *Gesture {
	return &Gesture{cfg: cfg, commands: make(chan Command, 1)}
}

// Commands yields at most one command per gesture.
func (g *Gesture) Commands() <-chan Command {
	return g.commands
}

func (g *Gesture) State() GestureState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Direction is the committed direction, empty unless Committing.
func (g *Gesture) Direction() domain.Direction {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.direction
}

func (g *Gesture) Transform() Transform {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.transform
}

func (g *Gesture) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GestureIdle {
		return ErrGestureBusy
	}
	g.state = GestureDragging
	g.transform = Transform{}
	return nil
}

// Move sets the drag translation measured from the drag origin.
func (g *Gesture) Move(dx, dy float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GestureDragging {
		return ErrGestureBusy
	}
	g.transform = Transform{
		TranslateX:  dx,
		TranslateY:  dy * g.cfg.VerticalDamping,
		RotationDeg: dx / g.cfg.RotationDivisor,
	}
	return nil
}

// Release ends the drag and returns the resulting state.
func (g *Gesture) Release() (GestureState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GestureDragging {
		return g.state, ErrGestureBusy
	}

	dx := g.transform.TranslateX
	if math.Abs(dx) > g.cfg.CommitThreshold() {
		direction := domain.DirectionReject
		if dx > 0 {
			direction = domain.DirectionAccept
		}
		g.commitLocked(direction, nil)
		return g.state, nil
	}

	g.state = GestureResetting
	g.postLocked(Command{Kind: CommandReset})
	return g.state, nil
}

// Commit triggers a decision without a drag, as the action buttons do.
func (g *Gesture) Commit(direction domain.Direction) error {
	return g.commit(direction, nil)
}

func (g *Gesture) commit(direction domain.Direction, reply chan Outcome) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GestureIdle {
		return ErrGestureBusy
	}
	g.commitLocked(direction, reply)
	return nil
}

func (g *Gesture) commitLocked(direction domain.Direction, reply chan Outcome) {
	sign := 1.0
	if direction == domain.DirectionReject {
		sign = -1
	}
	offscreen := sign * g.cfg.ScreenWidth * 1.5

	g.state = GestureCommitting
	g.direction = direction
	g.transform = Transform{
		TranslateX:  offscreen,
		TranslateY:  g.transform.TranslateY,
		RotationDeg: offscreen / g.cfg.RotationDivisor,
	}
	g.postLocked(Command{Kind: CommandCommit, Direction: direction, reply: reply})
}

// postLocked puts cmd in the slot, displacing an unconsumed earlier command.
func (g *Gesture) postLocked(cmd Command) {
	for {
		select {
		case g.commands <- cmd:
			return
		default:
		}
		select {
		case stale := <-g.commands:
			stale.respond(Outcome{Direction: stale.Direction, Err: ErrStaleCard})
		default:
		}
	}
}

func (c Command) respond(o Outcome) {
	if c.reply == nil {
		return
	}
	select {
	case c.reply <- o:
	default:
	}
}

// Settle finishes a reset and makes the card draggable again.
func (g *Gesture) Settle() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == GestureResetting {
		g.state = GestureIdle
		g.transform = Transform{}
	}
}

// Rearm brings a committed card back when its decision was not recorded.
func (g *Gesture) Rearm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == GestureCommitting {
		g.state = GestureIdle
		g.direction = ""
		g.transform = Transform{}
	}
}
