package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Constants for the rink and the bodies in it. Speeds are in rink units per
// millisecond.
const (
	TickRate           = 60 // Ticks per second
	RinkWidth          = 360.0
	RinkHeight         = 600.0
	GoalWidthRatio     = 0.4
	PaddleRadius       = 22.0
	PuckRadius         = PaddleRadius - 3
	MaxPlayerSpeed     = 0.8
	MaxPuckSpeed       = 1.6
	PaddleTransfer     = 0.5 // share of paddle velocity handed to the puck on contact
	StartOffset        = 25.0
	DefaultPointsToWin = 7
	DefaultDifficulty  = 3
	DefaultGoalDelay   = 3 * time.Second

	separationSlop = 1e-3
)

// TickMillis is the simulated time covered by one tick.
const TickMillis = 1000.0 / TickRate

// ErrSimulationInvariant is returned when a tick leaves the world in an
// impossible state.
var ErrSimulationInvariant = errors.New("simulation invariant violated")

// Events records what happened during a tick, for sound and for the network.
type Events uint8

const (
	EventWallHit Events = 1 << iota
	EventPaddleHit
	EventGoal
	EventGameOver
	EventResume
	EventRestart
)

// Has reports whether all events in f are set
func (e Events) Has(f Events) bool {
	return e&f == f
}

// Intent is what the input side asks for during one tick. The zero value
// means no input.
type Intent struct {
	Pause     bool
	Restart   bool
	Target    mgl64.Vec2
	HasTarget bool
}

// Settings configures a new world.
type Settings struct {
	PointsToWin int
	Difficulty  int
	GoalDelay   time.Duration
	Controls    [2]ControlSource
}

// DefaultSettings is an offline match against the AI.
func DefaultSettings() Settings {
	return Settings{
		PointsToWin: DefaultPointsToWin,
		Difficulty:  DefaultDifficulty,
		GoalDelay:   DefaultGoalDelay,
		Controls:    [2]ControlSource{ControlAI, ControlHuman},
	}
}

// World owns every body of a match plus its score.
type World struct {
	Rink    Rink
	Puck    *Body
	Paddles [2]*Paddle
	Match   *Match
	AI      AI
	DT      float64
	Now     func() time.Time
}

// NewWorld creates an idle match with all bodies on their start positions.
func NewWorld(s Settings) *World {
	rink := DefaultRink()
	center := rink.Center()
	w := &World{
		Rink: rink,
		Puck: NewBody(center[0], center[1], PuckRadius),
		Paddles: [2]*Paddle{
			NewPaddle(Paddle1, s.Controls[Paddle1], rink),
			NewPaddle(Paddle2, s.Controls[Paddle2], rink),
		},
		Match: NewMatch(s.PointsToWin, s.GoalDelay),
		AI:    NewAI(s.Difficulty),
		DT:    TickMillis,
		Now:   time.Now,
	}
	return w
}

// Paddle returns the paddle with the given id
func (w *World) Paddle(id PaddleID) *Paddle {
	return w.Paddles[id]
}

// ResetBoard puts the puck on the center spot and the paddles on their
// start positions. Scores are kept.
func (w *World) ResetBoard() {
	w.Puck.Pos = w.Rink.Center()
	w.Puck.Stop()
	for _, p := range w.Paddles {
		p.Reset()
	}
}

// Start begins an idle match
func (w *World) Start() bool {
	if !w.Match.Start() {
		return false
	}
	w.ResetBoard()
	return true
}

// Restart clears the score and starts over.
func (w *World) Restart() bool {
	if !w.Match.Restart() {
		return false
	}
	w.ResetBoard()
	return true
}

// Reset abandons the match and returns it to idle.
func (w *World) Reset() {
	w.Match.Reset()
	w.ResetBoard()
}

// Aim sets the target of a human paddle. The target is kept inside the
// paddle's half.
func (w *World) Aim(id PaddleID, target mgl64.Vec2) {
	p := w.Paddles[id]
	p.Target = p.ClampToHalf(target, w.Rink)
}

// PlaceRemote applies a paddle state reported by the peer.
func (w *World) PlaceRemote(id PaddleID, pos, vel mgl64.Vec2) {
	p := w.Paddles[id]
	p.Pos = p.ClampToHalf(pos, w.Rink)
	p.Vel = ClampSpeed(vel, MaxPlayerSpeed)
}

// MovePaddle advances one paddle by one tick according to its control
// source. Remote paddles are positioned by the peer and do not move here.
func (w *World) MovePaddle(p *Paddle) {
	switch p.Control {
	case ControlHuman:
		p.Steer(w.DT)
	case ControlAI:
		p.Vel = w.AI.Velocity(p, w.Puck, w.Rink, w.DT)
	case ControlRemote:
		return
	}
	Integrate(&p.Body, MaxPlayerSpeed, w.DT)
	p.Confine(w.Rink)
	CollideSideWalls(&p.Body, w.Rink)
}

// Step runs one authoritative tick: paddles, puck, collisions, scoring.
func (w *World) Step() (Events, error) {
	m := w.Match
	if !m.Running() {
		return 0, nil
	}

	var ev Events
	if m.Phase == PhaseGoalPause {
		if !m.ResumeDue(w.Now()) {
			return 0, nil
		}
		w.ResetBoard()
		m.Resume()
		ev |= EventResume
	}

	for _, p := range w.Paddles {
		w.MovePaddle(p)
	}
	Integrate(w.Puck, MaxPuckSpeed, w.DT)

	if CollideSideWalls(w.Puck, w.Rink) {
		ev |= EventWallHit
	}
	hit, goal := CollideEnds(w.Puck, w.Rink)
	if hit {
		ev |= EventWallHit
	}
	if goal != NoGoal {
		return ev | w.score(goal), w.check()
	}

	for _, p := range w.Paddles {
		if CollidePaddle(w.Puck, &p.Body, MaxPuckSpeed, p.FaceNormal()) {
			keepInside(w.Puck, w.Rink)
			ev |= EventPaddleHit
		}
	}

	// A paddle can push the puck through its own goal mouth.
	if !w.Rink.Contains(w.Puck.Pos) {
		hit, goal := CollideEnds(w.Puck, w.Rink)
		if hit {
			ev |= EventWallHit
		}
		if goal != NoGoal {
			ev |= w.score(goal)
		}
	}

	return ev, w.check()
}

// score credits a goal to the opponent of the paddle defending the goal the
// puck went through.
func (w *World) score(goal Goal) Events {
	defender := Paddle2
	if goal == GoalTop {
		defender = Paddle1
	}
	m := w.Match
	if !m.ScoreGoal(defender.Opponent(), w.Now()) {
		return 0
	}
	if m.Phase == PhaseFinished {
		return EventGoal | EventGameOver
	}
	return EventGoal
}

// check verifies that every body holds real numbers.
func (w *World) check() error {
	if !w.Puck.finite() {
		return errors.Wrapf(ErrSimulationInvariant, "puck at %v moving %v", w.Puck.Pos, w.Puck.Vel)
	}
	for _, p := range w.Paddles {
		if !p.finite() {
			return errors.Wrapf(ErrSimulationInvariant, "paddle %d at %v moving %v", p.ID, p.Pos, p.Vel)
		}
	}
	return nil
}
