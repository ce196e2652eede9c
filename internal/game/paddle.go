package game

import "github.com/go-gl/mathgl/mgl64"

// PaddleID names one of the two paddles. It doubles as the index into the
// score pair.
type PaddleID int

const (
	NoPaddle PaddleID = -1
	Paddle1  PaddleID = 0 // upper half, defends the top goal
	Paddle2  PaddleID = 1 // lower half, defends the bottom goal
)

// Opponent returns the other paddle
func (id PaddleID) Opponent() PaddleID {
	if id == Paddle1 {
		return Paddle2
	}
	return Paddle1
}

// ControlSource selects what computes a paddle's next velocity.
type ControlSource int

const (
	ControlHuman ControlSource = iota
	ControlAI
	ControlRemote
)

func (c ControlSource) String() string {
	switch c {
	case ControlHuman:
		return "human"
	case ControlAI:
		return "ai"
	case ControlRemote:
		return "remote"
	}
	return "unknown"
}

type Paddle struct {
	Body
	ID      PaddleID
	Control ControlSource
	Start   mgl64.Vec2
	Target  mgl64.Vec2 // where a human wants the paddle to be
}

// NewPaddle creates a paddle at its start position for the given rink.
func NewPaddle(id PaddleID, control ControlSource, rink Rink) *Paddle {
	start := mgl64.Vec2{rink.Width / 2, rink.Height/4 - StartOffset}
	if id == Paddle2 {
		start = Mirror(start, rink)
	}
	p := &Paddle{
		Body:    Body{Radius: PaddleRadius},
		ID:      id,
		Control: control,
		Start:   start,
	}
	p.Reset()
	return p
}

// Reset puts the paddle back on its start position at rest
func (p *Paddle) Reset() {
	p.Pos = p.Start
	p.Target = p.Start
	p.Stop()
}

// Upper reports whether the paddle plays in the upper half of the rink.
func (p *Paddle) Upper() bool {
	return p.ID == Paddle1
}

// HalfBounds returns the range the paddle center may occupy on the y axis.
func (p *Paddle) HalfBounds(r Rink) (float64, float64) {
	if p.Upper() {
		return p.Radius, r.Mid() - p.Radius
	}
	return r.Mid() + p.Radius, r.Height - p.Radius
}

// InHalf reports whether point y lies on the paddle's side of the center line.
func (p *Paddle) InHalf(y float64, r Rink) bool {
	if p.Upper() {
		return y <= r.Mid()
	}
	return y >= r.Mid()
}

// ClampToHalf returns pt moved to the nearest point the paddle center may
// legally occupy.
func (p *Paddle) ClampToHalf(pt mgl64.Vec2, r Rink) mgl64.Vec2 {
	minY, maxY := p.HalfBounds(r)
	return mgl64.Vec2{
		clamp(pt[0], p.Radius, r.Width-p.Radius),
		clamp(pt[1], minY, maxY),
	}
}

// Confine keeps the paddle inside its half. A paddle pushing into the center
// line or its own end loses the vertical part of its velocity.
func (p *Paddle) Confine(r Rink) {
	minY, maxY := p.HalfBounds(r)
	if p.Pos[1] < minY {
		p.Pos[1] = minY
		p.Vel[1] = 0
	}
	if p.Pos[1] > maxY {
		p.Pos[1] = maxY
		p.Vel[1] = 0
	}
}

// Steer sets the velocity that brings the paddle to its target in one tick,
// limited by the paddle speed cap.
func (p *Paddle) Steer(dt float64) {
	p.Vel = ClampSpeed(p.Target.Sub(p.Pos).Mul(1/dt), MaxPlayerSpeed)
}

// FaceNormal is the direction the paddle pushes the puck when their centers
// coincide: away from the paddle's own goal.
func (p *Paddle) FaceNormal() mgl64.Vec2 {
	if p.Upper() {
		return mgl64.Vec2{0, 1}
	}
	return mgl64.Vec2{0, -1}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
