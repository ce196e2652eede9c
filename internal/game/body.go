package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Body is a moving circle: the puck, or the physical part of a paddle.
type Body struct {
	Pos    mgl64.Vec2
	Vel    mgl64.Vec2
	Radius float64
}

// NewBody creates a body at rest at the given position.
func NewBody(x, y, radius float64) *Body {
	return &Body{Pos: mgl64.Vec2{x, y}, Radius: radius}
}

// Speed returns the magnitude of the velocity
func (b *Body) Speed() float64 {
	return b.Vel.Len()
}

// Stop zeroes the velocity.
func (b *Body) Stop() {
	b.Vel = mgl64.Vec2{}
}

// ClampSpeed scales v down uniformly so that |v| <= max. Direction is kept.
func ClampSpeed(v mgl64.Vec2, max float64) mgl64.Vec2 {
	speed := v.Len()
	if speed <= max || speed == 0 {
		return v
	}
	return v.Mul(max / speed)
}

// Integrate clamps the body's speed to maxSpeed, then advances its
// position by velocity*dt.
func Integrate(b *Body, maxSpeed, dt float64) {
	b.Vel = ClampSpeed(b.Vel, maxSpeed)
	b.Pos = b.Pos.Add(b.Vel.Mul(dt))
}

// finite reports whether every component of the body is a real number.
func (b *Body) finite() bool {
	for _, f := range []float64{b.Pos[0], b.Pos[1], b.Vel[0], b.Vel[1]} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Mirror maps a rink position into the opposite player's frame of reference.
func Mirror(p mgl64.Vec2, rink Rink) mgl64.Vec2 {
	return mgl64.Vec2{rink.Width - p[0], rink.Height - p[1]}
}

// MirrorVel maps a velocity into the opposite player's frame of reference.
func MirrorVel(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v[0], -v[1]}
}
