package game

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Goal identifies which end of the rink the puck left through.
type Goal int

const (
	NoGoal Goal = iota
	GoalTop
	GoalBottom
)

// Rink is the rectangular play area. The origin is the top-left corner and
// y grows downwards.
type Rink struct {
	Width     float64
	Height    float64
	GoalWidth float64
}

// DefaultRink returns the standard rink size.
func DefaultRink() Rink {
	return Rink{Width: RinkWidth, Height: RinkHeight, GoalWidth: RinkWidth * GoalWidthRatio}
}

// Center returns the center spot
func (r Rink) Center() mgl64.Vec2 {
	return mgl64.Vec2{r.Width / 2, r.Height / 2}
}

// Mid returns the y coordinate of the center line
func (r Rink) Mid() float64 {
	return r.Height / 2
}

// InGoalWindow reports whether x lies within the scoring window of either end.
func (r Rink) InGoalWindow(x float64) bool {
	left := (r.Width - r.GoalWidth) / 2
	return x >= left && x <= left+r.GoalWidth
}

// Contains reports whether p lies inside the rink rectangle.
func (r Rink) Contains(p mgl64.Vec2) bool {
	return p[0] >= 0 && p[0] <= r.Width && p[1] >= 0 && p[1] <= r.Height
}

// CollideSideWalls bounces b off the left and right edges. The x component is
// made to point back into the rink and the position is clamped inside.
func CollideSideWalls(b *Body, r Rink) bool {
	switch {
	case b.Pos[0]-b.Radius < 0:
		b.Pos[0] = b.Radius
		if b.Vel[0] < 0 {
			b.Vel[0] = -b.Vel[0]
		}
		return true
	case b.Pos[0]+b.Radius > r.Width:
		b.Pos[0] = r.Width - b.Radius
		if b.Vel[0] > 0 {
			b.Vel[0] = -b.Vel[0]
		}
		return true
	}
	return false
}

// CollideEnds handles the puck against the top and bottom edges. Outside the
// goal window the puck bounces; inside it passes, bouncing only off the posts,
// and once its center is over the line the crossed goal is returned.
func CollideEnds(puck *Body, r Rink) (bool, Goal) {
	if r.InGoalWindow(puck.Pos[0]) {
		switch {
		case puck.Pos[1] < 0:
			return false, GoalTop
		case puck.Pos[1] > r.Height:
			return false, GoalBottom
		}
		return collidePosts(puck, r), NoGoal
	}

	switch {
	case puck.Pos[1]-puck.Radius < 0:
		puck.Pos[1] = puck.Radius
		if puck.Vel[1] < 0 {
			puck.Vel[1] = -puck.Vel[1]
		}
		return true, NoGoal
	case puck.Pos[1]+puck.Radius > r.Height:
		puck.Pos[1] = r.Height - puck.Radius
		if puck.Vel[1] > 0 {
			puck.Vel[1] = -puck.Vel[1]
		}
		return true, NoGoal
	}
	return false, NoGoal
}

// Posts returns the four corners where an end wall meets a goal mouth.
func (r Rink) Posts() [4]mgl64.Vec2 {
	left := (r.Width - r.GoalWidth) / 2
	right := left + r.GoalWidth
	return [4]mgl64.Vec2{{left, 0}, {right, 0}, {left, r.Height}, {right, r.Height}}
}

// collidePosts bounces a puck in the goal mouth off a post it overlaps. The
// velocity is reflected about the line from the post to the puck center and
// the puck is moved out to touch the post.
func collidePosts(puck *Body, r Rink) bool {
	for _, post := range r.Posts() {
		d := puck.Pos.Sub(post)
		dist := d.Len()
		if !(dist < puck.Radius) || dist == 0 {
			continue
		}
		n := d.Mul(1 / dist)
		if along := puck.Vel.Dot(n); along < 0 {
			puck.Vel = puck.Vel.Sub(n.Mul(2 * along))
		}
		puck.Pos = post.Add(n.Mul(puck.Radius))
		return true
	}
	return false
}

// CollidePaddle resolves contact between the puck and a paddle treated as
// immovable. The puck velocity is reflected about the line of centers, gains
// a share of the paddle's velocity, is clamped to maxSpeed, and the puck is
// pushed out of the overlap along the same line.
// fallback is the contact normal used when both centers coincide.
func CollidePaddle(puck, paddle *Body, maxSpeed float64, fallback mgl64.Vec2) bool {
	d := puck.Pos.Sub(paddle.Pos)
	minDist := puck.Radius + paddle.Radius
	dist := d.Len()
	if !(dist <= minDist) {
		return false
	}

	n := fallback
	if dist > 0 {
		n = d.Mul(1 / dist)
	}

	if along := puck.Vel.Dot(n); along < 0 {
		puck.Vel = puck.Vel.Sub(n.Mul(2 * along))
	}
	puck.Vel = ClampSpeed(puck.Vel.Add(paddle.Vel.Mul(PaddleTransfer)), maxSpeed)
	puck.Pos = paddle.Pos.Add(n.Mul(minDist + separationSlop))
	return true
}

// keepInside clamps a position back between the side walls without touching
// the velocity.
func keepInside(b *Body, r Rink) {
	if b.Pos[0] < b.Radius {
		b.Pos[0] = b.Radius
	}
	if b.Pos[0] > r.Width-b.Radius {
		b.Pos[0] = r.Width - b.Radius
	}
	if r.InGoalWindow(b.Pos[0]) {
		return
	}
	if b.Pos[1] < b.Radius {
		b.Pos[1] = b.Radius
	}
	if b.Pos[1] > r.Height-b.Radius {
		b.Pos[1] = r.Height - b.Radius
	}
}
