package game

import "github.com/go-gl/mathgl/mgl64"

const (
	MinDifficulty = 1
	MaxDifficulty = 4
)

// AI drives a paddle by chasing the puck. It is purely reactive: it looks
// at where the puck is and where it will be one tick from now, nothing more.
type AI struct {
	Difficulty int
}

// NewAI creates a controller, clamping difficulty into the supported range.
func NewAI(difficulty int) AI {
	if difficulty < MinDifficulty {
		difficulty = MinDifficulty
	}
	if difficulty > MaxDifficulty {
		difficulty = MaxDifficulty
	}
	return AI{Difficulty: difficulty}
}

// Target picks the point the paddle should head for: the puck's projected
// position while it is in the paddle's half, otherwise home.
func (ai AI) Target(p *Paddle, puck *Body, r Rink, dt float64) mgl64.Vec2 {
	projected := puck.Pos.Add(puck.Vel.Mul(dt))
	if !p.InHalf(projected[1], r) {
		return p.Start
	}
	return p.ClampToHalf(projected, r)
}

// Velocity returns the velocity the paddle should take this tick. At the
// highest difficulty the paddle covers the whole gap in one tick (speed cap
// permitting); lower levels close a proportional share of it.
func (ai AI) Velocity(p *Paddle, puck *Body, r Rink, dt float64) mgl64.Vec2 {
	gain := float64(ai.Difficulty) / MaxDifficulty
	gap := ai.Target(p, puck, r, dt).Sub(p.Pos)
	return ClampSpeed(gap.Mul(gain/dt), MaxPlayerSpeed)
}
