package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNewAI_ClampsDifficulty(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, MinDifficulty},
		{1, 1},
		{3, 3},
		{4, 4},
		{9, MaxDifficulty},
	}

	for _, tt := range tests {
		if got := NewAI(tt.in).Difficulty; got != tt.want {
			t.Errorf("NewAI(%d): expected difficulty %d, got %d", tt.in, tt.want, got)
		}
	}
}

// chase runs the AI against a stationary puck and returns the distance to it
// after every tick.
func chase(t *testing.T, difficulty int, puckPos mgl64.Vec2, ticks int) []float64 {
	t.Helper()
	rink := DefaultRink()
	p := NewPaddle(Paddle1, ControlAI, rink)
	puck := &Body{Pos: puckPos, Radius: PuckRadius}
	ai := NewAI(difficulty)

	dists := []float64{p.Pos.Sub(puck.Pos).Len()}
	for i := 0; i < ticks; i++ {
		p.Vel = ai.Velocity(p, puck, rink, TickMillis)
		if p.Speed() > MaxPlayerSpeed+1e-12 {
			t.Fatalf("AI speed %f exceeds cap", p.Speed())
		}
		Integrate(&p.Body, MaxPlayerSpeed, TickMillis)
		p.Confine(rink)
		dists = append(dists, p.Pos.Sub(puck.Pos).Len())
	}
	return dists
}

func TestAI_MaxDifficultyStrictlyApproaches(t *testing.T) {
	const eps = 1e-6
	dists := chase(t, MaxDifficulty, mgl64.Vec2{60, 240}, 200)

	for i := 1; i < len(dists); i++ {
		if dists[i-1] <= eps {
			return
		}
		if dists[i] >= dists[i-1] {
			t.Fatalf("distance did not decrease at tick %d: %f -> %f", i, dists[i-1], dists[i])
		}
	}
	t.Fatalf("paddle never reached the puck, last distance %f", dists[len(dists)-1])
}

func TestAI_LowerDifficultyIsSlower(t *testing.T) {
	target := mgl64.Vec2{180, 165}
	fast := chase(t, MaxDifficulty, target, 5)
	slow := chase(t, MinDifficulty, target, 5)

	if slow[5] <= fast[5] {
		t.Errorf("expected difficulty 1 to trail difficulty 4, got %f vs %f", slow[5], fast[5])
	}
}

func TestAI_ReturnsHomeWhenPuckInOtherHalf(t *testing.T) {
	rink := DefaultRink()
	p := NewPaddle(Paddle1, ControlAI, rink)
	p.Pos = mgl64.Vec2{50, 200}
	puck := &Body{Pos: mgl64.Vec2{300, 500}, Radius: PuckRadius}

	got := NewAI(MaxDifficulty).Target(p, puck, rink, TickMillis)

	if got != p.Start {
		t.Errorf("expected target home %v, got %v", p.Start, got)
	}
}

func TestAI_TargetsProjectedPuck(t *testing.T) {
	rink := DefaultRink()
	p := NewPaddle(Paddle1, ControlAI, rink)
	puck := &Body{Pos: mgl64.Vec2{100, 200}, Vel: mgl64.Vec2{0.3, -0.6}, Radius: PuckRadius}

	got := NewAI(MaxDifficulty).Target(p, puck, rink, 10)

	want := mgl64.Vec2{103, 194}
	if got.Sub(want).Len() > 1e-9 {
		t.Errorf("expected target %v, got %v", want, got)
	}
}

func TestAI_TargetStaysInHalf(t *testing.T) {
	rink := DefaultRink()
	p := NewPaddle(Paddle1, ControlAI, rink)
	// Just on the AI side of the line: the paddle may not follow it all the way.
	puck := &Body{Pos: mgl64.Vec2{180, rink.Mid() - 1}, Radius: PuckRadius}

	got := NewAI(MaxDifficulty).Target(p, puck, rink, TickMillis)

	if got[1] > rink.Mid()-PaddleRadius {
		t.Errorf("expected target inside the upper half, got %v", got)
	}
}
