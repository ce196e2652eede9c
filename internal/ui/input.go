package ui

import (
	"math"

	"github.com/diegok/airhockey/internal/game"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// Action is a key press the app reacts to outside of paddle steering
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionBack
	ActionConfirm
	ActionPause
	ActionRestart
	ActionOffline
	ActionHost
	ActionJoin
	ActionDisconnect
)

// NudgeStep is how far, in rink units, an arrow key moves the paddle target
const NudgeStep = 20.0

// cellAspect is how much taller than wide a terminal cell is
const cellAspect = 2.0

// KeyToAction converts a key event to an app action
func KeyToAction(key tcell.Key, r rune) Action {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyEnter:
		return ActionConfirm
	case tcell.KeyRune:
		switch r {
		case 'q', 'Q':
			return ActionBack
		case 'p', 'P', ' ':
			return ActionPause
		case 'r', 'R':
			return ActionRestart
		case 'o', 'O':
			return ActionOffline
		case 'h', 'H':
			return ActionHost
		case 'j', 'J':
			return ActionJoin
		case 'd', 'D':
			return ActionDisconnect
		}
	}
	return ActionNone
}

// KeyToNudge converts an arrow key to a paddle target offset
func KeyToNudge(key tcell.Key) (mgl64.Vec2, bool) {
	switch key {
	case tcell.KeyUp:
		return mgl64.Vec2{0, -NudgeStep}, true
	case tcell.KeyDown:
		return mgl64.Vec2{0, NudgeStep}, true
	case tcell.KeyLeft:
		return mgl64.Vec2{-NudgeStep, 0}, true
	case tcell.KeyRight:
		return mgl64.Vec2{NudgeStep, 0}, true
	}
	return mgl64.Vec2{}, false
}

// Layout places the rink on the terminal. X, Y, W and H are the cells inside
// the rink border.
type Layout struct {
	X, Y int
	W, H int
	Rink game.Rink
}

// NewLayout fits the rink into a screen of the given size, keeping its
// proportions. One row on top is left for the scoreboard and one at the
// bottom for the status bar.
func NewLayout(screenW, screenH int, rink game.Rink) Layout {
	rows := screenH - 4
	h := rows
	w := int(math.Round(float64(h) * rink.Width / rink.Height * cellAspect))
	if maxW := screenW - 2; w > maxW {
		w = maxW
		h = int(math.Round(float64(w) * rink.Height / rink.Width / cellAspect))
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	y := 2
	if rows > h {
		y += (rows - h) / 2
	}
	return Layout{X: (screenW - w) / 2, Y: y, W: w, H: h, Rink: rink}
}

// Scale returns how many cells one rink unit spans on each axis
func (l Layout) Scale() (float64, float64) {
	return float64(l.W) / l.Rink.Width, float64(l.H) / l.Rink.Height
}

// ToScreen maps a rink point to fractional cell coordinates
func (l Layout) ToScreen(p mgl64.Vec2) (float64, float64) {
	sx, sy := l.Scale()
	return float64(l.X) + p[0]*sx, float64(l.Y) + p[1]*sy
}

// ToRink maps the center of a cell to rink coordinates
func (l Layout) ToRink(x, y int) mgl64.Vec2 {
	sx, sy := l.Scale()
	return mgl64.Vec2{
		(float64(x-l.X) + 0.5) / sx,
		(float64(y-l.Y) + 0.5) / sy,
	}
}

// MouseTarget converts a mouse event to a paddle target in rink coordinates
func MouseTarget(ev *tcell.EventMouse, l Layout) mgl64.Vec2 {
	x, y := ev.Position()
	return l.ToRink(x, y)
}
