package ui

import (
	"fmt"

	"github.com/diegok/airhockey/internal/game"
	"github.com/gdamore/tcell/v2"
)

const (
	PaddleChar = '\u2588' // █
	PuckChar   = '\u25CF' // ●
)

// MenuView is what the menu screen shows
type MenuView struct {
	Notice      string
	JoinAddr    string
	Port        int
	PointsToWin int
	Difficulty  int
}

// WaitingView is what the screen shows while a session has no peer yet
type WaitingView struct {
	Hosting   bool
	Addr      string   // where the guest dials, or where the host listens
	Addresses []string // addresses a guest can join with, host only
	State     string
}

// MatchView is everything needed to draw a running match
type MatchView struct {
	World        *game.World
	Labels       [2]string // scoreboard names for Paddle1 and Paddle2
	Status       string
	CanRestart   bool
	Disconnected bool // the peer is gone and the match is frozen
}

// DisconnectedHint replaces the usual hint once the peer is gone
const DisconnectedHint = "Connection lost. Press any key for the menu"

// Renderer handles rendering all game screens
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer with the given screen
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Layout returns where the rink is drawn on the current screen
func (r *Renderer) Layout(rink game.Rink) Layout {
	w, h := r.screen.Size()
	return NewLayout(w, h, rink)
}

// RenderMenu displays the start menu
func (r *Renderer) RenderMenu(v MenuView) {
	r.screen.Clear()
	_, screenH := r.screen.Size()

	titleStyle := tcell.StyleDefault.Bold(true).Foreground(tcell.ColorTeal)
	r.screen.DrawCentered(screenH/2-7, "=== AIR HOCKEY ===", titleStyle)

	itemStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	keyStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	joinAddr := v.JoinAddr
	if joinAddr == "" {
		joinAddr = "localhost"
	}
	items := []struct{ key, text string }{
		{"o", fmt.Sprintf("play offline (difficulty %d)", v.Difficulty)},
		{"h", fmt.Sprintf("host a match on port %d", v.Port)},
		{"j", "join " + joinAddr},
		{"q", "quit"},
	}
	w, _ := r.screen.Size()
	x := (w - 32) / 2
	for i, it := range items {
		y := screenH/2 - 3 + i*2
		r.screen.DrawText(x, y, "["+it.key+"]", keyStyle)
		r.screen.DrawText(x+4, y, it.text, itemStyle)
	}

	ptText := fmt.Sprintf("First to %d wins", v.PointsToWin)
	r.screen.DrawCentered(screenH/2+6, ptText, tcell.StyleDefault.Foreground(tcell.ColorGray))

	if v.Notice != "" {
		r.screen.DrawCentered(screenH-3, v.Notice, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true))
	}

	r.screen.Show()
}

// RenderWaiting displays the screen shown until the peer is there
func (r *Renderer) RenderWaiting(v WaitingView) {
	r.screen.Clear()
	_, screenH := r.screen.Size()

	titleStyle := tcell.StyleDefault.Bold(true).Foreground(tcell.ColorTeal)
	r.screen.DrawCentered(screenH/2-6, "AIR HOCKEY", titleStyle)

	waitStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	if v.Hosting {
		r.screen.DrawCentered(screenH/2-3, "Waiting for opponent…", waitStyle)
		labelStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
		addrStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen)
		r.screen.DrawCentered(screenH/2-1, "Join with:", labelStyle)
		for i, addr := range v.Addresses {
			r.screen.DrawCentered(screenH/2+i, "airhockey --join "+addr, addrStyle)
		}
	} else {
		r.screen.DrawCentered(screenH/2-3, fmt.Sprintf("Connecting to %s…", v.Addr), waitStyle)
	}

	if v.State != "" {
		r.screen.DrawCentered(screenH-4, "session: "+v.State, tcell.StyleDefault.Foreground(tcell.ColorDarkGray))
	}
	r.screen.DrawCentered(screenH-2, "Press 'd' to cancel", tcell.StyleDefault.Foreground(tcell.ColorGray))

	r.screen.Show()
}

// RenderMatch displays the rink, both paddles, the puck and the scoreboard
func (r *Renderer) RenderMatch(v MatchView) {
	r.screen.Clear()
	screenW, screenH := r.screen.Size()
	w := v.World
	l := NewLayout(screenW, screenH, w.Rink)

	r.renderRink(l)

	for _, p := range w.Paddles {
		r.renderBody(l, &p.Body, PaddleStyle(p.ID).Bold(true), PaddleChar)
	}
	r.renderBody(l, w.Puck, tcell.StyleDefault.Foreground(tcell.ColorWhite), PuckChar)

	r.renderScoreboard(v, screenW)

	if msg := Message(w.Match, v.CanRestart); msg != "" {
		msgStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
		r.screen.DrawCentered(l.Y+l.H/2-2, msg, msgStyle)
	}
	hint := Hint(w.Match, v.CanRestart)
	if v.Disconnected {
		hint = DisconnectedHint
	}
	if hint != "" {
		r.screen.DrawCentered(l.Y+l.H/2+2, hint, tcell.StyleDefault.Foreground(tcell.ColorGreen))
	}

	// Status bar at bottom
	statusY := screenH - 1
	statusStyle := tcell.StyleDefault.Background(tcell.ColorDarkGray).Foreground(tcell.ColorWhite)
	r.screen.FillRect(0, statusY, screenW, 1, statusStyle, ' ')
	statusText := fmt.Sprintf(" %s | First to %d wins", v.Status, w.Match.PointsToWin)
	r.screen.DrawText(0, statusY, statusText, statusStyle)

	r.screen.Show()
}

// renderRink draws the border with both goal mouths cut out and the center line
func (r *Renderer) renderRink(l Layout) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	r.screen.DrawBox(l.X-1, l.Y-1, l.W+2, l.H+2, borderStyle)

	sx, _ := l.Scale()
	left := (l.Rink.Width - l.Rink.GoalWidth) / 2
	gx0 := l.X + int(left*sx)
	gx1 := l.X + int((left+l.Rink.GoalWidth)*sx) - 1
	r.screen.DrawHorizontalLine(gx0, gx1, l.Y-1, PaddleStyle(game.Paddle1), '═')
	r.screen.DrawHorizontalLine(gx0, gx1, l.Y+l.H, PaddleStyle(game.Paddle2), '═')

	lineStyle := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	mid := l.Y + l.H/2
	for x := l.X; x < l.X+l.W; x += 2 {
		r.screen.SetCell(x, mid, lineStyle, '-')
	}
}

func (r *Renderer) renderBody(l Layout, b *game.Body, style tcell.Style, ch rune) {
	cx, cy := l.ToScreen(b.Pos)
	sx, sy := l.Scale()
	r.screen.FillEllipse(cx, cy, b.Radius*sx, b.Radius*sy, style, ch)
}

// renderScoreboard draws a stadium-style scoreboard at top center
func (r *Renderer) renderScoreboard(v MatchView, screenW int) {
	// Scoreboard format: [ THEM 3 - 2 YOU ]
	scores := v.World.Match.Scores
	topLabel, bottomLabel := v.Labels[game.Paddle1], v.Labels[game.Paddle2]
	topScore := fmt.Sprintf("%d", scores[game.Paddle1])
	bottomScore := fmt.Sprintf("%d", scores[game.Paddle2])

	text := fmt.Sprintf("[ %s %s - %s %s ]", topLabel, topScore, bottomScore, bottomLabel)
	x := (screenW - textWidth(text)) / 2

	base := tcell.StyleDefault.Background(tcell.ColorDarkGray).Foreground(tcell.ColorWhite).Bold(true)
	topStyle := base.Foreground(PaddleColor(game.Paddle1))
	bottomStyle := base.Foreground(PaddleColor(game.Paddle2))

	parts := []struct {
		text  string
		style tcell.Style
	}{
		{"[ ", base},
		{topLabel, topStyle},
		{" " + topScore + " - " + bottomScore + " ", base},
		{bottomLabel, bottomStyle},
		{" ]", base},
	}
	for _, p := range parts {
		r.screen.DrawText(x, 0, p.text, p.style)
		x += textWidth(p.text)
	}
}

// Message is the banner shown over the rink for the match state, from the
// local player's side.
func Message(m *game.Match, canRestart bool) string {
	if m.Paused {
		return "PAUSED"
	}
	switch m.Phase {
	case game.PhaseGoalPause:
		return "GOAL!"
	case game.PhaseFinished:
		if m.Winner == game.Paddle2 {
			return "You Win!"
		}
		return "You Lose!"
	case game.PhaseIdle:
		if canRestart {
			return "Ready"
		}
	}
	return ""
}

// Hint tells the player which key moves the match on, if any
func Hint(m *game.Match, canRestart bool) string {
	if !canRestart {
		if m.Phase == game.PhaseFinished {
			return "Waiting for the host to restart"
		}
		return ""
	}
	switch {
	case m.Paused:
		return "Press 'p' to resume | 'r' to restart"
	case m.Phase == game.PhaseFinished:
		return "Press 'r' to play again | 'q' for the menu"
	case m.Phase == game.PhaseIdle:
		return "Press 'r' to start"
	}
	return ""
}
