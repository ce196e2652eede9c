package ui

import (
	"github.com/diegok/airhockey/internal/game"
	"github.com/gdamore/tcell/v2"
)

// PaddleColors are indexed by game.PaddleID: the opponent is red, the local
// player blue.
var PaddleColors = [2]tcell.Color{
	tcell.ColorRed,
	tcell.ColorBlue,
}

type Screen struct {
	screen tcell.Screen
}

func NewScreen(s tcell.Screen) *Screen {
	return &Screen{screen: s}
}

// InitScreen opens the terminal with mouse motion reporting on.
func InitScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.EnableMouse(tcell.MouseMotionEvents)
	s.HideCursor()
	return NewScreen(s), nil
}

func (s *Screen) Size() (int, int) {
	return s.screen.Size()
}

func (s *Screen) Clear() {
	s.screen.Clear()
}

func (s *Screen) Show() {
	s.screen.Show()
}

func (s *Screen) Fini() {
	s.screen.DisableMouse()
	s.screen.Fini()
}

func (s *Screen) SetCell(x, y int, style tcell.Style, r rune) {
	s.screen.SetContent(x, y, r, nil, style)
}

func (s *Screen) DrawText(x, y int, text string, style tcell.Style) {
	i := 0
	for _, r := range text {
		s.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}

// DrawCentered draws text centered on row y
func (s *Screen) DrawCentered(y int, text string, style tcell.Style) {
	w, _ := s.screen.Size()
	s.DrawText((w-textWidth(text))/2, y, text, style)
}

func (s *Screen) DrawBox(x, y, w, h int, style tcell.Style) {
	const (
		topLeft     = '┌'
		topRight    = '┐'
		bottomLeft  = '└'
		bottomRight = '┘'
		horizontal  = '─'
		vertical    = '│'
	)

	s.screen.SetContent(x, y, topLeft, nil, style)
	s.screen.SetContent(x+w-1, y, topRight, nil, style)
	s.screen.SetContent(x, y+h-1, bottomLeft, nil, style)
	s.screen.SetContent(x+w-1, y+h-1, bottomRight, nil, style)

	s.DrawHorizontalLine(x+1, x+w-2, y, style, horizontal)
	s.DrawHorizontalLine(x+1, x+w-2, y+h-1, style, horizontal)

	for j := y + 1; j < y+h-1; j++ {
		s.screen.SetContent(x, j, vertical, nil, style)
		s.screen.SetContent(x+w-1, j, vertical, nil, style)
	}
}

func (s *Screen) FillRect(x, y, w, h int, style tcell.Style, r rune) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			s.screen.SetContent(x+dx, y+dy, r, nil, style)
		}
	}
}

func (s *Screen) DrawHorizontalLine(x1, x2, y int, style tcell.Style, r rune) {
	for x := x1; x <= x2; x++ {
		s.screen.SetContent(x, y, r, nil, style)
	}
}

// FillEllipse fills the cells whose centers fall inside the ellipse around
// (cx, cy). At least the center cell is always drawn.
func (s *Screen) FillEllipse(cx, cy, rx, ry float64, style tcell.Style, r rune) {
	x0, x1 := int(cx-rx), int(cx+rx)
	y0, y1 := int(cy-ry), int(cy+ry)
	drawn := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1 {
				s.screen.SetContent(x, y, r, nil, style)
				drawn = true
			}
		}
	}
	if !drawn {
		s.screen.SetContent(int(cx), int(cy), r, nil, style)
	}
}

func (s *Screen) PollEvent() tcell.Event {
	return s.screen.PollEvent()
}

func PaddleStyle(id game.PaddleID) tcell.Style {
	if id < game.Paddle1 || id > game.Paddle2 {
		return tcell.StyleDefault
	}
	return tcell.StyleDefault.Foreground(PaddleColors[id])
}

func PaddleColor(id game.PaddleID) tcell.Color {
	if id < game.Paddle1 || id > game.Paddle2 {
		return tcell.ColorWhite
	}
	return PaddleColors[id]
}

func textWidth(text string) int {
	return len([]rune(text))
}
