// Package netsync advances a World once per tick for one of the three ways a
// match can be played: offline against the AI, as the authoritative host or
// as a guest mirroring the host.
package netsync

import (
	"github.com/diegok/airhockey/internal/game"
	"github.com/diegok/airhockey/internal/protocol"
	"github.com/diegok/airhockey/internal/session"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Mode is the way the local process takes part in a match
type Mode int

const (
	Offline Mode = iota
	Host
	Guest
)

func (m Mode) String() string {
	switch m {
	case Offline:
		return "offline"
	case Host:
		return "host"
	case Guest:
		return "guest"
	}
	return "unknown"
}

// Transport is the part of a session the synchronizer needs.
type Transport interface {
	State() session.State
	Poll() ([]*protocol.Message, error)
	Send(msg *protocol.Message) error
}

// Synchronizer runs one tick of a match. The local human always plays
// Paddle2, at the bottom of the screen; the host sends the guest a mirrored
// view so that the same holds on the other side.
type Synchronizer struct {
	World *game.World
	mode  Mode
	link  Transport
	log   logrus.FieldLogger
	tick  func(game.Intent) (game.Events, error)
}

// NewOffline creates a synchronizer for a local match against the AI.
func NewOffline(w *game.World, log logrus.FieldLogger) *Synchronizer {
	s := &Synchronizer{World: w, mode: Offline, log: log}
	w.Paddle(game.Paddle1).Control = game.ControlAI
	s.tick = s.tickOffline
	return s
}

// NewHost creates a synchronizer that simulates the match and feeds the
// guest on link.
func NewHost(w *game.World, link Transport, log logrus.FieldLogger) *Synchronizer {
	s := &Synchronizer{World: w, mode: Host, link: link, log: log}
	w.Paddle(game.Paddle1).Control = game.ControlRemote
	s.tick = s.tickHost
	return s
}

// NewGuest creates a synchronizer that mirrors the host's match on link.
func NewGuest(w *game.World, link Transport, log logrus.FieldLogger) *Synchronizer {
	s := &Synchronizer{World: w, mode: Guest, link: link, log: log}
	w.Paddle(game.Paddle1).Control = game.ControlRemote
	s.tick = s.tickGuest
	return s
}

// Mode returns how the match is played
func (s *Synchronizer) Mode() Mode {
	return s.mode
}

// Tick advances the match by one tick. Errors wrapping
// game.ErrSimulationInvariant leave the match reset to idle; a
// *session.TransportError means the peer is gone.
func (s *Synchronizer) Tick(in game.Intent) (game.Events, error) {
	return s.tick(in)
}

func (s *Synchronizer) tickOffline(in game.Intent) (game.Events, error) {
	ev := s.applyLocal(in)
	step, err := s.step()
	return ev | step, err
}

// applyLocal handles the intents of the local player on the authoritative
// side.
func (s *Synchronizer) applyLocal(in game.Intent) game.Events {
	w := s.World
	var ev game.Events
	if in.HasTarget {
		w.Aim(game.Paddle2, in.Target)
	}
	if in.Pause {
		w.Match.TogglePause()
	}
	if in.Restart && w.Restart() {
		ev |= game.EventRestart
	}
	return ev
}

func (s *Synchronizer) step() (game.Events, error) {
	ev, err := s.World.Step()
	if err != nil {
		s.log.WithError(err).Error("simulation reset")
		s.World.Reset()
		return ev, err
	}
	return ev, nil
}

func (s *Synchronizer) tickHost(in game.Intent) (game.Events, error) {
	w := s.World
	msgs, err := s.link.Poll()
	for _, msg := range msgs {
		s.hostReceive(msg)
	}
	if err != nil {
		return 0, err
	}
	if s.link.State() != session.Active {
		return 0, nil
	}

	ev := s.applyLocal(in)
	step, err := s.step()
	ev |= step

	if ev.Has(game.EventRestart) {
		s.send(protocol.NewGoal([2]int{}))
	}
	if ev.Has(game.EventRestart) || ev.Has(game.EventResume) {
		s.send(protocol.NewPlayerPos(game.Mirror(w.Paddle(game.Paddle1).Pos, w.Rink)))
	}
	if ev.Has(game.EventGoal) || (w.Match.Phase == game.PhasePlaying && !w.Match.Paused) {
		s.send(protocol.NewGameUpdate(
			game.Mirror(w.Puck.Pos, w.Rink),
			game.Mirror(w.Paddle(game.Paddle2).Pos, w.Rink),
		))
	}
	if ev.Has(game.EventGoal) {
		s.send(protocol.NewGoal(mirrorScores(w.Match.Scores)))
	}
	if ev.Has(game.EventGameOver) {
		s.send(protocol.NewGameOver(w.Match.Winner == game.Paddle1))
	}
	return ev, err
}

func (s *Synchronizer) hostReceive(msg *protocol.Message) {
	w := s.World
	switch body := msg.Body.(type) {
	case protocol.JoinGameBody:
		if w.Start() {
			s.log.Info("guest joined, match started")
		}
	case protocol.PlayerMoveBody:
		if w.Match.Phase != game.PhasePlaying || w.Match.Paused {
			return
		}
		reported := game.Mirror(body.Rect.Vec(), w.Rink)
		w.PlaceRemote(game.Paddle1, reported, game.MirrorVel(body.Velocity.Vec()))
		if placed := w.Paddle(game.Paddle1).Pos; placed != reported {
			s.send(protocol.NewPlayerPos(game.Mirror(placed, w.Rink)))
		}
	default:
		s.log.WithField("header", msg.Header).Debug("ignoring message")
	}
}

func (s *Synchronizer) tickGuest(in game.Intent) (game.Events, error) {
	w := s.World
	var ev game.Events
	msgs, err := s.link.Poll()
	for _, msg := range msgs {
		ev |= s.guestReceive(msg)
	}
	if err != nil {
		return ev, err
	}

	if in.Pause || in.Restart {
		s.log.Debug("pause and restart belong to the host")
	}
	if s.link.State() != session.Active || w.Match.Phase != game.PhasePlaying {
		return ev, nil
	}

	p := w.Paddle(game.Paddle2)
	if in.HasTarget {
		w.Aim(game.Paddle2, in.Target)
	}
	before := p.Pos
	w.MovePaddle(p)
	if in.HasTarget || p.Pos != before {
		s.send(protocol.NewPlayerMove(p.Pos, p.Vel))
	}
	return ev, nil
}

func (s *Synchronizer) guestReceive(msg *protocol.Message) game.Events {
	w := s.World
	m := w.Match
	var ev game.Events
	switch body := msg.Body.(type) {
	case protocol.GameUpdateBody:
		w.Puck.Pos = body.Ball.Vec()
		w.PlaceRemote(game.Paddle1, body.Opponent.Vec(), mgl64.Vec2{})
		wasFinished := m.Phase == game.PhaseFinished
		if m.ApplyPlaying() && wasFinished {
			ev |= game.EventRestart
		}
	case protocol.GoalBody:
		if body.Scores[0] > m.Scores[0] || body.Scores[1] > m.Scores[1] {
			ev |= game.EventGoal
		}
		m.ApplyScores(body.Scores, w.Now())
	case protocol.PlayerPosBody:
		p := w.Paddle(game.Paddle2)
		p.Pos = p.ClampToHalf(body.Rect.Vec(), w.Rink)
		p.Target = p.Pos
		p.Stop()
		if m.Phase == game.PhaseGoalPause {
			m.Resume()
			ev |= game.EventResume
		}
	case protocol.GameOverBody:
		winner := game.Paddle1
		if body.Winner {
			winner = game.Paddle2
		}
		m.ApplyFinished(winner)
		ev |= game.EventGameOver
	default:
		s.log.WithField("header", msg.Header).Debug("ignoring message")
	}
	return ev
}

func (s *Synchronizer) send(msg *protocol.Message) {
	if err := s.link.Send(msg); err != nil && !errors.Is(err, session.ErrNotConnected) {
		s.log.WithError(err).WithField("header", msg.Header).Warn("send failed")
	}
}

// mirrorScores swaps the score pair into the other side's frame.
func mirrorScores(sc [2]int) [2]int {
	return [2]int{sc[game.Paddle2], sc[game.Paddle1]}
}
