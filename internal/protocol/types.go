package protocol

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Header identifies the type of network message
type Header string

const (
	JoinGame   Header = "JOIN_GAME"
	GameUpdate Header = "GAME_UPDATE"
	PlayerMove Header = "PLAYER_MOVE"
	PlayerPos  Header = "PLAYER_POS"
	Goal       Header = "GOAL"
	GameOver   Header = "GAME_OVER"
)

// ErrMalformed is returned for frames with an unknown header or a body that
// does not decode. The stream itself is still usable.
var ErrMalformed = errors.New("malformed message")

// Message is the wrapper for all network messages
type Message struct {
	Header Header
	Body   interface{}
}

// Point is a position or velocity in rink units.
type Point struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

// PointFrom converts a vector to its wire form.
func PointFrom(v mgl64.Vec2) Point {
	return Point{X: v[0], Y: v[1]}
}

// Vec returns the point as a vector
func (p Point) Vec() mgl64.Vec2 {
	return mgl64.Vec2{p.X, p.Y}
}

// JoinGameBody is sent by a guest right after connecting.
type JoinGameBody struct{}

// GameUpdateBody is the host's per-tick snapshot, already in the guest's frame.
type GameUpdateBody struct {
	Ball     Point `msgpack:"ball"`
	Opponent Point `msgpack:"opponent"`
}

// PlayerMoveBody reports the guest's paddle.
type PlayerMoveBody struct {
	Rect     Point `msgpack:"rect"`
	Velocity Point `msgpack:"velocity"`
}

// PlayerPosBody tells the guest where its own paddle is.
type PlayerPosBody struct {
	Rect Point `msgpack:"rect"`
}

// GoalBody carries the score pair in the receiver's frame, indexed like the
// paddles: the receiver's own score comes second.
type GoalBody struct {
	Scores [2]int `msgpack:"scores"`
}

// GameOverBody ends the match; Winner is true when the receiving guest won.
type GameOverBody struct {
	Winner bool `msgpack:"winner"`
}

// Known reports whether h is a header this protocol understands.
func (h Header) Known() bool {
	switch h {
	case JoinGame, GameUpdate, PlayerMove, PlayerPos, Goal, GameOver:
		return true
	}
	return false
}

// NewJoinGame builds a JOIN_GAME message
func NewJoinGame() *Message {
	return &Message{Header: JoinGame, Body: JoinGameBody{}}
}

// NewGameUpdate builds a GAME_UPDATE message
func NewGameUpdate(ball, opponent mgl64.Vec2) *Message {
	return &Message{Header: GameUpdate, Body: GameUpdateBody{Ball: PointFrom(ball), Opponent: PointFrom(opponent)}}
}

// NewPlayerMove builds a PLAYER_MOVE message
func NewPlayerMove(pos, vel mgl64.Vec2) *Message {
	return &Message{Header: PlayerMove, Body: PlayerMoveBody{Rect: PointFrom(pos), Velocity: PointFrom(vel)}}
}

// NewPlayerPos builds a PLAYER_POS message
func NewPlayerPos(pos mgl64.Vec2) *Message {
	return &Message{Header: PlayerPos, Body: PlayerPosBody{Rect: PointFrom(pos)}}
}

// NewGoal builds a GOAL message
func NewGoal(scores [2]int) *Message {
	return &Message{Header: Goal, Body: GoalBody{Scores: scores}}
}

// NewGameOver builds a GAME_OVER message
func NewGameOver(winner bool) *Message {
	return &Message{Header: GameOver, Body: GameOverBody{Winner: winner}}
}
