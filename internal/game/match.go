package game

import "time"

// Phase is the match lifecycle stage. Pausing is tracked separately.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlaying
	PhaseGoalPause
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlaying:
		return "playing"
	case PhaseGoalPause:
		return "goal"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// Match holds the score and the match phase.
type Match struct {
	Scores      [2]int
	Phase       Phase
	Paused      bool
	GoalAt      time.Time
	LastScorer  PaddleID
	Winner      PaddleID
	PointsToWin int
	GoalDelay   time.Duration
}

// NewMatch creates an idle match.
func NewMatch(pointsToWin int, goalDelay time.Duration) *Match {
	return &Match{
		Phase:       PhaseIdle,
		LastScorer:  NoPaddle,
		Winner:      NoPaddle,
		PointsToWin: pointsToWin,
		GoalDelay:   goalDelay,
	}
}

// Start moves an idle match into play. It has no effect in any other phase.
func (m *Match) Start() bool {
	if m.Phase != PhaseIdle {
		return false
	}
	m.Phase = PhasePlaying
	return true
}

// Running reports whether the simulation should advance this tick.
func (m *Match) Running() bool {
	return !m.Paused && (m.Phase == PhasePlaying || m.Phase == PhaseGoalPause)
}

// GoalActive reports whether a goal is on display.
func (m *Match) GoalActive() bool {
	return m.Phase == PhaseGoalPause || (m.Phase == PhaseFinished && m.LastScorer != NoPaddle)
}

// ScoreGoal credits one goal to scorer. Goals only count while playing, so a
// goal cannot register during the pause after another one. It returns true
// when the goal counted.
func (m *Match) ScoreGoal(scorer PaddleID, now time.Time) bool {
	if m.Phase != PhasePlaying {
		return false
	}
	m.Scores[scorer]++
	m.LastScorer = scorer
	m.GoalAt = now
	m.Phase = PhaseGoalPause
	if m.Scores[scorer] >= m.PointsToWin {
		m.Phase = PhaseFinished
		m.Winner = scorer
		m.Paused = false
	}
	return true
}

// ResumeDue reports whether the goal pause is over.
func (m *Match) ResumeDue(now time.Time) bool {
	return m.Phase == PhaseGoalPause && now.Sub(m.GoalAt) >= m.GoalDelay
}

// Resume ends the goal pause.
func (m *Match) Resume() {
	if m.Phase == PhaseGoalPause {
		m.Phase = PhasePlaying
	}
}

// TogglePause pauses or resumes play. A finished match cannot be paused.
func (m *Match) TogglePause() bool {
	if m.Phase == PhaseFinished || m.Phase == PhaseIdle {
		return false
	}
	m.Paused = !m.Paused
	return true
}

// Restart clears the scores and the winner and starts playing again.
// A match in progress must be paused first.
func (m *Match) Restart() bool {
	if m.Phase != PhaseFinished && m.Phase != PhaseIdle && !m.Paused {
		return false
	}
	m.clear()
	m.Phase = PhasePlaying
	return true
}

// Reset returns the match to idle with no score.
func (m *Match) Reset() {
	m.clear()
	m.Phase = PhaseIdle
}

func (m *Match) clear() {
	m.Scores = [2]int{}
	m.Winner = NoPaddle
	m.LastScorer = NoPaddle
	m.GoalAt = time.Time{}
	m.Paused = false
}

// ApplyScores mirrors a goal reported by the authoritative side.
func (m *Match) ApplyScores(scores [2]int, now time.Time) {
	if scores[Paddle1] > m.Scores[Paddle1] {
		m.LastScorer = Paddle1
	} else if scores[Paddle2] > m.Scores[Paddle2] {
		m.LastScorer = Paddle2
	}
	m.Scores = scores
	m.GoalAt = now
	if m.Phase != PhaseFinished {
		m.Phase = PhaseGoalPause
	}
}

// ApplyFinished mirrors the end of the match reported by the authoritative side.
func (m *Match) ApplyFinished(winner PaddleID) {
	m.Phase = PhaseFinished
	m.Winner = winner
	m.Paused = false
}

// ApplyPlaying mirrors the authoritative side simulating: an idle or
// finished match starts over. A goal pause is left alone.
func (m *Match) ApplyPlaying() bool {
	switch m.Phase {
	case PhaseFinished:
		m.clear()
	case PhaseIdle:
	default:
		return false
	}
	m.Phase = PhasePlaying
	return true
}
