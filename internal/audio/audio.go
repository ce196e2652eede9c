package audio

import (
	"math"
	"time"

	"github.com/diegok/airhockey/internal/game"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
)

var (
	initialized bool
)

// Cue is one of the sounds the game makes
type Cue int

const (
	CuePaddleHit Cue = iota
	CueWallBounce
	CueGoal
	CueGameOver
)

// Init initializes the audio system
func Init() error {
	if initialized {
		return nil
	}

	err := speaker.Init(sampleRate, sampleRate.N(time.Second/30))
	if err != nil {
		return err
	}

	initialized = true
	return nil
}

// Close shuts down the audio system
func Close() {
	if initialized {
		speaker.Close()
		initialized = false
	}
}

// Cues lists the sounds for the events of one tick, most important last.
// A goal swallows the wall bounce of the same tick.
func Cues(ev game.Events) []Cue {
	var cues []Cue
	if ev.Has(game.EventPaddleHit) {
		cues = append(cues, CuePaddleHit)
	}
	if ev.Has(game.EventWallHit) && !ev.Has(game.EventGoal) {
		cues = append(cues, CueWallBounce)
	}
	if ev.Has(game.EventGoal) {
		cues = append(cues, CueGoal)
	}
	if ev.Has(game.EventGameOver) {
		cues = append(cues, CueGameOver)
	}
	return cues
}

// Play plays the sounds for the events of one tick
func Play(ev game.Events) {
	if !initialized {
		return
	}
	for _, c := range Cues(ev) {
		speaker.Play(streamer(c))
	}
}

func streamer(c Cue) beep.Streamer {
	switch c {
	case CuePaddleHit:
		// High-pitched short beep
		return squareWave(880, 50*time.Millisecond)
	case CueWallBounce:
		return squareWave(440, 30*time.Millisecond)
	case CueGoal:
		// Descending
		return beep.Seq(
			squareWave(660, 100*time.Millisecond),
			squareWave(440, 100*time.Millisecond),
			squareWave(330, 150*time.Millisecond),
		)
	case CueGameOver:
		return beep.Seq(
			beep.Silence(sampleRate.N(400*time.Millisecond)),
			tone(523, 150*time.Millisecond),
			tone(659, 150*time.Millisecond),
			tone(784, 300*time.Millisecond),
		)
	}
	return beep.Silence(0)
}

// tone generates a sine wave tone at the given frequency for the given duration
func tone(freq float64, duration time.Duration) beep.Streamer {
	numSamples := sampleRate.N(duration)
	phase := 0.0
	phaseStep := 2 * math.Pi * freq / float64(sampleRate)

	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			if numSamples <= 0 {
				return i, false
			}
			val := math.Sin(phase) * 0.3
			samples[i][0] = val
			samples[i][1] = val
			phase += phaseStep
			numSamples--
		}
		return len(samples), true
	})
}

// squareWave generates a square wave tone (more retro/8-bit feel)
func squareWave(freq float64, duration time.Duration) beep.Streamer {
	numSamples := sampleRate.N(duration)
	phase := 0.0
	phaseStep := freq / float64(sampleRate)

	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			if numSamples <= 0 {
				return i, false
			}
			val := 0.2
			if math.Mod(phase, 1.0) > 0.5 {
				val = -val
			}
			samples[i][0] = val
			samples[i][1] = val
			phase += phaseStep
			numSamples--
		}
		return len(samples), true
	})
}
