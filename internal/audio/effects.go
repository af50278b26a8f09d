package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"assessment-games-go/internal/game"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
)

type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator returns a finite tone of the given shape
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			val = 1.0
			if o.phase >= 0.5 {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to a stream
type envelope struct {
	streamer     beep.Streamer
	position     int
	attack       int
	release      int
	releaseStart int
}

func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	return &envelope{
		streamer:     s,
		attack:       att,
		release:      rel,
		releaseStart: max(total-rel, att),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.release > 0 && e.position >= e.releaseStart {
			vol = math.Max(0, 1-float64(e.position-e.releaseStart)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func note(freq float64, d time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(NewOscillator(freq, d, wave, rate), d, 5*time.Millisecond, d/2, rate)
}

// CorrectSound is a short rising two-note chime
func CorrectSound(rate beep.SampleRate, vol float64) beep.Streamer {
	return newVolume(beep.Seq(
		note(659.25, 80*time.Millisecond, WaveSine, rate),
		note(987.77, 140*time.Millisecond, WaveSine, rate),
	), vol)
}

// WrongSound is a low saw buzz
func WrongSound(rate beep.SampleRate, vol float64) beep.Streamer {
	return newVolume(note(110, 220*time.Millisecond, WaveSaw, rate), vol*0.6)
}

// CompleteSound is a C major arpeggio with a held top note
func CompleteSound(rate beep.SampleRate, vol float64) beep.Streamer {
	return newVolume(beep.Seq(
		note(523.25, 90*time.Millisecond, WaveSquare, rate),
		note(659.25, 90*time.Millisecond, WaveSquare, rate),
		note(783.99, 90*time.Millisecond, WaveSquare, rate),
		note(1046.50, 320*time.Millisecond, WaveSine, rate),
	), vol*0.5)
}

// CueSound builds the streamer for a cue, or nil for an unknown cue.
func CueSound(cue game.Cue, rate beep.SampleRate, vol float64) beep.Streamer {
	switch cue {
	case game.CueCorrect:
		return CorrectSound(rate, vol)
	case game.CueWrong:
		return WrongSound(rate, vol)
	case game.CueComplete:
		return CompleteSound(rate, vol)
	default:
		return nil
	}
}
