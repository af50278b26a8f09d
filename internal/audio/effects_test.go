package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"

	"assessment-games-go/internal/game"
)

func drain(s beep.Streamer) (total int, peak float64) {
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = max(peak, buf[i][0], -buf[i][0])
		}
		total += n
		if !ok {
			return total, peak
		}
	}
}

func TestOscillatorRange(t *testing.T) {
	rate := beep.SampleRate(44100)

	for _, wave := range []WaveType{WaveSine, WaveSquare, WaveSaw} {
		total, peak := drain(NewOscillator(440, 100*time.Millisecond, wave, rate))
		assert.Equal(t, rate.N(100*time.Millisecond), total)
		assert.LessOrEqual(t, peak, 1.0)
		assert.Greater(t, peak, 0.5)
	}
}

func TestEnvelopeFadesOut(t *testing.T) {
	rate := beep.SampleRate(8000)
	s := NewEnvelope(NewOscillator(0, 100*time.Millisecond, WaveSquare, rate), 100*time.Millisecond, 10*time.Millisecond, 20*time.Millisecond, rate)

	buf := make([][2]float64, rate.N(100*time.Millisecond))
	n, _ := s.Stream(buf)
	assert.Equal(t, len(buf), n)

	assert.Equal(t, 0.0, buf[0][0])
	assert.InDelta(t, 1.0, buf[rate.N(50*time.Millisecond)][0], 1e-9)
	assert.Less(t, buf[n-1][0], 0.1)
}

func TestCueSoundsAreFinite(t *testing.T) {
	rate := beep.SampleRate(22050)

	tests := []struct {
		cue     game.Cue
		longest time.Duration
	}{
		{game.CueCorrect, 250 * time.Millisecond},
		{game.CueWrong, 250 * time.Millisecond},
		{game.CueComplete, 700 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(string(tt.cue), func(t *testing.T) {
			s := CueSound(tt.cue, rate, 0.8)
			if !assert.NotNil(t, s) {
				return
			}
			total, peak := drain(s)
			assert.Greater(t, total, 0)
			assert.LessOrEqual(t, total, rate.N(tt.longest))
			assert.Greater(t, peak, 0.0)
		})
	}

	assert.Nil(t, CueSound("applause", rate, 1))
}

func TestSilentVolume(t *testing.T) {
	_, peak := drain(CueSound(game.CueCorrect, beep.SampleRate(22050), 0))
	assert.Equal(t, 0.0, peak)
}

func TestUninitializedManagerIsSilent(t *testing.T) {
	sm := NewSoundManager(1)
	assert.NotPanics(t, func() {
		sm.Play(game.CueCorrect)
		sm.Play(game.CueComplete)
		sm.Close()
	})
}
