package game

// Cue identifies a feedback sound requested by an engine
type Cue string

const (
	CueCorrect  Cue = "correct"
	CueWrong    Cue = "wrong"
	CueComplete Cue = "complete"
)

// SoundPlayer plays feedback cues. Play must not block; overlapping cues may overlap.
type SoundPlayer interface {
	Play(cue Cue)
}

// SoundFunc adapts a function to SoundPlayer.
type SoundFunc func(cue Cue)

func (f SoundFunc) Play(cue Cue) { f(cue) }

type nopSound struct{}

func (nopSound) Play(Cue) {}

// NopSound is a SoundPlayer that discards every cue.
var NopSound SoundPlayer = nopSound{}
