package game

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockSoundPlayer is a mock implementation of SoundPlayer
type MockSoundPlayer struct {
	mock.Mock
}

func (m *MockSoundPlayer) Play(cue Cue) {
	m.Called(cue)
}

// fakeClock advances only when told to
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
