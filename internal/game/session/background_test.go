package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBackgroundDoesNotHoldUpTheSession(t *testing.T) {
	release := make(chan struct{})
	sink := new(MockSink)
	sink.On("Complete", mock.Anything, mock.AnythingOfType("*session.WordsOutcome")).
		Run(func(args mock.Arguments) { <-release }).
		Return(nil).Once()

	bg := NewBackground(sink.Complete, time.Minute, quietLogger)
	c, err := New(wordAssessment(5, "GO"), Deps{OnComplete: bg.Complete, Logger: quietLogger})
	require.NoError(t, err)
	require.NoError(t, c.Play(context.Background()))

	skipped := make(chan error, 1)
	go func() {
		_, err := c.Skip(context.Background())
		skipped <- err
	}()
	select {
	case err := <-skipped:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("skip waited on the completion sink")
	}
	assert.Equal(t, StateResults, c.State())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bg.Wait(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, bg.Wait(context.Background()))
	sink.AssertExpectations(t)
}

func TestBackgroundOutlivesReportContext(t *testing.T) {
	sink := new(MockSink)
	sink.On("Complete", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ctx.Err() == nil && ok
	}), mock.Anything).Return(errors.New("smtp unreachable")).Once()

	bg := NewBackground(sink.Complete, time.Minute, quietLogger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, bg.Complete(ctx, &WordsOutcome{ID: "s1"}))

	require.NoError(t, bg.Wait(context.Background()))
	sink.AssertExpectations(t)
}
