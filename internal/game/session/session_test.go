package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"assessment-games-go/internal/game"
	"assessment-games-go/internal/game/modes"
	"assessment-games-go/internal/game/puzzle"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func wordAssessment(budget int, ws ...string) *game.WordAssessment {
	a := &game.WordAssessment{
		AssessmentBase: game.AssessmentBase{ID: "a1", Title: "Animals"},
		GameConfig:     game.GameConfig{MaxWrongGuesses: budget},
	}
	for _, w := range ws {
		a.Words = append(a.Words, game.WordItem{Word: w})
	}
	modes.ApplyDefaults(a)
	return a
}

func puzzleAssessment() *game.PuzzleAssessment {
	return &game.PuzzleAssessment{
		AssessmentBase: game.AssessmentBase{ID: "p1", Title: "Farm"},
		Puzzle:         game.PuzzleConfig{Rows: 2, Cols: 2, FinalImageURL: "s3://pics/farm.png"},
	}
}

func testPieces(n int) []game.PuzzlePiece {
	ps := make([]game.PuzzlePiece, n)
	for i := range ps {
		ps[i] = game.PuzzlePiece{Index: i}
	}
	return ps
}

func newWordSession(t *testing.T, sink *MockSink, budget int, ws ...string) *Controller {
	t.Helper()
	deps := Deps{Logger: quietLogger}
	if sink != nil {
		deps.OnComplete = sink.Complete
	}
	c, err := New(wordAssessment(budget, ws...), deps)
	require.NoError(t, err)
	return c
}

func newPuzzleSession(t *testing.T, splitter *MockSplitter, sink *MockSink) *Controller {
	t.Helper()
	deps := Deps{Splitter: splitter, Logger: quietLogger}
	if sink != nil {
		deps.OnComplete = sink.Complete
	}
	c, err := New(puzzleAssessment(), deps, WithRand(rand.New(rand.NewSource(5))))
	require.NoError(t, err)
	return c
}

// solve swaps pieces into place and returns how many swaps reported solved.
func solve(t *testing.T, c *Controller) int {
	t.Helper()
	solvedCount := 0
	for {
		view, err := c.PuzzleView()
		if errors.Is(err, ErrNotPlaying) {
			return solvedCount
		}
		require.NoError(t, err)

		for pos, idx := range view.Order {
			if pos != idx {
				// move piece pos into its slot
				target := -1
				for p, i := range view.Order {
					if i == pos {
						target = p
					}
				}
				solved, err := c.Swap(context.Background(), pos, target)
				require.NoError(t, err)
				if solved {
					solvedCount++
				}
				break
			}
		}
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(wordAssessment(5), Deps{})
	assert.ErrorIs(t, err, modes.ErrInvalidSettings)

	_, err = New(wordAssessment(11, "CAT"), Deps{})
	assert.ErrorIs(t, err, modes.ErrInvalidSettings)

	_, err = New(puzzleAssessment(), Deps{})
	assert.Error(t, err)

	_, err = New(nil, Deps{})
	assert.ErrorIs(t, err, modes.ErrInvalidSettings)
}

func TestWordSessionCATScenario(t *testing.T) {
	sink := new(MockSink)
	sink.On("Complete", mock.Anything, mock.MatchedBy(func(o Outcome) bool {
		w, ok := o.(*WordsOutcome)
		return ok && len(w.Results) == 1 && w.Results[0].Completed && w.AssessmentID == "a1"
	})).Return(nil).Once()

	c := newWordSession(t, sink, 5, "cat")
	assert.Equal(t, StateHome, c.State())
	require.NoError(t, c.Play(context.Background()))
	assert.Equal(t, StatePlaying, c.State())

	for _, r := range "cat" {
		outcome, err := c.Guess(r)
		require.NoError(t, err)
		assert.Equal(t, game.OutcomeCorrect, outcome)
	}

	view, err := c.WordView()
	require.NoError(t, err)
	assert.Equal(t, "CAT", view.Mask)
	assert.True(t, view.Complete)
	assert.Equal(t, "CAT", view.Answer)

	res, err := c.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, StateResults, c.State())

	outcome, ok := c.Outcome()
	require.True(t, ok)
	assert.Equal(t, c.ID(), outcome.SessionID())
	sink.AssertExpectations(t)
}

func TestWordSessionBudgetOfOne(t *testing.T) {
	c := newWordSession(t, nil, 1, "A", "B")
	require.NoError(t, c.Play(context.Background()))

	outcome, err := c.Guess('b')
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeIncorrect, outcome)

	_, err = c.Guess('a')
	assert.ErrorIs(t, err, game.ErrWordDecided)

	view, err := c.WordView()
	require.NoError(t, err)
	assert.True(t, view.CanAdvance)
	assert.Equal(t, "A", view.Answer)
	assert.Equal(t, 1, view.WrongGuesses)

	res, err := c.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Done)
	assert.Equal(t, game.GuessResult{WordID: "1", Word: "A", WrongGuesses: 1, Skipped: true, TimeSpent: res.Result.TimeSpent}, res.Result)

	view, err = c.WordView()
	require.NoError(t, err)
	assert.Equal(t, "_", view.Mask)
	assert.Empty(t, view.Answer)
	assert.Equal(t, 0, view.WrongGuesses)
	assert.Equal(t, 2, view.Position)
}

func TestWordSessionGating(t *testing.T) {
	c := newWordSession(t, nil, 5, "DOG", "CAT")

	_, err := c.Guess('D')
	assert.ErrorIs(t, err, ErrNotPlaying)

	require.NoError(t, c.Play(context.Background()))
	assert.ErrorIs(t, c.Play(context.Background()), ErrAlreadyStarted)

	_, err = c.Next(context.Background())
	assert.ErrorIs(t, err, game.ErrAdvanceBlocked)

	res, err := c.Skip(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Result.Completed)

	_, err = c.Swap(context.Background(), 0, 1)
	assert.ErrorIs(t, err, ErrWrongAssessmentType)

	_, err = c.PuzzleView()
	assert.ErrorIs(t, err, ErrWrongAssessmentType)

	assert.ErrorIs(t, c.PlayAgain(context.Background()), ErrNotAtResults)
}

func TestPlayAgainReportsAgain(t *testing.T) {
	sink := new(MockSink)
	sink.On("Complete", mock.Anything, mock.AnythingOfType("*session.WordsOutcome")).Return(nil).Twice()

	c := newWordSession(t, sink, 5, "GO")
	require.NoError(t, c.Play(context.Background()))
	_, err := c.Skip(context.Background())
	require.NoError(t, err)
	first := c.ID()

	require.NoError(t, c.PlayAgain(context.Background()))
	assert.Equal(t, StatePlaying, c.State())
	assert.NotEqual(t, first, c.ID())
	_, ok := c.Outcome()
	assert.False(t, ok)

	_, err = c.Skip(context.Background())
	require.NoError(t, err)
	sink.AssertExpectations(t)
}

func TestSinkErrorDoesNotChangeState(t *testing.T) {
	sink := new(MockSink)
	sink.On("Complete", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	c := newWordSession(t, sink, 5, "GO")
	require.NoError(t, c.Play(context.Background()))
	res, err := c.Skip(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, StateResults, c.State())
}

func TestPuzzleSession(t *testing.T) {
	splitter := new(MockSplitter)
	splitter.On("Split", mock.Anything, "s3://pics/farm.png", 2, 2).Return(testPieces(4), nil)

	sink := new(MockSink)
	sink.On("Complete", mock.Anything, mock.MatchedBy(func(o Outcome) bool {
		p, ok := o.(*PuzzleOutcome)
		return ok && p.Result.Completed && p.Result.Moves > 0
	})).Return(nil).Once()

	c := newPuzzleSession(t, splitter, sink)
	require.NoError(t, c.Play(context.Background()))
	assert.Equal(t, StatePlaying, c.State())

	_, err := c.Guess('A')
	assert.ErrorIs(t, err, ErrWrongAssessmentType)

	_, err = c.Swap(context.Background(), 0, 4)
	assert.ErrorIs(t, err, puzzle.ErrPositionOutOfRange)

	assert.Equal(t, 1, solve(t, c))
	assert.Equal(t, StateResults, c.State())

	outcome, ok := c.Outcome()
	require.True(t, ok)
	assert.IsType(t, &PuzzleOutcome{}, outcome)
	splitter.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestPuzzleSplitFailureReturnsHome(t *testing.T) {
	loadErr := &puzzle.ImageLoadError{URL: "s3://pics/farm.png", Err: errors.New("access denied")}

	splitter := new(MockSplitter)
	splitter.On("Split", mock.Anything, mock.Anything, 2, 2).Return(nil, loadErr).Once()
	splitter.On("Split", mock.Anything, mock.Anything, 2, 2).Return(testPieces(4), nil).Once()

	c := newPuzzleSession(t, splitter, nil)

	err := c.Play(context.Background())
	assert.ErrorIs(t, err, puzzle.ErrImageLoad)
	var target *puzzle.ImageLoadError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, StateHome, c.State())

	require.NoError(t, c.Play(context.Background()))
	assert.Equal(t, StatePlaying, c.State())
}

func TestPuzzleCallsWhilePreparing(t *testing.T) {
	release := make(chan struct{})
	splitter := new(MockSplitter)
	splitter.On("Split", mock.Anything, mock.Anything, 2, 2).
		Run(func(mock.Arguments) { <-release }).
		Return(testPieces(4), nil)

	c := newPuzzleSession(t, splitter, nil)

	done := make(chan error, 1)
	go func() { done <- c.Play(context.Background()) }()

	require.Eventually(t, func() bool { return c.State() == StatePreparing }, time.Second, time.Millisecond)

	_, err := c.Swap(context.Background(), 0, 1)
	assert.ErrorIs(t, err, ErrNotPlaying)
	_, err = c.PuzzleView()
	assert.ErrorIs(t, err, ErrNotPlaying)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StatePlaying, c.State())
}

func TestExitCancelsPreparation(t *testing.T) {
	splitter := new(MockSplitter)
	splitter.On("Split", mock.Anything, mock.Anything, 2, 2).
		Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
		Return(nil, context.Canceled)

	c := newPuzzleSession(t, splitter, nil)

	done := make(chan error, 1)
	go func() { done <- c.Play(context.Background()) }()

	require.Eventually(t, func() bool { return c.State() == StatePreparing }, time.Second, time.Millisecond)
	c.Exit()

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Equal(t, StateClosed, c.State())
}

func TestClosedSession(t *testing.T) {
	c := newWordSession(t, nil, 5, "CAT")
	require.NoError(t, c.Play(context.Background()))
	c.Exit()
	c.Exit()

	assert.Equal(t, StateClosed, c.State())
	assert.ErrorIs(t, c.Play(context.Background()), ErrClosed)
	assert.ErrorIs(t, c.PlayAgain(context.Background()), ErrClosed)

	_, err := c.Guess('C')
	assert.ErrorIs(t, err, ErrClosed)
	_, err = c.Skip(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = c.WordView()
	assert.ErrorIs(t, err, ErrClosed)

	// drain, then the channel must be closed
	for range c.Events() {
	}
}

func TestEventsNeverBlock(t *testing.T) {
	c, err := New(wordAssessment(10, "ABCDEFGHIJ"), Deps{Logger: quietLogger}, WithEventBuffer(2))
	require.NoError(t, err)
	require.NoError(t, c.Play(context.Background()))

	for _, r := range "ABCDEFGHIJ" {
		_, err := c.Guess(r)
		require.NoError(t, err)
	}

	ev := <-c.Events()
	assert.Equal(t, game.EventTypeStateChanged, ev.Type)
	assert.Equal(t, StatePlaying, ev.Payload["to"])
}

func TestEventsFollowPlay(t *testing.T) {
	c := newWordSession(t, nil, 5, "GO")
	require.NoError(t, c.Play(context.Background()))
	_, err := c.Guess('G')
	require.NoError(t, err)
	_, err = c.Skip(context.Background())
	require.NoError(t, err)
	c.Exit()

	var types []game.EventType
	for ev := range c.Events() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []game.EventType{
		game.EventTypeStateChanged,
		game.EventTypeLetterGuessed,
		game.EventTypeWordAdvanced,
		game.EventTypeStateChanged,
		game.EventTypeSessionEnded,
		game.EventTypeStateChanged,
	}, types)
}
