package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"assessment-games-go/internal/game"
	"assessment-games-go/internal/game/modes"
	"assessment-games-go/internal/game/puzzle"
)

var (
	ErrWrongAssessmentType = errors.New("operation does not apply to this assessment type")
	ErrNotPlaying          = errors.New("session is not playing")
	ErrNotAtResults        = errors.New("session is not showing results")
	ErrAlreadyStarted      = errors.New("session has already started")
	ErrClosed              = errors.New("session is closed")
)

// State is the screen the session is on
type State string

const (
	StateHome      State = "home"
	StatePreparing State = "preparing"
	StatePlaying   State = "playing"
	StateResults   State = "results"
	StateClosed    State = "closed"
)

// Outcome is the finished result of one play-through: *WordsOutcome or *PuzzleOutcome.
type Outcome interface {
	SessionID() string
	outcome()
}

type WordsOutcome struct {
	ID           string             `json:"session_id"`
	AssessmentID string             `json:"assessment_id"`
	Title        string             `json:"title"`
	Results      []game.GuessResult `json:"results"`
}

type PuzzleOutcome struct {
	ID           string            `json:"session_id"`
	AssessmentID string            `json:"assessment_id"`
	Title        string            `json:"title"`
	Result       game.PuzzleResult `json:"result"`
}

func (o *WordsOutcome) SessionID() string  { return o.ID }
func (o *PuzzleOutcome) SessionID() string { return o.ID }
func (*WordsOutcome) outcome()             {}
func (*PuzzleOutcome) outcome()            {}

// CompletionFunc receives every finished play-through. Errors are logged
// and never change the session state.
type CompletionFunc func(ctx context.Context, o Outcome) error

// Splitter cuts a puzzle image into pieces
type Splitter interface {
	Split(ctx context.Context, imageURL string, rows, cols int) ([]game.PuzzlePiece, error)
}

type Deps struct {
	Splitter   Splitter
	Sound      game.SoundPlayer
	OnComplete CompletionFunc
	Logger     *slog.Logger
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

func WithEventBuffer(n int) Option {
	return func(c *Controller) { c.events = make(chan game.GameEvent, n) }
}

// Controller sequences one assessment through home, play and results.
// It is safe for concurrent use.
type Controller struct {
	mu         sync.Mutex
	assessment game.Assessment
	deps       Deps
	now        func() time.Time
	rng        *rand.Rand
	events     chan game.GameEvent

	state   State
	id      string
	words   *game.WordGuessEngine
	puzzle  *puzzle.Engine
	outcome Outcome
	cancel  context.CancelFunc
}

func New(a game.Assessment, deps Deps, opts ...Option) (*Controller, error) {
	if err := modes.Validate(a); err != nil {
		return nil, err
	}

	switch v := a.(type) {
	case *game.WordAssessment:
	case *game.PuzzleAssessment:
		if deps.Splitter == nil {
			return nil, fmt.Errorf("puzzle assessment %q needs a splitter", v.ID)
		}
	default:
		return nil, fmt.Errorf("%w: %T", game.ErrUnknownAssessmentType, a)
	}

	if deps.Sound == nil {
		deps.Sound = game.NopSound
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	c := &Controller{
		assessment: a,
		deps:       deps,
		now:        time.Now,
		events:     make(chan game.GameEvent, 100),
		state:      StateHome,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c, nil
}

// Play starts the assessment from the home screen. For a puzzle it blocks
// while the image is split; on failure the session returns home.
func (c *Controller) Play(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	case StateHome:
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyStarted, c.state)
	}
	return c.start(ctx)
}

// PlayAgain discards the results and starts a fresh play-through.
func (c *Controller) PlayAgain(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	case StateResults:
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotAtResults, c.state)
	}
	c.outcome = nil
	return c.start(ctx)
}

// start is called with c.mu held and releases it.
func (c *Controller) start(ctx context.Context) error {
	c.id = uuid.New().String()
	c.words, c.puzzle = nil, nil

	switch a := c.assessment.(type) {
	case *game.WordAssessment:
		defer c.mu.Unlock()
		engine, err := game.NewWordGuessEngine(a.Words, a.GameConfig,
			game.WithClock(c.now),
			game.WithSound(c.deps.Sound))
		if err != nil {
			c.setState(StateHome)
			return err
		}
		c.words = engine
		c.setState(StatePlaying)
		return nil

	case *game.PuzzleAssessment:
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		c.cancel = cancel
		c.setState(StatePreparing)
		id := c.id
		c.mu.Unlock()

		pieces, err := c.deps.Splitter.Split(ctx, a.Puzzle.FinalImageURL, a.Puzzle.Rows, a.Puzzle.Cols)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.cancel = nil
		if c.state != StatePreparing || c.id != id {
			return ErrClosed
		}
		if err != nil {
			c.deps.Logger.Error("failed to prepare puzzle", "assessment_id", a.ID, "error", err)
			c.setState(StateHome)
			return err
		}

		engine, err := puzzle.NewEngine(pieces,
			puzzle.WithRand(c.rng),
			puzzle.WithClock(c.now),
			puzzle.WithSound(c.deps.Sound))
		if err != nil {
			c.setState(StateHome)
			return err
		}
		c.puzzle = engine
		c.emitEvent(game.EventTypePuzzlePrepared, map[string]any{
			"pieces": len(pieces),
			"order":  engine.Order(),
		})
		c.setState(StatePlaying)
		return nil

	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: %T", game.ErrUnknownAssessmentType, c.assessment)
	}
}

func (c *Controller) Guess(letter rune) (game.GuessOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	engine, err := c.wordEngine()
	if err != nil {
		return "", err
	}

	outcome, err := engine.GuessLetter(letter)
	if err != nil {
		return "", err
	}
	c.emitEvent(game.EventTypeLetterGuessed, map[string]any{
		"letter":        string(letter),
		"outcome":       outcome,
		"wrong_guesses": engine.WrongGuesses(),
		"complete":      engine.IsCurrentWordComplete(),
	})
	return outcome, nil
}

// Next moves past a complete or exhausted word.
func (c *Controller) Next(ctx context.Context) (game.AdvanceResult, error) {
	return c.advance(ctx, false)
}

// Skip moves past the current word at any time, recording it as not completed.
func (c *Controller) Skip(ctx context.Context) (game.AdvanceResult, error) {
	return c.advance(ctx, true)
}

func (c *Controller) advance(ctx context.Context, skip bool) (game.AdvanceResult, error) {
	c.mu.Lock()
	engine, err := c.wordEngine()
	if err != nil {
		c.mu.Unlock()
		return game.AdvanceResult{}, err
	}

	res, err := engine.Advance(skip)
	if err != nil {
		c.mu.Unlock()
		return game.AdvanceResult{}, err
	}
	c.emitEvent(game.EventTypeWordAdvanced, map[string]any{
		"result": res.Result,
		"skip":   skip,
		"done":   res.Done,
	})

	var outcome Outcome
	if res.Done {
		a := c.assessment.(*game.WordAssessment)
		outcome = &WordsOutcome{ID: c.id, AssessmentID: a.ID, Title: a.Title, Results: res.Results}
		c.finish(outcome)
	}
	c.mu.Unlock()

	if outcome != nil {
		c.report(ctx, outcome)
	}
	return res, nil
}

// Swap exchanges two displayed puzzle pieces and reports whether this swap
// solved the puzzle.
func (c *Controller) Swap(ctx context.Context, a, b int) (bool, error) {
	c.mu.Lock()
	engine, err := c.puzzleEngine()
	if err != nil {
		c.mu.Unlock()
		return false, err
	}

	solved, err := engine.Swap(a, b)
	if err != nil {
		c.mu.Unlock()
		return false, err
	}
	c.emitEvent(game.EventTypePiecesSwapped, map[string]any{
		"from":   a,
		"to":     b,
		"moves":  engine.Moves(),
		"solved": solved,
	})

	var outcome Outcome
	if solved {
		result, _ := engine.Result()
		pa := c.assessment.(*game.PuzzleAssessment)
		outcome = &PuzzleOutcome{ID: c.id, AssessmentID: pa.ID, Title: pa.Title, Result: result}
		c.finish(outcome)
	}
	c.mu.Unlock()

	if outcome != nil {
		c.report(ctx, outcome)
	}
	return solved, nil
}

// Exit closes the session from any state, cancelling a split in progress.
func (c *Controller) Exit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.words, c.puzzle, c.outcome = nil, nil, nil
	c.setState(StateClosed)
	close(c.events)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ID identifies the current play-through. It changes on every start.
func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Controller) Assessment() game.Assessment { return c.assessment }

// Outcome returns the finished result while the session shows results.
func (c *Controller) Outcome() (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome, c.outcome != nil
}

// Events streams session events. The channel is closed by Exit.
func (c *Controller) Events() <-chan game.GameEvent {
	return c.events
}

func (c *Controller) wordEngine() (*game.WordGuessEngine, error) {
	if err := c.playing(); err != nil {
		return nil, err
	}
	if c.words == nil {
		return nil, ErrWrongAssessmentType
	}
	return c.words, nil
}

func (c *Controller) puzzleEngine() (*puzzle.Engine, error) {
	if err := c.playing(); err != nil {
		return nil, err
	}
	if c.puzzle == nil {
		return nil, ErrWrongAssessmentType
	}
	return c.puzzle, nil
}

func (c *Controller) playing() error {
	switch c.state {
	case StateClosed:
		return ErrClosed
	case StatePlaying:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrNotPlaying, c.state)
	}
}

func (c *Controller) finish(o Outcome) {
	c.outcome = o
	c.setState(StateResults)
	c.emitEvent(game.EventTypeSessionEnded, map[string]any{"outcome": o})
}

func (c *Controller) report(ctx context.Context, o Outcome) {
	if c.deps.OnComplete == nil {
		return
	}
	if err := c.deps.OnComplete(ctx, o); err != nil {
		c.deps.Logger.Error("completion sink failed", "session_id", o.SessionID(), "error", err)
	}
}

func (c *Controller) setState(s State) {
	from := c.state
	c.state = s
	c.deps.Logger.Debug("session state changed", "session_id", c.id, "from", from, "to", s)
	c.emitEvent(game.EventTypeStateChanged, map[string]any{"from": from, "to": s})
}

// emitEvent never blocks; events are dropped when nobody is reading.
func (c *Controller) emitEvent(eventType game.EventType, payload map[string]any) {
	event := game.GameEvent{
		Type:      eventType,
		SessionID: c.id,
		Timestamp: c.now(),
		Payload:   payload,
	}
	select {
	case c.events <- event:
	default:
		c.deps.Logger.Debug("dropped session event", "type", eventType)
	}
}
