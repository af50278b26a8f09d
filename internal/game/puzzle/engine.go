package puzzle

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"assessment-games-go/internal/game"
)

var (
	ErrInvalidPieces      = errors.New("pieces must be indexed 0..n-1 exactly once")
	ErrInvalidOrder       = errors.New("order must be a permutation of 0..n-1")
	ErrPositionOutOfRange = errors.New("position out of range")
)

// Engine holds one puzzle round: the displayed permutation of pieces and
// the move count. It is not safe for concurrent use.
type Engine struct {
	pieces     []game.PuzzlePiece
	order      []int
	moves      int
	solved     bool
	result     game.PuzzleResult
	startedAt  time.Time
	now        func() time.Time
	rng        *rand.Rand
	sound      game.SoundPlayer
	onComplete func(game.PuzzleResult)
	fixed      []int
}

type EngineOption func(*Engine)

// WithOrder fixes the initial displayed order instead of shuffling.
func WithOrder(order []int) EngineOption {
	return func(e *Engine) { e.fixed = slices.Clone(order) }
}

func WithRand(rng *rand.Rand) EngineOption {
	return func(e *Engine) { e.rng = rng }
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func WithSound(sound game.SoundPlayer) EngineOption {
	return func(e *Engine) { e.sound = sound }
}

// OnComplete is called once, by the swap that first solves the puzzle.
func OnComplete(fn func(game.PuzzleResult)) EngineOption {
	return func(e *Engine) { e.onComplete = fn }
}

func NewEngine(pieces []game.PuzzlePiece, opts ...EngineOption) (*Engine, error) {
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: no pieces", ErrInvalidPieces)
	}

	// pieces are stored by their solved index
	byIndex := make([]game.PuzzlePiece, len(pieces))
	seen := make([]bool, len(pieces))
	for _, p := range pieces {
		if p.Index < 0 || p.Index >= len(pieces) || seen[p.Index] {
			return nil, fmt.Errorf("%w: index %d", ErrInvalidPieces, p.Index)
		}
		seen[p.Index] = true
		byIndex[p.Index] = p
	}

	e := &Engine{
		pieces: byIndex,
		now:    time.Now,
		sound:  game.NopSound,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if e.fixed != nil {
		if !isPermutation(e.fixed, len(pieces)) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOrder, e.fixed)
		}
		e.order = e.fixed
	} else {
		e.order = e.shuffled(len(pieces))
	}

	e.startedAt = e.now()
	return e, nil
}

// shuffled returns a random permutation of 0..n-1 that is never already
// solved when there is more than one piece.
func (e *Engine) shuffled(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for {
		for i := n - 1; i > 0; i-- {
			j := e.rng.Intn(i + 1)
			order[i], order[j] = order[j], order[i]
		}
		if n == 1 || !isIdentity(order) {
			return order
		}
	}
}

// Swap exchanges the pieces displayed at positions a and b. It reports true
// only when this swap is the one that first solves the puzzle.
func (e *Engine) Swap(a, b int) (bool, error) {
	n := len(e.order)
	if a < 0 || a >= n || b < 0 || b >= n {
		return false, fmt.Errorf("%w: %d, %d (n=%d)", ErrPositionOutOfRange, a, b, n)
	}

	e.order[a], e.order[b] = e.order[b], e.order[a]
	e.moves++

	if e.solved || !isIdentity(e.order) {
		return false, nil
	}

	e.solved = true
	e.result = game.PuzzleResult{
		Completed: true,
		TimeSpent: e.now().Sub(e.startedAt),
		Moves:     e.moves,
	}
	e.sound.Play(game.CueComplete)
	if e.onComplete != nil {
		e.onComplete(e.result)
	}
	return true, nil
}

// Order returns the solved index shown at each position.
func (e *Engine) Order() []int { return slices.Clone(e.order) }

func (e *Engine) Moves() int   { return e.moves }
func (e *Engine) Solved() bool { return e.solved }
func (e *Engine) Len() int     { return len(e.order) }

// Piece returns the piece whose solved position is index.
func (e *Engine) Piece(index int) (game.PuzzlePiece, bool) {
	if index < 0 || index >= len(e.pieces) {
		return game.PuzzlePiece{}, false
	}
	return e.pieces[index], true
}

// PieceAt returns the piece currently displayed at position pos.
func (e *Engine) PieceAt(pos int) (game.PuzzlePiece, bool) {
	if pos < 0 || pos >= len(e.order) {
		return game.PuzzlePiece{}, false
	}
	return e.pieces[e.order[pos]], true
}

// Result returns the recorded result and whether the puzzle has been solved.
func (e *Engine) Result() (game.PuzzleResult, bool) {
	return e.result, e.solved
}

// Elapsed is the time since the round started.
func (e *Engine) Elapsed() time.Duration {
	if e.solved {
		return e.result.TimeSpent
	}
	return e.now().Sub(e.startedAt)
}

func isIdentity(order []int) bool {
	for i, v := range order {
		if v != i {
			return false
		}
	}
	return true
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
