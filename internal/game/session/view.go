package session

import (
	"time"

	"assessment-games-go/internal/game"
)

// WordView is a render snapshot of the word game. Answer is only set once
// the word is complete or the wrong-guess budget is spent.
type WordView struct {
	Title        string
	Hint         string
	Mask         string
	Answer       string
	Used         []rune
	WrongGuesses int
	MaxWrong     int
	Position     int
	Total        int
	Complete     bool
	CanAdvance   bool
}

// PuzzleView is a render snapshot of the puzzle game
type PuzzleView struct {
	Title   string
	Rows    int
	Cols    int
	Order   []int
	Pieces  []game.PuzzlePiece
	Moves   int
	Solved  bool
	Elapsed time.Duration
}

// WordView returns the current word game snapshot.
func (c *Controller) WordView() (WordView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, err := c.wordEngine()
	if err != nil {
		return WordView{}, err
	}

	word := e.CurrentWord()
	v := WordView{
		Title:        c.assessment.Base().Title,
		Hint:         word.Hint,
		Mask:         e.Mask(),
		Used:         e.UsedLetters(),
		WrongGuesses: e.WrongGuesses(),
		MaxWrong:     e.MaxWrongGuesses(),
		Position:     e.Position(),
		Total:        e.Total(),
		Complete:     e.IsCurrentWordComplete(),
		CanAdvance:   e.CanAdvance(),
	}
	if v.CanAdvance {
		v.Answer = word.Word
	}
	return v, nil
}

// PuzzleView returns the current puzzle snapshot.
func (c *Controller) PuzzleView() (PuzzleView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, err := c.puzzleEngine()
	if err != nil {
		return PuzzleView{}, err
	}

	a := c.assessment.(*game.PuzzleAssessment)
	pieces := make([]game.PuzzlePiece, e.Len())
	for i := range pieces {
		pieces[i], _ = e.Piece(i)
	}
	return PuzzleView{
		Title:   a.Title,
		Rows:    a.Puzzle.Rows,
		Cols:    a.Puzzle.Cols,
		Order:   e.Order(),
		Pieces:  pieces,
		Moves:   e.Moves(),
		Solved:  e.Solved(),
		Elapsed: e.Elapsed(),
	}, nil
}
