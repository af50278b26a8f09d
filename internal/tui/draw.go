package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"assessment-games-go/internal/game"
	"assessment-games-go/internal/game/session"
	"assessment-games-go/internal/game/summary"
)

const cellWidth = 6

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Italic(true)
	styleMask    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleLetter  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleWrong   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleMuted   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCursor  = tcell.StyleDefault.Reverse(true)
	stylePicked  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

var alphabetRows = []string{"ABCDEFGHIJKLM", "NOPQRSTUVWXYZ"}

func (a *App) draw() {
	a.screen.Clear()

	title := a.ctl.Assessment().Base().Title
	a.text(2, 1, styleTitle, title)

	switch a.ctl.State() {
	case session.StateHome:
		a.text(2, 3, styleDefault, "Press Enter to play, q to quit")
	case session.StatePreparing:
		a.text(2, 3, styleMuted, "Preparing puzzle...")
	case session.StatePlaying:
		if _, ok := a.ctl.Assessment().(*game.PuzzleAssessment); ok {
			a.drawPuzzle()
		} else {
			a.drawWord()
		}
	case session.StateResults:
		a.drawResults()
	}

	if a.message != "" {
		a.text(2, a.height-2, styleError, a.message)
	}
	a.screen.Show()
}

func (a *App) drawWord() {
	v, err := a.ctl.WordView()
	if err != nil {
		return
	}

	a.text(2, 2, styleMuted, fmt.Sprintf("Word %d of %d", v.Position, v.Total))
	if v.Hint != "" {
		a.text(2, 4, styleHint, v.Hint)
	}
	a.text(2, 6, styleMask, spaced(v.Mask))

	used := make(map[rune]bool, len(v.Used))
	for _, r := range v.Used {
		used[r] = true
	}
	for i, row := range alphabetRows {
		x := 2
		for _, r := range row {
			if used[r] {
				a.screen.SetContent(x, 8+i, '·', nil, styleMuted)
			} else {
				a.screen.SetContent(x, 8+i, r, nil, styleLetter)
			}
			x += 2
		}
	}

	wrongStyle := styleDefault
	if v.WrongGuesses > 0 {
		wrongStyle = styleWrong
	}
	a.text(2, 11, wrongStyle, fmt.Sprintf("Wrong guesses: %d/%d", v.WrongGuesses, v.MaxWrong))

	if v.Answer != "" && !v.Complete {
		a.text(2, 12, styleWrong, "The word was "+v.Answer)
	} else if v.Complete {
		a.text(2, 12, styleLetter, "Well done!")
	}

	next := styleMuted
	if v.CanAdvance {
		next = styleDefault
	}
	x := a.text(2, 14, next, "Enter next")
	a.text(x+2, 14, styleDefault, "Tab skip  Esc exit")
}

func (a *App) drawPuzzle() {
	v, err := a.ctl.PuzzleView()
	if err != nil {
		return
	}

	a.text(2, 2, styleMuted, fmt.Sprintf("Moves: %d  Time: %s", v.Moves, v.Elapsed.Truncate(time.Second)))

	for pos, index := range v.Order {
		row, col := pos/v.Cols, pos%v.Cols
		style := styleDefault
		switch {
		case pos == a.picked:
			style = stylePicked
		case pos == a.cursor:
			style = styleCursor
		case index == pos:
			style = styleLetter
		}
		a.text(2+col*cellWidth, 4+row*2, style, fmt.Sprintf("[%2d]", index+1))
	}

	a.text(2, 5+v.Rows*2, styleMuted, "Arrows move  Space pick/swap  Esc exit")
}

func (a *App) drawResults() {
	o, ok := a.ctl.Outcome()
	if !ok {
		return
	}

	y := 3
	switch o := o.(type) {
	case *session.WordsOutcome:
		s := summary.Summarize(o.Results)
		a.text(2, y, styleMask, fmt.Sprintf("Completed %d of %d", s.Completed, s.Total))
		a.text(2, y+1, styleDefault, fmt.Sprintf("Wrong guesses: %d  Average time: %s", s.WrongGuesses, summary.Seconds(s.AverageTime)))
		y += 3
		for _, r := range o.Results {
			style := styleLetter
			if !r.Completed {
				style = styleWrong
			}
			a.text(2, y, style, fmt.Sprintf("%-12s %-10s %d wrong  %s", r.Word, summary.Status(r), r.WrongGuesses, summary.Seconds(r.TimeSpent)))
			y++
		}
	case *session.PuzzleOutcome:
		s := summary.SummarizePuzzle(o.Result)
		a.text(2, y, styleMask, "Puzzle solved!")
		a.text(2, y+1, styleDefault, fmt.Sprintf("Moves: %d  Time: %s", s.Moves, s.TimeSpent))
		y += 2
	}

	a.text(2, y+1, styleMuted, "r play again  q quit")
}

// text draws s at x, y and returns the column after it
func (a *App) text(x, y int, style tcell.Style, s string) int {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}
