package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"assessment-games-go/internal/game"
	"assessment-games-go/internal/game/session"
)

const redrawInterval = 250 * time.Millisecond

// startedEvent is posted when a Play or PlayAgain call returns
type startedEvent struct {
	tcell.EventTime
	err error
}

// App renders one session on a terminal screen and turns keys into
// controller calls.
type App struct {
	screen tcell.Screen
	ctl    *session.Controller
	logger *slog.Logger

	width, height int

	// puzzle cursor and the position picked for a swap, -1 when none
	cursor int
	picked int

	message string
}

func New(screen tcell.Screen, ctl *session.Controller, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		screen: screen,
		ctl:    ctl,
		logger: logger,
		picked: -1,
	}
	a.width, a.height = screen.Size()
	return a
}

// Run starts the session and processes input until the player exits or
// ctx is cancelled. The caller owns the screen and finalizes it.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.ctl.Exit()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	a.start(ctx, a.ctl.Play)
	a.draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !a.handleEvent(ctx, ev) {
				return nil
			}
			a.draw()
		case <-ticker.C:
			a.draw()
		}
	}
}

// start runs fn off the event loop so a long puzzle split keeps the
// screen responsive and Esc can cancel it.
func (a *App) start(ctx context.Context, fn func(context.Context) error) {
	a.message = ""
	a.cursor, a.picked = 0, -1
	go func() {
		ev := &startedEvent{err: fn(ctx)}
		ev.SetEventNow()
		if err := a.screen.PostEvent(ev); err != nil {
			a.logger.Warn("dropped start event", "error", err)
		}
	}()
}

// handleEvent reports false when the app should stop.
func (a *App) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *startedEvent:
		if ev.err != nil && !errors.Is(ev.err, session.ErrClosed) && !errors.Is(ev.err, context.Canceled) {
			a.message = ev.err.Error()
		}
	case *tcell.EventResize:
		a.width, a.height = a.screen.Size()
		a.screen.Sync()
	case *tcell.EventKey:
		return a.handleKey(ctx, ev)
	}
	return true
}

func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return false
	}

	switch a.ctl.State() {
	case session.StateHome:
		switch {
		case ev.Key() == tcell.KeyEnter:
			a.start(ctx, a.ctl.Play)
		case ev.Key() == tcell.KeyEscape, isRune(ev, 'q'):
			return false
		}
	case session.StatePreparing:
		if ev.Key() == tcell.KeyEscape {
			return false
		}
	case session.StatePlaying:
		if ev.Key() == tcell.KeyEscape {
			return false
		}
		if _, ok := a.ctl.Assessment().(*game.PuzzleAssessment); ok {
			a.puzzleKey(ctx, ev)
		} else {
			a.wordKey(ctx, ev)
		}
	case session.StateResults:
		switch {
		case isRune(ev, 'r'):
			a.start(ctx, a.ctl.PlayAgain)
		case ev.Key() == tcell.KeyEscape, isRune(ev, 'q'):
			return false
		}
	case session.StateClosed:
		return false
	}
	return true
}

func (a *App) wordKey(ctx context.Context, ev *tcell.EventKey) {
	var err error
	switch ev.Key() {
	case tcell.KeyRune:
		r := unicode.ToUpper(ev.Rune())
		if r < 'A' || r > 'Z' {
			return
		}
		_, err = a.ctl.Guess(r)
	case tcell.KeyEnter:
		_, err = a.ctl.Next(ctx)
	case tcell.KeyTab:
		_, err = a.ctl.Skip(ctx)
	default:
		return
	}
	a.setError(err)
}

func (a *App) puzzleKey(ctx context.Context, ev *tcell.EventKey) {
	v, err := a.ctl.PuzzleView()
	if err != nil {
		a.setError(err)
		return
	}
	row, col := a.cursor/v.Cols, a.cursor%v.Cols

	switch ev.Key() {
	case tcell.KeyLeft:
		col = max(col-1, 0)
	case tcell.KeyRight:
		col = min(col+1, v.Cols-1)
	case tcell.KeyUp:
		row = max(row-1, 0)
	case tcell.KeyDown:
		row = min(row+1, v.Rows-1)
	case tcell.KeyRune:
		if ev.Rune() != ' ' {
			return
		}
		if a.picked < 0 {
			a.picked = a.cursor
			return
		}
		from := a.picked
		a.picked = -1
		_, err := a.ctl.Swap(ctx, from, a.cursor)
		a.setError(err)
		return
	default:
		return
	}
	a.cursor = row*v.Cols + col
}

func (a *App) setError(err error) {
	if err == nil {
		a.message = ""
		return
	}
	// blocked or decided moves are expected key presses, not failures
	if errors.Is(err, game.ErrAdvanceBlocked) || errors.Is(err, game.ErrWordDecided) {
		return
	}
	a.logger.Debug("session call failed", "session_id", a.ctl.ID(), "error", err)
	a.message = err.Error()
}

func isRune(ev *tcell.EventKey, r rune) bool {
	return ev.Key() == tcell.KeyRune && unicode.ToLower(ev.Rune()) == r
}
