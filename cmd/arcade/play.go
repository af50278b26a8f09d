package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"assessment-games-go/internal/game"
	"assessment-games-go/internal/game/modes"
	"assessment-games-go/internal/game/session"
	"assessment-games-go/internal/library"
	"assessment-games-go/internal/tui"
)

// reportTimeout bounds one mailed report and how long exit waits for it
const reportTimeout = 30 * time.Second

var playNoSound bool

var playCmd = &cobra.Command{
	Use:   "play [id|file]",
	Short: "Play an assessment in the terminal",
	Long:  "Play an assessment from the library by id, or straight from an assessment JSON file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := loadAssessment(ctx, args[0])
		if err != nil {
			return err
		}

		if playNoSound {
			cfg.SoundEnabled = false
		}
		sound, closeSound := newSound()
		defer closeSound()

		deps := session.Deps{Sound: sound, Logger: logger}
		if _, ok := a.(*game.PuzzleAssessment); ok {
			deps.Splitter = newSplitter(ctx)
		}
		mailer, err := newMailer()
		if err != nil {
			return err
		}
		if mailer != nil {
			reports := session.NewBackground(mailer.Report, reportTimeout, logger)
			deps.OnComplete = reports.Complete
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
				defer cancel()
				if err := reports.Wait(ctx); err != nil {
					logger.Warn("gave up waiting for session report", "error", err)
				}
			}()
		}

		ctl, err := session.New(a, deps)
		if err != nil {
			return err
		}

		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("init terminal: %w", err)
		}
		defer screen.Fini()

		return tui.New(screen, ctl, logger).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().BoolVar(&playNoSound, "no-sound", false, "Disable sound effects")
}

// loadAssessment reads arg as a JSON file when one exists, otherwise looks
// it up in the library.
func loadAssessment(ctx context.Context, arg string) (game.Assessment, error) {
	data, err := os.ReadFile(arg)
	if err == nil {
		a, err := game.DecodeAssessment(data)
		if err != nil {
			return nil, err
		}
		modes.ApplyDefaults(a)
		return a, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeStore()
	return library.NewService(store, logger).Get(ctx, arg)
}
