package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"assessment-games-go/config"
	"assessment-games-go/internal/audio"
	"assessment-games-go/internal/bundle"
	"assessment-games-go/internal/game"
	"assessment-games-go/internal/game/puzzle"
	awsinfra "assessment-games-go/internal/infrastructure/aws"
	dynamostore "assessment-games-go/internal/infrastructure/aws/dynamodb"
	"assessment-games-go/internal/library"
	"assessment-games-go/internal/notify"
)

var (
	cfg     *config.Config
	logger  *slog.Logger
	logFile string
)

var rootCmd = &cobra.Command{
	Use:           "arcade",
	Short:         "Word guessing and picture puzzle games for classroom assessments",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		var w io.Writer = os.Stderr
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			w = f
		} else if cmd.Name() == "play" {
			// the terminal belongs to the game
			w = io.Discard
		}

		logger = slog.New(tint.NewHandler(w, &tint.Options{
			Level:      cfg.SlogLevel(),
			TimeFormat: time.Kitchen,
			NoColor:    logFile != "",
		}))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openStore returns the configured assessment store and a func releasing it
func openStore(ctx context.Context) (library.Store, func(), error) {
	switch cfg.DatabaseDriver {
	case "memory":
		return library.NewMemoryStore(), func() {}, nil

	case "dynamodb":
		awsCfg, err := awsinfra.NewAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, err
		}
		return dynamostore.NewStore(awsCfg.DynamoDB, cfg.DynamoDBTable), func() {}, nil

	default:
		db, err := library.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return library.NewSQLStore(db), func() { db.Close() }, nil
	}
}

// openBundleStore returns the configured bundle store and a func releasing it
func openBundleStore(ctx context.Context) (bundle.Store, func(), error) {
	switch cfg.DatabaseDriver {
	case "memory":
		return bundle.NewMemoryStore(), func() {}, nil

	case "dynamodb":
		awsCfg, err := awsinfra.NewAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, err
		}
		return dynamostore.NewBundleStore(awsCfg.DynamoDB, dynamostore.BundleTable(cfg.DynamoDBTable)), func() {}, nil

	default:
		db, err := library.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return bundle.NewSQLStore(db), func() { db.Close() }, nil
	}
}

// migrateStore brings the configured backend's schema up to date
func migrateStore(ctx context.Context) error {
	switch cfg.DatabaseDriver {
	case "memory":
		return nil
	case "dynamodb":
		awsCfg, err := awsinfra.NewAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return err
		}
		if err := dynamostore.CreateTable(ctx, awsCfg.DynamoDB, cfg.DynamoDBTable); err != nil {
			return err
		}
		return dynamostore.CreateBundleTable(ctx, awsCfg.DynamoDB, dynamostore.BundleTable(cfg.DynamoDBTable))
	default:
		return library.Migrate(cfg.DatabaseDriver, cfg.DatabaseURL)
	}
}

func newSplitter(ctx context.Context, opts ...puzzle.SplitterOption) *puzzle.Splitter {
	loaderOpts := []puzzle.LoaderOption{
		puzzle.WithHTTPClient(&http.Client{Timeout: cfg.ImageFetchTimeout}),
	}
	awsCfg, err := awsinfra.NewAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		logger.Warn("s3 images unavailable", "error", err)
	} else {
		loaderOpts = append(loaderOpts, puzzle.WithObjectStore(awsCfg.S3))
	}

	opts = append([]puzzle.SplitterOption{puzzle.WithLogger(logger)}, opts...)
	return puzzle.NewSplitter(puzzle.NewLoader(loaderOpts...), opts...)
}

// newSound returns a started sound manager, or a silent player when sound
// is off or no audio device is available.
func newSound() (game.SoundPlayer, func()) {
	if !cfg.SoundEnabled {
		return game.NopSound, func() {}
	}
	sm := audio.NewSoundManager(cfg.SoundVolume)
	if err := sm.Initialize(); err != nil {
		logger.Warn("audio initialization failed", "error", err)
		return game.NopSound, func() {}
	}
	return sm, sm.Close
}

func newMailer() (*notify.Mailer, error) {
	var to []string
	if cfg.ReportTo != "" {
		to = []string{cfg.ReportTo}
	}
	return notify.NewMailer(notify.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.ReportFrom,
		To:       to,
	}, logger)
}
