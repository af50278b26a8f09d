package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"assessment-games-go/internal/auth"
	"assessment-games-go/internal/bundle"
	"assessment-games-go/internal/library"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assessment library API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateServer(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := migrateStore(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()
		bundles, closeBundles, err := openBundleStore(ctx)
		if err != nil {
			return err
		}
		defer closeBundles()

		authService, err := auth.NewService([]byte(cfg.JWTSecret), cfg.JWTExpiration, cfg.TeacherPasscodeHash)
		if err != nil {
			return err
		}

		assessments := library.NewService(store, logger)
		handler := library.NewHandler(assessments, logger)
		bundleHandler := bundle.NewHandler(bundle.NewService(bundles, assessments, logger), logger)
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           library.NewRouter(handler, authService, logger, bundleHandler),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting server", "addr", srv.Addr, "driver", cfg.DatabaseDriver, "env", cfg.Environment)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
