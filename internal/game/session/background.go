package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Background delivers outcomes to a slow sink, such as a mailer, off the
// caller's goroutine so Next and Swap return as soon as the session is
// decided. Each delivery gets its own timeout and survives cancellation of
// the context it was reported with.
type Background struct {
	sink    CompletionFunc
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewBackground(sink CompletionFunc, timeout time.Duration, logger *slog.Logger) *Background {
	if logger == nil {
		logger = slog.Default()
	}
	return &Background{sink: sink, timeout: timeout, logger: logger}
}

// Complete is a CompletionFunc. It always returns nil; failures are logged.
func (b *Background) Complete(ctx context.Context, o Outcome) error {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
		defer cancel()

		if err := b.sink(ctx, o); err != nil {
			b.logger.Error("background completion failed", "session_id", o.SessionID(), "error", err)
			return
		}
		b.logger.Debug("background completion delivered", "session_id", o.SessionID())
	}()
	return nil
}

// Wait blocks until every pending delivery has returned or ctx is done.
func (b *Background) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
