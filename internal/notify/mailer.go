package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"assessment-games-go/internal/game"
	"assessment-games-go/internal/game/session"
	"assessment-games-go/internal/game/summary"
)

var ErrNoRecipients = errors.New("report needs a sender and at least one recipient")

// Config holds the SMTP settings for result reports
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Sender delivers messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends a plain-text report for every finished session
type Mailer struct {
	sender Sender
	from   string
	to     []string
	logger *slog.Logger
}

// NewMailer returns nil and no error when no SMTP host is configured.
func NewMailer(cfg Config, logger *slog.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return NewMailerWithSender(client, cfg.From, cfg.To, logger)
}

func NewMailerWithSender(sender Sender, from string, to []string, logger *slog.Logger) (*Mailer, error) {
	if from == "" || len(to) == 0 {
		return nil, ErrNoRecipients
	}
	return &Mailer{sender: sender, from: from, to: to, logger: logger}, nil
}

// Report renders and sends the outcome. It has the session.CompletionFunc shape.
func (m *Mailer) Report(ctx context.Context, o session.Outcome) error {
	subject, body := RenderReport(o)

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(m.to...); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}

	m.logger.Info("result report sent", "session_id", o.SessionID(), "recipients", len(m.to))
	return nil
}

// RenderReport formats an outcome as a mail subject and plain-text body.
func RenderReport(o session.Outcome) (subject, body string) {
	var b strings.Builder

	switch v := o.(type) {
	case *session.WordsOutcome:
		s := summary.Summarize(v.Results)
		subject = fmt.Sprintf("Results: %s (%d/%d words)", v.Title, s.Completed, s.Total)

		fmt.Fprintf(&b, "Assessment: %s\n", v.Title)
		fmt.Fprintf(&b, "Session: %s\n\n", v.ID)
		fmt.Fprintf(&b, "Words completed: %d of %d\n", s.Completed, s.Total)
		fmt.Fprintf(&b, "Total wrong guesses: %d\n", s.WrongGuesses)
		fmt.Fprintf(&b, "Average time per word: %s\n\n", summary.Seconds(s.AverageTime))
		for i, r := range v.Results {
			fmt.Fprintf(&b, "%2d. %-16s %-10s wrong %d  %s\n",
				i+1, r.Word, summary.Status(r), r.WrongGuesses, summary.Seconds(r.TimeSpent))
		}

	case *session.PuzzleOutcome:
		s := summary.SummarizePuzzle(v.Result)
		subject = fmt.Sprintf("Results: %s (puzzle %s)", v.Title, puzzleStatus(v.Result))

		fmt.Fprintf(&b, "Assessment: %s\n", v.Title)
		fmt.Fprintf(&b, "Session: %s\n\n", v.ID)
		fmt.Fprintf(&b, "Puzzle: %s\n", puzzleStatus(v.Result))
		fmt.Fprintf(&b, "Moves: %d\n", s.Moves)
		fmt.Fprintf(&b, "Time: %s\n", s.TimeSpent)

	default:
		subject = "Results"
		fmt.Fprintf(&b, "Unrecognized outcome %T\n", o)
	}

	return subject, b.String()
}

func puzzleStatus(r game.PuzzleResult) string {
	if r.Completed {
		return "solved"
	}
	return "unsolved"
}
