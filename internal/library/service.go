package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"assessment-games-go/internal/game"
	"assessment-games-go/internal/game/modes"
)

var ErrInvalidAssessment = errors.New("invalid assessment")

// Summary is the list view of a stored assessment
type Summary struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Type      game.AssessmentType `json:"type"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Service manages assessment definitions. Words are normalized and settings
// validated before anything is stored.
type Service interface {
	Create(ctx context.Context, a game.Assessment) (game.Assessment, error)
	Get(ctx context.Context, id string) (game.Assessment, error)
	List(ctx context.Context, filter Filter) ([]Summary, error)
	Update(ctx context.Context, id string, a game.Assessment) (game.Assessment, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) Service {
	return &service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, a game.Assessment) (game.Assessment, error) {
	setID(a, uuid.New().String())
	rec, err := s.prepare(a)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.UpdatedAt

	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("assessment created", "id", rec.ID, "type", rec.Type, "title", rec.Title)
	return a, nil
}

func (s *service) Get(ctx context.Context, id string) (game.Assessment, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return decode(rec)
}

func (s *service) List(ctx context.Context, filter Filter) ([]Summary, error) {
	records, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(records))
	for _, rec := range records {
		out = append(out, Summary{
			ID:        rec.ID,
			Title:     rec.Title,
			Type:      rec.Type,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id string, a game.Assessment) (game.Assessment, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	setID(a, id)
	rec, err := s.prepare(a)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = existing.CreatedAt

	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("assessment updated", "id", id, "type", rec.Type)
	return a, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("assessment deleted", "id", id)
	return nil
}

func (s *service) prepare(a game.Assessment) (*Record, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: assessment is required", ErrInvalidAssessment)
	}
	modes.ApplyDefaults(a)
	if err := modes.Validate(a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAssessment, err)
	}

	payload, err := game.EncodeAssessment(a)
	if err != nil {
		return nil, fmt.Errorf("encode assessment: %w", err)
	}

	base := a.Base()
	return &Record{
		ID:        base.ID,
		Title:     base.Title,
		Type:      base.Type,
		Payload:   string(payload),
		UpdatedAt: s.now(),
	}, nil
}

func decode(rec *Record) (game.Assessment, error) {
	a, err := game.DecodeAssessment([]byte(rec.Payload))
	if err != nil {
		return nil, fmt.Errorf("decode assessment %s: %w", rec.ID, err)
	}
	setID(a, rec.ID)
	return a, nil
}

func setID(a game.Assessment, id string) {
	switch v := a.(type) {
	case *game.WordAssessment:
		v.ID = id
	case *game.PuzzleAssessment:
		v.ID = id
	}
}
