package bundle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"assessment-games-go/internal/game"
	"assessment-games-go/internal/library"
)

var ErrInvalidBundle = errors.New("invalid bundle")

// Assessments looks up the library assessments a bundle links to
type Assessments interface {
	Get(ctx context.Context, id string) (game.Assessment, error)
}

// Service manages material bundles. Bundles are validated, and linked
// assessments must exist, before anything is stored.
type Service interface {
	Create(ctx context.Context, b *Bundle) (*Bundle, error)
	Get(ctx context.Context, id string) (*Bundle, error)
	List(ctx context.Context, filter Filter) ([]*Bundle, error)
	Update(ctx context.Context, id string, b *Bundle) (*Bundle, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	store       Store
	assessments Assessments
	logger      *slog.Logger
	now         func() time.Time
}

// NewService returns a bundle Service. assessments may be nil, in which
// case linked assessment ids are not checked.
func NewService(store Store, assessments Assessments, logger *slog.Logger) Service {
	return &service{
		store:       store,
		assessments: assessments,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, b *Bundle) (*Bundle, error) {
	b.ID = uuid.New().String()
	b.CreatedAt = s.now()
	b.UpdatedAt = b.CreatedAt
	if err := s.prepare(ctx, b); err != nil {
		return nil, err
	}

	rec, err := NewRecord(b)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("bundle created", "id", b.ID, "title", b.Title, "status", b.Status)
	return b, nil
}

func (s *service) Get(ctx context.Context, id string) (*Bundle, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.Decode()
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Bundle, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	bundles := make([]*Bundle, 0, len(records))
	for _, rec := range records {
		b, err := rec.Decode()
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, b)
	}
	return filter.Apply(bundles), nil
}

func (s *service) Update(ctx context.Context, id string, b *Bundle) (*Bundle, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	b.ID = id
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = s.now()
	if b.CreatedBy == "" {
		if old, err := existing.Decode(); err == nil {
			b.CreatedBy = old.CreatedBy
		}
	}
	if err := s.prepare(ctx, b); err != nil {
		return nil, err
	}

	rec, err := NewRecord(b)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("bundle updated", "id", id, "status", b.Status)
	return b, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("bundle deleted", "id", id)
	return nil
}

// prepare fills defaults and validates b
func (s *service) prepare(ctx context.Context, b *Bundle) error {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidBundle)
	}
	if b.Status == "" {
		b.Status = StatusDraft
	}
	if !slices.Contains([]Status{StatusDraft, StatusPublished, StatusArchived}, b.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidBundle, b.Status)
	}
	if err := validateMetadata(b.Metadata); err != nil {
		return err
	}

	c := &b.Contents
	if c.IntroVideo != nil {
		if err := prepareContent(c.IntroVideo, MaterialVideo); err != nil {
			return err
		}
	}
	slots := []struct {
		items   []Content
		allowed []MaterialType
	}{
		{c.LearningVideos, []MaterialType{MaterialVideo}},
		{c.Activities, []MaterialType{MaterialActivity}},
		{c.Games, []MaterialType{MaterialGame}},
		{c.Printables, []MaterialType{MaterialDocument, MaterialImage}},
	}
	for _, slot := range slots {
		for i := range slot.items {
			if err := prepareContent(&slot.items[i], slot.allowed...); err != nil {
				return err
			}
		}
	}

	return s.checkAssessments(ctx, c.Assessments)
}

func (s *service) checkAssessments(ctx context.Context, ids []string) error {
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: assessment %q listed twice", ErrInvalidBundle, id)
		}
		seen[id] = true

		if s.assessments == nil {
			continue
		}
		if _, err := s.assessments.Get(ctx, id); err != nil {
			if errors.Is(err, library.ErrNotFound) {
				return fmt.Errorf("%w: assessment %q does not exist", ErrInvalidBundle, id)
			}
			return err
		}
	}
	return nil
}

// prepareContent defaults the type to the first allowed one and assigns
// an id when missing.
func prepareContent(c *Content, allowed ...MaterialType) error {
	if c.Type == "" {
		c.Type = allowed[0]
	}
	if !slices.Contains(allowed, c.Type) {
		return fmt.Errorf("%w: %s content %q cannot go in a %s slot", ErrInvalidBundle, c.Type, c.Title, allowed[0])
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: %s content needs a title", ErrInvalidBundle, c.Type)
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return validateMetadata(c.Metadata)
}

func validateMetadata(m Metadata) error {
	for _, g := range m.Grades {
		if !slices.Contains(Grades, g) {
			return fmt.Errorf("%w: unknown grade %q", ErrInvalidBundle, g)
		}
	}
	switch m.Difficulty {
	case "", DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidBundle, m.Difficulty)
	}
	if m.Duration < 0 {
		return fmt.Errorf("%w: duration cannot be negative", ErrInvalidBundle)
	}
	return nil
}
