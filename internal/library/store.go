package library

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"assessment-games-go/internal/game"
)

var (
	ErrNotFound = errors.New("assessment not found")
	ErrConflict = errors.New("assessment already exists")
)

// Record is a stored assessment definition. Payload is the encoded assessment.
type Record struct {
	ID        string              `db:"id" json:"id"`
	Title     string              `db:"title" json:"title"`
	Type      game.AssessmentType `db:"type" json:"type"`
	Payload   string              `db:"payload" json:"-"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt time.Time           `db:"updated_at" json:"updated_at"`
}

// Store defines the interface for assessment persistence operations
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, filter Filter) ([]*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
}

// Filter defines the criteria for listing assessments
type Filter struct {
	Type   *game.AssessmentType
	Limit  int
	Offset int
}

// NewFilter creates a new Filter with default values
func NewFilter() Filter {
	return Filter{
		Limit:  50,
		Offset: 0,
	}
}

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns a Store that keeps records in process memory.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]Record)}
}

func (s *memoryStore) Create(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return ErrConflict
	}
	s.records[rec.ID] = *rec
	return nil
}

func (s *memoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *memoryStore) List(ctx context.Context, filter Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		if filter.Type != nil && rec.Type != *filter.Type {
			continue
		}
		rec := rec
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if filter.Offset >= len(out) {
		return []*Record{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memoryStore) Update(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.records[rec.ID]
	if !ok {
		return ErrNotFound
	}
	rec.CreatedAt = old.CreatedAt
	s.records[rec.ID] = *rec
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}
