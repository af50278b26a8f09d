package bundle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"assessment-games-go/internal/library"
)

var (
	ErrNotFound = errors.New("bundle not found")
	ErrConflict = errors.New("bundle already exists")
)

// Record is a stored bundle. Payload is the JSON encoded Bundle; the other
// columns are copies kept for ordering and lookups.
type Record struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Status    Status    `db:"status"`
	Payload   string    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Store defines the interface for bundle persistence. List returns every
// record; filtering happens in the service.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
}

// NewRecord encodes b for storage
func NewRecord(b *Bundle) (*Record, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	return &Record{
		ID:        b.ID,
		Title:     b.Title,
		Status:    b.Status,
		Payload:   string(payload),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}, nil
}

// Decode returns the stored bundle
func (r *Record) Decode() (*Bundle, error) {
	b := &Bundle{}
	if err := json.Unmarshal([]byte(r.Payload), b); err != nil {
		return nil, fmt.Errorf("decode bundle %s: %w", r.ID, err)
	}
	b.ID = r.ID
	b.CreatedAt, b.UpdatedAt = r.CreatedAt, r.UpdatedAt
	return b, nil
}

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

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

func (s *memoryStore) List(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		rec := rec
		out = append(out, &rec)
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

type sqlStore struct {
	db *sqlx.DB
}

// NewSQLStore returns a Store backed by the bundles table that
// library.Migrate creates.
func NewSQLStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Create(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO bundles (id, title, status, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), rec.ID, rec.Title, rec.Status, rec.Payload, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if library.IsUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert bundle: %w", err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id string) (*Record, error) {
	rec := &Record{}
	err := s.db.GetContext(ctx, rec, s.db.Rebind(`
		SELECT id, title, status, payload, created_at, updated_at
		FROM bundles WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get bundle: %w", err)
	}
	return rec, nil
}

func (s *sqlStore) List(ctx context.Context) ([]*Record, error) {
	records := []*Record{}
	err := s.db.SelectContext(ctx, &records, `
		SELECT id, title, status, payload, created_at, updated_at
		FROM bundles ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	return records, nil
}

func (s *sqlStore) Update(ctx context.Context, rec *Record) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE bundles
		SET title = ?, status = ?, payload = ?, updated_at = ?
		WHERE id = ?
	`), rec.Title, rec.Status, rec.Payload, rec.UpdatedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("update bundle: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM bundles WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete bundle: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
