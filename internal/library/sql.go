package library

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	sqlite "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

//go:embed migrations
var migrations embed.FS

// Open connects to the assessment database. SQLite files are created on
// demand and opened with WAL journaling and a busy timeout.
func Open(driver, dsn string) (*sqlx.DB, error) {
	source, err := dataSource(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragmas: %w", err)
		}
	}
	return db, nil
}

// Migrate applies the embedded schema migrations for driver.
func Migrate(driver, dsn string) error {
	source, err := dataSource(driver, dsn)
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", driver, err)
	}

	var target database.Driver
	switch driver {
	case DriverPostgres:
		target, err = postgres.WithInstance(db, &postgres.Config{})
	case DriverSQLite:
		target, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func dataSource(driver, dsn string) (string, error) {
	switch driver {
	case DriverPostgres:
		return dsn, nil
	case DriverSQLite:
		path, _, _ := strings.Cut(dsn, "?")
		if dir := filepath.Dir(path); dir != "." && dir != "" && path != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		if strings.Contains(dsn, "?") {
			return dsn, nil
		}
		return dsn + "?_busy_timeout=5000&_journal_mode=WAL", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

type sqlStore struct {
	db *sqlx.DB
}

// NewSQLStore returns a Store backed by an assessments table.
func NewSQLStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Create(ctx context.Context, rec *Record) error {
	query := s.db.Rebind(`
		INSERT INTO assessments (id, title, type, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Title, rec.Type, rec.Payload, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id string) (*Record, error) {
	rec := &Record{}
	err := s.db.GetContext(ctx, rec, s.db.Rebind(`
		SELECT id, title, type, payload, created_at, updated_at
		FROM assessments WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return rec, nil
}

func (s *sqlStore) List(ctx context.Context, filter Filter) ([]*Record, error) {
	query := `SELECT id, title, type, payload, created_at, updated_at FROM assessments`
	var args []any
	if filter.Type != nil {
		query += ` WHERE type = ?`
		args = append(args, *filter.Type)
	}
	query += ` ORDER BY created_at, id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	records := []*Record{}
	if err := s.db.SelectContext(ctx, &records, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return records, nil
}

func (s *sqlStore) Update(ctx context.Context, rec *Record) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE assessments
		SET title = ?, type = ?, payload = ?, updated_at = ?
		WHERE id = ?
	`), rec.Title, rec.Type, rec.Payload, rec.UpdatedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("update assessment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM assessments WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// IsUniqueViolation reports whether err is a primary key or unique
// constraint failure from postgres or sqlite.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite.ErrConstraintPrimaryKey || liteErr.ExtendedCode == sqlite.ErrConstraintUnique
	}
	return false
}
