package library

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-games-go/internal/game"
)

func setupSQLiteStore(t *testing.T) Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "data", "library.db")
	require.NoError(t, Migrate(DriverSQLite, dsn))
	// running twice is a no-op
	require.NoError(t, Migrate(DriverSQLite, dsn))

	db, err := Open(DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSQLStore(db)
}

func record(id, title string, typ game.AssessmentType, at time.Time) *Record {
	return &Record{
		ID:        id,
		Title:     title,
		Type:      typ,
		Payload:   `{"id":"` + id + `"}`,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"sqlite": setupSQLiteStore,
	}

	for name, setup := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := setup(t)
			base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

			require.NoError(t, store.Create(ctx, record("a", "Animals", game.AssessmentTypeGuessTheWord, base)))
			require.NoError(t, store.Create(ctx, record("b", "Farm", game.AssessmentTypeImagePuzzle, base.Add(time.Minute))))
			require.NoError(t, store.Create(ctx, record("c", "Colours", game.AssessmentTypeGuessTheWord, base.Add(2*time.Minute))))

			t.Run("duplicate id", func(t *testing.T) {
				err := store.Create(ctx, record("a", "Again", game.AssessmentTypeGuessTheWord, base))
				assert.ErrorIs(t, err, ErrConflict)
			})

			t.Run("get", func(t *testing.T) {
				rec, err := store.Get(ctx, "b")
				require.NoError(t, err)
				assert.Equal(t, "Farm", rec.Title)
				assert.Equal(t, game.AssessmentTypeImagePuzzle, rec.Type)
				assert.True(t, rec.CreatedAt.Equal(base.Add(time.Minute)))

				_, err = store.Get(ctx, "zzz")
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("list", func(t *testing.T) {
				all, err := store.List(ctx, NewFilter())
				require.NoError(t, err)
				require.Len(t, all, 3)
				assert.Equal(t, []string{"a", "b", "c"}, ids(all))

				words := game.AssessmentTypeGuessTheWord
				filtered, err := store.List(ctx, Filter{Type: &words, Limit: 10})
				require.NoError(t, err)
				assert.Equal(t, []string{"a", "c"}, ids(filtered))

				page, err := store.List(ctx, Filter{Limit: 1, Offset: 1})
				require.NoError(t, err)
				assert.Equal(t, []string{"b"}, ids(page))
			})

			t.Run("update", func(t *testing.T) {
				rec := record("a", "Wild Animals", game.AssessmentTypeGuessTheWord, base.Add(time.Hour))
				require.NoError(t, store.Update(ctx, rec))

				got, err := store.Get(ctx, "a")
				require.NoError(t, err)
				assert.Equal(t, "Wild Animals", got.Title)
				assert.True(t, got.CreatedAt.Equal(base))
				assert.True(t, got.UpdatedAt.Equal(base.Add(time.Hour)))

				err = store.Update(ctx, record("zzz", "x", game.AssessmentTypeGuessTheWord, base))
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("delete", func(t *testing.T) {
				require.NoError(t, store.Delete(ctx, "c"))
				_, err := store.Get(ctx, "c")
				assert.ErrorIs(t, err, ErrNotFound)
				assert.ErrorIs(t, store.Delete(ctx, "c"), ErrNotFound)
			})
		})
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
	assert.ErrorIs(t, Migrate("mysql", "whatever"), ErrUnsupportedDriver)
}

func ids(records []*Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
