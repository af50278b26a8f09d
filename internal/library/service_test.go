package library

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-games-go/internal/game"
	"assessment-games-go/internal/game/modes"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestServiceCreateNormalizes(t *testing.T) {
	svc := NewService(NewMemoryStore(), quietLogger)

	created, err := svc.Create(context.Background(), &game.WordAssessment{
		AssessmentBase: game.AssessmentBase{Title: "Fruit"},
		Words:          []game.WordItem{{Word: " apple "}, {Word: "kiwi", Hint: "small and green"}},
	})
	require.NoError(t, err)

	id := created.Base().ID
	assert.NotEmpty(t, id)

	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)

	w, ok := got.(*game.WordAssessment)
	require.True(t, ok)
	assert.Equal(t, id, w.ID)
	assert.Equal(t, "APPLE", w.Words[0].Word)
	assert.Equal(t, "1", w.Words[0].ID)
	assert.Equal(t, "KIWI", w.Words[1].Word)
	assert.Equal(t, "small and green", w.Words[1].Hint)
	assert.Equal(t, game.DefaultWrongGuesses, w.GameConfig.MaxWrongGuesses)
	assert.Equal(t, modes.DefaultTheme(), w.Theme)
}

func TestServiceRejectsInvalid(t *testing.T) {
	svc := NewService(NewMemoryStore(), quietLogger)

	tests := []struct {
		name string
		a    game.Assessment
	}{
		{"nil", nil},
		{"no title", &game.WordAssessment{Words: []game.WordItem{{Word: "CAT"}}}},
		{"no words", &game.WordAssessment{AssessmentBase: game.AssessmentBase{Title: "Empty"}}},
		{"grid too small", &game.PuzzleAssessment{
			AssessmentBase: game.AssessmentBase{Title: "Tiny"},
			Puzzle:         game.PuzzleConfig{Rows: 1, Cols: 3, FinalImageURL: "x.png"},
		}},
		{"no image", &game.PuzzleAssessment{
			AssessmentBase: game.AssessmentBase{Title: "Blank"},
			Puzzle:         game.PuzzleConfig{Rows: 3, Cols: 3},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.a)
			assert.ErrorIs(t, err, ErrInvalidAssessment)
		})
	}

	list, err := svc.List(context.Background(), NewFilter())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestServiceUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), quietLogger)

	created, err := svc.Create(ctx, &game.PuzzleAssessment{
		AssessmentBase: game.AssessmentBase{Title: "Farm"},
		Puzzle:         game.PuzzleConfig{Rows: 3, Cols: 3, FinalImageURL: "s3://pics/farm.png"},
	})
	require.NoError(t, err)
	id := created.Base().ID

	_, err = svc.Update(ctx, id, &game.PuzzleAssessment{
		AssessmentBase: game.AssessmentBase{ID: "ignored", Title: "Big Farm"},
		Puzzle:         game.PuzzleConfig{Rows: 4, Cols: 5, FinalImageURL: "s3://pics/farm.png"},
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	p := got.(*game.PuzzleAssessment)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "Big Farm", p.Title)
	assert.Equal(t, 5, p.Puzzle.Cols)

	_, err = svc.Update(ctx, "missing", p)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
