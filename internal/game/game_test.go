package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(ws ...string) []WordItem {
	items := make([]WordItem, len(ws))
	for i, w := range ws {
		items[i] = WordItem{ID: string(rune('1' + i)), Word: w}
	}
	return items
}

func newEngine(t *testing.T, max int, ws ...string) (*WordGuessEngine, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	engine, err := NewWordGuessEngine(words(ws...), GameConfig{MaxWrongGuesses: max}, WithClock(clock.Now))
	require.NoError(t, err)
	return engine, clock
}

func guessAll(t *testing.T, e *WordGuessEngine, letters string) {
	t.Helper()
	for _, r := range letters {
		_, err := e.GuessLetter(r)
		require.NoError(t, err)
	}
}

func TestNewWordGuessEngineValidation(t *testing.T) {
	tests := []struct {
		name    string
		words   []WordItem
		max     int
		wantErr error
	}{
		{"no words", nil, 5, ErrNoWords},
		{"zero budget", words("CAT"), 0, ErrInvalidConfig},
		{"budget too large", words("CAT"), 11, ErrInvalidConfig},
		{"blank word", words("  "), 5, ErrInvalidWord},
		{"punctuation only", words("--"), 5, ErrInvalidWord},
		{"letter outside A-Z", words("CAFÉ"), 5, ErrInvalidWord},
		{"valid", words("cat", "ice-cream"), 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWordGuessEngine(tt.words, GameConfig{MaxWrongGuesses: tt.max})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWordsAreUpperCasedWithoutTouchingInput(t *testing.T) {
	input := []WordItem{{ID: "1", Word: "happy", Hint: "A feeling of joy"}}
	engine, err := NewWordGuessEngine(input, GameConfig{MaxWrongGuesses: 5})
	require.NoError(t, err)

	assert.Equal(t, "HAPPY", engine.CurrentWord().Word)
	assert.Equal(t, "A feeling of joy", engine.CurrentWord().Hint)
	assert.Equal(t, "happy", input[0].Word)
}

func TestGuessLetterOutcomes(t *testing.T) {
	engine, _ := newEngine(t, 5, "CAT")

	outcome, err := engine.GuessLetter('c')
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, outcome)

	outcome, err = engine.GuessLetter('Z')
	require.NoError(t, err)
	assert.Equal(t, OutcomeIncorrect, outcome)

	outcome, err = engine.GuessLetter('C')
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyUsed, outcome)

	_, err = engine.GuessLetter('7')
	assert.ErrorIs(t, err, ErrInvalidLetter)

	assert.Equal(t, []rune{'C'}, engine.GuessedLetters())
	assert.Equal(t, []rune{'C', 'Z'}, engine.UsedLetters())
	assert.Equal(t, 1, engine.WrongGuesses())
	assert.Equal(t, "C__", engine.Mask())
}

func TestRepeatedGuessIsIdempotent(t *testing.T) {
	engine, _ := newEngine(t, 5, "KIND")
	guessAll(t, engine, "KQ")

	for _, r := range "KQkq" {
		outcome, err := engine.GuessLetter(r)
		require.NoError(t, err)
		assert.Equal(t, OutcomeAlreadyUsed, outcome)
	}

	assert.Equal(t, 1, engine.WrongGuesses())
	assert.Equal(t, []rune{'K'}, engine.GuessedLetters())
	assert.Equal(t, []rune{'K', 'Q'}, engine.UsedLetters())
}

func TestGuessedIsSubsetOfUsed(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		engine, _ := newEngine(t, 10, "STRONG")
		for _, i := range rng.Perm(26) {
			_, err := engine.GuessLetter(rune('A' + i))
			if err != nil {
				assert.ErrorIs(t, err, ErrWordDecided)
			}

			used := map[rune]bool{}
			for _, r := range engine.UsedLetters() {
				used[r] = true
			}
			for _, r := range engine.GuessedLetters() {
				assert.True(t, used[r], "guessed letter %q missing from used", r)
			}
		}
	}
}

func TestCompletionNeedsEveryDistinctLetter(t *testing.T) {
	tests := []struct {
		name    string
		word    string
		letters string
	}{
		{"in order", "KIND", "KIND"},
		{"reversed with misses", "KIND", "DXNYIK"},
		{"duplicate click", "KIND", "KINDD"},
		{"repeated letters", "HAPPY", "PAYH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newEngine(t, 5, tt.word)
			guessAll(t, engine, tt.letters)
			assert.True(t, engine.IsCurrentWordComplete())
			assert.Equal(t, tt.word, engine.Mask())
		})
	}

	engine, _ := newEngine(t, 5, "KIND")
	guessAll(t, engine, "KIN")
	assert.False(t, engine.IsCurrentWordComplete())
}

func TestNonLettersAreNotGuessed(t *testing.T) {
	engine, _ := newEngine(t, 5, "ice cream")
	assert.Equal(t, "___ _____", engine.Mask())

	guessAll(t, engine, "ICERAM")
	assert.True(t, engine.IsCurrentWordComplete())
	assert.Equal(t, "ICE CREAM", engine.Mask())
}

func TestAdvanceGating(t *testing.T) {
	engine, _ := newEngine(t, 2, "CAT", "DOG")

	_, err := engine.Advance(false)
	assert.ErrorIs(t, err, ErrAdvanceBlocked)
	assert.False(t, engine.CanAdvance())

	guessAll(t, engine, "XY")
	assert.True(t, engine.CanAdvance())

	res, err := engine.Advance(false)
	require.NoError(t, err)
	assert.False(t, res.Done)
	assert.False(t, res.Result.Completed)
	assert.True(t, res.Result.Skipped)
	assert.Equal(t, 2, res.Result.WrongGuesses)
}

func TestAdvanceResetsLetterState(t *testing.T) {
	engine, _ := newEngine(t, 5, "CAT", "DOG")
	guessAll(t, engine, "XCAT")
	before := engine.UsedLetters()

	_, err := engine.Advance(false)
	require.NoError(t, err)

	assert.Empty(t, engine.UsedLetters())
	assert.Empty(t, engine.GuessedLetters())
	assert.Equal(t, 0, engine.WrongGuesses())
	assert.Equal(t, "DOG", engine.CurrentWord().Word)
	assert.Equal(t, 2, engine.Position())
	assert.Equal(t, []rune{'A', 'C', 'T', 'X'}, before)
}

func TestSkipRecordsIncompleteEvenWhenComplete(t *testing.T) {
	engine, _ := newEngine(t, 5, "CAT", "DOG")
	guessAll(t, engine, "CAT")

	res, err := engine.Advance(true)
	require.NoError(t, err)
	assert.False(t, res.Result.Completed)
	assert.True(t, res.Result.Skipped)
}

func TestAdvanceReturnsOrderedResultsOnLastWord(t *testing.T) {
	list := []string{"HAPPY", "BRAVE", "KIND", "SMART", "STRONG"}
	engine, clock := newEngine(t, 5, list...)

	for i, w := range list {
		if i%2 == 0 {
			guessAll(t, engine, w)
		}
		clock.Advance(time.Duration(i+1) * time.Second)

		res, err := engine.Advance(i%2 == 1)
		require.NoError(t, err)
		assert.Equal(t, i == len(list)-1, res.Done, "word %d", i)
		assert.Equal(t, time.Duration(i+1)*time.Second, res.Result.TimeSpent)

		if res.Done {
			require.Len(t, res.Results, len(list))
			for j, r := range res.Results {
				assert.Equal(t, list[j], r.Word)
				assert.Equal(t, j%2 == 0, r.Completed)
				assert.Equal(t, !r.Completed, r.Skipped)
			}
		}
	}

	_, err := engine.Advance(true)
	assert.ErrorIs(t, err, ErrSessionFinished)
	_, err = engine.GuessLetter('A')
	assert.ErrorIs(t, err, ErrSessionFinished)
}

func TestScenarioCat(t *testing.T) {
	engine, _ := newEngine(t, 5, "CAT")

	guessAll(t, engine, "ZXCAT")
	assert.Equal(t, 2, engine.WrongGuesses())
	assert.True(t, engine.IsCurrentWordComplete())

	res, err := engine.Advance(false)
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, "CAT", res.Result.Word)
	assert.True(t, res.Result.Completed)
	assert.False(t, res.Result.Skipped)
	assert.Equal(t, 2, res.Result.WrongGuesses)
}

func TestScenarioBudgetOfOne(t *testing.T) {
	engine, _ := newEngine(t, 1, "A", "B")

	outcome, err := engine.GuessLetter('Q')
	require.NoError(t, err)
	assert.Equal(t, OutcomeIncorrect, outcome)
	assert.Equal(t, engine.MaxWrongGuesses(), engine.WrongGuesses())
	assert.True(t, engine.CanAdvance())

	for _, r := range "WERT" {
		_, err := engine.GuessLetter(r)
		assert.ErrorIs(t, err, ErrWordDecided)
	}
	assert.Equal(t, 1, engine.WrongGuesses())

	res, err := engine.Advance(true)
	require.NoError(t, err)
	assert.False(t, res.Done)
	assert.False(t, res.Result.Completed)
	assert.True(t, res.Result.Skipped)
	assert.Equal(t, 1, res.Result.WrongGuesses)
	assert.Equal(t, "B", engine.CurrentWord().Word)
}

func TestSoundCues(t *testing.T) {
	sound := new(MockSoundPlayer)
	sound.On("Play", CueWrong).Once()
	sound.On("Play", CueCorrect).Twice()
	sound.On("Play", CueComplete).Once()

	engine, err := NewWordGuessEngine(words("GO"), GameConfig{MaxWrongGuesses: 3}, WithSound(sound))
	require.NoError(t, err)

	guessAll(t, engine, "XGGO")

	sound.AssertExpectations(t)
	sound.AssertNumberOfCalls(t, "Play", 4)
}

func TestResultsAreCopies(t *testing.T) {
	engine, _ := newEngine(t, 5, "A", "B")
	_, err := engine.Advance(true)
	require.NoError(t, err)

	results := engine.Results()
	results[0].Word = "CHANGED"
	assert.Equal(t, "A", engine.Results()[0].Word)
}
