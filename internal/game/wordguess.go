package game

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"golang.org/x/exp/maps"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinWrongGuesses     = 1
	MaxWrongGuesses     = 10
	DefaultWrongGuesses = 5
)

var (
	ErrNoWords         = errors.New("at least one word is required")
	ErrInvalidWord     = errors.New("word must contain letters A-Z")
	ErrInvalidConfig   = errors.New("max wrong guesses must be between 1 and 10")
	ErrInvalidLetter   = errors.New("letter must be A-Z")
	ErrWordDecided     = errors.New("current word is already decided")
	ErrAdvanceBlocked  = errors.New("word is neither complete nor out of guesses")
	ErrSessionFinished = errors.New("session is finished")
)

type letterSet map[rune]struct{}

func (s letterSet) has(r rune) bool {
	_, ok := s[r]
	return ok
}

func (s letterSet) sorted() []rune {
	keys := maps.Keys(s)
	slices.Sort(keys)
	return keys
}

// WordGuessEngine runs one guess-the-word session over an ordered word list.
// It is not safe for concurrent use.
type WordGuessEngine struct {
	words           []WordItem
	maxWrongGuesses int
	sound           SoundPlayer
	now             func() time.Time

	index         int
	wordLetters   letterSet
	guessed       letterSet
	used          letterSet
	wrongGuesses  int
	wordStartedAt time.Time
	results       []GuessResult
	finished      bool
}

type EngineOption func(*WordGuessEngine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *WordGuessEngine) { e.now = now }
}

func WithSound(sound SoundPlayer) EngineOption {
	return func(e *WordGuessEngine) { e.sound = sound }
}

func NewWordGuessEngine(words []WordItem, cfg GameConfig, opts ...EngineOption) (*WordGuessEngine, error) {
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	if cfg.MaxWrongGuesses < MinWrongGuesses || cfg.MaxWrongGuesses > MaxWrongGuesses {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConfig, cfg.MaxWrongGuesses)
	}

	upper := cases.Upper(language.Und)
	owned := make([]WordItem, len(words))
	for i, w := range words {
		w.Word = upper.String(strings.TrimSpace(w.Word))
		if err := ValidateWord(w.Word); err != nil {
			return nil, err
		}
		owned[i] = w
	}

	e := &WordGuessEngine{
		words:           owned,
		maxWrongGuesses: cfg.MaxWrongGuesses,
		sound:           NopSound,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.startWord(0)
	return e, nil
}

func (e *WordGuessEngine) startWord(index int) {
	e.index = index
	e.wordLetters = distinctLetters(e.words[index].Word)
	e.guessed = letterSet{}
	e.used = letterSet{}
	e.wrongGuesses = 0
	e.wordStartedAt = e.now()
}

func (e *WordGuessEngine) GuessLetter(letter rune) (GuessOutcome, error) {
	if e.finished {
		return "", ErrSessionFinished
	}

	letter = unicode.ToUpper(letter)
	if !isGuessable(letter) {
		return "", fmt.Errorf("%w: %q", ErrInvalidLetter, letter)
	}

	if e.used.has(letter) {
		return OutcomeAlreadyUsed, nil
	}

	if e.IsCurrentWordComplete() || e.outOfGuesses() {
		return "", ErrWordDecided
	}

	e.used[letter] = struct{}{}
	if !e.wordLetters.has(letter) {
		e.wrongGuesses++
		e.sound.Play(CueWrong)
		return OutcomeIncorrect, nil
	}

	e.guessed[letter] = struct{}{}
	e.sound.Play(CueCorrect)
	if e.IsCurrentWordComplete() {
		e.sound.Play(CueComplete)
	}
	return OutcomeCorrect, nil
}

func (e *WordGuessEngine) IsCurrentWordComplete() bool {
	for r := range e.wordLetters {
		if !e.guessed.has(r) {
			return false
		}
	}
	return true
}

func (e *WordGuessEngine) outOfGuesses() bool {
	return e.wrongGuesses >= e.maxWrongGuesses
}

// CanAdvance reports whether the next-word action is open without skipping.
func (e *WordGuessEngine) CanAdvance() bool {
	return !e.finished && (e.IsCurrentWordComplete() || e.outOfGuesses())
}

// Advance records the current word and moves on. A skip is always allowed
// and is recorded as not completed.
func (e *WordGuessEngine) Advance(skip bool) (AdvanceResult, error) {
	if e.finished {
		return AdvanceResult{}, ErrSessionFinished
	}
	if !skip && !e.CanAdvance() {
		return AdvanceResult{}, ErrAdvanceBlocked
	}

	word := e.words[e.index]
	completed := !skip && e.IsCurrentWordComplete()
	result := GuessResult{
		WordID:       word.ID,
		Word:         word.Word,
		Completed:    completed,
		WrongGuesses: e.wrongGuesses,
		Skipped:      !completed,
		TimeSpent:    e.now().Sub(e.wordStartedAt),
	}
	e.results = append(e.results, result)

	if e.index < len(e.words)-1 {
		e.startWord(e.index + 1)
		return AdvanceResult{Result: result}, nil
	}

	e.finished = true
	return AdvanceResult{Done: true, Result: result, Results: e.Results()}, nil
}

func (e *WordGuessEngine) CurrentWord() WordItem {
	return e.words[e.index]
}

// Mask returns the current word with unguessed letters replaced by '_'.
func (e *WordGuessEngine) Mask() string {
	var b strings.Builder
	for _, r := range e.words[e.index].Word {
		if isGuessable(r) && !e.guessed.has(r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (e *WordGuessEngine) UsedLetters() []rune    { return e.used.sorted() }
func (e *WordGuessEngine) GuessedLetters() []rune { return e.guessed.sorted() }
func (e *WordGuessEngine) WrongGuesses() int      { return e.wrongGuesses }
func (e *WordGuessEngine) MaxWrongGuesses() int   { return e.maxWrongGuesses }
func (e *WordGuessEngine) Position() int          { return e.index + 1 }
func (e *WordGuessEngine) Total() int             { return len(e.words) }
func (e *WordGuessEngine) Finished() bool         { return e.finished }

func (e *WordGuessEngine) Results() []GuessResult {
	return slices.Clone(e.results)
}

func distinctLetters(word string) letterSet {
	set := letterSet{}
	for _, r := range word {
		if unicode.IsLetter(r) {
			set[r] = struct{}{}
		}
	}
	return set
}

// ValidateWord reports ErrInvalidWord unless word has at least one letter
// and every letter in it is A-Z. Other characters are shown as-is.
func ValidateWord(word string) error {
	if len(distinctLetters(word)) == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidWord, word)
	}
	for _, r := range word {
		if unicode.IsLetter(r) && !isGuessable(r) {
			return fmt.Errorf("%w: %q", ErrInvalidWord, word)
		}
	}
	return nil
}

func isGuessable(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
