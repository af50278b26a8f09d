package modes

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"assessment-games-go/internal/game"
)

const (
	MinGridSize     = 2
	MaxGridSize     = 5
	DefaultGridSize = 3
)

var ErrInvalidSettings = errors.New("invalid assessment settings")

var (
	alphabetAnimations     = []string{"fade", "bounce", "slide", "flip"}
	wordCompleteAnimations = []string{"confetti", "fireworks", "sparkle"}
	transitionSpeeds       = []string{"slow", "medium", "fast"}
	nextSkipAnimations     = []string{"fade", "bounce", "slide", "flip", "shake", "tilt"}
)

// DefaultGameConfig returns the word game defaults
func DefaultGameConfig() game.GameConfig {
	return game.GameConfig{
		MaxWrongGuesses: game.DefaultWrongGuesses,
		SoundEffects: game.SoundEffects{
			CorrectGuess: "/sound/level-up.mp3",
			WrongGuess:   "/sound/failure.mp3",
			WordComplete: "/sound/winSound.aac",
		},
		NavigationArrows: game.NavigationArrows{
			Next: "/images/green-arrow.png",
			Skip: "/images/orange-arrow.png",
		},
	}
}

// DefaultTheme returns the default colour scheme
func DefaultTheme() game.ThemeConfig {
	return game.ThemeConfig{
		BackgroundColor: "#1e293b",
		PrimaryColor:    "#fbbf24",
		SecondaryColor:  "#ffffff",
		AccentColor:     "#22c55e",
		TextColor:       "#ffffff",
	}
}

// DefaultAnimations returns the default animation choices
func DefaultAnimations() game.AnimationConfig {
	return game.AnimationConfig{
		AlphabetAnimation:     "fade",
		WordCompleteAnimation: "confetti",
		TransitionSpeed:       "medium",
		NextSkipAnimation:     "tilt",
	}
}

// DefaultSettings returns an assessment of the given type with default settings
func DefaultSettings(t game.AssessmentType) (game.Assessment, error) {
	switch t {
	case game.AssessmentTypeGuessTheWord:
		return &game.WordAssessment{
			AssessmentBase: game.AssessmentBase{Type: t},
			Theme:          DefaultTheme(),
			Animations:     DefaultAnimations(),
			GameConfig:     DefaultGameConfig(),
		}, nil
	case game.AssessmentTypeImagePuzzle:
		return &game.PuzzleAssessment{
			AssessmentBase: game.AssessmentBase{Type: t},
			Puzzle:         game.PuzzleConfig{Rows: DefaultGridSize, Cols: DefaultGridSize},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", game.ErrUnknownAssessmentType, t)
	}
}

// ApplyDefaults fills zero-valued cosmetic settings and normalizes words.
func ApplyDefaults(a game.Assessment) {
	switch v := a.(type) {
	case *game.WordAssessment:
		v.Type = game.AssessmentTypeGuessTheWord
		if v.GameConfig.MaxWrongGuesses == 0 {
			v.GameConfig.MaxWrongGuesses = game.DefaultWrongGuesses
		}
		defaults := DefaultGameConfig()
		if v.GameConfig.SoundEffects == (game.SoundEffects{}) {
			v.GameConfig.SoundEffects = defaults.SoundEffects
		}
		if v.GameConfig.NavigationArrows == (game.NavigationArrows{}) {
			v.GameConfig.NavigationArrows = defaults.NavigationArrows
		}
		if v.Theme == (game.ThemeConfig{}) {
			v.Theme = DefaultTheme()
		}
		if v.Animations == (game.AnimationConfig{}) {
			v.Animations = DefaultAnimations()
		}
		upper := cases.Upper(language.Und)
		for i := range v.Words {
			v.Words[i].Word = upper.String(strings.TrimSpace(v.Words[i].Word))
			if v.Words[i].ID == "" {
				v.Words[i].ID = fmt.Sprint(i + 1)
			}
		}
	case *game.PuzzleAssessment:
		v.Type = game.AssessmentTypeImagePuzzle
	}
}

// Validate checks an assessment before a session may start from it
func Validate(a game.Assessment) error {
	if a == nil {
		return fmt.Errorf("%w: assessment is required", ErrInvalidSettings)
	}
	if strings.TrimSpace(a.Base().Title) == "" {
		return fmt.Errorf("%w: assessment title is required", ErrInvalidSettings)
	}

	switch v := a.(type) {
	case *game.WordAssessment:
		return validateWords(v)
	case *game.PuzzleAssessment:
		return validatePuzzle(v.Puzzle)
	default:
		return fmt.Errorf("%w: %T", game.ErrUnknownAssessmentType, a)
	}
}

func validateWords(a *game.WordAssessment) error {
	if len(a.Words) == 0 {
		return fmt.Errorf("%w: at least one word is required", ErrInvalidSettings)
	}
	upper := cases.Upper(language.Und)
	for i, w := range a.Words {
		word := upper.String(strings.TrimSpace(w.Word))
		if word == "" {
			return fmt.Errorf("%w: word %d is required", ErrInvalidSettings, i+1)
		}
		if err := game.ValidateWord(word); err != nil {
			return fmt.Errorf("%w: word %d: %v", ErrInvalidSettings, i+1, err)
		}
	}

	budget := a.GameConfig.MaxWrongGuesses
	if budget < game.MinWrongGuesses || budget > game.MaxWrongGuesses {
		return fmt.Errorf("%w: max wrong guesses must be between %d-%d", ErrInvalidSettings,
			game.MinWrongGuesses, game.MaxWrongGuesses)
	}

	anim := a.Animations
	if anim == (game.AnimationConfig{}) {
		return nil
	}
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"alphabet animation", anim.AlphabetAnimation, alphabetAnimations},
		{"word complete animation", anim.WordCompleteAnimation, wordCompleteAnimations},
		{"transition speed", anim.TransitionSpeed, transitionSpeeds},
		{"next/skip animation", anim.NextSkipAnimation, nextSkipAnimations},
	}
	for _, c := range checks {
		if !slices.Contains(c.allowed, c.value) {
			return fmt.Errorf("%w: unknown %s %q", ErrInvalidSettings, c.name, c.value)
		}
	}
	return nil
}

// ValidateGrid checks puzzle dimensions
func ValidateGrid(rows, cols int) error {
	if rows < MinGridSize || rows > MaxGridSize || cols < MinGridSize || cols > MaxGridSize {
		return fmt.Errorf("%w: puzzle rows and cols must be between %d-%d, got %dx%d",
			ErrInvalidSettings, MinGridSize, MaxGridSize, rows, cols)
	}
	return nil
}

func validatePuzzle(p game.PuzzleConfig) error {
	if err := ValidateGrid(p.Rows, p.Cols); err != nil {
		return err
	}
	if strings.TrimSpace(p.FinalImageURL) == "" {
		return fmt.Errorf("%w: final image is required", ErrInvalidSettings)
	}
	return nil
}
