package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"
)

var ErrUnknownAssessmentType = errors.New("unknown assessment type")

// EventType represents different types of game events
type EventType string

const (
	EventTypeStateChanged   EventType = "state_changed"
	EventTypeLetterGuessed  EventType = "letter_guessed"
	EventTypeWordAdvanced   EventType = "word_advanced"
	EventTypePiecesSwapped  EventType = "pieces_swapped"
	EventTypeSessionEnded   EventType = "session_ended"
	EventTypePuzzlePrepared EventType = "puzzle_prepared"
)

// AssessmentType discriminates the assessment variants
type AssessmentType string

const (
	AssessmentTypeGuessTheWord AssessmentType = "guess-the-word"
	AssessmentTypeImagePuzzle  AssessmentType = "image-puzzle"
)

// GuessOutcome is the result of a single letter click
type GuessOutcome string

const (
	OutcomeAlreadyUsed GuessOutcome = "already_used"
	OutcomeCorrect     GuessOutcome = "correct"
	OutcomeIncorrect   GuessOutcome = "incorrect"
)

// WordItem is a single word to guess
type WordItem struct {
	ID   string `json:"id"`
	Word string `json:"word"`
	Hint string `json:"hint,omitempty"`
}

// GuessResult is recorded once per word when the player moves past it
type GuessResult struct {
	WordID       string        `json:"word_id"`
	Word         string        `json:"word"`
	Completed    bool          `json:"completed"`
	WrongGuesses int           `json:"wrong_guesses"`
	Skipped      bool          `json:"skipped"`
	TimeSpent    time.Duration `json:"time_spent"`
}

// AdvanceResult is returned when the word engine moves past a word
type AdvanceResult struct {
	Done    bool          `json:"done"`
	Result  GuessResult   `json:"result"`
	Results []GuessResult `json:"results,omitempty"`
}

type SoundEffects struct {
	CorrectGuess string `json:"correct_guess"`
	WrongGuess   string `json:"wrong_guess"`
	WordComplete string `json:"word_complete"`
}

type NavigationArrows struct {
	Next string `json:"next"`
	Skip string `json:"skip"`
}

// GameConfig holds the word game settings. Only MaxWrongGuesses drives logic.
type GameConfig struct {
	MaxWrongGuesses  int              `json:"max_wrong_guesses"`
	SoundEffects     SoundEffects     `json:"sound_effects"`
	NavigationArrows NavigationArrows `json:"navigation_arrows"`
}

type ThemeConfig struct {
	BackgroundColor string `json:"background_color"`
	BackgroundImage string `json:"background_image,omitempty"`
	PrimaryColor    string `json:"primary_color"`
	SecondaryColor  string `json:"secondary_color"`
	AccentColor     string `json:"accent_color"`
	TextColor       string `json:"text_color"`
}

type AnimationConfig struct {
	AlphabetAnimation     string `json:"alphabet_animation"`
	WordCompleteAnimation string `json:"word_complete_animation"`
	TransitionSpeed       string `json:"transition_speed"`
	NextSkipAnimation     string `json:"next_skip_animation"`
}

// PuzzleConfig describes the grid an image is cut into
type PuzzleConfig struct {
	Rows          int    `json:"rows"`
	Cols          int    `json:"cols"`
	FinalImageURL string `json:"final_image_url"`
}

// PuzzlePiece is one slice of the source image. Index is its solved row-major position.
type PuzzlePiece struct {
	Index        int         `json:"index"`
	ImageDataURL string      `json:"image_data_url"`
	Image        *image.RGBA `json:"-"`
}

// PuzzleResult is reported once, when the puzzle is first solved
type PuzzleResult struct {
	Completed bool          `json:"completed"`
	TimeSpent time.Duration `json:"time_spent"`
	Moves     int           `json:"moves"`
}

// GameEvent represents an event that occurred during a session
type GameEvent struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

// AssessmentBase is shared by every assessment variant
type AssessmentBase struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Type  AssessmentType `json:"type"`
}

// Assessment is implemented only by *WordAssessment and *PuzzleAssessment.
type Assessment interface {
	Base() AssessmentBase
	assessment()
}

// WordAssessment is a guess-the-word assessment
type WordAssessment struct {
	AssessmentBase
	Words      []WordItem      `json:"words"`
	Theme      ThemeConfig     `json:"theme"`
	Animations AnimationConfig `json:"animations"`
	GameConfig GameConfig      `json:"game_config"`
}

// PuzzleAssessment is an image-puzzle assessment
type PuzzleAssessment struct {
	AssessmentBase
	Puzzle PuzzleConfig `json:"puzzle"`
}

func (a *WordAssessment) Base() AssessmentBase {
	b := a.AssessmentBase
	b.Type = AssessmentTypeGuessTheWord
	return b
}

func (a *PuzzleAssessment) Base() AssessmentBase {
	b := a.AssessmentBase
	b.Type = AssessmentTypeImagePuzzle
	return b
}

func (*WordAssessment) assessment()   {}
func (*PuzzleAssessment) assessment() {}

// EncodeAssessment marshals an assessment with its type discriminator set.
func EncodeAssessment(a Assessment) ([]byte, error) {
	switch v := a.(type) {
	case *WordAssessment:
		c := *v
		c.Type = AssessmentTypeGuessTheWord
		return json.Marshal(&c)
	case *PuzzleAssessment:
		c := *v
		c.Type = AssessmentTypeImagePuzzle
		return json.Marshal(&c)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAssessmentType, a)
	}
}

// DecodeAssessment reads the "type" field and unmarshals into the matching variant.
func DecodeAssessment(data []byte) (Assessment, error) {
	var head struct {
		Type AssessmentType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to read assessment type: %w", err)
	}

	switch head.Type {
	case AssessmentTypeGuessTheWord:
		a := &WordAssessment{}
		if err := json.Unmarshal(data, a); err != nil {
			return nil, fmt.Errorf("failed to decode %s assessment: %w", head.Type, err)
		}
		return a, nil
	case AssessmentTypeImagePuzzle:
		a := &PuzzleAssessment{}
		if err := json.Unmarshal(data, a); err != nil {
			return nil, fmt.Errorf("failed to decode %s assessment: %w", head.Type, err)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssessmentType, head.Type)
	}
}
