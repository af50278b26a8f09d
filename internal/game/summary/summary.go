package summary

import (
	"time"

	"assessment-games-go/internal/game"
)

// Status labels shown per word on the results screen
const (
	StatusCompleted  = "Completed"
	StatusSkipped    = "Skipped"
	StatusIncomplete = "Incomplete"
)

// WordSummary aggregates a finished word session
type WordSummary struct {
	Completed    int           `json:"completed"`
	Total        int           `json:"total"`
	WrongGuesses int           `json:"wrong_guesses"`
	TotalTime    time.Duration `json:"total_time"`
	AverageTime  time.Duration `json:"average_time"`
}

// Summarize totals a result list. AverageTime is zero for an empty list.
func Summarize(results []game.GuessResult) WordSummary {
	s := WordSummary{Total: len(results)}
	for _, r := range results {
		if r.Completed {
			s.Completed++
		}
		s.WrongGuesses += r.WrongGuesses
		s.TotalTime += r.TimeSpent
	}
	if s.Total > 0 {
		s.AverageTime = s.TotalTime / time.Duration(s.Total)
	}
	return s
}

// Status returns the label for a single word result
func Status(r game.GuessResult) string {
	switch {
	case r.Completed:
		return StatusCompleted
	case r.Skipped:
		return StatusSkipped
	default:
		return StatusIncomplete
	}
}

// Seconds formats a duration the way the results screen shows it, e.g. "3.2s"
func Seconds(d time.Duration) string {
	return (d.Round(100 * time.Millisecond)).String()
}

// PuzzleSummary is the puzzle counterpart of WordSummary
type PuzzleSummary struct {
	Completed bool          `json:"completed"`
	Moves     int           `json:"moves"`
	TimeSpent time.Duration `json:"time_spent"`
}

func SummarizePuzzle(r game.PuzzleResult) PuzzleSummary {
	return PuzzleSummary{
		Completed: r.Completed,
		Moves:     r.Moves,
		TimeSpent: r.TimeSpent.Truncate(time.Second),
	}
}
