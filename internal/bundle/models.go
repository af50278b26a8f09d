package bundle

import (
	"time"
)

// MaterialType is the kind of a piece of teaching material
type MaterialType string

const (
	MaterialVideo      MaterialType = "video"
	MaterialActivity   MaterialType = "activity"
	MaterialGame       MaterialType = "game"
	MaterialAssessment MaterialType = "assessment"
	MaterialDocument   MaterialType = "document"
	MaterialImage      MaterialType = "image"
)

// Grade is a school grade, K through 12
type Grade string

var Grades = []Grade{"K", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Status is where a bundle is in its publishing life
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Tag labels material. Category groups tags, e.g. "Subject" or "Topic".
type Tag struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type Metadata struct {
	Grades     []Grade    `json:"grades"`
	Tags       []Tag      `json:"tags"`
	Subject    string     `json:"subject,omitempty"`
	Duration   int        `json:"duration,omitempty"` // minutes
	Language   string     `json:"language,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Content is one piece of material in a bundle. The fields after Metadata
// apply only to some types.
type Content struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Type         MaterialType `json:"type"`
	Description  string       `json:"description"`
	URL          string       `json:"url"`
	ThumbnailURL string       `json:"thumbnail_url,omitempty"`
	Metadata     Metadata     `json:"metadata"`

	// video
	Duration      int    `json:"duration,omitempty"` // seconds
	TranscriptURL string `json:"transcript_url,omitempty"`

	// activity
	Instructions string   `json:"instructions,omitempty"`
	Objectives   []string `json:"objectives,omitempty"`
	Materials    []string `json:"materials,omitempty"`

	// game
	GameType         string   `json:"game_type,omitempty"`
	SkillsTargeted   []string `json:"skills_targeted,omitempty"`
	DifficultyLevels []string `json:"difficulty_levels,omitempty"`

	// document and image
	FileType   string      `json:"file_type,omitempty"`
	PageCount  int         `json:"page_count,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Printable  bool        `json:"printable,omitempty"`
}

// Contents groups a bundle's material. Assessments holds ids of
// assessments in the library.
type Contents struct {
	IntroVideo     *Content  `json:"intro_video,omitempty"`
	LearningVideos []Content `json:"learning_videos,omitempty"`
	Activities     []Content `json:"activities,omitempty"`
	Games          []Content `json:"games,omitempty"`
	Assessments    []string  `json:"assessments,omitempty"`
	Printables     []Content `json:"printables,omitempty"`
}

// Bundle is a lesson package of videos, activities, games, printables and
// assessments.
type Bundle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Metadata    Metadata  `json:"metadata"`
	Contents    Contents  `json:"contents"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   string    `json:"created_by"`
	Status      Status    `json:"status"`
}

// Types returns the material types present in the bundle
func (b *Bundle) Types() map[MaterialType]bool {
	types := map[MaterialType]bool{}
	c := b.Contents
	if c.IntroVideo != nil || len(c.LearningVideos) > 0 {
		types[MaterialVideo] = true
	}
	if len(c.Activities) > 0 {
		types[MaterialActivity] = true
	}
	if len(c.Games) > 0 {
		types[MaterialGame] = true
	}
	if len(c.Assessments) > 0 {
		types[MaterialAssessment] = true
	}
	for _, p := range c.Printables {
		types[p.Type] = true
	}
	return types
}
