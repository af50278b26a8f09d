package bundle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleBundles() []*Bundle {
	base := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	return []*Bundle{
		{
			ID:    "emotions",
			Title: "Let's Learn Our Emotions",
			Description: "Reinforces emotions vocabulary with examples of " +
				"different feelings.",
			Metadata: Metadata{
				Grades:  []Grade{"K", "1"},
				Tags:    []Tag{{ID: "1", Name: "SEL", Category: "Subject"}, {ID: "9", Name: "Feelings", Category: "Topic"}},
				Subject: "Social Emotional Learning",
			},
			Contents:  Contents{IntroVideo: &Content{Title: "Intro", Type: MaterialVideo}},
			Status:    StatusPublished,
			CreatedAt: base,
			UpdatedAt: base.Add(72 * time.Hour),
		},
		{
			ID:          "fractions",
			Title:       "fractions in the kitchen",
			Description: "Halves and quarters with recipes.",
			Metadata: Metadata{
				Grades:     []Grade{"3", "4"},
				Tags:       []Tag{{ID: "2", Name: "Math", Category: "Subject"}},
				Subject:    "Math",
				Difficulty: DifficultyIntermediate,
			},
			Contents: Contents{
				Games:       []Content{{Title: "Pizza slices", Type: MaterialGame}},
				Assessments: []string{"a1"},
				Printables:  []Content{{Title: "Worksheet", Type: MaterialDocument}},
			},
			Status:    StatusDraft,
			CreatedAt: base.Add(time.Hour),
			UpdatedAt: base.Add(time.Hour),
		},
		{
			ID:          "animals",
			Title:       "Animal Homes",
			Description: "Where animals live.",
			Metadata: Metadata{
				Grades:     []Grade{"1", "2"},
				Tags:       []Tag{{ID: "4", Name: "Science", Category: "Subject"}},
				Subject:    "Science",
				Difficulty: DifficultyBeginner,
			},
			Contents: Contents{
				Activities: []Content{{Title: "Build a nest", Type: MaterialActivity}},
				Printables: []Content{{Title: "Habitat poster", Type: MaterialImage}},
			},
			Status:    StatusPublished,
			CreatedAt: base.Add(2 * time.Hour),
			UpdatedAt: base.Add(2 * time.Hour),
		},
	}
}

func ids(bundles []*Bundle) []string {
	out := make([]string, len(bundles))
	for i, b := range bundles {
		out[i] = b.ID
	}
	return out
}

func TestFilterApply(t *testing.T) {
	tests := []struct {
		name   string
		filter func(f *Filter)
		want   []string
	}{
		{"newest first by default", func(f *Filter) {}, []string{"animals", "fractions", "emotions"}},
		{"grade overlap", func(f *Filter) { f.Grades = []Grade{"1"} }, []string{"animals", "emotions"}},
		{"any of several grades", func(f *Filter) { f.Grades = []Grade{"K", "4"} }, []string{"fractions", "emotions"}},
		{"tag by id", func(f *Filter) { f.Tags = []string{"2"} }, []string{"fractions"}},
		{"tag by name ignores case", func(f *Filter) { f.Tags = []string{"feelings"} }, []string{"emotions"}},
		{"video type", func(f *Filter) { f.Types = []MaterialType{MaterialVideo} }, []string{"emotions"}},
		{"assessment type", func(f *Filter) { f.Types = []MaterialType{MaterialAssessment} }, []string{"fractions"}},
		{"printable types", func(f *Filter) { f.Types = []MaterialType{MaterialImage, MaterialDocument} }, []string{"animals", "fractions"}},
		{"subject", func(f *Filter) { f.Subject = "science" }, []string{"animals"}},
		{"search title", func(f *Filter) { f.Search = "KITCHEN" }, []string{"fractions"}},
		{"search description", func(f *Filter) { f.Search = "vocabulary" }, []string{"emotions"}},
		{"search tag name", func(f *Filter) { f.Search = "sel" }, []string{"emotions"}},
		{"difficulty", func(f *Filter) { f.Difficulty = DifficultyBeginner }, []string{"animals"}},
		{"status", func(f *Filter) { f.Status = StatusDraft }, []string{"fractions"}},
		{"criteria combine", func(f *Filter) {
			f.Grades = []Grade{"1"}
			f.Status = StatusPublished
			f.Search = "animal"
		}, []string{"animals"}},
		{"title ascending ignores case", func(f *Filter) { f.Sort = Sort{Field: SortTitle} }, []string{"animals", "fractions", "emotions"}},
		{"title descending", func(f *Filter) { f.Sort = Sort{Field: SortTitle, Desc: true} }, []string{"emotions", "fractions", "animals"}},
		{"updated newest first", func(f *Filter) { f.Sort = Sort{Field: SortUpdatedAt, Desc: true} }, []string{"emotions", "animals", "fractions"}},
		{"created oldest first", func(f *Filter) { f.Sort = Sort{Field: SortCreatedAt} }, []string{"emotions", "fractions", "animals"}},
		{"page", func(f *Filter) { f.Limit, f.Offset = 1, 1 }, []string{"fractions"}},
		{"offset past the end", func(f *Filter) { f.Offset = 5 }, []string{}},
		{"no match", func(f *Filter) { f.Grades = []Grade{"12"} }, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter()
			tt.filter(&f)
			assert.Equal(t, tt.want, ids(f.Apply(sampleBundles())))
		})
	}
}

func TestBundleTypes(t *testing.T) {
	b := sampleBundles()[1]
	assert.Equal(t, map[MaterialType]bool{
		MaterialGame:       true,
		MaterialAssessment: true,
		MaterialDocument:   true,
	}, b.Types())
	assert.Empty(t, (&Bundle{}).Types())
}
