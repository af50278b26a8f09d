package bundle

import (
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortField string

const (
	SortTitle     SortField = "title"
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
)

type Sort struct {
	Field SortField
	Desc  bool
}

// Filter selects bundles. Within one list any value matches; every set
// criterion must match.
type Filter struct {
	Grades     []Grade
	Tags       []string // tag ids or names
	Types      []MaterialType
	Subject    string
	Search     string
	Difficulty Difficulty
	Status     Status
	Sort       Sort
	Limit      int
	Offset     int
}

// NewFilter returns the library default: newest first, 50 per page
func NewFilter() Filter {
	return Filter{
		Sort:  Sort{Field: SortCreatedAt, Desc: true},
		Limit: 50,
	}
}

func (f Filter) Match(b *Bundle) bool {
	fold := cases.Fold()

	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Difficulty != "" && b.Metadata.Difficulty != f.Difficulty {
		return false
	}
	if f.Subject != "" && fold.String(b.Metadata.Subject) != fold.String(f.Subject) {
		return false
	}
	if len(f.Grades) > 0 && !slices.ContainsFunc(b.Metadata.Grades, func(g Grade) bool {
		return slices.Contains(f.Grades, g)
	}) {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(b.Metadata.Tags, func(t Tag) bool {
		return slices.ContainsFunc(f.Tags, func(want string) bool {
			return want == t.ID || fold.String(want) == fold.String(t.Name)
		})
	}) {
		return false
	}
	if len(f.Types) > 0 {
		have := b.Types()
		if !slices.ContainsFunc(f.Types, func(t MaterialType) bool { return have[t] }) {
			return false
		}
	}
	if q := fold.String(strings.TrimSpace(f.Search)); q != "" {
		fields := []string{b.Title, b.Description, b.Metadata.Subject}
		for _, t := range b.Metadata.Tags {
			fields = append(fields, t.Name)
		}
		if !slices.ContainsFunc(fields, func(s string) bool {
			return strings.Contains(fold.String(s), q)
		}) {
			return false
		}
	}
	return true
}

// Apply filters, sorts and pages bundles. Ties are broken by id.
func (f Filter) Apply(bundles []*Bundle) []*Bundle {
	out := make([]*Bundle, 0, len(bundles))
	for _, b := range bundles {
		if f.Match(b) {
			out = append(out, b)
		}
	}

	col := collate.New(language.English, collate.IgnoreCase)
	compare := func(a, b *Bundle) int {
		switch f.Sort.Field {
		case SortTitle:
			return col.CompareString(a.Title, b.Title)
		case SortUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j])
		if f.Sort.Desc {
			c = -c
		}
		if c == 0 {
			return out[i].ID < out[j].ID
		}
		return c < 0
	})

	if f.Offset >= len(out) {
		return []*Bundle{}
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out
}
