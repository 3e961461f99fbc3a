package model

import "strings"

// DefaultMaxTotalTime is the upper bound a fresh filter UI starts with.
const DefaultMaxTotalTime = 360

// RecipeFilter narrows a recipe listing. Zero fields impose no constraint and
// the constraints that are set must all hold.
type RecipeFilter struct {
	// Title is a case-insensitive substring of the recipe title.
	Title       string
	CuisineType string
	// MaxTotalTime is an inclusive bound on prepTime+cookTime.
	MaxTotalTime *int
	// Tags must all be present on the recipe.
	Tags []string
}

// IsZero reports whether the filter constrains nothing.
func (f RecipeFilter) IsZero() bool {
	return f.Title == "" && f.CuisineType == "" && f.MaxTotalTime == nil && len(f.Tags) == 0
}

// Matches evaluates the filter against a summary.
func (f RecipeFilter) Matches(s RecipeSummary) bool {
	if f.CuisineType != "" && s.CuisineType != f.CuisineType {
		return false
	}
	if f.Title != "" && !strings.Contains(strings.ToLower(s.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.MaxTotalTime != nil && s.TotalTime() > *f.MaxTotalTime {
		return false
	}
	return HasAllTags(s.Tags, f.Tags)
}

// HasAllTags reports whether have is a superset of want.
func HasAllTags(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

// Apply returns the summaries that match, keeping their order.
func (f RecipeFilter) Apply(in []RecipeSummary) []RecipeSummary {
	out := make([]RecipeSummary, 0, len(in))
	for _, s := range in {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// IntPtr is a convenience for building filters.
func IntPtr(v int) *int {
	return &v
}
