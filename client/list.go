package client

import (
	"context"
	"sort"
	"sync"

	"github.com/pageza/recipebook/backend/internal/model"
)

// RecipeLister fetches recipe summaries.
type RecipeLister interface {
	ListRecipes(ctx context.Context) ([]model.RecipeSummary, error)
}

// RecipeList holds a fetched recipe list and the filter state applied to
// it. Filtering happens in memory; only Load touches the network.
type RecipeList struct {
	api RecipeLister

	mu           sync.RWMutex
	all          []model.RecipeSummary
	cuisineTypes []string
	tags         []string
	loading      bool
	err          error

	search       string
	cuisine      string
	maxTotalTime int
	selectedTags []string
}

func NewRecipeList(api RecipeLister) *RecipeList {
	return &RecipeList{
		api:          api,
		loading:      true,
		maxTotalTime: model.DefaultMaxTotalTime,
	}
}

// Load fetches the list and derives the cuisine and tag choices from it.
// Loading is cleared whether or not the fetch succeeds.
func (l *RecipeList) Load(ctx context.Context) error {
	recipes, err := l.api.ListRecipes(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	l.err = err
	if err != nil {
		return err
	}

	l.all = recipes
	l.cuisineTypes, l.tags = facets(recipes)
	return nil
}

func facets(recipes []model.RecipeSummary) (cuisines, tags []string) {
	cs := map[string]struct{}{}
	ts := map[string]struct{}{}
	for _, r := range recipes {
		if r.CuisineType != "" {
			cs[r.CuisineType] = struct{}{}
		}
		for _, t := range r.Tags {
			ts[t] = struct{}{}
		}
	}
	return sortedKeys(cs), sortedKeys(ts)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Filter returns the current filter state.
func (l *RecipeList) Filter() model.RecipeFilter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filterLocked()
}

func (l *RecipeList) filterLocked() model.RecipeFilter {
	limit := l.maxTotalTime
	return model.RecipeFilter{
		Title:        l.search,
		CuisineType:  l.cuisine,
		MaxTotalTime: &limit,
		Tags:         append([]string(nil), l.selectedTags...),
	}
}

// Recipes returns the loaded recipes that pass every active filter.
func (l *RecipeList) Recipes() []model.RecipeSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filterLocked().Apply(l.all)
}

func (l *RecipeList) SetSearch(q string) {
	l.mu.Lock()
	l.search = q
	l.mu.Unlock()
}

func (l *RecipeList) SetCuisine(c string) {
	l.mu.Lock()
	l.cuisine = c
	l.mu.Unlock()
}

func (l *RecipeList) SetMaxTotalTime(minutes int) {
	l.mu.Lock()
	l.maxTotalTime = minutes
	l.mu.Unlock()
}

func (l *RecipeList) SetTags(tags []string) {
	l.mu.Lock()
	l.selectedTags = append([]string(nil), tags...)
	l.mu.Unlock()
}

// ToggleTag adds tag to the selection, or removes it if already selected.
func (l *RecipeList) ToggleTag(tag string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, t := range l.selectedTags {
		if t == tag {
			l.selectedTags = append(l.selectedTags[:i:i], l.selectedTags[i+1:]...)
			return
		}
	}
	l.selectedTags = append(l.selectedTags, tag)
}

// ClearAllFilters resets every filter to its initial value.
func (l *RecipeList) ClearAllFilters() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.search = ""
	l.cuisine = ""
	l.maxTotalTime = model.DefaultMaxTotalTime
	l.selectedTags = nil
}

// Remove drops a recipe locally after a successful delete.
func (l *RecipeList) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.all[:0:0]
	for _, r := range l.all {
		if r.ID != id {
			out = append(out, r)
		}
	}
	l.all = out
	l.cuisineTypes, l.tags = facets(out)
}

func (l *RecipeList) CuisineTypes() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.cuisineTypes...)
}

func (l *RecipeList) AvailableTags() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.tags...)
}

func (l *RecipeList) SelectedTags() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.selectedTags...)
}

func (l *RecipeList) IsLoading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Err is the error from the last Load, if any.
func (l *RecipeList) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}
