package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortNone        SortKey = ""
	SortTitle       SortKey = "title"
	SortReleaseDate SortKey = "release_date"
	SortGenre       SortKey = "genre"
	SortPlatform    SortKey = "platform"
	SortPrice       SortKey = "price"
	SortRating      SortKey = "rating"
)

// SelectAll is the selector value matching every platform or genre.
const SelectAll = "all"

// Criteria is the user controlled filter state.
type Criteria struct {
	Search   string
	Platform string
	Genre    string
	Sort     SortKey
}

// ParseSortKey maps user input onto a known key, falling back to SortNone.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch k {
	case SortTitle, SortReleaseDate, SortGenre, SortPlatform, SortPrice, SortRating:
		return k
	}
	return SortNone
}

func isAnySelector(s string) bool {
	return s == "" || strings.EqualFold(s, SelectAll)
}

// ApplyCriteria returns the games matching c in c.Sort order. The input
// slice is never modified.
func ApplyCriteria(games []Game, c Criteria) []Game {
	fold := cases.Fold()
	search := fold.String(strings.TrimSpace(c.Search))
	platform := fold.String(c.Platform)
	genre := fold.String(c.Genre)

	out := make([]Game, 0, len(games))
	for _, g := range games {
		if search != "" &&
			!strings.Contains(fold.String(g.Title), search) &&
			!strings.Contains(fold.String(g.Genre), search) &&
			!strings.Contains(fold.String(g.Platform), search) {
			continue
		}
		if !isAnySelector(c.Platform) && fold.String(g.Platform) != platform {
			continue
		}
		if !isAnySelector(c.Genre) && fold.String(g.Genre) != genre {
			continue
		}
		out = append(out, g)
	}

	if cmp := comparator(c.Sort); cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func comparator(key SortKey) func(a, b Game) int {
	col := collate.New(language.English, collate.IgnoreCase)
	switch key {
	case SortTitle:
		return func(a, b Game) int { return col.CompareString(a.Title, b.Title) }
	case SortGenre:
		return func(a, b Game) int { return col.CompareString(a.Genre, b.Genre) }
	case SortPlatform:
		return func(a, b Game) int { return col.CompareString(a.Platform, b.Platform) }
	case SortReleaseDate:
		// ISO dates order lexically; newest first.
		return func(a, b Game) int { return strings.Compare(b.ReleaseDate, a.ReleaseDate) }
	case SortPrice:
		return func(a, b Game) int { return compareFloat(a.priceValue(), b.priceValue()) }
	case SortRating:
		return func(a, b Game) int { return compareFloat(b.ratingValue(), a.ratingValue()) }
	}
	return nil
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
