package models

import "strings"

// CategoryGeneral is the fallback taxonomy bucket for blogs whose tags give
// no better hint.
const CategoryGeneral = "general"

// tagCategories maps well-known tags onto taxonomy categories. Lookups are
// case-insensitive on the tag.
var tagCategories = map[string]string{
	"technology": "technology",
	"tech":       "technology",
	"lifestyle":  "lifestyle",
	"business":   "business",
	"health":     "health",
	"travel":     "travel",
	"food":       "lifestyle",
	"fashion":    "lifestyle",
	"sports":     "lifestyle",
	"education":  "business",
	"finance":    "business",
}

// InferCategory derives a taxonomy category from a blog's tag list: the
// first tag decides; missing or unmapped tags fall back to "general".
// Only the category backfill consults this; regular writes take the category
// the author supplied.
func InferCategory(tags []string) string {
	if len(tags) == 0 {
		return CategoryGeneral
	}
	if category, ok := tagCategories[strings.ToLower(tags[0])]; ok {
		return category
	}
	return CategoryGeneral
}

// Taxonomy lists the canonical categories served to clients.
func Taxonomy() []string {
	return []string{
		CategoryGeneral,
		"technology",
		"lifestyle",
		"business",
		"health",
		"travel",
	}
}
