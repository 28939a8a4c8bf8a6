package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user-supplied HTML, keeping the safe UGC subset.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// StripTags removes all markup, leaving plain text. Used for titles and
// other fields where no HTML is meaningful.
func StripTags(input string) string {
	return strictPolicy.Sanitize(input)
}
