package normalize

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// Arabic code points commonly typed in place of their Persian counterparts.
var persianLetters = strings.NewReplacer(
	"ي", "ی",
	"ى", "ی",
	"ك", "ک",
)

// Text prepares free text for substring search: Arabic yeh and kaf become
// their Persian forms, whitespace is collapsed and trimmed, and the result is
// lowercased.
func Text(s string) string {
	s = persianLetters.Replace(s)
	s = multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.ToLower(s)
}
