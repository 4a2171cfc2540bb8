package normalize

import (
	"regexp"
	"strings"
)

var floatSuffix = regexp.MustCompile(`\.0+$`)

// Code trims a tariff code and drops the ".0" suffix spreadsheets add to
// numeric cells, so "701500.0" and "701500" name the same service.
func Code(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return floatSuffix.ReplaceAllString(s, "")
}
