// Package classify assigns catalog entries to a service category from their
// tariff code and description. Rules are evaluated in a fixed order and the
// first match wins; entries matching no rule fall into All.
package classify

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/gyeh/clinictariff/internal/normalize"
)

const (
	// SonographyMin and SonographyMax bound the sonography code range, inclusive.
	SonographyMin = 701500
	SonographyMax = 701892

	// ImagingPrefix marks radiology codes.
	ImagingPrefix = "70"

	separator = " - "
)

type rule struct {
	category Category
	match    func(code, description string) bool
}

// rules is the classification precedence. Sonography sits before imaging
// because its code range is a subset of the imaging prefix.
var rules = []rule{
	{Sonography, isSonography},
	{Imaging, isImaging},
	{Lab, keywords(
		[]string{"آزمایش", "تست", "سرم", "کشت", "نمونه"},
		"lab", "labs", "laboratory", "test", "tests", "serum", "culture", "cultures", "sample", "samples",
	)},
	{Dental, keywords(
		[]string{"دندان", "دهان", "فک", "لثه"},
		"tooth", "teeth", "dental", "mouth", "jaw", "gum", "gums",
	)},
	{Eye, keywords(
		[]string{"چشم", "بینایی", "عینک"},
		"eye", "eyes", "vision", "glasses", "ophthalmic", "ophthalmology", "ophthalmoscopy",
	)},
	{Medicine, keywords(
		[]string{"دارو", "قرص", "شربت", "کپسول"},
		"drug", "drugs", "tablet", "tablets", "pill", "pills", "syrup", "capsule", "capsules",
	)},
}

// Classify returns the category of a catalog entry given as a bare code or as
// "<code> - <description>".
func Classify(text string) Category {
	code, desc := Split(text)
	for _, r := range rules {
		if r.match(code, desc) {
			return r.category
		}
	}
	return All
}

// Split separates "<code> - <description>" at the first separator. Without a
// separator the whole trimmed text serves as both code and description.
func Split(text string) (code, description string) {
	if i := strings.Index(text, separator); i >= 0 {
		return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+len(separator):])
	}
	t := strings.TrimSpace(text)
	return t, t
}

// ExtractCode returns the code part of a catalog entry.
func ExtractCode(text string) string {
	code, _ := Split(text)
	return code
}

// Matches reports whether text belongs to want. All matches everything.
func Matches(text string, want Category) bool {
	return want == All || Classify(text) == want
}

func isSonography(code, _ string) bool {
	n, err := strconv.Atoi(code)
	if err != nil {
		return false
	}
	return n >= SonographyMin && n <= SonographyMax
}

func isImaging(code, _ string) bool {
	return strings.HasPrefix(code, ImagingPrefix)
}

// keywords matches Persian fragments anywhere in the description and English
// keywords only as whole words.
func keywords(fragments []string, words ...string) func(code, description string) bool {
	return func(_, description string) bool {
		d := normalize.Text(description)
		for _, f := range fragments {
			if strings.Contains(d, f) {
				return true
			}
		}
		for _, tok := range strings.FieldsFunc(d, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			for _, w := range words {
				if tok == w {
					return true
				}
			}
		}
		return false
	}
}
