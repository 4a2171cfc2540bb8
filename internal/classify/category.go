package classify

// Category is one of the fixed service categories used to filter the catalog.
type Category string

const (
	All        Category = "all"
	Sonography Category = "sonography"
	Imaging    Category = "imaging"
	Lab        Category = "lab"
	Dental     Category = "dental"
	Eye        Category = "eye"
	Medicine   Category = "medicine"
)

var labels = map[Category]string{
	All:        "همه",
	Sonography: "سونوگرافی",
	Imaging:    "تصویربرداری",
	Lab:        "آزمایش",
	Dental:     "دندان",
	Eye:        "چشم",
	Medicine:   "دارو",
}

// AllCategories returns every category in display order. Display order is
// unrelated to classification precedence.
func AllCategories() []Category {
	return []Category{All, Sonography, Imaging, Lab, Dental, Eye, Medicine}
}

// Label returns the Persian display label.
func (c Category) Label() string {
	return labels[c]
}

// ParseCategory accepts a category name or its display label.
func ParseCategory(s string) (Category, bool) {
	for _, c := range AllCategories() {
		if s == string(c) || s == c.Label() {
			return c, true
		}
	}
	return "", false
}
