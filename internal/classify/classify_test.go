package classify

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Category
	}{
		{"sonography inside range", "701600", Sonography},
		{"sonography lower bound", "701500", Sonography},
		{"sonography upper bound", "701892", Sonography},
		{"sonography with description", "701600 - سونوگرافی شکم", Sonography},
		{"sonography beats keywords", "701600 - tooth", Sonography},
		{"below sonography range", "701499", Imaging},
		{"above sonography range", "701893", Imaging},
		{"imaging prefix", "700123", Imaging},
		{"imaging non-numeric code", "70AB - x-ray", Imaging},
		{"imaging with padding", "  700123 - CT  ", Imaging},
		{"lab persian", "800100 - آزمایش خون", Lab},
		{"lab english", "800100 - Blood Test", Lab},
		{"dental persian", "123456 - کشیدن دندان", Dental},
		{"dental english", "123456 - Tooth extraction", Dental},
		{"dental bare text", "tooth extraction", Dental},
		{"eye", "900000 - Eye examination", Eye},
		{"eye persian", "900000 - سنجش بینایی", Eye},
		{"medicine", "100 - قرص", Medicine},
		{"arabic letters normalized", "300 - كشت ادرار", Lab},
		{"lab before dental", "500 - dental sample", Lab},
		{"eye plural", "900000 - Eyes exam", Eye},
		{"english keyword inside word", "999999 - Glabellar injection", All},
		{"pill inside papillary", "999999 - Papillary excision", All},
		{"gum inside argument", "999999 - Argument", All},
		{"english keyword after punctuation", "800100 - CBC/lab", Lab},
		{"fallback", "999999 - General visit", All},
		{"non-numeric fallback", "ABC - visit", All},
		{"empty", "", All},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		text, code, desc string
	}{
		{"701600 - Abdomen - full", "701600", "Abdomen - full"},
		{"701600", "701600", "701600"},
		{" 701600 ", "701600", "701600"},
		{"701600-x", "701600-x", "701600-x"},
	}
	for _, tt := range tests {
		code, desc := Split(tt.text)
		if code != tt.code || desc != tt.desc {
			t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", tt.text, code, desc, tt.code, tt.desc)
		}
	}
	if got := ExtractCode("701600 - x"); got != "701600" {
		t.Errorf("ExtractCode = %q", got)
	}
}

func TestAllCategories_DisplayOrder(t *testing.T) {
	want := []Category{All, Sonography, Imaging, Lab, Dental, Eye, Medicine}
	if got := AllCategories(); !reflect.DeepEqual(got, want) {
		t.Errorf("AllCategories = %v, want %v", got, want)
	}
	for _, c := range AllCategories() {
		if c.Label() == "" {
			t.Errorf("%q has no label", c)
		}
	}
}

func TestParseCategory(t *testing.T) {
	if c, ok := ParseCategory("dental"); !ok || c != Dental {
		t.Errorf("ParseCategory(dental) = %q, %v", c, ok)
	}
	if c, ok := ParseCategory("سونوگرافی"); !ok || c != Sonography {
		t.Errorf("ParseCategory(label) = %q, %v", c, ok)
	}
	if _, ok := ParseCategory("surgery"); ok {
		t.Error("ParseCategory(surgery) should fail")
	}
}

func TestMatches(t *testing.T) {
	if !Matches("999999 - visit", All) {
		t.Error("All should match everything")
	}
	if !Matches("701600", Sonography) {
		t.Error("701600 should match sonography")
	}
	if Matches("701600", Imaging) {
		t.Error("701600 should not match imaging")
	}
}
