package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gyeh/clinictariff/internal/classify"
	"github.com/gyeh/clinictariff/internal/coefficients"
	"github.com/gyeh/clinictariff/internal/model"
	"github.com/gyeh/clinictariff/internal/parquetread"
)

func strp(s string) *string { return &s }

func sampleRows() []model.ServiceRow {
	return []model.ServiceRow{
		{Code: "701500.0", TypeMarker: strp("#"), Description: "سونوگرافی شکم", Professional: strp("1.5"), Technical: strp("2")},
		{Code: "700123", Description: "رادیوگرافی قفسه سینه", Professional: strp("1"), Technical: strp("1")},
		{Code: "800010", Description: "کشیدن دندان", Professional: strp("2,5"), Technical: strp("")},
		{Code: "", Description: "orphan row", Professional: strp("1")},
		{Code: "900001", Description: "آزمایش قند خون", Professional: strp("n/a"), Technical: nil},
	}
}

func TestFromRows(t *testing.T) {
	c := FromRows(sampleRows())
	if c.Len() != 4 {
		t.Fatalf("Len = %d, want 4 (row without code dropped)", c.Len())
	}
	s := c.Services()[0]
	if s.Code != "701500" {
		t.Errorf("code = %q, want trailing .0 stripped", s.Code)
	}
	if s.TypeMarker != "#" || s.Professional != 1.5 || s.Technical != 2 {
		t.Errorf("service 0 = %+v", s)
	}
	dental := c.Services()[2]
	if dental.Professional != 25 || dental.Technical != 0 {
		t.Errorf("dental values = %v/%v, want 25/0", dental.Professional, dental.Technical)
	}
	lab := c.Services()[3]
	if lab.Priceable() {
		t.Errorf("unparseable values should leave the row unpriceable: %+v", lab)
	}
}

func TestLookup(t *testing.T) {
	c := FromRows(sampleRows())
	s, err := c.Lookup("700123")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if s.Description != "رادیوگرافی قفسه سینه" {
		t.Errorf("description = %q", s.Description)
	}
	if _, err := c.Lookup("701500.0"); err != nil {
		t.Errorf("Lookup with float-style code: %v", err)
	}
	if _, err := c.Lookup("999999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLookup_FirstDuplicateWins(t *testing.T) {
	c := New([]model.Service{
		{Code: "1", Description: "first"},
		{Code: "1", Description: "second"},
	})
	s, err := c.Lookup("1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if s.Description != "first" {
		t.Errorf("description = %q, want first", s.Description)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestSearch(t *testing.T) {
	c := FromRows(sampleRows())
	tests := []struct {
		name     string
		category classify.Category
		query    string
		want     []string
	}{
		{"all no query", classify.All, "", []string{"701500", "700123", "800010", "900001"}},
		{"sonography", classify.Sonography, "", []string{"701500"}},
		{"imaging excludes sonography", classify.Imaging, "", []string{"700123"}},
		{"dental", classify.Dental, "", []string{"800010"}},
		{"lab", classify.Lab, "", []string{"900001"}},
		{"text query", classify.All, "دندان", []string{"800010"}},
		{"code query", classify.All, "7001", []string{"700123"}},
		{"arabic letters normalized", classify.All, "آزما\u064aش", []string{"900001"}},
		{"category and query disagree", classify.Eye, "دندان", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Search(tt.category, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Search = %d results, want %d", len(got), len(tt.want))
			}
			for i, s := range got {
				if s.Code != tt.want[i] {
					t.Errorf("result %d = %q, want %q", i, s.Code, tt.want[i])
				}
			}
		})
	}
}

func TestCountByCategory(t *testing.T) {
	counts := FromRows(sampleRows()).CountByCategory()
	if counts[classify.Sonography] != 1 || counts[classify.Imaging] != 1 || counts[classify.Dental] != 1 || counts[classify.Lab] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestPriceAll(t *testing.T) {
	c := FromRows(sampleRows())
	rows, skipped := c.PriceAll(coefficients.Defaults())
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(rows) != 3 {
		t.Fatalf("priced %d rows, want 3", len(rows))
	}
	first := rows[0]
	if first.Private != 4406000 || first.Government != 1309000 || first.Insurance != 3489700 {
		t.Errorf("priced row = %+v", first)
	}
	if first.Category != string(classify.Sonography) {
		t.Errorf("category = %q", first.Category)
	}
	if first.Organization != first.Government70 {
		t.Errorf("organization %d != government_70 %d", first.Organization, first.Government70)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.parquet")
	if err := parquetread.WriteFile(path, sampleRows()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("Len = %d, want 4", c.Len())
	}
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "catalog.parquet")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	dst, err := Backup(src, filepath.Join(dir, "backups"), now)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if !strings.HasSuffix(dst, "backup_20240309_140507.parquet") {
		t.Errorf("backup path = %q", dst)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(b) != "data" {
		t.Errorf("backup contents = %q", b)
	}
}

func TestBackup_MissingSource(t *testing.T) {
	dir := t.TempDir()
	if _, err := Backup(filepath.Join(dir, "nope.parquet"), dir, time.Now()); err == nil {
		t.Fatal("expected error for missing source")
	}
}
