package parquetread

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/gyeh/clinictariff/internal/model"
)

func strp(s string) *string { return &s }

func TestReadAll_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.parquet")
	rows := []model.ServiceRow{
		{Code: "701600", TypeMarker: strp("#"), Description: "سونوگرافی شکم", Professional: strp("1.5"), Technical: strp("2")},
		{Code: "123456", Description: "Tooth extraction", Professional: strp("3"), Technical: nil},
	}
	if err := WriteFile(path, rows); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d rows, want 2", len(got))
	}
	if got[0].Code != "701600" || got[0].TypeMarker == nil || *got[0].TypeMarker != "#" {
		t.Errorf("row 0 = %+v", got[0])
	}
	if got[1].TypeMarker != nil {
		t.Errorf("row 1 type marker = %q, want nil", *got[1].TypeMarker)
	}
	if got[1].Technical != nil {
		t.Errorf("row 1 technical = %q, want nil", *got[1].Technical)
	}
}

type partialRow struct {
	Code        string `parquet:"code"`
	Description string `parquet:"description"`
}

func TestReadAll_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.parquet")
	if err := WriteFile(path, []partialRow{{Code: "1", Description: "x"}}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := ReadAll(path)
	if err == nil {
		t.Fatal("expected schema validation error")
	}
	if !strings.Contains(err.Error(), "professional_value") || !strings.Contains(err.Error(), "technical_value") {
		t.Errorf("error %q should name the missing columns", err)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.parquet")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
