package parquetread

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
)

// WriteFile writes rows to a new Parquet file at path using T's parquet tags
// as the schema.
func WriteFile[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[T](f)
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return f.Close()
}
