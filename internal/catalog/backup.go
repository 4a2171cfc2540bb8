package catalog

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gyeh/clinictariff/internal/fileio"
)

// Backup copies the catalog file at path into dir under a timestamped name
// and returns the new file's path.
func Backup(path, dir string, now time.Time) (string, error) {
	name := fmt.Sprintf("backup_%s%s", now.Format("20060102_150405"), filepath.Ext(path))
	dst := filepath.Join(dir, name)
	if _, err := fileio.CopyFile(path, dst); err != nil {
		return "", fmt.Errorf("backup catalog: %w", err)
	}
	return dst, nil
}
