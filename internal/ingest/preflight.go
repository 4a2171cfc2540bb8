package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/clinictariff/internal/coefficients"
	"github.com/gyeh/clinictariff/internal/normalize"
	"github.com/gyeh/clinictariff/internal/parquetread"
	embedsql "github.com/gyeh/clinictariff/internal/sql"
)

// Version statuses stored in tariff.catalog_versions.
const (
	StatusPending    = "pending"
	StatusStaging    = "staging"
	StatusStaged     = "staged"
	StatusActive     = "active"
	StatusFailed     = "failed"
	StatusSuperseded = "superseded"
)

// PreflightResult holds all context resolved during the preflight phase.
type PreflightResult struct {
	// FilePath is the original path passed to Preflight, stored as-is.
	FilePath string
	// FileSHA256 is the hex-encoded SHA-256 digest of the file.
	FileSHA256 string
	// FileSize is the file size in bytes from os.Stat.
	FileSize int64
	// CatalogVersionID is the DB primary key of the catalog version, inserted
	// or looked up by file digest.
	CatalogVersionID int64
	// ImportBatchID uniquely identifies this import run and tags every row.
	ImportBatchID uuid.UUID
	// NumRows is the total row count reported by the Parquet file metadata.
	NumRows int64
	// AlreadyLoaded is true when the digest is already staged or active and
	// force mode is off.
	AlreadyLoaded bool
}

// Preflight hashes the file, validates its schema, and registers the catalog
// version together with the coefficients it will be priced with.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, filePath string, coeffs coefficients.Set, force bool) (*PreflightResult, error) {
	start := time.Now()

	sha, err := normalize.FileHash(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight hash: %w", err)
	}

	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight stat: %w", err)
	}

	reader, err := parquetread.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight open: %w", err)
	}
	defer reader.Close()

	if err := parquetread.ValidateSchema(reader.Schema()); err != nil {
		return nil, fmt.Errorf("preflight validate: %w", err)
	}
	numRows := reader.NumRows()

	log.Info().
		Str("file", filepath.Base(filePath)).
		Str("sha256", sha).
		Int64("rows", numRows).
		Dur("duration", time.Since(start)).
		Msg("preflight complete")

	versionID, alreadyLoaded, err := registerVersion(ctx, pool, filepath.Base(filePath), sha, stat.Size(), coeffs, force)
	if err != nil {
		return nil, fmt.Errorf("preflight register version: %w", err)
	}

	return &PreflightResult{
		FilePath:         filePath,
		FileSHA256:       sha,
		FileSize:         stat.Size(),
		CatalogVersionID: versionID,
		ImportBatchID:    uuid.New(),
		NumRows:          numRows,
		AlreadyLoaded:    alreadyLoaded,
	}, nil
}

func registerVersion(ctx context.Context, pool *pgxpool.Pool, name, sha string, size int64, coeffs coefficients.Set, force bool) (int64, bool, error) {
	var id int64
	err := pool.QueryRow(ctx, embedsql.RegisterCatalogVersion, name, sha, size, coeffs.ToMap()).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("register catalog version: %w", err)
	}

	// ON CONFLICT DO NOTHING returned no row: the digest is known.
	var status string
	if err := pool.QueryRow(ctx, embedsql.LookupCatalogVersion, sha).Scan(&id, &status); err != nil {
		return 0, false, fmt.Errorf("lookup existing catalog version: %w", err)
	}
	if !force && (status == StatusActive || status == StatusStaged) {
		return id, true, nil
	}

	if _, err := pool.Exec(ctx, embedsql.DeleteVersionRows, id); err != nil {
		return 0, false, fmt.Errorf("clear previous rows: %w", err)
	}
	if _, err := pool.Exec(ctx, embedsql.ResetCatalogVersion, id, coeffs.ToMap()); err != nil {
		return 0, false, fmt.Errorf("reset catalog version: %w", err)
	}
	return id, false, nil
}
