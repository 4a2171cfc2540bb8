package ingest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/clinictariff/internal/sql"
)

// Cleanup deletes the rows of a failed import and marks the version failed.
func Cleanup(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, versionID int64) error {
	start := time.Now()

	tag, err := pool.Exec(ctx, embedsql.DeleteVersionRows, versionID)
	if err != nil {
		return err
	}
	if err := UpdateStatus(ctx, pool, versionID, StatusFailed); err != nil {
		return err
	}

	log.Info().
		Int64("rows_deleted", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("failed import cleaned up")

	return nil
}
