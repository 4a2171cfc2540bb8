package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/clinictariff/internal/sql"
)

// Activate makes the version the active catalog, superseding any other, and
// runs ANALYZE. With activate off the version is only marked staged.
func Activate(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, versionID, rowCount int64, activate bool) (time.Duration, error) {
	start := time.Now()

	if activate {
		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			tag, err := tx.Exec(ctx, embedsql.DeactivateOlderVersions, versionID)
			if err != nil {
				return fmt.Errorf("deactivate older versions: %w", err)
			}
			log.Info().Int64("deactivated", tag.RowsAffected()).Msg("older versions deactivated")

			if _, err := tx.Exec(ctx, embedsql.ActivateVersion, versionID, rowCount); err != nil {
				return fmt.Errorf("activate version: %w", err)
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
		log.Info().Int64("catalog_version_id", versionID).Msg("version activated")
	} else {
		if err := UpdateStatus(ctx, pool, versionID, StatusStaged); err != nil {
			return 0, fmt.Errorf("update status to staged: %w", err)
		}
	}

	if _, err := pool.Exec(ctx, embedsql.AnalyzePricedServices); err != nil {
		return 0, fmt.Errorf("analyze priced services: %w", err)
	}
	log.Info().Msg("ANALYZE complete")

	return time.Since(start), nil
}
