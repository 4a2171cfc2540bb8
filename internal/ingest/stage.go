package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/clinictariff/internal/catalog"
	"github.com/gyeh/clinictariff/internal/coefficients"
	"github.com/gyeh/clinictariff/internal/db"
	"github.com/gyeh/clinictariff/internal/model"
	"github.com/gyeh/clinictariff/internal/normalize"
	"github.com/gyeh/clinictariff/internal/parquetread"
	embedsql "github.com/gyeh/clinictariff/internal/sql"
)

const readBatchSize = 1024

// StageResult holds metrics from the staging phase.
type StageResult struct {
	RowsRead       int64
	RowsPriced     int64
	RowsSkipped    int64
	RowsByCategory map[string]int64
	Duration       time.Duration
}

// Stage streams rows from the Parquet file, prices them, and COPY-loads them
// into tariff.priced_services via a channel-backed CopyFromSource. Rows
// without a code or without any tariff value are skipped.
func Stage(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, pf *PreflightResult, coeffs coefficients.Set) (*StageResult, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reader, err := parquetread.Open(pf.FilePath)
	if err != nil {
		return nil, fmt.Errorf("stage open: %w", err)
	}
	defer reader.Close()

	ch := make(chan *model.PricedRow, readBatchSize)
	errCh := make(chan error, 1)

	var rowsRead, rowsSkipped int64
	byCategory := make(map[string]int64)

	// Producer goroutine: read Parquet → parse → price → push to channel
	go func() {
		defer close(ch)
		buf := make([]model.ServiceRow, readBatchSize)
		var rowNum int64

		for {
			n, readErr := reader.Read(buf)
			for i := 0; i < n; i++ {
				rowNum++
				rowsRead++

				svc, ok := catalog.ParseRow(&buf[i])
				if !ok || !svc.Priceable() {
					rowsSkipped++
					log.Debug().Int64("row", rowNum).Str("code", buf[i].Code).Msg("row skipped")
					continue
				}

				row := catalog.PriceRow(svc, coeffs)
				row.CatalogVersionID = pf.CatalogVersionID
				row.ImportBatchID = pf.ImportBatchID
				row.SourceRowNumber = rowNum
				row.SourceRowHash = normalize.RowHashFromValues(rowNum,
					svc.Code, svc.TypeMarker, svc.Description,
					deref(buf[i].Professional), deref(buf[i].Technical))
				byCategory[row.Category]++

				select {
				case ch <- &row:
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				errCh <- fmt.Errorf("read parquet at row %d: %w", rowNum, readErr)
				return
			}
		}
		errCh <- nil
	}()

	// Consumer: COPY from channel into the serving table
	source := db.NewChannelSource(ch)
	rowsPriced, err := pool.CopyFrom(ctx,
		pgx.Identifier{"tariff", "priced_services"},
		model.PricedColumns(),
		source,
	)
	if err != nil {
		// Stop the producer; it may be blocked on a full channel.
		cancel()
	}

	prodErr := <-errCh
	if err != nil {
		return nil, fmt.Errorf("stage copy: %w", err)
	}
	if prodErr != nil {
		return nil, fmt.Errorf("stage producer: %w", prodErr)
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows_read", rowsRead).
		Int64("rows_priced", rowsPriced).
		Int64("rows_skipped", rowsSkipped).
		Str("duration", dur.String()).
		Float64("rows_per_sec", float64(rowsPriced)/dur.Seconds()).
		Msg("staging complete")

	return &StageResult{
		RowsRead:       rowsRead,
		RowsPriced:     rowsPriced,
		RowsSkipped:    rowsSkipped,
		RowsByCategory: byCategory,
		Duration:       dur,
	}, nil
}

// UpdateStatus updates the catalog version status.
func UpdateStatus(ctx context.Context, pool *pgxpool.Pool, versionID int64, status string) error {
	_, err := pool.Exec(ctx, embedsql.UpdateVersionStatus, versionID, status)
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
