package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/clinictariff/internal/coefficients"
	"github.com/gyeh/clinictariff/internal/config"
	"github.com/gyeh/clinictariff/internal/model"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run executes the full import pipeline: preflight → stage → activate.
// Every row is priced with coeffs, which are recorded on the version.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config, coeffs coefficients.Set) (*model.ImportSummary, error) {
	totalStart := time.Now()

	// Phase 1: Preflight
	log.Info().Str("file", cfg.CatalogPath).Msg("starting preflight")
	pf, err := Preflight(ctx, pool, log, cfg.CatalogPath, coeffs, cfg.Force)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}

	if pf.AlreadyLoaded {
		log.Info().
			Int64("catalog_version_id", pf.CatalogVersionID).
			Str("sha256", pf.FileSHA256).
			Msg("catalog already imported, skipping (use --force to re-import)")
		return &model.ImportSummary{
			FilePath:         pf.FilePath,
			FileSHA256:       pf.FileSHA256,
			CatalogVersionID: pf.CatalogVersionID,
			ImportBatchID:    pf.ImportBatchID.String(),
			DurationTotal:    time.Since(totalStart),
		}, nil
	}

	// Phase 2: Stage
	log.Info().Msg("starting staging")
	if err := UpdateStatus(ctx, pool, pf.CatalogVersionID, StatusStaging); err != nil {
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	stageResult, err := Stage(ctx, pool, log, pf, coeffs)
	if err != nil {
		if cerr := Cleanup(ctx, pool, log, pf.CatalogVersionID); cerr != nil {
			log.Warn().Err(cerr).Msg("cleanup after failed stage failed")
		}
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	// Phase 3: Activate
	log.Info().Msg("activating")
	activateDur, err := Activate(ctx, pool, log, pf.CatalogVersionID, stageResult.RowsPriced, cfg.ActivateVersion)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.CatalogVersionID, StatusFailed)
		return nil, &PipelineError{Phase: "activate", Err: err}
	}

	summary := &model.ImportSummary{
		FilePath:         pf.FilePath,
		FileSHA256:       pf.FileSHA256,
		CatalogVersionID: pf.CatalogVersionID,
		ImportBatchID:    pf.ImportBatchID.String(),
		RowsRead:         stageResult.RowsRead,
		RowsPriced:       stageResult.RowsPriced,
		RowsSkipped:      stageResult.RowsSkipped,
		RowsByCategory:   stageResult.RowsByCategory,
		Activated:        cfg.ActivateVersion,
		DurationStage:    stageResult.Duration,
		DurationActivate: activateDur,
		DurationTotal:    time.Since(totalStart),
	}

	log.Info().
		Int64("rows_read", summary.RowsRead).
		Int64("rows_priced", summary.RowsPriced).
		Int64("rows_skipped", summary.RowsSkipped).
		Bool("activated", summary.Activated).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("import pipeline complete")

	return summary, nil
}
