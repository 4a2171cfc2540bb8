package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinictariff/internal/db"
	"github.com/gyeh/clinictariff/internal/exitcode"
	"github.com/gyeh/clinictariff/internal/ingest"
	"github.com/gyeh/clinictariff/internal/logging"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Price the catalog file and load it into Postgres",
	RunE:  runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.BoolVar(&cfg.ActivateVersion, "activate-version", cfg.ActivateVersion, "Make this catalog the active version")
	f.BoolVar(&cfg.Force, "force", false, "Re-import even if the file SHA already exists")
	f.BoolVar(&cfg.DryRun, "dry-run", false, "Validate and price the file without touching the database")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if cfg.DryRun {
		return runPlan(cmd, args)
	}

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := ingest.Run(ctx, pool, log, &cfg, loadTable(log).Current())
	if err != nil {
		var pe *ingest.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("ingest failed")
			switch pe.Phase {
			case "preflight":
				os.Exit(exitcode.ValidationError)
			case "stage":
				os.Exit(exitcode.CopyError)
			default:
				os.Exit(exitcode.StorageError)
			}
		}
		log.Error().Err(err).Msg("ingest failed")
		os.Exit(exitcode.StorageError)
	}

	fmt.Printf("Ingest complete: %d rows priced, %d skipped, version %d (%.1fs)\n",
		summary.RowsPriced, summary.RowsSkipped, summary.CatalogVersionID, summary.DurationTotal.Seconds())
	return nil
}
