package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinictariff/internal/exitcode"
	"github.com/gyeh/clinictariff/internal/logging"
	"github.com/gyeh/clinictariff/internal/parquetread"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every priceable service with its quote to a Parquet file",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&cfg.OutputPath, "out", "priced.parquet", "Output Parquet file")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	c := loadCatalog(context.Background(), log)
	set := loadTable(log).Current()

	rows, skipped := c.PriceAll(set)
	if err := parquetread.WriteFile(cfg.OutputPath, rows); err != nil {
		log.Error().Err(err).Msg("export failed")
		os.Exit(exitcode.StorageError)
	}

	log.Info().
		Int("rows", len(rows)).
		Int("skipped", skipped).
		Str("out", cfg.OutputPath).
		Msg("priced catalog exported")
	fmt.Printf("Exported %d priced services (%d without tariff value skipped) to %s\n", len(rows), skipped, cfg.OutputPath)
	return nil
}
