package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinictariff/internal/catalog"
	"github.com/gyeh/clinictariff/internal/classify"
	"github.com/gyeh/clinictariff/internal/exitcode"
	"github.com/gyeh/clinictariff/internal/logging"
	"github.com/gyeh/clinictariff/internal/model"
	"github.com/gyeh/clinictariff/internal/normalize"
	"github.com/gyeh/clinictariff/internal/parquetread"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run validation and stats for the catalog file (no writes)",
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := cfg.ValidateCatalog(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	sha, err := normalize.FileHash(cfg.CatalogPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash file")
		os.Exit(exitcode.ValidationError)
	}

	stat, err := os.Stat(cfg.CatalogPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to stat file")
		os.Exit(exitcode.ValidationError)
	}

	reader, err := parquetread.Open(cfg.CatalogPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to open parquet file")
		os.Exit(exitcode.ValidationError)
	}
	defer reader.Close()

	if err := parquetread.ValidateSchema(reader.Schema()); err != nil {
		log.Error().Err(err).Msg("schema validation failed")
		os.Exit(exitcode.ValidationError)
	}

	set := loadTable(log).Current()
	byCategory := make(map[classify.Category]int64)
	buf := make([]model.ServiceRow, 256)
	var read, priced, noCode, unpriceable, private int64

	for {
		n, readErr := reader.Read(buf)
		for i := 0; i < n; i++ {
			read++
			s, ok := catalog.ParseRow(&buf[i])
			if !ok {
				noCode++
				continue
			}
			if !s.Priceable() {
				unpriceable++
				continue
			}
			priced++
			byCategory[classify.Classify(s.DisplayText())]++
			private += catalog.PriceRow(s, set).Private
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			log.Error().Err(readErr).Msg("failed to read rows")
			os.Exit(exitcode.ValidationError)
		}
	}

	fmt.Println("=== tariff plan ===")
	fmt.Printf("File:        %s\n", cfg.CatalogPath)
	fmt.Printf("SHA-256:     %s\n", sha)
	fmt.Printf("Size:        %d bytes\n", stat.Size())
	fmt.Printf("Total rows:  %d\n", reader.NumRows())
	fmt.Printf("Read:        %d\n", read)
	fmt.Printf("Priceable:   %d\n", priced)
	fmt.Printf("Unpriceable: %d\n", unpriceable)
	fmt.Printf("No code:     %d\n", noCode)
	fmt.Println()
	fmt.Println("Category distribution (priceable rows):")
	for _, c := range classify.AllCategories() {
		if n := byCategory[c]; n > 0 {
			fmt.Printf("  %-12s %8d\n", c, n)
		}
	}
	fmt.Printf("\nSum of private prices: %s\n", normalize.FormatAmount(private))
	fmt.Println("Schema validation: OK")

	return nil
}
