package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/gyeh/clinictariff/internal/catalog"
	"github.com/gyeh/clinictariff/internal/coefficients"
	"github.com/gyeh/clinictariff/internal/db"
	"github.com/gyeh/clinictariff/internal/exitcode"
	"github.com/gyeh/clinictariff/internal/history"
	"github.com/gyeh/clinictariff/internal/normalize"
	"github.com/gyeh/clinictariff/internal/pricing"
)

// loadTable reads the coefficient file. An unreadable file is logged and
// replaced by the defaults so pricing can go on.
func loadTable(log zerolog.Logger) *coefficients.Table {
	set, err := coefficients.Load(cfg.CoefficientsPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.CoefficientsPath).Msg("coefficients unreadable, using defaults")
	}
	return coefficients.NewTable(set)
}

// loadCatalog opens the catalog from Postgres with --from-db, otherwise from
// the Parquet file. It exits the process on failure.
func loadCatalog(ctx context.Context, log zerolog.Logger) *catalog.Catalog {
	if cfg.FromDB {
		if cfg.DSN == "" {
			log.Error().Msg("--dsn or TARIFF_DSN is required with --from-db")
			os.Exit(exitcode.UsageError)
		}
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()

		c, err := catalog.LoadDB(ctx, pool)
		if err != nil {
			log.Error().Err(err).Msg("failed to load catalog")
			os.Exit(exitcode.StorageError)
		}
		log.Debug().Int("services", c.Len()).Msg("catalog loaded from database")
		return c
	}

	if err := cfg.ValidateCatalog(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	c, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.CatalogPath).Msg("failed to load catalog")
		os.Exit(exitcode.ValidationError)
	}
	log.Debug().Int("services", c.Len()).Str("path", cfg.CatalogPath).Msg("catalog loaded")
	return c
}

// openHistory opens the patient history store or exits.
func openHistory(log zerolog.Logger) *history.Store {
	h, err := history.Open(cfg.HistoryPath, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open patient history")
		os.Exit(exitcode.StorageError)
	}
	return h
}

func printQuote(q pricing.Quote) {
	fmt.Printf("  %-14s %15s\n", "private", normalize.FormatAmount(q.Private))
	fmt.Printf("  %-14s %15s\n", "insurance", normalize.FormatAmount(q.Insurance))
	fmt.Printf("  %-14s %15s\n", "organization", normalize.FormatAmount(q.Organization))
	fmt.Printf("  %-14s %15s\n", "government", normalize.FormatAmount(q.Government))
	fmt.Printf("  %-14s %15s\n", "government 70%", normalize.FormatAmount(q.Government70))
	if q.Anesthesia {
		fmt.Println("  (local anesthesia +20% applied)")
	}
}
