package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinictariff/internal/catalog"
	"github.com/gyeh/clinictariff/internal/classify"
	"github.com/gyeh/clinictariff/internal/db"
	"github.com/gyeh/clinictariff/internal/exitcode"
	"github.com/gyeh/clinictariff/internal/logging"
	"github.com/gyeh/clinictariff/internal/pricing"
)

var (
	searchCategory string
	searchLimit    int
	backupDir      string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse and maintain the service catalog",
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "List services by category and free text",
	Args:  cobra.ArbitraryArgs,
	RunE:  runCatalogSearch,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <code>",
	Short: "Show one service with its full quote",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

var catalogBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the catalog file into the backups directory",
	RunE:  runCatalogBackup,
}

var catalogVersionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List catalog versions imported into Postgres",
	RunE:  runCatalogVersions,
}

func init() {
	catalogSearchCmd.Flags().StringVar(&searchCategory, "category", string(classify.All), "Category name or label")
	catalogSearchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum results to print (0 for all)")
	catalogBackupCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (default from settings)")
	catalogCmd.AddCommand(catalogSearchCmd, catalogShowCmd, catalogBackupCmd, catalogVersionsCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	cat, ok := classify.ParseCategory(searchCategory)
	if !ok {
		return fmt.Errorf("unknown category %q", searchCategory)
	}

	c := loadCatalog(context.Background(), log)
	results := c.Search(cat, strings.Join(args, " "))
	for i, svc := range results {
		if searchLimit > 0 && i == searchLimit {
			fmt.Printf("... %d more\n", len(results)-searchLimit)
			break
		}
		fmt.Printf("%-12s %s\n", classify.Classify(svc.DisplayText()), svc.DisplayText())
	}
	fmt.Printf("%d services\n", len(results))
	return nil
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	c := loadCatalog(context.Background(), log)
	svc, err := c.Lookup(args[0])
	if err != nil {
		log.Error().Err(err).Msg("lookup failed")
		os.Exit(exitcode.NotFound)
	}

	cat := classify.Classify(svc.DisplayText())
	fmt.Printf("Code:         %s\n", svc.Code)
	fmt.Printf("Description:  %s\n", svc.Description)
	fmt.Printf("Type marker:  %s\n", svc.TypeMarker)
	fmt.Printf("Category:     %s (%s)\n", cat, cat.Label())
	fmt.Printf("Professional: %v\n", svc.Professional)
	fmt.Printf("Technical:    %v\n", svc.Technical)
	if !svc.Priceable() {
		fmt.Println("Not priced: no professional or technical value")
		return nil
	}
	fmt.Printf("Rates:        %s\n", rateLabel(svc.TypeMarker))
	printQuote(pricing.Price(svc.TypeMarker, svc.Professional, svc.Technical, loadTable(log).Current()))
	return nil
}

func rateLabel(marker string) string {
	if pricing.IsHashed(marker) {
		return "hashed"
	}
	return "plain"
}

func runCatalogBackup(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	if err := cfg.ValidateCatalog(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	dir := cfg.BackupDir
	if backupDir != "" {
		dir = backupDir
	}
	dst, err := catalog.Backup(cfg.CatalogPath, dir, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("backup failed")
		os.Exit(exitcode.StorageError)
	}
	log.Info().Str("backup", dst).Msg("catalog backed up")
	return nil
}

func runCatalogVersions(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()
	if cfg.DSN == "" {
		log.Error().Msg("--dsn or TARIFF_DSN is required")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	versions, err := db.ListVersions(ctx, pool)
	if err != nil {
		log.Error().Err(err).Msg("failed to list versions")
		os.Exit(exitcode.StorageError)
	}
	for _, ver := range versions {
		active := ""
		if ver.Active {
			active = "*"
		}
		fmt.Printf("%1s %4d  %-10s %7d rows  %s  %s\n",
			active, ver.ID, ver.Status, ver.RowCount, ver.CreatedAt.Format(time.DateTime), ver.FileName)
	}
	return nil
}
