package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinictariff/internal/exitcode"
	"github.com/gyeh/clinictariff/internal/invoice"
	"github.com/gyeh/clinictariff/internal/logging"
	"github.com/gyeh/clinictariff/internal/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pricing and invoice JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from config, else :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if listenAddr != "" {
		cfg.Listen = listenAddr
	}

	tariff, err := invoice.ParseTariffType(cfg.DefaultTariff)
	if err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	srv := server.New(server.Deps{
		Catalog:          loadCatalog(ctx, log),
		Table:            loadTable(log),
		History:          openHistory(log),
		CoefficientsPath: cfg.CoefficientsPath,
		DefaultTariff:    tariff,
		Clinic:           cfg.Clinic,
		Log:              log,
	})

	if err := srv.Run(ctx, cfg.Listen); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(exitcode.StorageError)
	}
	return nil
}
