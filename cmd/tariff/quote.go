package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinictariff/internal/exitcode"
	"github.com/gyeh/clinictariff/internal/logging"
	"github.com/gyeh/clinictariff/internal/normalize"
	"github.com/gyeh/clinictariff/internal/pricing"
)

var quoteOpts struct {
	marker       string
	professional string
	technical    string
	anesthesia   bool
}

var quoteCmd = &cobra.Command{
	Use:   "quote [code]",
	Short: "Price one service by catalog code or by raw values",
	Example: "  tariff quote 701500 --anesthesia\n" +
		"  tariff quote --marker '#' --professional 1.5 --technical 2",
	Args: cobra.MaximumNArgs(1),
	RunE: runQuote,
}

func init() {
	f := quoteCmd.Flags()
	f.StringVar(&quoteOpts.marker, "marker", "", "Service type marker (a '#' selects the hashed rates)")
	f.StringVar(&quoteOpts.professional, "professional", "", "Professional value")
	f.StringVar(&quoteOpts.technical, "technical", "", "Technical value")
	f.BoolVar(&quoteOpts.anesthesia, "anesthesia", false, "Apply the local anesthesia surcharge")
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	engine := pricing.NewEngine(loadTable(log))

	if len(args) == 1 {
		c := loadCatalog(context.Background(), log)
		svc, err := c.Lookup(args[0])
		if err != nil {
			log.Error().Err(err).Msg("lookup failed")
			os.Exit(exitcode.NotFound)
		}
		if !svc.Priceable() {
			log.Warn().Str("code", svc.Code).Msg("service has no tariff value")
		}
		fmt.Println(svc.DisplayText())
		printQuote(engine.Price(svc.TypeMarker, svc.Professional, svc.Technical, quoteOpts.anesthesia))
		return nil
	}

	if quoteOpts.professional == "" && quoteOpts.technical == "" {
		return fmt.Errorf("give a catalog code or --professional/--technical")
	}
	prof, err := parseOptional(quoteOpts.professional)
	if err != nil {
		return fmt.Errorf("--professional: %w", err)
	}
	tech, err := parseOptional(quoteOpts.technical)
	if err != nil {
		return fmt.Errorf("--technical: %w", err)
	}
	printQuote(engine.Price(quoteOpts.marker, prof, tech, quoteOpts.anesthesia))
	return nil
}

// parseOptional parses operator input strictly; an empty flag means zero.
func parseOptional(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return normalize.ParseNumberE(s)
}
