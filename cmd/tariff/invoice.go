package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinictariff/internal/catalog"
	"github.com/gyeh/clinictariff/internal/exitcode"
	"github.com/gyeh/clinictariff/internal/history"
	"github.com/gyeh/clinictariff/internal/invoice"
	"github.com/gyeh/clinictariff/internal/logging"
	"github.com/gyeh/clinictariff/internal/normalize"
	"github.com/gyeh/clinictariff/internal/pricing"
)

var invoiceOpts struct {
	misc       []string
	discount   string
	nationalID string
	name       string
	insurance  string
	tracking   string
	tariff     string
}

var invoiceCmd = &cobra.Command{
	Use:   "invoice <code[:tariff[:anesthesia]]>...",
	Short: "Price services into an invoice and optionally record it",
	Long: "Each argument is a catalog code, optionally followed by a tariff type " +
		"(insured, private, government) and the word anesthesia. The tariff " +
		"defaults to the configured default_tariff.",
	Example: "  tariff invoice 701500 700123:private 800010:insured:anesthesia \\\n" +
		"    --misc 'dressing=50000' --discount 10% --national-id 0012345678 --name 'Sara Ahmadi'",
	RunE: runInvoice,
}

func init() {
	f := invoiceCmd.Flags()
	f.StringArrayVar(&invoiceOpts.misc, "misc", nil, "Manual cost line as title=amount (repeatable)")
	f.StringVar(&invoiceOpts.discount, "discount", "", "Discount: N% for a percentage, N for a flat amount")
	f.StringVar(&invoiceOpts.nationalID, "national-id", "", "Record the invoice in this patient's history")
	f.StringVar(&invoiceOpts.name, "name", "", "Patient name")
	f.StringVar(&invoiceOpts.insurance, "insurance", "", "Patient insurance")
	f.StringVar(&invoiceOpts.tracking, "tracking", "", "Prescription tracking code")
	f.StringVar(&invoiceOpts.tariff, "tariff", "", "Tariff type for lines without one (default from settings)")
	rootCmd.AddCommand(invoiceCmd)
}

func runInvoice(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	if len(args) == 0 && len(invoiceOpts.misc) == 0 {
		return fmt.Errorf("at least one service code or --misc line is required")
	}

	tariffName := cfg.DefaultTariff
	if invoiceOpts.tariff != "" {
		tariffName = invoiceOpts.tariff
	}
	defaultTariff, err := invoice.ParseTariffType(tariffName)
	if err != nil {
		return err
	}
	reqs := make([]invoice.Request, 0, len(args))
	for _, arg := range args {
		r, err := parseLineArg(arg, defaultTariff)
		if err != nil {
			return err
		}
		reqs = append(reqs, r)
	}
	discount, err := parseDiscount(invoiceOpts.discount)
	if err != nil {
		return fmt.Errorf("--discount: %w", err)
	}

	var c *catalog.Catalog
	if len(reqs) > 0 {
		c = loadCatalog(context.Background(), log)
	} else {
		c = catalog.New(nil)
	}
	b := invoice.NewBuilder(c, pricing.NewEngine(loadTable(log)))

	inv, err := b.Build(reqs, discount)
	if err != nil {
		log.Error().Err(err).Msg("could not price invoice")
		if errors.Is(err, catalog.ErrNotFound) {
			os.Exit(exitcode.NotFound)
		}
		os.Exit(exitcode.PricingError)
	}
	for _, m := range invoiceOpts.misc {
		l, err := parseMiscArg(m)
		if err != nil {
			return fmt.Errorf("--misc %q: %w", m, err)
		}
		inv.Add(l)
	}

	sum := inv.Summarize()
	printInvoice(inv, sum)

	if invoiceOpts.nationalID == "" {
		return nil
	}
	rec := history.FromInvoice(inv, sum)
	rec.Name = invoiceOpts.name
	rec.Insurance = invoiceOpts.insurance
	rec.TrackingCode = invoiceOpts.tracking
	visit, err := openHistory(log).AddRecord(invoiceOpts.nationalID, rec)
	if err != nil {
		log.Error().Err(err).Msg("failed to record invoice")
		os.Exit(exitcode.StorageError)
	}
	fmt.Printf("Recorded visit %s for %s\n", visit.ID, invoiceOpts.nationalID)
	return nil
}

// parseLineArg parses "code[:tariff[:anesthesia]]".
func parseLineArg(arg string, def invoice.TariffType) (invoice.Request, error) {
	parts := strings.Split(arg, ":")
	r := invoice.Request{Code: parts[0], Tariff: def}
	for _, p := range parts[1:] {
		if strings.EqualFold(p, "anesthesia") {
			r.Anesthesia = true
			continue
		}
		t, err := invoice.ParseTariffType(p)
		if err != nil {
			return r, fmt.Errorf("%s: %w", arg, err)
		}
		r.Tariff = t
	}
	return r, nil
}

// parseMiscArg parses "title=amount".
func parseMiscArg(arg string) (invoice.Line, error) {
	i := strings.LastIndex(arg, "=")
	if i < 0 {
		return invoice.Line{}, fmt.Errorf("want title=amount")
	}
	amount, err := normalize.ParseAmountE(arg[i+1:])
	if err != nil {
		return invoice.Line{}, err
	}
	return invoice.NewMiscLine(arg[:i], amount)
}

// parseDiscount parses "N%" as a percentage and "N" as a flat amount.
func parseDiscount(s string) (invoice.Discount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return invoice.Discount{}, nil
	}
	kind := invoice.Flat
	if strings.HasSuffix(s, "%") {
		kind = invoice.Percentage
		s = strings.TrimSuffix(s, "%")
	}
	v, err := normalize.ParseAmountE(s)
	if err != nil {
		return invoice.Discount{}, err
	}
	if v < 0 {
		return invoice.Discount{}, fmt.Errorf("discount must be non-negative")
	}
	return invoice.Discount{Kind: kind, Value: v}, nil
}

func printInvoice(inv *invoice.Invoice, sum invoice.Summary) {
	fmt.Printf("%-3s %-40s %-10s %15s %15s %15s\n", "#", "service", "tariff", "total", "organization", "patient")
	for i, l := range inv.Lines {
		desc := l.Description
		if l.Quote != nil && l.Quote.Anesthesia {
			desc += " (+anesthesia)"
		}
		fmt.Printf("%-3d %-40s %-10s %15s %15s %15s\n", i+1, desc, l.Tariff.Label(),
			normalize.FormatAmount(l.Total), normalize.FormatAmount(l.Organization), normalize.FormatAmount(l.Patient))
	}
	fmt.Println()
	fmt.Printf("Total:          %15s\n", normalize.FormatAmount(sum.Total))
	fmt.Printf("Organization:   %15s\n", normalize.FormatAmount(sum.Organization))
	fmt.Printf("Patient share:  %15s\n", normalize.FormatAmount(sum.Patient))
	if sum.DiscountAmount != 0 {
		fmt.Printf("Discount:       %15s\n", normalize.FormatAmount(sum.DiscountAmount))
	}
	fmt.Printf("Payable:        %15s\n", normalize.FormatAmount(sum.FinalTotal))
	fmt.Printf("Patient pays:   %15s\n", normalize.FormatAmount(sum.FinalPatient))
}
