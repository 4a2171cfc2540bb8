package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinictariff/internal/exitcode"
	"github.com/gyeh/clinictariff/internal/history"
	"github.com/gyeh/clinictariff/internal/logging"
	"github.com/gyeh/clinictariff/internal/normalize"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Look up patient visit history",
}

var historyShowCmd = &cobra.Command{
	Use:   "show <national-id>",
	Short: "Show one patient's visits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.Setup(cfg.LogFormat)
		sum, ok := openHistory(log).Summary(args[0])
		if !ok {
			log.Error().Str("national_id", args[0]).Msg("patient not found")
			os.Exit(exitcode.NotFound)
		}
		printPatient(sum)
		for _, v := range sum.Visits {
			fmt.Printf("  %s  %15s  %-10s %s\n", v.IssuedAt.Format(time.DateTime),
				normalize.FormatAmount(v.Total), v.Tariff, v.TrackingCode)
			for _, s := range v.Services {
				fmt.Printf("      %-40s %-10s %15s\n", s.Name, s.Tariff, normalize.FormatAmount(s.Cost))
			}
		}
		return nil
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Find patients by name (at least two characters)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.Setup(cfg.LogFormat)
		results := openHistory(log).SearchByName(args[0])
		for _, sum := range results {
			printPatient(sum)
		}
		fmt.Printf("%d patients\n", len(results))
		return nil
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patients, most recent visit first",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.Setup(cfg.LogFormat)
		for _, sum := range openHistory(log).All(historyLimit) {
			printPatient(sum)
		}
		return nil
	},
}

var historyTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Count invoices issued today",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.Setup(cfg.LogFormat)
		fmt.Println(openHistory(log).CountOn(time.Now()))
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 100, "Maximum patients to list (0 for all)")
	historyCmd.AddCommand(historyShowCmd, historySearchCmd, historyListCmd, historyTodayCmd)
	rootCmd.AddCommand(historyCmd)
}

func printPatient(s history.Summary) {
	last := "-"
	if !s.LastVisit.IsZero() {
		last = s.LastVisit.Format(time.DateOnly)
	}
	fmt.Printf("%-12s %-28s %-14s %3d visits %15s  last %s\n",
		s.NationalID, s.Name, s.Insurance, s.TotalInvoices, normalize.FormatAmount(s.TotalAmount), last)
}
