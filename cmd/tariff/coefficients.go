package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/clinictariff/internal/coefficients"
	"github.com/gyeh/clinictariff/internal/exitcode"
	"github.com/gyeh/clinictariff/internal/logging"
	"github.com/gyeh/clinictariff/internal/normalize"
)

var coefficientsCmd = &cobra.Command{
	Use:     "coefficients",
	Aliases: []string{"coef"},
	Short:   "Show or change the per-unit pricing rates",
}

var coefficientsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.Setup(cfg.LogFormat)
		printCoefficients(loadTable(log).Current())
		return nil
	},
}

var coefficientsSetCmd = &cobra.Command{
	Use:     "set <key=value>...",
	Short:   "Change one or more rates and save them",
	Example: "  tariff coefficients set prof_hashed=600000 tech_hashed=1800000",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runCoefficientsSet,
}

var coefficientsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore and save the default rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.Setup(cfg.LogFormat)
		editCoefficients(log, func(coefficients.Set) coefficients.Set { return coefficients.Defaults() })
		return nil
	},
}

var coefficientsForce bool

func init() {
	coefficientsCmd.PersistentFlags().BoolVar(&coefficientsForce, "force", false, "Overwrite a coefficients file that cannot be parsed")
	coefficientsCmd.AddCommand(coefficientsShowCmd, coefficientsSetCmd, coefficientsResetCmd)
	rootCmd.AddCommand(coefficientsCmd)
}

func runCoefficientsSet(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	changes := make(map[string]float64, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("%q: want key=value", arg)
		}
		key = strings.TrimSpace(key)
		if _, known := coefficients.Defaults().Get(key); !known {
			return fmt.Errorf("unknown coefficient %q (want one of %s)", key, strings.Join(coefficients.Keys(), ", "))
		}
		val, err := normalize.ParseNumberE(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		changes[key] = val
	}
	editCoefficients(log, func(s coefficients.Set) coefficients.Set {
		for k, v := range changes {
			s, _ = s.With(k, v)
		}
		return s
	})
	return nil
}

// editCoefficients applies fn to the stored rates and saves the result, or
// exits without touching the file.
func editCoefficients(log zerolog.Logger, fn func(coefficients.Set) coefficients.Set) {
	s, err := coefficients.Edit(cfg.CoefficientsPath, coefficientsForce, fn)
	switch {
	case errors.Is(err, coefficients.ErrUnreadable):
		log.Error().Err(err).Str("path", cfg.CoefficientsPath).Msg("refusing to overwrite coefficients file (use --force)")
		os.Exit(exitcode.StorageError)
	case errors.Is(err, coefficients.ErrNegative):
		log.Error().Err(err).Msg("refusing to save coefficients")
		os.Exit(exitcode.ValidationError)
	case err != nil:
		log.Error().Err(err).Msg("failed to save coefficients")
		os.Exit(exitcode.StorageError)
	}
	log.Info().Str("path", cfg.CoefficientsPath).Msg("coefficients saved")
	printCoefficients(s)
}

func printCoefficients(s coefficients.Set) {
	for _, k := range coefficients.Keys() {
		v, _ := s.Get(k)
		fmt.Printf("%-12s %15s\n", k, strconv.FormatFloat(v, 'f', -1, 64))
	}
}
