package main

import (
	"os"

	"github.com/gyeh/clinictariff/internal/exitcode"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
