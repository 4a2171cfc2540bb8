package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup initializes a zerolog.Logger based on the requested format.
// format can be "text" (human-friendly console) or "json" (structured).
func Setup(format string) zerolog.Logger {
	if format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Str("app", "tariff").Logger()
}

// SetLevel sets the global minimum level from its name (debug, info, warn,
// error). An empty name leaves the level at info.
func SetLevel(name string) error {
	if name == "" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return nil
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("unknown log level %q: %w", name, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
