// Package logging configures the global zerolog logger for the commands.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-identity-dashboard/internal/config"
)

// Setup points the global logger at w (stderr when nil), human readable in
// development and JSON otherwise, at the level named by LOG_LEVEL.
func Setup(cfg config.EnvConfig, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
	} else {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.GetLogLevel()))
	if err != nil {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
		return err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(lvl)
	return nil
}
