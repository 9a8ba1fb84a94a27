package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"promptdeck/internal/platform/config"
)

// Init configures the global zerolog logger from the logging config section.
// Misconfiguration degrades (unknown level becomes info, an unopenable log
// file falls back to stdout) rather than stopping the process.
func Init(cfg config.LoggingConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = os.Stdout
	if cfg.Output == "file" && cfg.FilePath != "" {
		if file, ferr := openLogFile(cfg.FilePath); ferr == nil {
			w = file
		} else {
			log.Error().Err(ferr).Str("path", cfg.FilePath).Msg("failed to open log file, logging to stdout")
		}
	}
	if cfg.Format == "text" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(w).With().Timestamp().Str("service", "promptdeck").Logger()
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
}
