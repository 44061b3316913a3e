// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the optional log file.
const (
	FileMaxSizeMB  = 100
	FileMaxBackups = 3
	FileMaxAgeDays = 28
)

type Options struct {
	Level  string // debug, info, warn, error
	Format string // console, json
	File   string
}

// New builds a logger writing to w and, when opts.File is set, to a
// rotating file as well.
func New(opts Options, w io.Writer) zerolog.Logger {
	out := w
	if strings.EqualFold(opts.Format, "console") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	if opts.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    FileMaxSizeMB,
			MaxBackups: FileMaxBackups,
			MaxAge:     FileMaxAgeDays,
			Compress:   true,
		})
	}

	return zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Str("service", "bookreview").
		Logger()
}

// Init replaces the global logger.
func Init(opts Options) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = New(opts, os.Stdout)
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
