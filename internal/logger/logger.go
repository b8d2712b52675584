package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters for captured process output and the app log.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes operator console and file logging for a run.
// Rotation parameters follow lumberjack semantics.
type Config struct {
	Dir        string // base directory for log files
	Level      string // debug|info|warn|error, default info
	Color      bool   // ANSI colored console output
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New builds the application logger: a colored text handler on stderr for
// the operator, plus a rotating file handler under Dir when Dir is set.
// The returned closer flushes and closes the file writer.
func (c Config) New() (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: c.slogLevel()}

	var console slog.Handler
	if c.Color {
		console = NewColorTextHandler(os.Stderr, opts, true)
	} else {
		console = slog.NewTextHandler(os.Stderr, opts)
	}

	if c.Dir == "" {
		return slog.New(console), nopCloser{}
	}

	fileW := &lj.Logger{
		Filename:   filepath.Join(c.Dir, "rvtbatch.log"),
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
	fileH := slog.NewTextHandler(fileW, opts)
	return slog.New(multiHandler{console, fileH}), fileW
}

// ProcessWriters returns rotating io.WriteClosers capturing the launched
// application's stdout and stderr for the given project code.
func (c Config) ProcessWriters(projectCode string) (io.WriteCloser, io.WriteCloser) {
	if c.Dir == "" {
		return nil, nil
	}
	mk := func(stream string) io.WriteCloser {
		return &lj.Logger{
			Filename:   filepath.Join(c.Dir, fmt.Sprintf("%s.%s.log", projectCode, stream)),
			MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
			MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
			Compress:   c.Compress,
		}
	}
	return mk("stdout"), mk("stderr")
}

func (c Config) slogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
