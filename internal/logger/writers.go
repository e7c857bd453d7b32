package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

func formatWriter(format LogFormat, out io.Writer, noColor bool) io.Writer {
	switch format {
	case FormatJSON:
		return out
	case FormatText:
		noColor = true
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: noColor}
}

func consoleWriter(cfg LoggerConfig) io.Writer {
	out := cfg.ConsoleOutput
	if out == nil {
		out = os.Stderr
	}
	return formatWriter(cfg.Format, out, false)
}

// fileWriter rotates the log file with lumberjack. Files never get ANSI colours.
func fileWriter(cfg LoggerConfig) io.Writer {
	path := logPath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		path = cfg.FilePath
	}

	return formatWriter(cfg.Format, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	}, true)
}

// logPath is runs/<run-id>/<file> next to the configured file when run dirs are on.
func logPath(cfg LoggerConfig) string {
	if !cfg.UseRunDirs || cfg.RunID == "" {
		return cfg.FilePath
	}
	return filepath.Join(filepath.Dir(cfg.FilePath), "runs", cfg.RunID, filepath.Base(cfg.FilePath))
}
