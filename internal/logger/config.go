package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aleister1102/httpeek/internal/common"
	"github.com/aleister1102/httpeek/internal/config"
)

// LogFormat selects how log lines are encoded.
type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatConsole
	FormatText
)

func (lf LogFormat) String() string {
	switch lf {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	default:
		return "console"
	}
}

// ParseFormat maps a config value to a LogFormat; unknown values mean console.
func ParseFormat(s string) LogFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatConsole
	}
}

// ParseLevel maps a config value to a zerolog level; empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, common.WrapError(err, "invalid log level")
	}
	return level, nil
}

// LoggerConfig is the resolved logger setup.
type LoggerConfig struct {
	Level      zerolog.Level
	Format     LogFormat
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	// RunID places the log file under runs/<id>/ next to FilePath when UseRunDirs is set.
	RunID      string
	UseRunDirs bool
	// ConsoleOutput defaults to os.Stderr; stdout is reserved for results.
	ConsoleOutput io.Writer
}

// DefaultLoggerConfig logs info and above to stderr only.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:      zerolog.InfoLevel,
		Format:     FormatConsole,
		MaxSizeMB:  config.DefaultMaxLogSizeMB,
		MaxBackups: config.DefaultMaxLogBackups,
	}
}

// fromLogConfig resolves the user-facing log settings. A bad level still yields a
// usable config together with the error.
func fromLogConfig(cfg config.LogConfig) (LoggerConfig, error) {
	level, err := ParseLevel(cfg.LogLevel)

	resolved := DefaultLoggerConfig()
	resolved.Level = level
	resolved.Format = ParseFormat(cfg.LogFormat)
	resolved.FilePath = cfg.LogFile
	resolved.UseRunDirs = cfg.UseRunDirs
	if cfg.MaxLogSizeMB > 0 {
		resolved.MaxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		resolved.MaxBackups = cfg.MaxLogBackups
	}
	return resolved, err
}
