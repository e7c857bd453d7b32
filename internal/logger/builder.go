package logger

import (
	"io"
	stdlog "log"

	"github.com/rs/zerolog"

	"github.com/aleister1102/httpeek/internal/common"
	"github.com/aleister1102/httpeek/internal/config"
)

// LoggerBuilder assembles a zerolog logger from the run's log settings.
type LoggerBuilder struct {
	config LoggerConfig
	errs   common.ErrorCollector
}

func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{config: DefaultLoggerConfig()}
}

// WithConfig replaces the settings; RunID and ConsoleOutput set earlier are kept.
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	resolved, err := fromLogConfig(cfg)
	lb.errs.AddWithContext(err, "log_config")
	resolved.RunID = lb.config.RunID
	resolved.ConsoleOutput = lb.config.ConsoleOutput
	lb.config = resolved
	return lb
}

func (lb *LoggerBuilder) WithRunID(runID string) *LoggerBuilder {
	lb.config.RunID = runID
	return lb
}

// WithConsoleOutput redirects console logs away from stderr.
func (lb *LoggerBuilder) WithConsoleOutput(w io.Writer) *LoggerBuilder {
	lb.config.ConsoleOutput = w
	return lb
}

func (lb *LoggerBuilder) Build() (*Logger, error) {
	if lb.errs.HasErrors() {
		return nil, lb.errs.Error()
	}
	if lb.config.MaxSizeMB <= 0 {
		return nil, common.NewValidationError("max_size_mb", lb.config.MaxSizeMB, "max size must be positive")
	}

	writers := []io.Writer{consoleWriter(lb.config)}
	if lb.config.FilePath != "" {
		writers = append(writers, fileWriter(lb.config))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lb.config.Level).
		With().
		Timestamp().
		Logger()

	// net/http reports some transport errors through the standard logger.
	stdlog.SetOutput(zl)
	stdlog.SetFlags(0)

	return &Logger{zerolog: zl, config: lb.config}, nil
}
