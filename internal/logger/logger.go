package logger

import (
	"time"

	"github.com/aleister1102/httpeek/internal/config"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Logger represents the main logger with configuration
type Logger struct {
	zerolog zerolog.Logger
	config  LoggerConfig
}

// GetZerolog returns the underlying zerolog instance
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zerolog
}

// Config returns the resolved configuration the logger was built with
func (l *Logger) Config() LoggerConfig {
	return l.config
}

// New creates a new logger from the application log configuration
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	logger, err := NewLoggerBuilder().WithConfig(cfg).Build()
	if err != nil {
		return zerolog.Logger{}, err
	}
	return *logger.GetZerolog(), nil
}

// NewWithRunID creates a logger whose file output is grouped under the given run
func NewWithRunID(cfg config.LogConfig, runID string) (zerolog.Logger, error) {
	logger, err := NewLoggerBuilder().
		WithConfig(cfg).
		WithRunID(runID).
		Build()
	if err != nil {
		return zerolog.Logger{}, err
	}
	return *logger.GetZerolog(), nil
}

// NewRunID returns a sortable identifier for one probing run, e.g. 20250101-120000-1a2b3c4d.
func NewRunID() string {
	return time.Now().Format("20060102-150405") + "-" + uuid.NewString()[:8]
}
