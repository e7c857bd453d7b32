package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/aleister1102/httpeek/internal/common"
)

const (
	// Probe Defaults
	DefaultProbeMethod           = "GET"
	DefaultProbeTimeoutSecs      = 10
	DefaultProbeRetries          = 3
	DefaultProbeFollowRedirects  = true
	DefaultProbeMaxRedirects     = 10
	DefaultProbeRedirectStrategy = "native"
	DefaultProbeMaxBodySize      = 10 * 1024 * 1024

	// Filter Defaults
	DefaultStatusFilter = "All"
	DefaultMatchMode    = "regex"

	// Output Defaults
	DefaultPresentation = PresentationLive
	DefaultOutputFormat = FormatTable

	// Scheduler Defaults
	DefaultThreads              = 50
	DefaultRateLimit            = 0
	DefaultProgressIntervalSecs = 3

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// maxConfigFileSize bounds config files read from disk.
	maxConfigFileSize = 10 * 1024 * 1024
)

type GlobalConfig struct {
	FilterConfig          FilterConfig          `json:"filter_config,omitempty" yaml:"filter_config,omitempty"`
	LogConfig             LogConfig             `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	OutputConfig          OutputConfig          `json:"output_config,omitempty" yaml:"output_config,omitempty"`
	ProbeConfig           ProbeConfig           `json:"probe_config,omitempty" yaml:"probe_config,omitempty"`
	ResourceLimiterConfig ResourceLimiterConfig `json:"resource_limiter_config,omitempty" yaml:"resource_limiter_config,omitempty"`
	SchedulerConfig       SchedulerConfig       `json:"scheduler_config,omitempty" yaml:"scheduler_config,omitempty"`
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		FilterConfig:          NewDefaultFilterConfig(),
		LogConfig:             NewDefaultLogConfig(),
		OutputConfig:          NewDefaultOutputConfig(),
		ProbeConfig:           NewDefaultProbeConfig(),
		ResourceLimiterConfig: NewDefaultResourceLimiterConfig(),
		SchedulerConfig:       NewDefaultSchedulerConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is preferred if the file extension is .yaml or .yml. Without a config file the
// defaults are returned.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" {
		fileManager := common.NewFileManager(logger)
		if !fileManager.FileExists(providedPath) {
			return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
		}
	}

	filePath := GetConfigPath(providedPath)
	LoadDotEnv(filePath, logger)

	if filePath == "" {
		logger.Debug().Msg("No config file found, using defaults")
		ApplyEnvOverrides(cfg)
		return cfg, nil
	}

	data, err := common.NewFileManager(logger).ReadFile(filePath, maxConfigFileSize)
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	ApplyEnvOverrides(cfg)

	logger.Debug().Str("path", filePath).Msg("Configuration loaded")
	return cfg, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// parseYAMLConfig parses YAML configuration
func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

// parseJSONConfig parses JSON configuration
func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
