package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Environment variables read by the loader.
const (
	EnvConfigPath = "HTTPEEK_CONFIG_PATH"
	EnvProxy      = "HTTPEEK_PROXY"
	EnvLogLevel   = "HTTPEEK_LOG_LEVEL"
	EnvThreads    = "HTTPEEK_THREADS"
)

// GetConfigPath determines the configuration file path based on command-line flags,
// environment variables, and default locations.
// Priority:
// 1. --config command-line flag
// 2. HTTPEEK_CONFIG_PATH environment variable
// 3. httpeek.yaml / httpeek.yml / httpeek.json in the current working directory
// 4. the same names in the executable's directory
func GetConfigPath(configFilePathFlag string) string {
	if configFilePathFlag != "" {
		if fileExists(configFilePathFlag) {
			return configFilePathFlag
		}
	}

	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		if fileExists(envPath) {
			return envPath
		}
	}

	cwd, errCwd := os.Getwd()
	exePath, errExe := os.Executable()
	exeDir := ""
	if errExe == nil {
		exeDir = filepath.Dir(exePath)
	}

	defaultFiles := []string{"httpeek.yaml", "httpeek.yml", "httpeek.json"}
	locations := []string{}

	if errCwd == nil {
		locations = append(locations, cwd)
	}
	if exeDir != "" && (errCwd != nil || exeDir != cwd) {
		locations = append(locations, exeDir)
	}

	for _, loc := range locations {
		for _, file := range defaultFiles {
			path := filepath.Join(loc, file)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

// LoadDotEnv loads a .env file next to the config file and one in the working
// directory. Existing environment variables are never overwritten.
func LoadDotEnv(configPath string, logger zerolog.Logger) {
	candidates := []string{}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), ".env"))
	}
	candidates = append(candidates, ".env")

	seen := make(map[string]struct{})
	for _, path := range candidates {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if _, ok := seen[abs]; ok || !fileExists(abs) {
			continue
		}
		seen[abs] = struct{}{}
		if err := godotenv.Load(abs); err != nil {
			logger.Warn().Err(err).Str("path", abs).Msg("Failed to load .env file")
			continue
		}
		logger.Debug().Str("path", abs).Msg("Loaded .env file")
	}
}

// ApplyEnvOverrides copies HTTPEEK_* variables into cfg. Malformed numbers are ignored.
func ApplyEnvOverrides(cfg *GlobalConfig) {
	if proxy := strings.TrimSpace(os.Getenv(EnvProxy)); proxy != "" {
		cfg.ProbeConfig.Proxy = proxy
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.LogConfig.LogLevel = level
	}
	if threads, err := strconv.Atoi(strings.TrimSpace(os.Getenv(EnvThreads))); err == nil && threads > 0 {
		cfg.SchedulerConfig.Threads = threads
	}
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
