package config

import (
	"time"

	"github.com/aleister1102/httpeek/internal/rslimiter"
)

// ResourceLimiterConfig controls the guard that stops a batch under memory pressure.
type ResourceLimiterConfig struct {
	CheckIntervalSecs  int     `json:"check_interval_secs,omitempty" yaml:"check_interval_secs,omitempty" validate:"omitempty,min=1"`
	Enabled            bool    `json:"enabled" yaml:"enabled"`
	MaxGoroutines      int     `json:"max_goroutines,omitempty" yaml:"max_goroutines,omitempty" validate:"omitempty,min=100"`
	MaxMemoryMB        int64   `json:"max_memory_mb,omitempty" yaml:"max_memory_mb,omitempty" validate:"omitempty,min=64"`
	SystemMemThreshold float64 `json:"system_mem_threshold,omitempty" yaml:"system_mem_threshold,omitempty" validate:"omitempty,min=0.1,max=1.0"`
}

// NewDefaultResourceLimiterConfig creates default resource limiter configuration
func NewDefaultResourceLimiterConfig() ResourceLimiterConfig {
	return ResourceLimiterConfig{
		CheckIntervalSecs:  5,
		Enabled:            true,
		MaxGoroutines:      20000,
		MaxMemoryMB:        2048,
		SystemMemThreshold: 0.95,
	}
}

// CheckInterval returns the sampling interval.
func (rc ResourceLimiterConfig) CheckInterval() time.Duration {
	if rc.CheckIntervalSecs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(rc.CheckIntervalSecs) * time.Second
}

// ToLimiterConfig converts the file settings into the guard's runtime config.
func (rc ResourceLimiterConfig) ToLimiterConfig() rslimiter.ResourceLimiterConfig {
	cfg := rslimiter.DefaultResourceLimiterConfig()
	cfg.CheckInterval = rc.CheckInterval()
	cfg.EnableAutoShutdown = rc.Enabled
	cfg.MaxGoroutines = rc.MaxGoroutines
	cfg.MaxMemoryMB = rc.MaxMemoryMB
	if rc.SystemMemThreshold > 0 {
		cfg.SystemMemThreshold = rc.SystemMemThreshold
	}
	return cfg
}
