package rslimiter

import "time"

// ResourceLimiterConfig holds the thresholds a probing batch is allowed to reach.
type ResourceLimiterConfig struct {
	MaxMemoryMB        int64         // heap allocation limit for the process
	MaxGoroutines      int           // goroutine count limit
	CheckInterval      time.Duration // sampling interval
	MemoryWarning      float64       // fraction of MaxMemoryMB that logs a warning
	SystemMemThreshold float64       // fraction of system memory that stops the batch
	EnableAutoShutdown bool          // stop the batch when a limit is exceeded
}

// DefaultResourceLimiterConfig returns default configuration
func DefaultResourceLimiterConfig() ResourceLimiterConfig {
	return ResourceLimiterConfig{
		MaxMemoryMB:        2048,
		MaxGoroutines:      20000,
		CheckInterval:      5 * time.Second,
		MemoryWarning:      0.8,
		SystemMemThreshold: 0.95,
		EnableAutoShutdown: true,
	}
}
