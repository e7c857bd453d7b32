package rslimiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ResourceLimiter samples resource usage while a batch runs and calls the
// shutdown callback once when a limit is exceeded.
type ResourceLimiter struct {
	config ResourceLimiterConfig
	logger zerolog.Logger
	sample func() ResourceUsage

	mu               sync.Mutex
	isRunning        bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	shutdownCallback func(reason string)
	triggered        bool
}

// NewResourceLimiter creates a limiter; zero-valued fields take the defaults.
func NewResourceLimiter(config ResourceLimiterConfig, logger zerolog.Logger) *ResourceLimiter {
	defaults := DefaultResourceLimiterConfig()
	if config.CheckInterval <= 0 {
		config.CheckInterval = defaults.CheckInterval
	}
	if config.MemoryWarning <= 0 {
		config.MemoryWarning = defaults.MemoryWarning
	}
	if config.SystemMemThreshold <= 0 {
		config.SystemMemThreshold = defaults.SystemMemThreshold
	}

	return &ResourceLimiter{
		config: config,
		logger: logger.With().Str("component", "ResourceLimiter").Logger(),
		sample: GetResourceUsage,
	}
}

// SetShutdownCallback sets the function called when a limit is exceeded.
func (rl *ResourceLimiter) SetShutdownCallback(callback func(reason string)) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.shutdownCallback = callback
}

// Start begins sampling until Stop is called or ctx is done.
func (rl *ResourceLimiter) Start(ctx context.Context) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.isRunning {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	rl.cancel = cancel
	rl.isRunning = true
	rl.triggered = false

	rl.wg.Add(1)
	go rl.monitorResources(loopCtx)

	rl.logger.Debug().
		Int64("max_memory_mb", rl.config.MaxMemoryMB).
		Int("max_goroutines", rl.config.MaxGoroutines).
		Dur("check_interval", rl.config.CheckInterval).
		Float64("system_mem_threshold", rl.config.SystemMemThreshold).
		Bool("auto_shutdown_enabled", rl.config.EnableAutoShutdown).
		Msg("Resource limiter started")
}

// Stop stops sampling and waits for the loop to exit.
func (rl *ResourceLimiter) Stop() {
	rl.mu.Lock()
	if !rl.isRunning {
		rl.mu.Unlock()
		return
	}
	rl.isRunning = false
	cancel := rl.cancel
	rl.mu.Unlock()

	cancel()
	rl.wg.Wait()
}

// Running reports whether the sampling loop is active.
func (rl *ResourceLimiter) Running() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.isRunning
}

func (rl *ResourceLimiter) monitorResources(ctx context.Context) {
	defer rl.wg.Done()

	ticker := time.NewTicker(rl.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.checkAndLogResourceUsage()
		}
	}
}

func (rl *ResourceLimiter) checkAndLogResourceUsage() {
	usage := rl.sample()
	rl.logWarnings(usage)

	if exceeded, reason := rl.CheckLimits(usage); exceeded && rl.config.EnableAutoShutdown {
		rl.logger.Error().
			Str("reason", reason).
			Int64("alloc_mb", usage.AllocMB).
			Int("goroutines", usage.Goroutines).
			Float64("system_mem_percent", usage.SystemMemUsedPercent).
			Msg("Resource limits exceeded, stopping batch")
		rl.triggerGracefulShutdown(reason)
		return
	}

	rl.logger.Debug().
		Int64("alloc_mb", usage.AllocMB).
		Int64("sys_mb", usage.SysMB).
		Int("goroutines", usage.Goroutines).
		Int64("gc_count", usage.GCCount).
		Float64("system_mem_percent", usage.SystemMemUsedPercent).
		Msg("Current resource usage")
}

func (rl *ResourceLimiter) logWarnings(usage ResourceUsage) {
	if rl.config.MaxMemoryMB <= 0 {
		return
	}
	threshold := int64(float64(rl.config.MaxMemoryMB) * rl.config.MemoryWarning)
	if usage.AllocMB > threshold {
		rl.logger.Warn().
			Int64("current_mb", usage.AllocMB).
			Int64("threshold_mb", threshold).
			Int64("limit_mb", rl.config.MaxMemoryMB).
			Msg("Memory usage approaching limit")
	}
}

// CheckLimits evaluates one sample against the configured limits.
// Zero limits are not enforced.
func (rl *ResourceLimiter) CheckLimits(usage ResourceUsage) (bool, string) {
	if rl.config.MaxMemoryMB > 0 && usage.AllocMB > rl.config.MaxMemoryMB {
		return true, fmt.Sprintf("memory limit exceeded: current %dMB > limit %dMB", usage.AllocMB, rl.config.MaxMemoryMB)
	}
	if rl.config.MaxGoroutines > 0 && usage.Goroutines > rl.config.MaxGoroutines {
		return true, fmt.Sprintf("goroutine limit exceeded: current %d > limit %d", usage.Goroutines, rl.config.MaxGoroutines)
	}
	if usage.SystemMemUsedPercent/100.0 > rl.config.SystemMemThreshold {
		return true, fmt.Sprintf("system memory threshold exceeded: %.1f%% > %.1f%%", usage.SystemMemUsedPercent, rl.config.SystemMemThreshold*100)
	}
	return false, ""
}

// triggerGracefulShutdown calls the callback at most once per Start.
func (rl *ResourceLimiter) triggerGracefulShutdown(reason string) {
	rl.mu.Lock()
	callback := rl.shutdownCallback
	already := rl.triggered
	rl.triggered = true
	rl.mu.Unlock()

	if already {
		return
	}
	if callback == nil {
		rl.logger.Warn().Msg("No shutdown callback set, cannot stop batch")
		return
	}
	callback(reason)
}
