package config

import "time"

// SchedulerConfig sizes the worker pool for a batch.
type SchedulerConfig struct {
	ProgressIntervalSecs int     `json:"progress_interval_secs,omitempty" yaml:"progress_interval_secs,omitempty" validate:"omitempty,min=1,max=60"`
	RateLimit            float64 `json:"rate_limit" yaml:"rate_limit" validate:"min=0"`
	Threads              int     `json:"threads,omitempty" yaml:"threads,omitempty" validate:"min=1"`
}

func NewDefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		ProgressIntervalSecs: DefaultProgressIntervalSecs,
		RateLimit:            DefaultRateLimit,
		Threads:              DefaultThreads,
	}
}

// ProgressInterval returns the progress redraw interval.
func (sc SchedulerConfig) ProgressInterval() time.Duration {
	if sc.ProgressIntervalSecs <= 0 {
		return DefaultProgressIntervalSecs * time.Second
	}
	return time.Duration(sc.ProgressIntervalSecs) * time.Second
}
