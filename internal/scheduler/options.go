package scheduler

import (
	"github.com/aleister1102/httpeek/internal/models"
	"github.com/aleister1102/httpeek/internal/progress"
)

// Presentation policies layered on the aggregation stream.
type Presentation string

const (
	// PresentationSilent aggregates only.
	PresentationSilent Presentation = "silent"
	// PresentationFinal renders every result once the batch ends.
	PresentationFinal Presentation = "final"
	// PresentationLive renders each result as it arrives.
	PresentationLive Presentation = "live"
)

// ParsePresentation maps a config value to a policy, defaulting to live.
func ParsePresentation(s string) Presentation {
	switch Presentation(s) {
	case PresentationSilent, PresentationFinal:
		return Presentation(s)
	default:
		return PresentationLive
	}
}

// ResultSink receives results one at a time from the aggregation loop.
type ResultSink interface {
	Write(result *models.ProbeResult) error
}

// BatchRenderer receives the whole result set once the batch ends.
type BatchRenderer interface {
	Render(results []*models.ProbeResult) error
}

// ProgressTracker is told about the batch size and each finished probe.
type ProgressTracker interface {
	Begin(total int)
	Record(kind models.OutcomeKind)
	Finish(interrupted bool)
}

// Options configures one scheduler. Zero values mean one worker, no rate limit and silent output.
type Options struct {
	Threads int
	// RateLimit caps probe starts per second; 0 means unlimited.
	RateLimit    float64
	Presentation Presentation
	// Live receives rows under PresentationLive.
	Live ResultSink
	// Final renders the table under PresentationFinal.
	Final BatchRenderer
	// Sinks always receive every emitted result (export streams, output file).
	Sinks    []ResultSink
	Progress ProgressTracker
	Spinner  progress.Spinner
}
