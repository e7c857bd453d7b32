package scheduler

import (
	"time"

	"github.com/aleister1102/httpeek/internal/models"
)

// Summary is what a batch leaves behind.
type Summary struct {
	// Results holds emitted records in completion order.
	Results  []*models.ProbeResult
	Total    int
	Survived int
	Filtered int
	Failed   int
	// Interrupted is set when the batch was cancelled; Results are then partial.
	Interrupted bool
	Duration    time.Duration
}

// Completed is the number of probes that reported an outcome.
func (s Summary) Completed() int {
	return s.Survived + s.Filtered + s.Failed
}

func (s *Summary) record(o models.Outcome) {
	switch o.Kind {
	case models.OutcomeSurvived:
		s.Survived++
	case models.OutcomeFiltered:
		s.Filtered++
	default:
		s.Failed++
	}
	if result, ok := o.Emitted(); ok {
		s.Results = append(s.Results, result)
	}
}
