package models

// OutcomeKind tags the three ways a single probe can end.
type OutcomeKind int

const (
	// OutcomeSurvived means the response passed every configured filter.
	OutcomeSurvived OutcomeKind = iota
	// OutcomeFiltered means a filter rejected the response; nothing is emitted.
	OutcomeFiltered
	// OutcomeFailed means no usable response was obtained.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSurvived:
		return "survived"
	case OutcomeFiltered:
		return "filtered"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the explicit result of probing one target.
// Failed outcomes may still carry a failure row (null status, error title) for display.
type Outcome struct {
	Kind   OutcomeKind
	Target string
	Result *ProbeResult
	Err    error
	// Attempts counts the HTTP attempts made, retries included.
	Attempts int
}

// Survived builds a surviving outcome.
func Survived(target string, result *ProbeResult) Outcome {
	return Outcome{Kind: OutcomeSurvived, Target: target, Result: result}
}

// Filtered builds a filtered outcome.
func Filtered(target string) Outcome {
	return Outcome{Kind: OutcomeFiltered, Target: target}
}

// Failed builds a failed outcome; result may be nil when nothing should be emitted.
func Failed(target string, result *ProbeResult, err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Target: target, Result: result, Err: err}
}

// Emitted returns the record a sink should receive, if any.
func (o Outcome) Emitted() (*ProbeResult, bool) {
	if o.Kind == OutcomeFiltered || o.Result == nil {
		return nil, false
	}
	return o.Result, true
}
