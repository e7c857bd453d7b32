package urlhandler

// Target is one input line and the URL it normalizes to.
type Target struct {
	Original   string
	Normalized string
}
