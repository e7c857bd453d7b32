package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner shows an activity indicator for the duration of one scope.
// Every Acquire must be paired with a Release; Release is safe to call more than once.
type Spinner interface {
	Acquire(message string)
	Release()
}

// Scoped acquires s and returns the matching release, meant for defer.
func Scoped(s Spinner, message string) func() {
	if s == nil {
		s = NoopSpinner{}
	}
	s.Acquire(message)
	return s.Release
}

// NoopSpinner satisfies Spinner without drawing anything.
type NoopSpinner struct{}

func (NoopSpinner) Acquire(string) {}
func (NoopSpinner) Release()       {}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// TerminalSpinner redraws a single status line on out until released.
type TerminalSpinner struct {
	out      io.Writer
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewTerminalSpinner draws on out, usually stderr.
func NewTerminalSpinner(out io.Writer) *TerminalSpinner {
	return &TerminalSpinner{out: out, interval: 100 * time.Millisecond}
}

// Acquire starts drawing. Acquiring an active spinner does nothing.
func (s *TerminalSpinner) Acquire(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(message, s.stop, s.done)
}

// Release stops drawing and clears the line.
func (s *TerminalSpinner) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}

	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
}

func (s *TerminalSpinner) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *TerminalSpinner) run(message string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.out, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], message)
		select {
		case <-stop:
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}
