package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/httpeek/internal/models"
)

type fakeProber struct {
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
	outcome  func(raw string) models.Outcome
}

func (f *fakeProber) Probe(ctx context.Context, raw string) models.Outcome {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return models.Failed(raw, nil, ctx.Err())
	}

	if f.outcome != nil {
		return f.outcome(raw)
	}
	return models.Survived(raw, &models.ProbeResult{URL: raw, Status: models.StatusPtr(200)})
}

type recordingSink struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (r *recordingSink) Write(result *models.ProbeResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, result.URL)
	return r.err
}

type recordingRenderer struct {
	calls   int
	results []*models.ProbeResult
}

func (r *recordingRenderer) Render(results []*models.ProbeResult) error {
	r.calls++
	r.results = results
	return nil
}

type countingTracker struct {
	total       int
	recorded    int
	finished    bool
	interrupted bool
}

func (c *countingTracker) Begin(total int)           { c.total = total }
func (c *countingTracker) Record(models.OutcomeKind) { c.recorded++ }
func (c *countingTracker) Finish(interrupted bool) {
	c.finished = true
	c.interrupted = interrupted
}

func targets(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("host-%02d.test", i)
	}
	return out
}

func TestRun_EveryTargetOnceWithBoundedWorkers(t *testing.T) {
	prober := &fakeProber{delay: 5 * time.Millisecond}
	s := NewScheduler(prober, Options{Threads: 3}, zerolog.Nop())

	input := targets(20)
	summary, err := s.Run(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 20, summary.Total)
	assert.Equal(t, 20, summary.Completed())
	assert.Equal(t, 20, summary.Survived)
	assert.False(t, summary.Interrupted)
	assert.LessOrEqual(t, prober.peak.Load(), int32(3))

	got := make([]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		got = append(got, r.URL)
	}
	sort.Strings(got)
	assert.Equal(t, input, got)
}

func TestRun_ZeroTargets(t *testing.T) {
	prober := &fakeProber{}
	tracker := &countingTracker{}
	s := NewScheduler(prober, Options{Threads: 4, Progress: tracker}, zerolog.Nop())

	summary, err := s.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, summary.Results)
	assert.Zero(t, summary.Total)
	assert.Zero(t, prober.calls.Load())
	assert.False(t, tracker.finished)
}

func TestRun_OutcomeKindsCounted(t *testing.T) {
	prober := &fakeProber{outcome: func(raw string) models.Outcome {
		switch raw {
		case "host-00.test":
			return models.Filtered(raw)
		case "host-01.test":
			return models.Failed(raw, &models.ProbeResult{URL: raw, Title: "ERR: timeout"}, errors.New("timeout"))
		case "host-02.test":
			return models.Failed(raw, nil, errors.New("panic"))
		default:
			return models.Survived(raw, &models.ProbeResult{URL: raw})
		}
	}}
	tracker := &countingTracker{}
	s := NewScheduler(prober, Options{Threads: 2, Progress: tracker}, zerolog.Nop())

	summary, err := s.Run(context.Background(), targets(5))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Survived)
	assert.Equal(t, 1, summary.Filtered)
	assert.Equal(t, 2, summary.Failed)
	assert.Len(t, summary.Results, 3, "survivors plus the failure row")
	assert.Equal(t, 5, tracker.total)
	assert.Equal(t, 5, tracker.recorded)
	assert.True(t, tracker.finished)
	assert.False(t, tracker.interrupted)
}

func TestRun_PresentationPolicies(t *testing.T) {
	tests := []struct {
		name         string
		presentation Presentation
		liveRows     int
		renders      int
	}{
		{"silent", PresentationSilent, 0, 0},
		{"final", PresentationFinal, 0, 1},
		{"live", PresentationLive, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := &recordingSink{}
			final := &recordingRenderer{}
			export := &recordingSink{}
			s := NewScheduler(&fakeProber{}, Options{
				Threads:      2,
				Presentation: tt.presentation,
				Live:         live,
				Final:        final,
				Sinks:        []ResultSink{export},
			}, zerolog.Nop())

			summary, err := s.Run(context.Background(), targets(4))
			require.NoError(t, err)

			assert.Len(t, live.urls, tt.liveRows)
			assert.Equal(t, tt.renders, final.calls)
			assert.Len(t, export.urls, 4)
			if tt.renders == 1 {
				assert.Len(t, final.results, len(summary.Results))
			}
		})
	}
}

func TestRun_SinkErrorReportedOnce(t *testing.T) {
	broken := &recordingSink{err: errors.New("disk full")}
	healthy := &recordingSink{}
	s := NewScheduler(&fakeProber{}, Options{Threads: 2, Sinks: []ResultSink{broken, healthy}}, zerolog.Nop())

	summary, err := s.Run(context.Background(), targets(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, broken.urls, 1)
	assert.Len(t, healthy.urls, 3)
	assert.Len(t, summary.Results, 3)
}

func TestRun_CancellationKeepsPartialResults(t *testing.T) {
	var started atomic.Int32
	release := make(chan struct{})
	prober := &fakeProber{outcome: func(raw string) models.Outcome {
		return models.Survived(raw, &models.ProbeResult{URL: raw})
	}}
	blocking := proberFunc(func(ctx context.Context, raw string) models.Outcome {
		if started.Add(1) <= 2 {
			return prober.outcome(raw)
		}
		select {
		case <-release:
		case <-ctx.Done():
			return models.Failed(raw, nil, ctx.Err())
		}
		return prober.outcome(raw)
	})

	ctx, cancel := context.WithCancel(context.Background())
	tracker := &countingTracker{}
	s := NewScheduler(blocking, Options{Threads: 2, Progress: tracker}, zerolog.Nop())

	go func() {
		for started.Load() < 4 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	summary, err := s.Run(ctx, targets(50))
	close(release)

	require.NoError(t, err)
	assert.True(t, summary.Interrupted)
	assert.Len(t, summary.Results, 2)
	assert.Equal(t, 0, summary.Failed, "cancelled probes are not failures")
	assert.Less(t, int(started.Load()), 50)
	assert.True(t, tracker.interrupted)
}

func TestRun_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := &fakeProber{}
	summary, err := NewScheduler(prober, Options{Threads: 2}, zerolog.Nop()).Run(ctx, targets(3))
	require.NoError(t, err)
	assert.True(t, summary.Interrupted)
	assert.Empty(t, summary.Results)
	assert.Zero(t, prober.calls.Load())
}

func TestRun_RateLimit(t *testing.T) {
	prober := &fakeProber{}
	s := NewScheduler(prober, Options{Threads: 5, RateLimit: 20}, zerolog.Nop())

	start := time.Now()
	summary, err := s.Run(context.Background(), targets(25))
	require.NoError(t, err)

	assert.Len(t, summary.Results, 25)
	// 20 burst then 5 more at 20/s.
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler(&fakeProber{}, Options{}, zerolog.Nop())
	assert.Equal(t, 1, s.options.Threads)
	assert.Equal(t, PresentationSilent, s.options.Presentation)
}

func TestParsePresentation(t *testing.T) {
	assert.Equal(t, PresentationSilent, ParsePresentation("silent"))
	assert.Equal(t, PresentationFinal, ParsePresentation("final"))
	assert.Equal(t, PresentationLive, ParsePresentation("live"))
	assert.Equal(t, PresentationLive, ParsePresentation(""))
}

type proberFunc func(ctx context.Context, raw string) models.Outcome

func (f proberFunc) Probe(ctx context.Context, raw string) models.Outcome { return f(ctx, raw) }
