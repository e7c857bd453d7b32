package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/aleister1102/httpeek/internal/common"
	"github.com/aleister1102/httpeek/internal/models"
	"github.com/aleister1102/httpeek/internal/progress"
)

// TargetProber runs the whole pipeline for one raw target.
type TargetProber interface {
	Probe(ctx context.Context, raw string) models.Outcome
}

// Scheduler probes a batch of targets on a bounded worker pool.
type Scheduler struct {
	prober  TargetProber
	options Options
	logger  zerolog.Logger
}

// NewScheduler creates a scheduler. Threads below one are raised to one.
func NewScheduler(prober TargetProber, options Options, logger zerolog.Logger) *Scheduler {
	if options.Threads < 1 {
		options.Threads = 1
	}
	if options.Presentation == "" {
		options.Presentation = PresentationSilent
	}
	return &Scheduler{
		prober:  prober,
		options: options,
		logger:  logger.With().Str("component", "Scheduler").Logger(),
	}
}

// Run probes every target and returns the aggregated summary.
// Cancelling ctx stops submission, cancels in-flight probes and returns the
// partial summary with Interrupted set; cancellation is not reported as an error.
// The returned error is the first sink failure, if any.
func (s *Scheduler) Run(ctx context.Context, targets []string) (Summary, error) {
	start := time.Now()
	summary := Summary{Total: len(targets)}
	if len(targets) == 0 {
		return summary, nil
	}

	defer progress.Scoped(s.options.Spinner, fmt.Sprintf("Probing %d targets", len(targets)))()

	if s.options.Progress != nil {
		s.options.Progress.Begin(len(targets))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan models.Outcome, s.options.Threads)
	aggregated := make(chan aggregation, 1)
	go func() {
		aggregated <- s.aggregate(outcomes, &summary)
	}()

	s.dispatch(runCtx, targets, outcomes)
	close(outcomes)
	agg := <-aggregated

	summary.Interrupted = ctx.Err() != nil
	summary.Duration = time.Since(start)

	if s.options.Progress != nil {
		s.options.Progress.Finish(summary.Interrupted)
	}

	sinkErr := agg.err
	if s.options.Presentation == PresentationFinal && s.options.Final != nil {
		if err := s.options.Final.Render(summary.Results); err != nil && sinkErr == nil {
			sinkErr = common.WrapError(err, "failed to render results")
		}
	}

	s.logger.Debug().
		Int("total", summary.Total).
		Int("survived", summary.Survived).
		Int("filtered", summary.Filtered).
		Int("failed", summary.Failed).
		Bool("interrupted", summary.Interrupted).
		Dur("duration", summary.Duration).
		Msg("Batch finished")

	return summary, sinkErr
}

// dispatch submits targets to the pool until all are done or ctx is cancelled.
func (s *Scheduler) dispatch(ctx context.Context, targets []string, outcomes chan<- models.Outcome) {
	var limiter *rate.Limiter
	if s.options.RateLimit > 0 {
		burst := int(s.options.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(s.options.RateLimit), burst)
	}

	group := new(errgroup.Group)
	group.SetLimit(s.options.Threads)

	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}

		target := target
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcome := s.prober.Probe(ctx, target)
			if isCancellation(ctx, outcome) {
				return nil
			}
			outcomes <- outcome
			return nil
		})
	}

	_ = group.Wait()
}

type aggregation struct {
	err error
}

// aggregate is the only reader of outcomes and the only writer of summary and sinks.
func (s *Scheduler) aggregate(outcomes <-chan models.Outcome, summary *Summary) aggregation {
	var agg aggregation
	failedSinks := make([]bool, len(s.options.Sinks))
	liveFailed := false

	for outcome := range outcomes {
		summary.record(outcome)
		if s.options.Progress != nil {
			s.options.Progress.Record(outcome.Kind)
		}

		result, ok := outcome.Emitted()
		if !ok {
			continue
		}

		if s.options.Presentation == PresentationLive && s.options.Live != nil && !liveFailed {
			if err := s.options.Live.Write(result); err != nil {
				liveFailed = true
				agg.keep(err)
				s.logger.Error().Err(err).Msg("Failed to write live row")
			}
		}
		for i, sink := range s.options.Sinks {
			if failedSinks[i] {
				continue
			}
			if err := sink.Write(result); err != nil {
				failedSinks[i] = true
				agg.keep(err)
				s.logger.Error().Err(err).Int("sink", i).Msg("Failed to write result, disabling sink")
			}
		}
	}

	return agg
}

func (a *aggregation) keep(err error) {
	if a.err == nil {
		a.err = common.WrapError(err, "failed to write result")
	}
}

// isCancellation reports whether outcome is a probe cut short by the batch being cancelled.
func isCancellation(ctx context.Context, outcome models.Outcome) bool {
	if outcome.Kind != models.OutcomeFailed || ctx.Err() == nil {
		return false
	}
	return outcome.Err == nil || errors.Is(outcome.Err, context.Canceled) || errors.Is(outcome.Err, context.DeadlineExceeded)
}
