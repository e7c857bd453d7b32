package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/httpeek/internal/classifier"
	"github.com/aleister1102/httpeek/internal/config"
	"github.com/aleister1102/httpeek/internal/httpclient"
	"github.com/aleister1102/httpeek/internal/models"
	"github.com/aleister1102/httpeek/internal/probing"
	"github.com/aleister1102/httpeek/internal/progress"
	"github.com/aleister1102/httpeek/internal/reporter"
	"github.com/aleister1102/httpeek/internal/rslimiter"
	"github.com/aleister1102/httpeek/internal/scheduler"
	"github.com/aleister1102/httpeek/internal/urlhandler"
)

// terminal describes where results and UI go.
type terminal struct {
	stdout io.Writer
	stderr io.Writer
	// interactive is true when stderr is a terminal.
	interactive bool
}

// application is the wired probing pipeline for one run.
type application struct {
	client    *httpclient.HTTPClient
	scheduler *scheduler.Scheduler
	display   *progress.ProgressDisplayManager
	guard     *rslimiter.ResourceLimiter
	appender  *reporter.FileAppender
	logger    zerolog.Logger
}

func newApplication(cfg *config.GlobalConfig, targetCount int, term terminal, logger zerolog.Logger) (*application, error) {
	request, err := cfg.ProbeConfig.ToRequestConfig()
	if err != nil {
		return nil, err
	}

	client, err := httpclient.NewHTTPClientBuilder(logger).
		WithInsecureSkipVerify(cfg.ProbeConfig.InsecureSkipVerify).
		WithProxy(request.Proxy()).
		WithMaxBodySize(cfg.ProbeConfig.MaxBodySize).
		WithConnectionPooling(max(100, cfg.SchedulerConfig.Threads), 10, 0).
		Build()
	if err != nil {
		return nil, err
	}

	options := cfg.FilterConfig.ToClassifierOptions(request.Timeout())
	filters, err := classifier.NewFilterSet(options)
	if err != nil {
		client.Close()
		return nil, err
	}
	responseClassifier := classifier.NewClassifier(filters, options, request.Method(), classifier.Dependencies{}, logger)

	prober := probing.NewProber(
		urlhandler.NewNormalizer(nil, logger),
		client,
		responseClassifier,
		request,
		logger,
	)

	app := &application{client: client, logger: logger}
	app.scheduler = scheduler.NewScheduler(prober, app.schedulerOptions(cfg, targetCount, term), logger)

	if cfg.ResourceLimiterConfig.Enabled {
		app.guard = rslimiter.NewResourceLimiter(cfg.ResourceLimiterConfig.ToLimiterConfig(), logger)
	}

	return app, nil
}

func (a *application) schedulerOptions(cfg *config.GlobalConfig, targetCount int, term terminal) scheduler.Options {
	output := cfg.OutputConfig
	options := scheduler.Options{
		Threads:      cfg.SchedulerConfig.Threads,
		RateLimit:    cfg.SchedulerConfig.RateLimit,
		Presentation: scheduler.ParsePresentation(output.EffectivePresentation()),
		Final:        reporter.NewTableRenderer(term.stdout, output.NoColor),
		Spinner:      progress.NoopSpinner{},
	}

	var live scheduler.ResultSink = reporter.NewLiveWriter(term.stdout, output.NoColor)

	switch output.Format {
	case config.FormatJSON:
		options.Sinks = append(options.Sinks, reporter.NewJSONWriter(term.stdout))
	case config.FormatCSV:
		options.Sinks = append(options.Sinks, reporter.NewCSVWriter(term.stdout))
	}
	if output.OutputFile != "" {
		a.appender = reporter.NewFileAppender(output.OutputFile, a.logger)
		options.Sinks = append(options.Sinks, a.appender)
	}

	if output.IsExport() {
		return options
	}

	if targetCount == 1 {
		if options.Presentation == scheduler.PresentationLive && term.interactive {
			spinner := progress.NewTerminalSpinner(term.stderr)
			options.Spinner = spinner
			live = releasingSink{spinner: spinner, next: live}
		}
	} else if output.ShowProgress {
		a.display = progress.NewProgressDisplayManager(a.logger, &progress.ProgressDisplayConfig{
			DisplayInterval:   cfg.SchedulerConfig.ProgressInterval(),
			EnableProgress:    true,
			ShowETAEstimation: true,
		})
		options.Progress = a.display
	}

	options.Live = live
	return options
}

// Run probes targets. cancel is called when the resource guard trips.
func (a *application) Run(ctx context.Context, cancel context.CancelFunc, targets []string) (scheduler.Summary, error) {
	if a.guard != nil {
		a.guard.SetShutdownCallback(func(reason string) {
			a.logger.Warn().Str("reason", reason).Msg("Stopping batch: resource limit exceeded")
			cancel()
		})
		a.guard.Start(ctx)
		defer a.guard.Stop()
	}

	if a.display != nil {
		a.display.Start()
		defer a.display.Stop()
	}

	return a.scheduler.Run(ctx, targets)
}

// Close releases network and file resources.
func (a *application) Close() {
	a.client.Close()
	if a.appender != nil {
		if err := a.appender.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close output file")
		}
	}
}

// releasingSink stops the spinner before the first row is printed.
type releasingSink struct {
	spinner progress.Spinner
	next    scheduler.ResultSink
}

func (s releasingSink) Write(result *models.ProbeResult) error {
	s.spinner.Release()
	return s.next.Write(result)
}

func summaryLine(summary scheduler.Summary) string {
	return fmt.Sprintf("%d targets: %d shown, %d filtered, %d failed in %s",
		summary.Total, summary.Survived, summary.Filtered, summary.Failed, summary.Duration.Round(time.Millisecond))
}
