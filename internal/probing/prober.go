package probing

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/aleister1102/httpeek/internal/common"
	"github.com/aleister1102/httpeek/internal/httpclient"
	"github.com/aleister1102/httpeek/internal/models"
	"github.com/aleister1102/httpeek/internal/urlhandler"
)

// TargetNormalizer turns a raw input line into a target with its URL.
type TargetNormalizer interface {
	NormalizeTarget(ctx context.Context, raw string) urlhandler.Target
}

// Executor performs the HTTP exchange for one URL.
type Executor interface {
	Execute(ctx context.Context, target string, rc httpclient.RequestConfig) (*httpclient.Response, error)
}

// ResponseClassifier maps responses and failures to outcomes.
type ResponseClassifier interface {
	Classify(ctx context.Context, target string, resp *httpclient.Response) models.Outcome
	Failure(target string, err error) models.Outcome
}

// Prober runs the single-target pipeline: normalize, execute, classify.
type Prober struct {
	normalizer TargetNormalizer
	executor   Executor
	classifier ResponseClassifier
	request    httpclient.RequestConfig
	logger     zerolog.Logger
}

// NewProber wires the pipeline for one run. request is shared read-only.
func NewProber(normalizer TargetNormalizer, executor Executor, classifier ResponseClassifier, request httpclient.RequestConfig, logger zerolog.Logger) *Prober {
	return &Prober{
		normalizer: normalizer,
		executor:   executor,
		classifier: classifier,
		request:    request,
		logger:     logger.With().Str("component", "Prober").Logger(),
	}
}

// Probe always returns an outcome. Panics inside the pipeline become a failure
// row carrying the panic message. When ctx is cancelled the outcome is Failed
// with ctx.Err() and no result row.
func (p *Prober) Probe(ctx context.Context, raw string) (outcome models.Outcome) {
	target := urlhandler.Target{Original: raw, Normalized: raw}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("probe panicked: %v", r)
			p.logger.Error().Str("target", target.Original).Err(err).Str("stack", string(debug.Stack())).Msg("Recovered from panic")
			outcome = p.classifier.Failure(target.Normalized, err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return models.Failed(raw, nil, err)
	}

	target = p.normalizer.NormalizeTarget(ctx, raw)
	if target.Normalized == "" {
		return p.classifier.Failure(raw, common.NewValidationError("target", raw, "empty target"))
	}

	resp, err := p.executor.Execute(ctx, target.Normalized, p.request)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.Canceled) {
			if ctxErr == nil {
				ctxErr = context.Canceled
			}
			return models.Failed(target.Normalized, nil, ctxErr)
		}
		p.logger.Debug().Str("input", target.Original).Str("url", target.Normalized).Err(err).Msg("Probe failed")
		return p.classifier.Failure(target.Normalized, err)
	}

	return p.classifier.Classify(ctx, target.Normalized, resp)
}
