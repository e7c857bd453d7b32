package classifier

import (
	"context"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/httpeek/internal/httpclient"
	"github.com/aleister1102/httpeek/internal/models"
)

// Options configures the filter set and the optional TLS grab.
type Options struct {
	OnlyActive    bool
	StatusFilter  string
	ExcludeStatus string
	ContentLength string
	ExcludeLength string
	TitleMatch    string
	BodyMatch     string
	MatchMode     MatchMode
	TLSInfo       bool
	TLSTimeout    time.Duration
}

// FilterSet is the parsed, immutable form of the filter options.
type FilterSet struct {
	OnlyActive    bool
	Status        StatusSet
	ExcludeStatus StatusSet
	Length        *LengthRange
	ExcludeLength LengthExclusion
	Title         *Matcher
	Body          *Matcher
}

// NewFilterSet parses opts. Only a malformed content-length range is an error.
func NewFilterSet(opts Options) (*FilterSet, error) {
	length, err := ParseLengthRange(opts.ContentLength)
	if err != nil {
		return nil, err
	}
	return &FilterSet{
		OnlyActive:    opts.OnlyActive,
		Status:        ParseStatusFilter(opts.StatusFilter),
		ExcludeStatus: ParseStatusExclusion(opts.ExcludeStatus),
		Length:        length,
		ExcludeLength: ParseLengthExclusion(opts.ExcludeLength),
		Title:         NewMatcher(opts.TitleMatch, opts.MatchMode),
		Body:          NewMatcher(opts.BodyMatch, opts.MatchMode),
	}, nil
}

// Keep applies the filters in order and reports whether the response survives.
func (f *FilterSet) Keep(status, length int, rawTitle string, body []byte) bool {
	if f.OnlyActive && !models.IsActiveStatus(status) {
		return false
	}
	if !f.Status.Allows(status) {
		return false
	}
	if f.ExcludeStatus.Contains(status) {
		return false
	}
	if f.Length != nil && !f.Length.Contains(length) {
		return false
	}
	if f.ExcludeLength.Excludes(length) {
		return false
	}
	if !f.Title.Match(rawTitle) {
		return false
	}
	return f.Body.Match(string(body))
}

// Dependencies are the network-facing collaborators of a Classifier.
// Nil fields get system defaults.
type Dependencies struct {
	Resolver IPResolver
	Detector CDNDetector
	Certs    CertGrabber
}

// Classifier turns executor responses into outcomes.
type Classifier struct {
	filters  *FilterSet
	resolver IPResolver
	detector CDNDetector
	certs    CertGrabber
	tlsInfo  bool
	method   string
	logger   zerolog.Logger
}

// NewClassifier builds a classifier for one run.
func NewClassifier(filters *FilterSet, opts Options, method string, deps Dependencies, logger zerolog.Logger) *Classifier {
	if deps.Resolver == nil {
		deps.Resolver = NewSystemResolver()
	}
	if deps.Detector == nil {
		deps.Detector = NewSystemCloudflareDetector(logger)
	}
	if deps.Certs == nil {
		deps.Certs = &TLSGrabber{Timeout: opts.TLSTimeout}
	}
	logger = logger.With().Str("component", "Classifier").Logger()
	if opts.MatchMode != MatchSubstring {
		warnSubstringFallback(logger, "title_match", filters.Title)
		warnSubstringFallback(logger, "body_match", filters.Body)
	}
	return &Classifier{
		filters:  filters,
		resolver: deps.Resolver,
		detector: deps.Detector,
		certs:    deps.Certs,
		tlsInfo:  opts.TLSInfo,
		method:   method,
		logger:   logger,
	}
}

func warnSubstringFallback(logger zerolog.Logger, field string, m *Matcher) {
	if m != nil && !m.IsRegex() {
		logger.Warn().Str("filter", field).Str("pattern", m.pattern).Msg("Pattern is not a valid regex, matching it as a substring")
	}
}

// Classify evaluates resp for target. Filtered responses skip DNS and TLS work.
// A context cancelled during enrichment yields Failed with ctx.Err() and no row.
func (c *Classifier) Classify(ctx context.Context, target string, resp *httpclient.Response) models.Outcome {
	if resp == nil {
		return c.Failure(target, httpclient.NewNetworkError(target, "empty response", nil))
	}

	rawTitle := ExtractTitle(resp.Body)
	length := len(resp.Body)

	if !c.filters.Keep(resp.StatusCode, length, rawTitle, resp.Body) {
		c.logger.Debug().Str("url", target).Int("status", resp.StatusCode).Int("length", length).Msg("Response filtered")
		outcome := models.Filtered(target)
		outcome.Attempts = resp.Attempts
		return outcome
	}

	host, scheme := hostAndScheme(target)
	cdn := c.detector.Detect(ctx, host, resp.Header)

	result := &models.ProbeResult{
		URL:       target,
		IP:        c.resolver.Resolve(ctx, host),
		Status:    models.StatusPtr(resp.StatusCode),
		Title:     DecorateTitle(rawTitle, cdn),
		Length:    length,
		Headers:   httpclient.FlattenHeaders(resp.Header),
		Redirect:  resp.RedirectSummary(),
		RawTitle:  rawTitle,
		Method:    c.method,
		Timestamp: time.Now(),
		Duration:  resp.Duration,
	}

	if c.tlsInfo && scheme == "https" && host != "" {
		result.TLS = c.certs.Grab(ctx, host, "443")
	}

	// Lookups cut short by cancellation leave DNS_FAIL and missing CDN markers behind.
	if err := ctx.Err(); err != nil {
		return models.Failed(target, nil, err)
	}

	outcome := models.Survived(target, result)
	outcome.Attempts = resp.Attempts
	return outcome
}

// Failure builds the outcome for a probe that got no HTTP response.
func (c *Classifier) Failure(target string, err error) models.Outcome {
	if c.filters.OnlyActive {
		return models.Filtered(target)
	}

	result := &models.ProbeResult{
		URL:       target,
		IP:        "-",
		Title:     "ERR: " + httpclient.ShortReason(err),
		Length:    0,
		Headers:   map[string]string{},
		Method:    c.method,
		Timestamp: time.Now(),
	}
	if err != nil {
		result.Error = err.Error()
	}

	outcome := models.Failed(target, result, err)
	outcome.Attempts = httpclient.AttemptsOf(err)
	return outcome
}

func hostAndScheme(target string) (string, string) {
	parsed, err := url.Parse(target)
	if err != nil {
		return "", ""
	}
	return parsed.Hostname(), parsed.Scheme
}
