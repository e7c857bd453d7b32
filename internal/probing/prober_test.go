package probing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/httpeek/internal/classifier"
	"github.com/aleister1102/httpeek/internal/httpclient"
	"github.com/aleister1102/httpeek/internal/models"
	"github.com/aleister1102/httpeek/internal/urlhandler"
)

type identityNormalizer struct{}

func (identityNormalizer) NormalizeTarget(_ context.Context, raw string) urlhandler.Target {
	return urlhandler.Target{Original: raw, Normalized: strings.TrimSpace(raw)}
}

type panicExecutor struct{}

func (panicExecutor) Execute(context.Context, string, httpclient.RequestConfig) (*httpclient.Response, error) {
	panic("boom")
}

type errExecutor struct{ err error }

func (e errExecutor) Execute(context.Context, string, httpclient.RequestConfig) (*httpclient.Response, error) {
	return nil, e.err
}

type stubResolver struct{}

func (stubResolver) Resolve(context.Context, string) string { return "127.0.0.1" }

type noCDN struct{}

func (noCDN) Detect(context.Context, string, http.Header) bool { return false }

func newClassifier(t *testing.T, opts classifier.Options) *classifier.Classifier {
	t.Helper()
	fs, err := classifier.NewFilterSet(opts)
	require.NoError(t, err)
	return classifier.NewClassifier(fs, opts, "GET", classifier.Dependencies{
		Resolver: stubResolver{},
		Detector: noCDN{},
	}, zerolog.Nop())
}

func newRequestConfig(t *testing.T, retries int) httpclient.RequestConfig {
	t.Helper()
	rc, err := httpclient.NewRequestConfig(httpclient.RequestOptions{Timeout: 2 * time.Second, Retries: retries})
	require.NoError(t, err)
	return rc
}

func TestProber_Probe_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><title>Welcome</title></html>"))
	}))
	defer server.Close()

	client, err := httpclient.NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)
	defer client.Close()

	p := NewProber(urlhandler.NewNormalizer(nil, zerolog.Nop()), client, newClassifier(t, classifier.Options{}), newRequestConfig(t, 0), zerolog.Nop())
	outcome := p.Probe(context.Background(), server.URL)

	require.Equal(t, models.OutcomeSurvived, outcome.Kind)
	assert.Equal(t, server.URL+"/", outcome.Result.URL)
	assert.Equal(t, "Welcome", outcome.Result.Title)
	assert.Equal(t, 200, *outcome.Result.Status)
}

func TestProber_Probe_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := server.URL + "/"
	server.Close()

	client, err := httpclient.NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	p := NewProber(identityNormalizer{}, client, newClassifier(t, classifier.Options{}), newRequestConfig(t, 3), zerolog.Nop())
	outcome := p.Probe(context.Background(), dead)

	require.Equal(t, models.OutcomeFailed, outcome.Kind)
	assert.Equal(t, 4, outcome.Attempts)
	require.NotNil(t, outcome.Result)
	assert.Nil(t, outcome.Result.Status)
	assert.Equal(t, "-", outcome.Result.IP)

	onlyActive := NewProber(identityNormalizer{}, client, newClassifier(t, classifier.Options{OnlyActive: true}), newRequestConfig(t, 0), zerolog.Nop())
	assert.Equal(t, models.OutcomeFiltered, onlyActive.Probe(context.Background(), dead).Kind)
}

func TestProber_Probe_RecoversPanic(t *testing.T) {
	p := NewProber(identityNormalizer{}, panicExecutor{}, newClassifier(t, classifier.Options{}), newRequestConfig(t, 0), zerolog.Nop())
	outcome := p.Probe(context.Background(), "http://example.test/")

	assert.Equal(t, models.OutcomeFailed, outcome.Kind)
	assert.ErrorContains(t, outcome.Err, "boom")

	row, emitted := outcome.Emitted()
	require.True(t, emitted)
	assert.Equal(t, "http://example.test/", row.URL)
	assert.Nil(t, row.Status)
	assert.Equal(t, "-", row.IP)
	assert.Equal(t, "ERR: probe panicked: boom", row.Title)
}

func TestProber_Probe_PanicFilteredWhenOnlyActive(t *testing.T) {
	p := NewProber(identityNormalizer{}, panicExecutor{}, newClassifier(t, classifier.Options{OnlyActive: true}), newRequestConfig(t, 0), zerolog.Nop())
	outcome := p.Probe(context.Background(), "http://example.test/")

	assert.Equal(t, models.OutcomeFiltered, outcome.Kind)
}

func TestProber_Probe_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProber(identityNormalizer{}, errExecutor{err: errors.New("unused")}, newClassifier(t, classifier.Options{}), newRequestConfig(t, 0), zerolog.Nop())
	outcome := p.Probe(ctx, "http://example.test/")

	assert.Equal(t, models.OutcomeFailed, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	_, emitted := outcome.Emitted()
	assert.False(t, emitted)
}

func TestProber_Probe_BlankTarget(t *testing.T) {
	p := NewProber(identityNormalizer{}, errExecutor{}, newClassifier(t, classifier.Options{}), newRequestConfig(t, 0), zerolog.Nop())
	outcome := p.Probe(context.Background(), "")
	assert.Equal(t, models.OutcomeFailed, outcome.Kind)
}
