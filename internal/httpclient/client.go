package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"

	"github.com/aleister1102/httpeek/internal/common"
)

// Body buffers start at 32KB; buffers grown past 1MB are not pooled.
const (
	bodyBufferSize      = 32 * 1024
	maxPooledBufferSize = 1024 * 1024
)

// Response is the outcome of one executed probe request after redirects.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	FinalURL   string
	Chain      RedirectChain
	Hops       int
	Attempts   int
	Duration   time.Duration
}

// RedirectSummary renders the chain as "→ N • host".
func (r *Response) RedirectSummary() string {
	return r.Chain.Summary(r.Hops)
}

// HTTPClient executes probe requests over one shared transport.
type HTTPClient struct {
	client     *http.Client
	config     HTTPClientConfig
	logger     zerolog.Logger
	bufferPool *common.BufferPool
}

// NewHTTPClient creates a new HTTP client with the given transport configuration.
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	dialer := &net.Dialer{
		Timeout:   config.DialTimeout,
		KeepAlive: config.KeepAlive,
	}

	transport := &http.Transport{
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		DialContext:           dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify, //nolint:gosec // opt-in via --insecure
		},
	}

	if config.Proxy != nil {
		transport.Proxy = http.ProxyURL(config.Proxy)
		logger.Info().Str("proxy", config.Proxy.Redacted()).Msg("HTTP client configured with proxy")
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	client := &http.Client{
		Transport:     transport,
		CheckRedirect: checkRedirect,
	}

	logger.Debug().
		Bool("insecure_skip_verify", config.InsecureSkipVerify).
		Bool("http2_enabled", config.EnableHTTP2).
		Int("max_idle_conns", config.MaxIdleConns).
		Msg("HTTP client created")

	return &HTTPClient{
		client:     client,
		config:     config,
		logger:     logger.With().Str("component", "HTTPClient").Logger(),
		bufferPool: common.NewBufferPool(bodyBufferSize, maxPooledBufferSize),
	}, nil
}

// Execute sends one probe request for target using rc, following redirects with
// the configured strategy and retrying transport failures.
func (c *HTTPClient) Execute(ctx context.Context, target string, rc RequestConfig) (*Response, error) {
	start := time.Now()
	retry := NewRetryHandler(rc.Retries(), c.logger)

	resp, err := retry.Do(ctx, target, func(ctx context.Context, attempt int) (*Response, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, rc.Timeout())
		defer cancel()

		if rc.RedirectStrategy() == RedirectManual {
			return c.executeManual(attemptCtx, target, rc)
		}
		return c.executeNative(attemptCtx, target, rc)
	})
	if err != nil {
		return nil, err
	}

	resp.Duration = time.Since(start)
	if resp.Hops > 0 {
		c.logger.Debug().
			Str("url", target).
			Int("hops", resp.Hops).
			Strs("redirect_hosts", resp.Chain.Hosts()).
			Msg("Followed redirects")
	}
	return resp, nil
}

func (c *HTTPClient) executeNative(ctx context.Context, target string, rc RequestConfig) (*Response, error) {
	tracker := &redirectTracker{follow: rc.FollowRedirects(), max: rc.MaxRedirects()}
	ctx = withTracker(ctx, tracker)

	resp, err := c.roundTrip(ctx, rc.Method(), target, rc)
	if err != nil {
		return nil, err
	}
	resp.Chain = tracker.chain
	resp.Hops = tracker.hops
	return resp, nil
}

// executeManual issues non-redirecting requests and walks Location headers itself.
func (c *HTTPClient) executeManual(ctx context.Context, target string, rc RequestConfig) (*Response, error) {
	ctx = withTracker(ctx, &redirectTracker{follow: false})

	method := rc.Method()
	current := target
	resp, err := c.roundTrip(ctx, method, current, rc)
	if err != nil {
		return nil, err
	}
	if !rc.FollowRedirects() {
		return resp, nil
	}

	var chain RedirectChain
	hops := 0
	for hops < rc.MaxRedirects() && IsRedirectStatus(resp.StatusCode) {
		base, err := url.Parse(current)
		if err != nil {
			break
		}
		next, err := resolveLocation(base, resp.Header.Get("Location"))
		if err != nil {
			c.logger.Debug().Str("url", current).Err(err).Msg("Stopping redirect chase")
			break
		}

		if resp.StatusCode == http.StatusSeeOther {
			method = http.MethodGet
		}

		nextResp, err := c.roundTrip(ctx, method, next.String(), rc)
		if err != nil {
			return nil, err
		}

		hops++
		chain.Add(next.Hostname())
		current = next.String()
		resp = nextResp
	}

	resp.Chain = chain
	resp.Hops = hops
	return resp, nil
}

// roundTrip performs a single request and reads the decoded body.
func (c *HTTPClient) roundTrip(ctx context.Context, method, target string, rc RequestConfig) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, WrapError(err, "failed to create HTTP request")
	}

	req.Header = rc.Headers()
	if rc.RandomAgent() {
		req.Header.Set("User-Agent", RandomUserAgent())
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, NewNetworkError(target, "request failed", err)
	}
	defer httpResp.Body.Close()

	body, err := c.readBody(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError(target, "failed to read response body", err)
	}

	finalURL := target
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		finalURL = httpResp.Request.URL.String()
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       DecodeBody(body, httpResp.Header.Get("Content-Encoding")),
		FinalURL:   finalURL,
	}, nil
}

func (c *HTTPClient) readBody(body io.Reader) ([]byte, error) {
	buf := c.bufferPool.Get()
	defer c.bufferPool.Put(buf)

	reader := body
	if c.config.MaxBodySize > 0 {
		reader = io.LimitReader(body, c.config.MaxBodySize)
	}
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// FlattenHeaders lowercases header names and joins repeated values with ", ".
func FlattenHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for key, values := range header {
		out[strings.ToLower(key)] = strings.Join(values, ", ")
	}
	return out
}

// Close releases idle connections held by the transport.
func (c *HTTPClient) Close() {
	c.client.CloseIdleConnections()
}
