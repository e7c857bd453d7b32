package httpclient

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MaxRedirectHops is the hard cap on redirects followed for one request.
const MaxRedirectHops = 10

// RedirectStrategy selects how redirects are followed.
type RedirectStrategy int

const (
	// RedirectNative lets net/http follow redirects through CheckRedirect.
	RedirectNative RedirectStrategy = iota
	// RedirectManual issues non-redirecting requests and chases Location headers itself.
	RedirectManual
)

func (s RedirectStrategy) String() string {
	if s == RedirectManual {
		return "manual"
	}
	return "native"
}

// HTTPClientConfig holds transport-level settings for the shared client.
type HTTPClientConfig struct {
	InsecureSkipVerify    bool
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ExpectContinueTimeout time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	EnableHTTP2           bool
	Proxy                 *url.URL
	// MaxBodySize caps how many bytes are read from a response body, 0 means unlimited.
	MaxBodySize int64
}

// DefaultHTTPClientConfig returns the default transport configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		InsecureSkipVerify:    false,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       0,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		EnableHTTP2:           true,
	}
}

// RequestOptions are the caller-facing knobs used to build a RequestConfig.
type RequestOptions struct {
	Method           string
	Headers          map[string]string
	Timeout          time.Duration
	Retries          int
	Proxy            string
	FollowRedirects  bool
	MaxRedirects     int
	RandomAgent      bool
	RedirectStrategy RedirectStrategy
}

// RequestConfig is the per-run request configuration. It is built once by
// NewRequestConfig and only exposes read accessors, so it can be shared by
// every worker without synchronization.
type RequestConfig struct {
	method          string
	headers         http.Header
	timeout         time.Duration
	retries         int
	proxy           *url.URL
	followRedirects bool
	maxRedirects    int
	randomAgent     bool
	strategy        RedirectStrategy
}

// NewRequestConfig validates opts and returns an immutable RequestConfig.
// Empty headers fall back to DefaultHeaders.
func NewRequestConfig(opts RequestOptions) (RequestConfig, error) {
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet && method != http.MethodHead {
		return RequestConfig{}, NewValidationError("method", opts.Method, "only GET and HEAD are supported")
	}

	if opts.Timeout <= 0 {
		return RequestConfig{}, NewValidationError("timeout", opts.Timeout, "timeout must be positive")
	}
	if opts.Retries < 0 {
		return RequestConfig{}, NewValidationError("retries", opts.Retries, "retries must be non-negative")
	}

	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 || maxRedirects > MaxRedirectHops {
		maxRedirects = MaxRedirectHops
	}

	var proxyURL *url.URL
	if opts.Proxy != "" {
		parsed, err := ParseProxy(opts.Proxy)
		if err != nil {
			return RequestConfig{}, err
		}
		proxyURL = parsed
	}

	headers := make(http.Header)
	source := opts.Headers
	if len(source) == 0 {
		source = DefaultHeaders()
	}
	for key, value := range source {
		headers.Set(key, value)
	}

	return RequestConfig{
		method:          method,
		headers:         headers,
		timeout:         opts.Timeout,
		retries:         opts.Retries,
		proxy:           proxyURL,
		followRedirects: opts.FollowRedirects,
		maxRedirects:    maxRedirects,
		randomAgent:     opts.RandomAgent,
		strategy:        opts.RedirectStrategy,
	}, nil
}

// ParseProxy accepts http, https and socks5 proxy URLs.
func ParseProxy(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, WrapError(err, "failed to parse proxy URL")
	}
	switch parsed.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, NewValidationError("proxy", raw, "proxy scheme must be http, https or socks5")
	}
	if parsed.Host == "" {
		return nil, NewValidationError("proxy", raw, "proxy URL lacks a host")
	}
	return parsed, nil
}

func (rc RequestConfig) Method() string                     { return rc.method }
func (rc RequestConfig) Timeout() time.Duration             { return rc.timeout }
func (rc RequestConfig) Retries() int                       { return rc.retries }
func (rc RequestConfig) FollowRedirects() bool              { return rc.followRedirects }
func (rc RequestConfig) MaxRedirects() int                  { return rc.maxRedirects }
func (rc RequestConfig) RandomAgent() bool                  { return rc.randomAgent }
func (rc RequestConfig) RedirectStrategy() RedirectStrategy { return rc.strategy }

// Headers returns a copy of the configured request headers.
func (rc RequestConfig) Headers() http.Header {
	return rc.headers.Clone()
}

// Proxy returns the proxy URL, or nil when requests go direct.
func (rc RequestConfig) Proxy() *url.URL {
	if rc.proxy == nil {
		return nil
	}
	copied := *rc.proxy
	return &copied
}
