package urlhandler

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/idna"
)

// DefaultProbeTimeout bounds each TCP connect used to pick a scheme.
const DefaultProbeTimeout = 2 * time.Second

// PortProber reports whether host:port accepts TCP connections.
type PortProber interface {
	Reachable(ctx context.Context, host, port string) bool
}

// TCPProber dials with a net.Dialer.
type TCPProber struct {
	Timeout time.Duration
}

// Reachable opens and immediately closes a TCP connection.
func (p TCPProber) Reachable(ctx context.Context, host, port string) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Normalizer turns raw input lines into absolute http(s) URLs.
type Normalizer struct {
	prober PortProber
	logger zerolog.Logger
}

// NewNormalizer creates a Normalizer. A nil prober uses TCPProber with DefaultProbeTimeout.
func NewNormalizer(prober PortProber, logger zerolog.Logger) *Normalizer {
	if prober == nil {
		prober = TCPProber{Timeout: DefaultProbeTimeout}
	}
	return &Normalizer{
		prober: prober,
		logger: logger.With().Str("component", "Normalizer").Logger(),
	}
}

// Normalize never fails. Input with a scheme only gains a "/" when its path is
// empty. Input without one gets https when port 443 answers, else http.
// Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(ctx context.Context, raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if HasHTTPScheme(s) {
		return ensureRootPath(s)
	}

	scheme := n.pickScheme(ctx, hostOf(s))
	return ensureRootPath(scheme + "://" + s)
}

// NormalizeTarget pairs the raw input with its normalized URL.
func (n *Normalizer) NormalizeTarget(ctx context.Context, raw string) Target {
	return Target{Original: raw, Normalized: n.Normalize(ctx, raw)}
}

func (n *Normalizer) pickScheme(ctx context.Context, host string) string {
	if host == "" {
		return "http"
	}
	dialHost := host
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		dialHost = ascii
	}

	if n.prober.Reachable(ctx, dialHost, "443") {
		return "https"
	}
	if n.prober.Reachable(ctx, dialHost, "80") {
		return "http"
	}
	n.logger.Debug().Str("host", host).Msg("Neither 443 nor 80 answered, defaulting to http")
	return "http"
}

// HasHTTPScheme reports whether s starts with http:// or https://, ignoring case.
func HasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ensureRootPath inserts "/" when the URL has an empty path. Other paths are kept verbatim.
func ensureRootPath(u string) string {
	schemeEnd := strings.Index(u, "://")
	if schemeEnd < 0 {
		return u
	}
	rest := u[schemeEnd+3:]

	authorityEnd := strings.IndexAny(rest, "/?#")
	if authorityEnd < 0 {
		return u + "/"
	}
	if rest[authorityEnd] == '/' {
		return u
	}
	cut := schemeEnd + 3 + authorityEnd
	return u[:cut] + "/" + u[cut:]
}

// hostOf extracts the hostname from scheme-less input such as "user@host:8080/path".
func hostOf(s string) string {
	authority := s
	if i := strings.IndexAny(authority, "/?#"); i >= 0 {
		authority = authority[:i]
	}
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		authority = authority[i+1:]
	}
	if host, _, err := net.SplitHostPort(authority); err == nil {
		return host
	}
	return strings.Trim(authority, "[]")
}
