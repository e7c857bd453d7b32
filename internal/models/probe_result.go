package models

import (
	"fmt"
	"time"
)

// DNSFailIP is reported as the IP of a result whose hostname could not be resolved.
const DNSFailIP = "DNS_FAIL"

// NoTitle is the placeholder title used when a page carries no <title>.
const NoTitle = "Title not found"

// ProbeResult represents the result of a single probe, serving as the record every sink consumes.
type ProbeResult struct {
	URL      string            `json:"url"`
	IP       string            `json:"ip"`
	Status   *int              `json:"status"` // nil when no HTTP response was obtained
	Title    string            `json:"title"`  // decorated title (CDN marker, placeholder)
	Length   int               `json:"length"` // decoded body length in bytes
	Headers  map[string]string `json:"headers"`
	Redirect string            `json:"redirect"`
	TLS      *TLSInfo          `json:"tls,omitempty"`
	Error    string            `json:"error,omitempty"`

	// Undecorated <title>, empty when the page has none. Used by title filters and plain sinks.
	RawTitle string `json:"-"`

	Method    string        `json:"-"`
	Timestamp time.Time     `json:"-"`
	Duration  time.Duration `json:"-"`
}

// TLSInfo holds the peer certificate summary, or the reason it could not be read.
type TLSInfo struct {
	Subject    map[string]string `json:"subject,omitempty"`
	Issuer     map[string]string `json:"issuer,omitempty"`
	NotAfter   string            `json:"not_after,omitempty"`
	ExpiresUTC string            `json:"expires_utc,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// StatusCode returns the HTTP status and whether one was obtained.
func (pr *ProbeResult) StatusCode() (int, bool) {
	if pr == nil || pr.Status == nil {
		return 0, false
	}
	return *pr.Status, true
}

// StatusText renders the status for display, "ERR" when absent.
func (pr *ProbeResult) StatusText() string {
	if code, ok := pr.StatusCode(); ok {
		return fmt.Sprintf("%d", code)
	}
	return "ERR"
}

// StatusBucket returns the hundreds digit of the status, or 9 when no status was obtained.
func (pr *ProbeResult) StatusBucket() int {
	if code, ok := pr.StatusCode(); ok {
		return code / 100
	}
	return 9
}

// PlainTitle returns the raw title or the placeholder, without CDN decoration.
func (pr *ProbeResult) PlainTitle() string {
	if pr.RawTitle != "" {
		return pr.RawTitle
	}
	return NoTitle
}

// IsActiveStatus reports whether code is in [200,600).
func IsActiveStatus(code int) bool {
	return code >= 200 && code < 600
}

// StatusPtr is a small helper for building results.
func StatusPtr(code int) *int {
	return &code
}
