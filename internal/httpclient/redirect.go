package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// RedirectChain is the ordered list of distinct hosts visited while redirecting.
// Consecutive repeats collapse into one entry.
type RedirectChain struct {
	hosts []string
}

// Add appends host unless it equals the most recent entry.
func (c *RedirectChain) Add(host string) {
	if host == "" {
		return
	}
	if n := len(c.hosts); n > 0 && c.hosts[n-1] == host {
		return
	}
	c.hosts = append(c.hosts, host)
}

// Hosts returns a copy of the visited hosts, most recent last.
func (c *RedirectChain) Hosts() []string {
	return append([]string(nil), c.hosts...)
}

// Last returns the most recent host or "".
func (c *RedirectChain) Last() string {
	if len(c.hosts) == 0 {
		return ""
	}
	return c.hosts[len(c.hosts)-1]
}

// Summary renders "→ N • host" for hops > 0 and "" otherwise.
func (c *RedirectChain) Summary(hops int) string {
	if hops <= 0 || len(c.hosts) == 0 {
		return ""
	}
	return fmt.Sprintf("→ %d • %s", hops, c.Last())
}

// IsRedirectStatus reports whether code is one of the followed 3xx codes.
func IsRedirectStatus(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// redirectTracker carries per-request redirect state through the request context
// so a single http.Client can serve every worker.
type redirectTracker struct {
	follow bool
	max    int
	hops   int
	chain  RedirectChain
}

type trackerKey struct{}

func withTracker(ctx context.Context, tracker *redirectTracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, tracker)
}

func trackerFrom(ctx context.Context) *redirectTracker {
	tracker, _ := ctx.Value(trackerKey{}).(*redirectTracker)
	return tracker
}

// checkRedirect is installed as http.Client.CheckRedirect.
func checkRedirect(req *http.Request, via []*http.Request) error {
	tracker := trackerFrom(req.Context())
	if tracker == nil || !tracker.follow {
		return http.ErrUseLastResponse
	}
	if len(via) > tracker.max {
		return http.ErrUseLastResponse
	}
	tracker.hops = len(via)
	tracker.chain.Add(req.URL.Hostname())
	return nil
}

// resolveLocation resolves a Location header against the URL that produced it.
func resolveLocation(base *url.URL, location string) (*url.URL, error) {
	if location == "" {
		return nil, NewValidationError("location", location, "empty Location header")
	}
	ref, err := url.Parse(location)
	if err != nil {
		return nil, WrapError(err, "failed to parse Location header")
	}
	next := base.ResolveReference(ref)
	if next.Host == "" || (next.Scheme != "http" && next.Scheme != "https") {
		return nil, NewValidationError("location", location, "location does not resolve to an http(s) URL")
	}
	return next, nil
}
