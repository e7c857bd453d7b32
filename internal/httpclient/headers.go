package httpclient

import (
	"math/rand"
	"strings"
)

// DefaultUserAgent is sent when no custom headers are configured.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

var userAgents = []string{
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
}

// DefaultHeaders returns a fresh copy of the browser-like default request headers.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      DefaultUserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9,tr;q=0.7,az;q=0.7",
		"Accept-Encoding": "gzip, deflate, br, zstd",
		"Connection":      "keep-alive",
		"Cache-Control":   "no-cache",
		"Pragma":          "no-cache",
	}
}

// RandomUserAgent picks one of the built-in browser user agents.
func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// ParseHeaders turns "Key: Value" items into a map. Items without a colon are skipped.
// Returns nil when nothing usable was supplied, so callers fall back to DefaultHeaders.
func ParseHeaders(items []string) map[string]string {
	out := make(map[string]string)
	for _, item := range items {
		key, value, ok := strings.Cut(item, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
