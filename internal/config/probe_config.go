package config

import (
	"strings"
	"time"

	"github.com/aleister1102/httpeek/internal/httpclient"
)

// ProbeConfig defines how each target is requested.
type ProbeConfig struct {
	CustomHeaders      []string `json:"custom_headers,omitempty" yaml:"custom_headers,omitempty"`
	FollowRedirects    bool     `json:"follow_redirects" yaml:"follow_redirects"`
	InsecureSkipVerify bool     `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	MaxBodySize        int64    `json:"max_body_size" yaml:"max_body_size" validate:"min=0"`
	MaxRedirects       int      `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"omitempty,min=1,max=10"`
	Method             string   `json:"method,omitempty" yaml:"method,omitempty" validate:"omitempty,httpmethod"`
	Proxy              string   `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,proxyurl"`
	RandomAgent        bool     `json:"random_agent" yaml:"random_agent"`
	RedirectStrategy   string   `json:"redirect_strategy,omitempty" yaml:"redirect_strategy,omitempty" validate:"omitempty,oneof=native manual"`
	Retries            int      `json:"retries" yaml:"retries" validate:"min=0"`
	TimeoutSecs        int      `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=1"`
}

func NewDefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		CustomHeaders:    []string{},
		FollowRedirects:  DefaultProbeFollowRedirects,
		MaxBodySize:      DefaultProbeMaxBodySize,
		MaxRedirects:     DefaultProbeMaxRedirects,
		Method:           DefaultProbeMethod,
		RedirectStrategy: DefaultProbeRedirectStrategy,
		Retries:          DefaultProbeRetries,
		TimeoutSecs:      DefaultProbeTimeoutSecs,
	}
}

// Timeout returns the per-request timeout.
func (pc ProbeConfig) Timeout() time.Duration {
	return time.Duration(pc.TimeoutSecs) * time.Second
}

// ToRequestConfig builds the immutable request configuration shared by all workers.
func (pc ProbeConfig) ToRequestConfig() (httpclient.RequestConfig, error) {
	strategy := httpclient.RedirectNative
	if strings.EqualFold(pc.RedirectStrategy, "manual") {
		strategy = httpclient.RedirectManual
	}

	return httpclient.NewRequestConfig(httpclient.RequestOptions{
		Method:           pc.Method,
		Headers:          httpclient.ParseHeaders(pc.CustomHeaders),
		Timeout:          pc.Timeout(),
		Retries:          pc.Retries,
		Proxy:            pc.Proxy,
		FollowRedirects:  pc.FollowRedirects,
		MaxRedirects:     pc.MaxRedirects,
		RandomAgent:      pc.RandomAgent,
		RedirectStrategy: strategy,
	})
}
