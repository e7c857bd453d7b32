package config

import (
	"time"

	"github.com/aleister1102/httpeek/internal/classifier"
)

// FilterConfig holds the response filters and TLS inspection toggle.
type FilterConfig struct {
	BodyMatch     string `json:"body_match,omitempty" yaml:"body_match,omitempty"`
	ContentLength string `json:"content_length,omitempty" yaml:"content_length,omitempty" validate:"omitempty,lengthfilter"`
	ExcludeLength string `json:"exclude_length,omitempty" yaml:"exclude_length,omitempty"`
	ExcludeStatus string `json:"exclude_status,omitempty" yaml:"exclude_status,omitempty"`
	MatchMode     string `json:"match_mode,omitempty" yaml:"match_mode,omitempty" validate:"omitempty,oneof=regex substring"`
	OnlyActive    bool   `json:"only_active" yaml:"only_active"`
	StatusCode    string `json:"status_code,omitempty" yaml:"status_code,omitempty" validate:"omitempty,statusfilter"`
	TitleMatch    string `json:"title_match,omitempty" yaml:"title_match,omitempty"`
	TLSInfo       bool   `json:"tls_info" yaml:"tls_info"`
}

func NewDefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MatchMode:  DefaultMatchMode,
		StatusCode: DefaultStatusFilter,
	}
}

// ToClassifierOptions converts the filter section; tlsTimeout bounds the certificate grab.
func (fc FilterConfig) ToClassifierOptions(tlsTimeout time.Duration) classifier.Options {
	mode := classifier.MatchRegex
	if fc.MatchMode == string(classifier.MatchSubstring) {
		mode = classifier.MatchSubstring
	}
	return classifier.Options{
		OnlyActive:    fc.OnlyActive,
		StatusFilter:  fc.StatusCode,
		ExcludeStatus: fc.ExcludeStatus,
		ContentLength: fc.ContentLength,
		ExcludeLength: fc.ExcludeLength,
		TitleMatch:    fc.TitleMatch,
		BodyMatch:     fc.BodyMatch,
		MatchMode:     mode,
		TLSInfo:       fc.TLSInfo,
		TLSTimeout:    tlsTimeout,
	}
}
