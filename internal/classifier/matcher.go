package classifier

import (
	"regexp"
	"strings"
)

// MatchMode selects how title/body patterns are interpreted.
type MatchMode string

const (
	MatchRegex     MatchMode = "regex"
	MatchSubstring MatchMode = "substring"
)

// Matcher tests text against a pattern.
type Matcher struct {
	pattern string
	re      *regexp.Regexp
}

// NewMatcher returns nil for an empty pattern. In regex mode a pattern that does
// not compile is matched as a plain substring.
func NewMatcher(pattern string, mode MatchMode) *Matcher {
	if pattern == "" {
		return nil
	}
	m := &Matcher{pattern: pattern}
	if mode != MatchSubstring {
		if re, err := regexp.Compile(pattern); err == nil {
			m.re = re
		}
	}
	return m
}

// IsRegex reports whether the pattern is applied as a regular expression.
func (m *Matcher) IsRegex() bool {
	return m != nil && m.re != nil
}

// Match reports whether text matches. A nil matcher matches everything.
func (m *Matcher) Match(text string) bool {
	if m == nil {
		return true
	}
	if m.re != nil {
		return m.re.MatchString(text)
	}
	return strings.Contains(text, m.pattern)
}
