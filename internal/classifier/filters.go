package classifier

import (
	"strconv"
	"strings"

	"github.com/aleister1102/httpeek/internal/common"
)

// maxStatusCode bounds range expansion in status filters.
const maxStatusCode = 999

// StatusSet is an expanded set of status codes. An empty set allows everything.
type StatusSet map[int]struct{}

// Contains reports whether code is in the set.
func (s StatusSet) Contains(code int) bool {
	_, ok := s[code]
	return ok
}

// Allows is Contains for inclusion filters: an empty set allows any code.
func (s StatusSet) Allows(code int) bool {
	if len(s) == 0 {
		return true
	}
	return s.Contains(code)
}

// IsAllStatus reports whether expr disables status filtering.
func IsAllStatus(expr string) bool {
	trimmed := strings.TrimSpace(expr)
	return trimmed == "" || strings.EqualFold(trimmed, "all")
}

// ParseStatusFilter parses "200,301-302,2xx". Unparseable terms are skipped.
// "All" and "" yield an empty set.
func ParseStatusFilter(expr string) StatusSet {
	set := make(StatusSet)
	if IsAllStatus(expr) {
		return set
	}

	for _, term := range strings.Split(expr, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		lower := strings.ToLower(term)
		if len(lower) == 3 && strings.HasSuffix(lower, "xx") {
			if lower[0] < '0' || lower[0] > '9' {
				continue
			}
			base := int(lower[0]-'0') * 100
			set.addRange(base, base+99)
			continue
		}

		if lo, hi, ok := parseIntRange(term); ok {
			set.addRange(lo, hi)
			continue
		}

		if code, err := strconv.Atoi(term); err == nil {
			set[code] = struct{}{}
		}
	}
	return set
}

// ParseStatusExclusion parses a comma separated list of codes. Only all-digit
// terms count; ranges and classes are ignored.
func ParseStatusExclusion(expr string) StatusSet {
	set := make(StatusSet)
	for _, term := range strings.Split(expr, ",") {
		term = strings.TrimSpace(term)
		if !isDigits(term) {
			continue
		}
		if code, err := strconv.Atoi(term); err == nil {
			set[code] = struct{}{}
		}
	}
	return set
}

func (s StatusSet) addRange(lo, hi int) {
	lo = max(lo, 0)
	hi = min(hi, maxStatusCode)
	for code := lo; code <= hi; code++ {
		s[code] = struct{}{}
	}
}

// LengthRange is an inclusive byte-length interval.
type LengthRange struct {
	Min int
	Max int
}

// Contains reports Min <= n <= Max.
func (r LengthRange) Contains(n int) bool {
	return r.Min <= n && n <= r.Max
}

// ParseLengthRange parses "512" or "100-200". An empty expression returns nil.
// A reversed range is normalized.
func ParseLengthRange(expr string) (*LengthRange, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	if strings.Contains(expr, "-") {
		lo, hi, ok := parseIntRange(expr)
		if !ok {
			return nil, common.NewValidationError("content_length", expr, "expected N or LO-HI")
		}
		return &LengthRange{Min: lo, Max: hi}, nil
	}

	n, err := strconv.Atoi(expr)
	if err != nil {
		return nil, common.NewValidationError("content_length", expr, "expected N or LO-HI")
	}
	return &LengthRange{Min: n, Max: n}, nil
}

// LengthExclusion holds excluded lengths as values and inclusive ranges.
type LengthExclusion struct {
	Values map[int]struct{}
	Ranges []LengthRange
}

// ParseLengthExclusion parses "0,100-300". Invalid terms are skipped.
func ParseLengthExclusion(expr string) LengthExclusion {
	excl := LengthExclusion{Values: make(map[int]struct{})}
	for _, term := range strings.Split(expr, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if strings.Contains(term, "-") {
			if lo, hi, ok := parseIntRange(term); ok {
				excl.Ranges = append(excl.Ranges, LengthRange{Min: lo, Max: hi})
			}
			continue
		}
		if isDigits(term) {
			if n, err := strconv.Atoi(term); err == nil {
				excl.Values[n] = struct{}{}
			}
		}
	}
	return excl
}

// Excludes reports whether n is one of the excluded lengths.
func (e LengthExclusion) Excludes(n int) bool {
	if _, ok := e.Values[n]; ok {
		return true
	}
	for _, r := range e.Ranges {
		if r.Contains(n) {
			return true
		}
	}
	return false
}

// parseIntRange parses "a-b" into (min, max).
func parseIntRange(term string) (int, int, bool) {
	left, right, found := strings.Cut(term, "-")
	if !found {
		return 0, 0, false
	}
	a, errA := strconv.Atoi(strings.TrimSpace(left))
	b, errB := strconv.Atoi(strings.TrimSpace(right))
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return min(a, b), max(a, b), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
