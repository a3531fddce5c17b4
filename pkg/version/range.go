package version

import (
	"fmt"
	"strings"
)

// Range is a union of version intervals in Maven range syntax.
// The zero value contains nothing.
type Range struct {
	raw  string
	sets []interval
}

type interval struct {
	lower, upper         string // "" means unbounded
	lowerIncl, upperIncl bool
}

// IsRange reports whether spec uses range syntax rather than naming a single
// (soft) version.
func IsRange(spec string) bool {
	spec = strings.TrimSpace(spec)
	return strings.HasPrefix(spec, "[") || strings.HasPrefix(spec, "(")
}

// ParseRange parses a Maven version range such as "[1.0,2.0)" or
// "(,1.0],[1.2,)". A single pinned version is written "[1.2]".
func ParseRange(spec string) (Range, error) {
	r := Range{raw: spec}
	rest := strings.TrimSpace(spec)
	if rest == "" {
		return r, fmt.Errorf("empty version range")
	}

	for rest != "" {
		open := rest[0]
		if open != '[' && open != '(' {
			return r, fmt.Errorf("version range %q: expected '[' or '('", spec)
		}
		end := strings.IndexAny(rest, "])")
		if end < 0 {
			return r, fmt.Errorf("version range %q: unterminated interval", spec)
		}
		iv, err := parseInterval(rest[1:end], open == '[', rest[end] == ']')
		if err != nil {
			return r, fmt.Errorf("version range %q: %w", spec, err)
		}
		r.sets = append(r.sets, iv)

		rest = strings.TrimSpace(rest[end+1:])
		if rest != "" {
			if rest[0] != ',' {
				return r, fmt.Errorf("version range %q: expected ',' between intervals", spec)
			}
			rest = strings.TrimSpace(rest[1:])
		}
	}
	return r, nil
}

func parseInterval(body string, lowerIncl, upperIncl bool) (interval, error) {
	lower, upper, hasComma := strings.Cut(body, ",")
	lower = strings.TrimSpace(lower)
	upper = strings.TrimSpace(upper)

	if !hasComma {
		if !lowerIncl || !upperIncl || lower == "" {
			return interval{}, fmt.Errorf("single version must be written [x]")
		}
		return interval{lower: lower, upper: lower, lowerIncl: true, upperIncl: true}, nil
	}
	if lower != "" && upper != "" && Compare(lower, upper) > 0 {
		return interval{}, fmt.Errorf("lower bound %s above upper bound %s", lower, upper)
	}
	return interval{lower: lower, upper: upper, lowerIncl: lowerIncl, upperIncl: upperIncl}, nil
}

// String returns the range as it was written.
func (r Range) String() string { return r.raw }

// Contains reports whether v lies in any interval of the range.
func (r Range) Contains(v string) bool {
	for _, iv := range r.sets {
		if iv.contains(v) {
			return true
		}
	}
	return false
}

func (iv interval) contains(v string) bool {
	if iv.lower != "" {
		c := Compare(v, iv.lower)
		if c < 0 || (c == 0 && !iv.lowerIncl) {
			return false
		}
	}
	if iv.upper != "" {
		c := Compare(v, iv.upper)
		if c > 0 || (c == 0 && !iv.upperIncl) {
			return false
		}
	}
	return true
}

// Highest returns the highest candidate contained in the range.
func (r Range) Highest(candidates []string) (string, bool) {
	best, found := "", false
	for _, c := range candidates {
		if !r.Contains(c) {
			continue
		}
		if !found || Less(best, c) {
			best, found = c, true
		}
	}
	return best, found
}
