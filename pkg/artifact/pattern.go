package artifact

import (
	"strings"

	"github.com/matzehuels/mavenclosure/pkg/errors"
)

// Wildcard matches any group or artifact in a [Pattern].
const Wildcard = "*"

// Pattern selects artifacts by group and artifact id, ignoring version,
// classifier and type. Either side may be [Wildcard].
type Pattern struct {
	Group    string
	Artifact string
}

// ParsePattern parses "group:artifact", where artifact may be "*" to select
// every artifact of the group. A bare "group" is shorthand for "group:*".
func ParsePattern(s string) (Pattern, error) {
	s = strings.TrimSpace(s)
	group, art, hasArtifact := strings.Cut(s, ":")
	if !hasArtifact {
		art = Wildcard
	}
	if group == "" || art == "" || strings.Contains(art, ":") {
		return Pattern{}, errors.New(errors.ErrCodeMalformedCoordinate,
			"invalid pattern %q (expected group:artifact)", s)
	}
	for _, seg := range []struct{ kind, value string }{{"group", group}, {"artifact", art}} {
		if seg.value == Wildcard {
			continue
		}
		if err := errors.ValidateSegment(seg.kind, seg.value); err != nil {
			return Pattern{}, err
		}
	}
	return Pattern{Group: group, Artifact: art}, nil
}

// ParsePatterns parses each entry with [ParsePattern], stopping at the first error.
func ParsePatterns(specs []string) ([]Pattern, error) {
	out := make([]Pattern, 0, len(specs))
	for _, s := range specs {
		p, err := ParsePattern(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Matches reports whether k is selected by p.
func (p Pattern) Matches(k Key) bool {
	return (p.Group == Wildcard || p.Group == k.Group) &&
		(p.Artifact == Wildcard || p.Artifact == k.Artifact)
}

// String formats p as "group:artifact".
func (p Pattern) String() string { return p.Group + ":" + p.Artifact }

// MatchesAny reports whether any pattern selects k.
func MatchesAny(patterns []Pattern, k Key) bool {
	for _, p := range patterns {
		if p.Matches(k) {
			return true
		}
	}
	return false
}
