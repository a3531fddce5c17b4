package resolve

import "github.com/matzehuels/mavenclosure/pkg/artifact"

// Constraints filter the edges the resolver may follow. They are supplied
// once per run and never modified during traversal.
type Constraints struct {
	// Excluded artifacts are dropped together with their subtrees.
	Excluded []artifact.Pattern

	// OptionalAllowed lists the optional dependencies that are followed.
	// Optional edges to anything else are dropped.
	OptionalAllowed []artifact.Pattern
}

// NewConstraints parses "group:artifact" exclusion and allowlist patterns.
// The artifact may be "*".
func NewConstraints(excluded, optional []string) (Constraints, error) {
	ex, err := artifact.ParsePatterns(excluded)
	if err != nil {
		return Constraints{}, err
	}
	opt, err := artifact.ParsePatterns(optional)
	if err != nil {
		return Constraints{}, err
	}
	return Constraints{Excluded: ex, OptionalAllowed: opt}, nil
}

// Allows reports whether e may be followed.
//
// Only compile and runtime edges propagate. An edge is refused when its
// target matches an exclusion, or when it is optional and its target is not
// in the optional allowlist.
func (c Constraints) Allows(e artifact.Edge) bool {
	if !e.Scope.Transitive() {
		return false
	}
	k := e.To.Key()
	if artifact.MatchesAny(c.Excluded, k) {
		return false
	}
	if e.Optional && !artifact.MatchesAny(c.OptionalAllowed, k) {
		return false
	}
	return true
}
