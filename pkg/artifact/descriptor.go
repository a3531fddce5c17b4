package artifact

// Edge is one declared dependency of a descriptor.
//
// To.Version holds the declared version spec, which is either a soft version
// ("1.2.0") or a range ("[1.0,2.0)"). Once a descriptor has been built the
// version is concrete unless the declaration left it empty.
type Edge struct {
	From       Coordinate
	To         Coordinate
	Scope      Scope
	Optional   bool
	Exclusions []Pattern
}

// Excludes reports whether this edge's exclusions select k.
func (e Edge) Excludes(k Key) bool {
	return MatchesAny(e.Exclusions, k)
}

// Descriptor is the parsed metadata document of one artifact version.
// Descriptors are shared between goroutines and must not be mutated after
// they are returned from a fetcher.
type Descriptor struct {
	Coordinate Coordinate

	// Dependencies are the declared edges in document order, with parent
	// inheritance and dependency management already applied.
	Dependencies []Edge

	// Parent is the coordinate of the parent descriptor, if any.
	Parent *Coordinate

	// Managed holds the effective dependencyManagement entries, including
	// entries inherited from parents and imported BOMs. When the descriptor
	// is a resolution root these pin versions of transitive dependencies.
	Managed []Edge
}

// ManagedFor returns the dependencyManagement entry for k, if any.
// The first matching entry wins, matching declaration precedence.
func (d *Descriptor) ManagedFor(k Key) (Edge, bool) {
	if d == nil {
		return Edge{}, false
	}
	for _, m := range d.Managed {
		if m.To.Key() == k {
			return m, true
		}
	}
	return Edge{}, false
}
