package resolve

import (
	"cmp"
	"slices"

	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/version"
)

// Node is an artifact in the resolved tree. Each resolved artifact appears
// exactly once, under the parent through which it was first reached.
type Node struct {
	Coordinate artifact.Coordinate
	Scope      artifact.Scope // Effective scope from the root's point of view ("" for the root)
	Depth      int
	Children   []*Node

	parent     *Node
	desc       *artifact.Descriptor
	exclusions []artifact.Pattern // Applied to this node's dependencies
}

// Parent returns the node this one was reached through, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Walk calls fn for n and its descendants in depth-first preorder. Children
// are visited in declaration order. Returning false skips a node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// onPath reports whether k is n or one of its ancestors.
func (n *Node) onPath(k artifact.Key) bool {
	for p := n; p != nil; p = p.parent {
		if p.Coordinate.Key() == k {
			return true
		}
	}
	return false
}

// mergePatterns returns the union of a and b in a new slice.
func mergePatterns(a, b []artifact.Pattern) []artifact.Pattern {
	if len(b) == 0 {
		return a
	}
	out := make([]artifact.Pattern, 0, len(a)+len(b))
	out = append(out, a...)
	for _, p := range b {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// intersectPatterns returns the patterns that exclude something on both
// paths. A pattern survives if the other side has a pattern covering it.
func intersectPatterns(a, b []artifact.Pattern) []artifact.Pattern {
	var out []artifact.Pattern
	add := func(p artifact.Pattern, other []artifact.Pattern) {
		if slices.Contains(out, p) {
			return
		}
		for _, q := range other {
			if covers(q, p) {
				out = append(out, p)
				return
			}
		}
	}
	for _, p := range a {
		add(p, b)
	}
	for _, p := range b {
		add(p, a)
	}
	return out
}

func covers(q, p artifact.Pattern) bool {
	return (q.Group == artifact.Wildcard || q.Group == p.Group) &&
		(q.Artifact == artifact.Wildcard || q.Artifact == p.Artifact)
}

func compareCoordinates(a, b artifact.Coordinate) int {
	if c := cmp.Compare(a.Group, b.Group); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Artifact, b.Artifact); c != 0 {
		return c
	}
	if c := version.Compare(a.Version, b.Version); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Version, b.Version); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Classifier, b.Classifier); c != 0 {
		return c
	}
	return cmp.Compare(a.Type, b.Type)
}

func compareKeys(a, b artifact.Key) int {
	return cmp.Or(
		cmp.Compare(a.Group, b.Group),
		cmp.Compare(a.Artifact, b.Artifact),
		cmp.Compare(a.Classifier, b.Classifier),
		cmp.Compare(a.Type, b.Type),
	)
}
