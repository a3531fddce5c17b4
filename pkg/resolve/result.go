package resolve

import (
	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/dag"
)

// Result is the closure of one root.
type Result struct {
	Root      artifact.Coordinate
	Artifacts []Resolved // One per identity key, sorted by group, artifact, version
	Conflicts []Conflict // Keys for which several versions were requested
	Tree      *Node      // The root, with winners attached under their first parent
	Fetched   int        // Distinct descriptors fetched during the run
}

// Resolved is one artifact of the closure.
type Resolved struct {
	artifact.Coordinate
	Depth int
	Scope artifact.Scope
	Via   artifact.Coordinate // Parent in the resolved tree
}

// Conflict records the versions that lost mediation for a key.
type Conflict struct {
	Key    artifact.Key
	Winner string
	Losers []string
}

// Coordinates returns the resolved coordinates in output order.
func (r *Result) Coordinates() []artifact.Coordinate {
	out := make([]artifact.Coordinate, len(r.Artifacts))
	for i, a := range r.Artifacts {
		out[i] = a.Coordinate
	}
	return out
}

// Lines formats the closure one coordinate per line, in output order.
// Artifacts of a type other than jar carry an "@type" suffix, so that each
// line names exactly one identity key.
func (r *Result) Lines() []string {
	out := make([]string, len(r.Artifacts))
	for i, a := range r.Artifacts {
		out[i] = nodeID(a.Coordinate)
	}
	return out
}

// Graph converts the resolved tree to a DAG whose rows are depths. Node IDs
// are coordinate strings (with "@type" for non-jars); metadata carries "version" and "scope".
func (r *Result) Graph() *dag.DAG {
	g := dag.New(dag.Metadata{"root": r.Root.String()})
	if r.Tree == nil {
		return g
	}
	r.Tree.Walk(func(n *Node) bool {
		_ = g.AddNode(dag.Node{
			ID:  nodeID(n.Coordinate),
			Row: n.Depth,
			Meta: dag.Metadata{
				"version": n.Coordinate.Version,
				"scope":   string(n.Scope),
			},
		})
		if n.parent != nil {
			_ = g.AddEdge(dag.Edge{From: nodeID(n.parent.Coordinate), To: nodeID(n.Coordinate)})
		}
		return true
	})
	return g
}

func nodeID(c artifact.Coordinate) string {
	if c.Type != "" && c.Type != artifact.DefaultType {
		return c.String() + "@" + c.Type
	}
	return c.String()
}
