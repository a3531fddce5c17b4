package render

import (
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/resolve"
)

// Tree formats the mediated tree with box-drawing guides. Artifacts whose
// effective scope is not compile are annotated with it.
func Tree(res *resolve.Result) string {
	if res.Tree == nil {
		return res.Root.String()
	}
	return subtree(res.Tree).String()
}

func subtree(n *resolve.Node) *tree.Tree {
	t := tree.Root(label(n))
	for _, c := range n.Children {
		if len(c.Children) == 0 {
			t.Child(label(c))
			continue
		}
		t.Child(subtree(c))
	}
	return t
}

func label(n *resolve.Node) string {
	s := n.Coordinate.String()
	if n.Scope != "" && n.Scope != artifact.ScopeCompile {
		s += " (" + string(n.Scope) + ")"
	}
	return s
}
