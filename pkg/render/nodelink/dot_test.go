package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/mavenclosure/pkg/dag"
)

func testGraph() *dag.DAG {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "g:root:1", Row: 0})
	_ = g.AddNode(dag.Node{ID: "g:a:1", Row: 1, Meta: dag.Metadata{"version": "1", "scope": "compile"}})
	_ = g.AddNode(dag.Node{ID: "g:b:1", Row: 1, Meta: dag.Metadata{"version": "1", "scope": "runtime"}})
	_ = g.AddEdge(dag.Edge{From: "g:root:1", To: "g:a:1"})
	_ = g.AddEdge(dag.Edge{From: "g:root:1", To: "g:b:1"})
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(), Options{})
	if strings.Index(dot, `"g:a:1" [`) > strings.Index(dot, `"g:b:1" [`) {
		t.Error("nodes should follow row insertion order")
	}
	if !strings.Contains(dot, `"g:b:1" [label="g:b:1", style="rounded,filled,dashed"`) {
		t.Errorf("runtime node should be dashed:\n%s", dot)
	}
	if !strings.Contains(dot, `"g:root:1" [label="g:root:1", penwidth=2`) {
		t.Errorf("root should be emphasized:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testGraph(), Options{Detailed: true})
	if !strings.Contains(dot, `label="g:a:1\ndepth: 1\nscope: compile\nversion: 1"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 200.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 200.00" width="100" height="200"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
}
