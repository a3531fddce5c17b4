// Package dag provides a directed acyclic graph organized in rows (layers).
//
// # Overview
//
// A resolved dependency closure is a tree: every artifact hangs off the
// parent through which it was first reached, one row below it. This package
// holds that structure for the graph renderers. Rows are depths from the
// root and edges only connect consecutive rows.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]. Nodes must have unique IDs, and edges can only connect
// existing nodes in consecutive rows (From.Row+1 == To.Row):
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "com.acme:app:1.0", Row: 0})
//	g.AddNode(dag.Node{ID: "com.acme:core:1.0", Row: 1})
//	g.AddEdge(dag.Edge{From: "com.acme:app:1.0", To: "com.acme:core:1.0"})
//
// Query the graph structure with [DAG.Children], [DAG.Parents], [DAG.NodesInRow],
// and related methods. Use [DAG.Validate] to verify structural integrity before
// rendering.
//
// # Metadata
//
// Both nodes and the graph itself support arbitrary metadata via [Metadata] maps.
// The resolver stores each artifact's version and effective scope on its node
// and the root coordinate on the graph. Metadata maps are never nil after
// creation - empty maps are automatically initialized.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize access
// if multiple goroutines read or modify the same graph.
package dag
