// Package nodelink renders resolved dependency trees as node-link diagrams.
//
// # Usage
//
// Convert a DAG to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(result.Graph(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: When true, node labels include depth, version and scope.
//
// # DOT Format
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded
// box nodes, one rank per depth. It can be saved and processed with
// external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. No external binaries are required.
package nodelink
