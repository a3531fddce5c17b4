// Package render formats resolved closures for output.
//
// # Formats
//
//   - [FormatLines]: one group:artifact:version[:classifier][@type] per line
//     in result order, the type only for non-jars. This is the contract build
//     tools consume.
//   - [FormatTree]: the mediated tree as indented text, each artifact under
//     the parent that first reached it.
//   - [FormatJSON]: the tree as a node/edge graph, see package
//     github.com/matzehuels/mavenclosure/pkg/io.
//   - [FormatDOT]: Graphviz DOT source from the [nodelink] subpackage.
//   - [FormatSVG]: the DOT graph laid out in-process with Graphviz.
//
// Use [Render] to write any format to an [io.Writer]:
//
//	f, err := render.ParseFormat("tree")
//	err = render.Render(ctx, os.Stdout, result, f)
//
// [nodelink]: github.com/matzehuels/mavenclosure/pkg/render/nodelink
package render
