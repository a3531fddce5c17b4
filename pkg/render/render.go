package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/mavenclosure/pkg/errors"
	graphio "github.com/matzehuels/mavenclosure/pkg/io"
	"github.com/matzehuels/mavenclosure/pkg/render/nodelink"
	"github.com/matzehuels/mavenclosure/pkg/resolve"
)

// Format selects an output representation.
type Format string

const (
	FormatLines Format = "lines"
	FormatTree  Format = "tree"
	FormatJSON  Format = "json"
	FormatDOT   Format = "dot"
	FormatSVG   Format = "svg"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatLines, FormatTree, FormatJSON, FormatDOT, FormatSVG}

// ParseFormat validates a format name. An empty name means [FormatLines].
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatLines, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want one of %s)", s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// ContentType returns the media type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Render writes res to w in format f.
func Render(ctx context.Context, w io.Writer, res *resolve.Result, f Format) error {
	switch f {
	case FormatLines, "":
		return Lines(w, res)
	case FormatTree:
		_, err := fmt.Fprintln(w, Tree(res))
		return err
	case FormatJSON:
		return graphio.WriteJSON(res.Graph(), w)
	case FormatDOT:
		_, err := io.WriteString(w, nodelink.ToDOT(res.Graph(), nodelink.Options{}))
		return err
	case FormatSVG:
		svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(res.Graph(), nodelink.Options{}))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
		_, err = w.Write(svg)
		return err
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown format %q", f)
}

// Lines writes one coordinate per line.
func Lines(w io.Writer, res *resolve.Result) error {
	for _, line := range res.Lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
