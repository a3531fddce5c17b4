// Package cli implements the mavenclosure command-line interface.
//
// # Commands
//
//   - resolve: print the transitive closure of one or more root coordinates
//   - tree: print the mediated dependency tree
//   - serve: run the HTTP resolution service
//   - cache: manage the repository response cache
//
// Results go to stdout. Logs, progress and status lines go to stderr so the
// output can be piped into a build tool. All commands support --verbose (-v)
// for debug-level logging, which also reports descriptor fetches and
// mediated conflicts.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/resolve"
)

// newLogger returns the stderr logger shared by all commands, with
// timestamps to the hundredth of a second ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times the resolution of one root.
type progress struct {
	logger *log.Logger
	root   artifact.Coordinate
	start  time.Time
}

func newProgress(l *log.Logger, root artifact.Coordinate) *progress {
	return &progress{logger: l, root: root, start: time.Now()}
}

// done logs a summary of res:
// "Resolved 42 artifacts for g:a:1 from 57 descriptors (1.234s)".
func (p *progress) done(res *resolve.Result) {
	p.logger.Infof("Resolved %d artifacts for %s from %d descriptors (%s)",
		len(res.Artifacts), p.root, res.Fetched, time.Since(p.start).Round(time.Millisecond))
}

// resolverLog adapts l to resolve.Options.Logger. Resolver messages are
// debug output tagged with the root they belong to.
func resolverLog(l *log.Logger, root artifact.Coordinate) func(string, ...any) {
	return l.With("root", root.String()).Debugf
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default if there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
