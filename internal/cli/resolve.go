package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenclosure/internal/config"
	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/errors"
	"github.com/matzehuels/mavenclosure/pkg/integrations"
	"github.com/matzehuels/mavenclosure/pkg/integrations/maven"
	"github.com/matzehuels/mavenclosure/pkg/render"
	"github.com/matzehuels/mavenclosure/pkg/resolve"
)

// errNoRoots is returned when a resolve command gets no coordinates.
var errNoRoots = errors.New(errors.ErrCodeInvalidInput, "no root coordinates given")

// resolveOptions holds the flags shared by resolve and tree.
type resolveOptions struct {
	repository string
	exclude    []string
	optional   []string
	workers    int
	maxDepth   int
	timeout    time.Duration
	retries    int
	noCache    bool
	refresh    bool
	format     string
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	opts := resolveOptions{format: string(render.FormatLines)}

	cmd := &cobra.Command{
		Use:   "resolve <group:artifact:version>...",
		Short: "Print the transitive dependency closure of one or more artifacts",
		Long: `Resolve fetches the POM of each root and of every dependency reachable from
it, mediates version conflicts (nearest wins, highest version on ties) and
prints the resulting artifacts, one group:artifact:version per line, sorted.

The root itself is not printed. Test, provided and system scoped
dependencies are not followed, and optional dependencies are only followed
when allowed with --optional.`,
		Example: `  mavenclosure resolve com.google.guava:guava:32.1.3-jre
  mavenclosure resolve -e commons-logging:commons-logging org.springframework:spring-core:6.1.2
  mavenclosure resolve -r ~/.m2/repository --format tree junit:junit:4.13.2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd, args, opts)
		},
	}

	addResolveFlags(cmd, &opts)
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "output format: lines, tree, json, dot, svg")
	return cmd
}

// treeCommand creates the tree command, a shorthand for resolve --format tree.
func (c *CLI) treeCommand() *cobra.Command {
	opts := resolveOptions{format: string(render.FormatTree)}

	cmd := &cobra.Command{
		Use:   "tree <group:artifact:version>...",
		Short: "Print the mediated dependency tree of one or more artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd, args, opts)
		},
	}

	addResolveFlags(cmd, &opts)
	return cmd
}

func addResolveFlags(cmd *cobra.Command, opts *resolveOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.repository, "repository", "r", "", "repository base URL or local path (default "+maven.DefaultRepository+")")
	f.StringSliceVarP(&opts.exclude, "exclude", "e", nil, "exclude group:artifact (artifact may be *)")
	f.StringSliceVarP(&opts.optional, "optional", "o", nil, "follow optional dependency group:artifact")
	f.IntVar(&opts.workers, "workers", resolve.DefaultWorkers, "concurrent descriptor fetches")
	f.IntVar(&opts.maxDepth, "max-depth", 0, "stop expanding below this depth (0 = unlimited)")
	f.DurationVar(&opts.timeout, "timeout", integrations.DefaultTimeout, "per-request timeout")
	f.IntVar(&opts.retries, "retries", 0, "retry transient repository failures")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the response cache")
	f.BoolVar(&opts.refresh, "refresh", false, "ignore cached responses and refetch")
}

// applyFlags overrides cfg with the flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts resolveOptions) {
	f := cmd.Flags()
	if f.Changed("repository") {
		cfg.Repository = opts.repository
	}
	if f.Changed("exclude") {
		cfg.Exclude = opts.exclude
	}
	if f.Changed("optional") {
		cfg.Optional = opts.optional
	}
	if f.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if f.Changed("timeout") {
		cfg.Timeout = config.Duration{Duration: opts.timeout}
	}
	if f.Changed("retries") {
		cfg.Retries = opts.retries
	}
}

// runResolve resolves every root in args in order. A root that fails is
// reported on stderr and the remaining roots still run.
func (c *CLI) runResolve(cmd *cobra.Command, args []string, opts resolveOptions) error {
	if len(args) == 0 {
		_ = cmd.Usage()
		return errNoRoots
	}
	ctx := withLogger(cmd.Context(), c.Logger)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}
	constraints, err := cfg.Constraints()
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	store, err := newCache(ctx, cfg.Cache, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()
	client := newClient(store, cfg)

	hooks, reset := installHooks(c.Logger)
	defer reset()

	failed := 0
	for _, arg := range args {
		err := c.resolveRoot(ctx, hooks, client, cfg, constraints, arg, opts, format)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		failed++
		printError("%s: %s", arg, errors.UserMessage(err))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d roots failed", failed, len(args))
	}
	return nil
}

func (c *CLI) resolveRoot(ctx context.Context, hooks *logHooks, client *integrations.Client, cfg config.Config,
	constraints resolve.Constraints, arg string, opts resolveOptions, format render.Format) error {
	root, err := artifact.ParseRoot(arg)
	if err != nil {
		return err
	}

	logger := loggerFromContext(ctx)
	fetcher := maven.NewFetcher(client, cfg.Repository, maven.WithRefresh(opts.refresh))
	r := resolve.New(fetcher, resolve.Options{
		Workers:  cfg.Workers,
		MaxDepth: opts.maxDepth,
		Logger:   resolverLog(logger, root),
	})

	prog := newProgress(logger, root)
	stop := func() {}
	if !c.verbose() && interactive() {
		s := newSpinnerWithContext(ctx, "Resolving "+root.String())
		hooks.track(s)
		s.Start()
		stop = func() {
			hooks.track(nil)
			s.Stop()
		}
	}

	res, err := r.Resolve(ctx, root, constraints)
	stop()
	if err != nil {
		return err
	}

	if err := render.Render(ctx, c.Stdout, res, format); err != nil {
		return err
	}
	if c.verbose() {
		printConflicts(res)
		prog.done(res)
	}
	return nil
}
