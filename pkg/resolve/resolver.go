package resolve

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/errors"
	"github.com/matzehuels/mavenclosure/pkg/observability"
	"github.com/matzehuels/mavenclosure/pkg/version"
)

// DefaultWorkers is the number of concurrent descriptor fetches per level.
const DefaultWorkers = 8

// Fetcher retrieves the descriptor of a coordinate.
//
// Implementations report failures with the codes NOT_FOUND, NETWORK_ERROR
// and MALFORMED_DESCRIPTOR from package errors. Fetch must be safe for
// concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, c artifact.Coordinate) (*artifact.Descriptor, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context, c artifact.Coordinate) (*artifact.Descriptor, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, c artifact.Coordinate) (*artifact.Descriptor, error) {
	return f(ctx, c)
}

// VersionResolver is implemented by fetchers that can pick the concrete
// version a range stands for. Ranges in the root's dependency management are
// resolved through it when an edge first needs them; fetchers without it fall
// back to Fetch, whose descriptor carries the concrete version.
type VersionResolver interface {
	ResolveVersion(ctx context.Context, c artifact.Coordinate) (string, error)
}

// Options configures a Resolver.
type Options struct {
	Workers  int                  // Concurrent fetches per level (default 8; 1 fetches sequentially)
	MaxDepth int                  // Maximum edges from the root (0 = unlimited)
	Logger   func(string, ...any) // Progress callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Resolver computes transitive closures. A Resolver holds no per-run state
// and may be used for several roots, sequentially or concurrently.
type Resolver struct {
	fetcher  Fetcher
	opts     Options
	mediator Mediator
}

// New creates a Resolver that reads descriptors through f.
func New(f Fetcher, opts Options) *Resolver {
	return &Resolver{fetcher: f, opts: opts.WithDefaults()}
}

// Resolve computes the closure of root under c.
//
// The root itself is not part of the result. On failure no partial result is
// returned.
func (r *Resolver) Resolve(ctx context.Context, root artifact.Coordinate, c Constraints) (*Result, error) {
	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, root.String())
	start := time.Now()

	res, err := r.run(ctx, root, c)

	n := 0
	if res != nil {
		n = len(res.Artifacts)
	}
	hooks.OnResolveComplete(ctx, root.String(), n, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Resolver) run(ctx context.Context, root artifact.Coordinate, c Constraints) (*Result, error) {
	rn := &run{
		ctx:         ctx,
		opts:        r.opts,
		constraints: c,
		fetcher:     r.fetcher,
		cache:       NewCache[artifact.Coordinate, *artifact.Descriptor](),
		graph:       Graph{},
		settled:     make(map[artifact.Key]*Node),
		ranges:      make(map[artifact.Coordinate]string),
	}

	desc, err := rn.fetch(ctx, root)
	if err != nil {
		return nil, err
	}
	rootNode := &Node{Coordinate: desc.Coordinate, desc: desc}
	rn.root = rootNode
	rn.settled[root.Key()] = rootNode

	if err := rn.walk(); err != nil {
		return nil, err
	}
	return rn.result(r.mediator)
}

// run is the state of one resolution. Only the level fetch is concurrent;
// everything else runs on the calling goroutine.
type run struct {
	ctx         context.Context
	opts        Options
	constraints Constraints
	fetcher     Fetcher
	cache       *Cache[artifact.Coordinate, *artifact.Descriptor]

	root    *Node
	graph   Graph
	settled map[artifact.Key]*Node
	ranges  map[artifact.Coordinate]string // managed ranges resolved so far
}

func (rn *run) fetch(ctx context.Context, c artifact.Coordinate) (*artifact.Descriptor, error) {
	return rn.cache.GetOrFetch(ctx, c, func(ctx context.Context) (*artifact.Descriptor, error) {
		start := time.Now()
		d, err := rn.fetcher.Fetch(ctx, c)
		observability.Resolve().OnDescriptorFetched(ctx, c.String(), time.Since(start), err)
		if err == nil && d == nil {
			err = errors.New(errors.ErrCodeInternal, "fetcher returned no descriptor for %s", c)
		}
		return d, err
	})
}

func (rn *run) walk() error {
	frontier := []*Node{rn.root}
	for depth := 1; len(frontier) > 0; depth++ {
		if rn.opts.MaxDepth > 0 && depth > rn.opts.MaxDepth {
			rn.opts.Logger("stopping at max depth %d", rn.opts.MaxDepth)
			return nil
		}
		if err := rn.fetchLevel(frontier); err != nil {
			return err
		}
		next, err := rn.expand(frontier, depth)
		if err != nil {
			return err
		}
		rn.opts.Logger("depth %d: %d new artifacts", depth, len(next))
		frontier = next
	}
	return nil
}

// fetchLevel loads the descriptors of all nodes in a level. The first
// failure cancels the remaining fetches.
func (rn *run) fetchLevel(level []*Node) error {
	g, gctx := errgroup.WithContext(rn.ctx)
	g.SetLimit(rn.opts.Workers)
	for _, n := range level {
		if n.desc != nil {
			continue
		}
		g.Go(func() error {
			d, err := rn.fetch(gctx, n.Coordinate)
			if err != nil {
				return err
			}
			n.desc = d
			return nil
		})
	}
	return g.Wait()
}

// expand processes the edges of a fully fetched level and returns the nodes
// of the next one.
func (rn *run) expand(level []*Node, depth int) ([]*Node, error) {
	candidates := make(map[artifact.Key][]*Node)
	var order []artifact.Key

	for _, parent := range level {
		for _, e := range parent.desc.Dependencies {
			e = rn.manage(e, depth)
			if !rn.constraints.Allows(e) {
				continue
			}
			k := e.To.Key()
			if artifact.MatchesAny(parent.exclusions, k) || parent.onPath(k) {
				continue
			}
			if version.IsRange(e.To.Version) {
				v, err := rn.concrete(e.To)
				if err != nil {
					return nil, err
				}
				e.To = e.To.WithVersion(v)
			}
			if e.To.Version == "" {
				return nil, errors.New(errors.ErrCodeMalformedDescriptor,
					"%s: dependency %s has no version", parent.Coordinate, k)
			}

			rn.graph.Record(k, Observation{
				Version: e.To.Version,
				Depth:   depth,
				From:    parent.Coordinate,
				Scope:   e.Scope,
			})
			if _, done := rn.settled[k]; done {
				continue
			}

			if _, seen := candidates[k]; !seen {
				order = append(order, k)
			}
			candidates[k] = append(candidates[k], &Node{
				Coordinate: e.To,
				Scope:      artifact.Effective(parent.Scope, e.Scope),
				Depth:      depth,
				parent:     parent,
				exclusions: mergePatterns(parent.exclusions, e.Exclusions),
			})
		}
	}

	next := make([]*Node, 0, len(order))
	for _, k := range order {
		win := settle(candidates[k])
		rn.settled[k] = win
		win.parent.Children = append(win.parent.Children, win)
		next = append(next, win)
	}
	return next, nil
}

// manage applies the root's dependency management to transitive edges.
// Direct dependencies were already managed by the root descriptor itself.
func (rn *run) manage(e artifact.Edge, depth int) artifact.Edge {
	if depth < 2 {
		return e
	}
	m, ok := rn.root.desc.ManagedFor(e.To.Key())
	if !ok {
		return e
	}
	if m.To.Version != "" {
		e.To = e.To.WithVersion(m.To.Version)
	}
	if m.Scope != "" {
		e.Scope = m.Scope
	}
	if len(m.Exclusions) > 0 {
		e.Exclusions = mergePatterns(e.Exclusions, m.Exclusions)
	}
	return e
}

// concrete resolves a version range, once per coordinate and run.
func (rn *run) concrete(c artifact.Coordinate) (string, error) {
	if v, ok := rn.ranges[c]; ok {
		return v, nil
	}
	var v string
	if vr, ok := rn.fetcher.(VersionResolver); ok {
		var err error
		if v, err = vr.ResolveVersion(rn.ctx, c); err != nil {
			return "", err
		}
	} else {
		d, err := rn.fetcher.Fetch(rn.ctx, c)
		if err != nil {
			return "", err
		}
		if d == nil {
			return "", errors.New(errors.ErrCodeInternal, "fetcher returned no descriptor for %s", c)
		}
		v = d.Coordinate.Version
	}
	rn.ranges[c] = v
	return v, nil
}

// settle picks the node to expand among same-depth requests for one key:
// the highest version, first requester on ties. Requests for the winning
// version from other paths narrow its exclusions to the ones all paths share
// and widen its scope to compile if any path has it.
func settle(cands []*Node) *Node {
	win := cands[0]
	for _, c := range cands[1:] {
		if version.Compare(c.Coordinate.Version, win.Coordinate.Version) > 0 {
			win = c
		}
	}
	for _, c := range cands {
		if c == win || c.Coordinate.Version != win.Coordinate.Version {
			continue
		}
		win.exclusions = intersectPatterns(win.exclusions, c.exclusions)
		if c.Scope == artifact.ScopeCompile {
			win.Scope = artifact.ScopeCompile
		}
	}
	return win
}

func (rn *run) result(m Mediator) (*Result, error) {
	winners := m.Mediate(rn.graph)

	res := &Result{
		Root:    rn.root.Coordinate,
		Tree:    rn.root,
		Fetched: rn.cache.Len(),
	}
	for k, w := range winners {
		n, ok := rn.settled[k]
		if !ok || n.Coordinate.Version != w.Version {
			return nil, errors.New(errors.ErrCodeInternal,
				"mediated %s:%s is not the expanded node", k, w.Version)
		}
		res.Artifacts = append(res.Artifacts, Resolved{
			Coordinate: n.Coordinate,
			Depth:      n.Depth,
			Scope:      n.Scope,
			Via:        n.parent.Coordinate,
		})

		if losers := m.Losers(rn.graph[k], w.Version); len(losers) > 0 {
			res.Conflicts = append(res.Conflicts, Conflict{Key: k, Winner: w.Version, Losers: losers})
			observability.Resolve().OnConflict(rn.ctx, k.String(), w.Version, losers)
		}
	}
	slices.SortFunc(res.Artifacts, func(a, b Resolved) int { return compareCoordinates(a.Coordinate, b.Coordinate) })
	slices.SortFunc(res.Conflicts, func(a, b Conflict) int { return compareKeys(a.Key, b.Key) })
	return res, nil
}
