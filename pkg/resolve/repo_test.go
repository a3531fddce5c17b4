package resolve

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/errors"
)

// fakeRepo is an in-memory descriptor repository.
type fakeRepo struct {
	mu    sync.Mutex
	descs map[string]*artifact.Descriptor
	fails map[string]error
	calls map[string]int
	delay time.Duration
}

func newRepo() *fakeRepo {
	return &fakeRepo{
		descs: make(map[string]*artifact.Descriptor),
		fails: make(map[string]error),
		calls: make(map[string]int),
	}
}

func gav(c artifact.Coordinate) string { return c.Group + ":" + c.Artifact + ":" + c.Version }

func mustCoord(s string) artifact.Coordinate {
	c, err := artifact.Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// add registers a descriptor for coord with the given dependencies.
func (r *fakeRepo) add(coord string, deps ...artifact.Edge) *artifact.Descriptor {
	c := mustCoord(coord)
	for i := range deps {
		deps[i].From = c
	}
	d := &artifact.Descriptor{Coordinate: c, Dependencies: deps}
	r.descs[gav(c)] = d
	return d
}

func (r *fakeRepo) fail(coord string, err error) { r.fails[coord] = err }

func (r *fakeRepo) callsFor(coord string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[coord]
}

func (r *fakeRepo) totalCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

func (r *fakeRepo) Fetch(ctx context.Context, c artifact.Coordinate) (*artifact.Descriptor, error) {
	id := gav(c)
	r.mu.Lock()
	r.calls[id]++
	d, err := r.descs[id], r.fails[id]
	r.mu.Unlock()

	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeNetwork, ctx.Err(), "fetch %s", id)
		}
	}
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no descriptor for %s", id)
	}
	return d, nil
}

// dep declares a compile dependency on coord.
func dep(coord string) artifact.Edge {
	return artifact.Edge{To: mustCoord(coord), Scope: artifact.ScopeCompile}
}

func scoped(e artifact.Edge, s artifact.Scope) artifact.Edge {
	e.Scope = s
	return e
}

func optional(e artifact.Edge) artifact.Edge {
	e.Optional = true
	return e
}

func excluding(e artifact.Edge, patterns ...string) artifact.Edge {
	for _, p := range patterns {
		g, a, _ := strings.Cut(p, ":")
		e.Exclusions = append(e.Exclusions, artifact.Pattern{Group: g, Artifact: a})
	}
	return e
}

func resolveLines(r *fakeRepo, root string, c Constraints, opts Options) ([]string, error) {
	res, err := New(r, opts).Resolve(context.Background(), mustCoord(root), c)
	if err != nil {
		return nil, err
	}
	return res.Lines(), nil
}
