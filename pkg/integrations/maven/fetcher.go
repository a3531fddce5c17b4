package maven

import (
	"context"
	stderrors "errors"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/errors"
	"github.com/matzehuels/mavenclosure/pkg/integrations"
	"github.com/matzehuels/mavenclosure/pkg/resolve"
	"github.com/matzehuels/mavenclosure/pkg/version"
)

// DefaultRepository is Maven Central.
const DefaultRepository = "https://repo1.maven.org/maven2"

// Fetcher reads descriptors from a repository laid out the Maven way. It
// implements [resolve.Fetcher].
//
// A Fetcher memoizes documents and effective models for its lifetime; create
// one per resolution run so that changes in the repository are picked up
// between runs. It is safe for concurrent use.
type Fetcher struct {
	client  *integrations.Client
	base    string
	refresh bool

	poms     *resolve.Cache[artifact.Coordinate, *pomProject]
	versions *resolve.Cache[string, []string]

	mu     sync.Mutex
	models map[artifact.Coordinate]*model
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRefresh bypasses the persistent cache for reads. Fresh documents are
// still written back.
func WithRefresh(refresh bool) FetcherOption {
	return func(f *Fetcher) { f.refresh = refresh }
}

// NewFetcher creates a Fetcher for the repository at base, which is an
// http(s) URL, a file:// URL or a local directory. An empty base means
// [DefaultRepository].
func NewFetcher(client *integrations.Client, base string, opts ...FetcherOption) *Fetcher {
	if base == "" {
		base = DefaultRepository
	}
	if client == nil {
		client = integrations.NewClient(nil, "maven", 0, nil)
	}
	f := &Fetcher{
		client:   client,
		base:     strings.TrimRight(base, "/"),
		poms:     resolve.NewCache[artifact.Coordinate, *pomProject](),
		versions: resolve.NewCache[string, []string](),
		models:   make(map[artifact.Coordinate]*model),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Base returns the repository location.
func (f *Fetcher) Base() string { return f.base }

// Fetch returns the descriptor of c. A version range in c is resolved to the
// highest available version first; the returned descriptor carries it.
func (f *Fetcher) Fetch(ctx context.Context, c artifact.Coordinate) (*artifact.Descriptor, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	v, err := f.concreteVersion(ctx, c)
	if err != nil {
		return nil, err
	}
	c = c.WithVersion(v)

	m, err := f.model(ctx, c, nil)
	if err != nil {
		return nil, err
	}
	return f.descriptor(ctx, c, m)
}

// ResolveVersion returns the highest available version matching the range in
// c, or c's version if it is not a range.
func (f *Fetcher) ResolveVersion(ctx context.Context, c artifact.Coordinate) (string, error) {
	if err := validate(c); err != nil {
		return "", err
	}
	return f.concreteVersion(ctx, c)
}

func (f *Fetcher) descriptor(ctx context.Context, c artifact.Coordinate, m *model) (*artifact.Descriptor, error) {
	d := &artifact.Descriptor{Coordinate: c}
	if m.parent != nil {
		p := *m.parent
		d.Parent = &p
	}

	for _, md := range m.managed {
		if unresolved(md.GroupID) || unresolved(md.ArtifactID) || md.GroupID == "" || md.ArtifactID == "" {
			continue
		}
		e, err := f.edge(ctx, c, md, false)
		if err != nil {
			return nil, err
		}
		if md.Scope == "" {
			e.Scope = ""
		}
		d.Managed = append(d.Managed, e)
	}

	for _, pd := range m.deps {
		if md, ok := m.managedFor(pd); ok {
			pd = applyManagement(pd, md)
		}
		scope := artifact.ParseScope(pd.Scope)
		optional := strings.EqualFold(pd.Optional, "true")

		if pd.GroupID == "" || pd.ArtifactID == "" || unresolved(pd.GroupID) || unresolved(pd.ArtifactID) {
			if scope.Transitive() && !optional {
				return nil, errors.New(errors.ErrCodeMalformedDescriptor,
					"%s: dependency %s:%s cannot be resolved", c, pd.GroupID, pd.ArtifactID)
			}
			continue
		}
		e, err := f.edge(ctx, c, pd, scope.Transitive())
		if err != nil {
			return nil, err
		}
		e.Scope = scope
		e.Optional = optional
		d.Dependencies = append(d.Dependencies, e)
	}
	return d, nil
}

// edge converts a declaration to an edge. Ranges are resolved when
// resolveRange is set; otherwise they are kept as declared. That happens for
// edges the resolver never follows and for management entries, whose ranges
// the resolver resolves through ResolveVersion when it applies them.
func (f *Fetcher) edge(ctx context.Context, from artifact.Coordinate, pd pomDependency, resolveRange bool) (artifact.Edge, error) {
	to := artifact.Coordinate{
		Group:      pd.GroupID,
		Artifact:   pd.ArtifactID,
		Version:    pd.Version,
		Classifier: pd.Classifier,
		Type:       pd.Type,
	}
	if to.Type == "" {
		to.Type = artifact.DefaultType
	}
	if unresolved(to.Version) {
		to.Version = ""
	}
	if err := validate(to); err != nil {
		return artifact.Edge{}, errors.Wrap(errors.ErrCodeMalformedDescriptor, err, "%s: dependency", from)
	}
	if resolveRange && version.IsRange(to.Version) {
		v, err := f.concreteVersion(ctx, to)
		if err != nil {
			return artifact.Edge{}, err
		}
		to.Version = v
	}

	e := artifact.Edge{From: from, To: to, Scope: artifact.ParseScope(pd.Scope)}
	for _, x := range pd.Exclusions {
		if x.GroupID == "" || unresolved(x.GroupID) || unresolved(x.ArtifactID) {
			continue
		}
		p := artifact.Pattern{Group: x.GroupID, Artifact: x.ArtifactID}
		if p.Artifact == "" {
			p.Artifact = artifact.Wildcard
		}
		e.Exclusions = append(e.Exclusions, p)
	}
	return e, nil
}

// applyManagement fills what a declaration leaves open from its management entry.
func applyManagement(d, m pomDependency) pomDependency {
	if d.Version == "" {
		d.Version = m.Version
	}
	if d.Scope == "" {
		d.Scope = m.Scope
	}
	if d.Optional == "" {
		d.Optional = m.Optional
	}
	if len(m.Exclusions) > 0 {
		d.Exclusions = append(append([]pomExclusion(nil), d.Exclusions...), m.Exclusions...)
	}
	return d
}

// concreteVersion returns c's version, resolving a range against the
// repository's version list.
func (f *Fetcher) concreteVersion(ctx context.Context, c artifact.Coordinate) (string, error) {
	if !version.IsRange(c.Version) {
		return c.Version, nil
	}
	r, err := version.ParseRange(c.Version)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMalformedDescriptor, err, "%s:%s", c.Group, c.Artifact)
	}
	available, err := f.availableVersions(ctx, c.Group, c.Artifact)
	if err != nil {
		return "", err
	}
	v, ok := r.Highest(available)
	if !ok {
		return "", errors.New(errors.ErrCodeNotFound, "no version of %s:%s matches %s", c.Group, c.Artifact, r)
	}
	return v, nil
}

// availableVersions lists the published versions of group:artifact.
func (f *Fetcher) availableVersions(ctx context.Context, group, art string) ([]string, error) {
	return f.versions.GetOrFetch(ctx, group+":"+art, func(ctx context.Context) ([]string, error) {
		loc := integrations.JoinURL(f.base, append(groupPath(group), art, "maven-metadata.xml")...)
		data, err := f.client.Cached(ctx, loc, f.refresh, false)
		if err != nil {
			if stderrors.Is(err, integrations.ErrNotFound) && integrations.IsLocal(f.base) {
				return f.listLocalVersions(group, art)
			}
			return nil, fetchError(err, group+":"+art+" metadata")
		}
		vs, err := parseMetadata(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedDescriptor, err, "parse %s", loc)
		}
		return vs, nil
	})
}

// listLocalVersions reads version directories when a local repository has no
// metadata file, as repositories populated by installs often do.
func (f *Fetcher) listLocalVersions(group, art string) ([]string, error) {
	dir := integrations.LocalPath(integrations.JoinURL(f.base, append(groupPath(group), art)...))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "%s:%s not found", group, art)
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list %s", dir)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	slices.SortFunc(out, version.Compare)
	return out, nil
}

// pom returns the raw POM document of c.
func (f *Fetcher) pom(ctx context.Context, c artifact.Coordinate) (*pomProject, error) {
	c = c.POM()
	return f.poms.GetOrFetch(ctx, c, func(ctx context.Context) (*pomProject, error) {
		loc := f.pomLocation(c)
		// SNAPSHOT documents change in place and are only cached per run.
		data, err := f.client.Cached(ctx, loc, f.refresh, !version.IsSnapshot(c.Version))
		if err != nil {
			return nil, fetchError(err, c.String())
		}
		p, err := parsePOM(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedDescriptor, err, "parse %s", loc)
		}
		return p, nil
	})
}

func (f *Fetcher) pomLocation(c artifact.Coordinate) string {
	elems := append(groupPath(c.Group), c.Artifact, c.Version, c.Artifact+"-"+c.Version+".pom")
	return integrations.JoinURL(f.base, elems...)
}

func groupPath(group string) []string { return strings.Split(group, ".") }

func fetchError(err error, what string) error {
	if stderrors.Is(err, integrations.ErrNotFound) {
		return errors.Wrap(errors.ErrCodeNotFound, err, "%s not found", what)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", what)
}

func validate(c artifact.Coordinate) error {
	for _, seg := range []struct{ kind, value string }{
		{"group", c.Group},
		{"artifact", c.Artifact},
		{"version", c.Version},
		{"classifier", c.Classifier},
		{"type", c.Type},
	} {
		if seg.kind == "version" && version.IsRange(seg.value) {
			continue
		}
		if err := errors.ValidateSegment(seg.kind, seg.value); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ resolve.Fetcher         = (*Fetcher)(nil)
	_ resolve.VersionResolver = (*Fetcher)(nil)
)
