package maven

import (
	"context"
	"strings"

	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/errors"
)

// maxInterpolationDepth bounds nested ${...} expansion.
const maxInterpolationDepth = 10

// maxParentDepth bounds the length of a parent chain.
const maxParentDepth = 64

// model is a POM with parent inheritance, property interpolation and BOM
// imports applied. Models are immutable once built.
type model struct {
	coord   artifact.Coordinate // groupId:artifactId:version of the POM
	parent  *artifact.Coordinate
	props   map[string]string
	deps    []pomDependency
	managed []pomDependency // own and inherited entries first, then imported BOM entries
}

// managedFor returns the first management entry declared for d.
func (m *model) managedFor(d pomDependency) (pomDependency, bool) {
	k := d.mergeKey()
	for _, e := range m.managed {
		if e.mergeKey() == k {
			return e, true
		}
	}
	return pomDependency{}, false
}

// model returns the effective model of the POM at c. chain holds the BOMs
// currently being imported, to detect import cycles.
func (f *Fetcher) model(ctx context.Context, c artifact.Coordinate, chain []artifact.Coordinate) (*model, error) {
	c = c.POM()
	f.mu.Lock()
	m, ok := f.models[c]
	f.mu.Unlock()
	if ok {
		return m, nil
	}

	m, err := f.buildModel(ctx, c, chain)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if prev, ok := f.models[c]; ok {
		m = prev
	} else {
		f.models[c] = m
	}
	f.mu.Unlock()
	return m, nil
}

func (f *Fetcher) buildModel(ctx context.Context, c artifact.Coordinate, chain []artifact.Coordinate) (*model, error) {
	lineage, err := f.lineage(ctx, c)
	if err != nil {
		return nil, err
	}
	child := lineage[0]

	m := &model{props: make(map[string]string)}
	// Ancestors first so that descendants override.
	for i := len(lineage) - 1; i >= 0; i-- {
		p := lineage[i]
		for k, v := range p.Properties {
			m.props[k] = v
		}
		m.deps = inherit(p.Dependencies, m.deps)
		m.managed = inherit(p.DependencyManagement, m.managed)
	}

	m.coord = artifact.Coordinate{
		Group:    inheritedGroup(child),
		Artifact: child.ArtifactID,
		Version:  inheritedVersion(child),
		Type:     "pom",
	}
	if child.Parent != nil {
		pc := artifact.Coordinate{Group: child.Parent.GroupID, Artifact: child.Parent.ArtifactID, Version: child.Parent.Version, Type: "pom"}
		m.parent = &pc
	}
	m.coord.Group = m.interpolate(m.coord.Group)
	m.coord.Version = m.interpolate(m.coord.Version)

	for k, v := range m.props {
		m.props[k] = m.interpolate(v)
	}
	for i := range m.deps {
		m.deps[i] = m.interpolateDep(m.deps[i])
	}
	for i := range m.managed {
		m.managed[i] = m.interpolateDep(m.managed[i])
	}

	if err := f.importBOMs(ctx, m, append(chain, c)); err != nil {
		return nil, err
	}
	return m, nil
}

// lineage returns the raw POM at c followed by its ancestors.
func (f *Fetcher) lineage(ctx context.Context, c artifact.Coordinate) ([]*pomProject, error) {
	p, err := f.pom(ctx, c)
	if err != nil {
		return nil, err
	}
	lineage := []*pomProject{p}
	seen := map[artifact.Coordinate]bool{c: true}

	for p.Parent != nil {
		if len(lineage) > maxParentDepth {
			return nil, errors.New(errors.ErrCodeMalformedDescriptor, "%s: parent chain deeper than %d", c, maxParentDepth)
		}
		pc, err := f.parentCoordinate(ctx, c, p.Parent)
		if err != nil {
			if errors.Is(err, errors.ErrCodeMalformedDescriptor) {
				return nil, err
			}
			return nil, errors.Wrap(errors.ErrCodeMalformedDescriptor, err,
				"%s: parent %s:%s", c, p.Parent.GroupID, p.Parent.ArtifactID)
		}
		if seen[pc] {
			return nil, errors.New(errors.ErrCodeMalformedDescriptor, "%s: parent cycle at %s", c, pc)
		}
		seen[pc] = true

		parent, err := f.pom(ctx, pc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedDescriptor, err, "%s: parent %s", c, pc)
		}
		lineage = append(lineage, parent)
		p = parent
	}
	return lineage, nil
}

func (f *Fetcher) parentCoordinate(ctx context.Context, child artifact.Coordinate, p *pomParent) (artifact.Coordinate, error) {
	if p.GroupID == "" || p.ArtifactID == "" || p.Version == "" ||
		unresolved(p.GroupID) || unresolved(p.ArtifactID) || unresolved(p.Version) {
		return artifact.Coordinate{}, errors.New(errors.ErrCodeMalformedDescriptor,
			"%s: incomplete parent %s:%s:%s", child, p.GroupID, p.ArtifactID, p.Version)
	}
	pc := artifact.Coordinate{Group: p.GroupID, Artifact: p.ArtifactID, Version: p.Version, Type: "pom"}
	v, err := f.concreteVersion(ctx, pc)
	if err != nil {
		return artifact.Coordinate{}, err
	}
	return pc.WithVersion(v), nil
}

// importBOMs replaces scope=import management entries with the management
// entries of the imported POMs, appended after the model's own entries.
func (f *Fetcher) importBOMs(ctx context.Context, m *model, chain []artifact.Coordinate) error {
	var own, imports []pomDependency
	for _, d := range m.managed {
		if d.Scope == string(artifact.ScopeImport) && (d.Type == "pom" || d.Type == "") {
			imports = append(imports, d)
			continue
		}
		own = append(own, d)
	}
	if len(imports) == 0 {
		return nil
	}

	m.managed = own
	for _, d := range imports {
		if d.Version == "" || unresolved(d.GroupID) || unresolved(d.ArtifactID) || unresolved(d.Version) {
			return errors.New(errors.ErrCodeMalformedDescriptor,
				"%s: cannot import %s:%s:%s", m.coord, d.GroupID, d.ArtifactID, d.Version)
		}
		bc := artifact.Coordinate{Group: d.GroupID, Artifact: d.ArtifactID, Version: d.Version, Type: "pom"}
		if err := validate(bc); err != nil {
			return errors.Wrap(errors.ErrCodeMalformedDescriptor, err, "%s: import", m.coord)
		}
		v, err := f.concreteVersion(ctx, bc)
		if err != nil {
			if errors.Is(err, errors.ErrCodeMalformedDescriptor) {
				return err
			}
			return errors.Wrap(errors.ErrCodeMalformedDescriptor, err, "%s: import %s:%s", m.coord, d.GroupID, d.ArtifactID)
		}
		bc = bc.WithVersion(v)
		for _, prev := range chain {
			if prev == bc {
				return errors.New(errors.ErrCodeMalformedDescriptor, "%s: import cycle at %s", m.coord, bc)
			}
		}

		bom, err := f.model(ctx, bc, chain)
		if err != nil {
			return errors.Wrap(errors.ErrCodeMalformedDescriptor, err, "%s: import %s", m.coord, bc)
		}
		m.managed = inherit(m.managed, bom.managed)
	}
	return nil
}

// inherit returns own followed by the entries of inherited that own does not
// redeclare.
func inherit(own, inherited []pomDependency) []pomDependency {
	if len(inherited) == 0 {
		return append([]pomDependency(nil), own...)
	}
	declared := make(map[string]bool, len(own))
	out := make([]pomDependency, 0, len(own)+len(inherited))
	for _, d := range own {
		declared[d.mergeKey()] = true
		out = append(out, d)
	}
	for _, d := range inherited {
		if !declared[d.mergeKey()] {
			out = append(out, d)
		}
	}
	return out
}

func inheritedGroup(p *pomProject) string {
	if p.GroupID == "" && p.Parent != nil {
		return p.Parent.GroupID
	}
	return p.GroupID
}

func inheritedVersion(p *pomProject) string {
	if p.Version == "" && p.Parent != nil {
		return p.Parent.Version
	}
	return p.Version
}

func (m *model) interpolateDep(d pomDependency) pomDependency {
	d.GroupID = m.interpolate(d.GroupID)
	d.ArtifactID = m.interpolate(d.ArtifactID)
	d.Version = m.interpolate(d.Version)
	d.Classifier = m.interpolate(d.Classifier)
	d.Type = m.interpolate(d.Type)
	d.Scope = m.interpolate(d.Scope)
	d.Optional = m.interpolate(d.Optional)
	if len(d.Exclusions) > 0 {
		ex := make([]pomExclusion, len(d.Exclusions))
		for i, e := range d.Exclusions {
			ex[i] = pomExclusion{GroupID: m.interpolate(e.GroupID), ArtifactID: m.interpolate(e.ArtifactID)}
		}
		d.Exclusions = ex
	}
	return d
}

// interpolate expands ${...} references. Unknown references are left in place.
func (m *model) interpolate(s string) string {
	for range maxInterpolationDepth {
		if !strings.Contains(s, "${") {
			return s
		}
		out, changed := m.expandOnce(s)
		if !changed {
			return out
		}
		s = out
	}
	return s
}

func (m *model) expandOnce(s string) (string, bool) {
	var b strings.Builder
	changed := false
	for {
		i := strings.Index(s, "${")
		if i < 0 {
			break
		}
		j := strings.IndexByte(s[i:], '}')
		if j < 0 {
			break
		}
		b.WriteString(s[:i])
		if v, ok := m.lookup(s[i+2 : i+j]); ok {
			b.WriteString(v)
			changed = true
		} else {
			b.WriteString(s[i : i+j+1])
		}
		s = s[i+j+1:]
	}
	b.WriteString(s)
	return b.String(), changed
}

func (m *model) lookup(name string) (string, bool) {
	name = strings.TrimSpace(name)
	switch strings.TrimPrefix(strings.TrimPrefix(name, "project."), "pom.") {
	case "groupId":
		return m.coord.Group, m.coord.Group != ""
	case "artifactId":
		return m.coord.Artifact, m.coord.Artifact != ""
	case "version":
		return m.coord.Version, m.coord.Version != ""
	case "parent.groupId":
		if m.parent != nil {
			return m.parent.Group, true
		}
	case "parent.artifactId":
		if m.parent != nil {
			return m.parent.Artifact, true
		}
	case "parent.version":
		if m.parent != nil {
			return m.parent.Version, true
		}
	}
	v, ok := m.props[name]
	return v, ok
}

func unresolved(s string) bool { return strings.Contains(s, "${") }
