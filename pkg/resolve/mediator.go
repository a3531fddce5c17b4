package resolve

import (
	"slices"

	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/version"
)

// Observation is one request for a version of an artifact, recorded when the
// resolver follows an edge.
type Observation struct {
	Version string
	Depth   int // edges from the root; direct dependencies have depth 1
	From    artifact.Coordinate
	Scope   artifact.Scope
}

// Graph maps each identity key to the requests recorded for it, in the
// order they were recorded.
type Graph map[artifact.Key][]Observation

// Record appends an observation for k.
func (g Graph) Record(k artifact.Key, o Observation) {
	g[k] = append(g[k], o)
}

// Mediator selects one version per identity key: nearest wins, ties go to
// the highest version.
type Mediator struct{}

// Select returns the winning observation. Among equally near requests for
// the same version the first recorded one is returned. obs must not be empty.
func (Mediator) Select(obs []Observation) Observation {
	best := obs[0]
	for _, o := range obs[1:] {
		switch {
		case o.Depth < best.Depth:
			best = o
		case o.Depth == best.Depth && version.Compare(o.Version, best.Version) > 0:
			best = o
		}
	}
	return best
}

// Mediate selects a winner for every key in g.
func (m Mediator) Mediate(g Graph) map[artifact.Key]Observation {
	out := make(map[artifact.Key]Observation, len(g))
	for k, obs := range g {
		if len(obs) == 0 {
			continue
		}
		out[k] = m.Select(obs)
	}
	return out
}

// Losers returns the distinct versions requested for a key other than
// winner, sorted ascending.
func (Mediator) Losers(obs []Observation, winner string) []string {
	var out []string
	for _, o := range obs {
		if o.Version != winner && !slices.Contains(out, o.Version) {
			out = append(out, o.Version)
		}
	}
	slices.SortFunc(out, version.Compare)
	return out
}
