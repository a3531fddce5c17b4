package artifact

import (
	"strings"

	"github.com/matzehuels/mavenclosure/pkg/errors"
)

// DefaultType is the packaging assumed when a dependency declares no type.
const DefaultType = "jar"

// Coordinate addresses one published artifact.
//
// Coordinates are values: copy them freely, never mutate one that has been
// handed to another component. Two coordinates that differ only in Version
// share the same [Key] and are the "same dependency, different version" for
// mediation purposes.
type Coordinate struct {
	Group      string // groupId (e.g., "com.google.guava", never empty in a valid coordinate)
	Artifact   string // artifactId (e.g., "guava", never empty in a valid coordinate)
	Version    string // version (e.g., "32.1.3-jre"; empty only for pending transitive children)
	Classifier string // classifier (e.g., "sources"; usually empty)
	Type       string // packaging type ("jar" when empty)
}

// Key is the version-independent identity of a coordinate.
// It is comparable and is used as a map key throughout resolution.
type Key struct {
	Group      string
	Artifact   string
	Classifier string
	Type       string
}

// New returns a jar coordinate for group:artifact:version.
func New(group, artifact, version string) Coordinate {
	return Coordinate{Group: group, Artifact: artifact, Version: version, Type: DefaultType}
}

// Parse parses "group:artifact[:version[:classifier]]".
//
// The version may be absent; use [ParseRoot] when a version is mandatory.
// Returns an error with code MALFORMED_COORDINATE when the group or artifact
// segment is empty, when there are too many segments, or when a segment
// contains characters that cannot appear in a repository path.
func Parse(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 4 {
		return Coordinate{}, errors.New(errors.ErrCodeMalformedCoordinate,
			"invalid coordinate %q (expected group:artifact:version[:classifier])", s)
	}

	c := Coordinate{Group: parts[0], Artifact: parts[1], Type: DefaultType}
	if len(parts) > 2 {
		c.Version = parts[2]
	}
	if len(parts) > 3 {
		c.Classifier = parts[3]
		if c.Classifier == "" {
			return Coordinate{}, errors.New(errors.ErrCodeMalformedCoordinate,
				"invalid coordinate %q: empty classifier", s)
		}
	}

	if c.Group == "" {
		return Coordinate{}, errors.New(errors.ErrCodeMalformedCoordinate, "invalid coordinate %q: empty group", s)
	}
	if c.Artifact == "" {
		return Coordinate{}, errors.New(errors.ErrCodeMalformedCoordinate, "invalid coordinate %q: empty artifact", s)
	}
	if err := c.validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// ParseRoot parses a root coordinate, which must carry a version.
func ParseRoot(s string) (Coordinate, error) {
	c, err := Parse(s)
	if err != nil {
		return Coordinate{}, err
	}
	if c.Version == "" {
		return Coordinate{}, errors.New(errors.ErrCodeMalformedCoordinate,
			"invalid coordinate %q: missing version", s)
	}
	return c, nil
}

func (c Coordinate) validate() error {
	for _, seg := range []struct{ kind, value string }{
		{"group", c.Group},
		{"artifact", c.Artifact},
		{"version", c.Version},
		{"classifier", c.Classifier},
		{"type", c.Type},
	} {
		if err := errors.ValidateSegment(seg.kind, seg.value); err != nil {
			return err
		}
	}
	return nil
}

// Key returns the identity of c with the version dropped.
// An empty type is normalized to [DefaultType].
func (c Coordinate) Key() Key {
	t := c.Type
	if t == "" {
		t = DefaultType
	}
	return Key{Group: c.Group, Artifact: c.Artifact, Classifier: c.Classifier, Type: t}
}

// WithVersion returns a copy of c carrying version v.
func (c Coordinate) WithVersion(v string) Coordinate {
	c.Version = v
	return c
}

// POM returns the coordinate of the descriptor document that describes c.
// All classifiers and types of one group:artifact:version share a POM.
func (c Coordinate) POM() Coordinate {
	return Coordinate{Group: c.Group, Artifact: c.Artifact, Version: c.Version, Type: "pom"}
}

// String formats c as "group:artifact:version[:classifier]", the same form
// [Parse] accepts. The type is not part of the textual form.
func (c Coordinate) String() string {
	var b strings.Builder
	b.WriteString(c.Group)
	b.WriteByte(':')
	b.WriteString(c.Artifact)
	if c.Version != "" || c.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(c.Version)
	}
	if c.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(c.Classifier)
	}
	return b.String()
}

// String formats k as "group:artifact[:classifier]", adding "@type" for
// anything other than jars.
func (k Key) String() string {
	s := k.Group + ":" + k.Artifact
	if k.Classifier != "" {
		s += ":" + k.Classifier
	}
	if k.Type != "" && k.Type != DefaultType {
		s += "@" + k.Type
	}
	return s
}
