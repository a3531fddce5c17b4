package maven

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// pomProject is the subset of a POM document the resolver reads. Values are
// raw: inheritance and interpolation happen in [model].
type pomProject struct {
	XMLName              xml.Name        `xml:"project"`
	GroupID              string          `xml:"groupId"`
	ArtifactID           string          `xml:"artifactId"`
	Version              string          `xml:"version"`
	Packaging            string          `xml:"packaging"`
	Parent               *pomParent      `xml:"parent"`
	Properties           pomProperties   `xml:"properties"`
	DependencyManagement []pomDependency `xml:"dependencyManagement>dependencies>dependency"`
	Dependencies         []pomDependency `xml:"dependencies>dependency"`
}

type pomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomDependency struct {
	GroupID    string         `xml:"groupId"`
	ArtifactID string         `xml:"artifactId"`
	Version    string         `xml:"version"`
	Classifier string         `xml:"classifier"`
	Type       string         `xml:"type"`
	Scope      string         `xml:"scope"`
	Optional   string         `xml:"optional"`
	Exclusions []pomExclusion `xml:"exclusions>exclusion"`
}

type pomExclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// mergeKey identifies a declaration for inheritance and management lookups.
func (d pomDependency) mergeKey() string {
	t := d.Type
	if t == "" {
		t = "jar"
	}
	return d.GroupID + ":" + d.ArtifactID + ":" + t + ":" + d.Classifier
}

// pomProperties collects <properties> children into a map keyed by element name.
type pomProperties map[string]string

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	props := make(map[string]string)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			props[t.Name.Local] = strings.TrimSpace(v)
		case xml.EndElement:
			*p = props
			return nil
		}
	}
}

// parsePOM decodes a POM document.
func parsePOM(data []byte) (*pomProject, error) {
	var p pomProject
	if err := decodeXML(data, &p); err != nil {
		return nil, err
	}
	p.GroupID = strings.TrimSpace(p.GroupID)
	p.ArtifactID = strings.TrimSpace(p.ArtifactID)
	p.Version = strings.TrimSpace(p.Version)
	if p.Parent != nil {
		p.Parent.GroupID = strings.TrimSpace(p.Parent.GroupID)
		p.Parent.ArtifactID = strings.TrimSpace(p.Parent.ArtifactID)
		p.Parent.Version = strings.TrimSpace(p.Parent.Version)
	}
	trimDeps(p.Dependencies)
	trimDeps(p.DependencyManagement)
	return &p, nil
}

func trimDeps(deps []pomDependency) {
	for i := range deps {
		d := &deps[i]
		d.GroupID = strings.TrimSpace(d.GroupID)
		d.ArtifactID = strings.TrimSpace(d.ArtifactID)
		d.Version = strings.TrimSpace(d.Version)
		d.Classifier = strings.TrimSpace(d.Classifier)
		d.Type = strings.TrimSpace(d.Type)
		d.Scope = strings.TrimSpace(d.Scope)
		d.Optional = strings.TrimSpace(d.Optional)
		for j := range d.Exclusions {
			d.Exclusions[j].GroupID = strings.TrimSpace(d.Exclusions[j].GroupID)
			d.Exclusions[j].ArtifactID = strings.TrimSpace(d.Exclusions[j].ArtifactID)
		}
	}
}

func decodeXML(data []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader
	// Older POMs carry HTML entities such as &nbsp; in descriptions.
	dec.Entity = xml.HTMLEntity
	return dec.Decode(v)
}

// charsetReader handles the legacy encodings found on Maven Central besides UTF-8.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	case "us-ascii", "ascii":
		return input, nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}

// repositoryMetadata is maven-metadata.xml at the group:artifact level.
type repositoryMetadata struct {
	XMLName    xml.Name `xml:"metadata"`
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

func parseMetadata(data []byte) ([]string, error) {
	var m repositoryMetadata
	if err := decodeXML(data, &m); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(m.Versioning.Versions))
	for _, v := range m.Versioning.Versions {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}
