// Package pkg holds the mavenclosure libraries.
//
// # Overview
//
// mavenclosure computes the transitive dependency closure of Maven artifacts.
// The libraries are organized by concern:
//
//  1. [artifact] - Coordinates, identity keys, scopes, exclusion patterns
//  2. [version] - Maven version ordering and version ranges
//  3. [integrations] - Repository access (HTTP or local) with response caching
//  4. [resolve] - The resolver, descriptor cache and conflict mediator
//  5. [render] - Output formats (lines, tree, JSON, DOT, SVG)
//
// # Architecture
//
// The data flow for one root:
//
//	root coordinate + constraints
//	         ↓
//	    [resolve] breadth-first walk, one fetch per descriptor
//	         ↓
//	    [integrations/maven] POM, parent chain, BOMs, properties
//	         ↓
//	    [resolve] nearest-wins mediation, sorted result
//	         ↓
//	    [render] lines / tree / JSON / DOT / SVG
//
// Supporting packages: [cache] (file, memory, Redis backends), [dag] (the
// resolved tree as a layered graph), [io] (JSON export), [errors]
// (structured error codes), [observability] (hooks) and [buildinfo].
//
// [artifact]: github.com/matzehuels/mavenclosure/pkg/artifact
// [version]: github.com/matzehuels/mavenclosure/pkg/version
// [integrations]: github.com/matzehuels/mavenclosure/pkg/integrations
// [integrations/maven]: github.com/matzehuels/mavenclosure/pkg/integrations/maven
// [resolve]: github.com/matzehuels/mavenclosure/pkg/resolve
// [render]: github.com/matzehuels/mavenclosure/pkg/render
// [cache]: github.com/matzehuels/mavenclosure/pkg/cache
// [dag]: github.com/matzehuels/mavenclosure/pkg/dag
// [io]: github.com/matzehuels/mavenclosure/pkg/io
// [errors]: github.com/matzehuels/mavenclosure/pkg/errors
// [observability]: github.com/matzehuels/mavenclosure/pkg/observability
// [buildinfo]: github.com/matzehuels/mavenclosure/pkg/buildinfo
package pkg
