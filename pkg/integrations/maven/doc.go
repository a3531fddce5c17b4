// Package maven reads artifact descriptors (POMs) from a Maven repository.
//
// # Overview
//
// [Fetcher] implements [resolve.Fetcher] on top of the standard repository
// layout:
//
//	<base>/<group with dots as slashes>/<artifact>/<version>/<artifact>-<version>.pom
//	<base>/<group with dots as slashes>/<artifact>/maven-metadata.xml
//
// The base may be an http(s) URL such as [DefaultRepository], a file:// URL
// or a plain directory.
//
// # Usage
//
//	client := integrations.NewClient(c, "maven", 24*time.Hour, nil)
//	fetcher := maven.NewFetcher(client, maven.DefaultRepository)
//	desc, err := fetcher.Fetch(ctx, artifact.New("com.google.guava", "guava", "32.1.3-jre"))
//
// # Effective Model
//
// A descriptor is built from the effective model of a POM:
//
//   - Parents are read through <parent> and contribute properties,
//     dependencies and dependencyManagement. Declarations in the child win.
//   - ${...} references are expanded from <properties>, project.groupId,
//     project.artifactId, project.version, project.parent.* and the legacy
//     pom.* and bare forms. Unknown references are left unexpanded.
//   - dependencyManagement fills missing versions, scopes and exclusions.
//     Entries with scope import pull in the management section of a BOM.
//   - Version ranges are resolved to the highest version listed in
//     maven-metadata.xml. Local repositories without metadata fall back to
//     listing version directories.
//
// # Errors
//
// Errors carry the codes NOT_FOUND, NETWORK_ERROR and MALFORMED_DESCRIPTOR
// from package errors. A dependency whose group or artifact stays
// unresolved is malformed; one whose version stays unresolved gets an
// empty version, which the resolver reports if it follows the edge.
//
// # Caching
//
// Raw documents go through the [integrations.Client] cache. SNAPSHOT POMs
// and version metadata change in place and are never persisted. Within a
// Fetcher every document and model is read once.
package maven
