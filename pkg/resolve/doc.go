// Package resolve computes the transitive dependency closure of an artifact.
//
// # Overview
//
// A [Resolver] walks the dependency graph of a root coordinate, discovering
// each node's children by fetching its descriptor through a [Fetcher]. The
// walk honours caller [Constraints] (exclusions, the optional allowlist and
// the compile/runtime scope rule), collects every requested version in a
// [Graph], and lets the [Mediator] pick one version per identity key.
//
//	r := resolve.New(fetcher, resolve.Options{Workers: 8})
//	res, err := r.Resolve(ctx, root, resolve.Constraints{
//	    Excluded: []artifact.Pattern{{Group: "commons-logging", Artifact: "*"}},
//	})
//	for _, line := range res.Lines() {
//	    fmt.Println(line)
//	}
//
// # Traversal
//
// Traversal is breadth-first, one depth level at a time. The descriptors of
// a level are fetched concurrently by a bounded pool; the edges are then
// processed sequentially in level order and declaration order, so the
// outcome does not depend on fetch timing or on the pool size.
//
// A key settled at a shallower depth is never expanded again, and among the
// requests that first reach a key at the same depth the highest version is
// expanded. Subtrees of losing versions are therefore never visited, and
// every artifact in the result is reachable from the root through winners.
//
// Edges that point back at a key already on the path to the root are
// skipped. Cycles terminate expansion; they are not errors.
//
// # Mediation
//
// Nearest wins: the version requested closest to the root is selected. Ties
// on depth go to the highest version (see package version for ordering).
//
// # Failures
//
// The first NOT_FOUND, NETWORK_ERROR or MALFORMED_DESCRIPTOR aborts the run
// and cancels the fetches still in flight. A partial closure is never
// returned. The resolver does not retry; transport retries, if any, belong
// to the fetcher.
//
// # Caching
//
// Each call to [Resolver.Resolve] creates a fresh descriptor [Cache], so a
// coordinate is fetched at most once per run and concurrent requests for it
// share a single fetch. Nothing is carried over between runs.
package resolve
