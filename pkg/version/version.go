// Package version orders artifact version strings and evaluates version ranges.
//
// # Ordering
//
// [Compare] implements dotted-numeric ordering:
//
//   - Segments are compared numerically when both sides are numeric,
//     otherwise lexically ("1.10.0" > "1.2.0").
//   - Missing trailing segments count as zero ("1.0" == "1.0.0").
//   - A qualifier suffix sorts below the corresponding release
//     ("1.0.0-SNAPSHOT" < "1.0.0", "31.1-jre" < "31.1").
//
// Versions that parse as semantic versions are compared with
// github.com/Masterminds/semver/v3; anything else (four numeric segments,
// odd qualifiers) falls back to an equivalent segment-wise comparison.
//
// # Ranges
//
// [ParseRange] understands Maven range syntax: "[1.0,2.0)", "[1.5,)",
// "(,1.0]", "[1.2]" and unions such as "(,1.0],[1.2,)".
package version

import (
	"cmp"
	"strconv"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Compare compares a and b, returning:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
//
// Equal versions may still differ textually ("1.0" and "1.0.0"); callers that
// need a total order should break ties with the raw strings.
func Compare(a, b string) int {
	if a == b {
		return 0
	}
	va, errA := mm.NewVersion(a)
	vb, errB := mm.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return compareSegments(a, b)
}

// Less reports whether a sorts strictly below b, using the raw strings as a
// tiebreak so that the order is total.
func Less(a, b string) bool {
	if c := Compare(a, b); c != 0 {
		return c < 0
	}
	return a < b
}

// Max returns the highest of the given versions, or "" when none are given.
func Max(versions ...string) string {
	best := ""
	for i, v := range versions {
		if i == 0 || Less(best, v) {
			best = v
		}
	}
	return best
}

// IsSnapshot reports whether v is a mutable development version.
func IsSnapshot(v string) bool {
	return strings.HasSuffix(strings.ToUpper(v), "-SNAPSHOT")
}

// compareSegments is the fallback ordering for versions Masterminds rejects.
func compareSegments(a, b string) int {
	relA, qualA := splitQualifier(a)
	relB, qualB := splitQualifier(b)

	segA := strings.Split(relA, ".")
	segB := strings.Split(relB, ".")
	for i := range max(len(segA), len(segB)) {
		if c := compareSegment(segmentAt(segA, i), segmentAt(segB, i)); c != 0 {
			return c
		}
	}

	switch {
	case qualA == "" && qualB == "":
		return 0
	case qualA == "":
		return 1
	case qualB == "":
		return -1
	}

	partsA := strings.Split(qualA, ".")
	partsB := strings.Split(qualB, ".")
	for i := range min(len(partsA), len(partsB)) {
		if c := compareSegment(partsA[i], partsB[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(partsA), len(partsB))
}

func splitQualifier(v string) (release, qualifier string) {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexByte(v, '+'); i >= 0 {
		v = v[:i]
	}
	if i := strings.IndexByte(v, '-'); i >= 0 {
		return v[:i], v[i+1:]
	}
	return v, ""
}

func segmentAt(segs []string, i int) string {
	if i < len(segs) && segs[i] != "" {
		return segs[i]
	}
	return "0"
}

// compareSegment orders numeric segments numerically and below alphanumeric ones.
func compareSegment(a, b string) int {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return cmp.Compare(a, b)
}
