package resolve

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/errors"
)

func assertLines(t *testing.T, got []string, want ...string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("resolved:\n  %s\nwant:\n  %s", strings.Join(got, "\n  "), strings.Join(want, "\n  "))
	}
}

func TestResolveChain(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1", dep("lib:a:1"))
	repo.add("lib:a:1", dep("lib:b:2"))
	repo.add("lib:b:2")

	got, err := resolveLines(repo, "app:root:1", Constraints{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "lib:a:1", "lib:b:2")
}

func TestResolveSortsOutput(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1", dep("z:z:1"), dep("a:b:1"), dep("a:a:1"))
	repo.add("z:z:1")
	repo.add("a:b:1")
	repo.add("a:a:1")

	got, err := resolveLines(repo, "app:root:1", Constraints{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "a:a:1", "a:b:1", "z:z:1")
}

func TestNearestWins(t *testing.T) {
	for _, xFirst := range []bool{true, false} {
		t.Run(fmt.Sprintf("xFirst=%v", xFirst), func(t *testing.T) {
			repo := newRepo()
			if xFirst {
				repo.add("app:root:1", dep("g:x:1"), dep("g:y:2"))
			} else {
				repo.add("app:root:1", dep("g:y:2"), dep("g:x:1"))
			}
			repo.add("g:x:1", dep("g:y:1"))
			repo.add("g:y:1", dep("g:only-in-y1:1"))
			repo.add("g:y:2")

			got, err := resolveLines(repo, "app:root:1", Constraints{}, Options{})
			if err != nil {
				t.Fatal(err)
			}
			assertLines(t, got, "g:x:1", "g:y:2")
			if repo.callsFor("g:y:1") != 0 {
				t.Error("losing version should never be expanded")
			}
		})
	}
}

func TestTieGoesToHighestVersion(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1", dep("g:a:1"), dep("g:b:1"))
	repo.add("g:a:1", dep("g:z:1.2.0"))
	repo.add("g:b:1", dep("g:z:1.10.0"))
	repo.add("g:z:1.10.0")

	got, err := resolveLines(repo, "app:root:1", Constraints{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "g:a:1", "g:b:1", "g:z:1.10.0")
}

func TestGroupWildcardExclusion(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1", dep("g:a:1"), dep("com.example:direct:1"))
	repo.add("g:a:1", dep("com.example:lib:1"), dep("com.example:direct:1"))
	repo.add("com.example:lib:1", dep("g:under-excluded:1"))
	repo.add("com.example:direct:1")

	c, err := NewConstraints([]string{"com.example:*"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := resolveLines(repo, "app:root:1", c, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "g:a:1")
}

func TestOptionalRequiresAllowlist(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1", dep("g:a:1"))
	repo.add("g:a:1", optional(dep("org.foo:bar:1")))
	repo.add("org.foo:bar:1", dep("org.foo:bar-dep:1"))
	repo.add("org.foo:bar-dep:1")

	got, err := resolveLines(repo, "app:root:1", Constraints{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "g:a:1")

	c, _ := NewConstraints(nil, []string{"org.foo:bar"})
	got, err = resolveLines(repo, "app:root:1", c, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "g:a:1", "org.foo:bar:1", "org.foo:bar-dep:1")
}

func TestOnlyCompileAndRuntimePropagate(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1",
		dep("g:compile:1"),
		scoped(dep("g:runtime:1"), artifact.ScopeRuntime),
		scoped(dep("g:test:1"), artifact.ScopeTest),
		scoped(dep("g:provided:1"), artifact.ScopeProvided),
		scoped(dep("g:system:1"), artifact.ScopeSystem),
	)
	repo.add("g:compile:1", scoped(dep("g:compile-test:1"), artifact.ScopeTest))
	repo.add("g:runtime:1", dep("g:runtime-child:1"))
	repo.add("g:runtime-child:1")
	repo.add("g:test:1", dep("g:test-child:1"))

	r := New(repo, Options{})
	res, err := r.Resolve(context.Background(), mustCoord("app:root:1"), Constraints{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, res.Lines(), "g:compile:1", "g:runtime:1", "g:runtime-child:1")

	for _, a := range res.Artifacts {
		if a.Artifact == "runtime-child" && a.Scope != artifact.ScopeRuntime {
			t.Errorf("compile dependency below a runtime edge should be runtime, got %q", a.Scope)
		}
	}
	if repo.callsFor("g:test:1") != 0 {
		t.Error("test-scoped dependency should not be fetched")
	}
}

func TestCycleTerminates(t *testing.T) {
	repo := newRepo()
	repo.add("g:a:1", dep("g:b:1"))
	repo.add("g:b:1", dep("g:a:1"), dep("g:c:1"))
	repo.add("g:c:1", dep("g:b:1"))

	done := make(chan struct{})
	var got []string
	var err error
	go func() {
		defer close(done)
		got, err = resolveLines(repo, "g:a:1", Constraints{}, Options{})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("resolution did not terminate")
	}
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "g:b:1", "g:c:1")
}

func TestRootNeverInResult(t *testing.T) {
	repo := newRepo()
	repo.add("g:root:1", dep("g:a:1"))
	repo.add("g:a:1", dep("g:root:2"))

	got, err := resolveLines(repo, "g:root:1", Constraints{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "g:a:1")
}

func TestEdgeExclusionsPruneSubtree(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1", excluding(dep("g:a:1"), "log:*"))
	repo.add("g:a:1", dep("g:b:1"))
	repo.add("g:b:1", dep("log:api:1"), dep("g:c:1"))
	repo.add("g:c:1")

	got, err := resolveLines(repo, "app:root:1", Constraints{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "g:a:1", "g:b:1", "g:c:1")
}

func TestEqualDepthPathsShareOnlyCommonExclusions(t *testing.T) {
	build := func(secondExcludes bool) *fakeRepo {
		repo := newRepo()
		repo.add("app:root:1", dep("g:p1:1"), dep("g:p2:1"))
		repo.add("g:p1:1", excluding(dep("g:s:1"), "t:*"))
		if secondExcludes {
			repo.add("g:p2:1", excluding(dep("g:s:1"), "t:t"))
		} else {
			repo.add("g:p2:1", dep("g:s:1"))
		}
		repo.add("g:s:1", dep("t:t:1"))
		repo.add("t:t:1")
		return repo
	}

	got, err := resolveLines(build(false), "app:root:1", Constraints{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "g:p1:1", "g:p2:1", "g:s:1", "t:t:1")

	got, err = resolveLines(build(true), "app:root:1", Constraints{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "g:p1:1", "g:p2:1", "g:s:1")
}

func TestRootDependencyManagement(t *testing.T) {
	repo := newRepo()
	root := repo.add("app:root:1", dep("g:a:1"), dep("g:direct:1"))
	root.Managed = []artifact.Edge{
		{To: mustCoord("g:z:2.0")},
		{To: mustCoord("g:direct:9")},
		{To: mustCoord("g:t:1"), Scope: artifact.ScopeTest},
		{To: mustCoord("g:w:1"), Exclusions: []artifact.Pattern{{Group: "x", Artifact: "*"}}},
	}
	repo.add("g:a:1", dep("g:z:1.0"), dep("g:t:1"), dep("g:w:1"))
	repo.add("g:z:2.0")
	repo.add("g:direct:1")
	repo.add("g:w:1", dep("x:x:1"))

	got, err := resolveLines(repo, "app:root:1", Constraints{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "g:a:1", "g:direct:1", "g:w:1", "g:z:2.0")
	if repo.callsFor("g:z:1.0") != 0 {
		t.Error("managed-away version should not be fetched")
	}
}

// rangeRepo picks concrete versions for ranges from a fixed table.
type rangeRepo struct {
	*fakeRepo
	ranges map[string]string
}

func (r rangeRepo) ResolveVersion(_ context.Context, c artifact.Coordinate) (string, error) {
	if v, ok := r.ranges[gav(c)]; ok {
		return v, nil
	}
	return "", errors.New(errors.ErrCodeNotFound, "no version of %s", gav(c))
}

func TestManagedRanges(t *testing.T) {
	build := func() *fakeRepo {
		repo := newRepo()
		root := repo.add("app:root:1", dep("g:a:1"))
		root.Managed = []artifact.Edge{
			{To: mustCoord("g:z:[2,3)")},
			{To: mustCoord("g:unused:[1,2)")},
		}
		repo.add("g:a:1", dep("g:z:1.0"))
		repo.add("g:z:2.5")
		return repo
	}

	t.Run("resolver", func(t *testing.T) {
		repo := rangeRepo{fakeRepo: build(), ranges: map[string]string{"g:z:[2,3)": "2.5"}}
		root, _ := artifact.ParseRoot("app:root:1")
		res, err := New(repo, Options{}).Resolve(context.Background(), root, Constraints{})
		if err != nil {
			t.Fatal(err)
		}
		assertLines(t, res.Lines(), "g:a:1", "g:z:2.5")
	})

	t.Run("fetch fallback", func(t *testing.T) {
		repo := build()
		repo.descs["g:z:[2,3)"] = repo.descs["g:z:2.5"]
		got, err := resolveLines(repo, "app:root:1", Constraints{}, Options{})
		if err != nil {
			t.Fatal(err)
		}
		assertLines(t, got, "g:a:1", "g:z:2.5")
		if repo.callsFor("g:unused:[1,2)") != 0 {
			t.Error("unused managed range should not be resolved")
		}
	})

	t.Run("failure on use", func(t *testing.T) {
		repo := rangeRepo{fakeRepo: build()}
		root, _ := artifact.ParseRoot("app:root:1")
		_, err := New(repo, Options{}).Resolve(context.Background(), root, Constraints{})
		if !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("err = %v, want NOT_FOUND", err)
		}
	})
}

func TestLinesDistinguishTypes(t *testing.T) {
	repo := newRepo()
	asPOM := dep("g:x:1")
	asPOM.To.Type = "pom"
	repo.add("app:root:1", dep("g:x:1"), asPOM)
	repo.add("g:x:1")

	got, err := resolveLines(repo, "app:root:1", Constraints{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "g:x:1", "g:x:1@pom")
}

func TestMissingVersionIsMalformed(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1", dep("g:a:1"))
	repo.add("g:a:1", artifact.Edge{To: artifact.Coordinate{Group: "g", Artifact: "b"}, Scope: artifact.ScopeCompile})

	_, err := resolveLines(repo, "app:root:1", Constraints{}, Options{})
	if !errors.Is(err, errors.ErrCodeMalformedDescriptor) {
		t.Errorf("err = %v, want MALFORMED_DESCRIPTOR", err)
	}
}

func TestFailFast(t *testing.T) {
	tests := []struct {
		name string
		code errors.Code
	}{
		{"not found", errors.ErrCodeNotFound},
		{"network", errors.ErrCodeNetwork},
		{"malformed", errors.ErrCodeMalformedDescriptor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo()
			repo.add("app:root:1", dep("g:a:1"), dep("g:b:1"))
			repo.add("g:a:1", dep("g:deep:1"))
			repo.add("g:b:1")
			if tt.code != errors.ErrCodeNotFound {
				repo.fail("g:deep:1", errors.New(tt.code, "boom"))
			}

			res, err := New(repo, Options{}).Resolve(context.Background(), mustCoord("app:root:1"), Constraints{})
			if res != nil {
				t.Error("no partial result should be returned")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFailFastCancelsSiblings(t *testing.T) {
	repo := newRepo()
	var deps []artifact.Edge
	for i := range 20 {
		name := fmt.Sprintf("g:slow%d:1", i)
		deps = append(deps, dep(name))
		repo.add(name)
	}
	deps = append(deps, dep("g:broken:1"))
	repo.add("app:root:1", deps...)
	repo.fail("g:broken:1", errors.New(errors.ErrCodeNetwork, "connection refused"))
	repo.delay = 50 * time.Millisecond

	start := time.Now()
	_, err := resolveLines(repo, "app:root:1", Constraints{}, Options{Workers: 4})
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Fatalf("err = %v, want NETWORK_ERROR", err)
	}
	// 21 fetches at 4 in parallel would take ~300ms without cancellation.
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("fail-fast took %v", elapsed)
	}
}

func TestRootErrorsSurface(t *testing.T) {
	repo := newRepo()
	_, err := resolveLines(repo, "g:missing:1", Constraints{}, Options{})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestEachDescriptorFetchedOnce(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1", dep("g:a:1"), dep("g:b:1"), dep("g:c:1"))
	repo.add("g:a:1", dep("g:shared:1"))
	repo.add("g:b:1", dep("g:shared:1"))
	repo.add("g:c:1", dep("g:shared:1"))
	repo.add("g:shared:1")
	repo.delay = time.Millisecond

	r := New(repo, Options{Workers: 8})
	res, err := r.Resolve(context.Background(), mustCoord("app:root:1"), Constraints{})
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"app:root:1", "g:a:1", "g:b:1", "g:c:1", "g:shared:1"} {
		if n := repo.callsFor(id); n != 1 {
			t.Errorf("%s fetched %d times", id, n)
		}
	}
	if res.Fetched != 5 {
		t.Errorf("Fetched = %d, want 5", res.Fetched)
	}

	// A second run starts with an empty cache.
	if _, err := r.Resolve(context.Background(), mustCoord("app:root:1"), Constraints{}); err != nil {
		t.Fatal(err)
	}
	if n := repo.callsFor("g:shared:1"); n != 2 {
		t.Errorf("second run should refetch; g:shared:1 fetched %d times", n)
	}
}

// wideRepo builds a layered graph with overlapping version requests.
func wideRepo() *fakeRepo {
	repo := newRepo()
	var rootDeps []artifact.Edge
	for i := range 6 {
		rootDeps = append(rootDeps, dep(fmt.Sprintf("l1:n%d:1", i)))
	}
	repo.add("app:root:1", rootDeps...)
	for i := range 6 {
		var deps []artifact.Edge
		for j := range 5 {
			deps = append(deps, dep(fmt.Sprintf("l2:n%d:1.%d", (i+j)%7, i)))
		}
		repo.add(fmt.Sprintf("l1:n%d:1", i), deps...)
	}
	for i := range 7 {
		for v := range 6 {
			repo.add(fmt.Sprintf("l2:n%d:1.%d", i, v),
				dep(fmt.Sprintf("l3:n%d:%d.0", (i*v)%4, v)),
				dep(fmt.Sprintf("l1:n%d:2", i%6)))
		}
	}
	for i := range 4 {
		for v := range 6 {
			repo.add(fmt.Sprintf("l3:n%d:%d.0", i, v))
		}
	}
	return repo
}

func TestDeterministicAcrossRunsAndWorkers(t *testing.T) {
	repo := wideRepo()
	repo.delay = time.Millisecond

	first, err := resolveLines(repo, "app:root:1", Constraints{}, Options{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(first) == 0 {
		t.Fatal("expected a non-empty closure")
	}
	for _, workers := range []int{1, 2, 8, 32} {
		got, err := resolveLines(repo, "app:root:1", Constraints{}, Options{Workers: workers})
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got, first) {
			t.Errorf("workers=%d gave a different closure", workers)
		}
	}
}

func TestResultInvariants(t *testing.T) {
	repo := wideRepo()
	c, _ := NewConstraints([]string{"l3:n1"}, nil)

	res, err := New(repo, Options{}).Resolve(context.Background(), mustCoord("app:root:1"), c)
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[artifact.Key]bool)
	for _, a := range res.Artifacts {
		k := a.Key()
		if seen[k] {
			t.Errorf("duplicate key %s", k)
		}
		seen[k] = true
		if artifact.MatchesAny(c.Excluded, k) {
			t.Errorf("%s matches an exclusion", a)
		}
		if k == res.Root.Key() {
			t.Error("root in result")
		}
	}

	// Every artifact hangs off the tree through allowed edges.
	count := 0
	res.Tree.Walk(func(n *Node) bool {
		if p := n.Parent(); p != nil {
			count++
			var found bool
			for _, e := range p.desc.Dependencies {
				if e.To.Key() == n.Coordinate.Key() && c.Allows(e) {
					found = true
				}
			}
			if !found {
				t.Errorf("%s has no allowed edge from %s", n.Coordinate, p.Coordinate)
			}
		}
		return true
	})
	if count != len(res.Artifacts) {
		t.Errorf("tree has %d nodes, result has %d artifacts", count, len(res.Artifacts))
	}
}

func TestConflictsReported(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1", dep("g:x:1"), dep("g:y:2"))
	repo.add("g:x:1", dep("g:y:1"))
	repo.add("g:y:2")

	res, err := New(repo, Options{}).Resolve(context.Background(), mustCoord("app:root:1"), Constraints{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Conflicts) != 1 {
		t.Fatalf("Conflicts = %+v", res.Conflicts)
	}
	c := res.Conflicts[0]
	if c.Key.Artifact != "y" || c.Winner != "2" || !slices.Equal(c.Losers, []string{"1"}) {
		t.Errorf("conflict = %+v", c)
	}
}

func TestMaxDepth(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1", dep("g:a:1"))
	repo.add("g:a:1", dep("g:b:1"))
	repo.add("g:b:1", dep("g:c:1"))

	got, err := resolveLines(repo, "app:root:1", Constraints{}, Options{MaxDepth: 2})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "g:a:1", "g:b:1")
}

func TestClassifierIsSeparateIdentity(t *testing.T) {
	repo := newRepo()
	natives := dep("org.lwjgl:lwjgl:3.3.3")
	natives.To.Classifier = "natives-linux"
	repo.add("app:root:1", dep("org.lwjgl:lwjgl:3.3.3"), natives)
	repo.add("org.lwjgl:lwjgl:3.3.3")

	got, err := resolveLines(repo, "app:root:1", Constraints{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, got, "org.lwjgl:lwjgl:3.3.3", "org.lwjgl:lwjgl:3.3.3:natives-linux")
}

func TestResultGraph(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1", dep("g:a:1"), dep("g:b:1"))
	repo.add("g:a:1", dep("g:c:1"))
	repo.add("g:b:1", dep("g:c:1"))
	repo.add("g:c:1")

	res, err := New(repo, Options{}).Resolve(context.Background(), mustCoord("app:root:1"), Constraints{})
	if err != nil {
		t.Fatal(err)
	}
	g := res.Graph()
	if g.NodeCount() != 4 {
		t.Errorf("NodeCount = %d, want 4", g.NodeCount())
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount = %d, want 3", g.EdgeCount())
	}
	if parents := g.Parents("g:c:1"); !slices.Equal(parents, []string{"g:a:1"}) {
		t.Errorf("g:c:1 should hang off its first requester, got %v", parents)
	}
}

func TestLoggerReceivesProgress(t *testing.T) {
	repo := newRepo()
	repo.add("app:root:1", dep("g:a:1"))
	repo.add("g:a:1")

	var lines []string
	opts := Options{Logger: func(format string, args ...any) { lines = append(lines, fmt.Sprintf(format, args...)) }}
	if _, err := resolveLines(repo, "app:root:1", Constraints{}, opts); err != nil {
		t.Fatal(err)
	}
	if len(lines) == 0 {
		t.Error("expected progress messages")
	}
}
