package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/resolve"
)

// testEnv is an isolated CLI environment with a local repository:
//
//	com.acme:app:1.0 -> com.acme:core:2.0 -> org.slf4j:slf4j-api:2.0.9
//	                 -> org.slf4j:slf4j-api:1.7.36 (test scope, ignored)
//	                 -> commons-io:commons-io:2.15.0
//	com.acme:lib:1.0 -> org.slf4j:slf4j-api:1.7.36
//	                 -> com.acme:core:2.0
type testEnv struct {
	t    *testing.T
	repo string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	prev := statusOut
	t.Cleanup(func() { statusOut = prev })

	env := &testEnv{t: t, repo: t.TempDir()}
	env.pom("com.acme", "app", "1.0",
		dep("com.acme", "core", "2.0", "")+
			dep("org.slf4j", "slf4j-api", "1.7.36", "test")+
			dep("commons-io", "commons-io", "2.15.0", ""))
	env.pom("com.acme", "core", "2.0", dep("org.slf4j", "slf4j-api", "2.0.9", ""))
	env.pom("com.acme", "lib", "1.0", dep("org.slf4j", "slf4j-api", "1.7.36", "")+dep("com.acme", "core", "2.0", ""))
	env.pom("org.slf4j", "slf4j-api", "2.0.9", "")
	env.pom("org.slf4j", "slf4j-api", "1.7.36", "")
	env.pom("commons-io", "commons-io", "2.15.0", "")
	return env
}

func dep(g, a, v, scope string) string {
	s := fmt.Sprintf("<dependency><groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version>", g, a, v)
	if scope != "" {
		s += "<scope>" + scope + "</scope>"
	}
	return s + "</dependency>"
}

func (e *testEnv) pom(g, a, v, deps string) {
	e.t.Helper()
	path := filepath.Join(append(append([]string{e.repo}, strings.Split(g, ".")...), a, v, a+"-"+v+".pom")...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.t.Fatal(err)
	}
	body := fmt.Sprintf("<project><groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version><dependencies>%s</dependencies></project>", g, a, v, deps)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		e.t.Fatal(err)
	}
}

// run executes the CLI and returns stdout and the combined stderr output
// (logs, status lines and usage).
func (e *testEnv) run(args ...string) (string, string, error) {
	return e.runLevel(log.InfoLevel, args...)
}

func (e *testEnv) runLevel(level log.Level, args ...string) (string, string, error) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	statusOut = &stderr

	c := New(&stderr, level)
	c.Stdout = &stdout
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&stderr)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestResolveCommand(t *testing.T) {
	env := newTestEnv(t)
	stdout, stderr, err := env.run("resolve", "--no-cache", "-r", env.repo, "com.acme:app:1.0")
	if err != nil {
		t.Fatalf("resolve: %v\n%s", err, stderr)
	}
	want := "com.acme:core:2.0\ncommons-io:commons-io:2.15.0\norg.slf4j:slf4j-api:2.0.9\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
	if stderr != "" {
		t.Errorf("successful run wrote to stderr:\n%s", stderr)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	env := newTestEnv(t)
	first, _, err := env.run("resolve", "-r", env.repo, "com.acme:lib:1.0")
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []string{"1", "4", "16"} {
		got, _, err := env.run("resolve", "-r", env.repo, "--workers", workers, "com.acme:lib:1.0")
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Errorf("workers=%s:\n%s\nwant\n%s", workers, got, first)
		}
	}
}

func TestResolveMultipleRoots(t *testing.T) {
	env := newTestEnv(t)
	stdout, _, err := env.run("resolve", "--no-cache", "-r", env.repo, "com.acme:core:2.0", "commons-io:commons-io:2.15.0", "com.acme:lib:1.0")
	if err != nil {
		t.Fatal(err)
	}
	want := "org.slf4j:slf4j-api:2.0.9\n" +
		"com.acme:core:2.0\norg.slf4j:slf4j-api:1.7.36\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
}

func TestResolveBadRootDoesNotStopOthers(t *testing.T) {
	env := newTestEnv(t)
	stdout, stderr, err := env.run("resolve", "--no-cache", "-r", env.repo, "not-a-coordinate", "com.acme:core:2.0", "com.acme:missing:1.0")
	if err == nil {
		t.Fatal("expected an error for the failed roots")
	}
	if !strings.Contains(err.Error(), "2 of 3") {
		t.Errorf("err = %v", err)
	}
	if stdout != "org.slf4j:slf4j-api:2.0.9\n" {
		t.Errorf("stdout = %q", stdout)
	}
	for _, want := range []string{"not-a-coordinate", "com.acme:missing:1.0"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr should report %s:\n%s", want, stderr)
		}
	}
}

func TestResolveNoRoots(t *testing.T) {
	env := newTestEnv(t)
	stdout, stderr, err := env.run("resolve")
	if err != errNoRoots {
		t.Errorf("err = %v, want errNoRoots", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "Usage:") {
		t.Errorf("usage not printed:\n%s", stderr)
	}
}

func TestResolveExcludeFlag(t *testing.T) {
	env := newTestEnv(t)
	stdout, _, err := env.run("resolve", "--no-cache", "-r", env.repo, "-e", "org.slf4j:*", "-e", "commons-io", "com.acme:app:1.0")
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "com.acme:core:2.0\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestResolveConfigFile(t *testing.T) {
	env := newTestEnv(t)
	cfg := filepath.Join(t.TempDir(), "config.toml")
	body := "repository = '" + env.repo + "'\nexclude = ['commons-io:commons-io']\n[cache]\nbackend = 'none'\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := env.run("--config", cfg, "resolve", "com.acme:app:1.0")
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "com.acme:core:2.0\norg.slf4j:slf4j-api:2.0.9\n" {
		t.Errorf("stdout = %q", stdout)
	}

	// Flags win over the file.
	stdout, _, err = env.run("--config", cfg, "resolve", "-e", "org.slf4j", "com.acme:app:1.0")
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "com.acme:core:2.0\ncommons-io:commons-io:2.15.0\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestResolveInvalidFlags(t *testing.T) {
	env := newTestEnv(t)
	for _, args := range [][]string{
		{"resolve", "-r", env.repo, "--format", "png", "com.acme:app:1.0"},
		{"resolve", "-r", env.repo, "-e", "g:", "com.acme:app:1.0"},
		{"resolve", "-r", env.repo, "--workers", "-2", "com.acme:app:1.0"},
	} {
		if stdout, _, err := env.run(args...); err == nil || stdout != "" {
			t.Errorf("%v: err = %v, stdout = %q", args, err, stdout)
		}
	}
}

func TestTreeCommand(t *testing.T) {
	env := newTestEnv(t)
	stdout, _, err := env.run("tree", "--no-cache", "-r", env.repo, "com.acme:app:1.0")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("tree has %d lines:\n%s", len(lines), stdout)
	}
	if strings.TrimRight(lines[0], " ") != "com.acme:app:1.0" {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(stdout, "org.slf4j:slf4j-api:2.0.9") {
		t.Errorf("tree misses the transitive dependency:\n%s", stdout)
	}
}

func TestVerboseReportsConflicts(t *testing.T) {
	env := newTestEnv(t)
	stdout, stderr, err := env.runLevel(log.DebugLevel, "resolve", "--no-cache", "-r", env.repo, "com.acme:lib:1.0")
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "com.acme:core:2.0\norg.slf4j:slf4j-api:1.7.36\n" {
		t.Errorf("stdout = %q", stdout)
	}
	for _, want := range []string{"1 version conflicts", "2.0.9", "Resolved 2 artifacts", "descriptor"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)
	stdout, _, err := env.run("version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "version: ") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestConflictTable(t *testing.T) {
	res := &resolve.Result{
		Root: artifact.New("g", "root", "1"),
		Conflicts: []resolve.Conflict{
			{Key: artifact.New("org.slf4j", "slf4j-api", "").Key(), Winner: "1.7.36", Losers: []string{"2.0.9"}},
		},
	}
	out := conflictTable(res)
	for _, want := range []string{"Artifact", "Selected", "org.slf4j:slf4j-api", "1.7.36", "2.0.9"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
