package artifact

import "strings"

// Scope is the phase a dependency applies to. It governs whether the
// dependency propagates to consumers of the declaring artifact.
type Scope string

const (
	ScopeCompile  Scope = "compile"
	ScopeRuntime  Scope = "runtime"
	ScopeTest     Scope = "test"
	ScopeProvided Scope = "provided"
	ScopeSystem   Scope = "system"
	// ScopeImport only appears in dependencyManagement and pulls in a BOM.
	ScopeImport Scope = "import"
)

// ParseScope normalizes a declared scope. An empty scope means compile.
// Unknown scopes are returned lowercased and never propagate.
func ParseScope(s string) Scope {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ScopeCompile
	}
	return Scope(s)
}

// Transitive reports whether dependencies in this scope are part of the
// compile/runtime closure seen by consumers.
func (s Scope) Transitive() bool {
	return s == ScopeCompile || s == ScopeRuntime || s == ""
}

// Effective returns the scope a child dependency has from the root's point of
// view when reached through a dependency of scope parent. Runtime is sticky:
// anything beneath a runtime edge is runtime, and a runtime child stays
// runtime beneath a compile edge.
//
// Effective is informational. Membership of the closure only depends on
// [Scope.Transitive] of each edge.
func Effective(parent, child Scope) Scope {
	if parent == "" {
		return child
	}
	if parent == ScopeRuntime || child == ScopeRuntime {
		return ScopeRuntime
	}
	return child
}
