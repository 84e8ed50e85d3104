// Package workspace models spec.md §3's workspace aggregate and §4.5 pass
// 0's registration step: grouping parsed source units by their `app`/`lib`
// directive, building the import DAG those `use` directives describe, and
// handing the checker a deterministic source-unit iteration order so
// diagnostics stay stable across runs (spec.md §6 "a deterministic
// ordering of source units per workspace"). Grounded on the teacher's
// module-loader idiom (declarations_imports.go: sorted export keys,
// alias registration) generalized from per-file imports to per-workspace
// imports, since Nemesis's `use` directive names a workspace, not a file.
package workspace

import (
	"fmt"
	"sort"

	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/config"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// Workspace is one named aggregate of source units sharing exported
// declarations (spec.md §3).
type Workspace struct {
	Name  string
	Kind  ast.WorkspaceKind
	Units []*ast.SourceUnit

	// Scope is installed by the checker's pass 0 once the workspace scope
	// is opened; NoScope until then.
	Scope typesystem.ScopeID

	// Imports are the workspace names this workspace's `use` directives
	// name, deduplicated, in first-use order (not yet alias-resolved —
	// that is a pass-0 checker concern since it needs the scope to attach
	// the alias to).
	Imports []string
}

// Graph is the import DAG of every workspace discovered across a checker
// run's input, plus the deterministic visitation order pass 0 onward
// iterate in.
type Graph struct {
	Workspaces map[string]*Workspace
	// Order lists every workspace name in dependency-then-name order: a
	// workspace never precedes one of its own imports, and workspaces with
	// no ordering constraint between them are ordered alphabetically, so
	// re-running Build on the same input always yields the same Order
	// (spec.md §6).
	Order []string
}

// CycleError reports an import cycle detected while ordering the graph
// (distinct from spec.md §4.5 pass 4's *type*-cyclic-definition error,
// which is a within-workspace checker diagnostic, not a workspace-graph
// structural error raised before the checker ever opens a scope).
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	s := "import cycle: "
	for i, name := range e.Cycle {
		if i > 0 {
			s += " -> "
		}
		s += name
	}
	return s
}

// Build groups units by their declared workspace (a unit with no
// Workspace directive is an error the caller should have already
// diagnosed at parse time; Build simply skips it) and computes a
// deterministic topological order. Every workspace implicitly imports
// config.CoreWorkspaceName unless it IS that workspace (spec.md §3).
func Build(units []*ast.SourceUnit) (*Graph, error) {
	g := &Graph{Workspaces: make(map[string]*Workspace)}
	for _, u := range units {
		if u.Workspace == nil {
			continue
		}
		name := u.Workspace.Name
		ws, ok := g.Workspaces[name]
		if !ok {
			ws = &Workspace{Name: name, Kind: u.Workspace.Kind}
			g.Workspaces[name] = ws
		}
		ws.Units = append(ws.Units, u)
		for _, use := range u.Uses {
			imported := use.Path[0]
			if !contains(ws.Imports, imported) {
				ws.Imports = append(ws.Imports, imported)
			}
		}
	}
	for name, ws := range g.Workspaces {
		if name != config.CoreWorkspaceName && !contains(ws.Imports, config.CoreWorkspaceName) {
			ws.Imports = append(ws.Imports, config.CoreWorkspaceName)
		}
	}
	order, err := topoSort(g.Workspaces)
	if err != nil {
		return g, err
	}
	g.Order = order
	// Each workspace's own Units are sorted by File for stable intra-
	// workspace pass iteration (spec.md §6); source order within a file is
	// untouched since that is the parser's declaration order.
	for _, ws := range g.Workspaces {
		sort.Slice(ws.Units, func(i, j int) bool { return ws.Units[i].File < ws.Units[j].File })
	}
	return g, nil
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// topoSort produces a deterministic order: Kahn's algorithm with the
// ready-set broken by name so ties never depend on Go map iteration order.
func topoSort(workspaces map[string]*Workspace) ([]string, error) {
	indegree := make(map[string]int, len(workspaces))
	dependents := make(map[string][]string)
	for name := range workspaces {
		indegree[name] = 0
	}
	for name, ws := range workspaces {
		for _, dep := range ws.Imports {
			if _, known := workspaces[dep]; !known {
				// Import of a workspace outside this Build's input (e.g. an
				// external/stdlib workspace not part of the current analysis
				// unit set) never participates in ordering or cycle detection.
				continue
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}
	for _, deps := range dependents {
		sort.Strings(deps)
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	if len(order) != len(workspaces) {
		return nil, &CycleError{Cycle: remaining(indegree, order)}
	}
	return order, nil
}

func remaining(indegree map[string]int, done []string) []string {
	seen := make(map[string]bool, len(done))
	for _, d := range done {
		seen[d] = true
	}
	var left []string
	for name := range indegree {
		if !seen[name] {
			left = append(left, name)
		}
	}
	sort.Strings(left)
	return left
}

// String renders a Graph's order for diagnostics/tests.
func (g *Graph) String() string {
	return fmt.Sprintf("%v", g.Order)
}
