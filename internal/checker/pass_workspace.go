package checker

import (
	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/config"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
	"github.com/nemesis-lang/nsc/internal/symbols"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// runPass0 implements spec.md §4.5 pass 0: each source unit's `app`/`lib`
// directive creates or joins a workspace scope; each `use` directive is
// recorded but not yet resolved; the core workspace is auto-imported.
func (c *Checker) runPass0() {
	for _, name := range c.graph.Order {
		ws := c.graph.Workspaces[name]
		var origin ast.Node
		if len(ws.Units) > 0 {
			origin = ws.Units[0]
		}
		scope := c.uni.Open(origin)
		c.wsScope[name] = scope
		c.aliasTarget[scope] = make(map[string]string)
		decl := c.uni.NewDecl(symbols.DeclWorkspace, name, c.uni.Root(), origin)
		c.uni.Decl(decl).OpensScope = scope
		c.uni.Decl(decl).Type = typesystem.WorkspaceMarker{Name: name}
		c.uni.Add(c.uni.Root(), decl, symbols.NoDecl)
		c.uni.Close()
	}

	// use directives are only recorded here (spec.md §4.5: "recorded but
	// not yet resolved") — registerUse gives each `use` a DeclUse whose
	// OpensScope is the imported workspace's scope from the first loop,
	// which is what later passes' LookupPath walks follow.
	for _, name := range c.graph.Order {
		ws := c.graph.Workspaces[name]
		scope := c.wsScope[name]
		for _, unit := range ws.Units {
			for _, use := range unit.Uses {
				c.registerUse(scope, use)
			}
		}
		// Every workspace implicitly imports `core` (spec.md §3). It is
		// reachable qualified (`core.Name`) through its workspace
		// declaration in the root scope, like every workspace, and is not
		// merged into unqualified lookup; no DeclUse is created for it, so
		// it never draws an unused-import warning. This is an
		// Open Question decision (SPEC_FULL.md §4.11) recorded in
		// DESIGN.md — the filtered original_source left the exact
		// unqualified-vs-qualified shape of core auto-import unconfirmed.
		if name != config.CoreWorkspaceName {
			c.aliasTarget[scope][config.CoreWorkspaceName] = config.CoreWorkspaceName
		}
	}
}

func (c *Checker) registerUse(scope typesystem.ScopeID, use *ast.UseDeclaration) {
	decl := c.uni.NewDecl(symbols.DeclUse, use.DeclName(), scope, use)
	ok, existing := c.uni.Add(scope, decl, symbols.NoDecl)
	if !ok {
		c.report(diagnostics.NewError(diagnostics.ErrRedefinition, use.Span(), "%q is already imported here", use.DeclName()).
			WithNote(c.uni.Decl(existing).Span, "first imported here"))
		return
	}
	c.aliasTarget[scope][use.DeclName()] = use.Path[0]
	// OpensScope makes the alias itself walkable by Universe.LookupPath:
	// `alias.Member` resolves head="alias" (this decl), then looks up
	// "Member" in the scope the imported workspace opened in pass 0's
	// first loop (already populated for every workspace by the time this,
	// pass 0's second loop, runs).
	if target, ok := c.wsScope[use.Path[0]]; ok {
		c.uni.Decl(decl).OpensScope = target
	}
	use.Annotation().ReferencedDecl = decl
}
