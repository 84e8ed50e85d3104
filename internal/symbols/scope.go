package symbols

import (
	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// pendingAdd is one entry of a scope's deferred-insertion queue (spec.md
// §4.2: "insertions scheduled during a walk are committed at safe points
// to avoid invalidating iteration").
type pendingAdd struct {
	decl  typesystem.DeclID
	after typesystem.DeclID // zero (NoDecl) if unordered
}

// Scope is one node of the lexical scope tree. Names maps a visible
// identifier to the declarations introduced for it directly in this
// scope (almost always length 1; length >1 only transiently while a
// redefinition error is being raised). Order records insertion order for
// deterministic iteration (diagnostics, unused-import scans).
type Scope struct {
	ID     typesystem.ScopeID
	Parent typesystem.ScopeID // NoScope for the universe/prelude root
	Origin ast.Node           // the workspace/block/function/type/loop/conditional/match-arm node that opened it

	IsExtension  bool
	ExtendedType typesystem.Type // meaningful only when IsExtension

	Names map[string][]typesystem.DeclID
	Order []typesystem.DeclID

	pending []pendingAdd
}

func newScope(id, parent typesystem.ScopeID, origin ast.Node) *Scope {
	return &Scope{
		ID:     id,
		Parent: parent,
		Origin: origin,
		Names:  make(map[string][]typesystem.DeclID),
	}
}
