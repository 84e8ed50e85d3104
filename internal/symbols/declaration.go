// Package symbols is the scope/environment and declaration arena spec.md
// §3/§4.2 describe. Scopes and declarations are long-lived graph objects
// referenced from many syntax nodes, so — per spec.md §9's design note —
// they live in flat arenas indexed by the stable integer ids
// (typesystem.ScopeID, typesystem.DeclID) rather than behind pointers;
// every cross-reference (a scope's parent, a declaration's containing
// scope, an ast annotation's referenced declaration) is an index into one
// of these arenas, never an owning pointer.
package symbols

import (
	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/constval"
	"github.com/nemesis-lang/nsc/internal/token"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// DeclKind is the closed set of declaration variants spec.md §3 names.
type DeclKind int

const (
	DeclVariable DeclKind = iota
	DeclTupledVariable
	DeclConstant
	DeclTupledConstant
	DeclField
	DeclParameter
	DeclTypeRecord
	DeclTypeVariant
	DeclTypeRange
	DeclTypeAlias
	DeclConcept
	DeclBehaviour
	DeclExtension
	DeclExtern
	DeclGenericTypeParam
	DeclGenericConstParam
	DeclFunction
	DeclProperty
	DeclTest
	DeclUse
	DeclWorkspace
	DeclSourceUnit
)

// Flags are the per-declaration bits spec.md §3 names.
type Flags struct {
	Hidden  bool // not visible outside its declaring workspace
	Invalid bool // a diagnosed error means later passes must skip it
}

// Declaration is the arena-owned record every kind above is stored as; a
// single struct rather than one Go type per kind (spec.md §9: "replace
// inheritance of categories with a single tagged enum carrying per-variant
// data"), since nearly every field is shared and only the meaning of
// Type/Value/OriginNode varies by Kind.
type Declaration struct {
	ID    typesystem.DeclID
	Kind  DeclKind
	Name  string
	Span  token.Token
	Scope typesystem.ScopeID // the scope this declaration lives IN, not any scope it opens
	Flags Flags

	// Post-analysis annotations (spec.md §3: "post-analysis annotations:
	// resolved type, resolved value where applicable").
	Type  typesystem.Type
	Value *constval.Value

	// OpensScope is set for declarations that introduce their own member
	// scope (function body, type generic clause, extension) — zero
	// (NoScope) otherwise.
	OpensScope typesystem.ScopeID

	OriginNode ast.Node // back-reference for diagnostics and re-substitution
}

// IsConstantKind reports whether a declaration kind is ever
// constant-foldable (used by the evaluator to decide whether an
// identifier reference may appear in constant context).
func (k DeclKind) IsConstantKind() bool {
	switch k {
	case DeclConstant, DeclTupledConstant, DeclGenericConstParam:
		return true
	default:
		return false
	}
}

// IsTypeKind reports whether a declaration kind names a type.
func (k DeclKind) IsTypeKind() bool {
	switch k {
	case DeclTypeRecord, DeclTypeVariant, DeclTypeRange, DeclTypeAlias, DeclGenericTypeParam:
		return true
	default:
		return false
	}
}
