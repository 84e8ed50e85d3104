// Package ast defines the syntax-tree node family the checker consumes
// and annotates. Per the source's virtual-visitor design, dispatch here is
// by Go type switch over a closed set of concrete node types rather than
// an Accept(Visitor) double-dispatch hierarchy — one function per node
// kind, not one method per node type.
package ast

import (
	"github.com/nemesis-lang/nsc/internal/constval"
	"github.com/nemesis-lang/nsc/internal/token"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// Annotation is the slot every syntax node carries, left zero-valued by
// the (external) parser and filled in by the checker. Fields mirror the
// external-interfaces contract: type, value, referenced declaration,
// scope, is-type, is-parametric, must-value, invalid.
type Annotation struct {
	Type           typesystem.Type
	Value          *constval.Value
	ReferencedDecl typesystem.DeclID
	Scope          typesystem.ScopeID
	IsType         bool
	IsParametric   bool
	MustValue      bool
	Invalid        bool
}

// HasDecl reports whether ReferencedDecl was ever set; DeclID zero is a
// legitimate arena index, so a separate bool would normally be needed —
// here the arena reserves index 0 for a sentinel "no declaration" entry
// (see symbols.NoDecl) so ReferencedDecl alone is enough.
func (a *Annotation) HasDecl() bool { return a.ReferencedDecl != 0 }

// Node is the base of every tree element: something with a source span
// and a mutable annotation slot.
type Node interface {
	Span() token.Token
	Annotation() *Annotation
}

// Expression is a Node that yields a value.
type Expression interface {
	Node
	exprNode()
}

// Statement is a Node appearing in executable position.
type Statement interface {
	Node
	stmtNode()
}

// Declaration is a Statement that also introduces a name into scope.
type Declaration interface {
	Statement
	DeclName() string
	declNode()
}

// Pattern is a Node appearing in a binding position (`when`/`is`, `val`
// destructuring, function parameters with tupled bindings).
type Pattern interface {
	Node
	patternNode()
}

// TypeExpr is the syntactic spelling of a type, distinct from the
// resolved typesystem.Type an Annotation eventually carries.
type TypeExpr interface {
	Node
	typeExprNode()
}

// base is embedded by every concrete node to provide Span/Annotation
// without repeating the boilerplate on each type, the way the source
// embeds a common Token field on each statement/expression.
type base struct {
	Tok token.Token
	Ann Annotation
}

func (b *base) Span() token.Token      { return b.Tok }
func (b *base) Annotation() *Annotation { return &b.Ann }

// SetSpan stamps tok onto the node's embedded span. Exported so packages
// that rebuild a node from scratch (subst's clone-and-rewrite, chiefly)
// can carry the original source position onto the replacement without
// needing an exported constructor for every concrete node type.
func (b *base) SetSpan(tok token.Token) { b.Tok = tok }

// Spannable is any Node whose span can be stamped after construction.
// Every concrete node satisfies this via the embedded base.
type Spannable interface {
	Node
	SetSpan(token.Token)
}

// GenericParam is one entry of a generic clause: either a type parameter
// (optionally constrained by a behaviour/concept name) or a constant
// parameter (carrying its own declared type).
type GenericParam struct {
	Name       string
	IsConstant bool
	Constraint string   // behaviour/concept name, empty if unconstrained
	ConstType  TypeExpr // non-nil only when IsConstant
}

// GenericClause is the `!<...>` parameter list a type, function, concept
// or behaviour may declare.
type GenericClause struct {
	Params []GenericParam
}

// SourceUnit is one parsed translation unit: the root of a single file's
// syntax tree, grouped into a Workspace by the checker's pass 0.
type SourceUnit struct {
	base
	File       string
	Workspace  *WorkspaceDirective // nil if the unit never declared app/lib
	Uses       []*UseDeclaration
	TopLevel   []Declaration
}

func (s *SourceUnit) stmtNode() {}
func (s *SourceUnit) declNode() {}
func (s *SourceUnit) DeclName() string {
	if s.Workspace != nil {
		return s.Workspace.Name
	}
	return s.File
}

// WorkspaceKind distinguishes an application entry workspace from a
// library workspace (only `app` workspaces are checked for a `main`).
type WorkspaceKind int

const (
	WorkspaceLib WorkspaceKind = iota
	WorkspaceApp
)

// WorkspaceDirective is the `app name` / `lib name` line at the top of a
// source unit.
type WorkspaceDirective struct {
	base
	Kind WorkspaceKind
	Name string
}

func (w *WorkspaceDirective) stmtNode()          {}
func (w *WorkspaceDirective) declNode()          {}
func (w *WorkspaceDirective) DeclName() string   { return w.Name }

// UseDeclaration is a `use path.to.workspace` import, optionally
// restricted to a symbol list or aliased.
type UseDeclaration struct {
	base
	Path    []string
	Alias   string
	Symbols []string // empty means import everything exported
}

func (u *UseDeclaration) stmtNode()        {}
func (u *UseDeclaration) declNode()        {}
func (u *UseDeclaration) DeclName() string {
	if u.Alias != "" {
		return u.Alias
	}
	if len(u.Path) > 0 {
		return u.Path[len(u.Path)-1]
	}
	return ""
}
