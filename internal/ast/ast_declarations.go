package ast

// FieldDeclaration is one named field of a record type body.
type FieldDeclaration struct {
	base
	Name string
	Type TypeExpr
}

func (f *FieldDeclaration) stmtNode()        {}
func (f *FieldDeclaration) declNode()        {}
func (f *FieldDeclaration) DeclName() string { return f.Name }

// VariantMemberDeclaration is one member of a variant type body, carrying
// either a tuple of components, a record of fields, or neither (a unit
// member, e.g. `None`).
type VariantMemberDeclaration struct {
	Name   string
	Tuple  []TypeExpr
	Record []*FieldDeclaration
}

// TypeDeclKind distinguishes the four syntactic bodies spec.md §3's
// `type` declaration variant can take.
type TypeDeclKind int

const (
	TypeDeclRecord TypeDeclKind = iota
	TypeDeclVariant
	TypeDeclRange
	TypeDeclAlias
)

// TypeDeclaration is a top-level `type Name ... is ...` declaration. Pass
// 1 installs it under its workspace scope as an unresolved placeholder;
// pass 2 checks Fields/Members/RangeBase/AliasTarget in the scope opened
// by Generics and installs the resulting typesystem.Type on Annotation.
type TypeDeclaration struct {
	base
	Name     string
	Kind     TypeDeclKind
	Generics *GenericClause

	Fields  []*FieldDeclaration         // TypeDeclRecord
	Members []VariantMemberDeclaration  // TypeDeclVariant
	RangeBase  TypeExpr                 // TypeDeclRange
	RangeIncl  bool                     // TypeDeclRange
	AliasTarget TypeExpr                // TypeDeclAlias
}

func (t *TypeDeclaration) stmtNode()        {}
func (t *TypeDeclaration) declNode()        {}
func (t *TypeDeclaration) DeclName() string { return t.Name }

// BehaviourMember is one signature a behaviour declares: a function or a
// property, matched modulo the receiver's self type by every extension
// that implements the behaviour (spec.md §4.5).
type BehaviourMember struct {
	Name       string
	Params     []TypeExpr
	Result     TypeExpr
	IsProperty bool
}

// BehaviourDeclaration declares a set of function/property signatures
// types may implement.
type BehaviourDeclaration struct {
	base
	Name    string
	Members []BehaviourMember
}

func (b *BehaviourDeclaration) stmtNode()        {}
func (b *BehaviourDeclaration) declNode()        {}
func (b *BehaviourDeclaration) DeclName() string { return b.Name }

// ConceptDeclaration is a predicate over one or more type parameters,
// evaluated during constraint checking by recursively resolving the named
// operations (spec.md §4.5).
type ConceptDeclaration struct {
	base
	Name     string
	Generics *GenericClause
	Body     Expression // the predicate expression, evaluated over Generics' params
}

func (c *ConceptDeclaration) stmtNode()        {}
func (c *ConceptDeclaration) declNode()        {}
func (c *ConceptDeclaration) DeclName() string { return c.Name }

// ExtensionDeclaration is `extend T as B { ... }` (behaviour
// conformance) or `extend T { ... }` (anonymous member injection).
type ExtensionDeclaration struct {
	base
	Generics  *GenericClause
	Target    TypeExpr
	Behaviour string // empty for an anonymous extension
	Members   []Declaration // *FunctionDeclaration / *PropertyDeclaration / *ConstantDeclaration
}

func (e *ExtensionDeclaration) stmtNode()        {}
func (e *ExtensionDeclaration) declNode()        {}
func (e *ExtensionDeclaration) DeclName() string { return e.Behaviour }

// ExternDeclaration declares a foreign entity's type signature without a
// body, resolved but never constant-evaluated or codegen'd by this core.
type ExternDeclaration struct {
	base
	Name string
	Type TypeExpr
}

func (e *ExternDeclaration) stmtNode()        {}
func (e *ExternDeclaration) declNode()        {}
func (e *ExternDeclaration) DeclName() string { return e.Name }

// ParameterDeclaration is one function parameter; Binding is an
// IdentifierPattern for the common case or any other Pattern for a
// tupled/destructuring parameter.
type ParameterDeclaration struct {
	base
	Binding Pattern
	Type    TypeExpr
	Mutable bool
}

func (p *ParameterDeclaration) stmtNode()        {}
func (p *ParameterDeclaration) declNode()        {}
func (p *ParameterDeclaration) DeclName() string {
	if id, ok := p.Binding.(*IdentifierPattern); ok {
		return id.Name
	}
	return ""
}

// FunctionDeclaration covers both free functions and behaviour-member
// implementations (the latter appear inside an ExtensionDeclaration's
// Members instead of at top level, but share this same node type).
type FunctionDeclaration struct {
	base
	Name       string
	Generics   *GenericClause
	Params     []*ParameterDeclaration
	Result     TypeExpr // nil means unit
	Requires   []*ContractClause
	Ensures    []*ContractClause
	Body       *Block // nil for an extern/behaviour-signature-only declaration
}

func (f *FunctionDeclaration) stmtNode()        {}
func (f *FunctionDeclaration) declNode()        {}
func (f *FunctionDeclaration) DeclName() string { return f.Name }

// PropertyDeclaration is a computed, argument-less member (a getter),
// distinct from a FunctionDeclaration mainly by call syntax.
type PropertyDeclaration struct {
	base
	Name   string
	Result TypeExpr
	Body   *Block
}

func (p *PropertyDeclaration) stmtNode()        {}
func (p *PropertyDeclaration) declNode()        {}
func (p *PropertyDeclaration) DeclName() string { return p.Name }

// VariableDeclaration is a `val`/`var` binding; exactly one of Name or
// Pattern is set (simple vs. tupled/destructuring binding).
type VariableDeclaration struct {
	base
	Name    string
	Pattern Pattern
	Type    TypeExpr // nil when the type is inferred from Value
	Value   Expression
	Mutable bool
}

func (v *VariableDeclaration) stmtNode() {}
func (v *VariableDeclaration) declNode() {}
func (v *VariableDeclaration) DeclName() string {
	if v.Name != "" {
		return v.Name
	}
	return ""
}

// ConstantDeclaration is a `:-` binding, constant-evaluated by pass 3.
type ConstantDeclaration struct {
	base
	Name    string
	Pattern Pattern // mutually exclusive with Name (tupled constant)
	Type    TypeExpr
	Value   Expression
}

func (c *ConstantDeclaration) stmtNode() {}
func (c *ConstantDeclaration) declNode() {}
func (c *ConstantDeclaration) DeclName() string {
	if c.Name != "" {
		return c.Name
	}
	return ""
}

// TestDeclaration is a `test "name" { ... }` block, checked as an
// ordinary function body with no parameters and no result, but never
// itself a candidate entry point.
type TestDeclaration struct {
	base
	Label string
	Body  *Block
}

func (t *TestDeclaration) stmtNode()        {}
func (t *TestDeclaration) declNode()        {}
func (t *TestDeclaration) DeclName() string { return t.Label }
