package ast

// NamedTypeExpr refers to a builtin or declared type by name, optionally
// with explicit generic arguments (`List!<i32>`).
type NamedTypeExpr struct {
	base
	Name     string
	TypeArgs []TypeExpr
	ConstArgs []Expression
}

func (t *NamedTypeExpr) typeExprNode() {}

// ArrayTypeExpr is `[T : N]` or `[T : $N]` (parametric size reference).
type ArrayTypeExpr struct {
	base
	Elem       TypeExpr
	Size       Expression // nil when Param is set
	Param      string     // non-empty for a `$N` parametric size reference
}

func (t *ArrayTypeExpr) typeExprNode() {}

// SliceTypeExpr is `[T]`.
type SliceTypeExpr struct {
	base
	Elem TypeExpr
}

func (t *SliceTypeExpr) typeExprNode() {}

// TupleTypeExpr is `(T1, T2, ...)`.
type TupleTypeExpr struct {
	base
	Components []TypeExpr
}

func (t *TupleTypeExpr) typeExprNode() {}

// PointerTypeExpr is `*T`.
type PointerTypeExpr struct {
	base
	Pointee TypeExpr
}

func (t *PointerTypeExpr) typeExprNode() {}

// RangeTypeExpr is `T..` / `T..=` (open/inclusive range over a base type).
type RangeTypeExpr struct {
	base
	BaseType  TypeExpr
	Inclusive bool
}

func (t *RangeTypeExpr) typeExprNode() {}

// FunctionTypeExpr is `function(T1, T2) R`.
type FunctionTypeExpr struct {
	base
	Params []TypeExpr
	Result TypeExpr // nil means unit
}

func (t *FunctionTypeExpr) typeExprNode() {}
