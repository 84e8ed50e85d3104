package checker

import (
	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/constval"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
	"github.com/nemesis-lang/nsc/internal/subst"
	"github.com/nemesis-lang/nsc/internal/symbols"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// InstantiateType implements spec.md §4.5's four-step generic
// instantiation pipeline for a type: validate the argument count against
// origin's recorded GenericClause, look up a cached instantiation by
// argument map, and on a miss substitute the arguments into a clone of
// the template declaration and re-check it exactly as pass 2 checked the
// original (spec.md §8: "Instantiation is idempotent").
func (c *Checker) InstantiateType(origin typesystem.DeclID, typeArgs []typesystem.Type, constArgs []*constval.Value, at ast.Node) (typesystem.Type, bool) {
	clause, ok := c.reg.Parametric(origin)
	if !ok {
		c.errorAt(diagnostics.ErrWrongGenericArity, at, "%s is not generic", c.uni.Decl(origin).Name)
		return typesystem.Unknown{}, false
	}
	if len(typeArgs) != len(clause.TypeParams) || len(constArgs) != len(clause.ConstParams) {
		c.errorAt(diagnostics.ErrWrongGenericArity, at, "%s expects %d type argument(s) and %d constant argument(s), got %d and %d",
			c.uni.Decl(origin).Name, len(clause.TypeParams), len(clause.ConstParams), len(typeArgs), len(constArgs))
		return typesystem.Unknown{}, false
	}

	argMap := make(typesystem.ArgMap, 0, len(typeArgs)+len(constArgs))
	bindings := make(subst.Bindings, len(typeArgs)+len(constArgs))
	for i, name := range clause.TypeParams {
		argMap = append(argMap, struct {
			Param string
			Arg   typesystem.Arg
		}{Param: name, Arg: typesystem.Arg{Type: typeArgs[i]}})
		bindings[name] = subst.Binding{Type: typeArgs[i]}
	}
	for i, name := range clause.ConstParams {
		argMap = append(argMap, struct {
			Param string
			Arg   typesystem.Arg
		}{Param: name, Arg: typesystem.Arg{Const: constArgs[i]}})
		bindings[name] = subst.Binding{Const: constArgs[i]}
	}

	if inst, ok := c.reg.FindInstantiation(origin, argMap); ok {
		if t, ok := inst.Result.(typesystem.Type); ok {
			return t, true
		}
	}

	originDecl := c.uni.Decl(origin)
	td, ok := originDecl.OriginNode.(*ast.TypeDeclaration)
	if !ok {
		c.errorAt(diagnostics.ErrInternal, at, "%s has no type declaration to instantiate", originDecl.Name)
		return typesystem.Unknown{}, false
	}
	clone, ok := subst.Decl(td, bindings).(*ast.TypeDeclaration)
	if !ok {
		c.errorAt(diagnostics.ErrInternal, at, "%s: substitution produced an unexpected node", originDecl.Name)
		return typesystem.Unknown{}, false
	}

	newID := c.uni.NewDecl(originDecl.Kind, td.Name, originDecl.Scope, clone)
	c.uni.Decl(newID).Type = typesystem.Unknown{}
	result := c.checkTypeDecl(originDecl.Scope, newID, clone)
	c.reg.RecordInstantiation(origin, argMap, result)
	return result, true
}

// InstantiateFunction is InstantiateType's counterpart for a generic
// function: the result is a fresh DeclID for the concrete signature/body
// rather than a Type, since callers need a callable declaration to
// resolve the call expression against.
func (c *Checker) InstantiateFunction(origin typesystem.DeclID, typeArgs []typesystem.Type, constArgs []*constval.Value, at ast.Node) (typesystem.DeclID, bool) {
	clause, ok := c.reg.Parametric(origin)
	if !ok {
		c.errorAt(diagnostics.ErrWrongGenericArity, at, "%s is not generic", c.uni.Decl(origin).Name)
		return symbols.NoDecl, false
	}
	if len(typeArgs) != len(clause.TypeParams) || len(constArgs) != len(clause.ConstParams) {
		c.errorAt(diagnostics.ErrWrongGenericArity, at, "%s expects %d type argument(s) and %d constant argument(s), got %d and %d",
			c.uni.Decl(origin).Name, len(clause.TypeParams), len(clause.ConstParams), len(typeArgs), len(constArgs))
		return symbols.NoDecl, false
	}

	argMap := make(typesystem.ArgMap, 0, len(typeArgs)+len(constArgs))
	bindings := make(subst.Bindings, len(typeArgs)+len(constArgs))
	for i, name := range clause.TypeParams {
		argMap = append(argMap, struct {
			Param string
			Arg   typesystem.Arg
		}{Param: name, Arg: typesystem.Arg{Type: typeArgs[i]}})
		bindings[name] = subst.Binding{Type: typeArgs[i]}
	}
	for i, name := range clause.ConstParams {
		argMap = append(argMap, struct {
			Param string
			Arg   typesystem.Arg
		}{Param: name, Arg: typesystem.Arg{Const: constArgs[i]}})
		bindings[name] = subst.Binding{Const: constArgs[i]}
	}

	if inst, ok := c.reg.FindInstantiation(origin, argMap); ok {
		if id, ok := inst.Result.(typesystem.DeclID); ok {
			return id, true
		}
	}

	originDecl := c.uni.Decl(origin)
	fn, ok := originDecl.OriginNode.(*ast.FunctionDeclaration)
	if !ok {
		c.errorAt(diagnostics.ErrInternal, at, "%s has no function declaration to instantiate", originDecl.Name)
		return symbols.NoDecl, false
	}
	clone, ok := subst.Decl(fn, bindings).(*ast.FunctionDeclaration)
	if !ok {
		c.errorAt(diagnostics.ErrInternal, at, "%s: substitution produced an unexpected node", originDecl.Name)
		return symbols.NoDecl, false
	}

	newID := c.uni.NewDecl(symbols.DeclFunction, fn.Name, originDecl.Scope, clone)
	c.uni.Decl(newID).Type = typesystem.Unknown{}
	c.checkFunctionSignature(originDecl.Scope, newID, clone)
	c.checkFunctionBody(newID, clone)
	c.reg.RecordInstantiation(origin, argMap, newID)
	return newID, true
}
