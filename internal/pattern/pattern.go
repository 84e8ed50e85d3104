// Package pattern implements spec.md §4.6's pattern matcher: type-checks
// a pattern against a scrutinee type, collects the bindings it
// introduces, and checks variant exhaustiveness and or-pattern binding
// agreement. Grounded on the source's bindPatternVariablesWithConstFlag
// (analyzer/declarations_patterns.go): a recursive type switch over the
// pattern family that destructures the scrutinee's type alongside the
// pattern shape and reports a structural diagnostic on any mismatch,
// adapted from a unification-variable-binding walk to a closed-type-only
// walk (this type family has nothing left to solve for by the time a
// pattern is checked — spec.md §1's inference-exclusion Non-goal).
package pattern

import (
	"fmt"

	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/compat"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// Bindings maps an identifier a pattern introduces to its checked type.
type Bindings map[string]typesystem.Type

func merge(dst, src Bindings) {
	for k, v := range src {
		dst[k] = v
	}
}

// Check type-checks p against scrutinee t, reporting structural
// diagnostics (spec.md §4.6 edge cases) to sink and returning every
// binding the pattern introduces. ok is false only when the mismatch was
// severe enough that the caller should not trust the returned bindings'
// types (they may be typesystem.Unknown{} placeholders).
func Check(p ast.Pattern, t typesystem.Type, sink diagnostics.Sink) (Bindings, bool) {
	out := Bindings{}
	ok := check(p, t, sink, out)
	return out, ok
}

func mismatch(sink diagnostics.Sink, at ast.Node, format string, args ...any) bool {
	sink.Report(diagnostics.NewError(diagnostics.ErrTypeMismatch, at.Span(), format, args...).Diagnostic)
	return false
}

func check(p ast.Pattern, t typesystem.Type, sink diagnostics.Sink, out Bindings) bool {
	switch n := p.(type) {
	case *ast.WildcardPattern:
		return true
	case *ast.IdentifierPattern:
		if n.Name != "_" {
			out[n.Name] = t
		}
		return true
	case *ast.RestPattern:
		if n.Binding != "" {
			out[n.Binding] = t
		}
		return true
	case *ast.LiteralPattern:
		return true // the literal's own type is checked at constant-fold time
	case *ast.RangePattern:
		// Low/High must themselves be constant-evaluable at t (spec.md
		// §4.6); this package only confirms the pattern's shape is legal
		// against a scalar scrutinee, the actual bound values are folded
		// and compared by the caller via evalconst.
		switch t.Kind() {
		case typesystem.KindInteger, typesystem.KindFloat, typesystem.KindRational, typesystem.KindChar:
			return true
		default:
			return mismatch(sink, n, "range pattern requires a numeric or char scrutinee, got %s", t.String())
		}
	case *ast.TuplePattern:
		tt, ok := t.(typesystem.Tuple)
		if !ok {
			return mismatch(sink, n, "tuple pattern against non-tuple type %s", t.String())
		}
		if len(tt.Components) != len(n.Elements) {
			return mismatch(sink, n, "tuple pattern has %d elements, value has %d", len(n.Elements), len(tt.Components))
		}
		good := true
		for i, elem := range n.Elements {
			if !check(elem, tt.Components[i], sink, out) {
				good = false
			}
		}
		return good
	case *ast.ArrayPattern:
		switch at := t.(type) {
		case typesystem.Array:
			return checkSequence(n.Elements, at.Elem, sink, out)
		case typesystem.Slice:
			return checkSequence(n.Elements, at.Elem, sink, out)
		default:
			return mismatch(sink, n, "array pattern against non-array/slice type %s", t.String())
		}
	case *ast.RecordPattern:
		fields, recName, ok := recordFields(t)
		if !ok {
			return mismatch(sink, n, "record pattern against non-record type %s", t.String())
		}
		if n.TypeName != "" && n.TypeName != recName {
			return mismatch(sink, n, "record pattern names %s, scrutinee is %s", n.TypeName, t.String())
		}
		good := true
		for _, f := range n.Fields {
			ft, ok := fields[f.Name]
			if !ok {
				good = mismatch(sink, n, "type %s has no field %q", t.String(), f.Name)
				continue
			}
			if f.Shorthand {
				out[f.Name] = ft
				continue
			}
			if !check(f.Sub, ft, sink, out) {
				good = false
			}
		}
		return good
	case *ast.PathPattern:
		v, ok := t.(typesystem.Variant)
		if !ok {
			return mismatch(sink, n, "variant-tag pattern against non-variant type %s", t.String())
		}
		tag := n.Path[len(n.Path)-1]
		member, ok := v.Member(tag)
		if !ok {
			return mismatch(sink, n, "%s has no member %q", v.Name, tag)
		}
		good := true
		if n.Tuple != nil {
			if len(member.Tuple) != len(n.Tuple) {
				return mismatch(sink, n, "%s::%s takes %d values, pattern has %d", v.Name, tag, len(member.Tuple), len(n.Tuple))
			}
			for i, sub := range n.Tuple {
				if !check(sub, member.Tuple[i], sink, out) {
					good = false
				}
			}
		}
		if n.Record != nil {
			fieldTypes := make(map[string]typesystem.Type, len(member.Record))
			for _, f := range member.Record {
				fieldTypes[f.Name] = f.Type
			}
			for _, f := range n.Record {
				ft, ok := fieldTypes[f.Name]
				if !ok {
					good = mismatch(sink, n, "%s::%s has no field %q", v.Name, tag, f.Name)
					continue
				}
				if f.Shorthand {
					out[f.Name] = ft
					continue
				}
				if !check(f.Sub, ft, sink, out) {
					good = false
				}
			}
		}
		return good
	case *ast.OrPattern:
		return checkOr(n, t, sink, out)
	case *ast.TypeCastPattern:
		// `is T`: the binding narrows to whatever type T names; the caller
		// (checker) is responsible for resolving Target against the
		// registry and re-invoking with the narrowed type for any nested
		// use. Here we only introduce the binding at the scrutinee's
		// static type, narrowing is a checker-side refinement.
		if n.Binding != "" {
			out[n.Binding] = t
		}
		return true
	default:
		return mismatch(sink, p, "unsupported pattern form")
	}
}

func checkSequence(elems []ast.Pattern, elem typesystem.Type, sink diagnostics.Sink, out Bindings) bool {
	good := true
	for _, e := range elems {
		if !check(e, elem, sink, out) {
			good = false
		}
	}
	return good
}

func recordFields(t typesystem.Type) (map[string]typesystem.Type, string, bool) {
	r, ok := t.(typesystem.Record)
	if !ok {
		return nil, "", false
	}
	fields := make(map[string]typesystem.Type, len(r.Fields))
	for _, f := range r.Fields {
		fields[f.Name] = f.Type
	}
	return fields, r.Name, true
}

// checkOr implements spec.md §4.6/§8's or-pattern rule: every alternative
// must introduce the same binding set with identical types.
func checkOr(n *ast.OrPattern, t typesystem.Type, sink diagnostics.Sink, out Bindings) bool {
	if len(n.Alternatives) == 0 {
		return mismatch(sink, n, "or-pattern has no alternatives")
	}
	var first Bindings
	good := true
	for i, alt := range n.Alternatives {
		altOut := Bindings{}
		if !check(alt, t, sink, altOut) {
			good = false
		}
		if i == 0 {
			first = altOut
			merge(out, altOut)
			continue
		}
		if !sameBindingSet(first, altOut) {
			good = mismatch(sink, alt, "or-pattern alternative introduces a different binding set than the first")
		}
	}
	return good
}

func sameBindingSet(a, b Bindings) bool {
	if len(a) != len(b) {
		return false
	}
	for name, at := range a {
		bt, ok := b[name]
		if !ok || !compat.Compatible(at, bt, true) {
			return false
		}
	}
	return true
}

// Exhaustive checks spec.md §4.6's variant-exhaustiveness rule: every
// PathPattern arm's tag (recursing through OrPattern alternatives) must
// be covered, unless a catch-all (wildcard or bare identifier) arm or an
// explicit `else` is present. Non-variant scrutinees (numeric ranges,
// booleans, strings) are never considered exhaustive without a catch-all
// or else arm, since their domains are effectively unbounded or, for
// bool, still require an explicit arm per spec.md's conservative
// default.
func Exhaustive(arms []ast.Pattern, hasElse bool, t typesystem.Type) (bool, []string) {
	if hasElse || hasCatchAll(arms) {
		return true, nil
	}
	v, ok := t.(typesystem.Variant)
	if !ok {
		return false, nil
	}
	covered := map[string]bool{}
	for _, a := range arms {
		collectTags(a, covered)
	}
	var missing []string
	for _, name := range v.MemberNames() {
		if !covered[name] {
			missing = append(missing, name)
		}
	}
	return len(missing) == 0, missing
}

func hasCatchAll(arms []ast.Pattern) bool {
	for _, a := range arms {
		switch a.(type) {
		case *ast.WildcardPattern, *ast.IdentifierPattern:
			return true
		}
	}
	return false
}

func collectTags(p ast.Pattern, covered map[string]bool) {
	switch n := p.(type) {
	case *ast.PathPattern:
		covered[n.Path[len(n.Path)-1]] = true
	case *ast.OrPattern:
		for _, alt := range n.Alternatives {
			collectTags(alt, covered)
		}
	}
}

// Describe renders a pattern's shape for a diagnostic message, e.g. when
// reporting an unreachable arm after an exhaustive/catch-all one.
func Describe(p ast.Pattern) string {
	switch n := p.(type) {
	case *ast.WildcardPattern:
		return "_"
	case *ast.IdentifierPattern:
		return n.Name
	case *ast.PathPattern:
		return fmt.Sprintf("%s", n.Path)
	default:
		return "<pattern>"
	}
}
