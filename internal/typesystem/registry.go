package typesystem

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Registry is the process-wide (in practice: per-checker-run) hash-consed
// store of primitive singletons plus the side tables spec.md §4.1 lists:
// behaviour implementor sets, type extensions, and instantiation records.
// It is passed explicitly through every entry point that needs it
// (spec.md §9: "encapsulate as an explicit context object... forbid
// static mutable globals") rather than held in a package-level var.
type Registry struct {
	primitives map[string]Type

	// behaviours maps a behaviour name to its live Behaviour value so
	// RecordImplementor can mutate the shared Implementors set in place.
	behaviours map[string]*Behaviour

	// extensions maps a type's String() to the declarations extending it
	// (spec.md §4.1 record_extension / §4.5 "extensions attach their
	// members"). Stored as opaque DeclIDs; the checker resolves them.
	extensions map[string][]DeclID

	instantiations map[string]*Instantiation
	parametrics    map[DeclID]*GenericClause

	anonymousIDs map[string]string // structural type String() -> stable uuid, for diagnostics only
}

// NewRegistry builds a Registry pre-populated with every builtin()
// primitive name (spec.md §4.1).
func NewRegistry() *Registry {
	r := &Registry{
		primitives:     make(map[string]Type),
		behaviours:     make(map[string]*Behaviour),
		extensions:     make(map[string][]DeclID),
		instantiations: make(map[string]*Instantiation),
		parametrics:    make(map[DeclID]*GenericClause),
		anonymousIDs:   make(map[string]string),
	}
	r.seedBuiltins()
	return r
}

func (r *Registry) seedBuiltins() {
	for _, bits := range []int{8, 16, 32, 64, 128} {
		r.primitives[fmt.Sprintf("i%d", bits)] = Integer{Bits: bits, Signed: true}
		r.primitives[fmt.Sprintf("u%d", bits)] = Integer{Bits: bits, Signed: false}
	}
	r.primitives["isize"] = Integer{Bits: 64, Signed: true, Machine: true}
	r.primitives["usize"] = Integer{Bits: 64, Signed: false, Machine: true}
	for _, bits := range []int{16, 32, 64, 128, 256} {
		r.primitives[fmt.Sprintf("r%d", bits)] = Rational{Bits: bits}
	}
	for _, bits := range []int{32, 64, 128} {
		r.primitives[fmt.Sprintf("f%d", bits)] = Float{Bits: bits}
	}
	for _, bits := range []int{64, 128, 256} {
		r.primitives[fmt.Sprintf("c%d", bits)] = Complex{Bits: bits}
	}
	r.primitives["bool"] = Bool{}
	r.primitives["char"] = Char{}
	r.primitives["chars"] = Chars{}
	r.primitives["string"] = String{}
	r.primitives["unit"] = Tuple{Components: nil}
}

// Builtin returns the canonical singleton for a primitive name, per
// spec.md §4.1. The second return is false for any name not in the fixed
// primitive set (e.g. a user type name, which the caller must resolve
// through the declaration scope instead).
func (r *Registry) Builtin(name string) (Type, bool) {
	t, ok := r.primitives[name]
	return t, ok
}

// MustBuiltin is Builtin without the ok flag, for call sites (prelude
// construction, numeric promotion) that only ever pass a name from the
// fixed primitive set and would consider a miss an internal bug.
func (r *Registry) MustBuiltin(name string) Type {
	t, ok := r.primitives[name]
	if !ok {
		panic("typesystem: not a builtin primitive: " + name)
	}
	return t
}

// Make constructs a structural composite type (array, slice, tuple,
// pointer, range, function, anonymous record, variant) without hash
// consing: identity for these is by Go value equality of the returned
// struct, compatibility is computed structurally by package compat
// (spec.md §4.1). Kept as a thin named-constructor set for symmetry with
// the teacher's `make(kind, components)`; callers are free to build the
// struct literal directly, and most do.
func (r *Registry) Make(kind TypeKind, build func() Type) Type {
	return build()
}

// RecordImplementor adds concrete to behaviour's implementor set
// (spec.md §4.1 record_implementor). behaviour is looked up/created by
// name so repeated calls for the same behaviour accumulate into one set.
func (r *Registry) RecordImplementor(behaviourName string, concrete Type) *Behaviour {
	b, ok := r.behaviours[behaviourName]
	if !ok {
		b = &Behaviour{Name: behaviourName, Implementors: make(map[string]bool)}
		r.behaviours[behaviourName] = b
	}
	b.Implementors[concrete.String()] = true
	return b
}

// DeclareBehaviour registers behaviourName's nominal identity (pass 1
// hoisting, before any extension has registered an implementor), so a
// BehaviourDeclaration's Annotation.Type carries a non-zero Decl() from
// the moment it is installed, the same way a Record/Variant/Range
// declaration does.
func (r *Registry) DeclareBehaviour(name string, decl DeclID) *Behaviour {
	b, ok := r.behaviours[name]
	if !ok {
		b = &Behaviour{Name: name, Implementors: make(map[string]bool), decl: decl}
		r.behaviours[name] = b
		return b
	}
	b.decl = decl
	return b
}

// Behaviour returns the live Behaviour value for a registered name.
func (r *Registry) Behaviour(name string) (*Behaviour, bool) {
	b, ok := r.behaviours[name]
	return b, ok
}

// RecordExtension registers that decl extends typ's member scope
// (spec.md §4.1 record_extension), used to find methods, properties and
// type-scoped constants during name resolution.
func (r *Registry) RecordExtension(typ Type, decl DeclID) {
	key := typ.String()
	r.extensions[key] = append(r.extensions[key], decl)
}

// Extensions returns every declaration registered against typ's member
// scope, in registration order (spec.md §4.11's extension-conflict rule
// needs this order to tell "first" from "second").
func (r *Registry) Extensions(typ Type) []DeclID {
	return r.extensions[typ.String()]
}

// Arg is one entry of a generic instantiation's argument map: either a
// bound Type or a bound constant value. It is stored as `any` rather than
// a closed interface so this package does not need to import constval
// (which itself imports typesystem for Value.Type) — see the package doc
// for why back-references are kept acyclic throughout this core.
type Arg struct {
	Type  Type // non-nil for a type argument
	Const any  // non-nil (a *constval.Value) for a constant argument
}

func (a Arg) key() string {
	if a.Type != nil {
		return "T:" + a.Type.String()
	}
	return fmt.Sprintf("C:%v", a.Const)
}

// ArgMap binds each generic parameter name to its argument, in the
// template's declared parameter order (order matters for the cache key
// so two maps with the same pairs in different orders never collide —
// they cannot occur in different orders for the same origin anyway,
// since the checker always walks the clause in declaration order).
type ArgMap []struct {
	Param string
	Arg   Arg
}

func (m ArgMap) key() string {
	var b strings.Builder
	for _, e := range m {
		b.WriteString(e.Param)
		b.WriteByte('=')
		b.WriteString(e.Arg.key())
		b.WriteByte(';')
	}
	return b.String()
}

// Instantiation is the record spec.md §3 describes: the parametric origin
// declaration, the concrete argument map, and the resulting concrete
// entity (a Type for a generic type, or a DeclID for a generic function —
// stored as `any` for the same reason Arg.Const is `any`).
type Instantiation struct {
	ID     string // stable synthetic id for diagnostic breadcrumbs
	Origin DeclID
	Args   ArgMap
	Result any
}

// GenericClause is the parametric origin's declared parameter list,
// recorded via RecordParametric (spec.md §4.1) so InstantiateType/
// InstantiateFunction can validate arity and kind before substituting.
type GenericClause struct {
	TypeParams  []string
	ConstParams []string
}

// RecordParametric registers origin's generic clause (spec.md §4.1
// record_parametric).
func (r *Registry) RecordParametric(origin DeclID, clause GenericClause) {
	c := clause
	r.parametrics[origin] = &c
}

// Parametric returns the generic clause previously recorded for origin.
func (r *Registry) Parametric(origin DeclID) (*GenericClause, bool) {
	c, ok := r.parametrics[origin]
	return c, ok
}

// instantiationKey is the cache key for origin+args, per spec.md §4.5
// step 2 ("Looks up an existing instantiation with the same argument
// map; on hit, reuses it") and the testable property in spec.md §8
// ("Instantiation is idempotent").
func instantiationKey(origin DeclID, args ArgMap) string {
	return fmt.Sprintf("%d|%s", origin, args.key())
}

// FindInstantiation implements spec.md §4.5 step 2.
func (r *Registry) FindInstantiation(origin DeclID, args ArgMap) (*Instantiation, bool) {
	inst, ok := r.instantiations[instantiationKey(origin, args)]
	return inst, ok
}

// RecordInstantiation implements spec.md §4.1 record_instantiation,
// called by the checker after step 3 (substitute + re-check) succeeds.
func (r *Registry) RecordInstantiation(origin DeclID, args ArgMap, result any) *Instantiation {
	key := instantiationKey(origin, args)
	if existing, ok := r.instantiations[key]; ok {
		return existing
	}
	inst := &Instantiation{ID: uuid.NewString(), Origin: origin, Args: args, Result: result}
	r.instantiations[key] = inst
	return inst
}

// AnonymousID mints (or returns a previously-minted) stable synthetic
// identity for a purely structural type that diagnostics need to refer to
// consistently across a run (e.g. two cyclic-definition diagnostics about
// the same anonymous record). Grounded on the teacher's dependency on
// google/uuid for stable synthetic identities elsewhere in the module
// graph (SPEC_FULL.md §4.10).
func (r *Registry) AnonymousID(t Type) string {
	key := t.String()
	if id, ok := r.anonymousIDs[key]; ok {
		return id
	}
	id := uuid.NewString()
	r.anonymousIDs[key] = id
	return id
}
