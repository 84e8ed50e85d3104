package symbols

import (
	"sort"
	"strings"

	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// NoDecl and NoScope are the arena's reserved zero index, meaning "absent"
// (a declaration's OpensScope when it opens nothing, a scope's Parent at
// the universe root, an annotation's ReferencedDecl before resolution).
const (
	NoDecl  = typesystem.DeclID(0)
	NoScope = typesystem.ScopeID(0)
)

// Universe owns every Scope and Declaration for one checker run — the
// single arena spec.md §9 calls for, passed explicitly rather than held
// in package globals.
type Universe struct {
	scopes []*Scope      // index 0 reserved (NoScope)
	decls  []*Declaration // index 0 reserved (NoDecl)
	stack  []typesystem.ScopeID
}

// NewUniverse builds an empty arena with a root prelude scope already
// open (spec.md §4.2's ScopePrelude-equivalent: the scope builtins and the
// auto-imported core workspace attach to).
func NewUniverse() *Universe {
	u := &Universe{
		scopes: make([]*Scope, 1, 64),
		decls:  make([]*Declaration, 1, 256),
	}
	root := u.newScopeLocked(NoScope, nil)
	u.stack = append(u.stack, root)
	return u
}

func (u *Universe) newScopeLocked(parent typesystem.ScopeID, origin ast.Node) typesystem.ScopeID {
	id := typesystem.ScopeID(len(u.scopes))
	u.scopes = append(u.scopes, newScope(id, parent, origin))
	return id
}

// Current returns the innermost open scope.
func (u *Universe) Current() typesystem.ScopeID { return u.stack[len(u.stack)-1] }

// Root returns the prelude/universe root scope.
func (u *Universe) Root() typesystem.ScopeID { return u.scopes[1].ID }

func (u *Universe) Scope(id typesystem.ScopeID) *Scope { return u.scopes[id] }

func (u *Universe) Decl(id typesystem.DeclID) *Declaration { return u.decls[id] }

// Open pushes a fresh child scope of the current scope and returns its id
// (spec.md §4.2 `open(node)`).
func (u *Universe) Open(origin ast.Node) typesystem.ScopeID {
	id := u.newScopeLocked(u.Current(), origin)
	u.stack = append(u.stack, id)
	return id
}

// Enter re-pushes a scope an earlier pass already opened (e.g. pass 0's
// workspace scope), so a later pass can nest a fresh Open beneath it
// without creating a second, sibling copy of that scope. Paired with
// Close exactly like Open.
func (u *Universe) Enter(scope typesystem.ScopeID) {
	u.stack = append(u.stack, scope)
}

// OpenExtension is Open, additionally marking the new scope as an
// extension scope attached to extended (spec.md §4.2: "a flag marking
// extension scopes").
func (u *Universe) OpenExtension(origin ast.Node, extended typesystem.Type) typesystem.ScopeID {
	id := u.Open(origin)
	s := u.scopes[id]
	s.IsExtension = true
	s.ExtendedType = extended
	return id
}

// Close pops the current scope, draining its deferred-insertion queue
// first (spec.md §4.2: committed "at safe points").
func (u *Universe) Close() {
	u.DrainPending(u.Current())
	u.stack = u.stack[:len(u.stack)-1]
}

// NewDecl allocates a declaration and returns its id. The declaration is
// not yet visible by name until Add commits it into a scope — callers
// that need a stable id before the name can be looked up (pass 1 hoisting
// placeholders) use NewDecl then Add.
func (u *Universe) NewDecl(kind DeclKind, name string, containing typesystem.ScopeID, node ast.Node) typesystem.DeclID {
	id := typesystem.DeclID(len(u.decls))
	d := &Declaration{
		ID:         id,
		Kind:       kind,
		Name:       name,
		Scope:      containing,
		OriginNode: node,
	}
	if node != nil {
		d.Span = node.Span()
	}
	u.decls = append(u.decls, d)
	return id
}

// Add commits decl into scope's Names map immediately (unordered), or —
// when after is non-zero — queues it for the next DrainPending so walks
// in progress over scope.Order are never invalidated mid-iteration
// (spec.md §4.2 `add(decl, after?, is_after?)`).
//
// Returns ok=false and the pre-existing declaration id when name is
// already bound in scope itself (same-scope redefinition, spec.md §4.2:
// "inside the same scope it is a redefinition error"); shadowing a name
// visible only through an outer scope is always permitted and always
// reports ok=true.
func (u *Universe) Add(scope typesystem.ScopeID, decl typesystem.DeclID, after typesystem.DeclID) (ok bool, existing typesystem.DeclID) {
	s := u.scopes[scope]
	name := u.decls[decl].Name
	if name != "" {
		if existingIDs, already := s.Names[name]; already && len(existingIDs) > 0 {
			return false, existingIDs[0]
		}
	}
	if after != NoDecl {
		s.pending = append(s.pending, pendingAdd{decl: decl, after: after})
		return true, NoDecl
	}
	u.commit(s, decl)
	return true, NoDecl
}

func (u *Universe) commit(s *Scope, decl typesystem.DeclID) {
	name := u.decls[decl].Name
	if name != "" {
		s.Names[name] = append(s.Names[name], decl)
	}
	s.Order = append(s.Order, decl)
}

// DrainPending commits every queued insertion for scope, in queued order,
// regardless of the `after` hint's relative position (the checker issues
// insertions in the order it wants them visible; `after` only records
// intent for diagnostics, it does not reorder the commit).
func (u *Universe) DrainPending(scope typesystem.ScopeID) {
	s := u.scopes[scope]
	if len(s.pending) == 0 {
		return
	}
	pending := s.pending
	s.pending = nil
	for _, p := range pending {
		u.commit(s, p.decl)
	}
}

// Lookup walks scope and its parents for name (spec.md §4.2 `lookup`).
func (u *Universe) Lookup(scope typesystem.ScopeID, name string) (typesystem.DeclID, bool) {
	for cur := scope; cur != NoScope; cur = u.scopes[cur].Parent {
		s := u.scopes[cur]
		if ids, ok := s.Names[name]; ok && len(ids) > 0 {
			return ids[len(ids)-1], true
		}
	}
	return NoDecl, false
}

// LookupPath resolves a dotted path: the head resolves via Lookup in the
// ordinary chain, then each subsequent component descends into the scope
// opened by the previous component's declaration (spec.md §4.2
// `lookup_path`). typed reports whether the final component named a type
// declaration (DeclKind.IsTypeKind), letting callers running in type
// position reject a value result and vice versa.
func (u *Universe) LookupPath(scope typesystem.ScopeID, path []string) (decl typesystem.DeclID, ok bool, typed bool) {
	if len(path) == 0 {
		return NoDecl, false, false
	}
	head, ok := u.Lookup(scope, path[0])
	if !ok {
		return NoDecl, false, false
	}
	cur := head
	for _, component := range path[1:] {
		d := u.decls[cur]
		if d.OpensScope == NoScope {
			return NoDecl, false, false
		}
		next, found := u.lookupLocal(d.OpensScope, component)
		if !found {
			return NoDecl, false, false
		}
		cur = next
	}
	return cur, true, u.decls[cur].Kind.IsTypeKind()
}

func (u *Universe) lookupLocal(scope typesystem.ScopeID, name string) (typesystem.DeclID, bool) {
	if ids, ok := u.scopes[scope].Names[name]; ok && len(ids) > 0 {
		return ids[len(ids)-1], true
	}
	return NoDecl, false
}

// Similars returns up to maxResults names visible from scope within
// editDistance of name, nearest first, used to build "did you mean …"
// suggestions (spec.md §4.2 `similars`).
func Similars(u *Universe, scope typesystem.ScopeID, name string, maxResults, editDistance int) []string {
	type scored struct {
		name string
		dist int
	}
	seen := make(map[string]bool)
	var candidates []scored
	for cur := scope; cur != NoScope; cur = u.scopes[cur].Parent {
		for visible := range u.scopes[cur].Names {
			if seen[visible] || visible == name {
				continue
			}
			seen[visible] = true
			if d := levenshtein(name, visible); d <= editDistance {
				candidates = append(candidates, scored{visible, d})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

// levenshtein is the classic edit-distance dynamic program; name sets in
// a single scope chain are small enough that O(n*m) is never a concern.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			cur[j] = min3(del, ins, sub)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// QualifiedName joins a dotted path the way diagnostics render it.
func QualifiedName(path []string) string { return strings.Join(path, ".") }
