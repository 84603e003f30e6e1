package symbol

import (
	"sort"

	"github.com/bisongo/bisongo/diag"
	"github.com/bisongo/bisongo/intern"
	"github.com/bisongo/bisongo/loc"
)

// TypeStore is the semantic-type table. It mirrors Store's
// get/code_props_set shape and the same "no insertion after sorted
// iteration" discipline.
type TypeStore struct {
	pool intern.Pool
	sink diag.Sink

	byTag map[intern.Tag]*SemanticType
	all   []*SemanticType

	sortedCache []*SemanticType
}

// NewTypeStore creates an empty semantic-type store preloaded with the two
// reserved tags "" and "*".
func NewTypeStore(pool intern.Pool, sink diag.Sink) *TypeStore {
	ts := &TypeStore{
		pool:  pool,
		sink:  sink,
		byTag: make(map[intern.Tag]*SemanticType),
	}
	ts.Get("", loc.Position{})
	ts.Get("*", loc.Position{})
	return ts
}

// Get interns key and returns its SemanticType, creating one with
// TypeUndeclared status if this is the first mention.
func (ts *TypeStore) Get(key string, at loc.Position) *SemanticType {
	if ts.sortedCache != nil {
		panic("symbol: TypeStore.Get called after sorted iteration began")
	}
	tag := ts.pool.Intern(key)
	if t, ok := ts.byTag[tag]; ok {
		return t
	}
	t := &SemanticType{tag: tag, text: key, location: at, status: TypeUndeclared}
	ts.byTag[tag] = t
	ts.all = append(ts.all, t)
	return t
}

// markUsed records that some symbol's <type> referenced this tag. A type
// already Declared is left Declared: declaration is the stronger state.
func (ts *TypeStore) markUsed(key string, at loc.Position) *SemanticType {
	t := ts.Get(key, at)
	if t.status == TypeUndeclared {
		t.status = TypeUsed
	}
	return t
}

// markDeclared records that this tag was itself declared as a symbol's
// type_name during Phase A's check-defined sweep.
func (ts *TypeStore) markDeclared(key string, at loc.Position) *SemanticType {
	t := ts.Get(key, at)
	t.status = TypeDeclared
	return t
}

// MarkDeclared is the exported form of markDeclared, for the finalization
// pipeline (engine.Finalize Phase A) to call directly.
func (ts *TypeStore) MarkDeclared(key string, at loc.Position) *SemanticType {
	return ts.markDeclared(key, at)
}

// UnusedCodeProps reports, for a Declared and non-reserved semantic type,
// which of its %destructor/%printer attachments were set but never
// resolved through Store.CodePropsGet.
func (t *SemanticType) UnusedCodeProps() (destructor, printer bool) {
	d := t.props[PropDestructor]
	p := t.props[PropPrinter]
	return d.set && !d.IsUsed, p.set && !p.IsUsed
}

// CodePropsSet attaches %destructor/%printer code to a semantic type.
// Attaching code is itself a declaration: status becomes TypeDeclared.
// Redeclaration follows the same two-location discipline as Store's.
func (ts *TypeStore) CodePropsSet(t *SemanticType, kind PropKind, code string, at loc.Position) {
	p := &t.props[kind]
	if p.set {
		ts.sink.ComplainIndent(diag.SeverityComplaint, at, p.Location,
			"redeclaration of %destructor/%printer for type <"+t.text+">",
			"previously declared here")
		return
	}
	*p = CodeProps{Code: code, Location: at, Kind: CodePropsUser, set: true}
	t.status = TypeDeclared
}

// CodeProps returns the destructor (kind=PropDestructor) or printer
// (kind=PropPrinter) attached directly to t, if any.
func (t *SemanticType) CodeProps(kind PropKind) (CodeProps, bool) {
	p := t.props[kind]
	return p, p.set
}

func (ts *TypeStore) markPropUsed(t *SemanticType, kind PropKind) {
	t.props[kind].IsUsed = true
}

// Sorted returns every semantic type in byte-lexicographic tag order,
// materializing the cache on first call, mirroring Store.Sorted's
// ordering.
func (ts *TypeStore) Sorted() []*SemanticType {
	if ts.sortedCache == nil {
		ts.sortedCache = make([]*SemanticType, len(ts.all))
		copy(ts.sortedCache, ts.all)
		sort.Slice(ts.sortedCache, func(i, j int) bool {
			return ts.sortedCache[i].text < ts.sortedCache[j].text
		})
	}
	return ts.sortedCache
}
