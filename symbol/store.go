package symbol

import (
	"sort"
	"strings"

	"github.com/bisongo/bisongo/diag"
	"github.com/bisongo/bisongo/intern"
	"github.com/bisongo/bisongo/loc"
)

// Store is the symbol table: a hash-indexed collection of Symbol records
// with creation, lookup, mutation, and tag-order iteration.
type Store struct {
	pool intern.Pool
	sink diag.Sink

	byTag map[intern.Tag]ID
	arena []*Symbol

	ntokens int
	nvars   int

	sortedCache []ID
}

// NewStore creates an empty symbol store. Distinguished symbols (accept,
// error, $undefined, end-of-input, the start symbol) are created and wired
// up by the engine package, which owns the cross-store invariants.
func NewStore(pool intern.Pool, sink diag.Sink) *Store {
	return &Store{
		pool:  pool,
		sink:  sink,
		byTag: make(map[intern.Tag]ID),
	}
}

func (st *Store) NTokens() int { return st.ntokens }
func (st *Store) NVars() int   { return st.nvars }
func (st *Store) NSyms() int   { return st.ntokens + st.nvars }

// Symbol resolves an ID to its record. Panics on an out-of-range ID, which
// indicates a caller bug (a stale ID from a different Store, or a pack
// phase that ran out of order).
func (st *Store) Symbol(id ID) *Symbol {
	if id == NilID || int(id) < 0 || int(id) >= len(st.arena) {
		panic("symbol: invalid symbol ID")
	}
	return st.arena[id]
}

// Get interns key and returns its Symbol, creating one with the zero
// defaults (class=unknown, status=undeclared, number=undefined,
// user_token_number=undefined) if this is the first mention.
//
// Get returns a fatal error instead of aborting the process when the
// symbol-number limit would be exceeded: the engine never throws.
func (st *Store) Get(key string, at loc.Position) (*Symbol, error) {
	if st.sortedCache != nil {
		panic("symbol: Store.Get called after sorted iteration began")
	}
	tag := st.pool.Intern(key)
	if id, ok := st.byTag[tag]; ok {
		return st.arena[id], nil
	}
	if len(st.arena) >= SymbolNumberMaximum {
		return nil, &LimitError{Limit: SymbolNumberMaximum}
	}
	id := ID(len(st.arena))
	s := newSymbol(id, tag, key, at)
	st.arena = append(st.arena, s)
	st.byTag[tag] = id

	if !s.IsQuoted() && strings.Contains(key, "-") {
		st.sink.Complain(diag.SeverityWyacc, at, "POSIX yacc does not allow dashes in symbol names: %q", key)
	}
	return s, nil
}

// LimitError reports that the symbol table would exceed
// SymbolNumberMaximum. It is the only error Store.Get returns.
type LimitError struct {
	Limit int
}

func (e *LimitError) Error() string {
	return "too many symbols"
}

// TypeSet attaches a <type> tag to sym, redeclaration-checked. A
// non-empty typeTag also marks the corresponding SemanticType used.
func (st *Store) TypeSet(sym *Symbol, types *TypeStore, typeTag string, at loc.Position) {
	if typeTag == "" {
		return
	}
	if sym.hasType {
		oldText := st.pool.Text(sym.typeName)
		if oldText != typeTag {
			st.sink.ComplainIndent(diag.SeverityComplaint, at, sym.typeLocation,
				"%%type <"+typeTag+"> redeclares the type of "+sym.text,
				"previously declared as <"+oldText+"> here")
		}
		return
	}
	sym.typeName = st.pool.Intern(typeTag)
	sym.hasType = true
	sym.typeLocation = at
	if types != nil {
		types.markUsed(typeTag, at)
	}
}

// TypeName returns the symbol's declared <type> tag text, if any.
func (s *Symbol) TypeName(pool intern.Pool) string {
	if !s.hasType {
		return ""
	}
	return pool.Text(s.typeName)
}

// CodePropsSet attaches %destructor or %printer code to sym, redeclaration
// checked the same way TypeSet is.
func (st *Store) CodePropsSet(sym *Symbol, kind PropKind, code string, at loc.Position) {
	p := &sym.props[kind]
	if p.set {
		st.sink.ComplainIndent(diag.SeverityComplaint, at, p.Location,
			"redeclaration of code for "+sym.text,
			"previously declared here")
		return
	}
	*p = CodeProps{Code: code, Location: at, Kind: CodePropsUser, set: true}
}

// CodePropsGet resolves the effective destructor or printer for sym,
// following the lookup chain: (1) sym's own prop, (2) its type_name's
// semantic type, (3) the default type ("*" if sym has a type_name, else
// "") — but defaults only apply to user-defined symbols (tag not starting
// with '$' and not the error token).
func (st *Store) CodePropsGet(sym *Symbol, types *TypeStore, kind PropKind) (CodeProps, bool) {
	if sym.props[kind].set {
		p := &sym.props[kind]
		p.IsUsed = true
		return *p, true
	}
	if sym.hasType {
		if t, ok := types.byTag[sym.typeName]; ok {
			if p, ok := t.CodeProps(kind); ok {
				types.markPropUsed(t, kind)
				return p, true
			}
		}
	}
	if sym.isGenerated() || sym.isErrorToken() {
		return CodeProps{}, false
	}
	defaultTag := ""
	if sym.hasType {
		defaultTag = "*"
	}
	if t, ok := types.byTag[types.pool.Intern(defaultTag)]; ok {
		if p, ok := t.CodeProps(kind); ok {
			types.markPropUsed(t, kind)
			return p, true
		}
	}
	return CodeProps{}, false
}

// PrecedenceSet records a %left/%right/%nonassoc/%precedence declaration
// for sym. A no-op when assoc is AssocUndef. Setting an associativity
// forces sym into the token class.
func (st *Store) PrecedenceSet(sym *Symbol, prec int, assoc Assoc, at loc.Position) {
	if assoc == AssocUndef {
		return
	}
	if sym.assoc != AssocUndef && sym.prec != prec {
		st.sink.ComplainIndent(diag.SeverityComplaint, at, sym.precLocation,
			"redeclaration of precedence for "+sym.text,
			"previously declared here")
	} else {
		sym.prec = prec
		sym.assoc = assoc
		sym.precLocation = at
	}
	st.ClassSet(sym, ClassToken, at, false)
}

// ClassSet assigns sym's grammatical class, allocating its dense number on
// first transition out of ClassUnknown.
func (st *Store) ClassSet(sym *Symbol, cls Class, at loc.Position, declaring bool) {
	if sym.class != ClassUnknown && sym.class != cls {
		st.sink.Complain(diag.SeverityComplaint, at, "%v redefined as %v", sym.text, cls)
		return
	}
	if sym.class == ClassUnknown {
		sym.class = cls
		if sym.number == NumberUndefined {
			switch cls {
			case ClassNTerm:
				sym.number = st.nvars
				st.nvars++
			case ClassToken:
				sym.number = st.ntokens
				st.ntokens++
			}
		}
	}
	if declaring {
		if sym.status == StatusDeclared {
			st.sink.Complain(diag.SeverityWother, at, "%v redeclared", sym.text)
		}
		sym.status = StatusDeclared
	}
}

// MarkNeeded records that sym was referenced on some rule's right-hand
// side without (yet) being declared. Rule storage is out of scope for this
// package; the collaborator that owns it calls this so Phase A can tell
// "referenced but undeclared" (an error) from "never mentioned at all"
// (a warning).
func (st *Store) MarkNeeded(sym *Symbol) {
	if sym.status == StatusUndeclared {
		sym.status = StatusNeeded
	}
}

// UserTokenNumberSet assigns the externally visible token number for sym.
// Writes on the identifier side of an alias pair are routed to its
// string-form partner.
func (st *Store) UserTokenNumberSet(sym *Symbol, n int, at loc.Position) {
	target := sym
	if sym.hasStringAliasSentinel() {
		target = st.Symbol(sym.alias)
	}
	if target.userTokenNumber != UserNumberUndefined && target.userTokenNumber != UserNumberHasStringAlias && target.userTokenNumber != n {
		st.sink.Complain(diag.SeverityComplaint, at, "redeclaration of the user token number of %v", target.text)
		return
	}
	if n == 0 {
		// n=0 designates the end-of-input token.
		if target.class == ClassToken && target.number != NumberUndefined {
			st.ntokens--
		}
		target.userTokenNumber = 0
		target.number = 0
		target.class = ClassToken
		return
	}
	target.userTokenNumber = n
}

// MakeAlias links sym (an identifier token, e.g. IF) to str (its
// literal-string form, e.g. "if"), maintaining the Alias pair invariants.
func (st *Store) MakeAlias(sym, str *Symbol, at loc.Position) {
	if sym.HasAlias() || str.HasAlias() {
		st.sink.Complain(diag.SeverityWother, at, "redeclaration of alias for %v", sym.text)
		return
	}
	st.ClassSet(str, ClassToken, at, false)
	str.userTokenNumber = sym.userTokenNumber
	sym.userTokenNumber = UserNumberHasStringAlias
	str.number = sym.number
	sym.alias = str.id
	str.alias = sym.id
	if sym.hasType {
		typeText := st.pool.Text(sym.typeName)
		st.TypeSet(str, nil, typeText, sym.typeLocation)
	}
}

// MarkPropsUsed marks both of sym's code-props slots used without
// resolving them, the treatment Phase A gives a symbol it is elevating out
// of ClassUnknown.
func (st *Store) MarkPropsUsed(sym *Symbol) {
	sym.props[PropDestructor].IsUsed = true
	sym.props[PropPrinter].IsUsed = true
}

// ReconcileAlias propagates type_name, code props, and (prec, assoc)
// between the two records of an alias pair when exactly one side carries
// the value. A field set on both sides is left alone: the conflicting
// write already raised its own redeclaration
// complaint when it happened. A no-op for any symbol that is not the
// identifier side of an alias pair, so callers may invoke it for every
// symbol in the store without pre-filtering.
func (st *Store) ReconcileAlias(sym *Symbol, types *TypeStore) {
	if !sym.hasStringAliasSentinel() {
		return
	}
	a, b := sym, st.Symbol(sym.alias)

	if a.hasType != b.hasType {
		if a.hasType {
			st.TypeSet(b, types, st.pool.Text(a.typeName), a.typeLocation)
		} else {
			st.TypeSet(a, types, st.pool.Text(b.typeName), b.typeLocation)
		}
	}
	for _, kind := range []PropKind{PropDestructor, PropPrinter} {
		ap, bp := &a.props[kind], &b.props[kind]
		switch {
		case ap.set && !bp.set:
			*bp = *ap
		case bp.set && !ap.set:
			*ap = *bp
		}
	}
	switch {
	case a.assoc != AssocUndef && b.assoc == AssocUndef:
		b.prec, b.assoc, b.precLocation = a.prec, a.assoc, a.precLocation
	case b.assoc != AssocUndef && a.assoc == AssocUndef:
		a.prec, a.assoc, a.precLocation = b.prec, b.assoc, b.precLocation
	}
}

// Pack implements Phase C of finalization: nonterminal numbers are
// shifted above the token range, the identifier side of every alias pair
// is dropped (it is represented by its string-form partner, which
// already shares its number), and the resulting gaps are compacted
// out by a single end-to-end rewrite that also closes ntokens/nvars/nsyms
// around them. The returned slice is indexed by the final, packed number:
// symbols[0:NTokens()] are tokens, the remainder nonterminals.
func (st *Store) Pack() []*Symbol {
	oldNTokens, oldNSyms := st.ntokens, st.ntokens+st.nvars

	for _, s := range st.arena {
		if s.class == ClassNTerm {
			s.number += oldNTokens
		}
	}

	slots := make([]*Symbol, oldNSyms)
	for _, s := range st.arena {
		if s.hasStringAliasSentinel() {
			continue
		}
		if s.number >= 0 && s.number < oldNSyms {
			slots[s.number] = s
		}
	}

	packed := make([]*Symbol, 0, oldNSyms)
	ntokens, nsyms := oldNTokens, oldNSyms
	writei := 0
	for readi := 0; readi < oldNSyms; readi++ {
		s := slots[readi]
		if s == nil {
			nsyms--
			ntokens--
			continue
		}
		s.number = writei
		if s.HasAlias() {
			st.Symbol(s.alias).number = writei
		}
		packed = append(packed, s)
		writei++
	}

	st.ntokens = ntokens
	st.nvars = nsyms - ntokens
	return packed
}

// Sorted returns every symbol in byte-lexicographic tag order,
// materializing the cache on first call. After this call, Get panics on a
// fresh key: no further insertions are permitted.
func (st *Store) Sorted() []*Symbol {
	if st.sortedCache == nil {
		st.sortedCache = make([]ID, len(st.arena))
		for i := range st.arena {
			st.sortedCache[i] = ID(i)
		}
		sort.Slice(st.sortedCache, func(i, j int) bool {
			return st.arena[st.sortedCache[i]].text < st.arena[st.sortedCache[j]].text
		})
	}
	out := make([]*Symbol, len(st.sortedCache))
	for i, id := range st.sortedCache {
		out[i] = st.arena[id]
	}
	return out
}

// All returns every symbol in creation order, regardless of whether Sorted
// has been called.
func (st *Store) All() []*Symbol {
	out := make([]*Symbol, len(st.arena))
	copy(out, st.arena)
	return out
}
