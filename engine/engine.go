// Package engine ties the symbol store, semantic-type store, and
// precedence graph together into the finalization pipeline: the single
// point of global state bison's distinguished symbols and counters are
// threaded through, instead of living as process globals.
package engine

import (
	"github.com/bisongo/bisongo/diag"
	"github.com/bisongo/bisongo/intern"
	"github.com/bisongo/bisongo/loc"
	"github.com/bisongo/bisongo/precgraph"
	"github.com/bisongo/bisongo/symbol"
)

// Engine owns one grammar's worth of symbol table, semantic-type table,
// and precedence graph, plus the distinguished symbols and post-finalize
// results a grammar compiler keeps as global state.
type Engine struct {
	Pool intern.Pool
	Sink diag.Sink

	Symbols *symbol.Store
	Types   *symbol.TypeStore
	Prec    *precgraph.Graph

	Accept     symbol.ID
	ErrToken   symbol.ID
	UndefToken symbol.ID
	EndToken   symbol.ID

	StartSymbol         symbol.ID
	StartSymbolLocation loc.Position

	// Populated by Finalize.
	Packed             []*symbol.Symbol
	TokenTranslations  []int
	MaxUserTokenNumber int
	NSyms              int
	NTokens            int
	NVars              int
}

// NewEngine creates an empty engine wired to pool and sink, pre-populated
// with the distinguished symbols finalization assumes exist before a
// grammar is parsed: $accept, error, $undefined, and $end (the start
// symbol itself is recorded later, via SetStartSymbol, once the grammar
// names it).
func NewEngine(pool intern.Pool, sink diag.Sink) *Engine {
	st := symbol.NewStore(pool, sink)
	ts := symbol.NewTypeStore(pool, sink)

	e := &Engine{
		Pool:        pool,
		Sink:        sink,
		Symbols:     st,
		Types:       ts,
		Prec:        precgraph.NewGraph(),
		StartSymbol: symbol.NilID,
	}

	accept, _ := st.Get("$accept", loc.Position{})
	st.ClassSet(accept, symbol.ClassNTerm, loc.Position{}, false)
	e.Accept = accept.ID()

	errTok, _ := st.Get("error", loc.Position{})
	st.ClassSet(errTok, symbol.ClassToken, loc.Position{}, false)
	e.ErrToken = errTok.ID()

	undef, _ := st.Get("$undefined", loc.Position{})
	st.ClassSet(undef, symbol.ClassToken, loc.Position{}, false)
	e.UndefToken = undef.ID()

	// $end is classed like any other token and gets its number the
	// ordinary way, through ClassSet's auto-increment. Like the other
	// $-prefixed symbols it is excluded from Phase D, so it is given no
	// user_token_number. It deliberately does NOT go through
	// UserTokenNumberSet's n=0 special case here: that case exists
	// for a grammar-declared token retroactively taking over the
	// end-of-input role, and forcing it at bootstrap — before $end is the
	// first symbol to claim number 0 — would collide with whichever real
	// token claims 0 through ordinary auto-increment.
	end, _ := st.Get("$end", loc.Position{})
	st.ClassSet(end, symbol.ClassToken, loc.Position{}, false)
	e.EndToken = end.ID()

	return e
}

// SetStartSymbol records the grammar's start symbol. Phase E validates it
// at finalize time; the engine does not force its class here, since that
// is ordinarily established by the rules that reference it.
func (e *Engine) SetStartSymbol(sym *symbol.Symbol, at loc.Position) {
	e.StartSymbol = sym.ID()
	e.StartSymbolLocation = at
}
