package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bisongo/bisongo/diag"
	"github.com/bisongo/bisongo/intern"
	"github.com/bisongo/bisongo/loc"
	"github.com/bisongo/bisongo/precgraph"
	"github.com/bisongo/bisongo/symbol"
)

func newTestEngine(t *testing.T) (*Engine, *diag.Collector) {
	t.Helper()
	pool := intern.NewPool()
	col := diag.NewCollector()
	return NewEngine(pool, col), col
}

// declareTrivialGrammar gives every engine under test a start symbol so
// Phase E passes; most scenarios only care about phases A-D.
func declareTrivialGrammar(t *testing.T, e *Engine) *symbol.Symbol {
	t.Helper()
	start, err := e.Symbols.Get("start", loc.Position{Row: 1})
	require.NoError(t, err)
	e.Symbols.ClassSet(start, symbol.ClassNTerm, loc.Position{Row: 1}, true)
	e.SetStartSymbol(start, loc.Position{Row: 1})
	return start
}

func TestFinalizeBasicAlias(t *testing.T) {
	e, _ := newTestEngine(t)
	declareTrivialGrammar(t, e)

	ifSym, err := e.Symbols.Get("IF", loc.Position{Row: 1})
	require.NoError(t, err)
	strSym, err := e.Symbols.Get("\"if\"", loc.Position{Row: 1})
	require.NoError(t, err)

	e.Symbols.ClassSet(ifSym, symbol.ClassToken, loc.Position{Row: 1}, true)
	e.Symbols.UserTokenNumberSet(ifSym, 300, loc.Position{Row: 1})
	e.Symbols.MakeAlias(ifSym, strSym, loc.Position{Row: 1})

	require.NoError(t, e.Finalize())

	assert.Equal(t, ifSym.Number(), strSym.Number(), "an alias pair shares its final number")
	assert.Equal(t, strSym.Number(), e.TokenTranslations[300])
}

func TestFinalizeUsedButUndefinedBecomesNTermAndStillPacks(t *testing.T) {
	e, col := newTestEngine(t)
	start := declareTrivialGrammar(t, e)
	_ = start

	undeclared, err := e.Symbols.Get("stmt", loc.Position{Row: 2})
	require.NoError(t, err)
	// A rule referenced it (status=needed) but it was never %token'd or
	// given a production of its own.
	e.Symbols.MarkNeeded(undeclared)

	require.NoError(t, e.Finalize())

	found := false
	for _, d := range col.Diagnostics {
		if d.Location == (loc.Position{Row: 2}) {
			found = true
			assert.Equal(t, diag.SeverityComplaint, d.Severity, "a referenced-but-undefined symbol is an error, not a warning")
		}
	}
	assert.True(t, found, "an undefined-but-referenced symbol must be diagnosed")

	packedTexts := map[string]bool{}
	for _, s := range e.Packed {
		packedTexts[s.Text()] = true
	}
	assert.True(t, packedTexts["stmt"], "the elevated symbol must still be packed")
}

func TestFinalizePosixErrorToken256(t *testing.T) {
	e, _ := newTestEngine(t)
	declareTrivialGrammar(t, e)

	for i, n := range []int{100, 200, 400} {
		tok, err := e.Symbols.Get(string(rune('A'+i)), loc.Position{Row: i + 2})
		require.NoError(t, err)
		e.Symbols.ClassSet(tok, symbol.ClassToken, loc.Position{Row: i + 2}, true)
		e.Symbols.UserTokenNumberSet(tok, n, loc.Position{Row: i + 2})
	}

	require.NoError(t, e.Finalize())

	errTok := e.Symbols.Symbol(e.ErrToken)
	assert.Equal(t, 256, errTok.UserTokenNumber())
	assert.Equal(t, 400, e.MaxUserTokenNumber)
}

func TestFinalizeStartSymbolUndefinedIsFatal(t *testing.T) {
	e, _ := newTestEngine(t)
	unknown, err := e.Symbols.Get("start", loc.Position{Row: 1})
	require.NoError(t, err)
	e.SetStartSymbol(unknown, loc.Position{Row: 1})

	err = e.Finalize()
	require.Error(t, err)
	var fatal *FatalError
	assert.ErrorAs(t, err, &fatal)
}

func TestFinalizeWarnsUselessPrecedenceAndAssociativity(t *testing.T) {
	e, col := newTestEngine(t)
	declareTrivialGrammar(t, e)

	// PLUS and STAR actually relate, so neither is useless.
	plus, err := e.Symbols.Get("PLUS", loc.Position{Row: 2})
	require.NoError(t, err)
	e.Symbols.PrecedenceSet(plus, 1, symbol.AssocLeft, loc.Position{Row: 2})

	star, err := e.Symbols.Get("STAR", loc.Position{Row: 3})
	require.NoError(t, err)
	e.Symbols.PrecedenceSet(star, 2, symbol.AssocLeft, loc.Position{Row: 3})

	// UNARY carries a %precedence tag but is never named in a relation.
	unary, err := e.Symbols.Get("UNARY", loc.Position{Row: 4})
	require.NoError(t, err)
	e.Symbols.PrecedenceSet(unary, 3, symbol.AssocPrecedence, loc.Position{Row: 4})

	// DOT has a real associativity that is never consulted.
	dot, err := e.Symbols.Get("DOT", loc.Position{Row: 5})
	require.NoError(t, err)
	e.Symbols.PrecedenceSet(dot, 4, symbol.AssocRight, loc.Position{Row: 5})

	nsyms := e.Symbols.NTokens()
	e.Prec.RegisterPrecedence(nsyms, precgraph.NodeID(star.Number()), precgraph.NodeID(plus.Number()))
	e.Prec.RegisterAssoc(nsyms, precgraph.NodeID(plus.Number()), precgraph.NodeID(star.Number()))

	require.NoError(t, e.Finalize())

	var messages []string
	for _, d := range col.Diagnostics {
		if d.Severity == diag.SeverityWprecedence {
			messages = append(messages, d.Message)
		}
	}
	assert.Contains(t, messages, "useless precedence for UNARY")
	assert.Contains(t, messages, "useless associativity for DOT")
	assert.NotContains(t, messages, "useless precedence for PLUS")
	assert.NotContains(t, messages, "useless associativity for PLUS")
	assert.NotContains(t, messages, "useless precedence for STAR")
	assert.NotContains(t, messages, "useless associativity for STAR")
}

func TestFinalizeStartSymbolAsTokenIsFatal(t *testing.T) {
	e, _ := newTestEngine(t)
	tok, err := e.Symbols.Get("START", loc.Position{Row: 1})
	require.NoError(t, err)
	e.Symbols.ClassSet(tok, symbol.ClassToken, loc.Position{Row: 1}, true)
	e.SetStartSymbol(tok, loc.Position{Row: 1})

	err = e.Finalize()
	require.Error(t, err)
	var fatal *FatalError
	assert.ErrorAs(t, err, &fatal)
}
