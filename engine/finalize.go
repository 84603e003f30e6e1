package engine

import (
	"fmt"

	"github.com/bisongo/bisongo/diag"
	"github.com/bisongo/bisongo/loc"
	"github.com/bisongo/bisongo/precgraph"
	"github.com/bisongo/bisongo/symbol"
)

// FatalError reports a finalization failure severe enough to abort the
// pipeline: a symbol-table overflow or an invalid start symbol. The engine
// never panics over this; callers decide how to exit.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string { return e.Message }

// Finalize runs the five-phase pipeline in order: check-defined,
// alias-consistency, pack, token-translation, start-symbol validation, with
// the precedence-graph warnings and grouping pass sandwiched between the
// alias pass and pack (so a token's reconciled prec/assoc are what gets
// checked, and so the warnings see each node's true degree before grouping
// clears it). Phases A-D only ever accumulate non-fatal diagnostics on
// e.Sink; Finalize itself returns a *FatalError only from start-symbol
// validation (phase E). The symbol-number ceiling is not checked here:
// Store.Get refuses to create a symbol past it.
func (e *Engine) Finalize() error {
	// Phase A elevates an undefined start symbol to nterm, so note it first
	// for start-symbol validation to report.
	var undefinedStart *symbol.Symbol
	if e.StartSymbol != symbol.NilID && e.Symbols.Symbol(e.StartSymbol).Class() == symbol.ClassUnknown {
		undefinedStart = e.Symbols.Symbol(e.StartSymbol)
	}
	e.phaseA()
	e.phaseB()

	if e.Prec.NSyms() > 0 {
		e.warnPrecedence()
		e.Prec.GroupRelations()
	}

	e.Packed = e.Symbols.Pack()
	e.NTokens = e.Symbols.NTokens()
	e.NVars = e.Symbols.NVars()
	e.NSyms = e.Symbols.NSyms()

	if err := e.phaseD(); err != nil {
		return err
	}
	if undefinedStart != nil {
		return &FatalError{Message: fmt.Sprintf("start symbol %v is undefined", undefinedStart.Text())}
	}
	return e.phaseE()
}

// phaseA is check-defined: every symbol still ClassUnknown is elevated to
// nterm and diagnosed, then every semantic type is swept for
// used-but-undeclared and declared-but-unused code.
func (e *Engine) phaseA() {
	for _, s := range e.Symbols.Sorted() {
		if s.Class() != symbol.ClassUnknown {
			continue
		}
		sev := diag.SeverityWother
		if s.Status() == symbol.StatusNeeded {
			sev = diag.SeverityComplaint
		}
		e.Sink.Complain(sev, s.Location(), "%v is used, but is not defined as a token and has no rules", s.Text())

		e.Symbols.ClassSet(s, symbol.ClassNTerm, s.Location(), false)
		e.Symbols.MarkPropsUsed(s)
		if s.HasTypeName() {
			e.Types.MarkDeclared(s.TypeName(e.Pool), s.TypeLocation())
		}
	}

	for _, t := range e.Types.Sorted() {
		if t.IsReserved() {
			continue
		}
		switch t.Status() {
		case symbol.TypeUsed:
			e.Sink.Complain(diag.SeverityWother, t.Location(), "type <%v> is used, but is not associated to any symbol instance", t.Text())
		case symbol.TypeDeclared:
			destructorUnused, printerUnused := t.UnusedCodeProps()
			if destructorUnused {
				e.Sink.Complain(diag.SeverityWother, t.Location(), "%%destructor for type <%v> is never used", t.Text())
			}
			if printerUnused {
				e.Sink.Complain(diag.SeverityWother, t.Location(), "%%printer for type <%v> is never used", t.Text())
			}
		}
	}
}

// phaseB is alias-consistency: every alias pair gets its
// type_name/props/(prec,assoc) reconciled across both records.
func (e *Engine) phaseB() {
	for _, s := range e.Symbols.Sorted() {
		e.Symbols.ReconcileAlias(s, e.Types)
	}
}

// warnPrecedence sweeps every token for two dead-declaration warnings: a
// %precedence-only token whose precedence graph node never took part in any
// relation ("useless precedence"), and a token with a real associativity
// whose associativity was never consulted while resolving a conflict
// ("useless associativity"). It must run before GroupRelations: collapsing
// a node into a group clears its individual edge lists, which would make an
// ordinary grouped token look falsely isolated.
func (e *Engine) warnPrecedence() {
	for _, s := range e.Symbols.Sorted() {
		if s.Class() != symbol.ClassToken {
			continue
		}
		id := precgraph.NodeID(s.Number())
		if int(id) < 0 || int(id) >= e.Prec.NSyms() {
			continue
		}
		node := e.Prec.Node(id)

		if s.Assoc() == symbol.AssocPrecedence && s.Prec() != 0 && node.OutDegree() == 0 && node.InDegree() == 0 {
			e.Sink.Complain(diag.SeverityWprecedence, s.Location(), "useless precedence for %v", s.Text())
		}
		if s.Assoc() != symbol.AssocUndef && s.Assoc() != symbol.AssocPrecedence && !e.Prec.UsedAssoc(id) {
			e.Sink.Complain(diag.SeverityWprecedence, s.Location(), "useless associativity for %v", s.Text())
		}
	}
}

// phaseD is token-translation. It must run after Pack, since it indexes
// e.Packed by final number. The engine's own generated distinguished
// tokens ($undefined, $end, …) never come from a lexer and are excluded
// from the translation table entirely; the error token is the one
// generated-looking exception that participates anyway, through its own
// 256 special case below.
func (e *Engine) phaseD() error {
	tokens := e.Packed[:e.NTokens]
	translatable := make([]*symbol.Symbol, 0, len(tokens))
	for _, s := range tokens {
		if !s.IsGenerated() {
			translatable = append(translatable, s)
		}
	}

	maxUserTokenNumber := 256
	claimed := make(map[int]bool, len(translatable))
	for _, s := range translatable {
		if u := s.UserTokenNumber(); u != symbol.UserNumberUndefined {
			claimed[u] = true
			if u > maxUserTokenNumber {
				maxUserTokenNumber = u
			}
		}
	}

	errTok := e.Symbols.Symbol(e.ErrToken)
	if !claimed[256] && errTok.UserTokenNumber() == symbol.UserNumberUndefined {
		e.Symbols.UserTokenNumberSet(errTok, 256, loc.Position{})
		claimed[256] = true
	}

	next := maxUserTokenNumber
	for _, s := range translatable {
		if s.UserTokenNumber() != symbol.UserNumberUndefined {
			continue
		}
		next++
		e.Symbols.UserTokenNumberSet(s, next, loc.Position{})
	}
	if next > maxUserTokenNumber {
		maxUserTokenNumber = next
	}

	undefNumber := e.Symbols.Symbol(e.UndefToken).Number()
	translations := make([]int, maxUserTokenNumber+1)
	for i := range translations {
		translations[i] = undefNumber
	}
	for _, s := range translatable {
		u := s.UserTokenNumber()
		if u < 0 || u >= len(translations) {
			continue
		}
		if translations[u] != undefNumber {
			e.Sink.Complain(diag.SeverityComplaint, s.Location(), "redeclaration of the user token number of %v", s.Text())
			continue
		}
		translations[u] = s.Number()
	}

	e.TokenTranslations = translations
	e.MaxUserTokenNumber = maxUserTokenNumber
	return nil
}

// phaseE is start-symbol validation: the only phase that can still fail
// fatally by the time it runs.
func (e *Engine) phaseE() error {
	if e.StartSymbol == symbol.NilID {
		return &FatalError{Message: "no start symbol declared"}
	}
	start := e.Symbols.Symbol(e.StartSymbol)
	switch start.Class() {
	case symbol.ClassUnknown:
		return &FatalError{Message: fmt.Sprintf("start symbol %v is undefined", start.Text())}
	case symbol.ClassToken:
		return &FatalError{Message: fmt.Sprintf("start symbol %v is a token", start.Text())}
	}
	return nil
}
