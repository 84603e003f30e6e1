package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// TokenDesc describes one already-parsed token declaration. It is
// deliberately not a grammar-file AST node: bisongo build consumes the
// output of a grammar-file parser that is out of scope for this
// repository, the same layering cmd/vartan's compile/describe split uses
// between "parse the .vartan source" and "operate on the already-parsed
// structure".
type TokenDesc struct {
	Name          string `json:"name"`
	Alias         string `json:"alias,omitempty"`
	Type          string `json:"type,omitempty"`
	UserNumber    *int   `json:"user_number,omitempty"`
	Precedence    int    `json:"prec,omitempty"`
	Associativity string `json:"assoc,omitempty"` // "left", "right", "nonassoc", "precedence"
	Destructor    string `json:"destructor,omitempty"`
	Printer       string `json:"printer,omitempty"`
}

// NonTermDesc describes one nonterminal declaration.
type NonTermDesc struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Destructor string `json:"destructor,omitempty"`
	Printer    string `json:"printer,omitempty"`
}

// TypeDesc attaches %destructor/%printer code to a <type> tag directly,
// independent of any one symbol.
type TypeDesc struct {
	Name       string `json:"name"`
	Destructor string `json:"destructor,omitempty"`
	Printer    string `json:"printer,omitempty"`
}

// PrecedenceDesc is one register_precedence(hi, lo) call: Higher takes
// strictly higher precedence than Lower.
type PrecedenceDesc struct {
	Higher string `json:"higher"`
	Lower  string `json:"lower"`
}

// AssocDesc is one register_assoc(i, j) call: i and j had their
// associativity consulted while resolving a shift/reduce conflict.
type AssocDesc struct {
	I string `json:"i"`
	J string `json:"j"`
}

// Description is the complete input to bisongo build: a grammar's tokens,
// nonterminals, semantic types, and precedence relations, already parsed
// by some upstream collaborator; lexing and parsing the grammar file
// itself is out of scope here.
type Description struct {
	Start         string            `json:"start"`
	Tokens        []*TokenDesc      `json:"tokens"`
	NonTerminals  []*NonTermDesc    `json:"non_terminals"`
	Types         []*TypeDesc       `json:"types"`
	Precedence    []*PrecedenceDesc `json:"precedence"`
	Associativity []*AssocDesc      `json:"associativity"`
}

func readDescription(path string) (*Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open the description file %s: %w", path, err)
	}
	defer f.Close()

	desc := &Description{}
	if err := json.NewDecoder(f).Decode(desc); err != nil {
		return nil, fmt.Errorf("cannot parse the description file %s: %w", path, err)
	}
	return desc, nil
}
