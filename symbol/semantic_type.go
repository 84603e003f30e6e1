package symbol

import (
	"github.com/bisongo/bisongo/intern"
	"github.com/bisongo/bisongo/loc"
)

// TypeStatus tracks whether a semantic type tag was only referenced by a
// symbol's <type>, explicitly declared (code attached to it), or neither.
// This mirrors Symbol's Status lifecycle.
type TypeStatus int

const (
	TypeUndeclared TypeStatus = iota
	TypeUsed
	TypeDeclared
)

// SemanticType is a <tag> grouping symbols that share %destructor/%printer
// code.
type SemanticType struct {
	tag      intern.Tag
	text     string
	location loc.Position
	status   TypeStatus
	props    [numPropKinds]CodeProps
}

func (t *SemanticType) Text() string         { return t.text }
func (t *SemanticType) Location() loc.Position { return t.location }
func (t *SemanticType) Status() TypeStatus   { return t.status }

// IsReserved reports whether this is one of the two exempt default tags
// ("" and "*") that are never flagged as "declared but never used".
func (t *SemanticType) IsReserved() bool {
	return t.text == "" || t.text == "*"
}
