// Package symbol implements the symbol table and semantic-type table:
// interning grammatical symbols and user-declared types, tracking their
// declarations, and (via Store.Pack) assigning the dense internal
// numbering the table builder downstream expects. The
// engine package drives this package's phases through Store.Sorted,
// Store.ReconcileAlias, and Store.Pack in turn; it owns only the
// orchestration, not the field-level mutation.
package symbol

import (
	"strings"

	"github.com/bisongo/bisongo/intern"
	"github.com/bisongo/bisongo/loc"
)

// Class is the grammatical class of a Symbol.
type Class int

const (
	ClassUnknown Class = iota
	ClassToken
	ClassNTerm
)

func (c Class) String() string {
	switch c {
	case ClassToken:
		return "token"
	case ClassNTerm:
		return "nterm"
	default:
		return "unknown"
	}
}

// Status tracks whether a symbol was declared, only referenced, or neither.
type Status int

const (
	StatusUndeclared Status = iota
	StatusNeeded
	StatusDeclared
)

// Assoc is a declared associativity/precedence kind.
type Assoc int

const (
	AssocUndef Assoc = iota
	AssocLeft
	AssocRight
	AssocNonAssoc
	AssocPrecedence
)

// PropKind indexes Symbol.props and SemanticType.props.
type PropKind int

const (
	PropDestructor PropKind = iota
	PropPrinter
	numPropKinds
)

// CodePropsKind distinguishes a property with no code, inherited ("keep")
// code, and user-supplied code. Modeled as a closed enum, so there is no
// runtime default-case assertion to maintain.
type CodePropsKind int

const (
	CodePropsNone CodePropsKind = iota
	CodePropsKeep
	CodePropsUser
)

func (k CodePropsKind) String() string {
	switch k {
	case CodePropsKeep:
		return "keep"
	case CodePropsUser:
		return "user"
	default:
		return "none"
	}
}

// CodeProps is a %destructor or %printer attachment.
type CodeProps struct {
	Code     string
	Location loc.Position
	IsUsed   bool
	Kind     CodePropsKind
	set      bool
}

// Set reports whether this CodeProps was ever assigned.
func (p CodeProps) Set() bool { return p.set }

// Sentinel numeric boundaries.
const (
	NumberUndefined          = -1
	UserNumberUndefined      = -1
	UserNumberHasStringAlias = -2
	// SymbolNumberMaximum bounds nsyms; bison's SYMBOL_NUMBER_MAXIMUM is
	// derived from its 16-bit table-index type, so we use the same width.
	SymbolNumberMaximum = 1<<15 - 1
)

// ID is a stable arena index identifying a Symbol within a Store. It
// replaces the pointer back-edges bison's C uses for alias pairs with a
// stable integer index into an arena.
type ID int

// NilID is the "no symbol" / "no alias" sentinel.
const NilID ID = -1

// Symbol is a terminal or nonterminal grammar entity.
type Symbol struct {
	id  ID
	tag intern.Tag
	// text caches the interned tag's bytes for cheap string checks (POSIX
	// dash warning, `$`/`@` dummy-symbol conventions) without a pool
	// round-trip on every access.
	text     string
	location loc.Position

	typeName     intern.Tag
	hasType      bool
	typeLocation loc.Position

	props [numPropKinds]CodeProps

	number int

	prec         int
	assoc        Assoc
	precLocation loc.Position

	userTokenNumber int

	alias ID

	class  Class
	status Status
}

func newSymbol(id ID, tag intern.Tag, text string, at loc.Position) *Symbol {
	return &Symbol{
		id:              id,
		tag:             tag,
		text:            text,
		location:        at,
		number:          NumberUndefined,
		userTokenNumber: UserNumberUndefined,
		alias:           NilID,
		class:           ClassUnknown,
		status:          StatusUndeclared,
	}
}

func (s *Symbol) ID() ID              { return s.id }
func (s *Symbol) Text() string        { return s.text }
func (s *Symbol) Location() loc.Position { return s.location }
func (s *Symbol) Class() Class        { return s.class }
func (s *Symbol) Status() Status      { return s.status }
func (s *Symbol) Number() int         { return s.number }
func (s *Symbol) Prec() int           { return s.prec }
func (s *Symbol) Assoc() Assoc        { return s.assoc }
func (s *Symbol) UserTokenNumber() int { return s.userTokenNumber }
func (s *Symbol) Alias() ID           { return s.alias }
func (s *Symbol) HasAlias() bool      { return s.alias != NilID }

// HasTypeName reports whether a <type> tag has been attached.
func (s *Symbol) HasTypeName() bool { return s.hasType }

// TypeLocation returns where the <type> tag was declared. Meaningless when
// HasTypeName is false.
func (s *Symbol) TypeLocation() loc.Position { return s.typeLocation }

// IsQuoted reports whether the symbol's tag is a literal-string alias form
// such as "if" or 'x'.
func (s *Symbol) IsQuoted() bool {
	return strings.HasPrefix(s.text, "\"") || strings.HasPrefix(s.text, "'")
}

// IsDummy reports whether this is an internally-generated symbol: tags
// beginning with '@' or "$@".
func (s *Symbol) IsDummy() bool {
	return strings.HasPrefix(s.text, "@") || strings.HasPrefix(s.text, "$@")
}

func (s *Symbol) isGenerated() bool {
	return strings.HasPrefix(s.text, "$")
}

// IsGenerated is the exported form of isGenerated: true for the engine's
// own distinguished symbols ($accept, $undefined, $end, …), which never
// come from a lexer and so never occupy a token_translations slot. The
// error token is deliberately exempt, since its tag is "error" and it
// does participate in translation, through Phase D's explicit 256
// special case.
func (s *Symbol) IsGenerated() bool { return s.isGenerated() }

func (s *Symbol) isErrorToken() bool {
	return s.text == "error"
}

// hasStringAliasSentinel reports whether this symbol is the identifier side
// of an alias pair (its user token number "lives on" its partner).
func (s *Symbol) hasStringAliasSentinel() bool {
	return s.userTokenNumber == UserNumberHasStringAlias
}
