package token

// Kind represents the category of a Lua token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Unknown is a single character the lexer could not classify.
	Unknown

	// Name is an identifier.
	Name

	// KwAnd represents the 'and' keyword.
	KwAnd
	KwBreak
	KwDo
	KwElse
	KwElseif
	KwEnd
	KwFalse
	KwFor
	KwFunction
	KwGoto
	KwIf
	KwIn
	KwLocal
	KwNil
	KwNot
	KwOr
	KwRepeat
	KwReturn
	KwThen
	KwTrue
	KwUntil
	// KwWhile represents the 'while' keyword.
	KwWhile

	// IntLit is an integer numeral (also used for malformed numerals).
	IntLit
	// FloatLit is a numeral with a radix point, an exponent, or one that overflowed int64.
	FloatLit
	// StringLit is a quoted string literal.
	StringLit
	// LongStringLit is a long bracket string, [[...]] or [==[...]==].
	LongStringLit

	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	SlashSlash // //
	Percent    // %
	Caret      // ^
	Hash       // #
	Amp        // &
	Tilde      // ~
	Pipe       // |
	Shl        // <<
	Shr        // >>
	EqEq       // ==
	TildeEq    // ~=
	LtEq       // <=
	GtEq       // >=
	Lt         // <
	Gt         // >
	Assign     // =
	LParen     // (
	RParen     // )
	LBrace     // {
	RBrace     // }
	LBracket   // [
	RBracket   // ]
	ColonColon // ::
	Semicolon  // ;
	Colon      // :
	Comma      // ,
	Dot        // .
	DotDot     // ..
	DotDotDot  // ...

	kindCount
)

var kindNames = [...]string{
	Invalid:       "Invalid",
	EOF:           "EOF",
	Unknown:       "Unknown",
	Name:          "Name",
	KwAnd:         "and",
	KwBreak:       "break",
	KwDo:          "do",
	KwElse:        "else",
	KwElseif:      "elseif",
	KwEnd:         "end",
	KwFalse:       "false",
	KwFor:         "for",
	KwFunction:    "function",
	KwGoto:        "goto",
	KwIf:          "if",
	KwIn:          "in",
	KwLocal:       "local",
	KwNil:         "nil",
	KwNot:         "not",
	KwOr:          "or",
	KwRepeat:      "repeat",
	KwReturn:      "return",
	KwThen:        "then",
	KwTrue:        "true",
	KwUntil:       "until",
	KwWhile:       "while",
	IntLit:        "IntLit",
	FloatLit:      "FloatLit",
	StringLit:     "StringLit",
	LongStringLit: "LongStringLit",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	SlashSlash:    "//",
	Percent:       "%",
	Caret:         "^",
	Hash:          "#",
	Amp:           "&",
	Tilde:         "~",
	Pipe:          "|",
	Shl:           "<<",
	Shr:           ">>",
	EqEq:          "==",
	TildeEq:       "~=",
	LtEq:          "<=",
	GtEq:          ">=",
	Lt:            "<",
	Gt:            ">",
	Assign:        "=",
	LParen:        "(",
	RParen:        ")",
	LBrace:        "{",
	RBrace:        "}",
	LBracket:      "[",
	RBracket:      "]",
	ColonColon:    "::",
	Semicolon:     ";",
	Colon:         ":",
	Comma:         ",",
	Dot:           ".",
	DotDot:        "..",
	DotDotDot:     "...",
}

// String returns the source spelling for keywords and punctuation and the
// kind name for everything else.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return k >= KwAnd && k <= KwWhile }

// IsLiteral reports whether k is a numeric or string literal.
func (k Kind) IsLiteral() bool { return k >= IntLit && k <= LongStringLit }

// IsPunct reports whether k is an operator or punctuation mark.
func (k Kind) IsPunct() bool { return k >= Plus && k <= DotDotDot }

// IsBlockEnd reports whether k closes a block: end, else, elseif, until or EOF.
func (k Kind) IsBlockEnd() bool {
	switch k {
	case KwEnd, KwElse, KwElseif, KwUntil, EOF:
		return true
	default:
		return false
	}
}

// Quoted formats the kind for diagnostics: keywords and punctuation in quotes.
func (k Kind) Quoted() string {
	if k.IsKeyword() || k.IsPunct() {
		return "'" + k.String() + "'"
	}
	switch k {
	case Name:
		return "identifier"
	case EOF:
		return "end of file"
	case IntLit, FloatLit:
		return "number"
	case StringLit, LongStringLit:
		return "string"
	default:
		return k.String()
	}
}
