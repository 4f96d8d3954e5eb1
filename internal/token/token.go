package token

import (
	"lunar/internal/diag"
	"lunar/internal/source"
)

// Token represents a single source token with its location, trivia and value.
type Token struct {
	Kind     Kind
	Span     source.Span
	Text     string
	Value    Value
	Leading  []Trivia
	Trailing []Trivia
	// Diags holds diagnostics produced while scanning or placing this token.
	Diags []diag.Diagnostic
	// Missing marks a zero-width token synthesized by error recovery.
	Missing bool
}

// Width is the number of source bytes the token owns, trivia included.
func (t *Token) Width() int {
	return TriviaWidth(t.Leading) + len(t.Text) + TriviaWidth(t.Trailing)
}

// FullStart is the offset of the first leading trivia byte.
func (t *Token) FullStart() uint32 {
	if len(t.Leading) > 0 {
		return t.Leading[0].Span.Start
	}
	return t.Span.Start
}

// IsLiteral reports whether the token is a numeric or string literal.
func (t *Token) IsLiteral() bool { return t.Kind.IsLiteral() }

// IsKeyword reports whether the token is a reserved word.
func (t *Token) IsKeyword() bool { return t.Kind.IsKeyword() }

// IsPunctOrOp reports whether the token is punctuation or an operator.
func (t *Token) IsPunctOrOp() bool { return t.Kind.IsPunct() }

// IsName reports whether the token is an identifier.
func (t *Token) IsName() bool { return t.Kind == Name }

// HasComments reports whether any trivia around the token is a comment.
func (t *Token) HasComments() bool {
	for _, tv := range t.Leading {
		if tv.IsComment() {
			return true
		}
	}
	for _, tv := range t.Trailing {
		if tv.IsComment() {
			return true
		}
	}
	return false
}
