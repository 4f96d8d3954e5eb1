package lexer

import (
	"fmt"

	"lunar/internal/diag"
	"lunar/internal/token"
)

// Жадность: сначала 3-символьные, затем 2-символьные, затем 1-символьные.
// Битовые операторы и '//' лексируются всегда; версию проверяет парсер.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		return lx.makeToken(k, start)
	}

	switch {
	case lx.try3('.', '.', '.'):
		return emit(token.DotDotDot)
	case lx.try2('.', '.'):
		return emit(token.DotDot)
	case lx.try2(':', ':'):
		return emit(token.ColonColon)
	case lx.try2('=', '='):
		return emit(token.EqEq)
	case lx.try2('~', '='):
		return emit(token.TildeEq)
	case lx.try2('<', '='):
		return emit(token.LtEq)
	case lx.try2('>', '='):
		return emit(token.GtEq)
	case lx.try2('<', '<'):
		return emit(token.Shl)
	case lx.try2('>', '>'):
		return emit(token.Shr)
	case lx.try2('/', '/'):
		return emit(token.SlashSlash)
	}

	// односимвольные
	ch := lx.cursor.Peek()
	if kind, ok := singlePunct[ch]; ok {
		lx.cursor.Bump()
		return emit(kind)
	}

	// неизвестный символ: одна руна (или один байт невалидного UTF-8)
	lx.bumpRune()
	tok := emit(token.Unknown)
	lx.errLex(diag.LexUnknownChar, tok.Span, fmt.Sprintf("unexpected symbol %q", tok.Text))
	return tok
}

var singlePunct = map[byte]token.Kind{
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'^': token.Caret,
	'#': token.Hash,
	'&': token.Amp,
	'~': token.Tilde,
	'|': token.Pipe,
	'<': token.Lt,
	'>': token.Gt,
	'=': token.Assign,
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	']': token.RBracket,
	';': token.Semicolon,
	':': token.Colon,
	',': token.Comma,
	'.': token.Dot,
}

// scanBracketOrLongString различает '[', длинную строку и "[=" без второй скобки.
func (lx *Lexer) scanBracketOrLongString() token.Token {
	start := lx.cursor.Mark()
	level, ok := lx.longBracketLevel()
	if ok {
		value, closed := lx.readLongBracket(level, true)
		tok := lx.makeToken(token.LongStringLit, start)
		tok.Value = token.StringValue(value)
		if !closed {
			lx.errLex(diag.LexUnterminatedLongString, tok.Span, "unfinished long string")
		}
		return tok
	}
	if level == 0 {
		lx.cursor.Bump()
		return lx.makeToken(token.LBracket, start)
	}
	// "[==" без второй '[': забираем скобку и '=' одним токеном
	for range level + 1 {
		lx.cursor.Bump()
	}
	tok := lx.makeToken(token.Unknown, start)
	lx.errLex(diag.LexInvalidLongDelimiter, tok.Span, "invalid long string delimiter")
	return tok
}
