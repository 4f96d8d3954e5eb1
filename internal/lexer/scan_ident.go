package lexer

import (
	"lunar/internal/dialect"
	"lunar/internal/token"
)

// scanIdentOrKeyword сканирует [Name] и проверяет через LookupKeyword.
// Ключевые слова регистрозависимые (только lowercase). Token.Text — ровно исходный срез.
// 'goto' до Lua 5.2 — обычное имя.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}

	tok := lx.makeToken(token.Name, start)
	if k, ok := token.LookupKeyword(tok.Text); ok {
		if k == token.KwGoto && !lx.opts.Version.Has(dialect.FeatureGoto) {
			return tok
		}
		tok.Kind = k
	}
	return tok
}
