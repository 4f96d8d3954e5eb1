package lexer

import (
	"lunar/internal/diag"
	"lunar/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
//   - ' ', '\t', '\v', '\f' коалесцируются в один TriviaWhitespace
//   - подряд идущие переводы строк ("\n", "\r", "\r\n", "\n\r") -> один TriviaNewline
//   - --... до перевода строки -> TriviaLineComment
//   - --[[ ... ]] / --[==[ ... ]==] -> TriviaBlockComment (незакрытый — репорт, режем на EOF)
func (lx *Lexer) collectLeadingTrivia() {
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if isSpace(b) {
			lx.skipSpaces()
			lx.pushTrivia(token.TriviaWhitespace, start)
			continue
		}

		if b == '\n' || b == '\r' {
			for lx.cursor.EatNewline() {
			}
			lx.pushTrivia(token.TriviaNewline, start)
			continue
		}

		if b == '-' && lx.scanCommentIntoHold() {
			continue
		}

		// нет больше trivia
		break
	}
}

// collectTrailingTrivia забирает пробелы и комментарии до конца строки.
// Сам перевод строки остаётся следующему токену.
func (lx *Lexer) collectTrailingTrivia() []token.Trivia {
	saved := lx.hold
	lx.hold = nil
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()
		if isSpace(b) {
			lx.skipSpaces()
			lx.pushTrivia(token.TriviaWhitespace, start)
			continue
		}
		if b == '-' && lx.scanCommentIntoHold() {
			continue
		}
		break
	}
	out := lx.hold
	lx.hold = saved
	return out
}

// --... , --[[...]]
func (lx *Lexer) scanCommentIntoHold() bool {
	if !lx.try2('-', '-') {
		return false
	}
	start := Mark(lx.cursor.Off - 2)

	if level, ok := lx.longBracketLevel(); ok {
		if _, closed := lx.readLongBracket(level, false); !closed {
			lx.errLex(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated block comment")
		}
		lx.pushTrivia(token.TriviaBlockComment, start)
		return true
	}

	lx.skipToLineEnd()
	lx.pushTrivia(token.TriviaLineComment, start)
	return true
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}

func (lx *Lexer) skipSpaces() {
	for !lx.cursor.EOF() && isSpace(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) skipToLineEnd() {
	for !lx.cursor.EOF() {
		if b := lx.cursor.Peek(); b == '\n' || b == '\r' {
			return
		}
		lx.cursor.Bump()
	}
}
