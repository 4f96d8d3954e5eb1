package lexer

import (
	"fmt"

	"lunar/internal/diag"
	"lunar/internal/dialect"
	"lunar/internal/token"
)

// scanString сканирует короткую строку в ' или ". Value — декодированные байты.
// Перевод строки без '\' или EOF обрывают строку: токен заканчивается перед ним.
// Ошибочные escape-последовательности репортятся, сканирование продолжается.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	quote := lx.cursor.Bump()
	buf := make([]byte, 0, 16)

	for {
		if lx.cursor.EOF() {
			break
		}
		b := lx.cursor.Peek()
		switch b {
		case quote:
			lx.cursor.Bump()
			tok := lx.makeToken(token.StringLit, start)
			tok.Value = token.StringValue(buf)
			return tok
		case '\n', '\r':
			tok := lx.makeToken(token.StringLit, start)
			tok.Value = token.StringValue(buf)
			lx.errLex(diag.LexUnterminatedString, tok.Span, "unfinished string")
			return tok
		case '\\':
			buf = lx.scanEscape(buf)
		default:
			lx.cursor.Bump()
			buf = append(buf, b)
		}
	}

	tok := lx.makeToken(token.StringLit, start)
	tok.Value = token.StringValue(buf)
	lx.errLex(diag.LexUnterminatedString, tok.Span, "unfinished string")
	return tok
}

var simpleEscapes = map[byte]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
}

// scanEscape декодирует одну escape-последовательность, курсор стоит на '\'.
func (lx *Lexer) scanEscape(buf []byte) []byte {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '\'
	if lx.cursor.EOF() {
		return buf
	}

	c := lx.cursor.Peek()
	if v, ok := simpleEscapes[c]; ok {
		lx.cursor.Bump()
		return append(buf, v)
	}

	switch {
	case c == '\n' || c == '\r':
		lx.cursor.EatNewline()
		return append(buf, '\n')

	case c == 'x':
		lx.cursor.Bump()
		var v byte
		for i := 0; i < 2; i++ {
			h := lx.cursor.Peek()
			if !isHex(h) {
				lx.errLex(diag.LexInvalidEscape, lx.cursor.SpanFrom(start), "hexadecimal digit expected")
				return buf
			}
			lx.cursor.Bump()
			v = v<<4 | byte(hexValue(h))
		}
		lx.requireFeature(dialect.FeatureHexEscape, diag.LexInvalidEscape, lx.cursor.SpanFrom(start))
		return append(buf, v)

	case c == 'z':
		lx.cursor.Bump()
		for !lx.cursor.EOF() {
			b := lx.cursor.Peek()
			if isSpace(b) {
				lx.cursor.Bump()
				continue
			}
			if !lx.cursor.EatNewline() {
				break
			}
		}
		lx.requireFeature(dialect.FeatureSkipWhitespaceEscape, diag.LexInvalidEscape, lx.cursor.SpanFrom(start))
		return buf

	case c == 'u':
		return lx.scanUTF8Escape(buf, start)

	case isDec(c):
		var v int
		for i := 0; i < 3 && isDec(lx.cursor.Peek()); i++ {
			v = v*10 + int(lx.cursor.Bump()-'0')
		}
		if v > 255 {
			lx.errLex(diag.LexInvalidEscape, lx.cursor.SpanFrom(start), "decimal escape too large")
			return buf
		}
		return append(buf, byte(v))
	}

	// неизвестный escape: символ берём как есть
	lx.bumpRune()
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexInvalidEscape, sp, fmt.Sprintf("invalid escape sequence '%s'", lx.file.Content[sp.Start:sp.End]))
	return append(buf, lx.file.Content[sp.Start+1:sp.End]...)
}

// scanUTF8Escape: \u{XXX}, значение до 2^31 кодируется расширенным UTF-8 (до 6 байт).
func (lx *Lexer) scanUTF8Escape(buf []byte, start Mark) []byte {
	lx.cursor.Bump() // 'u'
	if !lx.cursor.Eat('{') {
		lx.errLex(diag.LexInvalidEscape, lx.cursor.SpanFrom(start), "missing '{' in \\u{xxxx}")
		return buf
	}
	limit := uint64(0x7FFFFFFF)
	if !lx.opts.Version.AtLeast(dialect.Lua54) {
		limit = 0x10FFFF
	}
	var v uint64
	digits := 0
	tooLarge := false
	for isHex(lx.cursor.Peek()) {
		v = v<<4 | hexValue(lx.cursor.Bump())
		digits++
		if v > limit {
			tooLarge = true
			v = limit
		}
	}
	if digits == 0 {
		lx.errLex(diag.LexInvalidEscape, lx.cursor.SpanFrom(start), "hexadecimal digit expected")
		return buf
	}
	if !lx.cursor.Eat('}') {
		lx.errLex(diag.LexInvalidEscape, lx.cursor.SpanFrom(start), "missing '}' in \\u{xxxx}")
		return buf
	}
	sp := lx.cursor.SpanFrom(start)
	if tooLarge {
		lx.errLex(diag.LexInvalidEscape, sp, "UTF-8 value too large")
		return buf
	}
	lx.requireFeature(dialect.FeatureUTF8Escape, diag.LexInvalidEscape, sp)
	return appendUTF8Ext(buf, uint32(v))
}

// appendUTF8Ext кодирует x так же, как это делает Lua: суррогаты и значения
// выше 0x10FFFF допустимы, последовательность занимает до 6 байт.
func appendUTF8Ext(buf []byte, x uint32) []byte {
	if x < 0x80 {
		return append(buf, byte(x))
	}
	var tmp [6]byte
	n := 0
	mfb := uint32(0x3f) // максимум, помещающийся в первый байт
	for {
		tmp[5-n] = byte(0x80 | (x & 0x3f))
		n++
		x >>= 6
		mfb >>= 1
		if x <= mfb {
			break
		}
	}
	tmp[5-n] = byte((^mfb << 1) | x)
	n++
	return append(buf, tmp[6-n:]...)
}
