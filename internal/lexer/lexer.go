package lexer

import (
	"lunar/internal/diag"
	"lunar/internal/source"
	"lunar/internal/token"
)

// Lexer превращает исходный текст Lua в поток токенов с прикреплёнными trivia.
// Каждый байт входа принадлежит ровно одному токену (в тексте или в trivia),
// поэтому конкатенация Width() всех токенов до EOF включительно равна файлу.
type Lexer struct {
	file    *source.File
	cursor  Cursor
	opts    Options
	look    []token.Token     // буфер lookahead (FIFO)
	hold    []token.Trivia    // накопленные leading trivia
	pending []diag.Diagnostic // диагностики текущего токена
	started bool
	done    bool // EOF уже выдан сканером
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Next возвращает следующий **значимый** токен с уже собранными Leading и Trailing.
// После EOF всегда возвращает EOF без trivia.
func (lx *Lexer) Next() token.Token {
	if len(lx.look) > 0 {
		tok := lx.look[0]
		copy(lx.look, lx.look[1:])
		lx.look = lx.look[:len(lx.look)-1]
		return tok
	}
	return lx.scan()
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	return lx.PeekN(0)
}

// PeekN возвращает n-й (с нуля) токен впереди, не потребляя ничего.
func (lx *Lexer) PeekN(n int) token.Token {
	for len(lx.look) <= n {
		lx.look = append(lx.look, lx.scan())
	}
	return lx.look[n]
}

// File returns the file being tokenized.
func (lx *Lexer) File() *source.File { return lx.file }

func (lx *Lexer) scan() token.Token {
	if lx.done {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}
	if !lx.started {
		lx.started = true
		lx.scanPreamble()
	}

	// 1) leading trivia
	lx.collectLeadingTrivia()

	// 2) EOF забирает оставшиеся trivia, чтобы round-trip был полным
	if lx.cursor.EOF() {
		lx.done = true
		tok := token.Token{Kind: token.EOF, Span: lx.emptySpan()}
		return lx.finish(tok, false)
	}

	// 3) выбираем сканер по текущему байту
	ch := lx.cursor.Peek()
	var tok token.Token
	switch {
	case isIdentStartByte(ch):
		tok = lx.scanIdentOrKeyword()
	case isDec(ch):
		tok = lx.scanNumber()
	case ch == '.' && lx.isNumberAfterDot():
		tok = lx.scanNumber()
	case ch == '"' || ch == '\'':
		tok = lx.scanString()
	case ch == '[':
		tok = lx.scanBracketOrLongString()
	default:
		tok = lx.scanOperatorOrPunct()
	}

	if sp := tok.Span; sp.Len() > lx.opts.tokenLimit() {
		lx.warnLex(diag.LexTokenTooLong, sp, "token exceeds maximum length")
	}
	return lx.finish(tok, true)
}

// finish приклеивает leading/trailing trivia и диагностики к токену.
func (lx *Lexer) finish(tok token.Token, trailing bool) token.Token {
	tok.Leading = lx.hold
	lx.hold = nil
	if trailing {
		tok.Trailing = lx.collectTrailingTrivia()
	}
	if len(lx.pending) > 0 {
		tok.Diags = lx.pending
		lx.pending = nil
	}
	return tok
}

// scanPreamble забирает BOM и (в режиме Script) строку '#...' в начале файла.
func (lx *Lexer) scanPreamble() {
	if b0, b1, b2, ok := lx.cursor.Peek3(); ok && b0 == 0xEF && b1 == 0xBB && b2 == 0xBF {
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.cursor.Bump()
		lx.cursor.Bump()
		lx.pushTrivia(token.TriviaBOM, start)
	}
	if lx.opts.Script && lx.cursor.Peek() == '#' {
		start := lx.cursor.Mark()
		lx.skipToLineEnd()
		lx.pushTrivia(token.TriviaShebang, start)
	}
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) makeToken(kind token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// All tokenizes the whole file and returns every token including the final EOF.
func All(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	out := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}
