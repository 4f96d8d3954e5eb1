package parser

import (
	"strconv"

	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/source"
	"lunar/internal/token"
	"lunar/internal/trace"
)

// sink — приёмник диагностик одного разбора: кладёт в Bag и дублирует
// во внешний Reporter. Ошибки сверх MaxErrors отбрасываются; фатальные
// проходят всегда, иначе обрезка по глубине может остаться незамеченной.
type sink struct {
	next      diag.Reporter
	maxErrors uint
	errors    uint
	dropped   uint

	// последняя позиция, где уже сообщена ошибка, — чтобы не плодить каскады
	lastErrAt  uint32
	hasLastErr bool
}

func newSink(bag *diag.Bag, user diag.Reporter, maxErrors uint) *sink {
	// внешний Reporter получает тот же список без повторов, что и Tree.Diagnostics
	if user != nil {
		user = diag.NewDedupReporter(user)
	}
	return &sink{
		next:      diag.Tee(diag.BagReporter{Bag: bag}, user),
		maxErrors: maxErrors,
	}
}

func (s *sink) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	if sev >= diag.SevError {
		s.lastErrAt, s.hasLastErr = primary.Start, true
		if sev < diag.SevFatal && s.Enough() {
			s.dropped++
			return
		}
		s.errors++
	}
	s.next.Report(code, sev, primary, msg, notes, fixes)
}

// Enough reports whether the error budget is spent.
func (s *sink) Enough() bool {
	return s.maxErrors > 0 && s.errors >= s.maxErrors
}

// advance потребляет текущий токен и возвращает слот для родителя.
func (p *Parser) advance() ast.Child {
	tok := p.lx.Next()
	p.lastSpan = tok.Span
	p.lastEnd = tok.Span.End
	if n := len(tok.Trailing); n > 0 {
		p.lastEnd = tok.Trailing[n-1].Span.End
	}
	p.consumed++
	return p.b.Token(tok)
}

// accept потребляет токен вида k, если он текущий.
func (p *Parser) accept(k token.Kind) (ast.Child, bool) {
	if !p.at(k) {
		return ast.Child{}, false
	}
	return p.advance(), true
}

// expect потребляет токен вида k или вставляет пропущенный токен нулевой ширины
// с диагностикой. customize дополняет диагностику заметками.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string, customize ...func(*diag.ReportBuilder)) (ast.Child, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	if msg == "" {
		msg = "expected " + k.Quoted()
	}
	return p.missing(k, code, msg+", got "+describe(p.lx.Peek()), customize...), false
}

// missing синтезирует пропущенный токен в текущей позиции. Диагностика
// всегда прикрепляется к токену; в общий список она попадает, только если
// это не каскад после уже сообщённой ошибки.
func (p *Parser) missing(k token.Kind, code diag.Code, msg string, customize ...func(*diag.ReportBuilder)) ast.Child {
	sp := source.Span{File: p.file.ID, Start: p.lastEnd, End: p.lastEnd}
	tok := token.Token{Kind: k, Span: sp, Missing: true}
	var r diag.Reporter = p.sink
	if p.quiet(sp) {
		r = diag.NopReporter{}
	}
	b := diag.ReportError(r, code, sp, msg)
	if k.IsKeyword() || k.IsPunct() {
		f := diag.InsertFix(sp, k.String())
		b.WithFix(f.Title, f.Edits...)
	}
	for _, fn := range customize {
		fn(b)
	}
	b.Emit()
	tok.Diags = append(tok.Diags, b.Diagnostic())
	p.traceRecovery(trace.RecoverMissing, sp.Start, k.String())
	return p.b.Token(tok)
}

// quiet убирает диагностику о пропуске из общего списка после отмены
// разбора и там, где ошибка в этой позиции уже сообщена.
func (p *Parser) quiet(sp source.Span) bool {
	if p.cancelled {
		return true
	}
	if !p.sink.hasLastErr {
		return false
	}
	return p.sink.lastErrAt == sp.Start || p.sink.lastErrAt == p.lx.Peek().Span.Start
}

// openedHere adds a note pointing at the construct being closed.
func openedHere(sp source.Span, what string) func(*diag.ReportBuilder) {
	return func(b *diag.ReportBuilder) {
		b.WithNote(sp, "to close '"+what+"' opened here")
	}
}

// report отправляет диагностику в sink и возвращает её для прикрепления.
func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) diag.Diagnostic {
	d := diag.New(sev, code, sp, msg)
	p.sink.Report(d.Code, d.Severity, d.Primary, d.Message, nil, nil)
	return d
}

// errNode сообщает об ошибке и прикрепляет её к узлу.
func (p *Parser) errNode(id ast.NodeID, code diag.Code, sp source.Span, msg string) {
	p.b.Attach(id, p.report(code, diag.SevError, sp, msg))
}

// errToken сообщает об ошибке и прикрепляет её к токену.
func (p *Parser) errToken(c ast.Child, code diag.Code, msg string) {
	tok := p.b.TokenOf(c)
	if tok == nil {
		return
	}
	p.b.AttachToken(c.Token, p.report(code, diag.SevError, tok.Span, msg))
}

func (p *Parser) traceRecovery(kind trace.Recovery, offset uint32, detail string) {
	trace.Recover(p.tracer, kind, p.file.Path, offset, detail)
}

// describe formats a token for "got ..." parts of messages.
func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Name, token.IntLit, token.FloatLit, token.Unknown:
		return "'" + tok.Text + "'"
	case token.StringLit, token.LongStringLit:
		return "string"
	default:
		return tok.Kind.Quoted()
	}
}

// tokenSpan returns the text span of a token child.
func (p *Parser) tokenSpan(c ast.Child) source.Span {
	if tok := p.b.TokenOf(c); tok != nil {
		return tok.Span
	}
	return p.lastSpan
}

// enter увеличивает глубину; false означает, что предел превышен.
func (p *Parser) enter() bool {
	p.depth++
	return p.depth <= p.opts.maxDepth()
}

func (p *Parser) leave() { p.depth-- }

// tooDeep заменяет неразобранное поддерево узлом Missing. Токены
// пропускаются с учётом вложенности скобок и блоков, чтобы внешние
// уровни увидели свои закрывающие токены.
func (p *Parser) tooDeep(inExpr bool) ast.NodeID {
	sp := p.lx.Peek().Span
	d := p.report(diag.ResTooDeep, diag.SevFatal, sp, "nesting too deep")
	p.traceRecovery(trace.RecoverTooDeep, sp.Start, "depth "+strconv.Itoa(p.depth))

	var skipped []ast.Child
	level := 0
	for {
		k := p.lx.Peek().Kind
		if k == token.EOF {
			break
		}
		if level == 0 && stopsSkip(k, inExpr) {
			break
		}
		switch k {
		case token.LParen, token.LBracket, token.LBrace,
			token.KwFunction, token.KwIf, token.KwDo, token.KwRepeat:
			level++
		case token.RParen, token.RBracket, token.RBrace,
			token.KwEnd, token.KwUntil:
			level--
		}
		skipped = append(skipped, p.advance())
		if level < 0 {
			break
		}
	}
	id := p.b.NodeFrom(ast.Missing, skipped)
	p.b.Attach(id, d)
	return id
}

func stopsSkip(k token.Kind, inExpr bool) bool {
	switch k {
	case token.RParen, token.RBracket, token.RBrace,
		token.KwEnd, token.KwUntil, token.KwElse, token.KwElseif:
		return true
	case token.Comma, token.Semicolon, token.KwThen, token.KwDo, token.Assign,
		token.KwLocal, token.KwReturn, token.KwWhile, token.KwFor,
		token.KwGoto, token.KwBreak, token.ColonColon:
		return inExpr
	}
	return false
}

// skipUntil собирает токены в Error-узел до синхронизирующего токена.
// Потребляет минимум один токен, если это не EOF.
func (p *Parser) skipUntil(stop func(token.Kind) bool) ast.NodeID {
	var skipped []ast.Child
	for !p.at(token.EOF) {
		if len(skipped) > 0 && stop(p.lx.Peek().Kind) {
			break
		}
		skipped = append(skipped, p.advance())
	}
	p.traceRecovery(trace.RecoverResync, p.lx.Peek().Span.Start, strconv.Itoa(len(skipped))+" tokens skipped")
	return p.b.NodeFrom(ast.Error, skipped)
}

// drain забирает остаток входа после отмены.
func (p *Parser) drain() ast.NodeID {
	var skipped []ast.Child
	for !p.at(token.EOF) {
		skipped = append(skipped, p.advance())
	}
	return p.b.NodeFrom(ast.Error, skipped)
}
