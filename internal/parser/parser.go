package parser

import (
	"context"
	"fmt"

	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/dialect"
	"lunar/internal/lexer"
	"lunar/internal/source"
	"lunar/internal/token"
	"lunar/internal/trace"
)

// Mode selects how the first line of the input is treated.
type Mode uint8

const (
	// ModeChunk parses a plain Lua chunk; a leading '#' is an ordinary token.
	ModeChunk Mode = iota
	// ModeScript skips a first line starting with '#' as shebang trivia.
	ModeScript
)

func (m Mode) String() string {
	switch m {
	case ModeScript:
		return "script"
	default:
		return "chunk"
	}
}

// ParseMode accepts "chunk" or "script"; the empty string means chunk.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "chunk":
		return ModeChunk, nil
	case "script":
		return ModeScript, nil
	default:
		return ModeChunk, fmt.Errorf("unknown parse mode %q (expected chunk|script)", s)
	}
}

// DefaultMaxDepth ограничивает вложенность блоков и выражений.
const DefaultMaxDepth = 200

type Options struct {
	Mode    Mode
	Version dialect.Version
	// MaxDepth — предел вложенности; 0 означает DefaultMaxDepth.
	MaxDepth int
	// MaxErrors ограничивает число ошибок в Tree.Diagnostics (0 — без лимита).
	// Диагностики, прикреплённые к токенам и узлам, не урезаются.
	MaxErrors uint
	Reporter  diag.Reporter
	// MaxTokenLength передаётся лексеру; 0 — порог по умолчанию.
	MaxTokenLength int
}

func (o Options) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

// Parser держит всё состояние одного разбора. Экземпляры не переиспользуются.
type Parser struct {
	ctx    context.Context
	lx     *lexer.Lexer
	b      *ast.Builder
	file   *source.File
	opts   Options
	sink   *sink
	tracer trace.Tracer

	// lastEnd — смещение сразу за последним потреблённым токеном
	// вместе с его trailing trivia; сюда встают пропущенные токены.
	lastEnd  uint32
	lastSpan source.Span
	consumed int

	depth      int
	funcs      []funcState
	cancelled  bool
	cancelDiag *diag.Diagnostic
}

type funcState struct {
	vararg bool
}

// Parse разбирает src как виртуальный файл.
// nil вместо буфера — ошибка вызывающего кода.
func Parse(ctx context.Context, src []byte, opts Options) *ast.Tree {
	if src == nil {
		panic("parser: nil source buffer")
	}
	fs := source.NewFileSet()
	id := fs.AddVirtual("<input>", src)
	return ParseFile(ctx, fs.Get(id), opts)
}

// ParseFile строит дерево для file. Всегда возвращает полный Chunk,
// даже если вход синтаксически некорректен или разбор отменён.
func ParseFile(ctx context.Context, file *source.File, opts Options) *ast.Tree {
	if file == nil {
		panic("parser: nil source file")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	bag := diag.NewBag(0)
	s := newSink(bag, opts.Reporter, opts.MaxErrors)

	p := &Parser{
		ctx:  ctx,
		file: file,
		opts: opts,
		sink: s,
		b:    ast.NewBuilder(ast.HintsFor(len(file.Content))),
		lx: lexer.New(file, lexer.Options{
			Reporter:       s,
			Version:        opts.Version,
			Script:         opts.Mode == ModeScript,
			MaxTokenLength: opts.MaxTokenLength,
		}),
		tracer:   trace.FromContext(ctx),
		lastSpan: source.Span{File: file.ID},
	}

	span := trace.Begin(p.tracer, trace.ScopeFile, "lex+parse", file.Path, trace.CurrentSpan(ctx).SpanID).
		WithExtra("version", opts.Version.String())
	root := p.parseChunk()
	diags := bag.Finalize()
	span.Count(p.consumed, len(diags), bag.CountErrors()).End("")

	return p.b.Finish(file, root, diags)
}

// parseChunk: главный блок (vararg-функция) и EOF.
func (p *Parser) parseChunk() ast.NodeID {
	p.funcs = append(p.funcs, funcState{vararg: true})
	children := make([]ast.Child, 0, 2)
	children = append(children, ast.NodeChild(p.parseBlock(true)))
	children = append(children, p.advance())
	p.funcs = p.funcs[:len(p.funcs)-1]
	return p.b.NodeFrom(ast.Chunk, children)
}

// at reports whether the current token has kind k.
func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

// atOr reports whether the current token is one of kinds.
func (p *Parser) atOr(kinds ...token.Kind) bool {
	cur := p.lx.Peek().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

// checkCancelled опрашивает контекст между операторами.
func (p *Parser) checkCancelled() bool {
	if p.cancelled {
		return true
	}
	if err := p.ctx.Err(); err != nil {
		p.cancelled = true
		tok := p.lx.Peek()
		d := p.report(diag.ResCancelled, diag.SevError, tok.Span, "parsing cancelled: "+err.Error())
		p.cancelDiag = &d
		p.traceRecovery(trace.RecoverCancelled, tok.Span.Start, err.Error())
	}
	return p.cancelled
}
