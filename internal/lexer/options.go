package lexer

import (
	"lunar/internal/diag"
	"lunar/internal/dialect"
	"lunar/internal/source"
)

// maxTokenLength — порог, после которого токен помечается предупреждением.
const maxTokenLength = 1 << 20

type Options struct {
	Reporter diag.Reporter // может быть nil — тогда ошибки только прикрепляются к токенам
	Version  dialect.Version
	// Script включает пропуск первой строки, начинающейся с '#' (shebang).
	Script bool
	// MaxTokenLength overrides maxTokenLength when positive.
	MaxTokenLength int
}

func (o Options) tokenLimit() uint32 {
	if o.MaxTokenLength > 0 {
		return uint32(o.MaxTokenLength)
	}
	return maxTokenLength
}

// errLex репортит ошибку и прикрепляет её к текущему токену.
func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	lx.emit(diag.SevError, code, sp, msg)
}

func (lx *Lexer) warnLex(code diag.Code, sp source.Span, msg string) {
	lx.emit(diag.SevWarning, code, sp, msg)
}

func (lx *Lexer) emit(sev diag.Severity, code diag.Code, sp source.Span, msg string) {
	d := diag.New(sev, code, sp, msg)
	lx.pending = append(lx.pending, d)
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(d.Code, d.Severity, d.Primary, d.Message, nil, nil)
	}
}

// requireFeature reports a lexical construct that the selected Lua version lacks.
func (lx *Lexer) requireFeature(f dialect.Feature, code diag.Code, sp source.Span) {
	if lx.opts.Version.Has(f) {
		return
	}
	lx.errLex(code, sp, f.String()+" requires Lua "+f.Since().String())
}
