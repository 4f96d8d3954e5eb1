package parser

import (
	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/token"
)

// parseFuncBody: '(' [parlist] ')' block 'end'.
// fn — уже потреблённый 'function'.
func (p *Parser) parseFuncBody(fn ast.Child) ast.NodeID {
	fnSpan := p.tokenSpan(fn)

	open, opened := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' to start the parameter list")
	var params []ast.Child
	vararg := false
	if opened && !p.at(token.RParen) {
		params, vararg = p.parseParams()
	}
	paramList := p.b.NodeFrom(ast.ParamList, params)
	closeTok, _ := p.expect(token.RParen, diag.SynExpectRParen, "", openedHere(p.tokenSpan(open), "("))

	p.funcs = append(p.funcs, funcState{vararg: vararg})
	body := p.parseBlock(false)
	p.funcs = p.funcs[:len(p.funcs)-1]

	end, _ := p.expect(token.KwEnd, diag.SynExpectEnd, "", openedHere(fnSpan, "function"))
	return p.b.Node(ast.FuncBody, open, ast.NodeChild(paramList), closeTok, ast.NodeChild(body), end)
}

// parseParams: Name {',' Name} [',' '...'] | '...'.
func (p *Parser) parseParams() ([]ast.Child, bool) {
	var params []ast.Child
	for {
		switch p.lx.Peek().Kind {
		case token.Name:
			params = append(params, p.advance())
		case token.DotDotDot:
			return append(params, p.advance()), true
		default:
			miss := p.missing(token.Name, diag.SynExpectIdentifier, "expected parameter name, got "+describe(p.lx.Peek()))
			return append(params, miss), false
		}
		comma, ok := p.accept(token.Comma)
		if !ok {
			return params, false
		}
		params = append(params, comma)
	}
}
