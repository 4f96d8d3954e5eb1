package parser

import (
	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/source"
	"lunar/internal/token"
)

// parseIfStmt: 'if' exp 'then' block {'elseif' exp 'then' block} ['else' block] 'end'.
func (p *Parser) parseIfStmt() ast.NodeID {
	ifTok := p.advance()
	ifSpan := p.lastSpan

	cond := p.parseExpr()
	then, _ := p.expect(token.KwThen, diag.SynExpectThen, "")
	body := p.parseBlock(false)
	children := []ast.Child{ifTok, ast.NodeChild(cond), then, ast.NodeChild(body)}

	for p.at(token.KwElseif) {
		elseifTok := p.advance()
		cond := p.parseExpr()
		then, _ := p.expect(token.KwThen, diag.SynExpectThen, "")
		body := p.parseBlock(false)
		clause := p.b.Node(ast.ElseIfClause, elseifTok, ast.NodeChild(cond), then, ast.NodeChild(body))
		children = append(children, ast.NodeChild(clause))
	}

	if elseTok, ok := p.accept(token.KwElse); ok {
		body := p.parseBlock(false)
		clause := p.b.Node(ast.ElseClause, elseTok, ast.NodeChild(body))
		children = append(children, ast.NodeChild(clause))
	}

	end, _ := p.expect(token.KwEnd, diag.SynExpectEnd, "", openedHere(ifSpan, "if"))
	children = append(children, end)
	return p.b.NodeFrom(ast.IfStat, children)
}

// parseWhileStmt: 'while' exp 'do' block 'end'.
func (p *Parser) parseWhileStmt() ast.NodeID {
	whileTok := p.advance()
	whileSpan := p.lastSpan

	cond := p.parseExpr()
	doTok, _ := p.expect(token.KwDo, diag.SynExpectDo, "")
	body := p.parseBlock(false)
	end, _ := p.expect(token.KwEnd, diag.SynExpectEnd, "", openedHere(whileSpan, "while"))
	return p.b.Node(ast.WhileStat, whileTok, ast.NodeChild(cond), doTok, ast.NodeChild(body), end)
}

// parseDoStmt: 'do' block 'end'.
func (p *Parser) parseDoStmt() ast.NodeID {
	doTok := p.advance()
	doSpan := p.lastSpan

	body := p.parseBlock(false)
	end, _ := p.expect(token.KwEnd, diag.SynExpectEnd, "", openedHere(doSpan, "do"))
	return p.b.Node(ast.DoStat, doTok, ast.NodeChild(body), end)
}

// parseRepeatStmt: 'repeat' block 'until' exp.
func (p *Parser) parseRepeatStmt() ast.NodeID {
	repeatTok := p.advance()
	repeatSpan := p.lastSpan

	body := p.parseBlock(false)
	until, _ := p.expect(token.KwUntil, diag.SynExpectUntil, "", openedHere(repeatSpan, "repeat"))
	cond := p.parseExpr()
	return p.b.Node(ast.RepeatStat, repeatTok, ast.NodeChild(body), until, ast.NodeChild(cond))
}

// parseForStmt различает числовой и generic for по токену после первого имени.
func (p *Parser) parseForStmt() ast.NodeID {
	forTok := p.advance()
	forSpan := p.lastSpan
	name, _ := p.expect(token.Name, diag.SynExpectIdentifier, "expected loop variable name after 'for'")

	if p.at(token.Assign) {
		return p.parseNumericFor(forTok, forSpan, name)
	}
	return p.parseGenericFor(forTok, forSpan, name)
}

// for Name '=' exp ',' exp [',' exp] 'do' block 'end'
func (p *Parser) parseNumericFor(forTok ast.Child, forSpan source.Span, name ast.Child) ast.NodeID {
	eq := p.advance()
	children := []ast.Child{forTok, name, eq, ast.NodeChild(p.parseExpr())}

	comma, _ := p.expect(token.Comma, diag.SynExpectComma, "expected ',' after the initial value")
	children = append(children, comma, ast.NodeChild(p.parseExpr()))
	if step, ok := p.accept(token.Comma); ok {
		children = append(children, step, ast.NodeChild(p.parseExpr()))
	}

	return p.finishLoop(ast.NumericForStat, children, forSpan)
}

// for namelist 'in' explist 'do' block 'end'
func (p *Parser) parseGenericFor(forTok ast.Child, forSpan source.Span, first ast.Child) ast.NodeID {
	names := []ast.Child{first}
	for p.at(token.Comma) {
		names = append(names, p.advance())
		name, _ := p.expect(token.Name, diag.SynExpectIdentifier, "expected loop variable name")
		names = append(names, name)
	}
	children := []ast.Child{forTok, ast.NodeChild(p.b.NodeFrom(ast.NameList, names))}

	in, ok := p.expect(token.KwIn, diag.SynExpectInOrAssign, "expected '=' or 'in'")
	children = append(children, in)
	if ok || canStartExpr(p.lx.Peek().Kind) {
		children = append(children, ast.NodeChild(p.parseExprList()))
	}
	return p.finishLoop(ast.GenericForStat, children, forSpan)
}

// finishLoop дочитывает 'do' block 'end' общего хвоста циклов for.
func (p *Parser) finishLoop(kind ast.Kind, children []ast.Child, forSpan source.Span) ast.NodeID {
	doTok, _ := p.expect(token.KwDo, diag.SynExpectDo, "")
	body := p.parseBlock(false)
	end, _ := p.expect(token.KwEnd, diag.SynExpectEnd, "", openedHere(forSpan, "for"))
	children = append(children, doTok, ast.NodeChild(body), end)
	return p.b.NodeFrom(kind, children)
}
