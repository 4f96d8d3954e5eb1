package parser

import (
	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/dialect"
	"lunar/internal/source"
	"lunar/internal/token"
)

// parseBlock читает операторы до конца блока. top — главный блок файла:
// он заканчивается только на EOF, а лишние end/else/elseif/until
// уходят в Error-узлы.
func (p *Parser) parseBlock(top bool) ast.NodeID {
	defer p.leave()
	if !p.enter() {
		return p.b.Node(ast.Block, ast.NodeChild(p.tooDeep(false)))
	}

	var children []ast.Child
	afterReturn, reported := false, false
	for {
		if p.checkCancelled() {
			if !p.at(token.EOF) {
				children = append(children, ast.NodeChild(p.drainCancelled()))
			}
			break
		}

		tok := p.lx.Peek()
		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind.IsBlockEnd() {
			if !top {
				break
			}
			stray := p.b.Node(ast.Error, p.advance())
			p.errNode(stray, diag.SynUnexpectedToken, tok.Span, "unexpected "+describe(tok)+" outside of a block")
			children = append(children, ast.NodeChild(stray))
			continue
		}

		before := p.consumed
		stat := p.parseStatement()
		if afterReturn && !reported {
			p.errNode(stat, diag.SynReturnNotLast, tok.Span, "'return' must be the last statement of a block")
			reported = true
		}
		if tok.Kind == token.KwReturn {
			afterReturn = true
		}
		children = append(children, ast.NodeChild(stat))

		if p.consumed == before {
			children = append(children, ast.NodeChild(p.skipUntil(isStatementSync)))
		}
	}
	return p.b.NodeFrom(ast.Block, children)
}

// drainCancelled забирает остаток входа и прикрепляет к нему диагностику отмены.
func (p *Parser) drainCancelled() ast.NodeID {
	id := p.drain()
	if p.cancelDiag != nil {
		p.b.Attach(id, *p.cancelDiag)
		p.cancelDiag = nil
	}
	return id
}

// parseStatement разбирает один оператор; при неожиданном токене
// возвращает Error-узел с пропущенными токенами.
func (p *Parser) parseStatement() ast.NodeID {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Semicolon:
		return p.b.Node(ast.EmptyStat, p.advance())
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwDo:
		return p.parseDoStmt()
	case token.KwFor:
		return p.parseForStmt()
	case token.KwRepeat:
		return p.parseRepeatStmt()
	case token.KwFunction:
		return p.parseFunctionStmt()
	case token.KwLocal:
		return p.parseLocalStmt()
	case token.ColonColon:
		return p.parseLabelStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwBreak:
		return p.b.Node(ast.BreakStat, p.advance())
	case token.KwGoto:
		gotoTok := p.advance()
		name, _ := p.expect(token.Name, diag.SynExpectIdentifier, "expected label name after 'goto'")
		return p.b.Node(ast.GotoStat, gotoTok, name)
	case token.Name, token.LParen:
		return p.parseExprStmt()
	case token.Unknown:
		// о символе уже сообщил лексер
		return p.skipUntil(isStatementSync)
	default:
		id := p.skipUntil(isStatementSync)
		p.errNode(id, diag.SynExpectStatement, tok.Span, "unexpected "+describe(tok)+", expected statement")
		return id
	}
}

// isStatementSync — токены, с которых можно продолжить разбор после ошибки.
func isStatementSync(k token.Kind) bool {
	if k.IsBlockEnd() {
		return true
	}
	switch k {
	case token.KwLocal, token.KwFunction, token.KwIf, token.KwWhile, token.KwFor,
		token.KwRepeat, token.KwDo, token.KwReturn, token.KwBreak, token.KwGoto,
		token.ColonColon, token.Semicolon, token.Name, token.LParen:
		return true
	default:
		return false
	}
}

// parseExprStmt различает присваивание и вызов.
func (p *Parser) parseExprStmt() ast.NodeID {
	start := p.lx.Peek().Span
	first := p.parseSuffixedExpr()
	if p.atOr(token.Assign, token.Comma) {
		return p.parseAssignment(first, start)
	}
	switch p.b.KindOf(ast.NodeChild(first)) {
	case ast.CallExpr, ast.MethodCallExpr:
		return p.b.Node(ast.CallStat, ast.NodeChild(first))
	default:
		id := p.b.Node(ast.Error, ast.NodeChild(first))
		p.errNode(id, diag.SynExpectAssign, p.spanFrom(start), "syntax error: expected '=' or a function call")
		return id
	}
}

// parseAssignment: varlist '=' explist; первый элемент уже разобран.
func (p *Parser) parseAssignment(first ast.NodeID, start source.Span) ast.NodeID {
	p.checkAssignable(first, start)
	vars := []ast.Child{ast.NodeChild(first)}
	for p.at(token.Comma) {
		vars = append(vars, p.advance())
		start = p.lx.Peek().Span
		v := p.parseSuffixedExpr()
		p.checkAssignable(v, start)
		vars = append(vars, ast.NodeChild(v))
	}
	children := []ast.Child{ast.NodeChild(p.b.NodeFrom(ast.VarList, vars))}

	eq, ok := p.expect(token.Assign, diag.SynExpectAssign, "")
	children = append(children, eq)
	if ok || canStartExpr(p.lx.Peek().Kind) {
		children = append(children, ast.NodeChild(p.parseExprList()))
	}
	return p.b.NodeFrom(ast.AssignStat, children)
}

func (p *Parser) checkAssignable(id ast.NodeID, start source.Span) {
	switch p.b.KindOf(ast.NodeChild(id)) {
	case ast.NameExpr, ast.IndexExpr, ast.FieldExpr, ast.Error:
		return
	}
	p.errNode(id, diag.SynNotAssignable, p.spanFrom(start), "cannot assign to this expression")
}

// parseLocalStmt: 'local' 'function' Name funcbody | 'local' attnamelist ['=' explist].
func (p *Parser) parseLocalStmt() ast.NodeID {
	local := p.advance()
	if fn, ok := p.accept(token.KwFunction); ok {
		name, _ := p.expect(token.Name, diag.SynExpectFunctionName, "expected function name")
		body := p.parseFuncBody(fn)
		return p.b.Node(ast.LocalFunctionStat, local, fn, name, ast.NodeChild(body))
	}

	children := []ast.Child{local, ast.NodeChild(p.parseAttribNames())}
	if eq, ok := p.accept(token.Assign); ok {
		children = append(children, eq, ast.NodeChild(p.parseExprList()))
	}
	return p.b.NodeFrom(ast.LocalStat, children)
}

// parseAttribNames: Name attrib {',' Name attrib}.
func (p *Parser) parseAttribNames() ast.NodeID {
	var children []ast.Child
	closeSeen := false
	for {
		name, _ := p.expect(token.Name, diag.SynExpectIdentifier, "expected variable name after 'local'")
		item := []ast.Child{name}
		if p.at(token.Lt) {
			attrib, kind := p.parseAttrib()
			if kind == "close" {
				if closeSeen {
					p.errNode(attrib, diag.SynMultipleToClose, p.lastSpan, "multiple to-be-closed variables in local list")
				}
				closeSeen = true
			}
			item = append(item, ast.NodeChild(attrib))
		}
		children = append(children, ast.NodeChild(p.b.NodeFrom(ast.AttribName, item)))

		comma, ok := p.accept(token.Comma)
		if !ok {
			break
		}
		children = append(children, comma)
	}
	return p.b.NodeFrom(ast.NameList, children)
}

// parseAttrib: '<' Name '>'. Возвращает узел и имя атрибута.
func (p *Parser) parseAttrib() (ast.NodeID, string) {
	lt := p.advance()
	p.requireFeature(lt, dialect.FeatureAttribs)

	nameTok := p.lx.Peek()
	name, ok := p.expect(token.Name, diag.SynExpectIdentifier, "expected attribute name")
	gt, _ := p.expect(token.Gt, diag.SynInvalidAttrib, "expected '>' after attribute")
	id := p.b.Node(ast.Attrib, lt, name, gt)
	if !ok {
		return id, ""
	}
	switch nameTok.Text {
	case "const", "close":
	default:
		p.errNode(id, diag.SynInvalidAttrib, nameTok.Span, "unknown attribute '"+nameTok.Text+"'")
	}
	return id, nameTok.Text
}

// parseFunctionStmt: 'function' funcname funcbody.
func (p *Parser) parseFunctionStmt() ast.NodeID {
	fn := p.advance()
	name := p.parseFuncName()
	body := p.parseFuncBody(fn)
	return p.b.Node(ast.FunctionStat, fn, ast.NodeChild(name), ast.NodeChild(body))
}

// parseFuncName: Name {'.' Name} [':' Name].
func (p *Parser) parseFuncName() ast.NodeID {
	first, _ := p.expect(token.Name, diag.SynExpectFunctionName, "expected function name")
	children := []ast.Child{first}
	for p.at(token.Dot) {
		dot := p.advance()
		name, _ := p.expect(token.Name, diag.SynExpectIdentifier, "expected name after '.'")
		children = append(children, dot, name)
	}
	if colon, ok := p.accept(token.Colon); ok {
		name, _ := p.expect(token.Name, diag.SynExpectIdentifier, "expected method name after ':'")
		children = append(children, colon, name)
	}
	return p.b.NodeFrom(ast.FuncName, children)
}

// parseReturnStmt: 'return' [explist] [';'].
func (p *Parser) parseReturnStmt() ast.NodeID {
	children := []ast.Child{p.advance()}
	if canStartExpr(p.lx.Peek().Kind) {
		children = append(children, ast.NodeChild(p.parseExprList()))
	}
	if semi, ok := p.accept(token.Semicolon); ok {
		children = append(children, semi)
	}
	return p.b.NodeFrom(ast.ReturnStat, children)
}

// parseLabelStmt: '::' Name '::'.
func (p *Parser) parseLabelStmt() ast.NodeID {
	open := p.advance()
	p.requireFeature(open, dialect.FeatureGoto)
	name, _ := p.expect(token.Name, diag.SynExpectIdentifier, "expected label name after '::'")
	closeTok, _ := p.expect(token.ColonColon, diag.SynExpectLabelEnd, "", openedHere(p.tokenSpan(open), "::"))
	return p.b.Node(ast.LabelStat, open, name, closeTok)
}

// requireFeature помечает токен конструкции, которой нет в выбранной версии.
// Конструкция всё равно разбирается полностью.
func (p *Parser) requireFeature(c ast.Child, f dialect.Feature) {
	if p.opts.Version.Has(f) {
		return
	}
	p.errToken(c, diag.SynVersionFeature, f.String()+" requires Lua "+f.Since().String())
}

// spanFrom покрывает текст от start до последнего потреблённого токена.
func (p *Parser) spanFrom(start source.Span) source.Span {
	if p.lastSpan.End < start.Start {
		return start
	}
	return source.Span{File: start.File, Start: start.Start, End: p.lastSpan.End}
}
