package parser

import (
	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/token"
)

// parseExpr - главная точка входа для выражений.
// Каждый вызов считается уровнем вложенности.
func (p *Parser) parseExpr() ast.NodeID {
	defer p.leave()
	if !p.enter() {
		return p.tooDeep(true)
	}
	return p.parseBinaryExpr()
}

// pendingOp — оператор, ждущий правый операнд.
type pendingOp struct {
	lhs   ast.Child // левый операнд; пуст для унарных
	op    ast.Child
	right int
	unary bool
}

// parseBinaryExpr реализует precedence climbing без рекурсии: операнды
// и операторы лежат на явном стеке, поэтому цепочки вида a..a..a
// любой длины не расходуют стек вызовов.
func (p *Parser) parseBinaryExpr() ast.NodeID {
	var stack []pendingOp

	for {
		// Префиксы собираем в стек, приоритет у всех одинаковый.
		for isUnaryOp(p.lx.Peek().Kind) {
			kind := p.lx.Peek().Kind
			op := p.advance()
			if f, gated := unaryFeature(kind); gated {
				p.requireFeature(op, f)
			}
			stack = append(stack, pendingOp{op: op, right: precUnary, unary: true})
		}

		operand := ast.NodeChild(p.parseSimpleExpr())

		kind := p.lx.Peek().Kind
		prec, isBinary := binaryPrecOf(kind)

		// Сворачиваем всё, что связывает сильнее следующего оператора.
		for len(stack) > 0 && (!isBinary || stack[len(stack)-1].right >= prec.left) {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.unary {
				operand = ast.NodeChild(p.b.Node(ast.UnaryExpr, top.op, operand))
			} else {
				operand = ast.NodeChild(p.b.Node(ast.BinaryExpr, top.lhs, top.op, operand))
			}
		}

		if !isBinary {
			return operand.Node
		}

		op := p.advance()
		if f, gated := binaryFeature(kind); gated {
			p.requireFeature(op, f)
		}
		stack = append(stack, pendingOp{lhs: operand, op: op, right: prec.right})
	}
}

// parseSimpleExpr: литералы, '...', конструкторы и suffixedexp.
func (p *Parser) parseSimpleExpr() ast.NodeID {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit, token.FloatLit:
		return p.b.Node(ast.NumberExpr, p.advance())
	case token.StringLit, token.LongStringLit:
		return p.b.Node(ast.StringExpr, p.advance())
	case token.KwNil:
		return p.b.Node(ast.NilExpr, p.advance())
	case token.KwTrue:
		return p.b.Node(ast.TrueExpr, p.advance())
	case token.KwFalse:
		return p.b.Node(ast.FalseExpr, p.advance())
	case token.DotDotDot:
		dots := p.advance()
		if !p.inVararg() {
			p.errToken(dots, diag.SynVarargOutside, "cannot use '...' outside a vararg function")
		}
		return p.b.Node(ast.VarargExpr, dots)
	case token.LBrace:
		return p.parseTable()
	case token.KwFunction:
		fn := p.advance()
		body := p.parseFuncBody(fn)
		return p.b.Node(ast.FunctionExpr, fn, ast.NodeChild(body))
	default:
		return p.parseSuffixedExpr()
	}
}

// parsePrimaryExpr: Name или выражение в скобках.
func (p *Parser) parsePrimaryExpr() ast.NodeID {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Name:
		return p.b.Node(ast.NameExpr, p.advance())
	case token.LParen:
		open := p.advance()
		inner := p.parseExpr()
		closeTok, _ := p.expect(token.RParen, diag.SynExpectRParen, "", openedHere(p.tokenSpan(open), "("))
		return p.b.Node(ast.ParenExpr, open, ast.NodeChild(inner), closeTok)
	case token.Unknown:
		// Лексер уже сообщил о символе; забираем его, чтобы не зациклиться.
		return p.b.Node(ast.Error, p.advance())
	default:
		miss := p.missing(token.Name, diag.SynExpectExpression, "expected expression, got "+describe(tok))
		return p.b.Node(ast.Error, miss)
	}
}

// parseSuffixedExpr разбирает primaryexp { '.' Name | '[' exp ']' | ':' Name args | args }.
// Цепочка суффиксов строится в цикле.
func (p *Parser) parseSuffixedExpr() ast.NodeID {
	expr := p.parsePrimaryExpr()
	if p.b.KindOf(ast.NodeChild(expr)) == ast.Error {
		return expr
	}
	for {
		switch p.lx.Peek().Kind {
		case token.Dot:
			dot := p.advance()
			name, _ := p.expect(token.Name, diag.SynExpectIdentifier, "expected field name after '.'")
			expr = p.b.Node(ast.FieldExpr, ast.NodeChild(expr), dot, name)
		case token.LBracket:
			open := p.advance()
			key := p.parseExpr()
			closeTok, _ := p.expect(token.RBracket, diag.SynExpectRBracket, "", openedHere(p.tokenSpan(open), "["))
			expr = p.b.Node(ast.IndexExpr, ast.NodeChild(expr), open, ast.NodeChild(key), closeTok)
		case token.Colon:
			colon := p.advance()
			name, _ := p.expect(token.Name, diag.SynExpectIdentifier, "expected method name after ':'")
			args := p.parseCallArgs()
			expr = p.b.Node(ast.MethodCallExpr, ast.NodeChild(expr), colon, name, ast.NodeChild(args))
		case token.LParen, token.StringLit, token.LongStringLit, token.LBrace:
			args := p.parseCallArgs()
			expr = p.b.Node(ast.CallExpr, ast.NodeChild(expr), ast.NodeChild(args))
		default:
			return expr
		}
	}
}

// parseCallArgs: '(' [explist] ')' | String | tableconstructor.
func (p *Parser) parseCallArgs() ast.NodeID {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.StringLit, token.LongStringLit:
		str := p.b.Node(ast.StringExpr, p.advance())
		return p.b.Node(ast.CallArgs, ast.NodeChild(str))
	case token.LBrace:
		return p.b.Node(ast.CallArgs, ast.NodeChild(p.parseTable()))
	case token.LParen:
		open := p.advance()
		children := []ast.Child{open}
		if !p.at(token.RParen) {
			children = append(children, ast.NodeChild(p.parseExprList()))
		}
		closeTok, _ := p.expect(token.RParen, diag.SynExpectRParen, "", openedHere(p.tokenSpan(open), "("))
		children = append(children, closeTok)
		return p.b.NodeFrom(ast.CallArgs, children)
	default:
		miss := p.missing(token.LParen, diag.SynExpectArgs, "expected function arguments, got "+describe(tok))
		return p.b.Node(ast.CallArgs, miss)
	}
}

// parseTable: '{' [field {sep field} [sep]] '}'.
func (p *Parser) parseTable() ast.NodeID {
	open := p.advance()
	children := []ast.Child{open}
	for !p.atOr(token.RBrace, token.EOF) {
		before := p.consumed
		children = append(children, ast.NodeChild(p.parseField()))
		if sep, ok := p.accept(token.Comma); ok {
			children = append(children, sep)
			continue
		}
		if sep, ok := p.accept(token.Semicolon); ok {
			children = append(children, sep)
			continue
		}
		if p.consumed == before || !canStartExpr(p.lx.Peek().Kind) {
			break
		}
		// Два поля подряд без разделителя: сообщаем и продолжаем.
		children = append(children, p.missing(token.Comma, diag.SynExpectComma, "expected ',' or ';' between table fields"))
	}
	closeTok, _ := p.expect(token.RBrace, diag.SynExpectRBrace, "", openedHere(p.tokenSpan(open), "{"))
	children = append(children, closeTok)
	return p.b.NodeFrom(ast.TableExpr, children)
}

// parseField: '[' exp ']' '=' exp | Name '=' exp | exp.
func (p *Parser) parseField() ast.NodeID {
	switch {
	case p.at(token.LBracket):
		open := p.advance()
		key := p.parseExpr()
		closeTok, _ := p.expect(token.RBracket, diag.SynExpectRBracket, "", openedHere(p.tokenSpan(open), "["))
		eq, _ := p.expect(token.Assign, diag.SynExpectAssign, "")
		val := p.parseExpr()
		return p.b.Node(ast.IndexedField, open, ast.NodeChild(key), closeTok, eq, ast.NodeChild(val))
	case p.at(token.Name) && p.lx.PeekN(1).Kind == token.Assign:
		name := p.advance()
		eq := p.advance()
		val := p.parseExpr()
		return p.b.Node(ast.NamedField, name, eq, ast.NodeChild(val))
	default:
		return p.b.Node(ast.PositionalField, ast.NodeChild(p.parseExpr()))
	}
}

// parseExprList: exp {',' exp}.
func (p *Parser) parseExprList() ast.NodeID {
	children := []ast.Child{ast.NodeChild(p.parseExpr())}
	for p.at(token.Comma) {
		children = append(children, p.advance(), ast.NodeChild(p.parseExpr()))
	}
	return p.b.NodeFrom(ast.ExprList, children)
}

// canStartExpr reports whether kind may begin an expression.
func canStartExpr(kind token.Kind) bool {
	switch kind {
	case token.Name, token.LParen, token.LBrace,
		token.IntLit, token.FloatLit, token.StringLit, token.LongStringLit,
		token.KwNil, token.KwTrue, token.KwFalse, token.KwFunction, token.DotDotDot:
		return true
	default:
		return isUnaryOp(kind)
	}
}

func (p *Parser) inVararg() bool {
	return len(p.funcs) > 0 && p.funcs[len(p.funcs)-1].vararg
}
