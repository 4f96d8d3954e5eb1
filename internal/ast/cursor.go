package ast

import (
	"lunar/internal/diag"
	"lunar/internal/source"
	"lunar/internal/token"
)

// Cursor — красный фасад над зелёным деревом: знает родителя и абсолютное
// смещение. Смещения детей вычисляются при перечислении суммированием ширин
// предыдущих соседей. Cursor — значение, его можно копировать.
type Cursor struct {
	tree   *Tree
	parent *Cursor
	child  Child
	offset uint32 // начало полного диапазона (с leading trivia)
	index  int    // позиция среди детей родителя
}

// IsZero reports whether the cursor points nowhere.
func (c Cursor) IsZero() bool { return c.tree == nil }

func (c Cursor) Tree() *Tree { return c.tree }

// IsNode reports whether the cursor points to a node.
func (c Cursor) IsNode() bool { return c.child.IsNode() }

// IsToken reports whether the cursor points to a token.
func (c Cursor) IsToken() bool { return c.child.IsToken() }

// ID returns the node id, or NoNodeID for a token cursor.
func (c Cursor) ID() NodeID { return c.child.Node }

// TokenID returns the token id, or NoTokenID for a node cursor.
func (c Cursor) TokenID() TokenID { return c.child.Token }

// Node returns the green node, or nil for a token cursor.
func (c Cursor) Node() *Node {
	if !c.IsNode() {
		return nil
	}
	return c.tree.Node(c.child.Node)
}

// Token returns the token, or nil for a node cursor.
func (c Cursor) Token() *token.Token {
	if !c.IsToken() {
		return nil
	}
	return c.tree.Token(c.child.Token)
}

// Kind returns the node kind; token cursors report KindInvalid.
func (c Cursor) Kind() Kind {
	if n := c.Node(); n != nil {
		return n.Kind
	}
	return KindInvalid
}

// Index is the position among the parent's children.
func (c Cursor) Index() int { return c.index }

// Parent returns the parent cursor, or nil at the root.
func (c Cursor) Parent() *Cursor { return c.parent }

// Width is the number of bytes covered, trivia included.
func (c Cursor) Width() uint32 {
	if n := c.Node(); n != nil {
		return n.Width
	}
	if tok := c.Token(); tok != nil {
		return uint32(tok.Width())
	}
	return 0
}

// FullSpan covers the element together with its leading and trailing trivia.
func (c Cursor) FullSpan() source.Span {
	return source.Span{File: c.fileID(), Start: c.offset, End: c.offset + c.Width()}
}

// Span covers the element without the outer trivia: from the first byte of the
// first token's text to the last byte of the last token's text.
func (c Cursor) Span() source.Span {
	if tok := c.Token(); tok != nil {
		start := c.offset + uint32(token.TriviaWidth(tok.Leading))
		return source.Span{File: c.fileID(), Start: start, End: start + uint32(len(tok.Text))}
	}
	first, ok := c.FirstToken()
	if !ok {
		return source.Span{File: c.fileID(), Start: c.offset, End: c.offset}
	}
	last, _ := c.LastToken()
	return source.Span{File: c.fileID(), Start: first.Span().Start, End: last.Span().End}
}

// Text returns the source text of FullSpan.
func (c Cursor) Text() string {
	sp := c.FullSpan()
	return string(c.tree.file.Content[sp.Start:sp.End])
}

// Children перечисляет детей узла с вычисленными смещениями.
func (c Cursor) Children() []Cursor {
	n := c.Node()
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	parent := c
	out := make([]Cursor, len(n.Children))
	off := c.offset
	for i, ch := range n.Children {
		out[i] = Cursor{tree: c.tree, parent: &parent, child: ch, offset: off, index: i}
		off += out[i].Width()
	}
	return out
}

// ChildNodes returns only the node children.
func (c Cursor) ChildNodes() []Cursor {
	all := c.Children()
	out := all[:0]
	for _, ch := range all {
		if ch.IsNode() {
			out = append(out, ch)
		}
	}
	return out
}

// FirstChildOfKind returns the first direct child node of kind k.
func (c Cursor) FirstChildOfKind(k Kind) (Cursor, bool) {
	for _, ch := range c.Children() {
		if ch.Kind() == k {
			return ch, true
		}
	}
	return Cursor{}, false
}

// ChildToken returns the first direct token child of kind k.
func (c Cursor) ChildToken(k token.Kind) (Cursor, bool) {
	for _, ch := range c.Children() {
		if tok := ch.Token(); tok != nil && tok.Kind == k {
			return ch, true
		}
	}
	return Cursor{}, false
}

// Walk обходит поддерево в прямом порядке, итеративно.
// fn возвращает false, чтобы пропустить детей.
func (c Cursor) Walk(fn func(Cursor) bool) {
	stack := []Cursor{c}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) || !cur.IsNode() {
			continue
		}
		kids := cur.Children()
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// Tokens returns token cursors of the subtree in source order.
func (c Cursor) Tokens() []Cursor {
	var out []Cursor
	c.Walk(func(x Cursor) bool {
		if x.IsToken() {
			out = append(out, x)
		}
		return true
	})
	return out
}

// FirstToken returns the first token of the subtree that owns at least one byte.
// Missing tokens are skipped.
func (c Cursor) FirstToken() (Cursor, bool) { return c.edgeToken(true) }

// LastToken returns the last token of the subtree that owns at least one byte.
func (c Cursor) LastToken() (Cursor, bool) { return c.edgeToken(false) }

func (c Cursor) edgeToken(first bool) (Cursor, bool) {
	cur := c
	for cur.IsNode() {
		kids := cur.Children()
		pick := -1
		if first {
			for i := range kids {
				if kids[i].Width() > 0 {
					pick = i
					break
				}
			}
		} else {
			for i := len(kids) - 1; i >= 0; i-- {
				if kids[i].Width() > 0 {
					pick = i
					break
				}
			}
		}
		if pick < 0 {
			return Cursor{}, false
		}
		cur = kids[pick]
	}
	return cur, cur.IsToken() && cur.Width() > 0
}

// TokenAt возвращает токен, чей полный диапазон содержит off. Смещение,
// равное концу поддерева, попадает в последний токен (для корня это EOF).
func (c Cursor) TokenAt(off uint32) (Cursor, bool) {
	if off < c.offset || off > c.offset+c.Width() {
		return Cursor{}, false
	}
	cur := c
	for cur.IsNode() {
		kids := cur.Children()
		if len(kids) == 0 {
			return Cursor{}, false
		}
		next := len(kids) - 1
		for i, k := range kids {
			if k.FullSpan().Contains(off) {
				next = i
				break
			}
		}
		cur = kids[next]
	}
	return cur, true
}

// FindNode возвращает самый глубокий узел, чей полный диапазон содержит off.
func (c Cursor) FindNode(off uint32) (Cursor, bool) {
	if !c.FullSpan().Contains(off) {
		return Cursor{}, false
	}
	cur := c
	for {
		descended := false
		for _, k := range cur.ChildNodes() {
			if k.FullSpan().Contains(off) {
				cur = k
				descended = true
				break
			}
		}
		if !descended {
			return cur, true
		}
	}
}

// Diagnostics собирает диагностики поддерева: узлов и токенов, в порядке обхода.
func (c Cursor) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	c.Walk(func(x Cursor) bool {
		if n := x.Node(); n != nil {
			out = append(out, n.Diags...)
		} else if tok := x.Token(); tok != nil {
			out = append(out, tok.Diags...)
		}
		return true
	})
	return out
}

func (c Cursor) fileID() source.FileID {
	if c.tree == nil || c.tree.file == nil {
		return 0
	}
	return c.tree.file.ID
}
