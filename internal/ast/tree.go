package ast

import (
	"strings"

	"lunar/internal/diag"
	"lunar/internal/source"
	"lunar/internal/token"
)

// Tree — неизменяемый результат разбора: корневой Chunk, исходный текст и
// отсортированный список диагностик.
type Tree struct {
	file   *source.File
	nodes  *Arena[Node]
	tokens *Arena[token.Token]
	root   NodeID
	diags  []diag.Diagnostic
}

// Root returns a cursor on the Chunk node.
func (t *Tree) Root() Cursor {
	return Cursor{tree: t, child: NodeChild(t.root)}
}

// RootID returns the arena id of the Chunk node.
func (t *Tree) RootID() NodeID { return t.root }

// File returns the parsed source file.
func (t *Tree) File() *source.File { return t.file }

// Source returns the exact bytes that were parsed.
func (t *Tree) Source() []byte { return t.file.Content }

// Diagnostics returns the position-sorted, deduplicated diagnostics.
func (t *Tree) Diagnostics() []diag.Diagnostic { return t.diags }

// HasErrors reports whether any diagnostic is an error or worse.
func (t *Tree) HasErrors() bool {
	for i := range t.diags {
		if t.diags[i].Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Node returns the green node by id.
func (t *Tree) Node(id NodeID) *Node { return t.nodes.Get(uint32(id)) }

// Token returns the token by id.
func (t *Tree) Token(id TokenID) *token.Token { return t.tokens.Get(uint32(id)) }

// NodeCount returns the number of green nodes.
func (t *Tree) NodeCount() int { return int(t.nodes.Len()) }

// TokenCount returns the number of tokens, EOF and missing tokens included.
func (t *Tree) TokenCount() int { return int(t.tokens.Len()) }

// Text собирает текст обратно из токенов дерева. Для корректного дерева
// результат побайтно равен Source.
func (t *Tree) Text() string {
	var sb strings.Builder
	sb.Grow(len(t.file.Content))
	t.eachToken(NodeChild(t.root), func(tok *token.Token) {
		for i := range tok.Leading {
			sb.WriteString(tok.Leading[i].Text)
		}
		sb.WriteString(tok.Text)
		for i := range tok.Trailing {
			sb.WriteString(tok.Trailing[i].Text)
		}
	})
	return sb.String()
}

// Walk обходит дерево в прямом порядке. fn возвращает false, чтобы не спускаться
// в детей текущего узла. Обход итеративный, глубина дерева не ограничена стеком.
func (t *Tree) Walk(fn func(c Cursor) bool) {
	t.Root().Walk(fn)
}

// eachToken visits tokens of the subtree in source order without building cursors.
func (t *Tree) eachToken(start Child, fn func(tok *token.Token)) {
	stack := []Child{start}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.IsToken() {
			fn(t.Token(c.Token))
			continue
		}
		n := t.Node(c.Node)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}
