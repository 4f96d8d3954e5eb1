package ast

import (
	"fmt"

	"lunar/internal/diag"
	"lunar/internal/source"
	"lunar/internal/token"

	"fortio.org/safecast"
)

// Node is a green node: shape only, no absolute positions.
type Node struct {
	Kind     Kind
	Children []Child
	// Diags — диагностики, владельцем которых является сам узел.
	// Диагностики токенов лежат на токенах.
	Diags []diag.Diagnostic
	// Width — суммарная ширина детей в байтах, trivia включительно.
	Width uint32
}

type Hints struct{ Nodes, Tokens uint }

// Builder собирает зелёные узлы снизу вверх.
type Builder struct {
	Nodes  *Arena[Node]
	Tokens *Arena[token.Token]
}

func NewBuilder(hints Hints) *Builder {
	if hints.Nodes == 0 {
		hints.Nodes = 1 << 8
	}
	if hints.Tokens == 0 {
		hints.Tokens = 1 << 9
	}
	return &Builder{
		Nodes:  NewArena[Node](hints.Nodes),
		Tokens: NewArena[token.Token](hints.Tokens),
	}
}

// HintsFor подбирает ёмкость арен по размеру исходника.
func HintsFor(srcLen int) Hints {
	n, err := safecast.Conv[uint](srcLen / 3)
	if err != nil {
		n = 0
	}
	return Hints{Nodes: n/2 + 16, Tokens: n + 16}
}

// Token размещает токен и возвращает слот для родителя.
func (b *Builder) Token(tok token.Token) Child {
	return TokenChild(TokenID(b.Tokens.Allocate(tok)))
}

// Node размещает узел; ширина считается по детям.
func (b *Builder) Node(kind Kind, children ...Child) NodeID {
	var width uint32
	for _, c := range children {
		width += b.width(c)
	}
	return NodeID(b.Nodes.Allocate(Node{Kind: kind, Children: children, Width: width}))
}

// NodeFrom — как Node, но забирает срез детей без копирования.
func (b *Builder) NodeFrom(kind Kind, children []Child) NodeID {
	return b.Node(kind, children...)
}

// Attach прикрепляет диагностику к узлу.
func (b *Builder) Attach(id NodeID, d diag.Diagnostic) {
	if n := b.Nodes.Get(uint32(id)); n != nil {
		n.Diags = append(n.Diags, d)
	}
}

// AttachToken прикрепляет диагностику к токену.
func (b *Builder) AttachToken(id TokenID, d diag.Diagnostic) {
	if t := b.Tokens.Get(uint32(id)); t != nil {
		t.Diags = append(t.Diags, d)
	}
}

// KindOf возвращает вид узла или KindInvalid для токенов.
func (b *Builder) KindOf(c Child) Kind {
	if !c.IsNode() {
		return KindInvalid
	}
	return b.Nodes.Get(uint32(c.Node)).Kind
}

// TokenOf возвращает токен слота или nil.
func (b *Builder) TokenOf(c Child) *token.Token {
	if !c.IsToken() {
		return nil
	}
	return b.Tokens.Get(uint32(c.Token))
}

func (b *Builder) width(c Child) uint32 {
	switch {
	case c.IsNode():
		return b.Nodes.Get(uint32(c.Node)).Width
	case c.IsToken():
		w, err := safecast.Conv[uint32](b.Tokens.Get(uint32(c.Token)).Width())
		if err != nil {
			panic(fmt.Errorf("token width overflow: %w", err))
		}
		return w
	}
	return 0
}

// Finish замораживает дерево. После вызова Builder использовать нельзя.
func (b *Builder) Finish(file *source.File, root NodeID, diags []diag.Diagnostic) *Tree {
	t := &Tree{
		file:   file,
		nodes:  b.Nodes,
		tokens: b.Tokens,
		root:   root,
		diags:  diags,
	}
	b.Nodes, b.Tokens = nil, nil
	return t
}
