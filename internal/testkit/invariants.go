package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"lunar/internal/ast"
	"lunar/internal/token"
)

// CheckTree runs the structural invariants of a finished tree:
//  1. the root is a Chunk that ends with the EOF token;
//  2. concatenating all tokens reproduces the source byte for byte;
//  3. every node width equals the sum of its children, and each token's
//     text span starts right after its leading trivia at the offset the
//     tree assigns to it (so sibling spans are contiguous);
//  4. every node and token is owned by exactly one parent.
//
// The walk is iterative, so degenerate trees (long '..' chains) are fine.
func CheckTree(tree *ast.Tree) error {
	if tree == nil {
		return fmt.Errorf("nil tree")
	}
	root := tree.Node(tree.RootID())
	if root == nil {
		return fmt.Errorf("root node %d not found", tree.RootID())
	}
	if root.Kind != ast.Chunk {
		return fmt.Errorf("root kind is %s, want Chunk", root.Kind)
	}
	if n := len(root.Children); n == 0 || !root.Children[n-1].IsToken() ||
		tree.Token(root.Children[n-1].Token).Kind != token.EOF {
		return fmt.Errorf("chunk does not end with EOF")
	}

	src := tree.Source()
	if got := tree.Text(); got != string(src) {
		return fmt.Errorf("round-trip mismatch: got %d bytes, want %d", len(got), len(src))
	}
	srcLen, err := safecast.Conv[uint32](len(src))
	if err != nil {
		return fmt.Errorf("source length overflow: %w", err)
	}
	if root.Width != srcLen {
		return fmt.Errorf("root width %d != source length %d", root.Width, srcLen)
	}

	seenNodes := make(map[ast.NodeID]bool, tree.NodeCount())
	seenTokens := make(map[ast.TokenID]bool, tree.TokenCount())

	type frame struct {
		id     ast.NodeID
		offset uint32
	}
	stack := []frame{{id: tree.RootID()}}
	seenNodes[tree.RootID()] = true

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := tree.Node(fr.id)

		off := fr.offset
		for _, ch := range n.Children {
			switch {
			case ch.IsNode():
				if seenNodes[ch.Node] {
					return fmt.Errorf("node %d has more than one parent", ch.Node)
				}
				seenNodes[ch.Node] = true
				child := tree.Node(ch.Node)
				if child == nil {
					return fmt.Errorf("dangling node id %d under %s", ch.Node, n.Kind)
				}
				stack = append(stack, frame{id: ch.Node, offset: off})
				off += child.Width
			case ch.IsToken():
				if seenTokens[ch.Token] {
					return fmt.Errorf("token %d has more than one parent", ch.Token)
				}
				seenTokens[ch.Token] = true
				tok := tree.Token(ch.Token)
				if tok == nil {
					return fmt.Errorf("dangling token id %d under %s", ch.Token, n.Kind)
				}
				lead, err := safecast.Conv[uint32](token.TriviaWidth(tok.Leading))
				if err != nil {
					return err
				}
				if tok.Span.Start != off+lead {
					return fmt.Errorf("%s token %q at %d, tree places it at %d", tok.Kind, tok.Text, tok.Span.Start, off+lead)
				}
				w, err := safecast.Conv[uint32](tok.Width())
				if err != nil {
					return err
				}
				off += w
			default:
				return fmt.Errorf("empty child slot under %s", n.Kind)
			}
		}
		if off-fr.offset != n.Width {
			return fmt.Errorf("%s width %d != children total %d", n.Kind, n.Width, off-fr.offset)
		}
	}

	if len(seenNodes) != tree.NodeCount() {
		return fmt.Errorf("%d of %d nodes are unreachable", tree.NodeCount()-len(seenNodes), tree.NodeCount())
	}
	if len(seenTokens) != tree.TokenCount() {
		return fmt.Errorf("%d of %d tokens are unreachable", tree.TokenCount()-len(seenTokens), tree.TokenCount())
	}
	return nil
}

// CheckTokens verifies that a lexer token stream (EOF included) covers src.
func CheckTokens(src []byte, toks []token.Token) error {
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		return fmt.Errorf("token stream does not end with EOF")
	}
	total := 0
	for i := range toks {
		total += toks[i].Width()
	}
	if total != len(src) {
		return fmt.Errorf("tokens cover %d bytes, source has %d", total, len(src))
	}
	return nil
}
