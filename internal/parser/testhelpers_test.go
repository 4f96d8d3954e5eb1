package parser_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/parser"
	"lunar/internal/source"
	"lunar/internal/testkit"
)

func parseSource(t *testing.T, input string) *ast.Tree {
	t.Helper()
	return parseSourceWithOptions(t, input, parser.Options{})
}

// parseSourceWithOptions parses input and always checks the tree invariants.
func parseSourceWithOptions(t *testing.T, input string, opts parser.Options) *ast.Tree {
	t.Helper()
	tree := parser.Parse(context.Background(), []byte(input), opts)
	if err := testkit.CheckTree(tree); err != nil {
		t.Fatalf("invariants broken for %q: %v", input, err)
	}
	return tree
}

func diagnosticsSummary(diags []diag.Diagnostic) string {
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func expectNoDiagnostics(t *testing.T, tree *ast.Tree) {
	t.Helper()
	if diags := tree.Diagnostics(); len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(diags))
	}
}

func hasCode(diags []diag.Diagnostic, code diag.Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func expectCode(t *testing.T, tree *ast.Tree, code diag.Code) diag.Diagnostic {
	t.Helper()
	for _, d := range tree.Diagnostics() {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("expected %s, got %s", code.ID(), diagnosticsSummary(tree.Diagnostics()))
	return diag.Diagnostic{}
}

// shape renders a subtree as an s-expression: nodes as (Kind ...),
// tokens as their text, missing tokens as <missing X>.
func shape(c ast.Cursor) string {
	if c.IsToken() {
		tok := c.Token()
		if tok.Missing {
			return "<missing " + tok.Kind.String() + ">"
		}
		return tok.Text
	}
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(c.Kind().String())
	for _, ch := range c.Children() {
		sb.WriteString(" ")
		sb.WriteString(shape(ch))
	}
	sb.WriteString(")")
	return sb.String()
}

// firstOfKind returns the first node of kind k in preorder.
func firstOfKind(t *testing.T, tree *ast.Tree, k ast.Kind) ast.Cursor {
	t.Helper()
	var found ast.Cursor
	tree.Walk(func(c ast.Cursor) bool {
		if !found.IsZero() {
			return false
		}
		if c.IsNode() && c.Kind() == k {
			found = c
			return false
		}
		return true
	})
	if found.IsZero() {
		t.Fatalf("no %s node in tree", k)
	}
	return found
}

// statements returns the statement cursors of the main block.
func statements(tree *ast.Tree) []ast.Cursor {
	block, ok := tree.Root().FirstChildOfKind(ast.Block)
	if !ok {
		return nil
	}
	return block.ChildNodes()
}

// exprShape parses "return <src>" and renders the returned expression.
func exprShape(t *testing.T, src string, opts parser.Options) string {
	t.Helper()
	tree := parseSourceWithOptions(t, "return "+src, opts)
	list := firstOfKind(t, tree, ast.ExprList)
	nodes := list.ChildNodes()
	if len(nodes) == 0 {
		t.Fatalf("empty expression list for %q", src)
	}
	return shape(nodes[0])
}

type collectingReporter struct {
	codes []diag.Code
}

func (r *collectingReporter) Report(code diag.Code, _ diag.Severity, _ source.Span, _ string, _ []diag.Note, _ []diag.Fix) {
	r.codes = append(r.codes, code)
}
