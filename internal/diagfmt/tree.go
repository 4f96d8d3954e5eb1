package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/source"
)

// FormatTree печатает дерево разбора с отступами:
//
//	Chunk (1:1-1:12)
//	├─ Block (1:1-1:12)
//	│  └─ ...
//	└─ EOF "" at 1:12-1:12
//
// Обход итеративный: глубокие цепочки выражений не расходуют стек.
func FormatTree(w io.Writer, tree *ast.Tree, fs *source.FileSet, opts TreeOpts) error {
	if tree == nil {
		return fmt.Errorf("nil tree")
	}
	if file := tree.File(); file != nil && fileOf(fs, file.ID) != nil {
		fmt.Fprintf(w, "%s\n", formatPath(fs, file.ID, opts.PathMode))
	}

	type frame struct {
		c      ast.Cursor
		prefix string
		branch string
	}
	stack := []frame{{c: tree.Root()}}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fmt.Fprintf(w, "%s%s%s\n", fr.prefix, fr.branch, treeLabel(fr.c, fs, opts))
		if opts.Diags {
			for _, d := range ownDiags(fr.c) {
				fmt.Fprintf(w, "%s%s  ! %s %s: %s\n", fr.prefix, continuation(fr.branch), d.Severity, d.Code.ID(), d.Message)
			}
		}

		kids := fr.c.Children()
		childPrefix := fr.prefix + continuation(fr.branch)
		for i := len(kids) - 1; i >= 0; i-- {
			branch := "├─ "
			if i == len(kids)-1 {
				branch = "└─ "
			}
			stack = append(stack, frame{c: kids[i], prefix: childPrefix, branch: branch})
		}
	}
	return nil
}

func continuation(branch string) string {
	switch branch {
	case "├─ ":
		return "│  "
	case "└─ ":
		return "   "
	}
	return ""
}

func treeLabel(c ast.Cursor, fs *source.FileSet, opts TreeOpts) string {
	if !c.IsToken() {
		return fmt.Sprintf("%s (%s)", c.Kind(), formatSpan(c.Span(), fs))
	}
	tok := c.Token()
	var sb strings.Builder
	sb.WriteString(tok.Kind.String())
	if tok.Missing {
		sb.WriteString(" <missing>")
	} else {
		fmt.Fprintf(&sb, " %q", tok.Text)
	}
	fmt.Fprintf(&sb, " at %s", formatSpan(tok.Span, fs))
	if !tok.Value.IsZero() {
		fmt.Fprintf(&sb, " = %s", tok.Value.String())
	}
	if opts.Trivia {
		if len(tok.Leading) > 0 {
			fmt.Fprintf(&sb, " (leading: %s)", triviaKinds(tok.Leading))
		}
		if len(tok.Trailing) > 0 {
			fmt.Fprintf(&sb, " (trailing: %s)", triviaKinds(tok.Trailing))
		}
	}
	return sb.String()
}

// TreeNodeOutput is the JSON form of one tree element.
type TreeNodeOutput struct {
	Type        string            `json:"type"` // "node" | "token"
	Kind        string            `json:"kind"`
	Span        source.Span       `json:"span"`
	Token       *TokenOutput      `json:"token,omitempty"`
	Diagnostics []DiagnosticJSON  `json:"diagnostics,omitempty"`
	Children    []*TreeNodeOutput `json:"children,omitempty"`
}

// BuildTreeOutput converts the tree into TreeNodeOutput values without recursion.
func BuildTreeOutput(tree *ast.Tree, fs *source.FileSet) *TreeNodeOutput {
	type frame struct {
		c   ast.Cursor
		out *TreeNodeOutput
	}
	root := &TreeNodeOutput{}
	stack := []frame{{c: tree.Root(), out: root}}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fr.out.Kind = fr.c.Kind().String()
		fr.out.Span = fr.c.Span()
		if diags := ownDiags(fr.c); len(diags) > 0 {
			fr.out.Diagnostics = BuildDiagnosticsOutput(diags, fs, JSONOpts{IncludePositions: true}).Diagnostics
		}
		if fr.c.IsToken() {
			fr.out.Type = "token"
			tok := tokenOutput(fr.c.Token())
			tok.Diags = nil
			fr.out.Kind = tok.Kind
			fr.out.Token = &tok
			continue
		}
		fr.out.Type = "node"
		kids := fr.c.Children()
		fr.out.Children = make([]*TreeNodeOutput, len(kids))
		for i := range kids {
			fr.out.Children[i] = &TreeNodeOutput{}
			stack = append(stack, frame{c: kids[i], out: fr.out.Children[i]})
		}
	}
	return root
}

// FormatTreeJSON пишет дерево разбора как вложенный JSON.
func FormatTreeJSON(w io.Writer, tree *ast.Tree, fs *source.FileSet) error {
	if tree == nil {
		return fmt.Errorf("nil tree")
	}
	return writeJSON(w, BuildTreeOutput(tree, fs))
}

// ownDiags returns diagnostics attached directly to c, not to its subtree.
func ownDiags(c ast.Cursor) []diag.Diagnostic {
	if n := c.Node(); n != nil {
		return n.Diags
	}
	if tok := c.Token(); tok != nil {
		return tok.Diags
	}
	return nil
}
