package diagfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"lunar/internal/lexer"
	"lunar/internal/parser"
	"lunar/internal/source"
)

func TestFormatTreeOutline(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("x.lua", []byte("local x = 1 -- one\n"))
	tree := parser.ParseFile(context.Background(), fs.Get(id), parser.Options{})

	var buf bytes.Buffer
	if err := FormatTree(&buf, tree, fs, TreeOpts{PathMode: PathModeBasename, Trivia: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"x.lua\n",
		"Chunk (1:1-",
		"├─ Block (1:1-1:12)",
		"│  └─ LocalStat (1:1-1:12)",
		`Name "x" at 1:7-1:8`,
		`IntLit "1" at 1:11-1:12 = 1 (trailing: Whitespace, LineComment)`,
		`└─ EOF "" at 2:1-2:1 (leading: Newline)`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatTreeShowsDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("bad.lua", []byte("if x then"))
	tree := parser.ParseFile(context.Background(), fs.Get(id), parser.Options{})

	var buf bytes.Buffer
	if err := FormatTree(&buf, tree, fs, TreeOpts{Diags: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "end <missing>") {
		t.Errorf("missing token not rendered:\n%s", out)
	}
	if !strings.Contains(out, "! ERROR SYN2002") {
		t.Errorf("attached diagnostic not rendered:\n%s", out)
	}
}

func TestFormatTreeJSON(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("j.lua", []byte("return a .. b"))
	tree := parser.ParseFile(context.Background(), fs.Get(id), parser.Options{})

	var buf bytes.Buffer
	if err := FormatTreeJSON(&buf, tree, fs); err != nil {
		t.Fatal(err)
	}
	var root TreeNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if root.Type != "node" || root.Kind != "Chunk" || len(root.Children) != 2 {
		t.Fatalf("root: %+v", root)
	}
	eof := root.Children[1]
	if eof.Type != "token" || eof.Token == nil || eof.Token.Kind != "EOF" {
		t.Fatalf("last child must be EOF: %+v", eof)
	}
}

func TestFormatTreeDeepChain(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("deep.lua", []byte("return a"+strings.Repeat("..a", 5000)))
	tree := parser.ParseFile(context.Background(), fs.Get(id), parser.Options{})

	var buf bytes.Buffer
	if err := FormatTree(&buf, tree, nil, TreeOpts{}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "BinaryExpr"); got != 5000 {
		t.Fatalf("BinaryExpr lines = %d", got)
	}
}

func TestFormatTokens(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("tok.lua", []byte("x = 0x10 -- c\n"))
	toks := lexer.All(fs.Get(id), lexer.Options{})

	var pretty bytes.Buffer
	if err := FormatTokensPretty(&pretty, toks, fs); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(pretty.String(), `IntLit          "0x10" at 1:5-1:9 = 16`) {
		t.Fatalf("pretty tokens:\n%s", pretty.String())
	}

	var js bytes.Buffer
	if err := FormatTokensJSON(&js, toks); err != nil {
		t.Fatal(err)
	}
	var out []TokenOutput
	if err := json.Unmarshal(js.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != len(toks) || out[len(out)-1].Kind != "EOF" {
		t.Fatalf("json tokens: %+v", out)
	}
	if out[2].Value != "16" || len(out[2].Trailing) != 2 {
		t.Fatalf("literal token: %+v", out[2])
	}
}
