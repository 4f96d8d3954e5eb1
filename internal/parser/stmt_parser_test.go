package parser_test

import (
	"context"
	"strings"
	"testing"

	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/dialect"
	"lunar/internal/parser"
	"lunar/internal/source"
	"lunar/internal/token"
	"lunar/internal/trace"
)

func TestStatementKinds(t *testing.T) {
	tests := []struct {
		input string
		want  []ast.Kind
	}{
		{";", []ast.Kind{ast.EmptyStat}},
		{"local x", []ast.Kind{ast.LocalStat}},
		{"local x <const>, y = 1, 2", []ast.Kind{ast.LocalStat}},
		{"local function f() end", []ast.Kind{ast.LocalFunctionStat}},
		{"a, b.c, d[1] = 1, 2, 3", []ast.Kind{ast.AssignStat}},
		{"f()", []ast.Kind{ast.CallStat}},
		{"obj:m()", []ast.Kind{ast.CallStat}},
		{"f 'x' {1}", []ast.Kind{ast.CallStat}},
		{"if a then elseif b then else end", []ast.Kind{ast.IfStat}},
		{"while a do end", []ast.Kind{ast.WhileStat}},
		{"repeat until a", []ast.Kind{ast.RepeatStat}},
		{"for i = 1, 2 do end", []ast.Kind{ast.NumericForStat}},
		{"for i = 1, 10, 2 do end", []ast.Kind{ast.NumericForStat}},
		{"for k, v in pairs(t) do end", []ast.Kind{ast.GenericForStat}},
		{"function a.b:c() end", []ast.Kind{ast.FunctionStat}},
		{"return 1, 2", []ast.Kind{ast.ReturnStat}},
		{"while true do break end", []ast.Kind{ast.WhileStat}},
		{"goto l ::l::", []ast.Kind{ast.GotoStat, ast.LabelStat}},
		{"do end ;", []ast.Kind{ast.DoStat, ast.EmptyStat}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := parseSource(t, tt.input)
			expectNoDiagnostics(t, tree)
			stats := statements(tree)
			if len(stats) != len(tt.want) {
				t.Fatalf("got %d statements, want %d", len(stats), len(tt.want))
			}
			for i, k := range tt.want {
				if stats[i].Kind() != k {
					t.Errorf("statement %d: got %s, want %s", i, stats[i].Kind(), k)
				}
			}
		})
	}
}

func TestStatementShapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{
			"local x <close> = f()",
			"(LocalStat local (NameList (AttribName x (Attrib < close >))) = (ExprList (CallExpr (NameExpr f) (CallArgs ( )))))",
		},
		{
			"function a.b:c(x) end",
			"(FunctionStat function (FuncName a . b : c) (FuncBody ( (ParamList x) ) (Block) end))",
		},
		{
			"if a then x() else y() end",
			"(IfStat if (NameExpr a) then (Block (CallStat (CallExpr (NameExpr x) (CallArgs ( ))))) " +
				"(ElseClause else (Block (CallStat (CallExpr (NameExpr y) (CallArgs ( )))))) end)",
		},
		{
			"if a then elseif b then end",
			"(IfStat if (NameExpr a) then (Block) (ElseIfClause elseif (NameExpr b) then (Block)) end)",
		},
		{
			"for i = 1, 2 do end",
			"(NumericForStat for i = (NumberExpr 1) , (NumberExpr 2) do (Block) end)",
		},
		{
			"for k, v in pairs(t) do end",
			"(GenericForStat for (NameList k , v) in (ExprList (CallExpr (NameExpr pairs) (CallArgs ( (ExprList (NameExpr t)) )))) do (Block) end)",
		},
		{
			"repeat x = 1 until x",
			"(RepeatStat repeat (Block (AssignStat (VarList (NameExpr x)) = (ExprList (NumberExpr 1)))) until (NameExpr x))",
		},
		{"return;", "(ReturnStat return ;)"},
		{"::top::", "(LabelStat :: top ::)"},
		{"goto top", "(GotoStat goto top)"},
		{"local function f(...) end", "(LocalFunctionStat local function f (FuncBody ( (ParamList ...) ) (Block) end))"},
		{"while x do end", "(WhileStat while (NameExpr x) do (Block) end)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := parseSource(t, tt.input)
			expectNoDiagnostics(t, tree)
			stats := statements(tree)
			if len(stats) == 0 {
				t.Fatal("no statements")
			}
			if got := shape(stats[0]); got != tt.want {
				t.Errorf("shape mismatch:\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestIfMissingEnd(t *testing.T) {
	tree := parseSource(t, "if true then")
	stats := statements(tree)
	if len(stats) != 1 || stats[0].Kind() != ast.IfStat {
		t.Fatalf("expected a single IfStat, got %s", shape(tree.Root()))
	}

	kids := stats[0].Children()
	last := kids[len(kids)-1]
	tok := last.Token()
	if tok == nil || tok.Kind != token.KwEnd || !tok.Missing {
		t.Fatalf("last child is not a missing 'end': %s", shape(stats[0]))
	}
	if len(tok.Diags) != 1 || !strings.Contains(tok.Diags[0].Message, "expected 'end'") {
		t.Fatalf("missing 'end' diagnostics: %+v", tok.Diags)
	}
	d := tok.Diags[0]
	if d.Code != diag.SynExpectEnd {
		t.Fatalf("code = %s", d.Code.ID())
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != "end" {
		t.Fatalf("fix: %+v", d.Fixes)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span.Start != 0 {
		t.Fatalf("note should point at 'if': %+v", d.Notes)
	}
	if d.Primary.Start != uint32(len("if true then")) || !d.Primary.Empty() {
		t.Fatalf("primary span %v", d.Primary)
	}

	if got := len(tree.Diagnostics()); got != 1 {
		t.Fatalf("tree diagnostics: %s", diagnosticsSummary(tree.Diagnostics()))
	}
	if diags := stats[0].Diagnostics(); len(diags) != 1 {
		t.Fatalf("cursor diagnostics: %d", len(diags))
	}
}

func TestMissingKeywords(t *testing.T) {
	tests := []struct {
		input string
		code  diag.Code
	}{
		{"if a b() end", diag.SynExpectThen},
		{"while a b() end", diag.SynExpectDo},
		{"for i = 1 do end", diag.SynExpectComma},
		{"for i do end", diag.SynExpectInOrAssign},
		{"repeat x()", diag.SynExpectUntil},
		{"function () end", diag.SynExpectFunctionName},
		{"do x()", diag.SynExpectEnd},
		{"::a", diag.SynExpectLabelEnd},
		{"local function f(a,) end", diag.SynExpectIdentifier},
		{"a:b", diag.SynExpectArgs},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := parseSource(t, tt.input)
			expectCode(t, tree, tt.code)
		})
	}
}

func TestReturnMustBeLast(t *testing.T) {
	tree := parseSource(t, "return 1\nx = 2")
	expectCode(t, tree, diag.SynReturnNotLast)
	stats := statements(tree)
	if len(stats) != 2 || stats[1].Kind() != ast.AssignStat {
		t.Fatalf("statement after return must still be parsed: %s", shape(tree.Root()))
	}

	tree = parseSource(t, "return\nlocal x")
	expectCode(t, tree, diag.SynReturnNotLast)

	for _, ok := range []string{
		"do return end x = 1",
		"function f() return 1 end",
		"if a then return 1 else return 2 end",
		"return f(x);",
	} {
		expectNoDiagnostics(t, parseSource(t, ok))
	}
}

func TestLocalAttributes(t *testing.T) {
	expectNoDiagnostics(t, parseSource(t, "local x <const>, y <close> = 1, f()"))

	tree := parseSource(t, "local a <close>, b <close> = f(), g()")
	expectCode(t, tree, diag.SynMultipleToClose)

	tree = parseSource(t, "local x <foo> = 1")
	d := expectCode(t, tree, diag.SynInvalidAttrib)
	if !strings.Contains(d.Message, "foo") {
		t.Fatalf("message: %q", d.Message)
	}

	tree = parseSourceWithOptions(t, "local x <const> = 1", parser.Options{Version: dialect.Lua53})
	expectCode(t, tree, diag.SynVersionFeature)
}

func TestAssignmentTargets(t *testing.T) {
	for _, bad := range []string{"f() = 1", "(a) = 1", "a, f() = 1, 2", "a:m() = 1"} {
		t.Run(bad, func(t *testing.T) {
			tree := parseSource(t, bad)
			expectCode(t, tree, diag.SynNotAssignable)
			firstOfKind(t, tree, ast.AssignStat)
		})
	}
	expectNoDiagnostics(t, parseSource(t, "a.b, c[1], d = 1, 2, 3"))
}

func TestExpressionIsNotStatement(t *testing.T) {
	for _, src := range []string{"x", "a.b", "a[1]", "(f)"} {
		t.Run(src, func(t *testing.T) {
			tree := parseSource(t, src)
			expectCode(t, tree, diag.SynExpectAssign)
			if stats := statements(tree); len(stats) != 1 || stats[0].Kind() != ast.Error {
				t.Fatalf("expected an Error statement: %s", shape(tree.Root()))
			}
		})
	}
}

func TestStrayTokens(t *testing.T) {
	tree := parseSource(t, "end")
	expectCode(t, tree, diag.SynUnexpectedToken)

	tree = parseSource(t, ") x = 1")
	expectCode(t, tree, diag.SynExpectStatement)
	stats := statements(tree)
	if len(stats) != 2 || stats[0].Kind() != ast.Error || stats[1].Kind() != ast.AssignStat {
		t.Fatalf("recovery failed: %s", shape(tree.Root()))
	}

	tree = parseSource(t, "x = 1 until y = 2")
	stats = statements(tree)
	if len(stats) != 3 || stats[1].Kind() != ast.Error || stats[2].Kind() != ast.AssignStat {
		t.Fatalf("recovery failed: %s", shape(tree.Root()))
	}
}

func TestGotoByVersion(t *testing.T) {
	lua51 := parser.Options{Version: dialect.Lua51}
	expectNoDiagnostics(t, parseSourceWithOptions(t, "goto = 1", lua51))
	expectCode(t, parseSourceWithOptions(t, "::a::", lua51), diag.SynVersionFeature)
	expectNoDiagnostics(t, parseSource(t, "goto continue ::continue::"))
}

func TestDepthLimit(t *testing.T) {
	t.Run("parens", func(t *testing.T) {
		src := "return " + strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300)
		tree := parseSource(t, src)
		diags := tree.Diagnostics()
		if len(diags) != 1 || diags[0].Code != diag.ResTooDeep || diags[0].Severity != diag.SevFatal {
			t.Fatalf("diagnostics: %s", diagnosticsSummary(diags))
		}
		missing := firstOfKind(t, tree, ast.Missing)
		if len(missing.Children()) == 0 {
			t.Fatal("Missing node must keep the skipped tokens")
		}
		if len(missing.Diagnostics()) == 0 {
			t.Fatal("Missing node must carry the diagnostic")
		}
	})

	t.Run("blocks", func(t *testing.T) {
		src := strings.Repeat("do ", 300) + strings.Repeat("end ", 300)
		tree := parseSource(t, src)
		diags := tree.Diagnostics()
		if len(diags) != 1 || diags[0].Code != diag.ResTooDeep {
			t.Fatalf("diagnostics: %s", diagnosticsSummary(diags))
		}
	})

	t.Run("tables", func(t *testing.T) {
		src := "t = " + strings.Repeat("{", 400) + strings.Repeat("}", 400)
		tree := parseSource(t, src)
		expectCode(t, tree, diag.ResTooDeep)
	})

	t.Run("functions", func(t *testing.T) {
		src := "f = " + strings.Repeat("function() return ", 300) + "1" + strings.Repeat(" end", 300)
		tree := parseSource(t, src)
		expectCode(t, tree, diag.ResTooDeep)
	})

	t.Run("custom_limit", func(t *testing.T) {
		src := "return " + strings.Repeat("(", 10) + "1" + strings.Repeat(")", 10)
		tree := parseSourceWithOptions(t, src, parser.Options{MaxDepth: 5})
		expectCode(t, tree, diag.ResTooDeep)
	})

	t.Run("below_limit", func(t *testing.T) {
		src := "return " + strings.Repeat("(", 150) + "1" + strings.Repeat(")", 150)
		expectNoDiagnostics(t, parseSource(t, src))
	})
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := "local x = 1\nfor i = 1, 10 do print(i) end\n"
	tree := parser.Parse(ctx, []byte(src), parser.Options{})
	if tree.Text() != src {
		t.Fatalf("cancelled tree lost text: %q", tree.Text())
	}
	diags := tree.Diagnostics()
	if len(diags) != 1 || diags[0].Code != diag.ResCancelled {
		t.Fatalf("diagnostics: %s", diagnosticsSummary(diags))
	}
	stats := statements(tree)
	if len(stats) != 1 || stats[0].Kind() != ast.Error {
		t.Fatalf("rest of input must be kept in an Error node: %s", shape(tree.Root()))
	}
	if len(stats[0].Diagnostics()) != 1 {
		t.Fatal("Error node must carry the cancellation diagnostic")
	}
}

func TestMaxErrors(t *testing.T) {
	src := strings.Repeat("x\n", 10)
	tree := parseSourceWithOptions(t, src, parser.Options{MaxErrors: 3})
	if got := len(tree.Diagnostics()); got != 3 {
		t.Fatalf("tree diagnostics = %d, want 3", got)
	}
	attached := 0
	for _, st := range statements(tree) {
		attached += len(st.Diagnostics())
	}
	if attached != 10 {
		t.Fatalf("attached diagnostics = %d, want 10", attached)
	}
}

func TestMaxErrorsKeepsFatal(t *testing.T) {
	src := "x\nreturn " + strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300)
	tree := parseSourceWithOptions(t, src, parser.Options{MaxErrors: 1})
	d := expectCode(t, tree, diag.ResTooDeep)
	if d.Severity != diag.SevFatal {
		t.Fatalf("severity = %s", d.Severity)
	}
	errs := 0
	for _, d := range tree.Diagnostics() {
		if d.Severity == diag.SevError {
			errs++
		}
	}
	if errs != 1 {
		t.Fatalf("error budget not applied: %s", diagnosticsSummary(tree.Diagnostics()))
	}
}

func TestCascadedMissingTokensCarryDiagnostics(t *testing.T) {
	tests := []struct {
		input  string
		closer token.Kind
		code   diag.Code
	}{
		{"while x do local t = {", token.KwEnd, diag.SynExpectEnd},
		{"if true then f(", token.KwEnd, diag.SynExpectEnd},
		{"if true then f(", token.RParen, diag.SynExpectRParen},
		{"function f() return (1", token.KwEnd, diag.SynExpectEnd},
		{"function f() return (1", token.RParen, diag.SynExpectRParen},
	}
	for _, tt := range tests {
		t.Run(tt.input+"/"+tt.closer.String(), func(t *testing.T) {
			tree := parseSource(t, tt.input)
			if len(tree.Diagnostics()) == 0 {
				t.Fatal("malformed input without diagnostics")
			}
			found := false
			tree.Walk(func(c ast.Cursor) bool {
				tok := c.Token()
				if tok == nil || !tok.Missing {
					return true
				}
				if len(tok.Diags) == 0 {
					t.Errorf("missing %s has no diagnostic", tok.Kind)
				}
				if tok.Kind == tt.closer {
					found = true
					if tok.Diags[0].Code != tt.code {
						t.Errorf("missing %s: code %s, want %s", tok.Kind, tok.Diags[0].Code.ID(), tt.code.ID())
					}
				}
				return true
			})
			if !found {
				t.Fatalf("no missing %s in %s", tt.closer, shape(tree.Root()))
			}
		})
	}
}

func TestReporterReceivesDiagnostics(t *testing.T) {
	rep := &collectingReporter{}
	parseSourceWithOptions(t, "if true then", parser.Options{Reporter: rep})
	if len(rep.codes) != 1 || rep.codes[0] != diag.SynExpectEnd {
		t.Fatalf("reported codes: %v", rep.codes)
	}
}

func TestScriptMode(t *testing.T) {
	src := "#!/usr/bin/env lua\nprint(1)\n"
	tree := parseSourceWithOptions(t, src, parser.Options{Mode: parser.ModeScript})
	expectNoDiagnostics(t, tree)

	first, ok := tree.Root().FirstToken()
	if !ok || len(first.Token().Leading) == 0 || first.Token().Leading[0].Kind != token.TriviaShebang {
		t.Fatalf("shebang trivia not attached to the first token")
	}

	tree = parseSourceWithOptions(t, src, parser.Options{Mode: parser.ModeChunk})
	if !tree.HasErrors() {
		t.Fatal("a '#' line is not valid Lua in chunk mode")
	}
}

func TestParseFileKeepsFile(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.lua", []byte("print('hi')"))
	file := fs.Get(id)

	tree := parser.ParseFile(context.Background(), file, parser.Options{})
	if tree.File() != file {
		t.Fatal("tree must reference the parsed file")
	}
	expectNoDiagnostics(t, tree)
}

func TestTraceRecordsRecoveries(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("main.lua", []byte("if true then")))

	parser.ParseFile(ctx, file, parser.Options{})

	var sawMissing, sawFailedEnd bool
	for _, ev := range ring.Snapshot() {
		switch {
		case ev.Kind == trace.KindRecovery && ev.Recovery == trace.RecoverMissing:
			sawMissing = ev.File == "main.lua" && ev.Offset == uint32(len("if true then"))
		case ev.Kind == trace.KindSpanEnd && ev.Name == "lex+parse":
			sawFailedEnd = ev.File == "main.lua" && ev.Errors == 1 && ev.Failed()
		}
	}
	if !sawMissing || !sawFailedEnd {
		t.Fatalf("missing=%v failedEnd=%v in %+v", sawMissing, sawFailedEnd, ring.Snapshot())
	}
	if got := ring.FailedFiles(); len(got) != 1 || got[0] != "main.lua" {
		t.Fatalf("FailedFiles = %v", got)
	}
}

func TestParseNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Parse(nil) must panic")
		}
	}()
	parser.Parse(context.Background(), nil, parser.Options{})
}

func TestDiagnosticsAreSorted(t *testing.T) {
	tree := parseSource(t, "x\ny = (1\nz = {")
	diags := tree.Diagnostics()
	if len(diags) < 3 {
		t.Fatalf("expected several diagnostics, got %s", diagnosticsSummary(diags))
	}
	for i := 1; i < len(diags); i++ {
		if diags[i].Primary.Start < diags[i-1].Primary.Start {
			t.Fatalf("diagnostics out of order: %s", diagnosticsSummary(diags))
		}
	}
}
