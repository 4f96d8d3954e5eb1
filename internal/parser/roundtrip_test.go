package parser_test

import (
	"context"
	"testing"

	"lunar/internal/ast"
	"lunar/internal/parser"
	"lunar/internal/testkit"
)

// validCorpus covers every statement form plus trivia that must survive.
var validCorpus = []string{
	"",
	"   \n\t\n",
	"-- only a comment",
	"--[==[ block\ncomment ]==]",
	"local x = 1 -- trailing\nlocal y = 2\n",
	"local t = { 1, 2, 3; x = 1, ['k'] = v, }\n",
	"print 'hi'\nprint [[long\nstring]]\nprint { 1 }\n",
	"function M.f(a, b, ...) return a + b, ... end\n",
	"local function fact(n)\n  if n <= 1 then return 1 end\n  return n * fact(n - 1)\nend\n",
	"for i = 10, 1, -1 do print(i) end\nfor k, v in next, t do end\n",
	"while not done do done = step() end\nrepeat local z = f() until z\n",
	"if a then elseif b then else end\n",
	"do local a <const> = 1; local b <close> = res() end\n",
	"goto skip\n::skip::\n",
	"x = 0x1p4 + 1e10 - 3.25 // 2 % 7 ^ 2\n",
	"s = 'a\\n\\x41\\u{48}\\z\n   b' .. \"q\"\n",
	"obj:method(1):chain().field[1] = nil\n",
	"local a, b = ~x & y | z ~ w << 1 >> 2\n",
	"\xEF\xBB\xBFprint(1)\r\nprint(2)\r\n",
	"return\n",
}

func TestRoundTripValidCorpus(t *testing.T) {
	for _, src := range validCorpus {
		tree := parser.Parse(context.Background(), []byte(src), parser.Options{})
		if err := testkit.CheckTree(tree); err != nil {
			t.Errorf("%q: %v", src, err)
			continue
		}
		if diags := tree.Diagnostics(); len(diags) > 0 {
			t.Errorf("%q: %s", src, diagnosticsSummary(diags))
		}
	}
}

// malformedCorpus must never panic and must still reproduce its source.
var malformedCorpus = []string{
	"(", ")", "((((", "end end end", "local", "local function", "function",
	"for", "if", "x = = = 3", "f(", "{", "a.b.c:", "return return", "::",
	"goto", "[[unterminated", "'str", "--[[ unterminated", "x = 1 +",
	"local x <", "@@@", "\x00\xff", "until", "else", "elseif x then",
	"for k, in x do end", "t = {[1] 2}", "a:b", "... = 1", "if if if",
	"local function f(a b) end", "x = function", "while do end",
	"t = {x = }", "f(a,)", "::a:: ::", "return 1,", "x = 1 y = 2 z",
	"0x", "1e", "\"\\q\"", "[==[ ]=]",
}

func TestRoundTripMalformedCorpus(t *testing.T) {
	for _, src := range malformedCorpus {
		tree := parser.Parse(context.Background(), []byte(src), parser.Options{})
		if err := testkit.CheckTree(tree); err != nil {
			t.Errorf("%q: %v", src, err)
			continue
		}
		if !tree.HasErrors() {
			t.Errorf("%q: expected at least one error", src)
		}
	}
}

func TestMissingTokensHaveZeroWidth(t *testing.T) {
	tree := parseSource(t, "if a then x = (1")
	missing := 0
	tree.Walk(func(c ast.Cursor) bool {
		if tok := c.Token(); tok != nil && tok.Missing {
			missing++
			if c.Width() != 0 || tok.Span.Len() != 0 {
				t.Errorf("missing %s has width %d", tok.Kind, c.Width())
			}
		}
		return true
	})
	if missing < 2 {
		t.Fatalf("expected missing ')' and 'end', got %d missing tokens", missing)
	}
}
