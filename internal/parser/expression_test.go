package parser_test

import (
	"strings"
	"testing"

	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/dialect"
	"lunar/internal/parser"
)

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"mul_binds_tighter", "1 + 2 * 3", "(BinaryExpr (NumberExpr 1) + (BinaryExpr (NumberExpr 2) * (NumberExpr 3)))"},
		{"unary_minus_below_pow", "-2^2", "(UnaryExpr - (BinaryExpr (NumberExpr 2) ^ (NumberExpr 2)))"},
		{"pow_right_assoc", "2^3^2", "(BinaryExpr (NumberExpr 2) ^ (BinaryExpr (NumberExpr 3) ^ (NumberExpr 2)))"},
		{"pow_unary_rhs", "2^-3", "(BinaryExpr (NumberExpr 2) ^ (UnaryExpr - (NumberExpr 3)))"},
		{"concat_right_assoc", "a..b..c", "(BinaryExpr (NameExpr a) .. (BinaryExpr (NameExpr b) .. (NameExpr c)))"},
		{"concat_below_add", "a .. b + c", "(BinaryExpr (NameExpr a) .. (BinaryExpr (NameExpr b) + (NameExpr c)))"},
		{"sub_left_assoc", "a - b - c", "(BinaryExpr (BinaryExpr (NameExpr a) - (NameExpr b)) - (NameExpr c))"},
		{"floor_mod_left_assoc", "a // b % c", "(BinaryExpr (BinaryExpr (NameExpr a) // (NameExpr b)) % (NameExpr c))"},
		{"not_binds_tighter_than_eq", "not a == b", "(BinaryExpr (UnaryExpr not (NameExpr a)) == (NameExpr b))"},
		{"and_above_or", "a or b and c", "(BinaryExpr (NameExpr a) or (BinaryExpr (NameExpr b) and (NameExpr c)))"},
		{"comparison_above_and", "a < b and c", "(BinaryExpr (BinaryExpr (NameExpr a) < (NameExpr b)) and (NameExpr c))"},
		{"shift", "1 << 20", "(BinaryExpr (NumberExpr 1) << (NumberExpr 20))"},
		{"bitwise_ladder", "a | b ~ c & d", "(BinaryExpr (NameExpr a) | (BinaryExpr (NameExpr b) ~ (BinaryExpr (NameExpr c) & (NameExpr d))))"},
		{"shift_above_band", "a & b << c", "(BinaryExpr (NameExpr a) & (BinaryExpr (NameExpr b) << (NameExpr c)))"},
		{"concat_above_shift", "a << b .. c", "(BinaryExpr (NameExpr a) << (BinaryExpr (NameExpr b) .. (NameExpr c)))"},
		{"length", "#t + 1", "(BinaryExpr (UnaryExpr # (NameExpr t)) + (NumberExpr 1))"},
		{"double_negation", "- - x", "(UnaryExpr - (UnaryExpr - (NameExpr x)))"},
		{"bnot", "~x", "(UnaryExpr ~ (NameExpr x))"},
		{"unary_minus_above_mul", "-a * b", "(BinaryExpr (UnaryExpr - (NameExpr a)) * (NameExpr b))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exprShape(t, tt.input, parser.Options{}); got != tt.want {
				t.Errorf("shape mismatch for %q:\n got: %s\nwant: %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestPrimaryAndSuffixedExpressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"nil", "nil", "(NilExpr nil)"},
		{"true", "true", "(TrueExpr true)"},
		{"false", "false", "(FalseExpr false)"},
		{"vararg", "...", "(VarargExpr ...)"},
		{"string", "'s'", "(StringExpr 's')"},
		{"long_string", "[[x]]", "(StringExpr [[x]])"},
		{"paren", "(a)", "(ParenExpr ( (NameExpr a) ))"},
		{"call", "f(1, 2)", "(CallExpr (NameExpr f) (CallArgs ( (ExprList (NumberExpr 1) , (NumberExpr 2)) )))"},
		{"call_no_args", "f()", "(CallExpr (NameExpr f) (CallArgs ( )))"},
		{"string_call", "f'x'", "(CallExpr (NameExpr f) (CallArgs (StringExpr 'x')))"},
		{"table_call", "f{1}", "(CallExpr (NameExpr f) (CallArgs (TableExpr { (PositionalField (NumberExpr 1)) })))"},
		{"method_call", "obj:m 'x'", "(MethodCallExpr (NameExpr obj) : m (CallArgs (StringExpr 'x')))"},
		{"field_index", "a.b[c]", "(IndexExpr (FieldExpr (NameExpr a) . b) [ (NameExpr c) ])"},
		{"call_chain", "a.b(1):c()", "(MethodCallExpr (CallExpr (FieldExpr (NameExpr a) . b) (CallArgs ( (ExprList (NumberExpr 1)) ))) : c (CallArgs ( )))"},
		{"function", "function(a, ...) end", "(FunctionExpr function (FuncBody ( (ParamList a , ...) ) (Block) end))"},
		{
			"table_fields",
			"{1, x = 2; [3] = 4,}",
			"(TableExpr { (PositionalField (NumberExpr 1)) , (NamedField x = (NumberExpr 2)) ; (IndexedField [ (NumberExpr 3) ] = (NumberExpr 4)) , })",
		},
		{"empty_table", "{}", "(TableExpr { })"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exprShape(t, tt.input, parser.Options{}); got != tt.want {
				t.Errorf("shape mismatch for %q:\n got: %s\nwant: %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestDeepConcatChain(t *testing.T) {
	const n = 10000
	src := "return a" + strings.Repeat("..a", n)
	tree := parseSource(t, src)
	expectNoDiagnostics(t, tree)

	binaries := 0
	tree.Walk(func(c ast.Cursor) bool {
		if c.IsNode() && c.Kind() == ast.BinaryExpr {
			binaries++
		}
		return true
	})
	if binaries != n {
		t.Fatalf("expected %d BinaryExpr nodes, got %d", n, binaries)
	}

	// правая ассоциативность: левый операнд верхнего узла — имя
	top := firstOfKind(t, tree, ast.BinaryExpr)
	kids := top.Children()
	if len(kids) != 3 || kids[0].Kind() != ast.NameExpr || kids[2].Kind() != ast.BinaryExpr {
		t.Fatalf("unexpected top-level concat shape")
	}
}

func TestDeepUnaryChain(t *testing.T) {
	src := "return " + strings.Repeat("not ", 5000) + "x"
	tree := parseSource(t, src)
	expectNoDiagnostics(t, tree)
}

func TestShiftOperandsAreNumbers(t *testing.T) {
	tree := parseSource(t, "x = 1 << 20")
	expectNoDiagnostics(t, tree)
	bin := firstOfKind(t, tree, ast.BinaryExpr)
	kids := bin.Children()
	if kids[0].Kind() != ast.NumberExpr || kids[2].Kind() != ast.NumberExpr {
		t.Fatalf("shift operands: %s", shape(bin))
	}
	lhs := kids[0].Children()[0].Token()
	rhs := kids[2].Children()[0].Token()
	if lhs.Value.Int != 1 || rhs.Value.Int != 20 {
		t.Fatalf("shift operand values: %v, %v", lhs.Value, rhs.Value)
	}
}

func TestVersionGatedOperators(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		version dialect.Version
		gated   bool
	}{
		{"shift_53", "x = 1 << 2", dialect.Lua53, false},
		{"shift_52", "x = 1 << 2", dialect.Lua52, true},
		{"floor_div_51", "x = 7 // 2", dialect.Lua51, true},
		{"floor_div_54", "x = 7 // 2", dialect.Lua54, false},
		{"bnot_52", "x = ~1", dialect.Lua52, true},
		{"bxor_52", "x = a ~ b", dialect.Lua52, true},
		{"plain_51", "x = a + b", dialect.Lua51, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parseSourceWithOptions(t, tt.input, parser.Options{Version: tt.version})
			got := hasCode(tree.Diagnostics(), diag.SynVersionFeature)
			if got != tt.gated {
				t.Fatalf("version diagnostic = %v, want %v (%s)", got, tt.gated, diagnosticsSummary(tree.Diagnostics()))
			}
			// оператор всё равно разобран
			firstOfKind(t, tree, ast.AssignStat)
		})
	}
}

func TestVarargOutsideVarargFunction(t *testing.T) {
	tree := parseSource(t, "local function f(a) return ... end")
	d := expectCode(t, tree, diag.SynVarargOutside)
	if d.Severity != diag.SevError {
		t.Fatalf("severity = %s", d.Severity)
	}

	for _, ok := range []string{
		"return ...",
		"local function f(...) return ... end",
		"local function f(a, ...) return function(...) return ... end end",
	} {
		expectNoDiagnostics(t, parseSource(t, ok))
	}

	tree = parseSource(t, "local function f(...) return function() return ... end end")
	expectCode(t, tree, diag.SynVarargOutside)
}

func TestMissingExpression(t *testing.T) {
	tree := parseSource(t, "x = ")
	d := expectCode(t, tree, diag.SynExpectExpression)
	if !strings.Contains(d.Message, "expected expression") {
		t.Fatalf("message: %q", d.Message)
	}
	assign := firstOfKind(t, tree, ast.AssignStat)
	if !strings.Contains(shape(assign), "(Error <missing Name>)") {
		t.Fatalf("missing placeholder not in tree: %s", shape(assign))
	}
}

func TestUnclosedParenAndBrackets(t *testing.T) {
	tests := []struct {
		input string
		code  diag.Code
	}{
		{"x = (a", diag.SynExpectRParen},
		{"x = t[1", diag.SynExpectRBracket},
		{"x = {1, 2", diag.SynExpectRBrace},
		{"f(1, 2", diag.SynExpectRParen},
		{"x = a.", diag.SynExpectIdentifier},
		{"x = {1 2}", diag.SynExpectComma},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := parseSource(t, tt.input)
			expectCode(t, tree, tt.code)
		})
	}
}
