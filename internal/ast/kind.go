package ast

// Kind is the closed set of green node shapes.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Chunk — корень дерева: Block и EOF-токен.
	Chunk
	Block
	// Error хранит токены, пропущенные при восстановлении после ошибки.
	Error
	// Missing заменяет поддерево, которое не было разобрано (слишком глубокая вложенность);
	// его дети — пропущенные токены.
	Missing

	// Statements
	EmptyStat
	LocalStat
	LocalFunctionStat
	AssignStat
	CallStat
	IfStat
	WhileStat
	RepeatStat
	NumericForStat
	GenericForStat
	FunctionStat
	ReturnStat
	BreakStat
	GotoStat
	LabelStat
	DoStat

	// Clauses
	ElseIfClause
	ElseClause
	AttribName
	Attrib
	NameList
	ExprList
	VarList
	ParamList
	FuncName
	FuncBody
	CallArgs
	PositionalField
	NamedField
	IndexedField

	// Expressions
	NilExpr
	TrueExpr
	FalseExpr
	NumberExpr
	StringExpr
	VarargExpr
	FunctionExpr
	TableExpr
	ParenExpr
	NameExpr
	IndexExpr
	FieldExpr
	CallExpr
	MethodCallExpr
	UnaryExpr
	BinaryExpr

	kindCount
)

var kindNames = [...]string{
	KindInvalid:       "Invalid",
	Chunk:             "Chunk",
	Block:             "Block",
	Error:             "Error",
	Missing:           "Missing",
	EmptyStat:         "EmptyStat",
	LocalStat:         "LocalStat",
	LocalFunctionStat: "LocalFunctionStat",
	AssignStat:        "AssignStat",
	CallStat:          "CallStat",
	IfStat:            "IfStat",
	WhileStat:         "WhileStat",
	RepeatStat:        "RepeatStat",
	NumericForStat:    "NumericForStat",
	GenericForStat:    "GenericForStat",
	FunctionStat:      "FunctionStat",
	ReturnStat:        "ReturnStat",
	BreakStat:         "BreakStat",
	GotoStat:          "GotoStat",
	LabelStat:         "LabelStat",
	DoStat:            "DoStat",
	ElseIfClause:      "ElseIfClause",
	ElseClause:        "ElseClause",
	AttribName:        "AttribName",
	Attrib:            "Attrib",
	NameList:          "NameList",
	ExprList:          "ExprList",
	VarList:           "VarList",
	ParamList:         "ParamList",
	FuncName:          "FuncName",
	FuncBody:          "FuncBody",
	CallArgs:          "CallArgs",
	PositionalField:   "PositionalField",
	NamedField:        "NamedField",
	IndexedField:      "IndexedField",
	NilExpr:           "NilExpr",
	TrueExpr:          "TrueExpr",
	FalseExpr:         "FalseExpr",
	NumberExpr:        "NumberExpr",
	StringExpr:        "StringExpr",
	VarargExpr:        "VarargExpr",
	FunctionExpr:      "FunctionExpr",
	TableExpr:         "TableExpr",
	ParenExpr:         "ParenExpr",
	NameExpr:          "NameExpr",
	IndexExpr:         "IndexExpr",
	FieldExpr:         "FieldExpr",
	CallExpr:          "CallExpr",
	MethodCallExpr:    "MethodCallExpr",
	UnaryExpr:         "UnaryExpr",
	BinaryExpr:        "BinaryExpr",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsStat reports whether k is a statement.
func (k Kind) IsStat() bool { return k >= EmptyStat && k <= DoStat }

// IsExpr reports whether k is an expression.
func (k Kind) IsExpr() bool { return k >= NilExpr && k <= BinaryExpr }

// IsPlaceholder reports whether k stands for input that was not parsed normally.
func (k Kind) IsPlaceholder() bool { return k == Error || k == Missing }

// ParseKind maps a name produced by String back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k := KindInvalid + 1; k < kindCount; k++ {
		if kindNames[k] == s {
			return k, true
		}
	}
	return KindInvalid, false
}
