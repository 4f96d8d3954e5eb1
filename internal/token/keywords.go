package token

var keywords = map[string]Kind{
	"and":      KwAnd,
	"break":    KwBreak,
	"do":       KwDo,
	"else":     KwElse,
	"elseif":   KwElseif,
	"end":      KwEnd,
	"false":    KwFalse,
	"for":      KwFor,
	"function": KwFunction,
	"goto":     KwGoto,
	"if":       KwIf,
	"in":       KwIn,
	"local":    KwLocal,
	"nil":      KwNil,
	"not":      KwNot,
	"or":       KwOr,
	"repeat":   KwRepeat,
	"return":   KwReturn,
	"then":     KwThen,
	"true":     KwTrue,
	"until":    KwUntil,
	"while":    KwWhile,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые, распознаются только lowercase версии.
// 'goto' возвращается всегда; лексер понижает его до Name для Lua 5.1.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
