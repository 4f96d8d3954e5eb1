package token

import "lunar/internal/source"

type TriviaKind uint8

const (
	TriviaWhitespace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
	// TriviaLineContinuation is reserved for dialects with backslash-newline
	// joins; plain Lua never produces it.
	TriviaLineContinuation
	TriviaShebang
	TriviaBOM
)

var triviaNames = [...]string{
	TriviaWhitespace:       "Whitespace",
	TriviaNewline:          "Newline",
	TriviaLineComment:      "LineComment",
	TriviaBlockComment:     "BlockComment",
	TriviaLineContinuation: "LineContinuation",
	TriviaShebang:          "Shebang",
	TriviaBOM:              "BOM",
}

func (k TriviaKind) String() string {
	if int(k) < len(triviaNames) {
		return triviaNames[k]
	}
	return "TriviaKind(?)"
}

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// IsComment reports whether the trivia piece is a line or block comment.
func (t Trivia) IsComment() bool {
	return t.Kind == TriviaLineComment || t.Kind == TriviaBlockComment
}

// TriviaWidth sums the byte length of a trivia list.
func TriviaWidth(list []Trivia) int {
	n := 0
	for i := range list {
		n += len(list[i].Text)
	}
	return n
}
