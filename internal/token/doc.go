// Package token defines Lua token kinds, trivia and literal values.
// Invariants:
//   - Token.Text is the exact source text of the token (no normalization).
//   - Token.Span matches Text exactly (Start..End); trivia spans sit outside it.
//   - Leading trivia precedes Text, trailing trivia follows it on the same line.
//     A line break always belongs to the leading trivia of the next token.
//   - The EOF token carries the trivia that follows the last real token.
//   - Missing tokens are synthesized by the parser: zero width, empty Text.
package token
