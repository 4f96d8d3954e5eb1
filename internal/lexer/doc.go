// Package lexer turns Lua source into tokens for the parser.
//
// The lexer never fails: unknown bytes become Unknown tokens, malformed
// literals keep their best-effort span, and every problem is reported both
// to Options.Reporter and on the token's Diags. Whitespace, line breaks and
// comments are attached to tokens as leading/trailing trivia so that the
// concatenation of all tokens (EOF included) reproduces the input exactly.
package lexer
