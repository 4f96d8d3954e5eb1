// Package dialect describes the Lua language versions understood by the
// front end and the grammar features each of them introduces.
//
// The lexer and parser never reject a construct just because the selected
// version lacks it: the construct is parsed so the tree stays complete, and
// the parser attaches a version diagnostic instead.
package dialect
