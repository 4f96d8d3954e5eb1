// Package ast holds the lossless Lua syntax tree.
//
// The tree has two layers. Green nodes (Node) live in an arena and store only
// their kind, ordered children and total byte width, so a subtree does not
// know where it sits in the file. The red layer (Cursor) is created on demand
// while navigating: it remembers the parent and computes absolute offsets by
// summing sibling widths. Tokens keep their trivia, hence concatenating all
// tokens of a Tree in order yields the source byte for byte.
//
// Trees are immutable once Builder.Finish returns.
package ast
