package diagfmt

import (
	"fmt"

	"lunar/internal/source"
)

// formatSpan formats a source.Span into a string.
// If fs is non-nil, it resolves the span to start and end positions and returns "startLine:startCol-endLine:endCol".
// If fs is nil, it returns "span(start-end)".
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fileOf(fs, span.File) != nil {
		start, end := fs.Resolve(span)
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}

// fileOf returns the file for id or nil when fs does not know it.
func fileOf(fs *source.FileSet, id source.FileID) *source.File {
	if fs == nil || int(id) >= fs.Len() {
		return nil
	}
	return fs.Get(id)
}

// formatPath renders the path of span's file according to mode.
func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fileOf(fs, id)
	if f == nil {
		return "<unknown>"
	}
	return f.FormatPath(pathModeName(mode), fs.BaseDir())
}
