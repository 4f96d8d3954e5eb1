package diagfmt

import (
	"fmt"
	"strings"

	"lunar/internal/diag"
	"lunar/internal/source"
)

type fixEditPreview struct {
	before []string
	after  []string
}

// buildFixEditPreview применяет правку к строкам, которые она задевает,
// и возвращает их до и после.
func buildFixEditPreview(fs *source.FileSet, edit diag.FixEdit) (fixEditPreview, error) {
	file := fileOf(fs, edit.Span.File)
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}
	size := file.Len()
	if edit.Span.Start > edit.Span.End || edit.Span.End > size {
		return fixEditPreview{}, fmt.Errorf("edit span %s out of range", edit.Span)
	}

	blockStart := lineStartOffset(file, edit.Span.Start)
	blockEnd := lineEndOffset(file, edit.Span.End)
	original := file.Content[blockStart:blockEnd]

	relStart := edit.Span.Start - blockStart
	relEnd := edit.Span.End - blockStart

	after := make([]byte, 0, len(original)+len(edit.NewText))
	after = append(after, original[:relStart]...)
	after = append(after, edit.NewText...)
	after = append(after, original[relEnd:]...)

	return fixEditPreview{
		before: splitPreviewLines(original),
		after:  splitPreviewLines(after),
	}, nil
}

func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

// lineStartOffset returns the offset of the first byte of the line containing off.
func lineStartOffset(f *source.File, off uint32) uint32 {
	pos := f.Position(off)
	if pos.Col == 0 || pos.Col-1 > off {
		return 0
	}
	return off - (pos.Col - 1)
}

// lineEndOffset returns the offset of the line break ending the line containing off.
func lineEndOffset(f *source.File, off uint32) uint32 {
	size := f.Len()
	for off < size && f.Content[off] != '\n' && f.Content[off] != '\r' {
		off++
	}
	return off
}
