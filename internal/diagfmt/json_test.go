package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"lunar/internal/diag"
	"lunar/internal/source"
)

func decodeOutput(t *testing.T, buf *bytes.Buffer) DiagnosticsOutput {
	t.Helper()
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	return output
}

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("function f()\n\tlocal x = \"unterminated\nend")
	fileID := fs.AddVirtual("test.lua", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.LexUnterminatedString, source.Span{File: fileID, Start: 24, End: 37}, "unfinished string"))

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true, IncludeFixes: true})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	output := decodeOutput(t, &buf)
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", output.Count)
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" {
		t.Errorf("Expected severity=ERROR, got %s", d.Severity)
	}
	if d.Code != "LEX1002" {
		t.Errorf("Expected code=LEX1002, got %s", d.Code)
	}
	if d.Message != "unfinished string" {
		t.Errorf("unexpected message %q", d.Message)
	}
	if d.Location.File != "test.lua" {
		t.Errorf("Expected file=test.lua, got %s", d.Location.File)
	}
	if d.Location.StartByte != 24 || d.Location.EndByte != 37 {
		t.Errorf("unexpected bytes %d-%d", d.Location.StartByte, d.Location.EndByte)
	}
	if d.Location.StartLine != 2 || d.Location.StartCol != 12 {
		t.Errorf("Expected 2:12, got %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
}

// TestJSONWithNotesAndFixes проверяет JSON с заметками и исправлениями
func TestJSONWithNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("while x do\n  y()\n")
	fileID := fs.AddVirtual("loop.lua", content)

	eof := uint32(len(content))
	at := source.Span{File: fileID, Start: eof, End: eof}
	d := diag.New(diag.SevError, diag.SynExpectEnd, at, "expected 'end', got end of file")
	d = d.WithNote(source.Span{File: fileID, Start: 0, End: 5}, "to close 'while' opened here")
	fix := diag.InsertFix(at, "end")
	d = d.WithFix(fix.Title, fix.Edits...)

	bag := diag.NewBag(1)
	bag.Add(d)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true, IncludeFixes: true}); err != nil {
		t.Fatal(err)
	}
	out := decodeOutput(t, &buf).Diagnostics[0]

	if len(out.Notes) != 1 || out.Notes[0].Message != "to close 'while' opened here" {
		t.Fatalf("notes: %+v", out.Notes)
	}
	if out.Notes[0].Location.StartLine != 1 || out.Notes[0].Location.StartCol != 1 {
		t.Fatalf("note location: %+v", out.Notes[0].Location)
	}
	if len(out.Fixes) != 1 {
		t.Fatalf("Expected 1 fix, got %d", len(out.Fixes))
	}
	if out.Fixes[0].Title != "insert 'end'" || len(out.Fixes[0].Edits) != 1 || out.Fixes[0].Edits[0].NewText != "end" {
		t.Fatalf("fix: %+v", out.Fixes[0])
	}
	if out.Title == "" {
		t.Fatal("code title must be filled")
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.lua", []byte("x"))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.SynExpectAssign, source.Span{File: fileID, Start: 0, End: 1}, "syntax error"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	loc := decodeOutput(t, &buf).Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 {
		t.Fatalf("positions must be omitted: %+v", loc)
	}
	if bytes.Contains(buf.Bytes(), []byte("start_line")) {
		t.Fatalf("start_line must be omitted:\n%s", buf.String())
	}
}

// TestJSONMaxLimit проверяет ограничение количества диагностик
func TestJSONMaxLimit(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("many.lua", []byte("x\ny\nz\nw\nv\n"))
	bag := diag.NewBag(10)
	for i := range uint32(5) {
		bag.Add(diag.New(diag.SevError, diag.SynExpectAssign, source.Span{File: fileID, Start: i * 2, End: i*2 + 1}, "syntax error"))
	}

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{Max: 3}); err != nil {
		t.Fatal(err)
	}
	if out := decodeOutput(t, &buf); out.Count != 3 || len(out.Diagnostics) != 3 {
		t.Fatalf("Expected 3 diagnostics, got %d", out.Count)
	}
}

func TestJSONFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("t.lua", []byte("local t = {1 2}\n"))
	at := source.Span{File: fileID, Start: 12, End: 12}
	d := diag.New(diag.SevError, diag.SynExpectComma, at, "expected ','").WithFix("insert ','", diag.FixEdit{Span: at, NewText: ","})
	bag := diag.NewBag(1)
	bag.Add(d)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludeFixes: true, IncludePreviews: true}); err != nil {
		t.Fatal(err)
	}
	edit := decodeOutput(t, &buf).Diagnostics[0].Fixes[0].Edits[0]
	if len(edit.BeforeLines) != 1 || edit.BeforeLines[0] != "local t = {1 2}" {
		t.Fatalf("before: %q", edit.BeforeLines)
	}
	if len(edit.AfterLines) != 1 || edit.AfterLines[0] != "local t = {1, 2}" {
		t.Fatalf("after: %q", edit.AfterLines)
	}
}
