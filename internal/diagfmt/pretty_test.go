package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"lunar/internal/diag"
	"lunar/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()

	content := []byte("local x = \"unterminated string\n")
	fileID := fs.AddVirtual("/home/user/project/src/test.lua", content)

	// Устанавливаем базовую директорию для relative paths
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevError,
		diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 10, End: 30},
		"unfinished string",
	))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/test.lua"},
		{"Relative path", PathModeRelative, "src/test.lua"},
		{"Basename only", PathModeBasename, "test.lua"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			for _, want := range []string{"ERROR", "LEX1002", "unfinished string", ":1:11:"} {
				if !strings.Contains(output, want) {
					t.Errorf("Expected %q in output, got:\n%s", want, output)
				}
			}
		})
	}
}

// TestPathModeAuto проверяет авто-режим выбора пути
func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"Short path - as is", "test.lua", "test.lua"},
		{"Long absolute path - basename", "/very/long/absolute/path/to/some/nested/directory/file.lua", "file.lua"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileID := fs.AddVirtual(tt.path, []byte("local x = 42\n"))

			bag := diag.NewBag(10)
			bag.Add(diag.New(diag.SevWarning, diag.LexUnknownChar, source.Span{File: fileID, Start: 10, End: 12}, "Test warning"))

			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.expected, buf.String())
			}
		})
	}
}

func TestPrettyCaretUnderline(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("caret.lua", []byte("local x = 1 @ 2\n"))

	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.LexUnknownChar, source.Span{File: fileID, Start: 12, End: 13}, "unexpected symbol"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, source and caret lines, got:\n%s", buf.String())
	}
	if lines[1] != "1 | local x = 1 @ 2" {
		t.Fatalf("source line = %q", lines[1])
	}
	if lines[2] != "  | "+strings.Repeat(" ", 12)+"^" {
		t.Fatalf("caret line = %q", lines[2])
	}
}

func TestPrettyCaretWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	// "漢字" занимает 4 ячейки терминала и 6 байт
	content := []byte("s = '漢字' + x\n")
	fileID := fs.AddVirtual("wide.lua", content)
	plus := uint32(strings.Index(string(content), "+"))

	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.SynUnexpectedToken, source.Span{File: fileID, Start: plus, End: plus + 1}, "bad"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := "  | " + strings.Repeat(" ", len("s = '")+4+len("' ")) + "^"
	if lines[len(lines)-1] != want {
		t.Fatalf("caret line = %q, want %q", lines[len(lines)-1], want)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("if x then\n  f()\n")
	fileID := fs.AddVirtual("test.lua", content)

	bag := diag.NewBag(4)
	eof := uint32(len(content))
	primary := source.Span{File: fileID, Start: eof, End: eof}
	d := diag.New(diag.SevError, diag.SynExpectEnd, primary, "expected 'end', got end of file")
	d = d.WithNote(source.Span{File: fileID, Start: 0, End: 2}, "to close 'if' opened here")
	fix := diag.InsertFix(primary, "end")
	d = d.WithFix(fix.Title, fix.Edits...)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, ShowFixes: true})
	output := buf.String()

	if !strings.Contains(output, "note: test.lua:1:1: to close 'if' opened here") {
		t.Fatalf("expected note with location, got:\n%s", output)
	}
	if !strings.Contains(output, "fix #1: ") {
		t.Fatalf("expected first fix entry, got:\n%s", output)
	}
	if !strings.Contains(output, `apply="end"`) {
		t.Fatalf("expected fix edit apply preview, got:\n%s", output)
	}
}

func TestPrettyFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("local t = {1 2}")
	fileID := fs.AddVirtual("example.lua", content)

	bag := diag.NewBag(2)
	insertSpan := source.Span{File: fileID, Start: 12, End: 12}
	d := diag.New(diag.SevError, diag.SynExpectComma, insertSpan, "expected ',' or ';' between table fields")
	d = d.WithFix("insert ','", diag.FixEdit{Span: insertSpan, NewText: ","})
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowFixes: true, ShowPreview: true})

	output := buf.String()
	if !strings.Contains(output, "preview:") {
		t.Fatalf("expected preview header in output, got:\n%s", output)
	}
	if !strings.Contains(output, "- local t = {1 2}") {
		t.Fatalf("expected before line in preview, got:\n%s", output)
	}
	if !strings.Contains(output, "+ local t = {1, 2}") {
		t.Fatalf("expected after line in preview, got:\n%s", output)
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("c.lua", []byte("x"))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.SynExpectAssign, source.Span{File: fileID, Start: 0, End: 1}, "syntax error"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})

	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output contains escape codes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escape codes: %q", colored.String())
	}
}
