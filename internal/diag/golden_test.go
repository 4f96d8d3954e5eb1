package diag

import (
	"testing"

	"lunar/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/testdata/golden/sample.lua", []byte("a\nb\n"), 0)
	otherFile := fs.Add("/workspace/lib/helper.lua", []byte("x\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevError,
			Code:     SynUnexpectedToken,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: otherFile, Start: 0, End: 0}, Msg: "from helper"},
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevFatal,
			Code:     ResTooDeep,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
	}

	expected := "note SYN2001 lib/helper.lua:1:1 from helper\n" +
		"error SYN2001 testdata/golden/sample.lua:1:1 first line second\n" +
		"note SYN2001 testdata/golden/sample.lua:2:1 note line\n" +
		"fatal RES3001 testdata/golden/sample.lua:2:1 another"

	if got := FormatGoldenDiagnostics(diags, fs); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortDiagnosticsWithoutNotes(t *testing.T) {
	fs := source.NewFileSetWithBase("/w")
	id := fs.Add("/w/a.lua", []byte("local x = \n"), 0)
	diags := []Diagnostic{
		NewError(SynExpectExpression, source.Span{File: id, Start: 10, End: 10}, "expected expression").
			WithNote(source.Span{File: id, Start: 0, End: 5}, "in this statement"),
	}
	got := FormatShortDiagnostics(diags, fs, false)
	want := "error SYN2007 a.lua:1:11 expected expression"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if FormatShortDiagnostics(nil, fs, true) != "" {
		t.Fatalf("empty input must render empty string")
	}
}
