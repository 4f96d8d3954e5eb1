package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"

	"lunar/internal/diag"
	"lunar/internal/source"
)

const tabWidth = 4

type palette struct {
	sev    map[diag.Severity]*color.Color
	code   *color.Color
	path   *color.Color
	gutter *color.Color
	caret  *color.Color
	note   *color.Color
	fix    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevFatal:   color.New(color.FgMagenta, color.Bold),
		},
		code:   color.New(color.Bold),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
		fix:    color.New(color.FgGreen),
	}
	all := []*color.Color{p.code, p.path, p.gutter, p.caret, p.note, p.fix}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	if c, ok := p.sev[sev]; ok {
		return c
	}
	return p.code
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	items := bag.Items()
	for i := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &items[i], fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	file := fileOf(fs, d.Primary.File)
	if file == nil {
		fmt.Fprintf(w, "%s %s: %s\n", pal.severity(d.Severity).Sprint(d.Severity.String()), pal.code.Sprint(d.Code.ID()), d.Message)
		return
	}

	start, _ := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		pal.path.Sprintf("%s:%d:%d", formatPath(fs, d.Primary.File, opts.PathMode), start.Line, start.Col),
		pal.severity(d.Severity).Sprint(d.Severity.String()),
		pal.code.Sprint(d.Code.ID()),
		d.Message)

	writeSnippet(w, file, d.Primary, opts, pal)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			np := fs.Get(n.Span.File).Position(n.Span.Start)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", pal.note.Sprint("note:"), formatPath(fs, n.Span.File, opts.PathMode), np.Line, np.Col, n.Msg)
		}
	}

	if opts.ShowFixes {
		for i, fx := range d.Fixes {
			fmt.Fprintf(w, "  %s %s\n", pal.fix.Sprintf("fix #%d:", i+1), fx.Title)
			for _, e := range fx.Edits {
				fmt.Fprintf(w, "    at %s apply=%q\n", formatSpan(e.Span, fs), e.NewText)
				if !opts.ShowPreview {
					continue
				}
				preview, err := buildFixEditPreview(fs, e)
				if err != nil {
					continue
				}
				fmt.Fprintln(w, "    preview:")
				for _, line := range preview.before {
					fmt.Fprintf(w, "      - %s\n", line)
				}
				for _, line := range preview.after {
					fmt.Fprintf(w, "      + %s\n", line)
				}
			}
		}
	}
}

// writeSnippet печатает строку с диагностикой (и Context строк до неё)
// и подчёркивание. Колонки считаются в ячейках терминала, а не в байтах.
func writeSnippet(w io.Writer, file *source.File, span source.Span, opts PrettyOpts, pal palette) {
	start := file.Position(span.Start)
	if start.Line == 0 {
		return
	}

	first := start.Line
	if opts.Context > 0 && uint32(opts.Context) < first {
		first -= uint32(opts.Context)
	} else if opts.Context > 0 {
		first = 1
	}
	gutterWidth := len(fmt.Sprint(start.Line))

	for ln := first; ln <= start.Line; ln++ {
		text := displayLine(file.GetLine(ln), opts.Width)
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, ln), text)
	}

	line := file.GetLine(start.Line)
	col := min(int(start.Col-1), len(line))
	prefix := expandTabs(line[:col])
	rest := line[col:]

	n := int(span.Len())
	if n > len(rest) {
		n = len(rest)
	}
	underline := max(displayWidth(expandTabs(rest[:n])), 1)

	pad := strings.Repeat(" ", displayWidth(prefix))
	marker := "^" + strings.Repeat("~", underline-1)
	fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprint(strings.Repeat(" ", gutterWidth)+" |"), pad, pal.caret.Sprint(marker))
}

// displayWidth — ширина строки в ячейках после NFC-нормализации.
func displayWidth(s string) int {
	return runewidth.StringWidth(norm.NFC.String(s))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func displayLine(line string, width uint8) string {
	line = expandTabs(line)
	if width == 0 || displayWidth(line) <= int(width) {
		return line
	}
	return runewidth.Truncate(line, int(width), "...")
}
