package ui

import (
	"strings"
	"testing"

	"lunar/internal/driver"
)

func feed(m *progressModel, evs ...driver.FileEvent) {
	for _, ev := range evs {
		m.Update(eventMsg(ev))
	}
}

func TestProgressModelTracksFiles(t *testing.T) {
	m := NewProgressModel("parse", "/src", nil).(*progressModel)
	if m.View() != "" {
		t.Fatal("empty model must render nothing")
	}

	feed(m,
		driver.FileEvent{Path: "/src/a.lua", Total: 2, Status: driver.FileQueued},
		driver.FileEvent{Path: "/src/b.lua", Index: 1, Total: 2, Status: driver.FileQueued},
		driver.FileEvent{Path: "/src/a.lua", Total: 2, Status: driver.FileParsing},
	)
	view := m.View()
	for _, want := range []string{"(0/2 files)", "parsing", "queued", "a.lua", "b.lua"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "/src/") {
		t.Fatalf("paths must be relative to the base dir:\n%s", view)
	}

	feed(m,
		driver.FileEvent{Path: "/src/a.lua", Total: 2, Status: driver.FileDone},
		driver.FileEvent{Path: "/src/b.lua", Index: 1, Total: 2, Status: driver.FileDone, Diagnostics: 3, HasErrors: true, Cached: true},
	)
	view = m.View()
	for _, want := range []string{"(2/2 files, 1 with errors, 1 cached)", "error", "[3]"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}

	m.Update(doneMsg{})
	if !strings.Contains(m.View(), "done: parse") {
		t.Fatalf("done header missing:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a/very/long/path.lua", 10); got != "a/ve..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("日本語日本語", 9); got != "日..." {
		t.Fatalf("got %q", got)
	}
}
