package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lunar/internal/diagfmt"
	"lunar/internal/project"
	"lunar/internal/version"
)

var testdata = filepath.Join("..", "..", "testdata", "lua")

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd, finish := newRootCmd()
	defer finish()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeTemp(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "lunar "+version.Version) {
		t.Fatalf("unexpected banner %q", out)
	}

	out, _, err = runCLI(t, "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "lunar" || payload.Version != version.Version {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestTokenizeCommand(t *testing.T) {
	out, _, err := runCLI(t, "tokenize", filepath.Join(testdata, "valid", "loops.lua"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"local"`, `"total"`, `"const"`, "EOF"} {
		if !strings.Contains(out, want) {
			t.Fatalf("tokenize output lacks %q", want)
		}
	}

	out, _, err = runCLI(t, "tokenize", "--format", "json", filepath.Join(testdata, "valid", "loops.lua"))
	if err != nil {
		t.Fatal(err)
	}
	var toks []diagfmt.TokenOutput
	if err := json.Unmarshal([]byte(out), &toks); err != nil {
		t.Fatal(err)
	}
	if len(toks) == 0 || toks[len(toks)-1].Kind != "EOF" {
		t.Fatal("json token stream must end with EOF")
	}
}

func TestParseCommandFile(t *testing.T) {
	out, stderr, err := runCLI(t, "parse", filepath.Join(testdata, "valid", "class.lua"))
	if err != nil {
		t.Fatal(err)
	}
	if stderr != "" {
		t.Fatalf("unexpected diagnostics:\n%s", stderr)
	}
	for _, want := range []string{"Chunk (", "FunctionStat", "ReturnStat"} {
		if !strings.Contains(out, want) {
			t.Fatalf("tree lacks %q", want)
		}
	}
}

func TestParseCommandDirJSON(t *testing.T) {
	out, _, err := runCLI(t, "parse", "--format", "json", "--jobs", "2", filepath.Join(testdata, "valid"))
	if err != nil {
		t.Fatal(err)
	}
	var trees map[string]*diagfmt.TreeNodeOutput
	if err := json.Unmarshal([]byte(out), &trees); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"class.lua", "loops.lua"} {
		node, ok := trees[name]
		if !ok || node == nil || node.Kind != "Chunk" {
			t.Fatalf("missing tree for %s: %v", name, trees)
		}
	}
}

func TestParseReportsDiagnosticsButSucceeds(t *testing.T) {
	out, stderr, err := runCLI(t, "parse", "--format", "tree", filepath.Join(testdata, "malformed", "missing_end.lua"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "SYN") {
		t.Fatalf("diagnostics not printed:\n%s", stderr)
	}
	if !strings.Contains(out, "<missing>") {
		t.Fatalf("missing tokens not shown:\n%s", out)
	}
}

func TestDiagCleanDirectory(t *testing.T) {
	out, _, err := runCLI(t, "diag", filepath.Join(testdata, "valid"))
	if err != nil {
		t.Fatalf("err = %v\n%s", err, out)
	}
	if out != "" {
		t.Fatalf("expected no output, got:\n%s", out)
	}
}

func TestDiagShortFormat(t *testing.T) {
	out, _, err := runCLI(t, "diag", "--format", "short", filepath.Join(testdata, "malformed", "missing_end.lua"))
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v, want errDiagnostics", err)
	}
	if !strings.Contains(out, "ERROR SYN2002") || !strings.Contains(out, "missing_end.lua:") {
		t.Fatalf("unexpected short output:\n%s", out)
	}
}

func TestDiagJSONDirectory(t *testing.T) {
	out, _, err := runCLI(t, "diag", "--format", "json", filepath.Join(testdata, "malformed"))
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v", err)
	}
	var payload diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if payload.Count == 0 {
		t.Fatal("no diagnostics in json output")
	}
	seen := map[string]bool{}
	for _, d := range payload.Diagnostics {
		seen[filepath.Base(d.Location.File)] = true
	}
	for _, name := range []string{"bad_tokens.lua", "missing_end.lua", "stray.lua"} {
		if !seen[name] {
			t.Errorf("no diagnostics for %s", name)
		}
	}
}

func TestDiagCacheIsTransparent(t *testing.T) {
	dir := writeTemp(t, map[string]string{"a.lua": "while x do\n", "b.lua": "return 1\n"})
	cacheDir := filepath.Join(t.TempDir(), "cache")

	first, _, err := runCLI(t, "diag", "--format", "short", "--cache", "--cache-dir", cacheDir, dir)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(cacheDir, "diags"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("cache not populated: %v", err)
	}
	second, _, err := runCLI(t, "diag", "--format", "short", "--cache", "--cache-dir", cacheDir, dir)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v", err)
	}
	if first != second {
		t.Fatalf("cached output differs:\n%s\nvs\n%s", first, second)
	}
}

func TestDiagModeAndVersionFlags(t *testing.T) {
	script := filepath.Join(testdata, "script", "script.lua")
	if out, _, err := runCLI(t, "diag", script); err != nil {
		t.Fatalf("files default to script mode: %v\n%s", err, out)
	}
	if _, _, err := runCLI(t, "--mode", "chunk", "diag", script); !errors.Is(err, errDiagnostics) {
		t.Fatalf("shebang in chunk mode must fail, err = %v", err)
	}

	dir := writeTemp(t, map[string]string{"shift.lua": "x = 1 << 2\n"})
	if _, _, err := runCLI(t, "diag", dir); err != nil {
		t.Fatalf("5.4 accepts shifts: %v", err)
	}
	out, _, err := runCLI(t, "--lua", "5.2", "diag", "--format", "short", dir)
	if !errors.Is(err, errDiagnostics) || !strings.Contains(out, "SYN") {
		t.Fatalf("5.2 must reject shifts: %v\n%s", err, out)
	}
	if _, _, err := runCLI(t, "--lua", "6.0", "diag", dir); err == nil || errors.Is(err, errDiagnostics) {
		t.Fatalf("bad version must be a usage error, got %v", err)
	}
}

func TestDiagUsesLunarToml(t *testing.T) {
	dir := writeTemp(t, map[string]string{
		project.ConfigFileName: "[parse]\nmode = \"script\"\n\n[files]\ninclude = [\"src/**/*.lua\"]\n",
		"src/main.lua":         "#!/usr/bin/env lua\nprint(1)\n",
		"other/skip.lua":       "if then",
	})
	out, _, err := runCLI(t, "diag", dir)
	if err != nil {
		t.Fatalf("err = %v\n%s", err, out)
	}
}

func TestDiagNoWarnings(t *testing.T) {
	dir := writeTemp(t, map[string]string{"a.lua": "return 1\n"})
	out, _, err := runCLI(t, "diag", "--no-warnings", "--format", "json", dir)
	if err != nil {
		t.Fatal(err)
	}
	var payload diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil || payload.Count != 0 {
		t.Fatalf("payload=%+v err=%v", payload, err)
	}
}

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	out, _, err := runCLI(t, "init", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, project.ConfigFileName) {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := project.LoadConfig(filepath.Join(dir, project.ConfigFileName)); err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if _, _, err := runCLI(t, "init", dir); err == nil {
		t.Fatal("second init must refuse to overwrite")
	}
	if _, _, err := runCLI(t, "init", "--force", dir); err != nil {
		t.Fatalf("--force: %v", err)
	}
}

func TestTimingsAndTrace(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "trace.ndjson")
	_, stderr, err := runCLI(t, "--timings", "--trace", tracePath, "--trace-level", "detail",
		"parse", filepath.Join(testdata, "valid"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "timings:") || !strings.Contains(stderr, "parse") {
		t.Fatalf("timings not printed:\n%s", stderr)
	}
	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"parse-dir"`)) {
		t.Fatalf("trace lacks the driver span:\n%s", data)
	}
}

func TestTraceFlushedOnDiagnostics(t *testing.T) {
	dir := writeTemp(t, map[string]string{"bad.lua": "local = 1\n"})
	tracePath := filepath.Join(t.TempDir(), "trace.ndjson")
	_, _, err := runCLI(t, "--trace", tracePath, "--trace-level", "detail", "diag", dir)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("expected errDiagnostics, got %v", err)
	}
	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"parse-dir"`)) {
		t.Fatalf("trace not flushed after failing command:\n%s", data)
	}
}

func TestTraceDumpFailedOnly(t *testing.T) {
	dir := writeTemp(t, map[string]string{
		"good.lua": "return 1\n",
		"bad.lua":  "if x then\n",
	})
	tracePath := filepath.Join(t.TempDir(), "trace.ndjson")
	_, _, err := runCLI(t, "--trace", tracePath, "--trace-level", "debug", "--trace-mode", "ring",
		"--trace-dump", "failed", "diag", dir)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("expected errDiagnostics, got %v", err)
	}
	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("bad.lua")) || !bytes.Contains(data, []byte(`"parse-dir"`)) {
		t.Fatalf("failure dump lacks the failed file:\n%s", data)
	}
	if bytes.Contains(data, []byte("good.lua")) {
		t.Fatalf("failure dump includes a clean file:\n%s", data)
	}
}

func TestMemProfileFlag(t *testing.T) {
	memPath := filepath.Join(t.TempDir(), "mem.pprof")
	if _, _, err := runCLI(t, "--mem-profile", memPath, "parse", filepath.Join(testdata, "valid", "class.lua")); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(memPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("heap profile is empty")
	}
}

func TestBadFlagValues(t *testing.T) {
	file := filepath.Join(testdata, "valid", "class.lua")
	cases := [][]string{
		{"--color", "purple", "parse", file},
		{"parse", "--format", "xml", file},
		{"diag", "--ui", "maybe", file},
		{"--trace-level", "loud", "parse", file},
		{"--trace-level", "debug", "--trace-dump", "sideways", "parse", file},
		{"parse", filepath.Join(testdata, "does-not-exist.lua")},
	}
	for _, args := range cases {
		if _, _, err := runCLI(t, args...); err == nil || errors.Is(err, errDiagnostics) {
			t.Errorf("%v: expected a usage error, got %v", args, err)
		}
	}
}
