package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		CPU:   filepath.Join(dir, "cpu.pprof"),
		Mem:   filepath.Join(dir, "mem.pprof"),
		Trace: filepath.Join(dir, "trace.out"),
	}
	if !cfg.Enabled() {
		t.Fatal("config with paths must be enabled")
	}
	s, err := Start(cfg)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	for _, p := range []string{cfg.CPU, cfg.Mem, cfg.Trace} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", p)
		}
	}
}

func TestSessionBadPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no", "such", "cpu.pprof")
	if _, err := Start(Config{CPU: missing}); err == nil {
		t.Fatal("expected error for unwritable cpu profile path")
	}
	// CPU-профиль не должен остаться запущенным после ошибки
	s, err := Start(Config{CPU: filepath.Join(t.TempDir(), "cpu.pprof")})
	if err != nil {
		t.Fatalf("Start after failure: %v", err)
	}
	_ = s.Stop()
}

func TestEmptyConfig(t *testing.T) {
	if (Config{}).Enabled() {
		t.Fatal("empty config must be disabled")
	}
	s, err := Start(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	var nilSession *Session
	if err := nilSession.Stop(); err != nil {
		t.Fatal(err)
	}
}
