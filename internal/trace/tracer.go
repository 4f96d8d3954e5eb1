package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives trace events. Implementations must be goroutine-safe:
// files of a directory are parsed in parallel.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// StorageMode determines how events are stored.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // write at once
	ModeRing                          // keep the last N in memory
	ModeBoth
)

var modeNames = [...]string{ModeStream: "stream", ModeRing: "ring", ModeBoth: "both"}

func (m StorageMode) String() string {
	if int(m) < len(modeNames) && modeNames[m] != "" {
		return modeNames[m]
	}
	return "unknown"
}

func ParseMode(s string) (StorageMode, error) {
	for m, name := range modeNames {
		if name != "" && strings.EqualFold(s, name) {
			return StorageMode(m), nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config holds tracer configuration.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format    // FormatAuto: see ResolveFormat
	Output     io.Writer // stream target; nil means OutputPath
	OutputPath string    // file path, "-" or "" for stderr
	RingSize   int       // default 4096
}

// New builds the tracer for cfg; LevelOff gives Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	var tracers []Tracer
	if cfg.Mode == ModeStream || cfg.Mode == ModeBoth {
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		tracers = append(tracers, NewStreamTracer(w, cfg.Level, ResolveFormat(cfg.Format, cfg.OutputPath)))
	}
	if cfg.Mode == ModeRing || cfg.Mode == ModeBoth {
		tracers = append(tracers, NewRingTracer(cfg.RingSize, cfg.Level))
	}
	switch len(tracers) {
	case 0:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	case 1:
		return tracers[0], nil
	default:
		return NewMultiTracer(cfg.Level, tracers...), nil
	}
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop drops everything; used when tracing is disabled.
var Nop Tracer = nopTracer{}
