package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lunar/internal/trace"
)

// setupTracing inspects trace-related flags, attaches the tracer and the
// in-flight file set to the command context, and returns a cleanup that
// stops the heartbeat, dumps the ring buffer and closes the output.
func setupTracing(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()

	traceOutput, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	dumpStr, err := flags.GetString("trace-dump")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-dump flag: %w", err)
	}
	heartbeatInterval, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	// --trace без уровня подразумевает phase
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(ctx, trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	onlyFailed, err := readTraceDump(dumpStr)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	inflight := trace.NewInflight()
	ctx = trace.WithTracer(ctx, tracer)
	ctx = trace.WithInflight(ctx, inflight)
	cmd.SetContext(ctx)

	heartbeat := trace.StartHeartbeat(tracer, heartbeatInterval, inflight)

	cleanup := func() {
		heartbeat.Stop()
		// кольцевой буфер сам ничего не пишет: сбрасываем его в конце команды
		if ring, ok := ringOf(tracer); ok {
			if err := dumpRing(ring, traceOutput, trace.ResolveFormat(format, traceOutput), onlyFailed); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

func ringOf(t trace.Tracer) (*trace.RingTracer, bool) {
	switch t := t.(type) {
	case *trace.RingTracer:
		return t, true
	case *trace.MultiTracer:
		return t.Ring()
	}
	return nil, false
}

// readTraceDump parses --trace-dump: "all" or "failed".
func readTraceDump(value string) (onlyFailed bool, err error) {
	switch value {
	case "", "all":
		return false, nil
	case "failed":
		return true, nil
	default:
		return false, fmt.Errorf("invalid --trace-dump value %q (expected all|failed)", value)
	}
}

func dumpRing(ring *trace.RingTracer, path string, format trace.Format, onlyFailed bool) error {
	var w io.Writer = os.Stderr
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if onlyFailed {
		return ring.DumpFailed(w, format)
	}
	return ring.Dump(w, format)
}
