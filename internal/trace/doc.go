// Package trace records what lunar does while it loads and parses files.
//
// Tracing is off unless the CLI gets --trace:
//
//	lunar diag --trace=- --trace-level=detail ./scripts
//
// Events are about parse work: run-wide spans (one CLI command), per-file
// spans that end with token and diagnostic counts, and parser recovery
// steps (missing token, resync, depth limit, cancellation) with the file
// and byte offset where they happened.
//
// Levels:
//
//   - error: only failures (file spans that ended with errors, fatal recoveries)
//   - phase: run spans plus failures and heartbeats
//   - detail: adds every file span
//   - debug: adds every recovery step
//
// Tracers: StreamTracer writes each event at once, RingTracer keeps the
// last N in memory and can dump only the files that failed, MultiTracer
// fans out. A Heartbeat names the files that are still being parsed.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "lex+parse", path, 0)
//	defer span.End("")
package trace
