// Package diag defines the core diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the lexer and the parser.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//   - Model fix suggestions as structured edits that the driver or CLI can
//     materialise and optionally apply.
//
// # Scope
//
// Package diag does not perform any formatting, IO, CLI integration, or
// interactive behaviour. Rendering responsibilities live in internal/diagfmt,
// whereas orchestration lives in the driver layer.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – Info, Warning, Error or Fatal (severity.go). Fatal marks input
//     that was skipped rather than analysed.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//   - Fixes – optional Fix records describing how to address the problem.
//
// Notes should be used sparingly: each note must add new context (e.g. “value
// declared here”) rather than repeating the diagnostic message.
//
// # Fix suggestions
//
// Fix represents a possible automated correction: a Title and a list of
// text edits (Span + NewText). The parser attaches insertion fixes to
// diagnostics about missing tokens ("insert 'end'").
//
// # Emitting diagnostics
//
// Phases should use a diag.Reporter to decouple emission from storage. The
// parser, for example, constructs a ReportBuilder via NewReportBuilder (or the
// helper functions ReportError/ReportWarning/ReportInfo) and chains WithNote /
// WithFixSuggestion before calling Emit.
//
// When no additional metadata is needed, phases may call Reporter.Report(...)
// directly. diag.BagReporter aggregates diagnostics into a Bag, which sorts by
// position (stable) and deduplicates by code, span and message. MultiReporter
// fans out to several sinks; DedupReporter drops repeats before forwarding.
//
// # Consumers
//
//   - internal/token, internal/ast: diagnostics are attached to the token or
//     node that owns them, in addition to the flat list on the tree.
//   - internal/diagfmt: renders Diagnostics into pretty/json/short formats.
//   - internal/driver: coordinates bag collection per file, caches them on
//     disk and transports diagnostic data to CLI commands.
//
// Keep the data model deterministic: any new fields should honour the package’s
// layering constraints and avoid side effects, so the CLI and future tooling can
// safely serialise diagnostics for caching and testing.
package diag
