package diag

import (
	"lunar/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type FixEdit struct {
	Span    source.Span
	NewText string
}

type Fix struct {
	Title string
	Edits []FixEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// IsError reports whether the diagnostic is an error or fatal.
func (d *Diagnostic) IsError() bool { return d.Severity >= SevError }

func (d *Diagnostic) String() string {
	return d.Severity.String() + " " + d.Code.ID() + " " + d.Primary.String() + ": " + d.Message
}
