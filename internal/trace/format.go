package trace

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // choose by output file extension
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a CLI value to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// ResolveFormat turns FormatAuto into NDJSON for *.ndjson / *.jsonl paths
// and text otherwise.
func ResolveFormat(f Format, path string) Format {
	if f != FormatAuto {
		return f
	}
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	GID      uint64            `json:"gid,omitempty"`
	Name     string            `json:"name"`
	File     string            `json:"file,omitempty"`
	Offset   *uint32           `json:"offset,omitempty"`
	Tokens   int               `json:"tokens,omitempty"`
	Diags    int               `json:"diags,omitempty"`
	Errors   int               `json:"errors,omitempty"`
	Failed   bool              `json:"failed,omitempty"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	j := jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		Name:     ev.Name,
		File:     ev.File,
		Tokens:   ev.Tokens,
		Diags:    ev.Diags,
		Errors:   ev.Errors,
		Failed:   ev.Failed(),
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	}
	// смещение 0 осмысленно, поэтому указатель, а не omitempty по значению
	if ev.Kind == KindRecovery {
		off := ev.Offset
		j.Offset = &off
	}
	data, err := json.Marshal(j)
	if err != nil {
		return []byte("{}\n")
	}
	return append(data, '\n')
}

var kindMarks = [...]string{
	KindSpanBegin: "→",
	KindSpanEnd:   "←",
	KindRecovery:  "•",
	KindNote:      "·",
	KindHeartbeat: "♡",
}

// formatText: "#seq [scope] mark name file@off (detail) tokens=.. diags=.. {k=v}".
func formatText(ev *Event) []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "#%06d [%s] ", ev.Seq, ev.Scope)
	if ev.ParentID > 0 {
		sb.WriteString("  ")
	}
	if int(ev.Kind) < len(kindMarks) && kindMarks[ev.Kind] != "" {
		sb.WriteString(kindMarks[ev.Kind])
		sb.WriteString(" ")
	}
	sb.WriteString(ev.Name)

	if ev.File != "" {
		sb.WriteString(" ")
		sb.WriteString(ev.File)
		if ev.Kind == KindRecovery {
			sb.WriteString("@")
			sb.WriteString(strconv.FormatUint(uint64(ev.Offset), 10))
		}
	}
	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteString(")")
	}
	if ev.Kind == KindSpanEnd && (ev.Tokens > 0 || ev.Diags > 0) {
		fmt.Fprintf(&sb, " tokens=%d diags=%d errors=%d", ev.Tokens, ev.Diags, ev.Errors)
	}

	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(ev.Extra[k])
		}
		sb.WriteString("}")
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}
