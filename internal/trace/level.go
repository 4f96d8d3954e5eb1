package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelPhase
	LevelDetail
	LevelDebug
)

// levels: имя уровня и самый мелкий scope, который он пропускает целиком.
// Сбои (Event.Failed) проходят на любом уровне, кроме off.
var levels = [...]struct {
	name    string
	deepest Scope
}{
	LevelOff:    {"off", 0},
	LevelError:  {"error", 0},
	LevelPhase:  {"phase", ScopeRun},
	LevelDetail: {"detail", ScopeFile},
	LevelDebug:  {"debug", ScopeRecovery},
}

func (l Level) String() string {
	if int(l) < len(levels) {
		return levels[l].name
	}
	return "unknown"
}

// ParseLevel converts a --trace-level value.
func ParseLevel(s string) (Level, error) {
	for l, info := range levels {
		if strings.EqualFold(s, info.name) {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// Allows decides whether ev is recorded at this level.
func (l Level) Allows(ev *Event) bool {
	if l == LevelOff || int(l) >= len(levels) {
		return false
	}
	if ev.Failed() {
		return true
	}
	if ev.Kind == KindHeartbeat {
		return l >= LevelPhase
	}
	return ev.Scope != 0 && ev.Scope <= levels[l].deepest
}
