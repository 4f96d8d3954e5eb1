package dialect

import "fmt"

// Version selects a Lua grammar variant.
type Version uint8

const (
	// Lua54 is the default: attribs (<const>/<close>) and everything before.
	Lua54 Version = iota
	// Lua53 adds integers, bitwise operators and floor division.
	Lua53
	// Lua52 adds goto/labels, \x, \z escapes and hex floats.
	Lua52
	// Lua51 is the baseline grammar.
	Lua51
)

// Default is used when no version is configured.
const Default = Lua54

func (v Version) String() string {
	switch v {
	case Lua51:
		return "5.1"
	case Lua52:
		return "5.2"
	case Lua53:
		return "5.3"
	case Lua54:
		return "5.4"
	default:
		return "unknown"
	}
}

func (v Version) GoString() string {
	return fmt.Sprintf("Version(%s)", v.String())
}

// ParseVersion accepts "5.1".."5.4", optionally prefixed with "lua".
func ParseVersion(s string) (Version, error) {
	switch s {
	case "5.1", "lua5.1", "51":
		return Lua51, nil
	case "5.2", "lua5.2", "52":
		return Lua52, nil
	case "5.3", "lua5.3", "53":
		return Lua53, nil
	case "5.4", "lua5.4", "54", "":
		return Lua54, nil
	default:
		return Default, fmt.Errorf("unknown Lua version %q (expected 5.1|5.2|5.3|5.4)", s)
	}
}

// rank maps versions to an ordered number; the zero value of Version is 5.4.
func (v Version) rank() int {
	switch v {
	case Lua51:
		return 51
	case Lua52:
		return 52
	case Lua53:
		return 53
	default:
		return 54
	}
}

// AtLeast reports whether v is the same as or newer than other.
func (v Version) AtLeast(other Version) bool {
	return v.rank() >= other.rank()
}

// Feature names a grammar construct introduced by some version.
type Feature uint8

const (
	FeatureGoto Feature = iota + 1
	FeatureIntegers
	FeatureBitwise
	FeatureFloorDiv
	FeatureAttribs
	FeatureHexFloat
	FeatureHexEscape
	FeatureSkipWhitespaceEscape
	FeatureUTF8Escape
)

var featureSince = map[Feature]Version{
	FeatureGoto:                 Lua52,
	FeatureHexFloat:             Lua52,
	FeatureHexEscape:            Lua52,
	FeatureSkipWhitespaceEscape: Lua52,
	FeatureIntegers:             Lua53,
	FeatureBitwise:              Lua53,
	FeatureFloorDiv:             Lua53,
	FeatureUTF8Escape:           Lua53,
	FeatureAttribs:              Lua54,
}

func (f Feature) String() string {
	switch f {
	case FeatureGoto:
		return "goto and labels"
	case FeatureIntegers:
		return "integer subtype"
	case FeatureBitwise:
		return "bitwise operators"
	case FeatureFloorDiv:
		return "floor division"
	case FeatureAttribs:
		return "local attributes"
	case FeatureHexFloat:
		return "hexadecimal floats"
	case FeatureHexEscape:
		return "'\\x' escapes"
	case FeatureSkipWhitespaceEscape:
		return "'\\z' escapes"
	case FeatureUTF8Escape:
		return "'\\u{...}' escapes"
	default:
		return "unknown feature"
	}
}

// Since returns the version that introduced f.
func (f Feature) Since() Version {
	if v, ok := featureSince[f]; ok {
		return v
	}
	return Lua51
}

// Has reports whether version v supports feature f.
func (v Version) Has(f Feature) bool {
	return v.AtLeast(f.Since())
}
