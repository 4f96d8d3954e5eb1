package token

import (
	"math"
	"strconv"
)

// ValueKind tells which field of Value is meaningful.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueFloat
	ValueString
)

// Value is the interpreted payload of a literal token.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Str   []byte
}

func IntValue(v int64) Value     { return Value{Kind: ValueInt, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: ValueFloat, Float: v} }
func StringValue(b []byte) Value { return Value{Kind: ValueString, Str: b} }

// IsZero reports whether no value was decoded.
func (v Value) IsZero() bool { return v.Kind == ValueNone }

func (v Value) String() string {
	switch v.Kind {
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		switch {
		case math.IsInf(v.Float, 1):
			return "inf"
		case math.IsInf(v.Float, -1):
			return "-inf"
		case math.IsNaN(v.Float):
			return "nan"
		}
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValueString:
		return strconv.Quote(string(v.Str))
	default:
		return ""
	}
}
