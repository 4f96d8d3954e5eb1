package parser

import (
	"lunar/internal/dialect"
	"lunar/internal/token"
)

// Приоритеты бинарных операторов: пара (левый, правый).
// Чем больше число, тем сильнее связывание. Правоассоциативные
// операторы ('..' и '^') имеют правый приоритет меньше левого.
type binaryPrec struct {
	left, right int
}

const (
	precOr         = 1 // or
	precAnd        = 2 // and
	precComparison = 3 // < > <= >= ~= ==
	precBitOr      = 4 // |
	precBitXor     = 5 // ~
	precBitAnd     = 6 // &
	precShift      = 7 // << >>
	precConcat     = 9 // .. (правая ассоциативность: 9/8)
	precAdditive   = 10
	precMultiply   = 11
	// precUnary — приоритет not, -, #, ~ в позиции префикса.
	precUnary = 12
	precPow   = 14 // ^ (правая ассоциативность: 14/13)
)

// binaryPrecOf возвращает приоритет бинарного оператора; ok=false, если
// токен не является бинарным оператором.
func binaryPrecOf(kind token.Kind) (binaryPrec, bool) {
	switch kind {
	case token.KwOr:
		return binaryPrec{precOr, precOr}, true
	case token.KwAnd:
		return binaryPrec{precAnd, precAnd}, true

	case token.Lt, token.Gt, token.LtEq, token.GtEq, token.TildeEq, token.EqEq:
		return binaryPrec{precComparison, precComparison}, true

	case token.Pipe:
		return binaryPrec{precBitOr, precBitOr}, true
	case token.Tilde:
		return binaryPrec{precBitXor, precBitXor}, true
	case token.Amp:
		return binaryPrec{precBitAnd, precBitAnd}, true
	case token.Shl, token.Shr:
		return binaryPrec{precShift, precShift}, true

	case token.DotDot:
		return binaryPrec{precConcat, precConcat - 1}, true

	case token.Plus, token.Minus:
		return binaryPrec{precAdditive, precAdditive}, true
	case token.Star, token.Slash, token.SlashSlash, token.Percent:
		return binaryPrec{precMultiply, precMultiply}, true

	case token.Caret:
		return binaryPrec{precPow, precPow - 1}, true

	default:
		return binaryPrec{}, false
	}
}

// isUnaryOp reports whether kind is a prefix operator.
func isUnaryOp(kind token.Kind) bool {
	switch kind {
	case token.KwNot, token.Minus, token.Hash, token.Tilde:
		return true
	default:
		return false
	}
}

// binaryFeature возвращает фичу языка, без которой оператор недоступен.
func binaryFeature(kind token.Kind) (dialect.Feature, bool) {
	switch kind {
	case token.Pipe, token.Tilde, token.Amp, token.Shl, token.Shr:
		return dialect.FeatureBitwise, true
	case token.SlashSlash:
		return dialect.FeatureFloorDiv, true
	default:
		return 0, false
	}
}

// unaryFeature — то же для префиксных операторов: только '~'.
func unaryFeature(kind token.Kind) (dialect.Feature, bool) {
	if kind == token.Tilde {
		return dialect.FeatureBitwise, true
	}
	return 0, false
}
