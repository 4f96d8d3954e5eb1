package lexer

import (
	"errors"
	"strconv"

	"lunar/internal/diag"
	"lunar/internal/dialect"
	"lunar/internal/token"
)

// scanNumber повторяет жадный цикл Lua: цифры (включая hex), точки и экспоненты
// с необязательным знаком. Хвост из букв/цифр/'_' тоже съедается, чтобы
// "12abc" или "0xg" стали одним токеном с ошибкой, а не двумя.
// Неверные формы: Kind=IntLit без Value и диагностика LexBadNumber.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	expLo, expHi := byte('e'), byte('E')
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' && (b1 == 'x' || b1 == 'X') {
		lx.cursor.Bump()
		lx.cursor.Bump()
		expLo, expHi = 'p', 'P'
	}

	for {
		b := lx.cursor.Peek()
		if b == expLo || b == expHi {
			lx.cursor.Bump()
			if s := lx.cursor.Peek(); s == '+' || s == '-' {
				lx.cursor.Bump()
			}
			continue
		}
		if isHex(b) || b == '.' {
			lx.cursor.Bump()
			continue
		}
		break
	}
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}

	tok := lx.makeToken(token.IntLit, start)
	kind, val, msg := convertNumber(tok.Text, lx.opts.Version)
	if msg != "" {
		lx.errLex(diag.LexBadNumber, tok.Span, msg)
		return tok
	}
	if kind == token.FloatLit && isHexText(tok.Text) {
		lx.requireFeature(dialect.FeatureHexFloat, diag.LexBadNumber, tok.Span)
	}
	tok.Kind = kind
	tok.Value = val
	return tok
}

func isHexText(s string) bool {
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// convertNumber решает Int vs Float и вычисляет значение.
//   - десятичное целое, не влезающее в int64, становится float;
//   - шестнадцатеричное целое берётся по модулю 2^64;
//   - до Lua 5.3 любое число — float.
//
// Непустой msg означает ошибку формата.
func convertNumber(text string, v dialect.Version) (kind token.Kind, val token.Value, msg string) {
	ints := v.Has(dialect.FeatureIntegers)
	if isHexText(text) {
		mant, exp, isFloat, ok := splitHex(text[2:])
		if !ok {
			return token.IntLit, token.Value{}, "malformed number near '" + text + "'"
		}
		if !isFloat {
			var u uint64
			for i := 0; i < len(mant); i++ {
				u = u<<4 | hexValue(mant[i])
			}
			if !ints {
				return token.FloatLit, token.FloatValue(float64(u)), ""
			}
			return token.IntLit, token.IntValue(int64(u)), ""
		}
		if exp == "" {
			exp = "0"
		}
		f, err := strconv.ParseFloat("0x"+mant+"p"+exp, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return token.IntLit, token.Value{}, "malformed number near '" + text + "'"
		}
		return token.FloatLit, token.FloatValue(f), ""
	}

	isFloat, ok := checkDecimal(text)
	if !ok {
		return token.IntLit, token.Value{}, "malformed number near '" + text + "'"
	}
	if !isFloat && ints {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return token.IntLit, token.IntValue(n), ""
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return token.IntLit, token.Value{}, "malformed number near '" + text + "'"
	}
	return token.FloatLit, token.FloatValue(f), ""
}

// checkDecimal: digits [ '.' digits ] [ (e|E) [+-] digits ], минимум одна цифра мантиссы.
func checkDecimal(s string) (isFloat, ok bool) {
	i, digits := 0, 0
	for i < len(s) && isDec(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		isFloat = true
		i++
		for i < len(s) && isDec(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false, false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		isFloat = true
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigits := 0
		for i < len(s) && isDec(s[i]) {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return false, false
		}
	}
	return isFloat, i == len(s)
}

// splitHex разбирает часть после "0x": hexdigits [ '.' hexdigits ] [ (p|P) [+-] digits ].
// mant возвращается с точкой, exp — со знаком.
func splitHex(s string) (mant, exp string, isFloat, ok bool) {
	i, digits := 0, 0
	for i < len(s) && isHex(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		isFloat = true
		i++
		for i < len(s) && isHex(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return "", "", false, false
	}
	mant = s[:i]
	if i < len(s) && (s[i] == 'p' || s[i] == 'P') {
		isFloat = true
		i++
		expStart := i
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigits := 0
		for i < len(s) && isDec(s[i]) {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return "", "", false, false
		}
		exp = s[expStart:i]
	}
	return mant, exp, isFloat, i == len(s)
}
