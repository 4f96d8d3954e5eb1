package lexer

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"
)

// ===== Работа с рунами поверх Cursor =====

// peekRune читает текущий байт как руну
func (lx *Lexer) peekRune() (r rune, size int) {
	if lx.cursor.EOF() {
		return utf8.RuneError, 0
	}
	b := lx.cursor.Peek()
	if b < utf8.RuneSelf { // fast-path ASCII
		return rune(b), 1
	}
	r, sz := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:lx.cursor.limit()])
	return r, sz
}

// bumpRune перемещает курсор на размер текущей руны (минимум один байт).
func (lx *Lexer) bumpRune() {
	_, sz := lx.peekRune()
	if sz == 0 {
		return
	}
	usz, err := safecast.Conv[uint32](sz)
	if err != nil {
		panic(fmt.Errorf("bumpRune overflow: %w", err))
	}
	lx.cursor.Off += usz
}

// ===== Классификаторы =====

// Идентификаторы Lua только ASCII: [A-Za-z_][A-Za-z0-9_]*.
func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || (b >= '0' && b <= '9')
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }
func isHex(b byte) bool {
	return (b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'f') ||
		(b >= 'A' && b <= 'F')
}

func hexValue(b byte) uint64 {
	switch {
	case b >= '0' && b <= '9':
		return uint64(b - '0')
	case b >= 'a' && b <= 'f':
		return uint64(b-'a') + 10
	default:
		return uint64(b-'A') + 10
	}
}

// isSpace — горизонтальные пробелы; переводы строк обрабатываются отдельно.
func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v' || b == '\f'
}

// Проверка для кейса ".5": текущая точка, дальше цифра?
func (lx *Lexer) isNumberAfterDot() bool {
	b0, b1, ok := lx.cursor.Peek2()
	return ok && b0 == '.' && isDec(b1)
}

// ===== Матчеры последовательностей операторов (жадность) =====

// try2/try3 пробуют "съесть" 2/3 байта, если совпадает.
func (lx *Lexer) try3(a, b, c byte) bool {
	b0, b1, b2, ok := lx.cursor.Peek3()
	if !ok || b0 != a || b1 != b || b2 != c {
		return false
	}
	lx.cursor.Bump()
	lx.cursor.Bump()
	lx.cursor.Bump()
	return true
}

func (lx *Lexer) try2(a, b byte) bool {
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || b0 != a || b1 != b {
		return false
	}
	lx.cursor.Bump()
	lx.cursor.Bump()
	return true
}

// ===== Длинные скобки =====

// longBracketLevel смотрит на "[" "="* "[" под курсором, ничего не потребляя.
// ok=false, если второй '[' отсутствует; level тогда равен числу '='.
func (lx *Lexer) longBracketLevel() (level int, ok bool) {
	if lx.cursor.Peek() != '[' {
		return 0, false
	}
	n := uint32(1)
	for {
		b, more := lx.cursor.PeekAt(n)
		if !more {
			return int(n - 1), false
		}
		switch b {
		case '=':
			n++
			continue
		case '[':
			return int(n - 1), true
		}
		return int(n - 1), false
	}
}

// readLongBracket потребляет открывающую скобку уровня level, тело и закрывающую скобку.
// Первый перевод строки сразу после открывающей скобки в значение не входит,
// остальные нормализуются в '\n'. Значение собирается только при wantValue.
func (lx *Lexer) readLongBracket(level int, wantValue bool) (value []byte, closed bool) {
	for range level + 2 {
		lx.cursor.Bump()
	}
	lx.cursor.EatNewline()
	if wantValue {
		value = make([]byte, 0, 16)
	}
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case ']':
			if lx.closesLongBracket(level) {
				for range level + 2 {
					lx.cursor.Bump()
				}
				return value, true
			}
			lx.cursor.Bump()
			if wantValue {
				value = append(value, b)
			}
		case '\n', '\r':
			lx.cursor.EatNewline()
			if wantValue {
				value = append(value, '\n')
			}
		default:
			lx.cursor.Bump()
			if wantValue {
				value = append(value, b)
			}
		}
	}
	return value, false
}

func (lx *Lexer) closesLongBracket(level int) bool {
	for i := 1; i <= level; i++ {
		b, ok := lx.cursor.PeekAt(uint32(i))
		if !ok || b != '=' {
			return false
		}
	}
	b, ok := lx.cursor.PeekAt(uint32(level) + 1)
	return ok && b == ']'
}
