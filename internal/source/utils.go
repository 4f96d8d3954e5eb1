package source

import (
	"bytes"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func hasBOM(content []byte) bool {
	return bytes.HasPrefix(content, utf8BOM)
}

func hasCRLF(content []byte) bool {
	return bytes.Contains(content, []byte("\r\n"))
}

// buildLineIndex записывает смещение последнего байта каждого перевода строки.
// Lua считает переводами строк "\n", "\r", "\r\n" и "\n\r"; пара даёт одну запись.
func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32+1)
	for i := 0; i < len(content); i++ {
		b := content[i]
		if b != '\n' && b != '\r' {
			continue
		}
		if i+1 < len(content) {
			next := content[i+1]
			if (next == '\n' || next == '\r') && next != b {
				i++
			}
		}
		out = append(out, uint32(i))
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// Если LineIdx пустой, то весь файл - одна строка
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// бинпоиск: количество переводов строк, закончившихся строго до off
	lo, hi := 0, len(lineIdx)
	for lo < hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	line := lo // индекс строки (0-based)

	var startOff uint32
	if line > 0 {
		startOff = lineIdx[line-1] + 1
	}
	return LineCol{Line: uint32(line + 1), Col: off - startOff + 1}
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}

// AbsolutePath returns the cleaned absolute form of p.
func AbsolutePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return normalizePath(abs), nil
}

// RelativePath returns p relative to baseDir, or the absolute path when p lies outside baseDir.
func RelativePath(p, baseDir string) (string, error) {
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return "", err
	}
	if rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
		return normalizePath(absPath), nil
	}
	return normalizePath(rel), nil
}

// BaseName returns the last element of p.
func BaseName(p string) string {
	return filepath.Base(p)
}
