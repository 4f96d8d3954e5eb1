package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
)

// languageSeeds покрывают каждую ветку грамматики хотя бы раз, плюс
// типичные обрывы ввода.
var languageSeeds = []string{
	"",
	"return",
	"local x <const>, y <close> = 1, nil",
	"local function f(a, b, ...) return a + b, ... end",
	"function t.a.b:c(x) self.x = x end",
	"for i = 1, 10, 2 do print(i) end",
	"for k, v in pairs(t) do goto continue ::continue:: end",
	"while x do x = x - 1 end repeat local y = 1 until y",
	"if a then b() elseif c then d() else e() end",
	"do local t = {1, 2; x = 3, [4] = 5,} end",
	"x = a and b or not c == d ~= e <= f >= g < h > i",
	"x = a | b ~ c & d << e >> f .. g + h - i * j / k // l % m ^ n",
	"x = -#~y",
	"f{1} f'x' f[[y]] obj:m() obj:n'z' obj:o{}",
	"s = 'a\\tb\\x41\\u{48}\\z\n   c\\065\\\n'",
	"s = [==[\nlong ]] string]==]",
	"--[[ block\ncomment ]] -- line\n",
	"n = 0x1p4 + 3e-2 + 0xA.8 + 9223372036854775808 + 0xffffffffffffffffff",
	"#!/usr/bin/env lua\nprint(1)",
	"\xef\xbb\xbfreturn 1",
	"a.b.c = 1\r\nd = 2\n\r",
	// обрывы
	"if x then",
	"function f(",
	"x = {",
	"s = 'unterminated",
	"--[[ unterminated",
	"x = [==[ open",
	"local function",
	"for i = 1",
	"return return",
	"x = ((((((((((1",
	"::",
	"goto",
	"@ $ ` !",
}

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.lua файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".lua" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
