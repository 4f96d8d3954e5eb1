// Package fuzztests houses Go fuzz harnesses that exercise the lunar front
// end (source -> lexer -> parser). Its goal is to smoke test robustness and
// guard against panics, hangs, or broken tree invariants on arbitrary inputs.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet,
// прогоняют их через лексер/парсер и проверяют testkit.CheckTree.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/parser, internal/diag,
// internal/testkit.
package fuzztests
