package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lunar/internal/version"
)

// errDiagnostics сигнализирует, что в файлах найдены ошибки: выход с кодом 1
// без дополнительного сообщения.
var errDiagnostics = errors.New("errors found")

// newRootCmd собирает дерево команд. Конструктор вместо глобальных переменных,
// чтобы тесты получали свежие флаги на каждый запуск. finish закрывает trace и
// профили; cobra не вызывает post-run хуки, если команда вернула ошибку, поэтому
// его зовёт вызывающий после Execute.
func newRootCmd() (rootCmd *cobra.Command, finish func()) {
	var cleanupTrace, cleanupProf func()
	finish = func() {
		if cleanupProf != nil {
			cleanupProf()
			cleanupProf = nil
		}
		if cleanupTrace != nil {
			cleanupTrace()
			cleanupTrace = nil
		}
	}

	rootCmd = &cobra.Command{
		Use:           "lunar",
		Short:         "Lossless Lua parser and diagnostics",
		Long:          `lunar parses Lua 5.1-5.4 sources into lossless syntax trees and reports lexical and syntax diagnostics`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupColor(cmd); err != nil {
				return err
			}
			cleanup, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			cleanupTrace = cleanup
			if cleanupProf, err = setupProfiling(cmd); err != nil {
				cleanup()
				return err
			}
			return nil
		},
	}

	// Добавляем команды
	rootCmd.AddCommand(newTokenizeCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newDiagCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics per file (0 = unlimited)")
	flags.String("lua", "", "Lua version (5.1|5.2|5.3|5.4); overrides lunar.toml")
	flags.String("mode", "", "parse mode (chunk|script); overrides lunar.toml")
	flags.Int("max-depth", 0, "nesting limit; overrides lunar.toml when > 0")

	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "ring buffer capacity for --trace-mode ring|both")
	flags.String("trace-dump", "all", "ring dump contents at exit (all|failed)")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 = off)")

	flags.String("cpu-profile", "", "write CPU profile to file")
	flags.String("mem-profile", "", "write heap profile to file on exit")
	flags.String("runtime-trace", "", "write Go runtime trace to file")

	return rootCmd, finish
}

// main builds the CLI and executes it. Diagnostics with errors exit with
// status 1; any other failure prints the error and exits with status 2.
func main() {
	rootCmd, finish := newRootCmd()
	err := rootCmd.Execute()
	finish()
	if err != nil {
		if errors.Is(err, errDiagnostics) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "lunar: %v\n", err)
		os.Exit(2)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
