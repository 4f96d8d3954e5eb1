package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// setupColor применяет --color к глобальному состоянию fatih/color,
// которым пользуется баннер версии.
func setupColor(cmd *cobra.Command) error {
	mode, err := colorMode(cmd)
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
	return nil
}

func colorMode(cmd *cobra.Command) (string, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return "", fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode := strings.ToLower(strings.TrimSpace(value)); mode {
	case "", "auto":
		return "auto", nil
	case "on", "off":
		return mode, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// useColor решает, раскрашивать ли вывод в w.
func useColor(cmd *cobra.Command, w io.Writer) bool {
	mode, err := colorMode(cmd)
	if err != nil {
		return false
	}
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
