package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lunar/internal/diagfmt"
	"lunar/internal/driver"
)

func newTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [flags] file.lua",
		Short: "Tokenize a Lua source file",
		Long:  `Tokenize breaks a Lua source file into tokens with their leading and trailing trivia`,
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenize,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runTokenize(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	opts, err := loadRunOptions(cmd, filePath)
	if err != nil {
		return err
	}

	result, err := driver.Tokenize(filePath, opts.driver)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	defer opts.printTimings(cmd)

	// Выводим диагностику в stderr, если есть
	if result.Bag.Len() > 0 && !opts.quiet {
		stderr := cmd.ErrOrStderr()
		diagfmt.Pretty(stderr, result.Bag, result.FileSet, prettyOpts(cmd, stderr))
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return diagfmt.FormatTokensJSON(out, result.Tokens)
	}
	return diagfmt.FormatTokensPretty(out, result.Tokens, result.FileSet)
}
