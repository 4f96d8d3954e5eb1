package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lunar/internal/ast"
	"lunar/internal/diag"
	"lunar/internal/diagfmt"
	"lunar/internal/driver"
	"lunar/internal/source"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] <file.lua|directory>",
		Short: "Parse a Lua file or directory and print the syntax tree",
		Long: `Parse builds the lossless syntax tree of a Lua file, or of every file a
directory selects through lunar.toml, and prints it`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|tree)")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	target := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "tree":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	dir, err := isDir(target)
	if err != nil {
		return err
	}
	opts, err := loadRunOptions(cmd, target)
	if err != nil {
		return err
	}
	opts.driver.Jobs = jobs
	defer opts.printTimings(cmd)

	out := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	if !dir {
		result, err := driver.Parse(cmd.Context(), target, opts.driver)
		if err != nil {
			return fmt.Errorf("parsing failed: %w", err)
		}
		if result.Bag.Len() > 0 && !opts.quiet {
			diagfmt.Pretty(stderr, result.Bag, result.FileSet, prettyOpts(cmd, stderr))
		}
		if format == "json" {
			return diagfmt.FormatTreeJSON(out, result.Tree, result.FileSet)
		}
		return writeTree(out, result.Tree, result.FileSet, format)
	}

	fs, results, err := driver.ParseDir(cmd.Context(), target, opts.driver)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}

	// Обрабатываем результаты (они уже отсортированы)
	if !opts.quiet {
		all := diag.NewBag(0)
		for _, r := range results {
			all.Merge(r.Bag)
		}
		if all.Len() > 0 {
			diagfmt.Pretty(stderr, all, fs, prettyOpts(cmd, stderr))
		}
	}

	switch format {
	case "json":
		output := make(map[string]*diagfmt.TreeNodeOutput, len(results))
		for _, r := range results {
			name := displayPath(r.Path, fs.BaseDir())
			if r.Tree == nil {
				output[name] = nil
				continue
			}
			output[name] = diagfmt.BuildTreeOutput(r.Tree, fs)
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	default:
		for idx, r := range results {
			if !opts.quiet {
				if _, err := fmt.Fprintf(out, "== %s ==\n", displayPath(r.Path, fs.BaseDir())); err != nil {
					return err
				}
			}
			if r.Tree != nil {
				if err := writeTree(out, r.Tree, fs, format); err != nil {
					return err
				}
			}
			if !opts.quiet && idx < len(results)-1 {
				if _, err := fmt.Fprintln(out); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// writeTree: pretty — только узлы и токены, tree — ещё trivia и диагностики.
func writeTree(w io.Writer, tree *ast.Tree, fs *source.FileSet, format string) error {
	full := format == "tree"
	return diagfmt.FormatTree(w, tree, fs, diagfmt.TreeOpts{Trivia: full, Diags: full})
}
