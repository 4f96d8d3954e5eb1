package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lunar/internal/diagfmt"
	"lunar/internal/driver"
	"lunar/internal/observ"
	"lunar/internal/project"
)

// runOptions — всё, что команды берут из lunar.toml и глобальных флагов.
type runOptions struct {
	driver   driver.Options
	manifest *project.Manifest
	quiet    bool
	timings  bool
}

// loadRunOptions ищет lunar.toml вверх от target и накладывает флаги поверх.
func loadRunOptions(cmd *cobra.Command, target string) (*runOptions, error) {
	flags := cmd.Root().PersistentFlags()

	manifest, _, err := project.Load(target)
	if err != nil {
		return nil, err
	}
	cfg := manifest.Config

	if v, _ := flags.GetString("lua"); v != "" {
		cfg.Parse.Version = v
	}
	if m, _ := flags.GetString("mode"); m != "" {
		cfg.Parse.Mode = m
	}
	if d, _ := flags.GetInt("max-depth"); d > 0 {
		cfg.Parse.MaxDepth = d
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	parserOpts, err := cfg.ParserOptions()
	if err != nil {
		return nil, err
	}
	manifest.Config = cfg

	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	opts := &runOptions{
		driver: driver.Options{
			Parser:         parserOpts,
			MaxDiagnostics: maxDiagnostics,
			Config:         &manifest.Config,
		},
		manifest: manifest,
		quiet:    quiet,
		timings:  timings,
	}
	if timings {
		opts.driver.Timer = observ.NewTimer()
	}
	return opts, nil
}

// printTimings печатает сводку таймера в stderr, если включён --timings.
func (o *runOptions) printTimings(cmd *cobra.Command) {
	if !o.timings || o.driver.Timer == nil {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), o.driver.Timer.Summary())
}

func prettyOpts(cmd *cobra.Command, w io.Writer) diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{
		Color:     useColor(cmd, w),
		Context:   2,
		ShowNotes: true,
	}
}

// isDir reports whether path names a directory.
func isDir(path string) (bool, error) {
	st, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat path: %w", err)
	}
	return st.IsDir(), nil
}

// displayPath prints path relative to base when it lies inside base.
func displayPath(path, base string) string {
	if base == "" {
		return path
	}
	if rel, err := filepath.Rel(base, path); err == nil && filepath.IsLocal(rel) {
		return rel
	}
	return path
}
