package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lunar/internal/diag"
	"lunar/internal/diagfmt"
	"lunar/internal/driver"
	"lunar/internal/source"
	"lunar/internal/ui"
)

func newDiagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diag [flags] <file.lua|directory>",
		Short: "Report lexical and syntax diagnostics",
		Long: `Diag parses a Lua file or every selected file of a directory and reports
diagnostics. The exit status is 1 when any error is found`,
		Args: cobra.ExactArgs(1),
		RunE: runDiag,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	cmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	cmd.Flags().Bool("preview", false, "show fix previews (implies --suggest)")
	cmd.Flags().Bool("no-warnings", false, "drop warnings from the output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().Bool("cache", false, "reuse diagnostics of unchanged files from the disk cache")
	cmd.Flags().String("cache-dir", "", "disk cache location (default $XDG_CACHE_HOME/lunar)")
	cmd.Flags().String("ui", "off", "progress UI for directories (auto|on|off)")
	return cmd
}

type diagFlags struct {
	format     string
	jobs       int
	withNotes  bool
	suggest    bool
	preview    bool
	noWarnings bool
	fullPath   bool
	cache      bool
	cacheDir   string
	ui         uiMode
}

func readDiagFlags(cmd *cobra.Command) (diagFlags, error) {
	var f diagFlags
	var err error
	flags := cmd.Flags()
	if f.format, err = flags.GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch f.format {
	case "pretty", "json", "short":
	default:
		return f, fmt.Errorf("unknown format: %s", f.format)
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if f.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return f, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if f.suggest, err = flags.GetBool("suggest"); err != nil {
		return f, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if f.preview, err = flags.GetBool("preview"); err != nil {
		return f, fmt.Errorf("failed to get preview flag: %w", err)
	}
	if f.noWarnings, err = flags.GetBool("no-warnings"); err != nil {
		return f, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if f.fullPath, err = flags.GetBool("fullpath"); err != nil {
		return f, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if f.cache, err = flags.GetBool("cache"); err != nil {
		return f, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if f.cacheDir, err = flags.GetString("cache-dir"); err != nil {
		return f, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}
	if f.preview {
		f.suggest = true
	}
	return f, nil
}

// runDiag executes the "diag" command: it parses the target (file or
// directory), prints diagnostics in the chosen format, and returns
// errDiagnostics when any of them is an error.
func runDiag(cmd *cobra.Command, args []string) error {
	target := args[0]

	flags, err := readDiagFlags(cmd)
	if err != nil {
		return err
	}
	dir, err := isDir(target)
	if err != nil {
		return err
	}
	opts, err := loadRunOptions(cmd, target)
	if err != nil {
		return err
	}
	opts.driver.Jobs = flags.jobs
	defer opts.printTimings(cmd)

	if flags.cache {
		var cache *driver.DiskCache
		if flags.cacheDir != "" {
			cache, err = driver.OpenDiskCacheAt(flags.cacheDir)
		} else {
			cache, err = driver.OpenDiskCache("lunar")
		}
		if err != nil {
			return err
		}
		opts.driver.Cache = cache
	}

	var (
		fs  *source.FileSet
		all = diag.NewBag(0)
	)
	if dir {
		var results []driver.ParseDirResult
		work := func(sink driver.EventSink) error {
			dopts := opts.driver
			dopts.Events = sink
			var werr error
			fs, results, werr = driver.ParseDir(cmd.Context(), target, dopts)
			return werr
		}
		if shouldUseTUI(flags.ui) && !opts.quiet {
			err = ui.RunWithProgress(cmd.ErrOrStderr(), "diag", target, work)
		} else {
			err = work(nil)
		}
		if err != nil {
			return fmt.Errorf("diagnostics failed: %w", err)
		}
		for _, r := range results {
			all.Merge(r.Bag)
		}
	} else {
		result, err := driver.Parse(cmd.Context(), target, opts.driver)
		if err != nil {
			return fmt.Errorf("diagnostics failed: %w", err)
		}
		fs = result.FileSet
		all.Merge(result.Bag)
	}

	filtered := filterDiagnostics(all, flags.noWarnings)
	if err := writeDiagnostics(cmd.OutOrStdout(), cmd, filtered, fs, flags); err != nil {
		return err
	}
	if filtered.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func filterDiagnostics(bag *diag.Bag, noWarnings bool) *diag.Bag {
	out := diag.NewBag(0)
	for _, d := range bag.Items() {
		if noWarnings && d.Severity == diag.SevWarning {
			continue
		}
		out.Add(d)
	}
	out.Sort()
	return out
}

func writeDiagnostics(w io.Writer, cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, flags diagFlags) error {
	pathMode := diagfmt.PathModeAuto
	if flags.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch flags.format {
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     flags.withNotes,
			IncludeFixes:     flags.suggest,
			IncludePreviews:  flags.preview,
		})
	case "short":
		if bag.Len() == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, diag.FormatShortDiagnostics(bag.Items(), fs, flags.withNotes))
		return err
	default:
		opts := prettyOpts(cmd, w)
		opts.PathMode = pathMode
		opts.ShowNotes = flags.withNotes
		opts.ShowFixes = flags.suggest
		opts.ShowPreview = flags.preview
		diagfmt.Pretty(w, bag, fs, opts)
		return nil
	}
}
