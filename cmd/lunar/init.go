package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lunar/internal/project"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default lunar.toml",
		Long: `Init writes lunar.toml with the default parse settings into [dir]
(the current directory when omitted). The directory is created if needed.
An existing lunar.toml is kept unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().Bool("force", false, "overwrite an existing lunar.toml")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}

	// Resolve target directory
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", target)
	}

	path, err := project.WriteDefault(target, force)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	return nil
}
