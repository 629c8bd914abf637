package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gogpu/spvkit/internal/logger"
	"github.com/gogpu/spvkit/spirv"
)

func newDisCmd(*app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "dis file.spv...",
		Short: "Disassemble SPIR-V binaries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, path := range args {
				if err := disassemble(w, path); err != nil {
					return err
				}
			}
			if !watch {
				return nil
			}
			return watchFiles(cmd, args)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "disassemble again whenever a file changes")
	return cmd
}

func disassemble(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "; %s\n", path)
	if err := spirv.Disassemble(w, data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// watchFiles watches the directories holding paths, since editors and
// build tools often replace files instead of writing them in place.
func watchFiles(cmd *cobra.Command, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	wanted := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		wanted[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !wanted[ev.Name] || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := disassemble(cmd.OutOrStdout(), ev.Name); err != nil {
				logger.Warn("disassemble failed", "path", ev.Name, "err", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch", "err", err)
		}
	}
}
