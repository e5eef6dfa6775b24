// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/patchctl/patchctl/internal/config"
	"github.com/patchctl/patchctl/internal/meta"
	"github.com/patchctl/patchctl/internal/patchfile"
	"github.com/patchctl/patchctl/internal/series"
	"github.com/patchctl/patchctl/internal/snapshot"
)

// applyColumns is the column order for apply results.
var applyColumns = []string{"position", "patch", "status"}

// applyCommandAction is the action handler for the "apply" subcommand. It
// loads the patch series for the working tree, applies it in order and
// materializes the result unless --dry-run is set.
func applyCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "apply") {
		return nil
	}

	config.Config.Namespace = "apply"

	patchDir := PatchDir(cmd)
	entries, err := series.Load(patchDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		log.Infof("no patches found in %s", patchDir)
		return nil
	}

	base, err := treeSnapshot(m.RootDir, patchDir)
	if err != nil {
		return err
	}

	result, applied, err := series.ApplyAll(base, entries)

	rows := make([]map[string]interface{}, 0, len(entries))
	for i, name := range applied {
		rows = append(rows, map[string]interface{}{
			"position": i + 1,
			"patch":    name,
			"status":   "ok",
		})
	}

	if err != nil {
		var conflict *patchfile.ConflictError
		if errors.As(err, &conflict) {
			rows = append(rows, map[string]interface{}{
				"position": len(applied) + 1,
				"patch":    conflict.Patch,
				"status":   conflict.Error(),
			})
			_ = EmitDataset(rows, applyColumns, cmd)
		}
		return err
	}

	if cmd.Bool("dry-run") {
		log.Infof("dry-run: %d patches apply cleanly", len(applied))
		return EmitDataset(rows, applyColumns, cmd)
	}

	if err := result.WriteDir(m.RootDir); err != nil {
		return err
	}

	// Files deleted by the series have to come off disk as well.
	for _, path := range base.Paths() {
		if _, ok := result[path]; !ok {
			if err := os.Remove(filepath.Join(m.RootDir, filepath.FromSlash(path))); err != nil {
				return err
			}
		}
	}

	log.Infof("applied %d patches to %s", len(applied), m.RootDir)
	return EmitDataset(rows, applyColumns, cmd)
}

// treeSnapshot captures the working tree, excluding the patch directory when
// it lives inside the tree.
func treeSnapshot(rootDir, patchDir string) (snapshot.Snapshot, error) {
	var ignore []string
	if rel, err := filepath.Rel(rootDir, patchDir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		ignore = append(ignore, filepath.ToSlash(rel))
	}
	return snapshot.FromDir(rootDir, ignore...)
}

// applyCommandBuilder constructs the "apply" subcommand.
func applyCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "apply",
		Usage:     "apply the patch series to a working tree",
		UsageText: "patchctl apply [RootDir[::patches]] [--dry-run]",
		Metadata:  map[string]any{"meta": meta},
		Flags: append(NewGlobalFlags("apply"), []cli.Flag{
			tldrFlag,
			NewPatchDirFlag("apply", meta.Config.Source),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "check that the series applies without writing anything",
				Value: false,
			},
		}...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: applyCommandAction,
	}
}
