// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/patchctl/patchctl/internal/config"
	"github.com/patchctl/patchctl/internal/meta"
	"github.com/patchctl/patchctl/internal/patchfile"
	"github.com/patchctl/patchctl/internal/series"
)

// seriesColumns is the column order for series listings.
var seriesColumns = []string{"position", "patch", "size"}

// seriesListAction lists the patch series in application order.
func seriesListAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "series"

	patchDir := PatchDir(cmd)
	entries, err := series.Load(patchDir)
	if err != nil {
		return err
	}

	cmd.Metadata["header"] = "Patch series for " + patchDir + ":"

	rows := make([]map[string]interface{}, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, map[string]interface{}{
			"position": i + 1,
			"patch":    e.Name,
			"size":     humanize.Bytes(uint64(e.Size)),
		})
	}

	return EmitDataset(rows, seriesColumns, cmd)
}

// seriesCheckAction dry-runs the series against the working tree and reports
// per-patch results.
func seriesCheckAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "series"

	patchDir := PatchDir(cmd)
	entries, err := series.Load(patchDir)
	if err != nil {
		return err
	}

	base, err := treeSnapshot(m.RootDir, patchDir)
	if err != nil {
		return err
	}

	applied, err := series.Check(base, entries)

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

	log.Infof("%d patches apply cleanly", len(applied))
	return EmitDataset(rows, applyColumns, cmd)
}

// seriesFreezeAction writes or refreshes the series manifest pinning each
// patch's position and digest.
func seriesFreezeAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "series"

	patchDir := PatchDir(cmd)
	manifest, err := series.WriteManifest(patchDir)
	if err != nil {
		return err
	}

	log.Infof("froze %d patches in %s", len(manifest.Patches), patchDir)
	return nil
}

// seriesCommandBuilder constructs the "series" subcommand with its list,
// check and freeze actions. list is the default.
func seriesCommandBuilder(meta meta.Meta) *cli.Command {
	flags := append(NewGlobalFlags("series"), []cli.Flag{
		tldrFlag,
		NewPatchDirFlag("series", meta.Config.Source),
	}...)

	return &cli.Command{
		Name:      "series",
		Usage:     "inspect and pin the patch application order",
		UsageText: "patchctl series [RootDir[::patches]] [list|check|freeze]",
		Metadata:  map[string]any{"meta": meta},
		Flags:     flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: seriesListAction,
		Commands: []*cli.Command{
			{
				Name:     "list",
				Usage:    "list patches in application order",
				Metadata: map[string]any{"meta": meta},
				Flags:    flags,
				Action:   seriesListAction,
			},
			{
				Name:     "check",
				Usage:    "dry-run the series against the working tree",
				Metadata: map[string]any{"meta": meta},
				Flags:    flags,
				Action:   seriesCheckAction,
			},
			{
				Name:     "freeze",
				Usage:    "write a manifest pinning patch order and digests",
				Metadata: map[string]any{"meta": meta},
				Flags:    flags,
				Action:   seriesFreezeAction,
			},
		},
	}
}
