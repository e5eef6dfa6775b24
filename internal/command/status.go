// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/patchctl/patchctl/internal/config"
	"github.com/patchctl/patchctl/internal/differ"
	"github.com/patchctl/patchctl/internal/meta"
	"github.com/patchctl/patchctl/internal/series"
)

// statusCommandAction is the action handler for the "status" subcommand. It
// rebuilds the manifest for the patch directory and diffs it against the
// frozen one, surfacing reordered, edited, added or removed patches.
func statusCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "status") {
		return nil
	}

	config.Config.Namespace = "status"

	patchDir := PatchDir(cmd)

	frozen, err := series.ReadManifest(patchDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no manifest in %s; run 'patchctl series freeze' first", patchDir)
		}
		return err
	}

	manifest, err := series.BuildManifest(patchDir)
	if err != nil {
		return err
	}
	current, err := manifest.JSON()
	if err != nil {
		return err
	}

	if bytes.Equal(bytes.TrimSpace(frozen), bytes.TrimSpace(current)) {
		log.Infof("%s matches the frozen manifest", filepath.Base(patchDir))
		return nil
	}

	return differ.Diff(cmd, [][]byte{frozen, current})
}

// statusCommandBuilder constructs the "status" subcommand.
func statusCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "show drift between the patch series and its frozen manifest",
		UsageText: "patchctl status [RootDir[::patches]]",
		Metadata:  map[string]any{"meta": meta},
		Flags: append(NewGlobalFlags("status"), []cli.Flag{
			tldrFlag,
			NewPatchDirFlag("status", meta.Config.Source),
			&cli.StringFlag{
				Name:   "diff_filter",
				Usage:  "filter for diff results",
				Hidden: true,
			},
		}...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: statusCommandAction,
	}
}
