// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/patchctl/patchctl/internal/config"
	"github.com/patchctl/patchctl/internal/fetch"
	"github.com/patchctl/patchctl/internal/meta"
)

// fetchCommandAction is the action handler for the "fetch" subcommand. It
// retrieves a baseline archive over http(s), s3 or the local filesystem,
// verifies it when a digest is supplied, and unpacks it into the target
// directory.
func fetchCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "fetch") {
		return nil
	}

	config.Config.Namespace = "fetch"

	src, err := fetchSource(ctx, cmd)
	if err != nil {
		return err
	}

	data, err := fetch.Fetch(ctx, src)
	if err != nil {
		return err
	}

	target := cmd.String("directory")
	if !isArchive(src.URL) {
		// Not an archive; keep the payload as-is under the target dir.
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}
		dest := filepath.Join(target, filepath.Base(src.URL))
		if err := ConfirmOverwrite(dest, cmd.Bool("force")); err != nil {
			return err
		}
		return os.WriteFile(dest, data, 0o644)
	}

	strip := cmd.Int("strip")
	snap, err := fetch.Unpack(data, 0)
	if err != nil {
		return err
	}
	if strip < 0 {
		strip = fetch.DetectStrip(snap)
	}
	if strip > 0 {
		if snap, err = fetch.Unpack(data, strip); err != nil {
			return err
		}
	}

	if err := snap.WriteDir(target); err != nil {
		return err
	}

	log.Infof("unpacked %d files to %s", len(snap), target)
	return nil
}

// fetchSource resolves the fetch Source from the positional argument or,
// when --index is given, from a release index document.
func fetchSource(ctx context.Context, cmd *cli.Command) (fetch.Source, error) {
	if index := cmd.String("index"); index != "" {
		indexDoc, err := fetch.Fetch(ctx, fetch.Source{URL: index})
		if err != nil {
			return fetch.Source{}, fmt.Errorf("failed to fetch release index: %w", err)
		}
		return fetch.ResolveIndex(indexDoc, cmd.String("release"))
	}

	args := cmd.Args().Slice()
	if len(args) != 1 {
		return fetch.Source{}, fmt.Errorf("usage: patchctl fetch <url|file> [flags]")
	}
	return fetch.Source{URL: args[0], SHA256: cmd.String("sha256")}, nil
}

// isArchive reports whether the source looks like a gzipped tarball.
func isArchive(url string) bool {
	return strings.HasSuffix(url, ".tar.gz") || strings.HasSuffix(url, ".tgz")
}

// fetchCommandBuilder constructs the "fetch" subcommand.
func fetchCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "fetch and unpack a baseline archive",
		UsageText: "patchctl fetch <url|file> [-C dir]",
		Metadata:  map[string]any{"meta": meta},
		Flags: []cli.Flag{
			tldrFlag,
			forceFlag,
			&cli.StringFlag{
				Name:    "directory",
				Aliases: []string{"C"},
				Usage:   "directory to unpack into",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:  "index",
				Usage: "release index document (url or file) to resolve the archive from",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("PATCHCTL_INDEX"),
				),
			},
			&cli.StringFlag{
				Name:  "release",
				Usage: "release version to select from the index (default latest)",
			},
			&cli.StringFlag{
				Name:  "sha256",
				Usage: "expected hex sha256 of the archive",
			},
			&cli.IntFlag{
				Name:  "strip",
				Usage: "leading path components to strip when unpacking (-1 to auto-detect)",
				Value: -1,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: fetchCommandAction,
	}
}
