// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/patchctl/patchctl/internal/config"
	"github.com/patchctl/patchctl/internal/meta"
	"github.com/patchctl/patchctl/internal/util"
)

// treeCommands take a working tree rootDir (optionally with a ::patches
// override) as their first positional argument.
var treeCommands = map[string]bool{
	"apply":  true,
	"series": true,
	"status": true,
}

// seriesVerbs are the series subcommand names, which may precede the rootDir
// positional.
var seriesVerbs = map[string]bool{
	"list":   true,
	"check":  true,
	"freeze": true,
}

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	// Save the CWD at startup and then defer restoring it so we're tidy.
	sd, _ := os.Getwd()
	defer func() {
		if err := os.Chdir(sd); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to restore directory: %v\n", err)
		}
	}()

	// The arg[1] immediately following the binary (arg[0]) is the patchctl
	// subcommand and also represents the namespace key to be used when retrieving
	// config values. arg[1] could be -h/--help, so ignore it if it appears to be
	// a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	// allow short if-style local cfg; no actual outer cfg
	cfg2, _ := config.Load(ns) //nolint
	meta := meta.Meta{
		Args:        args,
		Config:      cfg2,
		Context:     ctx,
		StartingDir: sd,
	}

	// See if the arg immediately following the command might be a working tree
	// directory. This is determined by whether or not it begins with - or --.
	// If it does, it's a flag and the CWD is the tree root. Only the tree
	// commands treat the positional this way; record, show and fetch take
	// plain positional arguments of their own (snapshot dirs, patch files,
	// archive URLs).
	pos := 2
	if ns == "series" && len(args) > 2 && seriesVerbs[args[2]] {
		pos = 3
	}
	if treeCommands[ns] && len(args) > pos && !strings.HasPrefix(args[pos], "-") {
		if wd, patches, err := util.ParseRootDir(args[pos]); err == nil {
			meta.RootDir = wd
			meta.PatchDir = patches
		} else {
			return nil, fmt.Errorf("failed to parse rootDir (%s): %w", args[pos], err)
		}
	} else {
		meta.RootDir = sd
	}

	app := &cli.Command{
		Name:  "patchctl",
		Usage: "Patch Control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "patchctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		recordCommandBuilder(meta),
		applyCommandBuilder(meta),
		seriesCommandBuilder(meta),
		showCommandBuilder(meta),
		statusCommandBuilder(meta),
		fetchCommandBuilder(meta),
		completionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
