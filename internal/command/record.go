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
	"github.com/patchctl/patchctl/internal/meta"
	"github.com/patchctl/patchctl/internal/recorder"
	"github.com/patchctl/patchctl/internal/series"
	"github.com/patchctl/patchctl/internal/snapshot"
)

// recordCommandAction is the action handler for the "record" subcommand. It
// snapshots the baseline and modified trees, records the differences between
// them and writes the resulting patch artifacts.
func recordCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "record") {
		return nil
	}

	config.Config.Namespace = "record"

	args := cmd.Args().Slice()
	if len(args) != 2 {
		return fmt.Errorf("usage: patchctl record <baseline> <modified>")
	}

	baseline, err := snapshot.FromDir(args[0])
	if err != nil {
		return err
	}
	modified, err := snapshot.FromDir(args[1])
	if err != nil {
		return err
	}

	contextLines := cmd.Int("context")
	if !cmd.IsSet("context") {
		contextLines, _ = config.GetInt("context", contextLines) //nolint:errcheck
	}

	records, err := recorder.Diff(baseline, modified, recorder.Options{
		Context:       &contextLines,
		DetectRenames: cmd.Bool("renames"),
	})
	if err != nil {
		return err
	}

	if len(records) == 0 {
		log.Info("snapshots are identical; nothing to record")
		return nil
	}

	message := cmd.String("message")
	if dir := cmd.String("dir"); dir != "" {
		return writeSplit(cmd, dir, records, message)
	}
	return writeCombined(cmd, records, message)
}

// writeCombined renders all records into a single artifact, written to the
// --file target or stdout.
func writeCombined(cmd *cli.Command, records []recorder.Record, message string) error {
	text := recorder.Render(records, message)

	file := cmd.String("file")
	if file == "" || file == "-" {
		_, err := os.Stdout.WriteString(text)
		return err
	}

	if err := ConfirmOverwrite(file, cmd.Bool("force")); err != nil {
		return err
	}
	if err := os.WriteFile(file, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	log.Infof("recorded %d files to %s", len(records), file)
	return nil
}

// writeSplit writes one artifact per changed file into dir and pins the
// application order with a series file.
func writeSplit(cmd *cli.Command, dir string, records []recorder.Record, message string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create patch dir: %w", err)
	}

	force := cmd.Bool("force")
	names := make([]string, 0, len(records))
	for _, r := range records {
		name := artifactName(r.Path())
		path := filepath.Join(dir, name)
		if err := ConfirmOverwrite(path, force); err != nil {
			return err
		}
		text := recorder.Render([]recorder.Record{r}, message)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Debugf("recorded: patch=%s hunks=%d", name, len(r.Hunks))
		names = append(names, name)
	}

	seriesPath := filepath.Join(dir, series.FileName)
	if err := ConfirmOverwrite(seriesPath, force); err != nil {
		return err
	}
	if err := os.WriteFile(seriesPath, []byte(strings.Join(names, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write series file: %w", err)
	}

	log.Infof("recorded %d patches to %s", len(names), dir)
	return nil
}

// artifactName derives a flat patch file name from a slash-separated file
// path.
func artifactName(path string) string {
	return strings.ReplaceAll(path, "/", "-") + ".patch"
}

// recordCommandBuilder constructs the "record" subcommand.
func recordCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "record",
		Usage:     "record differences between two snapshot directories",
		UsageText: "patchctl record <baseline> <modified> [-d dir | -f file]",
		Metadata:  map[string]any{"meta": meta},
		Flags: []cli.Flag{
			tldrFlag,
			forceFlag,
			&cli.IntFlag{
				Name:    "context",
				Aliases: []string{"C"},
				Usage:   "number of context lines around each change",
				Value:   recorder.DefaultContext,
				Validator: func(value int) error {
					return FlagValidators(value, ContextValidator)
				},
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "write one patch per changed file into this directory",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "write a single combined patch to this file (- for stdout)",
			},
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "free-text description stored ahead of the first file header",
			},
			&cli.BoolFlag{
				Name:  "renames",
				Usage: "pair deleted and added files with similar content as renames",
				Value: false,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: recordCommandAction,
	}
}
