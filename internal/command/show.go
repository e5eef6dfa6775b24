// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/patchctl/patchctl/internal/config"
	"github.com/patchctl/patchctl/internal/differ"
	"github.com/patchctl/patchctl/internal/meta"
	"github.com/patchctl/patchctl/internal/patchfile"
	"github.com/patchctl/patchctl/internal/series"
)

var (
	showHeaderStyle = lipgloss.NewStyle().Bold(true)
	showHunkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	showAddStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	showDelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// showCommandAction is the action handler for the "show" subcommand. It reads
// a patch artifact from a file, stdin or an interactive picker, validates it
// and renders it.
func showCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "show") {
		return nil
	}

	config.Config.Namespace = "show"

	text, name, err := showInput(cmd)
	if err != nil || text == nil {
		return err
	}

	p, err := patchfile.Parse(string(text))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debugf("show: patch=%s files=%d", name, len(p.Records))

	if cmd.Bool("tui") {
		return differ.Page(name, colorizePatch(string(text)))
	}

	if cmd.String("output") == "raw" || !cmd.Bool("color") {
		_, err = os.Stdout.Write(text)
		return err
	}

	fmt.Print(colorizePatch(string(text)))
	return nil
}

// showInput resolves the patch text to display. With --tui the user picks
// from the series; otherwise the positional names a file, with - (or no
// argument) meaning stdin. A nil result with nil error means the picker was
// dismissed.
func showInput(cmd *cli.Command) ([]byte, string, error) {
	if cmd.Bool("tui") {
		entries, err := series.Load(PatchDir(cmd))
		if err != nil {
			return nil, "", err
		}
		entry := differ.SelectPatch(entries)
		if entry == nil {
			return nil, "", nil
		}
		text, err := os.ReadFile(entry.Path)
		return text, entry.Name, err
	}

	args := cmd.Args().Slice()
	if len(args) == 0 || args[0] == "-" {
		text, err := io.ReadAll(os.Stdin)
		return text, "stdin", err
	}

	text, err := os.ReadFile(args[0])
	return text, args[0], err
}

// colorizePatch applies per-line styles to unified diff text.
func colorizePatch(text string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(body, "--- ") || strings.HasPrefix(body, "+++ "):
			b.WriteString(showHeaderStyle.Render(body))
		case strings.HasPrefix(body, "@@"):
			b.WriteString(showHunkStyle.Render(body))
		case strings.HasPrefix(body, "+"):
			b.WriteString(showAddStyle.Render(body))
		case strings.HasPrefix(body, "-"):
			b.WriteString(showDelStyle.Render(body))
		default:
			b.WriteString(body)
		}
		if strings.HasSuffix(line, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// showCommandBuilder constructs the "show" subcommand.
func showCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "render a patch artifact",
		UsageText: "patchctl show [patch-file|-] [--tui]",
		Metadata:  map[string]any{"meta": meta},
		Flags: append(NewGlobalFlags("show"), []cli.Flag{
			tldrFlag,
			NewPatchDirFlag("show", meta.Config.Source),
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "pick the patch interactively from the series",
				Value: false,
			},
		}...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: showCommandAction,
	}
}
