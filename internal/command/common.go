// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/patchctl/patchctl/internal/meta"
	"github.com/patchctl/patchctl/internal/output"
	"github.com/patchctl/patchctl/internal/util"
)

// DefaultPatchDir is the patch directory used when neither the --patch-dir
// flag, the PATCHCTL_PATCH_DIR env var nor a ::patches rootDir override names
// one.
const DefaultPatchDir = "patches"

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// PatchDir resolves the effective patch directory for the command. The
// --patch-dir flag wins, then the rootDir ::patches override, then the
// default under the tree root.
func PatchDir(cmd *cli.Command) string {
	m := GetMeta(cmd)
	override := cmd.String("patch-dir")
	if override == "" {
		override = m.PatchDir
	}
	return util.ResolvePatchDir(m.RootDir, override, DefaultPatchDir)
}

// EmitDataset marshals the rows and passes them to the common output routine
// with the given column order.
func EmitDataset(rows []map[string]interface{}, columns []string, cmd *cli.Command) error {
	var raw bytes.Buffer
	jsonData, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	raw.Write(jsonData)

	output.Spit(raw, rows, columns, cmd, os.Stdout)
	return nil
}

// ConfirmOverwrite guards writes to an existing path. With force it always
// allows the write. Otherwise it prompts when stdin is a terminal and refuses
// when it is not, so scripted runs never clobber files silently.
func ConfirmOverwrite(path string, force bool) error {
	if force {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return fmt.Errorf("%s exists; use --force to overwrite", path)
	}

	fmt.Fprintf(os.Stderr, "%s exists. Overwrite? [y/N] ", path)
	var answer string
	_, _ = fmt.Scanln(&answer)
	if answer != "y" && answer != "Y" {
		return fmt.Errorf("refusing to overwrite %s", path)
	}
	return nil
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr patchctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "patchctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}
