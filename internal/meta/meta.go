// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/patchctl/patchctl/internal/config"
)

// RootDirSpec holds the resolved working tree root and optional patch
// directory override parsed from a "dir::patches" argument.
type RootDirSpec struct {
	RootDir  string
	PatchDir string
}

// Meta contains runtime metadata shared by commands. It carries CLI arguments,
// loaded configuration, context, the resolved root directory specification, and
// the starting working directory.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	RootDirSpec
	StartingDir string
}
