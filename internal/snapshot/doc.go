// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package snapshot captures file trees as path-to-content mappings used as
// the baseline and modified inputs to the recorder.
package snapshot
