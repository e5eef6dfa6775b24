// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package patchfile parses patch artifacts back into records and applies
// them to snapshots with strict context verification.
package patchfile
