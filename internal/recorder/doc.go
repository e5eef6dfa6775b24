// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package recorder computes deterministic per-file unified diffs between a
// baseline and a modified snapshot, and renders them as patch artifacts.
package recorder
