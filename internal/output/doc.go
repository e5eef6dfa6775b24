// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output renders command result sets as tables, JSON, YAML or raw
// bytes, honoring the global output, color, titles and sort flags.
package output
