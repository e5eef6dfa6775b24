// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package series defines how multiple patch artifacts are ordered, checked
// for conflicts ahead of application, and frozen into a manifest.
package series
