// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package driller navigates JSON documents with a dot path that also
// understands array indexing, backing the filter expressions applied to
// command result sets.
package driller
