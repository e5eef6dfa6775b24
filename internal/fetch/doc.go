// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package fetch acquires baseline source archives from HTTP, S3 or local
// files, verifies them, and unpacks them into snapshots.
package fetch
