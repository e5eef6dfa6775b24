// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters provides row filtering for command result sets.
//
// The package parses filter expressions to select subsets of rows based on
// column values. Filters are specified as key-operator-target expressions and
// can be combined using a configurable delimiter (default: comma; override
// with PATCHCTL_FILTER_DELIM).
//
// Operators include:
//
//   - = : exact match (supports negation with !=)
//   - ^ : prefix match (supports negation with !^)
//   - ~ : case-insensitive match (supports negation with !~)
//   - < : less than (numeric comparison)
//   - > : greater than (numeric comparison)
//   - @ : contains substring (supports negation with !@)
//   - / : regex match (supports negation with !/)
//
// Examples:
//
//   - "patch=fix-build.patch" : rows whose patch equals "fix-build.patch"
//   - "patch^src-" : rows whose patch starts with "src-"
//   - "position>5" : rows beyond the fifth series position
//   - "status!@conflict" : rows whose status does not mention a conflict
//
// A bare key with no operator is an existence check; rows missing the key are
// dropped.
//
// The BuildFilters function parses a delimited filter specification string.
// Invalid specifications (unsupported operands or malformed expressions) are
// logged and skipped, allowing partial filter sets to be processed.
//
// The FilterDataset function filters a result set, keeping only rows that
// match all provided filter expressions.
package filters
