// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/patchctl/patchctl/internal/log"
)

// Snapshot is a mapping of slash-separated relative file paths to raw byte
// content. It is the unit of comparison for the recorder: a baseline Snapshot
// is taken from pristine sources and a modified Snapshot from the edited tree.
type Snapshot map[string][]byte

// InvalidInputError reports a snapshot that is structurally unusable: nil,
// or containing a path that is absolute, empty, or escapes its root.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid snapshot: %s", e.Reason)
}

// EncodingError reports file content that cannot be treated as text. Binary
// files are out of scope for line-based diffing and must be excluded upstream.
type EncodingError struct {
	Path string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("binary content in %s: not diffable as text", e.Path)
}

// sniffLen bounds how much of a file is inspected for binary content.
// Matches the window size used by git's heuristic.
const sniffLen = 8000

// IsText reports whether data looks like text. A NUL byte within the sniff
// window marks the content as binary.
func IsText(data []byte) bool {
	sniff := data
	if len(sniff) > sniffLen {
		sniff = sniff[:sniffLen]
	}
	return !bytes.ContainsRune(sniff, 0)
}

// Validate checks the snapshot shape: it must be non-nil and every path must
// be clean, relative and confined. Content is not inspected; use CheckText
// per file for that.
func Validate(s Snapshot) error {
	if s == nil {
		return &InvalidInputError{Reason: "nil snapshot"}
	}
	for path := range s {
		if err := checkPath(path); err != nil {
			return err
		}
	}
	return nil
}

// CheckText returns an EncodingError if the content at path is not diffable
// text.
func CheckText(path string, data []byte) error {
	if !IsText(data) {
		return &EncodingError{Path: path}
	}
	return nil
}

func checkPath(path string) error {
	switch {
	case path == "":
		return &InvalidInputError{Reason: "empty path"}
	case strings.HasPrefix(path, "/"):
		return &InvalidInputError{Reason: fmt.Sprintf("absolute path %q", path)}
	case path != filepath.ToSlash(filepath.Clean(path)) || strings.HasPrefix(path, ".."):
		return &InvalidInputError{Reason: fmt.Sprintf("unclean path %q", path)}
	}
	return nil
}

// Paths returns the snapshot's paths in lexicographic order. All snapshot
// iteration goes through this so output is independent of map ordering.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	c := make(Snapshot, len(s))
	for p, data := range s {
		c[p] = append([]byte(nil), data...)
	}
	return c
}

// skipDirs are directory names never captured into a snapshot. They hold
// versioning or patch-tool state, not source.
var skipDirs = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
	".pc":  true,
}

// FromDir walks root and captures every regular file into a Snapshot, keyed
// by slash-separated path relative to root. Symlinks and versioning metadata
// directories are skipped. Additional top-level names to ignore (e.g. the
// patch directory itself) may be passed in ignore.
func FromDir(root string, ignore ...string) (Snapshot, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot root: %w", err)
	}
	if !info.IsDir() {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("%s is not a directory", root)}
	}

	ignored := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		ignored[name] = true
	}

	snap := Snapshot{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if skipDirs[d.Name()] || ignored[rel] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ignored[rel] {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", rel, err)
		}
		snap[rel] = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("snapshot captured: root=%s files=%d", root, len(snap))
	return snap, nil
}

// WriteDir materializes the snapshot under root, creating directories as
// needed. Used by apply and by fetch after unpacking.
func (s Snapshot) WriteDir(root string) error {
	for _, path := range s.Paths() {
		target := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(target, s[path], 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
