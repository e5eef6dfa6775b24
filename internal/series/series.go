// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package series

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/patchctl/patchctl/internal/log"
	"github.com/patchctl/patchctl/internal/patchfile"
	"github.com/patchctl/patchctl/internal/snapshot"
)

// FileName is the optional ordering file inside a patch directory. One patch
// filename per line; blank lines and '#' comments are skipped. When present
// it is authoritative; when absent, *.patch files apply in lexicographic
// order.
const FileName = "series"

// Entry is one patch artifact in application order.
type Entry struct {
	Name string // file name within the patch directory
	Path string // full path on disk
	Size int64
}

// Load resolves the ordered patch list for dir. Every name referenced by a
// series file must exist; a dangling reference is an error rather than a
// silent skip.
func Load(dir string) ([]Entry, error) {
	names, explicit, err := orderedNames(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			if explicit {
				return nil, fmt.Errorf("series references missing patch %s: %w", name, err)
			}
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Path: path, Size: info.Size()})
	}

	log.Debugf("series loaded: dir=%s patches=%d explicit=%t", dir, len(entries), explicit)
	return entries, nil
}

func orderedNames(dir string) ([]string, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err == nil {
		var names []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			names = append(names, line)
		}
		return names, true, nil
	}
	if !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("failed to read series file: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.patch"))
	if err != nil {
		return nil, false, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names, false, nil
}

// Read loads and parses one entry's artifact.
func (e Entry) Read() (*patchfile.Patch, error) {
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read patch %s: %w", e.Name, err)
	}
	p, err := patchfile.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name, err)
	}
	return p, nil
}

// ApplyAll applies the series in order to base and returns the final
// snapshot plus the names applied. On conflict the returned error is the
// *patchfile.ConflictError from the failing patch, and applied holds the
// names that succeeded before it.
func ApplyAll(base snapshot.Snapshot, entries []Entry) (result snapshot.Snapshot, applied []string, err error) {
	result = base
	for _, e := range entries {
		p, err := e.Read()
		if err != nil {
			return nil, applied, err
		}
		next, err := patchfile.Apply(result, p, e.Name)
		if err != nil {
			return nil, applied, err
		}
		result = next
		applied = append(applied, e.Name)
	}
	return result, applied, nil
}

// Check dry-runs the series against base, reporting the names that apply
// cleanly. Conflicts are detected before any real application so order
// problems surface with patch, file and hunk context.
func Check(base snapshot.Snapshot, entries []Entry) (applied []string, err error) {
	_, applied, err = ApplyAll(base, entries)
	return applied, err
}
