// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/patchctl/patchctl/internal/log"
	"github.com/patchctl/patchctl/internal/snapshot"
)

// Unpack expands a gzipped tarball into a Snapshot. Versioned source
// archives conventionally nest everything under a single top-level
// directory; strip removes that many leading path components so the
// snapshot's paths match the working tree's.
//
// Entries that would escape the tree (absolute paths, ".." traversal) are
// rejected outright. Non-regular entries (directories, symlinks, devices)
// are skipped.
func Unpack(archive []byte, strip int) (snapshot.Snapshot, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer gz.Close() //nolint:errcheck

	snap := snapshot.Snapshot{}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read archive: %w", err)
		}

		name := path.Clean(hdr.Name)
		if path.IsAbs(name) || strings.HasPrefix(name, "..") {
			return nil, fmt.Errorf("archive entry escapes target: %q", hdr.Name)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name, ok := stripComponents(name, strip)
		if !ok {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", hdr.Name, err)
		}
		snap[name] = data
	}

	log.Debugf("archive unpacked: files=%d strip=%d", len(snap), strip)
	return snap, nil
}

// stripComponents removes n leading path elements. Entries shallower than n
// are dropped (ok=false), matching tar --strip-components.
func stripComponents(name string, n int) (string, bool) {
	if n <= 0 {
		return name, true
	}
	parts := strings.Split(name, "/")
	if len(parts) <= n {
		return "", false
	}
	return path.Join(parts[n:]...), true
}

// DetectStrip reports 1 when every entry of the snapshot-to-be shares a
// single top-level directory, the common layout for release tarballs.
// Detection runs on an unstripped unpack.
func DetectStrip(snap snapshot.Snapshot) int {
	var top string
	for _, p := range snap.Paths() {
		first, _, ok := strings.Cut(p, "/")
		if !ok {
			return 0
		}
		if top == "" {
			top = first
		} else if first != top {
			return 0
		}
	}
	if top == "" {
		return 0
	}
	return 1
}
