// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package series

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/patchctl/patchctl/internal/log"
)

// ManifestName is the frozen-state document written next to the patches.
const ManifestName = "manifest.json"

// Manifest records each patch's position and content digest so a later run
// can detect artifacts that were reordered, edited or removed since the
// series was frozen.
type Manifest struct {
	Patches []ManifestEntry `json:"patches"`
}

// ManifestEntry is one frozen patch artifact.
type ManifestEntry struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Digest   string `json:"digest"`
	Size     int64  `json:"size"`
}

// BuildManifest digests the current series of dir. Output is deterministic:
// entries follow series order and digests depend only on artifact bytes.
func BuildManifest(dir string) (*Manifest, error) {
	entries, err := Load(dir)
	if err != nil {
		return nil, err
	}

	m := &Manifest{Patches: []ManifestEntry{}}
	for i, e := range entries {
		data, err := os.ReadFile(e.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read patch %s: %w", e.Name, err)
		}
		sum := blake2b.Sum256(data)
		m.Patches = append(m.Patches, ManifestEntry{
			Position: i + 1,
			Name:     e.Name,
			Digest:   "blake2b:" + hex.EncodeToString(sum[:]),
			Size:     int64(len(data)),
		})
	}
	return m, nil
}

// JSON renders the manifest as indented JSON with a trailing newline.
func (m *Manifest) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteManifest freezes the current series state into dir/manifest.json.
func WriteManifest(dir string) (*Manifest, error) {
	m, err := BuildManifest(dir)
	if err != nil {
		return nil, err
	}
	data, err := m.JSON()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	log.Debugf("manifest written: path=%s patches=%d", path, len(m.Patches))
	return m, nil
}

// ReadManifest returns the frozen manifest bytes, or os.ErrNotExist if the
// series was never frozen.
func ReadManifest(dir string) ([]byte, error) {
	return os.ReadFile(filepath.Join(dir, ManifestName))
}
