// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchctl/patchctl/internal/meta"
	"github.com/patchctl/patchctl/internal/series"
	"github.com/patchctl/patchctl/internal/snapshot"
)

func TestArtifactName(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "flat file",
			path: "main.c",
			want: "main.c.patch",
		},
		{
			name: "nested file",
			path: "src/net/dial.c",
			want: "src-net-dial.c.patch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, artifactName(tt.path))
		})
	}
}

// writeTree materializes a path->content map under dir.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		target := filepath.Join(dir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
		require.NoError(t, os.WriteFile(target, []byte(content), 0o644))
	}
}

func TestRecordThenApplyRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	modDir := t.TempDir()
	patchDir := filepath.Join(t.TempDir(), "patches")
	workTree := t.TempDir()

	baseline := map[string]string{
		"src/main.c":  "int main(void) {\n\treturn 0;\n}\n",
		"docs/README": "original\n",
		"Makefile":    "all:\n\tcc src/main.c\n",
	}
	modified := map[string]string{
		"src/main.c":  "int main(void) {\n\treturn 1;\n}\n",
		"docs/NOTES":  "rewritten\n",
		"Makefile":    "all:\n\tcc src/main.c\n",
		"src/extra.c": "void extra(void) {}\n",
	}

	writeTree(t, baseDir, baseline)
	writeTree(t, modDir, modified)
	writeTree(t, workTree, baseline)

	record := recordCommandBuilder(meta.Meta{Args: []string{"patchctl", "record"}})
	err := record.Run(context.Background(),
		[]string{"record", baseDir, modDir, "-d", patchDir, "--force", "-m", "test series"})
	require.NoError(t, err)

	// A series file pins the order of the recorded patches.
	entries, err := series.Load(patchDir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	apply := applyCommandBuilder(meta.Meta{
		Args:        []string{"patchctl", "apply"},
		RootDirSpec: meta.RootDirSpec{RootDir: workTree},
	})
	err = apply.Run(context.Background(), []string{"apply", "--patch-dir", patchDir})
	require.NoError(t, err)

	got, err := snapshot.FromDir(workTree)
	require.NoError(t, err)

	assert.Equal(t, len(modified), len(got))
	for path, content := range modified {
		assert.Equal(t, []byte(content), got[path], "content mismatch at %s", path)
	}
}

func TestApplyDryRunLeavesTreeAlone(t *testing.T) {
	baseDir := t.TempDir()
	modDir := t.TempDir()
	patchDir := filepath.Join(t.TempDir(), "patches")
	workTree := t.TempDir()

	baseline := map[string]string{"a.txt": "line1\nline2\n"}
	modified := map[string]string{"a.txt": "line1\nlineX\n"}

	writeTree(t, baseDir, baseline)
	writeTree(t, modDir, modified)
	writeTree(t, workTree, baseline)

	record := recordCommandBuilder(meta.Meta{Args: []string{"patchctl", "record"}})
	require.NoError(t, record.Run(context.Background(),
		[]string{"record", baseDir, modDir, "-d", patchDir, "--force"}))

	apply := applyCommandBuilder(meta.Meta{
		Args:        []string{"patchctl", "apply"},
		RootDirSpec: meta.RootDirSpec{RootDir: workTree},
	})
	require.NoError(t, apply.Run(context.Background(),
		[]string{"apply", "--patch-dir", patchDir, "--dry-run"}))

	data, err := os.ReadFile(filepath.Join(workTree, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", string(data))
}

func TestApplyConflictReportsPatchAndHunk(t *testing.T) {
	baseDir := t.TempDir()
	modDir := t.TempDir()
	patchDir := filepath.Join(t.TempDir(), "patches")
	workTree := t.TempDir()

	writeTree(t, baseDir, map[string]string{"a.txt": "line1\nline2\n"})
	writeTree(t, modDir, map[string]string{"a.txt": "line1\nlineX\n"})
	// The working tree has drifted away from the recorded baseline.
	writeTree(t, workTree, map[string]string{"a.txt": "something else entirely\n"})

	record := recordCommandBuilder(meta.Meta{Args: []string{"patchctl", "record"}})
	require.NoError(t, record.Run(context.Background(),
		[]string{"record", baseDir, modDir, "-d", patchDir, "--force"}))

	apply := applyCommandBuilder(meta.Meta{
		Args:        []string{"patchctl", "apply"},
		RootDirSpec: meta.RootDirSpec{RootDir: workTree},
	})
	err := apply.Run(context.Background(), []string{"apply", "--patch-dir", patchDir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.txt.patch")
	assert.Contains(t, err.Error(), "hunk #1")
}

func TestRecordIdenticalTreesWritesNothing(t *testing.T) {
	baseDir := t.TempDir()
	modDir := t.TempDir()
	patchDir := filepath.Join(t.TempDir(), "patches")

	files := map[string]string{"a.txt": "line1\nline2\n"}
	writeTree(t, baseDir, files)
	writeTree(t, modDir, files)

	record := recordCommandBuilder(meta.Meta{Args: []string{"patchctl", "record"}})
	require.NoError(t, record.Run(context.Background(),
		[]string{"record", baseDir, modDir, "-d", patchDir, "--force"}))

	_, err := os.Stat(patchDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRecordRejectsBinaryFile(t *testing.T) {
	baseDir := t.TempDir()
	modDir := t.TempDir()

	writeTree(t, baseDir, map[string]string{"blob.bin": "ok\n"})
	require.NoError(t, os.WriteFile(
		filepath.Join(modDir, "blob.bin"), []byte{0x00, 0x01, 0x02}, 0o644))

	record := recordCommandBuilder(meta.Meta{Args: []string{"patchctl", "record"}})
	err := record.Run(context.Background(), []string{"record", baseDir, modDir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blob.bin")
}
