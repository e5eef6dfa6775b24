// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package recorder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchctl/patchctl/internal/snapshot"
)

func TestDiffIdenticalSnapshots(t *testing.T) {
	snap := snapshot.Snapshot{
		"src/main.c": []byte("int main(void) {\n\treturn 0;\n}\n"),
		"README":     []byte("hello\n"),
	}

	records, err := Diff(snap, snap.Clone(), Options{})

	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestDiffSingleLineChange(t *testing.T) {
	baseline := snapshot.Snapshot{"a.txt": []byte("line1\nline2\n")}
	modified := snapshot.Snapshot{"a.txt": []byte("line1\nlineX\n")}

	records, err := Diff(baseline, modified, Options{})

	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "a.txt", r.OldPath)
	assert.Equal(t, "a.txt", r.NewPath)
	require.Len(t, r.Hunks, 1)

	h := r.Hunks[0]
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, 2, h.OldCount)
	assert.Equal(t, 1, h.NewStart)
	assert.Equal(t, 2, h.NewCount)
	require.Len(t, h.Lines, 3)
	assert.Equal(t, Line{Kind: LineContext, Text: "line1"}, h.Lines[0])
	assert.Equal(t, Line{Kind: LineRemoved, Text: "line2"}, h.Lines[1])
	assert.Equal(t, Line{Kind: LineAdded, Text: "lineX"}, h.Lines[2])
}

func TestDiffAddedAndDeletedFiles(t *testing.T) {
	baseline := snapshot.Snapshot{"gone.txt": []byte("one\ntwo\n")}
	modified := snapshot.Snapshot{"fresh.txt": []byte("alpha\nbeta\n")}

	records, err := Diff(baseline, modified, Options{})

	require.NoError(t, err)
	require.Len(t, records, 2)

	// Records come back ordered by identifying path.
	added := records[0]
	assert.Equal(t, "", added.OldPath)
	assert.Equal(t, "fresh.txt", added.NewPath)
	require.Len(t, added.Hunks, 1)
	assert.Equal(t, 0, added.Hunks[0].OldStart)
	assert.Equal(t, 0, added.Hunks[0].OldCount)
	assert.Equal(t, 1, added.Hunks[0].NewStart)
	assert.Equal(t, 2, added.Hunks[0].NewCount)

	deleted := records[1]
	assert.Equal(t, "gone.txt", deleted.OldPath)
	assert.Equal(t, "", deleted.NewPath)
	require.Len(t, deleted.Hunks, 1)
	assert.Equal(t, 1, deleted.Hunks[0].OldStart)
	assert.Equal(t, 2, deleted.Hunks[0].OldCount)
	assert.Equal(t, 0, deleted.Hunks[0].NewStart)
	assert.Equal(t, 0, deleted.Hunks[0].NewCount)
}

func TestDiffContextWindow(t *testing.T) {
	var oldLines, newLines string
	for i := 1; i <= 20; i++ {
		oldLines += line(i)
		if i == 1 {
			newLines += "changed-first\n"
		} else if i == 20 {
			newLines += "changed-last\n"
		} else {
			newLines += line(i)
		}
	}
	baseline := snapshot.Snapshot{"f.txt": []byte(oldLines)}
	modified := snapshot.Snapshot{"f.txt": []byte(newLines)}

	narrow, err := Diff(baseline, modified, Options{Context: contextOf(1)})
	require.NoError(t, err)
	require.Len(t, narrow, 1)
	assert.Len(t, narrow[0].Hunks, 2)

	wide, err := Diff(baseline, modified, Options{Context: contextOf(30)})
	require.NoError(t, err)
	require.Len(t, wide, 1)
	assert.Len(t, wide[0].Hunks, 1)
}

func contextOf(n int) *int {
	return &n
}

func TestDiffZeroContext(t *testing.T) {
	baseline := snapshot.Snapshot{"f.txt": []byte("a\nb\nc\n")}
	modified := snapshot.Snapshot{"f.txt": []byte("a\nX\nc\n")}

	records, err := Diff(baseline, modified, Options{Context: contextOf(0)})

	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, records[0].Hunks, 1)
	h := records[0].Hunks[0]
	assert.Equal(t, 2, h.OldStart)
	assert.Equal(t, 1, h.OldCount)
	assert.Equal(t, 2, h.NewStart)
	assert.Equal(t, 1, h.NewCount)
	require.Len(t, h.Lines, 2)
	assert.Equal(t, Line{Kind: LineRemoved, Text: "b"}, h.Lines[0])
	assert.Equal(t, Line{Kind: LineAdded, Text: "X"}, h.Lines[1])
}

func TestDiffNilContextDefaults(t *testing.T) {
	baseline := snapshot.Snapshot{"f.txt": []byte("a\nb\nc\nd\ne\nf\ng\nh\ni\n")}
	modified := snapshot.Snapshot{"f.txt": []byte("a\nb\nc\nd\nE\nf\ng\nh\ni\n")}

	records, err := Diff(baseline, modified, Options{})

	require.NoError(t, err)
	require.Len(t, records, 1)
	h := records[0].Hunks[0]
	// DefaultContext lines on each side of the change.
	assert.Equal(t, 2, h.OldStart)
	assert.Equal(t, 7, h.OldCount)
	assert.Equal(t, 7, h.NewCount)
}

func line(i int) string {
	return fmt.Sprintf("line %02d\n", i)
}

func TestDiffRenameDetection(t *testing.T) {
	content := []byte("alpha\nbeta\ngamma\ndelta\n")
	baseline := snapshot.Snapshot{"src/util.c": content}
	modified := snapshot.Snapshot{"lib/util.c": content}

	plain, err := Diff(baseline, modified, Options{})
	require.NoError(t, err)
	assert.Len(t, plain, 2)

	paired, err := Diff(baseline, modified, Options{DetectRenames: true})
	require.NoError(t, err)
	require.Len(t, paired, 1)
	assert.Equal(t, "src/util.c", paired[0].OldPath)
	assert.Equal(t, "lib/util.c", paired[0].NewPath)
	assert.Empty(t, paired[0].Hunks)
}

func TestDiffRenameRequiresSimilarity(t *testing.T) {
	baseline := snapshot.Snapshot{"a.txt": []byte("one\ntwo\nthree\n")}
	modified := snapshot.Snapshot{"b.txt": []byte("completely\ndifferent\ncontent\nhere\n")}

	records, err := Diff(baseline, modified, Options{DetectRenames: true})

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDiffBinaryContent(t *testing.T) {
	baseline := snapshot.Snapshot{"blob.bin": {0x7f, 'E', 'L', 'F', 0x00, 0x01}}
	modified := snapshot.Snapshot{"blob.bin": []byte("text now\n")}

	_, err := Diff(baseline, modified, Options{})

	var encErr *snapshot.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "blob.bin", encErr.Path)
}

func TestDiffInvalidSnapshot(t *testing.T) {
	modified := snapshot.Snapshot{"ok.txt": []byte("fine\n")}

	var invErr *snapshot.InvalidInputError

	_, err := Diff(nil, modified, Options{})
	assert.ErrorAs(t, err, &invErr)

	_, err = Diff(snapshot.Snapshot{"../escape.txt": []byte("x\n")}, modified, Options{})
	assert.ErrorAs(t, err, &invErr)
}

func TestDiffDeterministic(t *testing.T) {
	baseline := snapshot.Snapshot{
		"Makefile":   []byte("all:\n\tcc -o prog main.c\n"),
		"main.c":     []byte("int main(void) {\n\treturn 1;\n}\n"),
		"doc/README": []byte("old docs\n"),
	}
	modified := snapshot.Snapshot{
		"Makefile":   []byte("all:\n\tcc -O2 -o prog main.c\n"),
		"main.c":     []byte("int main(void) {\n\treturn 0;\n}\n"),
		"doc/NOTES":  []byte("new notes\n"),
		"doc/README": []byte("old docs\n"),
	}

	first, err := Diff(baseline, modified, Options{})
	require.NoError(t, err)
	second, err := Diff(baseline, modified, Options{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, Render(first, "msg"), Render(second, "msg"))
}

func TestRenderMessageBlock(t *testing.T) {
	records := []Record{{
		OldPath: "a.txt",
		NewPath: "a.txt",
		Hunks: []Hunk{{
			OldStart: 1, OldCount: 1, NewStart: 1, NewCount: 1,
			Lines: []Line{
				{Kind: LineRemoved, Text: "old"},
				{Kind: LineAdded, Text: "new"},
			},
		}},
	}}

	text := Render(records, "Fix the thing.\n\nSecond paragraph.")

	assert.Equal(t,
		"Fix the thing.\n\nSecond paragraph.\n\n"+
			"--- a/a.txt\n+++ b/a.txt\n@@ -1,1 +1,1 @@\n-old\n+new\n",
		text)
}

func TestRenderDevNullHeaders(t *testing.T) {
	records := []Record{
		{NewPath: "added.txt", Hunks: []Hunk{{
			OldStart: 0, NewStart: 1, NewCount: 1,
			Lines: []Line{{Kind: LineAdded, Text: "hello"}},
		}}},
		{OldPath: "removed.txt", Hunks: []Hunk{{
			OldStart: 1, OldCount: 1, NewStart: 0,
			Lines: []Line{{Kind: LineRemoved, Text: "bye"}},
		}}},
	}

	text := Render(records, "")

	assert.Contains(t, text, "--- /dev/null\n+++ b/added.txt\n@@ -0,0 +1,1 @@\n")
	assert.Contains(t, text, "--- a/removed.txt\n+++ /dev/null\n@@ -1,1 +0,0 @@\n")
}

func TestRenderNoTrailingNewline(t *testing.T) {
	baseline := snapshot.Snapshot{"f.txt": []byte("alpha\n")}
	modified := snapshot.Snapshot{"f.txt": []byte("alpha\nbeta")}

	records, err := Diff(baseline, modified, Options{})
	require.NoError(t, err)

	text := Render(records, "")

	assert.Contains(t, text, "+beta\n\\ No newline at end of file\n")
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		oldText  string
		newText  string
		want     float64
		wantOver float64
	}{
		{name: "both_empty", oldText: "", newText: "", want: 1},
		{name: "one_empty", oldText: "a\n", newText: "", want: 0},
		{name: "identical", oldText: "a\nb\n", newText: "a\nb\n", want: 1},
		{name: "disjoint", oldText: "a\nb\n", newText: "c\nd\n", want: 0},
		{name: "mostly_shared", oldText: "a\nb\nc\nd\n", newText: "a\nb\nc\nx\n", wantOver: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := similarity(tt.oldText, tt.newText)
			if tt.wantOver > 0 {
				assert.Greater(t, got, tt.wantOver)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
